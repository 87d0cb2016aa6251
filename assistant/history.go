package assistant

import (
	"strings"
	"sync"

	"taxquery/models"
)

// History 一个会话的完整对话记录，只有最近几轮会进入提示词
// 同一时刻只有一个协程追加；其他协程通过 Snapshot 读取
type History struct {
	mu    sync.RWMutex
	Turns []models.ConversationTurn `json:"turns"`
}

// NewHistory 以问候语开场的新会话
func NewHistory() *History {
	return &History{Turns: []models.ConversationTurn{
		{Role: models.RoleAssistant, Content: Greeting},
	}}
}

// Append 追加一轮发言
func (h *History) Append(role, content string, route Route) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Turns = append(h.Turns, models.ConversationTurn{Role: role, Content: content, Route: string(route)})
}

// Snapshot 返回记录的副本，可与 Append 并发调用
func (h *History) Snapshot() []models.ConversationTurn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]models.ConversationTurn, len(h.Turns))
	copy(out, h.Turns)
	return out
}

// Recent 最近 n 轮，n<=0 返回全部
func (h *History) Recent(n int) []models.ConversationTurn {
	if n <= 0 || len(h.Turns) <= n {
		return h.Turns
	}
	return h.Turns[len(h.Turns)-n:]
}

// lastQuestion 最近一个非固定回复类的用户问题的下标，没有返回 -1
func (h *History) lastQuestion() int {
	for i := len(h.Turns) - 1; i >= 0; i-- {
		t := h.Turns[i]
		if t.IsHuman() && !Route(t.Route).IsEdge() {
			return i
		}
	}
	return -1
}

// LastQuestion 最近一个需要查询或预测的用户问题
func (h *History) LastQuestion() (string, bool) {
	i := h.lastQuestion()
	if i < 0 {
		return "", false
	}
	return h.Turns[i].Content, true
}

// LastAnswer 最近一轮助手回复
func (h *History) LastAnswer() (string, bool) {
	for i := len(h.Turns) - 1; i >= 0; i-- {
		if !h.Turns[i].IsHuman() {
			return h.Turns[i].Content, true
		}
	}
	return "", false
}

// LastExchange 最近一个问题及紧随其后的回答
func (h *History) LastExchange() (question, answer string, ok bool) {
	i := h.lastQuestion()
	if i < 0 {
		return "", "", false
	}
	for j := i + 1; j < len(h.Turns); j++ {
		if !h.Turns[j].IsHuman() {
			return h.Turns[i].Content, h.Turns[j].Content, true
		}
	}
	return "", "", false
}

// FormatTurns 渲染为提示词中的对话记录
func FormatTurns(turns []models.ConversationTurn) string {
	var b strings.Builder
	for _, t := range turns {
		if t.IsHuman() {
			b.WriteString("Human: ")
		} else {
			b.WriteString("AI: ")
		}
		b.WriteString(t.Content)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}
