package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"taxquery/assistant"
	"taxquery/metrics"
	"taxquery/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrSessionBusy 同一会话上一轮尚未结束
	ErrSessionBusy = errors.New("session is busy")
	// ErrSessionNotFound 会话不存在
	ErrSessionNotFound = errors.New("session not found")
)

// TurnStore 对话记录持久化
type TurnStore interface {
	Append(ctx context.Context, turns ...models.ConversationTurn) error
	List(ctx context.Context, sessionID string) ([]models.ConversationTurn, error)
}

// SessionStore 按会话保存对话记录，并保证每个会话串行处理
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*assistant.History

	locker Locker
	turns  TurnStore
	logger *zap.Logger
}

// NewSessionStore turns 为 nil 时只保存在内存中
func NewSessionStore(locker Locker, turns TurnStore, logger *zap.Logger) *SessionStore {
	if locker == nil {
		locker = NewMemoryLocker()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		sessions: make(map[string]*assistant.History),
		locker:   locker,
		turns:    turns,
		logger:   logger,
	}
}

// Do 在会话锁内执行一轮，sessionID 为空时新建会话并返回其 ID
func (s *SessionStore) Do(ctx context.Context, sessionID string, fn func(h *assistant.History) assistant.Answer) (string, assistant.Answer, error) {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	unlock, ok, err := s.locker.TryLock(ctx, sessionID)
	if err != nil {
		return sessionID, assistant.Answer{}, fmt.Errorf("%w: session lock: %v", models.ErrServiceUnavailable, err)
	}
	if !ok {
		metrics.SessionsRejected.Inc()
		return sessionID, assistant.Answer{}, ErrSessionBusy
	}
	defer unlock()

	h := s.history(ctx, sessionID)
	before := len(h.Snapshot())
	ans := fn(h)
	s.persist(ctx, sessionID, h.Snapshot()[before:])
	return sessionID, ans, nil
}

// History 返回会话的完整记录
func (s *SessionStore) History(ctx context.Context, sessionID string) ([]models.ConversationTurn, error) {
	s.mu.Lock()
	h, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if ok {
		return h.Snapshot(), nil
	}

	if s.turns != nil {
		stored, err := s.turns.List(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrServiceUnavailable, err)
		}
		if len(stored) > 0 {
			return stored, nil
		}
	}
	return nil, ErrSessionNotFound
}

// history 取会话记录，内存中没有时尝试从持久化存储恢复
func (s *SessionStore) history(ctx context.Context, sessionID string) *assistant.History {
	s.mu.Lock()
	h, ok := s.sessions[sessionID]
	s.mu.Unlock()
	if ok {
		return h
	}

	h = assistant.NewHistory()
	if s.turns != nil {
		stored, err := s.turns.List(ctx, sessionID)
		if err != nil {
			s.logger.Warn("restore session failed", zap.String("session_id", sessionID), zap.Error(err))
		} else if len(stored) > 0 {
			h = &assistant.History{Turns: stored}
		} else {
			s.persist(ctx, sessionID, h.Turns)
		}
	}

	s.mu.Lock()
	s.sessions[sessionID] = h
	s.mu.Unlock()
	return h
}

func (s *SessionStore) persist(ctx context.Context, sessionID string, turns []models.ConversationTurn) {
	if s.turns == nil || len(turns) == 0 {
		return
	}
	rows := make([]models.ConversationTurn, len(turns))
	for i, t := range turns {
		t.SessionID = sessionID
		rows[i] = t
	}
	if err := s.turns.Append(ctx, rows...); err != nil {
		s.logger.Warn("persist turns failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}
