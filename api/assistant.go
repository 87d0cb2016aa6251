package api

import (
	"errors"

	"taxquery/assistant"
	"taxquery/models"
	"taxquery/service"

	"github.com/gin-gonic/gin"
)

// AssistantHandler 对话接口
type AssistantHandler struct {
	assistant *assistant.Assistant
	sessions  *service.SessionStore
}

// NewAssistantHandler 创建对话处理器
func NewAssistantHandler(a *assistant.Assistant, sessions *service.SessionStore) *AssistantHandler {
	return &AssistantHandler{assistant: a, sessions: sessions}
}

// AskRequest 提问请求
type AskRequest struct {
	SessionID string `json:"session_id" example:"4b6f0c1e-1d2a-4c55-9a43-2f1f7d0c8a10"`
	Query     string `json:"query" binding:"required" example:"What will be the tax demand for the year 2019 in Pune for residential?"`
}

// AskResponse 提问响应
type AskResponse struct {
	SessionID    string          `json:"session_id"`
	Response     string          `json:"response"`
	Route        assistant.Route `json:"route"`
	City         string          `json:"city,omitempty"`
	PropertyType string          `json:"property_type,omitempty"`
	Year         *int            `json:"year,omitempty"`
	Metric       string          `json:"metric,omitempty"`
	Value        *float64        `json:"value,omitempty"`
}

// FollowUpRequest 针对上一轮的请求
// 不带 session_id 时可直接给出上一轮的问题和回答
type FollowUpRequest struct {
	SessionID    string `json:"session_id"`
	Query        string `json:"query"`
	LastResponse string `json:"last_response"`
}

// SQLQueryResponse 上一轮问题对应的 SQL
type SQLQueryResponse struct {
	SessionID string `json:"session_id,omitempty"`
	SQLQuery  string `json:"sql_query"`
}

// BreakdownResponse 上一轮回答的解释
type BreakdownResponse struct {
	SessionID string `json:"session_id,omitempty"`
	Breakdown string `json:"breakdown"`
}

// GetResponse 提问
// @Summary 提问
// @Description 回答关于房产税数据的问题：数据库查询、趋势预测或固定回复。不带 session_id 时新建会话
// @Tags 对话
// @Accept json
// @Produce json
// @Param request body AskRequest true "问题"
// @Success 200 {object} Response{data=AskResponse} "回答"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 409 {object} Response "会话上一轮尚未结束"
// @Router /api/get_response [post]
func (h *AssistantHandler) GetResponse(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+SafeErrorMessage(err, "query 不能为空"))
		return
	}

	ctx := c.Request.Context()
	id, ans, err := h.sessions.Do(ctx, req.SessionID, func(hist *assistant.History) assistant.Answer {
		return h.assistant.Ask(ctx, req.Query, hist)
	})
	if err != nil {
		h.sessionError(c, err)
		return
	}

	resp := AskResponse{
		SessionID:    id,
		Response:     ans.Text,
		Route:        ans.Route,
		City:         ans.Context.City,
		PropertyType: ans.Context.PropertyType,
		Year:         ans.Context.Year,
		Metric:       string(ans.Metric),
		Value:        ans.Value,
	}
	Success(c, resp)
}

// GetSQLQuery 上一轮问题的 SQL
// @Summary 获取上一轮问题的 SQL
// @Description 为会话中最近一个问题生成 SQL；上一轮是模型预测时返回说明
// @Tags 对话
// @Accept json
// @Produce json
// @Param request body FollowUpRequest true "会话或上一轮问答"
// @Success 200 {object} Response{data=SQLQueryResponse} "SQL"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 409 {object} Response "会话上一轮尚未结束"
// @Router /api/get_sql_query [post]
func (h *AssistantHandler) GetSQLQuery(c *gin.Context) {
	var req FollowUpRequest
	if !h.bindFollowUp(c, &req) {
		return
	}

	ctx := c.Request.Context()
	id, ans, err := h.followUp(c, req, func(hist *assistant.History) assistant.Answer {
		return h.assistant.LastQuery(ctx, hist)
	})
	if err != nil {
		h.sessionError(c, err)
		return
	}
	Success(c, SQLQueryResponse{SessionID: id, SQLQuery: ans.Text})
}

// GetBreakdown 解释上一轮回答
// @Summary 解释上一轮回答
// @Description 详细说明上一轮回答是如何得到的，区分数据库查询与模型预测
// @Tags 对话
// @Accept json
// @Produce json
// @Param request body FollowUpRequest true "会话或上一轮问答"
// @Success 200 {object} Response{data=BreakdownResponse} "解释"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 409 {object} Response "会话上一轮尚未结束"
// @Router /api/get_breakdown [post]
func (h *AssistantHandler) GetBreakdown(c *gin.Context) {
	var req FollowUpRequest
	if !h.bindFollowUp(c, &req) {
		return
	}

	ctx := c.Request.Context()
	id, ans, err := h.followUp(c, req, func(hist *assistant.History) assistant.Answer {
		return h.assistant.Explain(ctx, hist)
	})
	if err != nil {
		h.sessionError(c, err)
		return
	}
	Success(c, BreakdownResponse{SessionID: id, Breakdown: ans.Text})
}

// GetHistory 会话记录
// @Summary 获取会话记录
// @Tags 对话
// @Produce json
// @Param session_id query string true "会话 ID"
// @Success 200 {object} Response{data=[]models.ConversationTurn} "对话记录"
// @Failure 400 {object} Response "请求参数错误"
// @Failure 404 {object} Response "会话不存在"
// @Router /api/history [get]
func (h *AssistantHandler) GetHistory(c *gin.Context) {
	id := c.Query("session_id")
	if id == "" {
		BadRequest(c, "请提供 session_id")
		return
	}
	turns, err := h.sessions.History(c.Request.Context(), id)
	if err != nil {
		h.sessionError(c, err)
		return
	}
	Success(c, turns)
}

// GetCities 支持的城市
// @Summary 获取支持的城市和物业类型
// @Tags 对话
// @Produce json
// @Success 200 {object} Response "城市列表"
// @Router /api/cities [get]
func (h *AssistantHandler) GetCities(c *gin.Context) {
	Success(c, gin.H{
		"cities":         models.SupportedCities,
		"property_types": models.PropertyTypes,
	})
}

func (h *AssistantHandler) bindFollowUp(c *gin.Context, req *FollowUpRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		BadRequest(c, "参数错误: "+SafeErrorMessage(err, "请求格式错误"))
		return false
	}
	if req.SessionID == "" && req.Query == "" {
		BadRequest(c, "请提供 session_id 或 query")
		return false
	}
	return true
}

// followUp 有会话时在会话内执行；否则用请求中的上一轮问答构造临时记录
func (h *AssistantHandler) followUp(c *gin.Context, req FollowUpRequest, fn func(*assistant.History) assistant.Answer) (string, assistant.Answer, error) {
	if req.SessionID != "" {
		return h.sessions.Do(c.Request.Context(), req.SessionID, fn)
	}
	hist := &assistant.History{}
	hist.Append(models.RoleHuman, req.Query, assistant.RouteDatabase)
	if req.LastResponse != "" {
		hist.Append(models.RoleAssistant, req.LastResponse, assistant.RouteDatabase)
	}
	return "", fn(hist), nil
}

func (h *AssistantHandler) sessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionBusy):
		Conflict(c, "上一条消息仍在处理中，请稍后再试")
	case errors.Is(err, service.ErrSessionNotFound):
		NotFound(c, "会话不存在")
	case errors.Is(err, models.ErrServiceUnavailable):
		ServiceUnavailable(c, SafeErrorMessage(err, "服务暂时不可用"))
	default:
		InternalError(c, SafeErrorMessage(err, "处理失败"))
	}
}
