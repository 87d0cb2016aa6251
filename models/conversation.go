package models

import (
	"time"
)

// 对话角色
const (
	RoleHuman     = "human"
	RoleAssistant = "ai"
)

// ConversationTurn 对话中的一轮发言
type ConversationTurn struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	SessionID string    `json:"session_id" gorm:"size:64;index;not null"`
	Role      string    `json:"role" gorm:"size:16;not null"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	Route     string    `json:"route,omitempty" gorm:"size:32"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName 设置表名
func (ConversationTurn) TableName() string {
	return "conversation_turns"
}

// IsHuman 是否用户发言
func (t ConversationTurn) IsHuman() bool {
	return t.Role == RoleHuman
}
