package database

import (
	"context"

	"taxquery/models"

	"gorm.io/gorm"
)

// HistoryRepo 对话记录持久化
type HistoryRepo struct {
	db *gorm.DB
}

// NewHistoryRepo 创建对话记录仓库
func NewHistoryRepo(db *gorm.DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

// Append 追加若干轮发言
func (r *HistoryRepo) Append(ctx context.Context, turns ...models.ConversationTurn) error {
	if len(turns) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&turns).Error
}

// List 按时间顺序返回会话的全部发言
func (r *HistoryRepo) List(ctx context.Context, sessionID string) ([]models.ConversationTurn, error) {
	var turns []models.ConversationTurn
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&turns).Error
	return turns, err
}
