package repository

import (
	"fmt"

	"gorm.io/gorm"

	"gopherchat/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

// ListByChatID pages through a chat's messages, oldest first.
func (r *MessageRepository) ListByChatID(chatID uint, skip, limit int) ([]model.Message, error) {
	if skip < 0 {
		skip = 0
	}
	if limit < 0 {
		limit = 0
	}

	var messages []model.Message
	err := r.db.
		Where("chat_id = ?", chatID).
		Order("id ASC").
		Offset(skip).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}
