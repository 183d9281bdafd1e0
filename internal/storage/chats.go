package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/DevN0mad/ShiftBot/internal/models"
)

// SaveChat добавляет чат в подписчики или обновляет его название.
func (s *Storage) SaveChat(ctx context.Context, chatID int64, title string) error {
	db := s.db.WithContext(ctx)

	var chat models.Chat
	if err := db.Where("chat_id = ?", chatID).First(&chat).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			chat = models.Chat{
				ChatID:  chatID,
				Title:   title,
				AddedAt: time.Now(),
			}
			if err := db.Create(&chat).Error; err != nil {
				s.logger.Error("failed to create chat", "chat_id", chatID, "title", title, "error", err)
				return fmt.Errorf("create chat: %w", err)
			}
			s.logger.Info("chat created", "chat_id", chatID, "title", title)
			return nil
		}

		s.logger.Error("failed to load chat", "chat_id", chatID, "error", err)
		return fmt.Errorf("load chat: %w", err)
	}

	chat.Title = title
	if err := db.Save(&chat).Error; err != nil {
		s.logger.Error("failed to update chat", "chat_id", chatID, "title", title, "error", err)
		return fmt.Errorf("update chat: %w", err)
	}

	s.logger.Info("chat updated", "chat_id", chatID, "title", title)
	return nil
}

// RemoveChat удаляет чат из подписчиков.
func (s *Storage) RemoveChat(ctx context.Context, chatID int64) error {
	if err := s.db.WithContext(ctx).Where("chat_id = ?", chatID).Delete(&models.Chat{}).Error; err != nil {
		s.logger.Error("failed to remove chat", "chat_id", chatID, "error", err)
		return fmt.Errorf("remove chat: %w", err)
	}

	s.logger.Info("chat removed", "chat_id", chatID)
	return nil
}

// ListChats возвращает идентификаторы всех подписанных чатов.
func (s *Storage) ListChats(ctx context.Context) ([]int64, error) {
	var ids []int64
	if err := s.db.WithContext(ctx).Model(&models.Chat{}).Order("id").Pluck("chat_id", &ids).Error; err != nil {
		s.logger.Error("failed to list chats", "error", err)
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return ids, nil
}
