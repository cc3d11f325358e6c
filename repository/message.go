package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hireready/hireready/models"
	"gorm.io/gorm"
)

// SaveMessage appends one transcript entry with a server-stamped UTC
// timestamp. Messages are immutable once written. An insert against a
// session that does not exist fails with ErrInvalidSession.
func (r *Repository) SaveMessage(ctx context.Context, sessionID uint, role, content string) (*models.ChatMessage, error) {
	var exists models.InterviewSession
	if err := r.db.WithContext(ctx).Select("session_id").Where("session_id = ?", sessionID).First(&exists).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidSession
		}
		slog.Error("Failed to check session for message", "error", err, "session_id", sessionID)
		return nil, err
	}

	message := models.ChatMessage{
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&message).Error; err != nil {
		slog.Error("Failed to save message", "error", err, "session_id", sessionID, "role", role)
		return nil, err
	}

	slog.Info("Message saved", "message_id", message.ID, "session_id", sessionID, "role", role)
	return &message, nil
}

// GetSessionMessages returns the transcript in conversation order:
// timestamp ascending, with the auto-increment id breaking ties so that
// messages written within the same clock tick keep insertion order.
func (r *Repository) GetSessionMessages(ctx context.Context, sessionID uint) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("timestamp ASC").
		Order("message_id ASC").
		Find(&messages).Error
	if err != nil {
		slog.Error("Failed to get session messages", "error", err, "session_id", sessionID)
		return nil, err
	}
	return messages, nil
}
