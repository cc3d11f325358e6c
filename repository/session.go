package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hireready/hireready/models"
	"gorm.io/gorm"
)

// CreateSession inserts a new session for the user. The session always
// starts in_progress with started_at stamped server-side in UTC.
func (r *Repository) CreateSession(ctx context.Context, session *models.InterviewSession) error {
	session.Status = models.SessionInProgress
	session.StartedAt = time.Now().UTC()
	session.CompletedAt = nil

	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		slog.Error("Failed to create interview session", "error", err, "user_id", session.UserID)
		return err
	}

	slog.Info("Interview session created", "session_id", session.ID, "user_id", session.UserID, "track", session.Track)
	return nil
}

// UpdateSessionStatus sets the status and stamps completed_at with the
// current UTC time. The field name is historical: it is written for both
// terminal outcomes, completed and abandoned alike.
func (r *Repository) UpdateSessionStatus(ctx context.Context, sessionID uint, status string) error {
	res := r.db.WithContext(ctx).Model(&models.InterviewSession{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": time.Now().UTC(),
		})
	if res.Error != nil {
		slog.Error("Failed to update session status", "error", res.Error, "session_id", sessionID)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrSessionNotFound
	}

	slog.Info("Session status updated", "session_id", sessionID, "status", status)
	return nil
}

// GetUserSessions returns the user's sessions, most recent first, truncated
// to limit. There is no pagination cursor; callers needing more raise the
// limit.
func (r *Repository) GetUserSessions(ctx context.Context, userID uint, limit int) ([]models.InterviewSession, error) {
	var sessions []models.InterviewSession
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("started_at DESC").
		Limit(limit).
		Find(&sessions).Error
	if err != nil {
		slog.Error("Failed to get user sessions", "error", err, "user_id", userID)
		return nil, err
	}
	return sessions, nil
}

// GetSession returns nil, nil when no such session exists.
func (r *Repository) GetSession(ctx context.Context, sessionID uint) (*models.InterviewSession, error) {
	var session models.InterviewSession
	if err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get session", "error", err, "session_id", sessionID)
		return nil, err
	}
	return &session, nil
}

// GetSessionDetail returns the session joined with the owner's username and
// the full ordered transcript. The lookup is not scoped to a caller
// identity; ownership checks are the calling layer's responsibility.
func (r *Repository) GetSessionDetail(ctx context.Context, sessionID uint) (*models.SessionDetail, error) {
	var session models.InterviewSession
	err := r.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		slog.Error("Failed to get session detail", "error", err, "session_id", sessionID)
		return nil, err
	}

	var owner models.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", session.UserID).First(&owner).Error; err != nil {
		slog.Error("Failed to get session owner", "error", err, "session_id", sessionID, "user_id", session.UserID)
		return nil, err
	}

	messages, err := r.GetSessionMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &models.SessionDetail{
		InterviewSession: session,
		Username:         owner.Username,
		Messages:         messages,
	}, nil
}
