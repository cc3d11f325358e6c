package repository

import (
	"context"
	"log/slog"

	"github.com/hireready/hireready/models"
)

type groupCount struct {
	Key   string `gorm:"column:key"`
	Count int64  `gorm:"column:count"`
}

// GetUserStats aggregates the user's interview history: total and completed
// session counts plus per-track and per-difficulty breakdowns. Abandoned
// sessions count toward the total but not toward completed.
func (r *Repository) GetUserStats(ctx context.Context, userID uint) (*models.UserStats, error) {
	stats := &models.UserStats{
		ByTrack:      make(map[string]int64),
		ByDifficulty: make(map[string]int64),
	}

	if err := r.db.WithContext(ctx).Model(&models.InterviewSession{}).
		Where("user_id = ?", userID).
		Count(&stats.TotalSessions).Error; err != nil {
		slog.Error("Failed to count sessions", "error", err, "user_id", userID)
		return nil, err
	}

	if err := r.db.WithContext(ctx).Model(&models.InterviewSession{}).
		Where("user_id = ? AND status = ?", userID, models.SessionCompleted).
		Count(&stats.CompletedSessions).Error; err != nil {
		slog.Error("Failed to count completed sessions", "error", err, "user_id", userID)
		return nil, err
	}

	var byTrack []groupCount
	if err := r.db.WithContext(ctx).Model(&models.InterviewSession{}).
		Select("track AS key, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("track").
		Scan(&byTrack).Error; err != nil {
		slog.Error("Failed to count sessions by track", "error", err, "user_id", userID)
		return nil, err
	}
	for _, row := range byTrack {
		stats.ByTrack[row.Key] = row.Count
	}

	var byDifficulty []groupCount
	if err := r.db.WithContext(ctx).Model(&models.InterviewSession{}).
		Select("difficulty AS key, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("difficulty").
		Scan(&byDifficulty).Error; err != nil {
		slog.Error("Failed to count sessions by difficulty", "error", err, "user_id", userID)
		return nil, err
	}
	for _, row := range byDifficulty {
		stats.ByDifficulty[row.Key] = row.Count
	}

	return stats, nil
}
