package models

import (
	"time"
)

// Message roles match the completion provider's wire roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one immutable transcript entry. Ordering within a session
// is by Timestamp ascending with the auto-increment ID breaking ties, so
// messages inserted within the same clock tick keep insertion order.
type ChatMessage struct {
	ID        uint      `gorm:"column:message_id;primaryKey;autoIncrement" json:"message_id"`
	SessionID uint      `gorm:"not null;index" json:"session_id"`
	Role      string    `gorm:"not null;check:role IN ('system', 'user', 'assistant')" json:"role"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Timestamp time.Time `gorm:"not null" json:"timestamp"`

	// Relationships
	Session *InterviewSession `gorm:"foreignKey:SessionID" json:"-"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}

// UserStats represents aggregated interview statistics for a user.
type UserStats struct {
	TotalSessions     int64            `json:"total_sessions"`
	CompletedSessions int64            `json:"completed_sessions"`
	ByTrack           map[string]int64 `json:"by_track"`
	ByDifficulty      map[string]int64 `json:"by_difficulty"`
}
