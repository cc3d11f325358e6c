package models

import (
	"time"
)

// Session lifecycle. A session starts in_progress and moves to exactly one
// terminal status; no transition out of a terminal status is defined.
const (
	SessionInProgress = "in_progress"
	SessionCompleted  = "completed"
	SessionAbandoned  = "abandoned"
)

// IsTerminalStatus reports whether status is one of the terminal states.
func IsTerminalStatus(status string) bool {
	return status == SessionCompleted || status == SessionAbandoned
}

// InterviewSession records one interview attempt with its fixed
// configuration. CompletedAt is written only by a status update, so a
// session abandoned without ever being updated keeps a null CompletedAt.
type InterviewSession struct {
	ID             uint       `gorm:"column:session_id;primaryKey;autoIncrement" json:"session_id"`
	UserID         uint       `gorm:"not null;index" json:"user_id"`
	Track          string     `gorm:"not null" json:"track"`
	InterviewType  string     `gorm:"not null" json:"interview_type"`
	Difficulty     string     `gorm:"not null" json:"difficulty"`
	NumQuestions   int        `gorm:"not null" json:"num_questions"`
	ResumeText     *string    `gorm:"type:text" json:"resume_text,omitempty"`
	ResumeFilename *string    `json:"resume_filename,omitempty"`
	ResumePDF      []byte     `gorm:"column:resume_pdf" json:"-"`
	StartedAt      time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	Status         string     `gorm:"not null;default:'in_progress';check:status IN ('in_progress', 'completed', 'abandoned')" json:"status"`

	// Relationships
	User     User          `gorm:"foreignKey:UserID" json:"-"`
	Messages []ChatMessage `gorm:"foreignKey:SessionID" json:"messages,omitempty"`
}

func (InterviewSession) TableName() string {
	return "interview_sessions"
}

// SessionDetail is a session joined with its owner's username and the full
// ordered transcript.
type SessionDetail struct {
	InterviewSession
	Username string        `json:"username"`
	Messages []ChatMessage `json:"messages"`
}
