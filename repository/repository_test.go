package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/hireready/hireready/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens a uniquely named in-memory database shared across the
// pool's connections so the schema survives connection churn.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		sqlDB.Close()
	})

	return db
}

func newTestRepository(t *testing.T) *Repository {
	t.Helper()

	repo, err := NewRepository(newTestDB(t))
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	return repo
}

func createTestUser(t *testing.T, repo *Repository, username string) *models.User {
	t.Helper()

	user, claimed, err := repo.RegisterUser(context.Background(), username, models.Credentials{
		Hash: "deadbeef",
		Salt: "cafe",
	})
	if err != nil {
		t.Fatalf("failed to create user %q: %v", username, err)
	}
	if claimed {
		t.Fatalf("expected a fresh user for %q, got a claim", username)
	}
	return user
}

func createTestSession(t *testing.T, repo *Repository, userID uint, track, difficulty string) *models.InterviewSession {
	t.Helper()

	session := &models.InterviewSession{
		UserID:        userID,
		Track:         track,
		InterviewType: "Technical",
		Difficulty:    difficulty,
		NumQuestions:  5,
	}
	if err := repo.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	return session
}

// setStartedAt backdates a session so list ordering can be asserted.
func setStartedAt(t *testing.T, repo *Repository, sessionID uint, startedAt time.Time) {
	t.Helper()

	err := repo.db.Model(&models.InterviewSession{}).
		Where("session_id = ?", sessionID).
		Update("started_at", startedAt).Error
	if err != nil {
		t.Fatalf("failed to set started_at: %v", err)
	}
}
