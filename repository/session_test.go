package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hireready/hireready/models"
)

func TestCreateSessionStartsInProgress(t *testing.T) {
	repo := newTestRepository(t)

	alice := createTestUser(t, repo, "alice")
	session := createTestSession(t, repo, alice.ID, "Data Science", "Entry Level")

	if session.Status != models.SessionInProgress {
		t.Fatalf("want status %q, got %q", models.SessionInProgress, session.Status)
	}
	if session.CompletedAt != nil {
		t.Fatalf("new session must have null completion time, got %v", session.CompletedAt)
	}
	if session.StartedAt.IsZero() {
		t.Fatal("started_at not stamped")
	}
}

func TestUpdateSessionStatus(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	alice := createTestUser(t, repo, "alice")

	for _, status := range []string{models.SessionCompleted, models.SessionAbandoned} {
		t.Run(status, func(t *testing.T) {
			session := createTestSession(t, repo, alice.ID, "Data Science", "Entry Level")

			if err := repo.UpdateSessionStatus(ctx, session.ID, status); err != nil {
				t.Fatalf("update failed: %v", err)
			}

			stored, err := repo.GetSession(ctx, session.ID)
			if err != nil || stored == nil {
				t.Fatalf("reload failed: %v", err)
			}
			if stored.Status != status {
				t.Fatalf("want status %q, got %q", status, stored.Status)
			}
			if stored.CompletedAt == nil {
				t.Fatal("completed_at not stamped")
			}
			if stored.CompletedAt.Before(stored.StartedAt) {
				t.Fatalf("completed_at %v before started_at %v", stored.CompletedAt, stored.StartedAt)
			}
		})
	}

	if err := repo.UpdateSessionStatus(ctx, 9999, models.SessionCompleted); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("update of missing session: want ErrSessionNotFound, got %v", err)
	}
}

func TestGetUserSessionsOrderAndLimit(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	alice := createTestUser(t, repo, "alice")
	bob := createTestUser(t, repo, "bob")

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	oldest := createTestSession(t, repo, alice.ID, "Data Science", "Entry Level")
	setStartedAt(t, repo, oldest.ID, base)
	middle := createTestSession(t, repo, alice.ID, "Backend", "Mid Level")
	setStartedAt(t, repo, middle.ID, base.Add(time.Hour))
	newest := createTestSession(t, repo, alice.ID, "Backend", "Senior")
	setStartedAt(t, repo, newest.ID, base.Add(2*time.Hour))

	// Another user's session must never appear.
	createTestSession(t, repo, bob.ID, "Frontend", "Entry Level")

	sessions, err := repo.GetUserSessions(ctx, alice.ID, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("want 3 sessions, got %d", len(sessions))
	}
	wantOrder := []uint{newest.ID, middle.ID, oldest.ID}
	for i, want := range wantOrder {
		if sessions[i].ID != want {
			t.Fatalf("position %d: want session %d, got %d", i, want, sessions[i].ID)
		}
	}

	truncated, err := repo.GetUserSessions(ctx, alice.ID, 2)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(truncated) != 2 {
		t.Fatalf("want 2 sessions with limit 2, got %d", len(truncated))
	}
	if truncated[0].ID != newest.ID {
		t.Fatalf("limit must keep the most recent first, got %d", truncated[0].ID)
	}
}

func TestGetSessionDetail(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	alice := createTestUser(t, repo, "alice")
	session := createTestSession(t, repo, alice.ID, "Data Science", "Entry Level")

	if _, err := repo.SaveMessage(ctx, session.ID, models.RoleSystem, "You are an interviewer."); err != nil {
		t.Fatalf("seed failed: %v", err)
	}
	if _, err := repo.SaveMessage(ctx, session.ID, models.RoleAssistant, "Tell me about yourself."); err != nil {
		t.Fatalf("seed failed: %v", err)
	}

	detail, err := repo.GetSessionDetail(ctx, session.ID)
	if err != nil {
		t.Fatalf("detail failed: %v", err)
	}
	if detail.Username != "alice" {
		t.Fatalf("want owner username alice, got %q", detail.Username)
	}
	if detail.Track != "Data Science" {
		t.Fatalf("want track Data Science, got %q", detail.Track)
	}
	if len(detail.Messages) != 2 {
		t.Fatalf("want 2 messages, got %d", len(detail.Messages))
	}
	if detail.Messages[0].Role != models.RoleSystem || detail.Messages[1].Role != models.RoleAssistant {
		t.Fatalf("messages out of order: %q, %q", detail.Messages[0].Role, detail.Messages[1].Role)
	}

	if _, err := repo.GetSessionDetail(ctx, 9999); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("missing session: want ErrSessionNotFound, got %v", err)
	}
}
