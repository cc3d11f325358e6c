package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hireready/hireready/models"
)

func TestDeleteAccountHandler(t *testing.T) {
	repo, _ := newTestRepository(t)
	ctx := context.Background()

	user, _, err := repo.RegisterUser(ctx, "alice", models.Credentials{Hash: "h", Salt: "s"})
	if err != nil {
		t.Fatalf("failed to register user: %v", err)
	}

	endpoints := NewProfileEndpoints(repo, NewAuthService(repo, testSecret))
	router := authedRouter(&Claims{UserID: user.ID, Username: "alice"}, endpoints.RegisterRoutes)

	req := httptest.NewRequest("DELETE", "/profile", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete: want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	stored, err := repo.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if stored != nil {
		t.Fatal("user row must be gone after account deletion")
	}

	// A token outliving its account reads as not found, not a failure.
	req = httptest.NewRequest("DELETE", "/profile", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("repeat delete: want 404, got %d: %s", rec.Code, rec.Body.String())
	}
}
