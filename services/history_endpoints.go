package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hireready/hireready/repository"
)

const defaultSessionLimit = 20

type HistoryEndpoints struct {
	repo *repository.Repository
}

func NewHistoryEndpoints(repo *repository.Repository) *HistoryEndpoints {
	return &HistoryEndpoints{
		repo: repo,
	}
}

func (e *HistoryEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/history", func(r chi.Router) {
		r.Get("/sessions", e.GetSessionsHandler)
		r.Get("/session/{id}", e.GetSessionDetailHandler)
		r.Get("/stats", e.GetStatsHandler)
	})
}

func (e *HistoryEndpoints) GetSessionsHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	limit := defaultSessionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	sessions, err := e.repo.GetUserSessions(r.Context(), claims.UserID, limit)
	if err != nil {
		slog.Error("Failed to get sessions", "error", err, "user_id", claims.UserID)
		http.Error(w, "Failed to get sessions", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"sessions": sessions,
		"count":    len(sessions),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (e *HistoryEndpoints) GetSessionDetailHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	sessionID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid session id", http.StatusBadRequest)
		return
	}

	detail, err := e.repo.GetSessionDetail(r.Context(), uint(sessionID))
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to get session detail", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to get session", http.StatusInternalServerError)
		return
	}

	// The store lookup is not identity-scoped; ownership is enforced here.
	// A foreign session reads as not found so ids cannot be enumerated.
	if detail.UserID != claims.UserID {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(detail)
}

func (e *HistoryEndpoints) GetStatsHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	stats, err := e.repo.GetUserStats(r.Context(), claims.UserID)
	if err != nil {
		slog.Error("Failed to get user stats", "error", err, "user_id", claims.UserID)
		http.Error(w, "Failed to get stats", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}
