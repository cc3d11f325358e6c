package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hireready/hireready/repository"
)

type ProfileEndpoints struct {
	repo        *repository.Repository
	authService *AuthService
}

type UpdateUsernameRequest struct {
	NewUsername string `json:"new_username"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func NewProfileEndpoints(repo *repository.Repository, authService *AuthService) *ProfileEndpoints {
	return &ProfileEndpoints{
		repo:        repo,
		authService: authService,
	}
}

func (e *ProfileEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/profile", func(r chi.Router) {
		r.Get("/", e.GetProfileHandler)
		r.Put("/username", e.UpdateUsernameHandler)
		r.Put("/password", e.UpdatePasswordHandler)
		r.Delete("/", e.DeleteAccountHandler)
	})
}

func (e *ProfileEndpoints) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := e.repo.GetUserByID(r.Context(), claims.UserID)
	if err != nil {
		slog.Error("Failed to get profile", "error", err, "user_id", claims.UserID)
		http.Error(w, "Failed to get profile", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	response := map[string]interface{}{
		"user_id":    user.ID,
		"username":   user.Username,
		"created_at": user.CreatedAt,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (e *ProfileEndpoints) UpdateUsernameHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdateUsernameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.NewUsername == "" {
		http.Error(w, "new_username is required", http.StatusBadRequest)
		return
	}

	if err := e.repo.UpdateUsername(r.Context(), claims.UserID, req.NewUsername); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			http.Error(w, "Username already taken", http.StatusBadRequest)
			return
		}
		slog.Error("Failed to update username", "error", err, "user_id", claims.UserID)
		http.Error(w, "Failed to update username", http.StatusInternalServerError)
		return
	}

	// The old token still carries the old username; issue a fresh one.
	user, err := e.repo.GetUserByID(r.Context(), claims.UserID)
	if err != nil || user == nil {
		slog.Error("Failed to reload user after rename", "error", err, "user_id", claims.UserID)
		http.Error(w, "Failed to update username", http.StatusInternalServerError)
		return
	}
	token, err := e.authService.GenerateToken(user)
	if err != nil {
		slog.Error("Failed to issue token after rename", "error", err, "user_id", claims.UserID)
		http.Error(w, "Failed to update username", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"message":  "Username updated successfully",
		"token":    token,
		"username": user.Username,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (e *ProfileEndpoints) UpdatePasswordHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := e.authService.UpdatePassword(r.Context(), claims.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, ErrWrongPassword):
			http.Error(w, "Current password is incorrect", http.StatusBadRequest)
		case errors.Is(err, ErrUserNotFound):
			http.Error(w, "User not found", http.StatusNotFound)
		default:
			slog.Error("Failed to update password", "error", err, "user_id", claims.UserID)
			http.Error(w, "Failed to update password", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "Password updated successfully"})
}

func (e *ProfileEndpoints) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	if err := e.repo.DeleteUser(r.Context(), claims.UserID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			http.Error(w, "User not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to delete account", "error", err, "user_id", claims.UserID)
		http.Error(w, "Failed to delete account", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"message": "Account deleted successfully"})
}
