package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hireready/hireready/repository"
)

type AuthEndpoints struct {
	authService *AuthService
}

type AuthRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func NewAuthEndpoints(authService *AuthService) *AuthEndpoints {
	return &AuthEndpoints{
		authService: authService,
	}
}

func (e *AuthEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", e.SignupHandler)
		r.Post("/login", e.LoginHandler)
	})
}

func (e *AuthEndpoints) SignupHandler(w http.ResponseWriter, r *http.Request) {
	var req AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Username == "" || req.Password == "" {
		http.Error(w, "Username and password are required", http.StatusBadRequest)
		return
	}

	result, err := e.authService.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			http.Error(w, "Username already exists", http.StatusBadRequest)
			return
		}
		slog.Error("Signup failed", "error", err, "username", req.Username)
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	message := "User created successfully"
	if result.Claimed {
		message = "Password set successfully for existing account"
	}

	response := map[string]interface{}{
		"token":    result.Token,
		"user_id":  result.User.ID,
		"username": result.User.Username,
		"message":  message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

func (e *AuthEndpoints) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req AuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := e.authService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserNotFound):
			http.Error(w, "Username not found", http.StatusUnauthorized)
		case errors.Is(err, ErrNeedsPasswordSetup):
			http.Error(w, "Account needs password setup. Please use Sign Up.", http.StatusUnauthorized)
		case errors.Is(err, ErrWrongPassword):
			http.Error(w, "Incorrect password", http.StatusUnauthorized)
		default:
			slog.Error("Login failed", "error", err, "username", req.Username)
			http.Error(w, "Login failed", http.StatusInternalServerError)
		}
		return
	}

	response := map[string]interface{}{
		"token":    result.Token,
		"user_id":  result.User.ID,
		"username": result.User.Username,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
