package services

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hireready/hireready/models"
	"github.com/hireready/hireready/repository"
)

type InterviewEndpoints struct {
	repo             *repository.Repository
	interviewService *InterviewService
}

func NewInterviewEndpoints(repo *repository.Repository, interviewService *InterviewService) *InterviewEndpoints {
	return &InterviewEndpoints{
		repo:             repo,
		interviewService: interviewService,
	}
}

type StartInterviewRequest struct {
	Track          string  `json:"track"`
	InterviewType  string  `json:"interview_type"`
	Difficulty     string  `json:"difficulty"`
	NumQuestions   int     `json:"num_questions"`
	ResumeText     *string `json:"resume_text,omitempty"`
	ResumeFilename *string `json:"resume_filename,omitempty"`
	ResumePDF      []byte  `json:"resume_pdf,omitempty"`
}

type ChatRequest struct {
	SessionID uint       `json:"session_id"`
	Messages  []ChatTurn `json:"messages"`
}

type SaveMessageRequest struct {
	SessionID uint   `json:"session_id"`
	Content   string `json:"content"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (e *InterviewEndpoints) RegisterRoutes(r chi.Router) {
	r.Route("/interview", func(r chi.Router) {
		r.Post("/start", e.StartHandler)
		r.Post("/chat", e.ChatHandler)
		r.Post("/message", e.SaveMessageHandler)
		r.Patch("/session/{id}/status", e.UpdateStatusHandler)
	})
}

// sessionOwnedBy loads the session and confirms it belongs to the caller.
// The store lookup itself is not identity-scoped, so every endpoint that
// takes a session id goes through this check.
func (e *InterviewEndpoints) sessionOwnedBy(r *http.Request, sessionID, userID uint) (bool, error) {
	session, err := e.repo.GetSession(r.Context(), sessionID)
	if err != nil {
		return false, err
	}
	return session != nil && session.UserID == userID, nil
}

func (e *InterviewEndpoints) StartHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req StartInterviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.NumQuestions <= 0 {
		http.Error(w, "num_questions must be positive", http.StatusBadRequest)
		return
	}

	result, err := e.interviewService.Start(r.Context(), claims.UserID, StartSessionParams{
		Track:          req.Track,
		InterviewType:  req.InterviewType,
		Difficulty:     req.Difficulty,
		NumQuestions:   req.NumQuestions,
		ResumeText:     req.ResumeText,
		ResumeFilename: req.ResumeFilename,
		ResumePDF:      req.ResumePDF,
	})
	if err != nil {
		slog.Error("Failed to start interview", "error", err, "user_id", claims.UserID)
		http.Error(w, "Failed to start interview", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"session_id": result.Session.ID,
		"message":    result.Opening,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(response)
}

func (e *InterviewEndpoints) ChatHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	owned, err := e.sessionOwnedBy(r, req.SessionID, claims.UserID)
	if err != nil {
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}
	if !owned {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	result, err := e.interviewService.Chat(r.Context(), req.SessionID, req.Messages)
	if err != nil {
		slog.Error("Chat turn failed", "error", err, "session_id", req.SessionID)
		http.Error(w, "Failed to generate reply", http.StatusInternalServerError)
		return
	}

	response := map[string]interface{}{
		"message":   result.Reply,
		"completed": result.Completed,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (e *InterviewEndpoints) SaveMessageHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req SaveMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	owned, err := e.sessionOwnedBy(r, req.SessionID, claims.UserID)
	if err != nil {
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}
	if !owned {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	if err := e.interviewService.SaveUserMessage(r.Context(), req.SessionID, req.Content); err != nil {
		if errors.Is(err, repository.ErrInvalidSession) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to save message", "error", err, "session_id", req.SessionID)
		http.Error(w, "Failed to save message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
}

func (e *InterviewEndpoints) UpdateStatusHandler(w http.ResponseWriter, r *http.Request) {
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

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	// Only terminal transitions are accepted; a session cannot be moved
	// back to in_progress.
	if !models.IsTerminalStatus(req.Status) {
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}

	owned, err := e.sessionOwnedBy(r, uint(sessionID), claims.UserID)
	if err != nil {
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}
	if !owned {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	if err := e.repo.UpdateSessionStatus(r.Context(), uint(sessionID), req.Status); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			http.Error(w, "Session not found", http.StatusNotFound)
			return
		}
		slog.Error("Failed to update session status", "error", err, "session_id", sessionID)
		http.Error(w, "Failed to update status", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"success": true})
}
