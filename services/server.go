package services

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/hireready/hireready/repository"
	ws "github.com/hireready/hireready/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Server holds all server dependencies
type Server struct {
	config             *Config
	repo               *repository.Repository
	dbPool             *pgxpool.Pool
	completionClient   CompletionClient
	authService        *AuthService
	interviewService   *InterviewService
	authEndpoints      *AuthEndpoints
	interviewEndpoints *InterviewEndpoints
	historyEndpoints   *HistoryEndpoints
	profileEndpoints   *ProfileEndpoints
	websocketHandler   *WebSocketHandler
	wsHub              *ws.Hub
	upgrader           websocket.Upgrader
}

// NewServer creates a new server instance
func NewServer(config *Config) *Server {
	return &Server{
		config: config,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return CheckOrigin(r, config.WebSocket.AllowedOrigins)
			},
		},
	}
}

// SetDatabase sets the repository and the underlying connection pool.
func (s *Server) SetDatabase(repo *repository.Repository, pool *pgxpool.Pool) {
	s.repo = repo
	s.dbPool = pool
}

// InitializeServices initializes all server services
func (s *Server) InitializeServices() error {
	if s.config.AI.GeminiAPIKey != "" {
		if gemini := NewGeminiService(s.config.AI.GeminiAPIKey, s.config.AI.Model); gemini != nil {
			s.completionClient = gemini
			slog.Info("Gemini completion client initialized", "model", s.config.AI.Model)
		}
	} else {
		slog.Warn("Gemini API key not configured, interview endpoints disabled")
	}

	if s.config.JWT.Secret != "" && s.repo != nil {
		s.authService = NewAuthService(s.repo, s.config.JWT.Secret)
		s.authEndpoints = NewAuthEndpoints(s.authService)
		s.historyEndpoints = NewHistoryEndpoints(s.repo)
		s.profileEndpoints = NewProfileEndpoints(s.repo, s.authService)
		slog.Info("Authentication service initialized")
	}

	if s.completionClient != nil && s.repo != nil {
		s.interviewService = NewInterviewService(s.repo, s.completionClient, s.config.Interview.SystemPrompt)
		s.interviewEndpoints = NewInterviewEndpoints(s.repo, s.interviewService)
		s.websocketHandler = NewWebSocketHandler(s.interviewService)
		slog.Info("Interview service initialized")
	}

	s.wsHub = ws.NewHub()
	go s.wsHub.Run()

	return nil
}

// SetupRoutes configures all HTTP routes
func (s *Server) SetupRoutes() *chi.Mux {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health endpoint
	r.Get("/health", s.healthHandler)

	// API v1 route group
	r.Route("/api/v1", func(r chi.Router) {
		if s.authEndpoints != nil {
			s.authEndpoints.RegisterRoutes(r)
		}

		if s.authService != nil {
			r.Group(func(r chi.Router) {
				r.Use(s.authService.Middleware)

				if s.interviewEndpoints != nil {
					s.interviewEndpoints.RegisterRoutes(r)
				}
				if s.historyEndpoints != nil {
					s.historyEndpoints.RegisterRoutes(r)
				}
				if s.profileEndpoints != nil {
					s.profileEndpoints.RegisterRoutes(r)
				}
				if s.websocketHandler != nil {
					r.Get("/ws", s.websocketHandlerFunc)
				}
			})
		}
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() {
	port := s.config.Server.Port
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: s.SetupRoutes(),
	}

	// Graceful shutdown
	go func() {
		slog.Info("Starting server", "port", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server exited")
}

// CheckOrigin validates the origin of WebSocket connections to prevent CSRF attacks
func CheckOrigin(r *http.Request, allowedOriginsStr string) bool {
	origin := r.Header.Get("Origin")

	// If no allowed origins are configured, deny all requests for security
	if allowedOriginsStr == "" {
		slog.Warn("WebSocket connection rejected: no allowed origins configured", "origin", origin)
		return false
	}

	// Parse allowed origins (comma-separated list)
	allowedOrigins := strings.Split(allowedOriginsStr, ",")

	// Trim whitespace from origins
	for i := range allowedOrigins {
		allowedOrigins[i] = strings.TrimSpace(allowedOrigins[i])
	}

	// Check if origin is in allowed list
	for _, allowed := range allowedOrigins {
		if allowed == origin {
			return true
		}
	}

	slog.Warn("WebSocket connection rejected: origin not allowed", "origin", origin, "allowed_origins", allowedOriginsStr)
	return false
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	dbStatus := "not configured"

	if s.dbPool != nil {
		if err := s.dbPool.Ping(r.Context()); err != nil {
			dbStatus = "down"
			status = "degraded"
		} else {
			dbStatus = "up"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"` + status + `","database":"` + dbStatus + `"}`))
}

func (s *Server) websocketHandlerFunc(w http.ResponseWriter, r *http.Request) {
	claims, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Authentication required", http.StatusUnauthorized)
		return
	}

	rawSessionID := r.URL.Query().Get("session_id")
	sessionID, err := strconv.ParseUint(rawSessionID, 10, 32)
	if err != nil {
		http.Error(w, "Session ID is required", http.StatusBadRequest)
		return
	}

	// Ownership check before the upgrade; the store lookup is not
	// identity-scoped.
	session, err := s.repo.GetSession(r.Context(), uint(sessionID))
	if err != nil {
		http.Error(w, "Failed to load session", http.StatusInternalServerError)
		return
	}
	if session == nil || session.UserID != claims.UserID {
		http.Error(w, "Session not found", http.StatusNotFound)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "error", err)
		return
	}

	slog.Info("WebSocket connection established", "user_id", claims.UserID, "session_id", sessionID)

	client := s.wsHub.RegisterClient(conn, claims.UserID, uint(sessionID))
	client.MessageHandler = s.websocketHandler.HandleMessage

	go client.WritePump()
	client.ReadPump()
}
