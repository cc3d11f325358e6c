package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hireready/hireready/models"
	"github.com/hireready/hireready/repository"
	"golang.org/x/crypto/pbkdf2"
)

// Expected authentication failures. Signup and login surface these with a
// specific human-readable reason; anything else is a storage failure and is
// reported generically.
var (
	ErrUserNotFound       = errors.New("username not found")
	ErrNeedsPasswordSetup = errors.New("account needs password setup")
	ErrWrongPassword      = errors.New("incorrect password")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
)

const (
	pbkdf2Iterations = 100000
	pbkdf2KeyLength  = 32
	saltBytes        = 32
	tokenExpiry      = 7 * 24 * time.Hour
)

type AuthService struct {
	repo      *repository.Repository
	jwtSecret []byte
}

// Claims carried in the signed bearer token.
type Claims struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

type SignupResult struct {
	User *models.User
	// Claimed is true when signup attached a password to an existing
	// unclaimed account instead of creating a new one.
	Claimed bool
	Token   string
}

type LoginResult struct {
	User  *models.User
	Token string
}

func NewAuthService(repo *repository.Repository, jwtSecret string) *AuthService {
	return &AuthService{
		repo:      repo,
		jwtSecret: []byte(jwtSecret),
	}
}

// generateSalt returns a fresh per-user salt: 32 random bytes, hex-encoded.
func generateSalt() (string, error) {
	bytes := make([]byte, saltBytes)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}

// hashPassword derives a hex digest from the UTF-8 password bytes and the
// salt string with PBKDF2-HMAC-SHA256.
func hashPassword(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, pbkdf2KeyLength, sha256.New)
	return hex.EncodeToString(key)
}

// verifyPassword recomputes the digest with the stored salt and compares in
// constant time.
func verifyPassword(password string, creds models.Credentials) bool {
	computed := hashPassword(password, creds.Salt)
	return subtle.ConstantTimeCompare([]byte(computed), []byte(creds.Hash)) == 1
}

// newCredentials derives fresh credentials for the password.
func newCredentials(password string) (models.Credentials, error) {
	salt, err := generateSalt()
	if err != nil {
		return models.Credentials{}, fmt.Errorf("failed to generate salt: %w", err)
	}
	return models.Credentials{Hash: hashPassword(password, salt), Salt: salt}, nil
}

// Signup creates a new account, or claims an existing unclaimed one with
// the same username. Fails with repository.ErrUsernameTaken when a claimed
// account already holds the name.
func (s *AuthService) Signup(ctx context.Context, username, password string) (*SignupResult, error) {
	creds, err := newCredentials(password)
	if err != nil {
		return nil, err
	}

	user, claimed, err := s.repo.RegisterUser(ctx, username, creds)
	if err != nil {
		return nil, err
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	slog.Info("User signed up", "user_id", user.ID, "username", username, "claimed", claimed)
	return &SignupResult{User: user, Claimed: claimed, Token: token}, nil
}

// Login authenticates the user and issues a bearer token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	user, err := s.repo.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	creds, ok := user.Credentials()
	if !ok {
		return nil, ErrNeedsPasswordSetup
	}
	if !verifyPassword(password, creds) {
		return nil, ErrWrongPassword
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	slog.Info("User logged in", "user_id", user.ID, "username", username)
	return &LoginResult{User: user, Token: token}, nil
}

// UpdatePassword verifies the current password, then overwrites the stored
// credentials with a fresh salt and hash for the new one.
func (s *AuthService) UpdatePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return ErrUserNotFound
	}

	creds, ok := user.Credentials()
	if !ok {
		return ErrNeedsPasswordSetup
	}
	if !verifyPassword(currentPassword, creds) {
		return ErrWrongPassword
	}

	newCreds, err := newCredentials(newPassword)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateCredentials(ctx, userID, newCreds); err != nil {
		return err
	}

	slog.Info("Password updated", "user_id", userID)
	return nil
}

// GenerateToken issues a signed bearer token valid for 7 days.
func (s *AuthService) GenerateToken(user *models.User) (string, error) {
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates the signature and expiry, distinguishing expired
// tokens from otherwise invalid ones.
func (s *AuthService) VerifyToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

type contextKey string

const userContextKey contextKey = "user"

// UserFromContext returns the authenticated claims set by Middleware.
func UserFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(userContextKey).(*Claims)
	return claims, ok
}

// Middleware authenticates requests with a Bearer token and stores the
// claims on the request context.
func (s *AuthService) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := s.VerifyToken(token)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				http.Error(w, "Token expired", http.StatusUnauthorized)
			} else {
				http.Error(w, "Invalid token", http.StatusUnauthorized)
			}
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
