package repository

import (
	"errors"

	"gorm.io/gorm"
)

// Store-level failures for conditions callers are expected to handle.
// Anything else coming out of a store method is an unexpected storage
// failure and is logged with its cause.
var (
	ErrUsernameTaken   = errors.New("username already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidSession  = errors.New("session does not exist")
)

type Repository struct {
	db *gorm.DB
}

// NewRepository wraps db and brings the schema up to date. Migration runs
// on every construction and is idempotent.
func NewRepository(db *gorm.DB) (*Repository, error) {
	r := &Repository{db: db}
	if err := r.Migrate(); err != nil {
		return nil, err
	}
	return r, nil
}
