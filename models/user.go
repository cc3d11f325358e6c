package models

import (
	"time"
)

// User is an account identified by a unique username. Rows created before
// password auth was introduced carry no hash/salt and are "unclaimed": they
// cannot log in until a signup attaches credentials to them.
type User struct {
	ID           uint      `gorm:"column:user_id;primaryKey;autoIncrement" json:"user_id"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash *string   `gorm:"column:password_hash" json:"-"`
	Salt         *string   `json:"-"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`

	// Relationships
	Sessions []InterviewSession `gorm:"foreignKey:UserID" json:"sessions,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// Credentials is the claimed state of an account: a PBKDF2 digest and the
// salt it was derived with, both hex-encoded.
type Credentials struct {
	Hash string
	Salt string
}

// Credentials returns the stored credentials. ok is false for unclaimed
// accounts, which must never pass verification.
func (u *User) Credentials() (c Credentials, ok bool) {
	if u.PasswordHash == nil || u.Salt == nil {
		return Credentials{}, false
	}
	return Credentials{Hash: *u.PasswordHash, Salt: *u.Salt}, true
}

// SetCredentials attaches credentials to the account, claiming it.
func (u *User) SetCredentials(c Credentials) {
	u.PasswordHash = &c.Hash
	u.Salt = &c.Salt
}
