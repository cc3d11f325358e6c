package repository

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hireready/hireready/models"
	"gorm.io/gorm"
)

// RegisterUser creates a user with the given credentials, or claims an
// existing unclaimed row with the same username. claimed reports which of
// the two happened. A claimed user with that username already existing
// fails with ErrUsernameTaken.
func (r *Repository) RegisterUser(ctx context.Context, username string, creds models.Credentials) (user *models.User, claimed bool, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		findErr := tx.Where("username = ?", username).First(&existing).Error
		if findErr == nil {
			if _, ok := existing.Credentials(); ok {
				return ErrUsernameTaken
			}
			existing.SetCredentials(creds)
			if updErr := tx.Model(&existing).Updates(map[string]interface{}{
				"password_hash": creds.Hash,
				"salt":          creds.Salt,
			}).Error; updErr != nil {
				return updErr
			}
			user = &existing
			claimed = true
			return nil
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		created := models.User{
			Username:  username,
			CreatedAt: time.Now().UTC(),
		}
		created.SetCredentials(creds)
		if createErr := tx.Create(&created).Error; createErr != nil {
			return createErr
		}
		user = &created
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrUsernameTaken) {
			slog.Error("Failed to register user", "error", err, "username", username)
		}
		return nil, false, err
	}

	slog.Info("User registered", "user_id", user.ID, "username", username, "claimed", claimed)
	return user, claimed, nil
}

// GetUserByUsername returns nil, nil when no such user exists.
func (r *Repository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get user by username", "error", err, "username", username)
		return nil, err
	}
	return &user, nil
}

// GetUserByID returns nil, nil when no such user exists.
func (r *Repository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("user_id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.Error("Failed to get user by ID", "error", err, "user_id", id)
		return nil, err
	}
	return &user, nil
}

// UpdateUsername renames the account, failing with ErrUsernameTaken when
// another account already holds the new name.
func (r *Repository) UpdateUsername(ctx context.Context, userID uint, newUsername string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		findErr := tx.Where("username = ?", newUsername).First(&existing).Error
		if findErr == nil {
			if existing.ID == userID {
				return nil
			}
			return ErrUsernameTaken
		}
		if !errors.Is(findErr, gorm.ErrRecordNotFound) {
			return findErr
		}

		res := tx.Model(&models.User{}).Where("user_id = ?", userID).Update("username", newUsername)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrUsernameTaken) && !errors.Is(err, ErrUserNotFound) {
			slog.Error("Failed to update username", "error", err, "user_id", userID)
		}
		return err
	}

	slog.Info("Username updated", "user_id", userID, "username", newUsername)
	return nil
}

// UpdateCredentials overwrites the stored hash and salt.
func (r *Repository) UpdateCredentials(ctx context.Context, userID uint, creds models.Credentials) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
		"password_hash": creds.Hash,
		"salt":          creds.Salt,
	})
	if res.Error != nil {
		slog.Error("Failed to update credentials", "error", res.Error, "user_id", userID)
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrUserNotFound
	}

	slog.Info("Credentials updated", "user_id", userID)
	return nil
}

// DeleteUser removes the user and everything they own. The cascade runs at
// the application layer in one transaction: messages, then sessions, then
// the user row. Any failure rolls the whole delete back.
func (r *Repository) DeleteUser(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sessionIDs := tx.Model(&models.InterviewSession{}).Select("session_id").Where("user_id = ?", userID)
		if delErr := tx.Where("session_id IN (?)", sessionIDs).Delete(&models.ChatMessage{}).Error; delErr != nil {
			return delErr
		}
		if delErr := tx.Where("user_id = ?", userID).Delete(&models.InterviewSession{}).Error; delErr != nil {
			return delErr
		}
		res := tx.Where("user_id = ?", userID).Delete(&models.User{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrUserNotFound) {
			slog.Error("Failed to delete user", "error", err, "user_id", userID)
		}
		return err
	}

	slog.Info("User deleted", "user_id", userID)
	return nil
}
