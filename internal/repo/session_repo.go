// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Session
// model.
//
// Sessions are keyed by user identity, so the storage layer itself enforces
// the one-session-per-user invariant: PutSession replaces whatever was there.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-receipt-bot/internal/domain"
)

// GetSession fetches the active session for a user, or ErrNotFound when the
// user is idle.
func GetSession(ctx context.Context, db *gorm.DB, userID string) (*domain.Session, error) {
	var s domain.Session
	err := db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// PutSession stores the session for a user, replacing any existing one.
func PutSession(ctx context.Context, db *gorm.DB, userID, state string, data []byte) error {
	s := domain.Session{
		UserID:    userID,
		State:     state,
		Data:      data,
		UpdatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(&s).Error
}

// ClearSession deletes the user's session. Deleting a non-existent session is
// not an error; the end state is the same.
func ClearSession(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).Where("user_id = ?", userID).Delete(&domain.Session{}).Error
}
