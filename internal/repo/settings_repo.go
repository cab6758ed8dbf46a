// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides access to the single global AppSettings
// row.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-receipt-bot/internal/domain"
)

// settingsRowID is the fixed primary key of the singleton settings row.
const settingsRowID = 1

// GetSettings fetches the global settings, creating the default row
// (registrations open) on first access.
func GetSettings(ctx context.Context, db *gorm.DB) (*domain.AppSettings, error) {
	var s domain.AppSettings
	err := db.WithContext(ctx).Where("id = ?", settingsRowID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		s = domain.AppSettings{ID: settingsRowID, RegistrationsOpen: true, UpdatedAt: time.Now().UTC()}
		if cerr := db.WithContext(ctx).Create(&s).Error; cerr != nil {
			return nil, cerr
		}
		return &s, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SetRegistrationsOpen flips the global onboarding gate.
func SetRegistrationsOpen(ctx context.Context, db *gorm.DB, open bool) error {
	if _, err := GetSettings(ctx, db); err != nil {
		return err
	}
	return db.WithContext(ctx).
		Model(&domain.AppSettings{}).
		Where("id = ?", settingsRowID).
		Update("registrations_open", open).Error
}
