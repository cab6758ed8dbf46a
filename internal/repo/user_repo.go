// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the UserProfile
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a profile is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-receipt-bot/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer.
var ErrNotFound = gorm.ErrRecordNotFound

// GetUser fetches a profile by channel identity, or ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, userID string) (*domain.UserProfile, error) {
	var u domain.UserProfile
	err := db.WithContext(ctx).Where("id = ?", userID).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SaveUser upserts a profile by primary key, overwriting all columns. Used
// during onboarding where the record may or may not exist yet.
func SaveUser(ctx context.Context, db *gorm.DB, u *domain.UserProfile) error {
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(u).Error
}

// UpdateUserFields applies a partial column update to a profile. It returns
// ErrNotFound when the profile does not exist.
func UpdateUserFields(ctx context.Context, db *gorm.DB, userID string, fields map[string]any) error {
	res := db.WithContext(ctx).
		Model(&domain.UserProfile{}).
		Where("id = ?", userID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementReceiptCount bumps the lifetime receipt counter by one.
func IncrementReceiptCount(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).
		Model(&domain.UserProfile{}).
		Where("id = ?", userID).
		UpdateColumn("receipt_count", gorm.Expr("receipt_count + 1")).Error
}

// MarkPaid flags a profile as subscribed until the given expiry.
func MarkPaid(ctx context.Context, db *gorm.DB, userID string, expiry time.Time) error {
	return UpdateUserFields(ctx, db, userID, map[string]any{
		"is_paid":             true,
		"subscription_expiry": expiry,
	})
}

// GetUserByBackupCode fetches the profile owning a backup code, or ErrNotFound.
func GetUserByBackupCode(ctx context.Context, db *gorm.DB, code string) (*domain.UserProfile, error) {
	var u domain.UserProfile
	err := db.WithContext(ctx).Where("backup_code = ?", code).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByPhone fetches a profile by its parsed contact phone, or ErrNotFound.
// Used by the payment webhook, which identifies payers by phone number.
func GetUserByPhone(ctx context.Context, db *gorm.DB, phone string) (*domain.UserProfile, error) {
	var u domain.UserProfile
	err := db.WithContext(ctx).Where("contact_phone = ? OR id = ?", phone, phone).First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteUser hard-deletes a profile. Only the account-restore migration uses
// this; everywhere else profiles live forever.
func DeleteUser(ctx context.Context, db *gorm.DB, userID string) error {
	return db.WithContext(ctx).Where("id = ?", userID).Delete(&domain.UserProfile{}).Error
}

// ReassignUserIdentity re-points an existing profile (and its owned rows) to a
// new channel identity inside one transaction. Any profile already stored
// under newID is removed first, so the result is a merge rather than a
// duplicate. The old identity's session is dropped too: whatever flow it was
// in belonged to a profile that no longer answers there.
func ReassignUserIdentity(ctx context.Context, db *gorm.DB, oldID, newID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", newID).Delete(&domain.UserProfile{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", oldID).Delete(&domain.Session{}).Error; err != nil {
			return err
		}
		res := tx.Model(&domain.UserProfile{}).Where("id = ?", oldID).Update("id", newID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		// Owned rows follow the profile to its new identity.
		if err := tx.Model(&domain.Receipt{}).Where("user_id = ?", oldID).Update("user_id", newID).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Product{}).Where("user_id = ?", oldID).Update("user_id", newID).Error; err != nil {
			return err
		}
		if err := tx.Model(&domain.Ticket{}).Where("user_id = ?", oldID).Update("user_id", newID).Error; err != nil {
			return err
		}
		return nil
	})
}
