// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Receipt
// model.
//
// Functions:
//
//   - CreateReceipt(ctx, db, r) -> error
//     Inserts a new receipt with UUID primary key, UTC timestamp, EditCount 0.
//
//   - GetReceipt(ctx, db, id, userID) -> *domain.Receipt, error
//     Fetches a receipt by ID enforcing ownership, or ErrNotFound.
//
//   - LatestReceipt(ctx, db, userID) -> *domain.Receipt, error
//     Fetches the most recently created receipt for a user, or ErrNotFound.
//
//   - UpdateReceipt(ctx, db, id, userID, fields) -> error
//     Overwrites mutable fields and increments edit_count. CreatedAt is never
//     touched.
//
//   - ListRecentReceipts(ctx, db, userID, limit) -> []domain.Receipt, error
//     Returns the newest N receipts.
//
//   - ListReceiptsBetween(ctx, db, userID, from, to) -> []domain.Receipt, error
//     Returns receipts created in [from, to), oldest first, for exports.
package repo

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-receipt-bot/internal/domain"
)

// CreateReceipt inserts a new receipt row. The caller provides content fields;
// identity, timestamps, and the edit counter are set here.
func CreateReceipt(ctx context.Context, db *gorm.DB, r *domain.Receipt) error {
	r.ID = uuid.NewString()
	r.EditCount = 0
	r.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(r).Error
}

// GetReceipt fetches a single receipt by its ID and owner. If the record does
// not exist (or belongs to someone else), it returns ErrNotFound.
func GetReceipt(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Receipt, error) {
	var r domain.Receipt
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// LatestReceipt fetches the most recently created receipt owned by userID,
// or ErrNotFound when the user has none.
func LatestReceipt(ctx context.Context, db *gorm.DB, userID string) (*domain.Receipt, error) {
	var r domain.Receipt
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		First(&r).Error
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// UpdateReceipt overwrites the mutable fields of a receipt and increments its
// edit counter in the same statement. Returns ErrNotFound when no row matches.
// String-slice values (items, prices) are JSON-encoded here: the model's json
// serializer only runs on struct-based writes, not map updates.
func UpdateReceipt(ctx context.Context, db *gorm.DB, id, userID string, fields map[string]any) error {
	for k, v := range fields {
		if s, ok := v.([]string); ok {
			b, err := json.Marshal(s)
			if err != nil {
				return err
			}
			fields[k] = string(b)
		}
	}
	fields["edit_count"] = gorm.Expr("edit_count + 1")
	res := db.WithContext(ctx).
		Model(&domain.Receipt{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListRecentReceipts returns up to limit receipts for userID, newest first.
func ListRecentReceipts(ctx context.Context, db *gorm.DB, userID string, limit int) ([]domain.Receipt, error) {
	var out []domain.Receipt
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListReceiptsBetween returns receipts created in [from, to), oldest first.
func ListReceiptsBetween(ctx context.Context, db *gorm.DB, userID string, from, to time.Time) ([]domain.Receipt, error) {
	var out []domain.Receipt
	err := db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}
