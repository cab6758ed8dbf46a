// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Product
// catalog. Lookups key on the case-folded NameKey column, making the catalog
// case-insensitive per owner.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-receipt-bot/internal/domain"
)

// productKey folds a product name for case-insensitive matching.
func productKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// UpsertProduct inserts or replaces a catalog entry for (userID, name).
// Adding "Fanta" twice updates the price instead of duplicating the row.
func UpsertProduct(ctx context.Context, db *gorm.DB, userID, name, price string) (*domain.Product, error) {
	p := &domain.Product{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		NameKey:   productKey(name),
		Price:     price,
		CreatedAt: time.Now().UTC(),
	}
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "name_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "price", "updated_at"}),
		}).
		Create(p).Error
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FindProduct looks up a catalog entry by case-insensitive exact name, or
// ErrNotFound.
func FindProduct(ctx context.Context, db *gorm.DB, userID, name string) (*domain.Product, error) {
	var p domain.Product
	err := db.WithContext(ctx).
		Where("user_id = ? AND name_key = ?", userID, productKey(name)).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProduct removes a catalog entry by case-insensitive exact name.
// Returns ErrNotFound when nothing matched.
func DeleteProduct(ctx context.Context, db *gorm.DB, userID, name string) error {
	res := db.WithContext(ctx).
		Where("user_id = ? AND name_key = ?", userID, productKey(name)).
		Delete(&domain.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListProducts returns the owner's catalog ordered by name.
func ListProducts(ctx context.Context, db *gorm.DB, userID string) ([]domain.Product, error) {
	var out []domain.Product
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name_key asc").
		Find(&out).Error
	return out, err
}
