// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// by the history/stats conversation flows. Each function is context-aware and
// safe to call from services.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-receipt-bot/internal/domain"
)

// MonthWindow returns the [from, to) bounds of the calendar month containing t (UTC).
func MonthWindow(t time.Time) (from, to time.Time) {
	t = t.UTC()
	from = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	to = from.AddDate(0, 1, 0)
	return from, to
}

// MonthlyStats returns aggregate metadata for a user's receipts within
// [from, to): the number of receipts created and the sum of their totals.
//
// Return values:
//   - count:   receipts created in the window
//   - revenue: sum of Receipt.Total over the window (0 when none)
//   - err:     database error, if any
func MonthlyStats(ctx context.Context, db *gorm.DB, userID string, from, to time.Time) (count int64, revenue float64, err error) {
	q := db.WithContext(ctx).
		Model(&domain.Receipt{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, from, to)

	if err = q.Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}

	// COALESCE keeps the scan from failing on NULL SUM.
	var row struct {
		Revenue float64
	}
	if err = q.Select("COALESCE(SUM(total), 0) AS revenue").Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return count, row.Revenue, nil
}
