// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file records payment-gateway confirmations. The
// provider reference is the primary key, which gives webhook handling its
// at-most-once semantics: the first insert wins, replays are detected and
// ignored.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-receipt-bot/internal/domain"
)

// RecordPaymentEvent inserts a payment confirmation keyed by the provider's
// charge reference. It reports applied=false when the reference was already
// recorded, in which case the caller must not apply the confirmation again.
func RecordPaymentEvent(ctx context.Context, db *gorm.DB, reference, userID string, amount float64) (applied bool, err error) {
	ev := &domain.PaymentEvent{
		Reference: reference,
		UserID:    userID,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(ev)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
