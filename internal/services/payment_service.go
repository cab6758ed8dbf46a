// Package services – payment decision and webhook confirmation
//
// The payment-decision state is where gated premium commands land: the price
// has been quoted, and the user either asks for a virtual account or passes.
// The webhook side applies gateway confirmations idempotently, keyed by the
// provider's charge reference.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/go-receipt-bot/internal/domain"
	"github.com/tbourn/go-receipt-bot/internal/payment"
	"github.com/tbourn/go-receipt-bot/internal/repo"
	"github.com/tbourn/go-receipt-bot/internal/utils"
)

// handlePaymentDecision resolves the awaiting_payment_decision state. Any
// answer resolves it: "yes" provisions a virtual account, everything else
// declines politely. Either way the session is cleared.
func (e *Engine) handlePaymentDecision(ctx context.Context, user *domain.UserProfile, text string) error {
	userID := user.ID
	if err := repo.ClearSession(ctx, e.DB, userID); err != nil {
		return err
	}

	switch Normalize(text) {
	case "yes", "y", "pay":
	default:
		return e.send(ctx, userID, msgPaymentPass)
	}

	account, err := e.Gateway.CreateVirtualAccount(ctx, user)
	if err != nil || account == nil {
		if err == nil {
			err = ErrPaymentDeclined
		}
		log.Error().Err(err).Str("user_id", userID).Msg("virtual account creation failed")
		return e.send(ctx, userID, msgPaymentFail)
	}

	return e.send(ctx, userID, fmt.Sprintf(msgPaymentBank,
		utils.FormatAmount(e.SubscriptionPrice), e.Currency,
		account.BankName, account.AccountNumber))
}

// PaymentConfirmer applies gateway webhook confirmations. It is deliberately
// separate from the Engine: webhooks arrive over HTTP, not chat, and bypass
// the per-user guard.
type PaymentConfirmer struct {
	DB               *gorm.DB
	SubscriptionDays int

	// Now supplies the current time; defaults to time.Now when nil.
	Now func() time.Time
}

// Confirmation errors surfaced to the HTTP layer.
var (
	// ErrPayloadInvalid marks a webhook body missing its reference or
	// customer identity.
	ErrPayloadInvalid = errors.New("invalid payment payload")

	// ErrPayerUnknown means no profile matches the payer's phone identity.
	ErrPayerUnknown = errors.New("payer not found")
)

// Confirm marks the payer's profile paid. Replayed references are detected
// through the payment-event ledger and ignored, so the operation is
// idempotent.
func (c *PaymentConfirmer) Confirm(ctx context.Context, p payment.WebhookPayload) error {
	if p.Reference == "" {
		return ErrPayloadInvalid
	}
	phone := payment.PhoneFromEmail(p.CustomerEmail)
	if phone == "" {
		return ErrPayloadInvalid
	}

	user, err := repo.GetUserByPhone(ctx, c.DB, phone)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrPayerUnknown
	}
	if err != nil {
		return err
	}

	applied, err := repo.RecordPaymentEvent(ctx, c.DB, p.Reference, user.ID, p.Amount)
	if err != nil {
		return err
	}
	if !applied {
		log.Info().Str("reference", p.Reference).Msg("duplicate payment confirmation ignored")
		return nil
	}

	now := time.Now()
	if c.Now != nil {
		now = c.Now()
	}
	expiry := now.AddDate(0, 0, c.SubscriptionDays)
	if err := repo.MarkPaid(ctx, c.DB, user.ID, expiry); err != nil {
		return err
	}
	log.Info().Str("user_id", user.ID).Str("reference", p.Reference).
		Time("expiry", expiry).Msg("subscription activated")
	return nil
}
