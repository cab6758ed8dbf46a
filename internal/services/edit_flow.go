// Package services – receipt editing flow
//
// Editing targets the user's latest receipt: choose a field (name,
// items+prices, payment method), re-enter it, and finalize through the
// pipeline in edit mode. Items and prices must be re-submitted together with
// matching counts; a mismatch aborts the whole edit and clears the session
// rather than retrying in place. Each receipt has a small free-edit
// allowance; beyond it the paywall takes over.
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/tbourn/go-receipt-bot/internal/domain"
	"github.com/tbourn/go-receipt-bot/internal/repo"
	"github.com/tbourn/go-receipt-bot/internal/utils"
)

// startEdit opens the edit flow on the latest receipt.
func (e *Engine) startEdit(ctx context.Context, user *domain.UserProfile) error {
	rec, err := repo.LatestReceipt(ctx, e.DB, user.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return e.send(ctx, user.ID, msgNoReceiptEdit)
	}
	if err != nil {
		return err
	}
	if !e.Paywall.AllowEdit(user, rec) {
		return e.quotePaywall(ctx, user.ID, msgEditQuote)
	}
	if err := e.setState(ctx, user.ID, domain.StateEditChooseField, editDraft{ReceiptID: rec.ID}); err != nil {
		return err
	}
	return e.send(ctx, user.ID, msgEditMenu)
}

// handleEditFlow advances the edit flow by one answer.
func (e *Engine) handleEditFlow(ctx context.Context, user *domain.UserProfile, sess *domain.Session, text string) error {
	var draft editDraft
	if err := decodeDraft(sess, &draft); err != nil {
		return err
	}
	userID := user.ID

	if text == "" {
		return e.send(ctx, userID, msgUnknownInput)
	}

	switch sess.State {
	case domain.StateEditChooseField:
		switch strings.TrimSpace(text) {
		case "1":
			if err := e.setState(ctx, userID, domain.StateEditCustomerName, draft); err != nil {
				return err
			}
			return e.send(ctx, userID, msgEditName)
		case "2":
			if err := e.setState(ctx, userID, domain.StateEditItems, draft); err != nil {
				return err
			}
			return e.send(ctx, userID, msgEditItems)
		case "3":
			if err := e.setState(ctx, userID, domain.StateEditPayment, draft); err != nil {
				return err
			}
			return e.send(ctx, userID, msgEditPayment)
		default:
			return e.send(ctx, userID, e.Replies.InvalidChoice())
		}

	case domain.StateEditCustomerName:
		return e.finalizeEdit(ctx, user, draft, func(rec *domain.Receipt) {
			rec.CustomerName = text
		})

	case domain.StateEditItems:
		items := utils.SplitList(text)
		if len(items) == 0 {
			return e.send(ctx, userID, msgEditItems)
		}
		draft.Items = items
		if err := e.setState(ctx, userID, domain.StateEditPrices, draft); err != nil {
			return err
		}
		return e.send(ctx, userID, msgEditPrices)

	case domain.StateEditPrices:
		prices := priceTokens(text)
		if len(prices) != len(draft.Items) {
			// Mismatch aborts the edit entirely; the receipt is untouched.
			if err := repo.ClearSession(ctx, e.DB, userID); err != nil {
				return err
			}
			return e.send(ctx, userID, msgEditAborted)
		}
		return e.finalizeEdit(ctx, user, draft, func(rec *domain.Receipt) {
			rec.Items = draft.Items
			rec.Prices = prices
		})

	case domain.StateEditPayment:
		return e.finalizeEdit(ctx, user, draft, func(rec *domain.Receipt) {
			rec.PaymentMethod = text
		})
	}
	return nil
}

// finalizeEdit loads the target receipt, applies the change, and runs the
// pipeline in edit mode. A vanished receipt clears the session: continuing
// is meaningless.
func (e *Engine) finalizeEdit(ctx context.Context, user *domain.UserProfile, draft editDraft, apply func(*domain.Receipt)) error {
	rec, err := repo.GetReceipt(ctx, e.DB, draft.ReceiptID, user.ID)
	if errors.Is(err, repo.ErrNotFound) {
		if cerr := repo.ClearSession(ctx, e.DB, user.ID); cerr != nil {
			return cerr
		}
		return e.send(ctx, user.ID, msgNoReceiptEdit)
	}
	if err != nil {
		return err
	}
	apply(rec)
	return e.Pipeline.Run(ctx, user.ID, user, rec, ModeEdit)
}
