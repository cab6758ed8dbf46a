// Package services – receipt creation flow
//
// customer name → items → (manual prices) → payment method → (one-time format
// choice) → pipeline. Item input supports quantity shorthand ("Fanta x2")
// resolved against the owner's catalog; tokens the catalog doesn't know fall
// through to manual pricing with the raw token preserved.
package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tbourn/go-receipt-bot/internal/domain"
	"github.com/tbourn/go-receipt-bot/internal/repo"
	"github.com/tbourn/go-receipt-bot/internal/utils"
)

// qtyRE matches quantity shorthand: "<name> x<N>" (case-insensitive).
var qtyRE = regexp.MustCompile(`^(.*\S)\s+[xX]\s*(\d+)$`)

// startNewReceipt opens the creation flow, or routes to the payment decision
// when the free trial is exhausted.
func (e *Engine) startNewReceipt(ctx context.Context, user *domain.UserProfile) error {
	if !e.Paywall.AllowCreate(user) {
		return e.quotePaywall(ctx, user.ID, msgPaymentQuote)
	}
	if err := e.setState(ctx, user.ID, domain.StateReceiptCustomerName, receiptDraft{}); err != nil {
		return err
	}
	return e.send(ctx, user.ID, msgAskCustomerName)
}

// handleReceiptFlow advances the creation flow by one answer.
func (e *Engine) handleReceiptFlow(ctx context.Context, user *domain.UserProfile, sess *domain.Session, text string) error {
	var draft receiptDraft
	if err := decodeDraft(sess, &draft); err != nil {
		return err
	}
	userID := user.ID

	if text == "" {
		return e.send(ctx, userID, msgUnknownInput)
	}

	switch sess.State {
	case domain.StateReceiptCustomerName:
		draft.CustomerName = text
		if err := e.setState(ctx, userID, domain.StateReceiptItems, draft); err != nil {
			return err
		}
		return e.send(ctx, userID, msgAskItems)

	case domain.StateReceiptItems:
		items, prices, pending, err := e.expandItems(ctx, userID, text)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			return e.send(ctx, userID, msgAskItems)
		}
		draft.Items, draft.Prices, draft.Pending = items, prices, pending
		if len(pending) > 0 {
			if err := e.setState(ctx, userID, domain.StateReceiptPrices, draft); err != nil {
				return err
			}
			return e.send(ctx, userID, askPricesMessage(draft))
		}
		if err := e.setState(ctx, userID, domain.StateReceiptPayment, draft); err != nil {
			return err
		}
		return e.send(ctx, userID, msgAskPayment)

	case domain.StateReceiptPrices:
		values := priceTokens(text)
		if len(values) != len(draft.Pending) {
			// Count mismatch recovers locally; the state does not move.
			return e.send(ctx, userID, fmt.Sprintf(
				"I need exactly %d price(s), one for each of the unpriced items. Try again.", len(draft.Pending)))
		}
		for i, idx := range draft.Pending {
			draft.Prices[idx] = values[i]
		}
		draft.Pending = nil
		if err := e.setState(ctx, userID, domain.StateReceiptPayment, draft); err != nil {
			return err
		}
		return e.send(ctx, userID, msgAskPayment)

	case domain.StateReceiptPayment:
		draft.PaymentMethod = text
		// The format question is asked exactly once, on the very first
		// receipt of a user who never chose a format.
		if user.ReceiptFormat == "" && user.ReceiptCount == 0 {
			if err := e.setState(ctx, userID, domain.StateReceiptFormat, draft); err != nil {
				return err
			}
			return e.send(ctx, userID, msgAskFormat)
		}
		return e.finalizeCreate(ctx, user, draft)

	case domain.StateReceiptFormat:
		format, err := formatChoice(text)
		if err != nil {
			return e.send(ctx, userID, e.Replies.InvalidChoice())
		}
		if err := repo.UpdateUserFields(ctx, e.DB, userID, map[string]any{"receipt_format": format}); err != nil {
			return err
		}
		user.ReceiptFormat = format
		return e.finalizeCreate(ctx, user, draft)
	}
	return nil
}

// finalizeCreate hands the completed draft to the pipeline.
func (e *Engine) finalizeCreate(ctx context.Context, user *domain.UserProfile, draft receiptDraft) error {
	rec := &domain.Receipt{
		CustomerName:  draft.CustomerName,
		Items:         draft.Items,
		Prices:        draft.Prices,
		PaymentMethod: draft.PaymentMethod,
	}
	return e.Pipeline.Run(ctx, user.ID, user, rec, ModeCreate)
}

// expandItems parses an item list, expanding catalog-known tokens (with
// optional quantity shorthand) into priced line items. Unknown tokens are
// kept verbatim with an empty price and their index recorded in pending.
func (e *Engine) expandItems(ctx context.Context, userID, text string) (items, prices []string, pending []int, err error) {
	for _, token := range utils.SplitList(text) {
		name, qty := token, 1
		if m := qtyRE.FindStringSubmatch(token); m != nil {
			name = m[1]
			if n, aerr := strconv.Atoi(m[2]); aerr == nil && n > 0 {
				qty = n
			}
		}
		p, ferr := repo.FindProduct(ctx, e.DB, userID, name)
		switch {
		case ferr == nil:
			for i := 0; i < qty; i++ {
				items = append(items, p.Name)
				prices = append(prices, p.Price)
			}
		case errors.Is(ferr, repo.ErrNotFound):
			// Fall through to manual pricing, raw token preserved.
			items = append(items, token)
			prices = append(prices, "")
			pending = append(pending, len(items)-1)
		default:
			return nil, nil, nil, ferr
		}
	}
	return items, prices, pending, nil
}

// askPricesMessage lists the items still waiting for a manual price.
func askPricesMessage(draft receiptDraft) string {
	var b strings.Builder
	b.WriteString("Send the price for each of these, in order (comma-separated):\n")
	for _, idx := range draft.Pending {
		fmt.Fprintf(&b, "• %s\n", draft.Items[idx])
	}
	return strings.TrimRight(b.String(), "\n")
}

// priceTokens splits a price reply; commas/newlines first, bare spaces as a
// fallback so "500 1200 300" works too.
func priceTokens(text string) []string {
	tokens := utils.SplitList(text)
	if len(tokens) == 1 && strings.ContainsRune(text, ' ') {
		return strings.Fields(text)
	}
	return tokens
}

// formatChoice maps a numbered reply to an artifact format.
func formatChoice(text string) (string, error) {
	switch strings.TrimSpace(text) {
	case "1":
		return domain.FormatPNG, nil
	case "2":
		return domain.FormatPDF, nil
	default:
		return "", ErrInvalidChoice
	}
}

// quotePaywall moves the session into the payment-decision state with the
// fixed subscription price quoted.
func (e *Engine) quotePaywall(ctx context.Context, userID, template string) error {
	if err := e.setState(ctx, userID, domain.StateAwaitingPayment, nil); err != nil {
		return err
	}
	quote := fmt.Sprintf(template, utils.FormatAmount(e.SubscriptionPrice), e.Currency, e.SubscriptionDays)
	return e.send(ctx, userID, quote)
}
