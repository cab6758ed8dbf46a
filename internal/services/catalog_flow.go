// Package services – catalog management
//
// "add product" loops name → price → name → ... until the user types 'done'.
// Removal matches case-insensitively by exact name; adding an existing name
// updates its price.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tbourn/go-receipt-bot/internal/domain"
	"github.com/tbourn/go-receipt-bot/internal/repo"
)

// startAddProduct opens the add-product loop.
func (e *Engine) startAddProduct(ctx context.Context, user *domain.UserProfile) error {
	if err := e.setState(ctx, user.ID, domain.StateProductName, nil); err != nil {
		return err
	}
	return e.send(ctx, user.ID, msgAskProductName)
}

// handleCatalogFlow advances the add-product loop.
func (e *Engine) handleCatalogFlow(ctx context.Context, user *domain.UserProfile, sess *domain.Session, text string) error {
	var draft productDraft
	if err := decodeDraft(sess, &draft); err != nil {
		return err
	}
	userID := user.ID

	if text == "" {
		return e.send(ctx, userID, msgUnknownInput)
	}

	switch sess.State {
	case domain.StateProductName:
		if Normalize(text) == "done" {
			if err := repo.ClearSession(ctx, e.DB, userID); err != nil {
				return err
			}
			return e.send(ctx, userID, e.Replies.Saved())
		}
		draft.Name = text
		if err := e.setState(ctx, userID, domain.StateProductPrice, draft); err != nil {
			return err
		}
		return e.send(ctx, userID, msgAskProductPrice)

	case domain.StateProductPrice:
		if _, err := repo.UpsertProduct(ctx, e.DB, userID, draft.Name, text); err != nil {
			return err
		}
		if err := e.setState(ctx, userID, domain.StateProductName, productDraft{}); err != nil {
			return err
		}
		return e.send(ctx, userID, fmt.Sprintf("Saved %s. Next product name, or 'done' to finish.", draft.Name))
	}
	return nil
}

// removeProduct deletes a catalog entry by exact (case-insensitive) name.
func (e *Engine) removeProduct(ctx context.Context, user *domain.UserProfile, name string) error {
	err := repo.DeleteProduct(ctx, e.DB, user.ID, name)
	if errors.Is(err, repo.ErrNotFound) {
		return e.send(ctx, user.ID, msgProductMissing)
	}
	if err != nil {
		return err
	}
	return e.send(ctx, user.ID, msgProductRemoved)
}

// listProducts sends the user's catalog.
func (e *Engine) listProducts(ctx context.Context, user *domain.UserProfile) error {
	products, err := repo.ListProducts(ctx, e.DB, user.ID)
	if err != nil {
		return err
	}
	if len(products) == 0 {
		return e.send(ctx, user.ID, msgCatalogEmpty)
	}
	var b strings.Builder
	b.WriteString("Your catalog:\n")
	for _, p := range products {
		fmt.Fprintf(&b, "• %s — %s\n", p.Name, p.Price)
	}
	return e.send(ctx, user.ID, strings.TrimRight(b.String(), "\n"))
}
