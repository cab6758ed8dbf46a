// Package services – admin settings flow
//
// A numbered menu followed by a yes/no confirmation toggles the global
// registrations-open flag. The flow rides the same session mechanism as
// user flows, keyed by the admin's identity.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/tbourn/go-receipt-bot/internal/domain"
	"github.com/tbourn/go-receipt-bot/internal/repo"
)

// openClosed renders a registrations flag for messages.
func openClosed(open bool) string {
	if open {
		return "open"
	}
	return "closed"
}

// startAdminSettings opens the admin settings menu.
func (e *Engine) startAdminSettings(ctx context.Context, adminID string) error {
	settings, err := repo.GetSettings(ctx, e.DB)
	if err != nil {
		return err
	}
	if err := e.setState(ctx, adminID, domain.StateAdminMenu, nil); err != nil {
		return err
	}
	return e.send(ctx, adminID, fmt.Sprintf(msgAdminMenu, openClosed(settings.RegistrationsOpen)))
}

// handleAdminSettingsFlow advances the admin settings flow by one answer.
func (e *Engine) handleAdminSettingsFlow(ctx context.Context, adminID string, sess *domain.Session, text string) error {
	choice := strings.TrimSpace(text)

	switch sess.State {
	case domain.StateAdminMenu:
		if choice != "1" {
			return e.send(ctx, adminID, e.Replies.InvalidChoice())
		}
		settings, err := repo.GetSettings(ctx, e.DB)
		if err != nil {
			return err
		}
		target := !settings.RegistrationsOpen
		if err := e.setState(ctx, adminID, domain.StateAdminConfirm, adminDraft{Open: target}); err != nil {
			return err
		}
		return e.send(ctx, adminID, fmt.Sprintf(msgAdminConfirm,
			openClosed(settings.RegistrationsOpen), openClosed(target)))

	case domain.StateAdminConfirm:
		var draft adminDraft
		if err := decodeDraft(sess, &draft); err != nil {
			return err
		}
		switch Normalize(choice) {
		case "yes", "y":
			if err := repo.SetRegistrationsOpen(ctx, e.DB, draft.Open); err != nil {
				return err
			}
			if err := repo.ClearSession(ctx, e.DB, adminID); err != nil {
				return err
			}
			return e.send(ctx, adminID, fmt.Sprintf(msgAdminDone, openClosed(draft.Open)))
		case "no", "n":
			if err := repo.ClearSession(ctx, e.DB, adminID); err != nil {
				return err
			}
			return e.send(ctx, adminID, msgAdminKept)
		default:
			return e.send(ctx, adminID, e.Replies.InvalidChoice())
		}
	}
	return nil
}
