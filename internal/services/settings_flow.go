// Package services – brand/preference settings flow
//
// A numbered menu dispatches to single-field update states. Each update
// persists one profile field, answers with a randomized confirmation, and
// clears the session.
package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/tbourn/go-receipt-bot/internal/domain"
	"github.com/tbourn/go-receipt-bot/internal/repo"
)

// settings menu choices map to profile columns.
var settingsFields = map[string]string{
	"1": "brand_name",
	"2": "brand_color",
	"3": "logo_url",
	"4": "address",
	"5": "contact_raw",
}

// startSettings opens the settings menu.
func (e *Engine) startSettings(ctx context.Context, user *domain.UserProfile) error {
	if err := e.setState(ctx, user.ID, domain.StateSettingsMenu, nil); err != nil {
		return err
	}
	return e.send(ctx, user.ID, msgSettingsMenu)
}

// handleSettingsFlow advances the settings flow by one answer.
func (e *Engine) handleSettingsFlow(ctx context.Context, user *domain.UserProfile, sess *domain.Session, text string) error {
	var draft settingsDraft
	if err := decodeDraft(sess, &draft); err != nil {
		return err
	}
	userID := user.ID
	choice := strings.TrimSpace(text)

	switch sess.State {
	case domain.StateSettingsMenu:
		if field, ok := settingsFields[choice]; ok {
			if err := e.setState(ctx, userID, domain.StateSettingsValue, settingsDraft{Field: field}); err != nil {
				return err
			}
			return e.send(ctx, userID, msgAskNewValue)
		}
		switch choice {
		case "6":
			if err := e.setState(ctx, userID, domain.StateSettingsFormat, nil); err != nil {
				return err
			}
			return e.send(ctx, userID, msgAskFormat)
		case "7":
			if err := e.setState(ctx, userID, domain.StateSettingsTemplate, nil); err != nil {
				return err
			}
			return e.send(ctx, userID, msgAskTemplate)
		}
		return e.send(ctx, userID, e.Replies.InvalidChoice())

	case domain.StateSettingsValue:
		if text == "" {
			return e.send(ctx, userID, msgAskNewValue)
		}
		fields := map[string]any{draft.Field: text}
		if draft.Field == "contact_raw" {
			// Re-parse structured contact info alongside the raw value.
			fields["contact_email"] = emailRE.FindString(text)
			fields["contact_phone"] = normalizePhone(phoneRE.FindString(text))
		}
		if err := repo.UpdateUserFields(ctx, e.DB, userID, fields); err != nil {
			return err
		}
		if err := repo.ClearSession(ctx, e.DB, userID); err != nil {
			return err
		}
		return e.send(ctx, userID, e.Replies.Saved())

	case domain.StateSettingsFormat:
		format, err := formatChoice(text)
		if err != nil {
			return e.send(ctx, userID, e.Replies.InvalidChoice())
		}
		if err := repo.UpdateUserFields(ctx, e.DB, userID, map[string]any{"receipt_format": format}); err != nil {
			return err
		}
		if err := repo.ClearSession(ctx, e.DB, userID); err != nil {
			return err
		}
		return e.send(ctx, userID, e.Replies.Saved())

	case domain.StateSettingsTemplate:
		n, err := strconv.Atoi(choice)
		if err != nil || n < 1 || n > 5 {
			return e.send(ctx, userID, e.Replies.InvalidChoice())
		}
		if err := repo.UpdateUserFields(ctx, e.DB, userID, map[string]any{"preferred_template": n}); err != nil {
			return err
		}
		if err := repo.ClearSession(ctx, e.DB, userID); err != nil {
			return err
		}
		return e.send(ctx, userID, e.Replies.Saved())
	}
	return nil
}
