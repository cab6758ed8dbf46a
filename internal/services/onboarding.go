// Package services – onboarding flow
//
// Onboarding collects the business profile one field per step: brand name,
// color, logo (skippable), address, contact info. The profile row is created
// on the very first answer and each subsequent step persists exactly one
// field before advancing. Completion stamps the profile, issues the backup
// code used by account restore, and clears the session.
package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/tbourn/go-receipt-bot/internal/domain"
	"github.com/tbourn/go-receipt-bot/internal/repo"
)

var (
	emailRE = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRE = regexp.MustCompile(`\+?\d[\d\s\-]{6,}\d`)
)

// maybeStartOnboarding begins onboarding for an unknown identity, subject to
// the global registrations-open setting. While registrations are closed only
// allow-listed identities may enter.
func (e *Engine) maybeStartOnboarding(ctx context.Context, userID string) error {
	settings, err := repo.GetSettings(ctx, e.DB)
	if err != nil {
		return err
	}
	if !settings.RegistrationsOpen {
		if _, ok := e.SignupAllowlist[userID]; !ok {
			return e.send(ctx, userID, msgRegistrations)
		}
	}
	if err := e.setState(ctx, userID, domain.StateOnboardBrandName, nil); err != nil {
		return err
	}
	return e.send(ctx, userID, msgOnboardWelcome)
}

// handleOnboarding advances the onboarding flow by one answered question.
func (e *Engine) handleOnboarding(ctx context.Context, userID, state, text string, user *domain.UserProfile) error {
	if text == "" {
		return e.send(ctx, userID, msgUnknownInput)
	}

	switch state {
	case domain.StateOnboardBrandName:
		// First answer creates the profile.
		u := &domain.UserProfile{ID: userID, BrandName: text}
		if err := repo.SaveUser(ctx, e.DB, u); err != nil {
			return err
		}
		if err := e.setState(ctx, userID, domain.StateOnboardBrandColor, nil); err != nil {
			return err
		}
		return e.send(ctx, userID, msgAskBrandColor)

	case domain.StateOnboardBrandColor:
		if err := repo.UpdateUserFields(ctx, e.DB, userID, map[string]any{"brand_color": text}); err != nil {
			return err
		}
		if err := e.setState(ctx, userID, domain.StateOnboardLogo, nil); err != nil {
			return err
		}
		return e.send(ctx, userID, msgAskLogo)

	case domain.StateOnboardLogo:
		logo := ""
		if Normalize(text) != "skip" {
			logo = text
		}
		if err := repo.UpdateUserFields(ctx, e.DB, userID, map[string]any{"logo_url": logo}); err != nil {
			return err
		}
		if err := e.setState(ctx, userID, domain.StateOnboardAddress, nil); err != nil {
			return err
		}
		return e.send(ctx, userID, msgAskAddress)

	case domain.StateOnboardAddress:
		if err := repo.UpdateUserFields(ctx, e.DB, userID, map[string]any{"address": text}); err != nil {
			return err
		}
		if err := e.setState(ctx, userID, domain.StateOnboardContact, nil); err != nil {
			return err
		}
		return e.send(ctx, userID, msgAskContact)

	case domain.StateOnboardContact:
		code := newBackupCode()
		fields := map[string]any{
			"contact_raw":         text,
			"contact_email":       emailRE.FindString(text),
			"contact_phone":       normalizePhone(phoneRE.FindString(text)),
			"onboarding_complete": true,
			"backup_code":         code,
		}
		if err := repo.UpdateUserFields(ctx, e.DB, userID, fields); err != nil {
			return err
		}
		if err := repo.ClearSession(ctx, e.DB, userID); err != nil {
			return err
		}
		done := fmt.Sprintf(
			"You're all set! 🎉\nYour backup code is %s — save it somewhere safe; it moves your account to a new number via 'restore <code>'.\nType 'new receipt' to bill your first customer.",
			code,
		)
		return e.send(ctx, userID, done)
	}
	return nil
}

// newBackupCode issues a short recovery code. Lowercase so restore matching
// survives the router's case folding.
func newBackupCode() string {
	return "rb-" + strings.ToLower(uuid.NewString()[:8])
}

// normalizePhone strips separators from a matched phone number.
func normalizePhone(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-':
			return -1
		}
		return r
	}, s)
}
