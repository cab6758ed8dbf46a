// Package services – Paywall
//
// The paywall decides whether a premium command (new receipt, edit, export)
// may run. Blocking never rejects outright: the engine moves the session into
// an explicit payment-decision state with a fixed price quoted.
package services

import (
	"time"

	"github.com/tbourn/go-receipt-bot/internal/domain"
)

// Paywall evaluates subscription status and trial usage.
type Paywall struct {
	// Admins is the allow-list of identities that are always treated as
	// subscribed.
	Admins map[string]struct{}

	// FreeTrialLimit is the number of receipts a non-subscribed account may
	// create before creation/export is gated.
	FreeTrialLimit int

	// FreeEditLimit is the number of edits allowed per receipt (not per
	// account) without a subscription.
	FreeEditLimit int

	// Now supplies the current time; defaults to time.Now when nil.
	Now func() time.Time
}

func (p *Paywall) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// IsSubscriptionActive reports whether the user may use premium commands
// without usage limits: true for admin identities, else true only when the
// profile is paid and its expiry is strictly in the future.
func (p *Paywall) IsSubscriptionActive(u *domain.UserProfile) bool {
	if u == nil {
		return false
	}
	if _, ok := p.Admins[u.ID]; ok {
		return true
	}
	return u.IsPaid && u.SubscriptionExpiry != nil && u.SubscriptionExpiry.After(p.now())
}

// AllowCreate reports whether the user may create or export a receipt.
// Non-subscribed accounts are allowed until they exhaust the free trial.
func (p *Paywall) AllowCreate(u *domain.UserProfile) bool {
	if p.IsSubscriptionActive(u) {
		return true
	}
	return u != nil && u.ReceiptCount < p.FreeTrialLimit
}

// AllowEdit reports whether the user may edit the given receipt. The free
// edit allowance is counted per receipt.
func (p *Paywall) AllowEdit(u *domain.UserProfile, r *domain.Receipt) bool {
	if p.IsSubscriptionActive(u) {
		return true
	}
	return r != nil && r.EditCount < p.FreeEditLimit
}
