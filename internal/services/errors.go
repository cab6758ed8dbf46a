// Package services implements the conversation core: the per-user processing
// guard, command routing, paywall gating, the conversation state machine, the
// receipt pipeline, and the support sub-flow. This file centralizes common
// service-level error values so that they can be consistently returned by
// service methods and checked by callers.
//
// The taxonomy mirrors how failures are handled:
//   - validation errors are recovered locally with a re-prompt;
//   - not-found errors are reported to the user;
//   - external-service errors are reported generically and clear the session;
//   - stale-session conditions fall back to the idle greeting.
package services

import "errors"

var (
	// ErrCountMismatch is returned when an items list and a prices list have
	// different lengths. Drafts violating this never reach persistence.
	ErrCountMismatch = errors.New("item and price counts differ")

	// ErrInvalidChoice is returned for a numbered-menu reply outside the
	// offered range.
	ErrInvalidChoice = errors.New("invalid menu choice")

	// ErrReceiptNotFound indicates the user has no receipt to edit or resend.
	ErrReceiptNotFound = errors.New("receipt not found")

	// ErrProductNotFound indicates no catalog entry matches the given name.
	ErrProductNotFound = errors.New("product not found")

	// ErrTicketNotFound indicates no ticket matches the given id fragment.
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrBackupCodeNotFound indicates no profile owns the presented backup code.
	ErrBackupCodeNotFound = errors.New("backup code not found")

	// ErrSelfRestore is returned when a user presents their own backup code.
	ErrSelfRestore = errors.New("cannot restore into the same account")

	// ErrRenderFailed wraps rendering collaborator failures (non-OK page load
	// or capture errors).
	ErrRenderFailed = errors.New("render failed")

	// ErrPaymentDeclined is returned when the gateway yields no virtual
	// account without reporting an error.
	ErrPaymentDeclined = errors.New("payment account creation declined")

	// ErrStaleSession indicates a session referencing state that no longer
	// exists (e.g. a thread against a deleted ticket). Handled as idle.
	ErrStaleSession = errors.New("stale session")

	// ErrRegistrationsClosed indicates onboarding is globally disabled and
	// the identity is not on the signup allowlist.
	ErrRegistrationsClosed = errors.New("registrations closed")
)
