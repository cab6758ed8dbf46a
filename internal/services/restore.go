// Package services – account restore
//
// "restore <code>" exchanges a backup code for re-linking the chat identity
// to an existing profile. Self-restore is rejected; on success any profile
// already present under the current identity is deleted and the old
// profile's identity is re-pointed here, so the result is a merge and
// never a duplicate.
package services

import (
	"context"
	"errors"

	"github.com/tbourn/go-receipt-bot/internal/repo"
)

// restoreAccount performs the backup-code exchange for userID. Codes are
// issued lowercase, so the presented code is folded before the lookup.
func (e *Engine) restoreAccount(ctx context.Context, userID, code string) error {
	code = Normalize(code)
	if code == "" {
		return e.send(ctx, userID, msgRestoreUsage)
	}

	owner, err := repo.GetUserByBackupCode(ctx, e.DB, code)
	if errors.Is(err, repo.ErrNotFound) {
		return e.send(ctx, userID, msgRestoreBadCode)
	}
	if err != nil {
		return err
	}
	if owner.ID == userID {
		return e.send(ctx, userID, msgRestoreSelf)
	}

	if err := repo.ReassignUserIdentity(ctx, e.DB, owner.ID, userID); err != nil {
		return err
	}
	// Whatever flow was active belonged to the replaced identity.
	if err := repo.ClearSession(ctx, e.DB, userID); err != nil {
		return err
	}
	return e.send(ctx, userID, msgRestoreDone)
}
