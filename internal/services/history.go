// Package services – history, stats, export, resend
//
// Read-only aggregations over stored receipts. Resend replays the latest
// receipt through the pipeline in resend mode: no new persistence, no
// counter increment. Export is a premium command and ships the current
// month's receipts as a CSV artifact.
package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tbourn/go-receipt-bot/internal/channel"
	"github.com/tbourn/go-receipt-bot/internal/domain"
	"github.com/tbourn/go-receipt-bot/internal/repo"
	"github.com/tbourn/go-receipt-bot/internal/utils"
)

// historyWindow is how many receipts "history" shows.
const historyWindow = 5

// sendHistory summarizes the user's most recent receipts.
func (e *Engine) sendHistory(ctx context.Context, user *domain.UserProfile) error {
	receipts, err := repo.ListRecentReceipts(ctx, e.DB, user.ID, historyWindow)
	if err != nil {
		return err
	}
	if len(receipts) == 0 {
		return e.send(ctx, user.ID, msgNothingYet)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Your last %d receipt(s):\n", len(receipts))
	for _, r := range receipts {
		fmt.Fprintf(&b, "• %s — %s %s (%s)\n",
			r.CustomerName, utils.FormatAmount(r.Total), e.Currency,
			r.CreatedAt.Format("Jan 2"))
	}
	b.WriteString("Type 'resend' to resend the latest one.")
	return e.send(ctx, user.ID, b.String())
}

// sendStats reports the current month's receipt count and revenue.
func (e *Engine) sendStats(ctx context.Context, user *domain.UserProfile) error {
	from, to := repo.MonthWindow(time.Now())
	count, revenue, err := repo.MonthlyStats(ctx, e.DB, user.ID, from, to)
	if err != nil {
		return err
	}
	if count == 0 {
		return e.send(ctx, user.ID, msgNothingYet)
	}
	return e.send(ctx, user.ID, fmt.Sprintf(
		"%s so far: %d receipt(s), %s %s total.",
		from.Format("January"), count, utils.FormatAmount(revenue), e.Currency))
}

// exportMonth delivers the current month's receipts as a CSV file. Export is
// premium: the same trial gate as creation applies.
func (e *Engine) exportMonth(ctx context.Context, user *domain.UserProfile) error {
	if !e.Paywall.AllowCreate(user) {
		return e.quotePaywall(ctx, user.ID, msgPaymentQuote)
	}
	from, to := repo.MonthWindow(time.Now())
	receipts, err := repo.ListReceiptsBetween(ctx, e.DB, user.ID, from, to)
	if err != nil {
		return err
	}
	if len(receipts) == 0 {
		return e.send(ctx, user.ID, msgNothingYet)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"date", "customer", "items", "prices", "payment_method", "total"})
	for _, r := range receipts {
		_ = w.Write([]string{
			r.CreatedAt.Format("2006-01-02"),
			r.CustomerName,
			strings.Join(r.Items, "; "),
			strings.Join(r.Prices, "; "),
			r.PaymentMethod,
			utils.FormatAmount(r.Total),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}

	file := channel.File{
		Data:     buf.Bytes(),
		FileName: fmt.Sprintf("receipts-%s.csv", from.Format("2006-01")),
		MimeType: "text/csv",
	}
	caption := fmt.Sprintf("Your %s receipts (%d).", from.Format("January"), len(receipts))
	return e.Channel.SendFile(ctx, user.ID, file, caption)
}

// resendLatest replays the most recent receipt through the pipeline without
// touching persistence or counters.
func (e *Engine) resendLatest(ctx context.Context, user *domain.UserProfile) error {
	rec, err := repo.LatestReceipt(ctx, e.DB, user.ID)
	if errors.Is(err, repo.ErrNotFound) {
		return e.send(ctx, user.ID, msgNothingYet)
	}
	if err != nil {
		return err
	}
	return e.Pipeline.Run(ctx, user.ID, user, rec, ModeResend)
}
