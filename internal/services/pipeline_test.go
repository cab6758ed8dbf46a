package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/go-receipt-bot/internal/domain"
	"github.com/tbourn/go-receipt-bot/internal/repo"
)

func newTestPipeline(t *testing.T) (*ReceiptPipeline, *gorm.DB, *fakeChannel, *stubRenderer) {
	t.Helper()
	db := newServiceDB(t)
	ch := &fakeChannel{}
	rd := &stubRenderer{data: []byte("png-bytes")}
	p := &ReceiptPipeline{
		DB:              db,
		Renderer:        rd,
		Channel:         ch,
		RenderBaseURL:   "http://render:3000/receipt",
		DefaultTemplate: 1,
	}
	return p, db, ch, rd
}

func TestPipelineRun_CountMismatchNeverPersists(t *testing.T) {
	p, db, _, _ := newTestPipeline(t)
	u := &domain.UserProfile{ID: "u1"}
	_ = repo.SaveUser(context.Background(), db, u)

	rec := &domain.Receipt{CustomerName: "Ada", Items: []string{"a", "b"}, Prices: []string{"1"}}
	err := p.Run(context.Background(), "u1", u, rec, ModeCreate)
	if !errors.Is(err, ErrCountMismatch) {
		t.Fatalf("expected ErrCountMismatch, got %v", err)
	}
	if _, err := repo.LatestReceipt(context.Background(), db, "u1"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("mismatched draft must not persist, got %v", err)
	}
}

func TestPipelineRun_CreateDeliversAndCounts(t *testing.T) {
	p, db, ch, rd := newTestPipeline(t)
	ctx := context.Background()
	u := &domain.UserProfile{ID: "u1", ReceiptFormat: domain.FormatPNG, PreferredTemplate: 2}
	_ = repo.SaveUser(ctx, db, u)
	_ = repo.PutSession(ctx, db, "u1", domain.StateReceiptPayment, nil)

	rec := &domain.Receipt{CustomerName: "Ada", Items: []string{"Fanta", "Pie"}, Prices: []string{"500", "1,200"}, PaymentMethod: "cash"}
	if err := p.Run(ctx, "u1", u, rec, ModeCreate); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if rec.Total != 1700 {
		t.Fatalf("total = %v, want 1700 (tolerant price parsing)", rec.Total)
	}
	stored, err := repo.LatestReceipt(ctx, db, "u1")
	if err != nil {
		t.Fatalf("receipt not stored: %v", err)
	}
	if stored.UserID != "u1" || stored.EditCount != 0 {
		t.Fatalf("stored receipt: %+v", stored)
	}

	if rd.calls != 1 || !strings.Contains(rd.lastURL, "/2?") {
		t.Fatalf("render call: calls=%d url=%q (template preference)", rd.calls, rd.lastURL)
	}
	if len(ch.files) != 1 || ch.files[0].File.MimeType != "image/png" {
		t.Fatalf("delivery: %+v", ch.files)
	}
	if !strings.HasSuffix(ch.files[0].File.FileName, ".png") {
		t.Fatalf("file name: %q", ch.files[0].File.FileName)
	}

	got, _ := repo.GetUser(ctx, db, "u1")
	if got.ReceiptCount != 1 {
		t.Fatalf("ReceiptCount = %d, want 1", got.ReceiptCount)
	}
	if _, err := repo.GetSession(ctx, db, "u1"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("session should be cleared after create")
	}
}

func TestPipelineRun_EditUpdatesInPlace(t *testing.T) {
	p, db, _, _ := newTestPipeline(t)
	ctx := context.Background()
	u := &domain.UserProfile{ID: "u1", ReceiptFormat: domain.FormatPDF}
	_ = repo.SaveUser(ctx, db, u)

	rec := &domain.Receipt{UserID: "u1", CustomerName: "Ada", Items: []string{"Fanta"}, Prices: []string{"500"}, Total: 500}
	_ = repo.CreateReceipt(ctx, db, rec)
	created := rec.CreatedAt

	rec.CustomerName = "Grace"
	rec.Prices = []string{"900"}
	if err := p.Run(ctx, "u1", u, rec, ModeEdit); err != nil {
		t.Fatalf("Run edit: %v", err)
	}

	stored, _ := repo.GetReceipt(ctx, db, rec.ID, "u1")
	if stored.CustomerName != "Grace" || stored.Total != 900 {
		t.Fatalf("edit not applied: %+v", stored)
	}
	if stored.EditCount != 1 {
		t.Fatalf("EditCount = %d, want 1", stored.EditCount)
	}
	if !stored.CreatedAt.Equal(created) {
		t.Fatalf("CreatedAt changed on edit")
	}

	// Edit never bumps the creation counter.
	got, _ := repo.GetUser(ctx, db, "u1")
	if got.ReceiptCount != 0 {
		t.Fatalf("edit bumped ReceiptCount to %d", got.ReceiptCount)
	}

	var count int64
	db.Model(&domain.Receipt{}).Count(&count)
	if count != 1 {
		t.Fatalf("edit created a new row: %d", count)
	}
}

func TestPipelineRun_ResendTouchesNothing(t *testing.T) {
	p, db, ch, rd := newTestPipeline(t)
	ctx := context.Background()
	u := &domain.UserProfile{ID: "u1", ReceiptFormat: domain.FormatPNG}
	_ = repo.SaveUser(ctx, db, u)
	_ = repo.PutSession(ctx, db, "u1", domain.StateInSupport, nil)

	rec := &domain.Receipt{UserID: "u1", CustomerName: "Ada", Items: []string{"Fanta"}, Prices: []string{"500"}, Total: 500}
	_ = repo.CreateReceipt(ctx, db, rec)

	if err := p.Run(ctx, "u1", u, rec, ModeResend); err != nil {
		t.Fatalf("Run resend: %v", err)
	}
	if rd.calls != 1 || len(ch.files) != 1 {
		t.Fatalf("resend should still render and deliver")
	}

	stored, _ := repo.GetReceipt(ctx, db, rec.ID, "u1")
	if stored.EditCount != 0 {
		t.Fatalf("resend incremented EditCount")
	}
	got, _ := repo.GetUser(ctx, db, "u1")
	if got.ReceiptCount != 0 {
		t.Fatalf("resend incremented ReceiptCount")
	}
	// Resend happens outside a flow; any unrelated session survives.
	if _, err := repo.GetSession(ctx, db, "u1"); err != nil {
		t.Fatalf("resend must not clear the session: %v", err)
	}
}

func TestPipelineRun_RenderFailureApologizesAndClears(t *testing.T) {
	p, db, ch, rd := newTestPipeline(t)
	ctx := context.Background()
	u := &domain.UserProfile{ID: "u1", ReceiptFormat: domain.FormatPNG}
	_ = repo.SaveUser(ctx, db, u)
	_ = repo.PutSession(ctx, db, "u1", domain.StateReceiptPayment, nil)

	rd.err = errors.New("page load failed")
	rec := &domain.Receipt{CustomerName: "Ada", Items: []string{"Fanta"}, Prices: []string{"500"}}
	err := p.Run(ctx, "u1", u, rec, ModeCreate)
	if !errors.Is(err, ErrRenderFailed) {
		t.Fatalf("expected ErrRenderFailed, got %v", err)
	}

	if got := ch.last("u1"); got != msgRenderFailed {
		t.Fatalf("apology = %q", got)
	}
	if _, err := repo.GetSession(ctx, db, "u1"); !errors.Is(err, repo.ErrNotFound) {
		t.Fatalf("failed render must clear the session")
	}
	// The receipt row was created before the render attempt; the counter was not.
	got, _ := repo.GetUser(ctx, db, "u1")
	if got.ReceiptCount != 0 {
		t.Fatalf("counter bumped despite failure")
	}
}

func TestPipelineRun_DeliveryFailure(t *testing.T) {
	p, db, ch, _ := newTestPipeline(t)
	ctx := context.Background()
	u := &domain.UserProfile{ID: "u1", ReceiptFormat: domain.FormatPNG}
	_ = repo.SaveUser(ctx, db, u)

	ch.fileErr = errors.New("channel down")
	rec := &domain.Receipt{CustomerName: "Ada", Items: []string{"Fanta"}, Prices: []string{"500"}}
	if err := p.Run(ctx, "u1", u, rec, ModeCreate); err == nil {
		t.Fatalf("expected delivery error")
	}
	if got := ch.last("u1"); got != msgRenderFailed {
		t.Fatalf("apology = %q", got)
	}
	got, _ := repo.GetUser(ctx, db, "u1")
	if got.ReceiptCount != 0 {
		t.Fatalf("counter bumped despite delivery failure")
	}
}

func TestPipelineRun_FormatDefaultsToPNG(t *testing.T) {
	p, db, ch, rd := newTestPipeline(t)
	ctx := context.Background()
	u := &domain.UserProfile{ID: "u1"} // no format preference
	_ = repo.SaveUser(ctx, db, u)

	rec := &domain.Receipt{CustomerName: "Ada", Items: []string{"Fanta"}, Prices: []string{"500"}}
	if err := p.Run(ctx, "u1", u, rec, ModeCreate); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if string(rd.lastFmt) != domain.FormatPNG {
		t.Fatalf("format = %q, want png default", rd.lastFmt)
	}
	if ch.files[0].File.MimeType != "image/png" {
		t.Fatalf("mime = %q", ch.files[0].File.MimeType)
	}
}
