// Package services – ReceiptPipeline
//
// The pipeline turns a validated receipt draft into a delivered artifact:
// persist (create/edit), build the templated page URL, capture it through the
// rendering collaborator, and deliver the file through the channel. From the
// caller's point of view one call does all of it, including counter updates
// and session cleanup. Resend mode replays an existing receipt and never
// touches persistence.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-receipt-bot/internal/channel"
	"github.com/tbourn/go-receipt-bot/internal/domain"
	"github.com/tbourn/go-receipt-bot/internal/render"
	"github.com/tbourn/go-receipt-bot/internal/repo"
	"github.com/tbourn/go-receipt-bot/internal/utils"
)

// Mode selects the pipeline's persistence behavior.
type Mode string

// Pipeline modes.
const (
	// ModeCreate inserts a new receipt and bumps the usage counter.
	ModeCreate Mode = "create"
	// ModeEdit overwrites an existing receipt and increments its edit count.
	ModeEdit Mode = "edit"
	// ModeResend re-delivers an existing receipt without any persistence.
	ModeResend Mode = "resend"
)

// artifactCaption is the fixed caption attached to every delivered receipt.
const artifactCaption = "Here is your receipt 🧾"

// msgRenderFailed is the generic apology for rendering/delivery failures.
const msgRenderFailed = "Sorry, something went wrong while generating your receipt. Please try again in a moment."

// ReceiptPipeline assembles, persists, renders, and delivers receipts.
type ReceiptPipeline struct {
	DB       *gorm.DB
	Renderer render.Renderer
	Channel  channel.Channel

	// RenderBaseURL is the templated receipt page root.
	RenderBaseURL string
	// DefaultTemplate is used when the profile has no preference.
	DefaultTemplate int
}

// Run executes the pipeline for one receipt. rec carries the draft content;
// in edit and resend modes rec.ID must identify an existing receipt owned by
// the profile. On success the artifact is delivered, the usage counter is
// incremented (create only), and the session is cleared (create and edit).
// On rendering failure a generic apology is sent and the session is still
// cleared, so a failed render never strands the user in a dead state.
func (p *ReceiptPipeline) Run(ctx context.Context, target string, u *domain.UserProfile, rec *domain.Receipt, mode Mode) error {
	tr := otel.Tracer("services/ReceiptPipeline")
	ctx, span := tr.Start(ctx, "Run",
		trace.WithAttributes(
			attribute.String("user.id", u.ID),
			attribute.String("pipeline.mode", string(mode)),
		),
	)
	defer span.End()

	if len(rec.Items) != len(rec.Prices) {
		return ErrCountMismatch
	}

	// Non-numeric or missing prices contribute zero.
	if mode != ModeResend {
		total := 0.0
		for _, pr := range rec.Prices {
			total += utils.ParseAmount(pr)
		}
		rec.Total = total
	}

	switch mode {
	case ModeCreate:
		rec.UserID = u.ID
		if err := repo.CreateReceipt(ctx, p.DB, rec); err != nil {
			return fmt.Errorf("persist receipt: %w", err)
		}
	case ModeEdit:
		err := repo.UpdateReceipt(ctx, p.DB, rec.ID, u.ID, map[string]any{
			"customer_name":  rec.CustomerName,
			"items":          rec.Items,
			"prices":         rec.Prices,
			"payment_method": rec.PaymentMethod,
			"total":          rec.Total,
		})
		if err != nil {
			return fmt.Errorf("update receipt: %w", err)
		}
	case ModeResend:
		// No persistence, no counters.
	}

	template := u.PreferredTemplate
	if template < 1 {
		template = p.DefaultTemplate
	}
	pageURL := render.ReceiptURL(p.RenderBaseURL, u, rec, template)

	format := u.ReceiptFormat
	if format == "" {
		format = domain.FormatPNG
	}

	artifact, err := p.Renderer.Render(ctx, pageURL, render.Options{Format: render.Format(format)})
	if err != nil {
		return p.failRender(ctx, target, u.ID, mode, fmt.Errorf("%w: %v", ErrRenderFailed, err))
	}

	file := channel.File{
		Data:     artifact,
		FileName: fmt.Sprintf("receipt-%s.%s", rec.ID, format),
		MimeType: mimeFor(format),
	}
	if err := p.Channel.SendFile(ctx, target, file, artifactCaption); err != nil {
		return p.failRender(ctx, target, u.ID, mode, fmt.Errorf("deliver artifact: %w", err))
	}

	if mode == ModeCreate {
		if err := repo.IncrementReceiptCount(ctx, p.DB, u.ID); err != nil {
			log.Error().Err(err).Str("user_id", u.ID).Msg("receipt counter increment failed")
		}
	}
	if mode != ModeResend {
		if err := repo.ClearSession(ctx, p.DB, u.ID); err != nil {
			log.Error().Err(err).Str("user_id", u.ID).Msg("session clear failed after delivery")
		}
	}
	return nil
}

// failRender reports a rendering/delivery failure to the user and clears the
// session so the flow cannot deadlock. The cause is returned wrapped in
// ErrRenderFailed, which tells the engine the user has already been told;
// only the log sees the detail.
func (p *ReceiptPipeline) failRender(ctx context.Context, target, userID string, mode Mode, cause error) error {
	if serr := p.Channel.Send(ctx, target, msgRenderFailed); serr != nil {
		log.Error().Err(serr).Str("user_id", userID).Msg("apology send failed")
	}
	if mode != ModeResend {
		if cerr := repo.ClearSession(ctx, p.DB, userID); cerr != nil {
			log.Error().Err(cerr).Str("user_id", userID).Msg("session clear failed after render error")
		}
	}
	if errors.Is(cause, ErrRenderFailed) {
		return cause
	}
	return fmt.Errorf("%w: %v", ErrRenderFailed, cause)
}

// mimeFor maps an artifact format to its MIME type.
func mimeFor(format string) string {
	if format == domain.FormatPDF {
		return "application/pdf"
	}
	return "image/png"
}
