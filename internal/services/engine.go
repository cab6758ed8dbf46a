// Package services – conversation engine
//
// The engine is the entry point for every inbound chat message. It owns the
// per-user processing pass: acquire the guard, load profile and session,
// route the text, dispatch to the active flow, and make sure every failure
// ends in an apology rather than a stuck state. Flow-specific handlers live
// in their own files (onboarding.go, receipt_flow.go, ...); this file holds
// the shared plumbing.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"runtime/debug"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/go-receipt-bot/internal/channel"
	"github.com/tbourn/go-receipt-bot/internal/config"
	"github.com/tbourn/go-receipt-bot/internal/domain"
	"github.com/tbourn/go-receipt-bot/internal/payment"
	"github.com/tbourn/go-receipt-bot/internal/render"
	"github.com/tbourn/go-receipt-bot/internal/repo"
)

// messagesTotal counts inbound messages by processing outcome.
var messagesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "bot_messages_total",
		Help: "Inbound chat messages by processing outcome.",
	},
	[]string{"outcome"},
)

// ---- flow drafts ----
//
// Session.Data is a JSON document whose shape is selected by Session.State.
// Each flow family has its own draft type, so the dynamic bag stays typed.

// receiptDraft accumulates a receipt under construction. Pending lists the
// indexes of Items whose prices the catalog could not supply and that await
// manual pricing (Prices holds "" at those positions until then).
type receiptDraft struct {
	CustomerName  string   `json:"customer_name"`
	Items         []string `json:"items,omitempty"`
	Prices        []string `json:"prices,omitempty"`
	Pending       []int    `json:"pending,omitempty"`
	PaymentMethod string   `json:"payment_method,omitempty"`
}

// editDraft tracks an in-progress edit of one receipt.
type editDraft struct {
	ReceiptID string   `json:"receipt_id"`
	Items     []string `json:"items,omitempty"`
}

// productDraft carries the catalog add-loop's current product name.
type productDraft struct {
	Name string `json:"name"`
}

// settingsDraft remembers which profile field a settings update targets.
type settingsDraft struct {
	Field string `json:"field"`
}

// ticketRef links a support-threading session to its open ticket.
type ticketRef struct {
	TicketID string `json:"ticket_id"`
}

// adminDraft carries the pending registrations-open target value awaiting
// yes/no confirmation.
type adminDraft struct {
	Open bool `json:"open"`
}

// Engine drives the per-user conversation state machine.
type Engine struct {
	DB       *gorm.DB
	Channel  channel.Channel
	Gateway  payment.Gateway
	Pipeline *ReceiptPipeline
	Guard    *ProcessGuard
	Paywall  *Paywall
	Replies  *Replies

	AdminIDs        map[string]struct{}
	SignupAllowlist map[string]struct{}

	SubscriptionPrice float64
	SubscriptionDays  int
	Currency          string
}

// NewEngine wires an Engine from configuration and collaborators.
func NewEngine(db *gorm.DB, ch channel.Channel, rd render.Renderer, gw payment.Gateway, cfg config.Config, replies *Replies) *Engine {
	admins := make(map[string]struct{}, len(cfg.Bot.AdminIDs))
	for _, id := range cfg.Bot.AdminIDs {
		admins[id] = struct{}{}
	}
	allowlist := make(map[string]struct{}, len(cfg.Bot.SignupAllowlist))
	for _, id := range cfg.Bot.SignupAllowlist {
		allowlist[id] = struct{}{}
	}
	if replies == nil {
		replies = NewReplies(nil)
	}
	return &Engine{
		DB:      db,
		Channel: ch,
		Gateway: gw,
		Pipeline: &ReceiptPipeline{
			DB:              db,
			Renderer:        rd,
			Channel:         ch,
			RenderBaseURL:   cfg.Render.BaseURL,
			DefaultTemplate: cfg.Render.DefaultTemplate,
		},
		Guard: NewProcessGuard(),
		Paywall: &Paywall{
			Admins:         admins,
			FreeTrialLimit: cfg.Paywall.FreeTrialLimit,
			FreeEditLimit:  cfg.Paywall.FreeEditLimit,
		},
		Replies:           replies,
		AdminIDs:          admins,
		SignupAllowlist:   allowlist,
		SubscriptionPrice: cfg.Paywall.SubscriptionPrice,
		SubscriptionDays:  cfg.Paywall.SubscriptionDays,
		Currency:          cfg.Paywall.Currency,
	}
}

// HandleMessage processes one inbound message end to end. It never returns an
// error: failures are logged and answered with a generic apology. The
// per-user guard is held for the whole pass and released on every exit path,
// panics included.
func (e *Engine) HandleMessage(ctx context.Context, msg channel.Message) {
	userID := msg.From
	if userID == "" {
		return
	}
	if !e.Guard.Acquire(userID) {
		messagesTotal.WithLabelValues("dropped").Inc()
		log.Debug().Str("user_id", userID).Msg("message dropped: pass already in flight")
		return
	}
	defer e.Guard.Release(userID)
	defer func() {
		if r := recover(); r != nil {
			messagesTotal.WithLabelValues("panic").Inc()
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).
				Str("user_id", userID).Msg("message handling panicked")
			_ = e.Channel.Send(ctx, userID, msgTechnicalError)
		}
	}()

	tr := otel.Tracer("services/Engine")
	ctx, span := tr.Start(ctx, "HandleMessage",
		trace.WithAttributes(attribute.String("user.id", userID)),
	)
	defer span.End()

	if err := e.process(ctx, msg); err != nil {
		messagesTotal.WithLabelValues("failed").Inc()
		log.Error().Err(err).Str("user_id", userID).Msg("message handling failed")
		// The pipeline apologizes for render/delivery failures itself; a
		// second apology here would double up.
		if !errors.Is(err, ErrRenderFailed) {
			_ = e.Channel.Send(ctx, userID, msgTechnicalError)
		}
		return
	}
	messagesTotal.WithLabelValues("processed").Inc()
}

// process routes one message. State is fully determined by the persisted
// session plus profile; nothing is kept in memory across passes beyond the
// guard entry.
func (e *Engine) process(ctx context.Context, msg channel.Message) error {
	userID := msg.From

	user, err := repo.GetUser(ctx, e.DB, userID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	sess, err := repo.GetSession(ctx, e.DB, userID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	_, isAdmin := e.AdminIDs[userID]
	rt := Classify(msg.Text, sess != nil, isAdmin)

	switch rt.Kind {
	case RouteAdmin:
		return e.handleAdminCommand(ctx, userID, rt)

	case RouteSupport:
		// "support" is a command too: it replaces any active session.
		return e.startSupport(ctx, userID)

	case RouteCommand:
		// A new top-level command discards whatever flow was active.
		if sess != nil {
			if err := repo.ClearSession(ctx, e.DB, userID); err != nil {
				return err
			}
		}
		return e.handleCommand(ctx, msg, user, rt)

	case RouteScoped:
		if sess == nil {
			// Session vanished between routing and dispatch; treat as idle.
			return e.idle(ctx, userID, user)
		}
		return e.handleScoped(ctx, msg, user, sess)

	default:
		return e.idle(ctx, userID, user)
	}
}

// handleCommand dispatches a matched top-level command. The session (if any)
// has already been discarded.
func (e *Engine) handleCommand(ctx context.Context, msg channel.Message, user *domain.UserProfile, rt Route) error {
	userID := msg.From

	// Without a profile only restore and help make sense; everything else
	// funnels into onboarding.
	if user == nil {
		switch rt.Command {
		case CmdRestore:
			return e.restoreAccount(ctx, userID, rt.Args)
		case CmdHelp:
			return e.send(ctx, userID, msgHelp)
		default:
			return e.maybeStartOnboarding(ctx, userID)
		}
	}

	switch rt.Command {
	case CmdHelp:
		return e.send(ctx, userID, msgHelp)
	case CmdCancel:
		return e.send(ctx, userID, msgCancelled)
	case CmdNewReceipt:
		return e.startNewReceipt(ctx, user)
	case CmdEdit:
		return e.startEdit(ctx, user)
	case CmdResend:
		return e.resendLatest(ctx, user)
	case CmdHistory:
		return e.sendHistory(ctx, user)
	case CmdStats:
		return e.sendStats(ctx, user)
	case CmdExport:
		return e.exportMonth(ctx, user)
	case CmdAddProduct:
		return e.startAddProduct(ctx, user)
	case CmdMyProducts:
		return e.listProducts(ctx, user)
	case CmdRemoveProduct:
		return e.removeProduct(ctx, user, rt.Args)
	case CmdSettings:
		return e.startSettings(ctx, user)
	case CmdRestore:
		return e.restoreAccount(ctx, userID, rt.Args)
	default:
		return e.idle(ctx, userID, user)
	}
}

// handleScoped dispatches free-form input to the handler of the active state.
// Unknown or malformed input never advances a state silently: each handler
// re-prompts locally.
func (e *Engine) handleScoped(ctx context.Context, msg channel.Message, user *domain.UserProfile, sess *domain.Session) error {
	text := strings.TrimSpace(msg.Text)

	// A session without a profile can only mean the profile was removed
	// behind the flow's back (account restore). Onboarding, support, and
	// admin states run without a profile; everything else is stale.
	if user == nil {
		switch sess.State {
		case domain.StateOnboardBrandName,
			domain.StateOnboardBrandColor,
			domain.StateOnboardLogo,
			domain.StateOnboardAddress,
			domain.StateOnboardContact,
			domain.StateAwaitingSupport,
			domain.StateInSupport,
			domain.StateAdminMenu,
			domain.StateAdminConfirm:
		default:
			log.Warn().Str("user_id", msg.From).Str("state", sess.State).Msg("session without profile, resetting")
			if err := repo.ClearSession(ctx, e.DB, msg.From); err != nil {
				return err
			}
			return e.idle(ctx, msg.From, nil)
		}
	}

	switch sess.State {
	case domain.StateOnboardBrandName,
		domain.StateOnboardBrandColor,
		domain.StateOnboardLogo,
		domain.StateOnboardAddress,
		domain.StateOnboardContact:
		return e.handleOnboarding(ctx, msg.From, sess.State, text, user)

	case domain.StateReceiptCustomerName,
		domain.StateReceiptItems,
		domain.StateReceiptPrices,
		domain.StateReceiptPayment,
		domain.StateReceiptFormat:
		return e.handleReceiptFlow(ctx, user, sess, text)

	case domain.StateEditChooseField,
		domain.StateEditCustomerName,
		domain.StateEditItems,
		domain.StateEditPrices,
		domain.StateEditPayment:
		return e.handleEditFlow(ctx, user, sess, text)

	case domain.StateProductName, domain.StateProductPrice:
		return e.handleCatalogFlow(ctx, user, sess, text)

	case domain.StateSettingsMenu,
		domain.StateSettingsValue,
		domain.StateSettingsFormat,
		domain.StateSettingsTemplate:
		return e.handleSettingsFlow(ctx, user, sess, text)

	case domain.StateAwaitingPayment:
		return e.handlePaymentDecision(ctx, user, text)

	case domain.StateAwaitingSupport, domain.StateInSupport:
		return e.handleSupportFlow(ctx, msg.From, sess, text)

	case domain.StateAdminMenu, domain.StateAdminConfirm:
		return e.handleAdminSettingsFlow(ctx, msg.From, sess, text)

	default:
		// Unknown state tag: stale session. Fall back to idle.
		log.Warn().Str("user_id", msg.From).Str("state", sess.State).Msg("stale session state, resetting")
		if err := repo.ClearSession(ctx, e.DB, msg.From); err != nil {
			return err
		}
		return e.idle(ctx, msg.From, user)
	}
}

// idle answers a message that matched nothing: onboarding for strangers, a
// greeting for everyone else.
func (e *Engine) idle(ctx context.Context, userID string, user *domain.UserProfile) error {
	if user == nil {
		return e.maybeStartOnboarding(ctx, userID)
	}
	return e.send(ctx, userID, e.Replies.Greeting())
}

// ---- session helpers ----

// setState replaces the user's session with the given state and draft.
func (e *Engine) setState(ctx context.Context, userID, state string, draft any) error {
	var data []byte
	if draft != nil {
		b, err := json.Marshal(draft)
		if err != nil {
			return err
		}
		data = b
	}
	return repo.PutSession(ctx, e.DB, userID, state, data)
}

// decodeDraft unmarshals the session draft into v. An empty payload leaves v
// at its zero value.
func decodeDraft(sess *domain.Session, v any) error {
	if len(sess.Data) == 0 {
		return nil
	}
	return json.Unmarshal(sess.Data, v)
}

// send delivers plain text to a user.
func (e *Engine) send(ctx context.Context, to, text string) error {
	return e.Channel.Send(ctx, to, text)
}
