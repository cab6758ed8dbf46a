// Package services – support sub-engine
//
// Two states layered on the same session mechanism: awaiting_support_message
// (the first problem description creates a ticket and fans a notification out
// to every admin identity) and in_support_conversation (every further message
// appends to the same open ticket). Opening "support" with a ticket already
// open short-circuits straight to threading. Admin ticket commands operate
// outside the per-user session.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-receipt-bot/internal/domain"
	"github.com/tbourn/go-receipt-bot/internal/repo"
)

// startSupport enters the support sub-flow, reusing an open ticket if one
// exists instead of creating a duplicate.
func (e *Engine) startSupport(ctx context.Context, userID string) error {
	t, err := repo.FindOpenTicketByOwner(ctx, e.DB, userID)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	if t != nil {
		if err := e.setState(ctx, userID, domain.StateInSupport, ticketRef{TicketID: t.TicketID}); err != nil {
			return err
		}
		return e.send(ctx, userID, fmt.Sprintf(msgSupportThread, t.TicketID))
	}
	if err := e.setState(ctx, userID, domain.StateAwaitingSupport, nil); err != nil {
		return err
	}
	return e.send(ctx, userID, msgSupportAsk)
}

// handleSupportFlow advances the support sub-flow by one user message.
func (e *Engine) handleSupportFlow(ctx context.Context, userID string, sess *domain.Session, text string) error {
	if text == "" {
		return e.send(ctx, userID, msgUnknownInput)
	}

	switch sess.State {
	case domain.StateAwaitingSupport:
		t, err := repo.CreateTicket(ctx, e.DB, userID, time.Now())
		if err != nil {
			return err
		}
		if err := repo.AppendTicketMessage(ctx, e.DB, t.TicketID, domain.SenderUser, text); err != nil {
			return err
		}
		e.notifyAdmins(ctx, fmt.Sprintf("🆘 New ticket %s from %s:\n%s", t.TicketID, userID, text))
		if err := e.setState(ctx, userID, domain.StateInSupport, ticketRef{TicketID: t.TicketID}); err != nil {
			return err
		}
		return e.send(ctx, userID, fmt.Sprintf(msgSupportOpened, t.TicketID))

	case domain.StateInSupport:
		var ref ticketRef
		if err := decodeDraft(sess, &ref); err != nil {
			return err
		}
		t, err := repo.FindTicketByIDLike(ctx, e.DB, ref.TicketID)
		if errors.Is(err, repo.ErrNotFound) || (t != nil && t.Status != domain.TicketOpen) {
			// Thread against a closed or vanished ticket: stale session.
			if cerr := repo.ClearSession(ctx, e.DB, userID); cerr != nil {
				return cerr
			}
			return e.startSupport(ctx, userID)
		}
		if err != nil {
			return err
		}
		if err := repo.AppendTicketMessage(ctx, e.DB, t.TicketID, domain.SenderUser, text); err != nil {
			return err
		}
		e.notifyAdmins(ctx, fmt.Sprintf("💬 %s (%s):\n%s", t.TicketID, userID, text))
		return e.send(ctx, userID, msgSupportLogged)
	}
	return nil
}

// handleAdminCommand runs the admin ticket commands and opens the admin
// settings flow. These operate outside the admin's own session except for
// "bot settings", which starts one.
func (e *Engine) handleAdminCommand(ctx context.Context, adminID string, rt Route) error {
	switch rt.Command {
	case CmdTickets:
		return e.listTickets(ctx, adminID)
	case CmdReply:
		return e.replyTicket(ctx, adminID, rt.Args)
	case CmdClose:
		return e.closeTicket(ctx, adminID, rt.Args)
	case CmdBotSettings:
		return e.startAdminSettings(ctx, adminID)
	}
	return nil
}

// listTickets sends all open tickets to the admin.
func (e *Engine) listTickets(ctx context.Context, adminID string) error {
	tickets, err := repo.ListOpenTickets(ctx, e.DB)
	if err != nil {
		return err
	}
	if len(tickets) == 0 {
		return e.send(ctx, adminID, msgNoOpenTickets)
	}
	var b strings.Builder
	b.WriteString("Open tickets:\n")
	for _, t := range tickets {
		fmt.Fprintf(&b, "• %s — %s (opened %s)\n", t.TicketID, t.UserID, t.CreatedAt.Format("Jan 2 15:04"))
	}
	return e.send(ctx, adminID, strings.TrimRight(b.String(), "\n"))
}

// replyTicket appends an admin message to a ticket and forwards it to the
// owner. Args are "<id fragment> <text>".
func (e *Engine) replyTicket(ctx context.Context, adminID, args string) error {
	fragment, body, ok := strings.Cut(args, " ")
	if !ok || strings.TrimSpace(body) == "" {
		return e.send(ctx, adminID, "Usage: reply <ticket id> <message>")
	}
	body = strings.TrimSpace(body)

	t, err := repo.FindTicketByIDLike(ctx, e.DB, fragment)
	if errors.Is(err, repo.ErrNotFound) {
		return e.send(ctx, adminID, msgTicketNotFound)
	}
	if err != nil {
		return err
	}
	if err := repo.AppendTicketMessage(ctx, e.DB, t.TicketID, domain.SenderAdmin, body); err != nil {
		return err
	}
	if err := e.send(ctx, t.UserID, fmt.Sprintf("Support (%s): %s", t.TicketID, body)); err != nil {
		return err
	}
	return e.send(ctx, adminID, fmt.Sprintf("Sent to %s.", t.TicketID))
}

// closeTicket closes a ticket and clears the owner's session so they are not
// left mid-thread against a closed ticket.
func (e *Engine) closeTicket(ctx context.Context, adminID, fragment string) error {
	t, err := repo.FindTicketByIDLike(ctx, e.DB, fragment)
	if errors.Is(err, repo.ErrNotFound) {
		return e.send(ctx, adminID, msgTicketNotFound)
	}
	if err != nil {
		return err
	}
	if err := repo.CloseTicket(ctx, e.DB, t.TicketID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return e.send(ctx, adminID, msgTicketNotFound)
		}
		return err
	}
	if err := repo.ClearSession(ctx, e.DB, t.UserID); err != nil {
		return err
	}
	if err := e.send(ctx, t.UserID, fmt.Sprintf(msgSupportClosed, t.TicketID)); err != nil {
		log.Warn().Err(err).Str("ticket_id", t.TicketID).Msg("close notification to owner failed")
	}
	return e.send(ctx, adminID, fmt.Sprintf("Closed %s.", t.TicketID))
}

// notifyAdmins fans a message out to every admin identity. Delivery failures
// are logged, not fatal: the ticket is already persisted.
func (e *Engine) notifyAdmins(ctx context.Context, text string) {
	for id := range e.AdminIDs {
		if err := e.Channel.Send(ctx, id, text); err != nil {
			log.Warn().Err(err).Str("admin_id", id).Msg("admin notification failed")
		}
	}
}
