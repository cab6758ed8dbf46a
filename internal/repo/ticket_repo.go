// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for support tickets
// and their conversation logs.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-receipt-bot/internal/domain"
)

// CreateTicket inserts a new open ticket with a time-derived identifier and
// returns it.
func CreateTicket(ctx context.Context, db *gorm.DB, userID string, now time.Time) (*domain.Ticket, error) {
	t := &domain.Ticket{
		TicketID:  "TCK-" + now.UTC().Format("20060102-150405"),
		UserID:    userID,
		Status:    domain.TicketOpen,
		CreatedAt: now.UTC(),
	}
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		return nil, err
	}
	return t, nil
}

// FindOpenTicketByOwner fetches the user's open ticket, or ErrNotFound. At
// most one open ticket per user is expected; if several exist the newest wins.
func FindOpenTicketByOwner(ctx context.Context, db *gorm.DB, userID string) (*domain.Ticket, error) {
	var t domain.Ticket
	err := db.WithContext(ctx).
		Where("user_id = ? AND status = ?", userID, domain.TicketOpen).
		Order("created_at desc").
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindTicketByIDLike matches a ticket by case-insensitive substring of its
// identifier, newest first, or ErrNotFound. Admins type fragments like
// "0102-1504" rather than full ids.
func FindTicketByIDLike(ctx context.Context, db *gorm.DB, fragment string) (*domain.Ticket, error) {
	var t domain.Ticket
	pattern := "%" + strings.ToLower(strings.TrimSpace(fragment)) + "%"
	err := db.WithContext(ctx).
		Where("LOWER(ticket_id) LIKE ?", pattern).
		Order("created_at desc").
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// AppendTicketMessage adds one entry to a ticket's conversation log.
func AppendTicketMessage(ctx context.Context, db *gorm.DB, ticketID, sender, body string) error {
	m := &domain.TicketMessage{
		ID:        uuid.NewString(),
		TicketID:  ticketID,
		Sender:    sender,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).Create(m).Error
}

// CloseTicket marks a ticket closed. Returns ErrNotFound when no open ticket
// matches.
func CloseTicket(ctx context.Context, db *gorm.DB, ticketID string) error {
	res := db.WithContext(ctx).
		Model(&domain.Ticket{}).
		Where("ticket_id = ? AND status = ?", ticketID, domain.TicketOpen).
		Update("status", domain.TicketClosed)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListOpenTickets returns all open tickets, oldest first.
func ListOpenTickets(ctx context.Context, db *gorm.DB) ([]domain.Ticket, error) {
	var out []domain.Ticket
	err := db.WithContext(ctx).
		Where("status = ?", domain.TicketOpen).
		Order("created_at asc").
		Find(&out).Error
	return out, err
}
