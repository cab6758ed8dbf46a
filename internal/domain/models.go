// Package domain defines the persistence models for user profiles, conversation
// sessions, receipts, catalog products, support tickets, and global settings.
// These types are mapped with GORM and form the core data layer of the
// receipt-bot application.
package domain

import (
	"time"
)

// Session state tags. The set is closed: every state the conversation engine
// can leave a user in is listed here, and Session.State never holds any other
// value.
const (
	// Onboarding flow.
	StateOnboardBrandName  = "onboard_brand_name"
	StateOnboardBrandColor = "onboard_brand_color"
	StateOnboardLogo       = "onboard_logo"
	StateOnboardAddress    = "onboard_address"
	StateOnboardContact    = "onboard_contact"

	// Receipt creation flow.
	StateReceiptCustomerName = "receipt_customer_name"
	StateReceiptItems        = "receipt_items"
	StateReceiptPrices       = "receipt_prices"
	StateReceiptPayment      = "receipt_payment_method"
	StateReceiptFormat       = "receipt_format"

	// Receipt editing flow.
	StateEditChooseField  = "edit_choose_field"
	StateEditCustomerName = "edit_customer_name"
	StateEditItems        = "edit_items"
	StateEditPrices       = "edit_prices"
	StateEditPayment      = "edit_payment_method"

	// Catalog management flow.
	StateProductName  = "product_name"
	StateProductPrice = "product_price"

	// Brand / preference settings flow.
	StateSettingsMenu     = "settings_menu"
	StateSettingsValue    = "settings_value"
	StateSettingsFormat   = "settings_format"
	StateSettingsTemplate = "settings_template"

	// Paywall.
	StateAwaitingPayment = "awaiting_payment_decision"

	// Support sub-flow.
	StateAwaitingSupport = "awaiting_support_message"
	StateInSupport       = "in_support_conversation"

	// Admin settings flow.
	StateAdminMenu    = "admin_settings_menu"
	StateAdminConfirm = "admin_settings_confirm"
)

// Ticket status values.
const (
	TicketOpen   = "open"
	TicketClosed = "closed"
)

// Ticket message senders.
const (
	SenderUser  = "user"
	SenderAdmin = "admin"
)

// Receipt artifact formats.
const (
	FormatPNG = "png"
	FormatPDF = "pdf"
)

// UserProfile is the per-user business profile. The primary key is the
// channel-scoped identity of the user (e.g. a phone-derived JID), so a
// profile follows its chat identity. Profiles are created on the first
// onboarding answer and mutated throughout onboarding and settings; the only
// hard delete happens during account restore, where the record under the
// current identity is dropped and the restored profile is re-pointed here.
//
// Fields:
//   - ID: channel-scoped user identity (primary key).
//   - Brand*: presentation fields rendered onto receipts.
//   - ContactRaw: contact info exactly as the user typed it; ContactEmail and
//     ContactPhone are parsed out of it when recognizable.
//   - IsPaid / SubscriptionExpiry: paywall state. An active subscription
//     requires IsPaid and an expiry strictly in the future.
//   - ReceiptCount: lifetime created receipts; drives the free-trial limit.
//   - ReceiptFormat / PreferredTemplate: artifact preferences (empty format
//     means "never chosen yet" and triggers the one-time format question).
//   - BackupCode: secret exchanged during account restore. Nullable: it is
//     only issued at onboarding completion, and NULLs never collide under the
//     unique index the way empty strings would.
type UserProfile struct {
	ID                 string     `json:"id"                  gorm:"type:varchar(64);primaryKey"`
	BrandName          string     `json:"brand_name"          gorm:"type:varchar(255)"`
	BrandColor         string     `json:"brand_color"         gorm:"type:varchar(32)"`
	LogoURL            string     `json:"logo_url"            gorm:"type:varchar(512)"`
	Address            string     `json:"address"             gorm:"type:text"`
	ContactRaw         string     `json:"contact_raw"         gorm:"type:varchar(255)"`
	ContactEmail       string     `json:"contact_email"       gorm:"type:varchar(255)"`
	ContactPhone       string     `json:"contact_phone"       gorm:"type:varchar(64)"`
	IsPaid             bool       `json:"is_paid"             gorm:"not null;default:false"`
	SubscriptionExpiry *time.Time `json:"subscription_expiry"`
	ReceiptCount       int        `json:"receipt_count"       gorm:"not null;default:0"`
	ReceiptFormat      string     `json:"receipt_format"      gorm:"type:varchar(8)"`
	PreferredTemplate  int        `json:"preferred_template"  gorm:"not null;default:1"`
	BackupCode         *string    `json:"-"                   gorm:"type:varchar(64);uniqueIndex"`
	OnboardingComplete bool       `json:"onboarding_complete" gorm:"not null;default:false"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// TableName returns the database table name for UserProfile.
func (UserProfile) TableName() string { return "user_profiles" }

// Session is the persisted conversation state for one user. UserID is the
// primary key, which enforces the central invariant that at most one session
// exists per identity: writes replace, they never accumulate. Data carries the
// JSON-encoded draft for the active flow (receipt draft, edit target, ticket
// reference, ...) and is interpreted according to State.
type Session struct {
	UserID    string    `json:"user_id" gorm:"type:varchar(64);primaryKey"`
	State     string    `json:"state"   gorm:"type:varchar(48);not null"`
	Data      []byte    `json:"data"    gorm:"type:text"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Session.
func (Session) TableName() string { return "sessions" }

// Receipt is a billed artifact record. Items and Prices are parallel ordered
// sequences: prices[i] belongs to items[i] and both always have the same
// length (enforced before any insert or update). A receipt is immutable once
// created except through an explicit edit, which overwrites the mutable
// fields and increments EditCount; CreatedAt never changes after insert.
type Receipt struct {
	ID            string    `json:"id"             gorm:"type:char(36);primaryKey"`
	UserID        string    `json:"user_id"        gorm:"type:varchar(64);not null;index:idx_user_receipts,priority:1"`
	CustomerName  string    `json:"customer_name"  gorm:"type:varchar(255);not null"`
	Items         []string  `json:"items"          gorm:"type:text;serializer:json"`
	Prices        []string  `json:"prices"         gorm:"type:text;serializer:json"`
	PaymentMethod string    `json:"payment_method" gorm:"type:varchar(64)"`
	Total         float64   `json:"total"          gorm:"not null;default:0"`
	EditCount     int       `json:"edit_count"     gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"created_at"     gorm:"index:idx_user_receipts,priority:2"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName returns the database table name for Receipt.
func (Receipt) TableName() string { return "receipts" }

// Product is a per-owner catalog entry, used to expand quantity shorthand
// ("Fanta x2") during receipt creation. NameKey is the case-folded name and
// is unique per owner, which makes catalog lookups case-insensitive and
// repeated adds upserts.
type Product struct {
	ID        string    `json:"id"      gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id" gorm:"type:varchar(64);not null;uniqueIndex:ux_owner_product,priority:1"`
	Name      string    `json:"name"    gorm:"type:varchar(255);not null"`
	NameKey   string    `json:"-"       gorm:"type:varchar(255);not null;uniqueIndex:ux_owner_product,priority:2"`
	Price     string    `json:"price"   gorm:"type:varchar(32);not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Product.
func (Product) TableName() string { return "products" }

// Ticket is a support ticket. TicketID is derived from creation time
// (TCK-YYYYMMDD-HHMMSS) and doubles as the user-facing reference; admin
// commands match it by case-insensitive substring.
type Ticket struct {
	TicketID  string    `json:"ticket_id" gorm:"type:varchar(32);primaryKey"`
	UserID    string    `json:"user_id"   gorm:"type:varchar(64);not null;index"`
	Status    string    `json:"status"    gorm:"type:varchar(8);not null;check:status IN ('open','closed')"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Ticket.
func (Ticket) TableName() string { return "tickets" }

// TicketMessage is one entry in a ticket's ordered conversation log.
type TicketMessage struct {
	ID        string    `json:"id"        gorm:"type:char(36);primaryKey"`
	TicketID  string    `json:"ticket_id" gorm:"type:varchar(32);not null;index:idx_ticket_msgs,priority:1"`
	Sender    string    `json:"sender"    gorm:"type:varchar(8);not null;check:sender IN ('user','admin')"`
	Body      string    `json:"body"      gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_ticket_msgs,priority:2"`

	// Ticket is the owning ticket. Messages are cascade-deleted if the
	// ticket is removed.
	Ticket Ticket `json:"-" gorm:"foreignKey:TicketID;references:TicketID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for TicketMessage.
func (TicketMessage) TableName() string { return "ticket_messages" }

// AppSettings is the single global settings document (row ID 1). It currently
// controls whether onboarding is open to new users.
type AppSettings struct {
	ID                int       `json:"id"                 gorm:"primaryKey"`
	RegistrationsOpen bool      `json:"registrations_open" gorm:"not null;default:true"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// TableName returns the database table name for AppSettings.
func (AppSettings) TableName() string { return "app_settings" }

// PaymentEvent is the idempotency ledger for payment-gateway webhooks. The
// provider's charge reference is the primary key, so replaying a confirmation
// is an insert conflict rather than a double upgrade.
type PaymentEvent struct {
	Reference string    `json:"reference" gorm:"type:varchar(128);primaryKey"`
	UserID    string    `json:"user_id"   gorm:"type:varchar(64);not null;index"`
	Amount    float64   `json:"amount"    gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name for PaymentEvent.
func (PaymentEvent) TableName() string { return "payment_events" }
