// Package payment defines the payment-gateway contract: virtual account
// provisioning for subscription purchases and the webhook payload shape the
// gateway posts back on confirmation.
package payment

import (
	"context"
	"strings"

	"github.com/tbourn/go-receipt-bot/internal/domain"
)

// VirtualAccount is a dedicated bank account the user transfers the
// subscription fee into.
type VirtualAccount struct {
	BankName      string `json:"bank_name"`
	AccountNumber string `json:"account_number"`
}

// Gateway provisions virtual accounts with the payment provider. A nil
// account with nil error means the provider declined without failing.
type Gateway interface {
	CreateVirtualAccount(ctx context.Context, u *domain.UserProfile) (*VirtualAccount, error)
}

// WebhookPayload is the confirmation body posted by the gateway. Customer
// identity arrives as an email-encoded phone number
// ("2348031234567@vbank.bot"); Reference is the provider's unique charge id.
type WebhookPayload struct {
	Reference     string  `json:"reference"`
	CustomerEmail string  `json:"customer_email"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
}

// PhoneFromEmail extracts the phone number from an email-encoded identity.
// It returns "" when the local part is empty or the input has no "@".
func PhoneFromEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		return ""
	}
	return strings.TrimSpace(email[:at])
}
