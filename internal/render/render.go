// Package render defines the headless-rendering contract and the deterministic
// receipt URL builder. The rendering engine itself (a browser automation
// service turning a templated page into PNG/PDF bytes) is an external
// collaborator; the core constructs the page address and interprets failures.
package render

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tbourn/go-receipt-bot/internal/domain"
)

// Format selects the captured artifact type.
type Format string

// Supported capture formats.
const (
	PNG Format = domain.FormatPNG
	PDF Format = domain.FormatPDF
)

// Options configures a single render call.
type Options struct {
	Format Format
}

// Error reports a non-success page load from the rendering collaborator.
type Error struct {
	Status int
	URL    string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("render: page load failed with status %d for %s", e.Status, e.URL)
}

// Renderer captures a templated receipt page as an artifact. Implementations
// must open a fresh page per call and close it on every exit path; page
// lifetime is strictly scoped to one receipt.
type Renderer interface {
	Render(ctx context.Context, pageURL string, opts Options) ([]byte, error)
}

// ReceiptURL builds the templated page address for one receipt. The query
// string is deterministic: url.Values.Encode sorts keys, so identical inputs
// always produce identical URLs (resends hit the same page).
func ReceiptURL(baseURL string, u *domain.UserProfile, r *domain.Receipt, template int) string {
	if template < 1 {
		template = 1
	}
	q := url.Values{}
	q.Set("brandName", u.BrandName)
	q.Set("brandColor", u.BrandColor)
	q.Set("logoUrl", u.LogoURL)
	q.Set("address", u.Address)
	q.Set("contact", u.ContactRaw)
	q.Set("customerName", r.CustomerName)
	q.Set("items", strings.Join(r.Items, "|"))
	q.Set("prices", strings.Join(r.Prices, "|"))
	q.Set("paymentMethod", r.PaymentMethod)
	q.Set("total", strconv.FormatFloat(r.Total, 'f', -1, 64))
	q.Set("date", r.CreatedAt.UTC().Format("2006-01-02"))
	return fmt.Sprintf("%s/%d?%s", strings.TrimRight(baseURL, "/"), template, q.Encode())
}
