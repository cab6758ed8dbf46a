package services

import (
	"testing"
	"time"

	"github.com/tbourn/go-receipt-bot/internal/domain"
)

func fixedNow() time.Time {
	return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
}

func newTestPaywall() *Paywall {
	return &Paywall{
		Admins:         map[string]struct{}{"admin1": {}},
		FreeTrialLimit: 5,
		FreeEditLimit:  2,
		Now:            fixedNow,
	}
}

func TestIsSubscriptionActive(t *testing.T) {
	p := newTestPaywall()
	future := fixedNow().Add(time.Hour)
	past := fixedNow().Add(-time.Hour)
	exact := fixedNow()

	cases := []struct {
		name string
		u    *domain.UserProfile
		want bool
	}{
		{"nil profile", nil, false},
		{"admin always active", &domain.UserProfile{ID: "admin1"}, true},
		{"paid with future expiry", &domain.UserProfile{ID: "u1", IsPaid: true, SubscriptionExpiry: &future}, true},
		{"paid with past expiry", &domain.UserProfile{ID: "u1", IsPaid: true, SubscriptionExpiry: &past}, false},
		{"expiry exactly now is expired", &domain.UserProfile{ID: "u1", IsPaid: true, SubscriptionExpiry: &exact}, false},
		{"paid without expiry", &domain.UserProfile{ID: "u1", IsPaid: true}, false},
		{"unpaid", &domain.UserProfile{ID: "u1"}, false},
	}
	for _, tc := range cases {
		if got := p.IsSubscriptionActive(tc.u); got != tc.want {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestAllowCreate_TrialLimit(t *testing.T) {
	p := newTestPaywall()

	if !p.AllowCreate(&domain.UserProfile{ID: "u1", ReceiptCount: 4}) {
		t.Fatalf("under the limit should be allowed")
	}
	if p.AllowCreate(&domain.UserProfile{ID: "u1", ReceiptCount: 5}) {
		t.Fatalf("at the limit should be gated")
	}
	if p.AllowCreate(nil) {
		t.Fatalf("nil profile should be gated")
	}

	// Subscribed accounts ignore the counter.
	future := fixedNow().Add(24 * time.Hour)
	if !p.AllowCreate(&domain.UserProfile{ID: "u1", ReceiptCount: 100, IsPaid: true, SubscriptionExpiry: &future}) {
		t.Fatalf("subscriber should bypass the trial limit")
	}
	if !p.AllowCreate(&domain.UserProfile{ID: "admin1", ReceiptCount: 100}) {
		t.Fatalf("admin should bypass the trial limit")
	}
}

func TestAllowEdit_PerReceiptAllowance(t *testing.T) {
	p := newTestPaywall()
	u := &domain.UserProfile{ID: "u1", ReceiptCount: 100} // creation exhausted, irrelevant here

	if !p.AllowEdit(u, &domain.Receipt{EditCount: 1}) {
		t.Fatalf("edit under per-receipt limit should be allowed")
	}
	if p.AllowEdit(u, &domain.Receipt{EditCount: 2}) {
		t.Fatalf("edit at per-receipt limit should be gated")
	}
	if p.AllowEdit(u, nil) {
		t.Fatalf("nil receipt should be gated")
	}

	future := fixedNow().Add(24 * time.Hour)
	sub := &domain.UserProfile{ID: "u1", IsPaid: true, SubscriptionExpiry: &future}
	if !p.AllowEdit(sub, &domain.Receipt{EditCount: 50}) {
		t.Fatalf("subscriber should bypass the edit limit")
	}
}
