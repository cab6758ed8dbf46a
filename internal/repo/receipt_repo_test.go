package repo

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/tbourn/go-receipt-bot/internal/domain"
)

func TestCreateReceipt_SetsIdentityAndDefaults(t *testing.T) {
	db := newTestDB(t, &domain.Receipt{})
	ctx := context.Background()

	rec := &domain.Receipt{
		UserID:        "u1",
		CustomerName:  "Ada",
		Items:         []string{"Fanta", "Meat pie"},
		Prices:        []string{"500", "1200"},
		PaymentMethod: "cash",
		Total:         1700,
	}
	if err := CreateReceipt(ctx, db, rec); err != nil {
		t.Fatalf("CreateReceipt: %v", err)
	}
	if rec.ID == "" || rec.EditCount != 0 || rec.CreatedAt.IsZero() {
		t.Fatalf("identity fields not set: %+v", rec)
	}

	got, err := GetReceipt(ctx, db, rec.ID, "u1")
	if err != nil {
		t.Fatalf("GetReceipt: %v", err)
	}
	if !reflect.DeepEqual(got.Items, rec.Items) || !reflect.DeepEqual(got.Prices, rec.Prices) {
		t.Fatalf("serialized lists round-trip mismatch: %+v", got)
	}
}

func TestGetReceipt_EnforcesOwnership(t *testing.T) {
	db := newTestDB(t, &domain.Receipt{})
	ctx := context.Background()

	rec := &domain.Receipt{UserID: "u1", CustomerName: "Ada", Items: []string{"x"}, Prices: []string{"1"}}
	_ = CreateReceipt(ctx, db, rec)

	if _, err := GetReceipt(ctx, db, rec.ID, "intruder"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong owner, got %v", err)
	}
}

func TestLatestReceipt_NewestWins(t *testing.T) {
	db := newTestDB(t, &domain.Receipt{})
	ctx := context.Background()

	old := &domain.Receipt{UserID: "u1", CustomerName: "Old", Items: []string{"x"}, Prices: []string{"1"}}
	_ = CreateReceipt(ctx, db, old)
	db.Model(old).Update("created_at", time.Now().UTC().Add(-time.Hour))

	newer := &domain.Receipt{UserID: "u1", CustomerName: "New", Items: []string{"x"}, Prices: []string{"1"}}
	_ = CreateReceipt(ctx, db, newer)

	got, err := LatestReceipt(ctx, db, "u1")
	if err != nil {
		t.Fatalf("LatestReceipt: %v", err)
	}
	if got.CustomerName != "New" {
		t.Fatalf("latest = %q, want New", got.CustomerName)
	}

	if _, err := LatestReceipt(ctx, db, "empty"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateReceipt_IncrementsEditCountKeepsCreatedAt(t *testing.T) {
	db := newTestDB(t, &domain.Receipt{})
	ctx := context.Background()

	rec := &domain.Receipt{UserID: "u1", CustomerName: "Ada", Items: []string{"x"}, Prices: []string{"1"}}
	_ = CreateReceipt(ctx, db, rec)
	created := rec.CreatedAt

	err := UpdateReceipt(ctx, db, rec.ID, "u1", map[string]any{
		"customer_name": "Grace",
		"items":         []string{"y", "z"},
		"prices":        []string{"2", "3"},
		"total":         5.0,
	})
	if err != nil {
		t.Fatalf("UpdateReceipt: %v", err)
	}

	got, _ := GetReceipt(ctx, db, rec.ID, "u1")
	if got.CustomerName != "Grace" || got.EditCount != 1 {
		t.Fatalf("update mismatch: %+v", got)
	}
	if !reflect.DeepEqual(got.Items, []string{"y", "z"}) {
		t.Fatalf("items not updated: %+v", got.Items)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("CreatedAt changed: %v -> %v", created, got.CreatedAt)
	}

	if err := UpdateReceipt(ctx, db, rec.ID, "intruder", map[string]any{"total": 1.0}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for wrong owner, got %v", err)
	}
}

func TestListRecentReceipts_LimitAndOrder(t *testing.T) {
	db := newTestDB(t, &domain.Receipt{})
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		rec := &domain.Receipt{UserID: "u1", CustomerName: "C", Items: []string{"x"}, Prices: []string{"1"}}
		_ = CreateReceipt(ctx, db, rec)
		db.Model(rec).Update("created_at", base.Add(time.Duration(i)*time.Minute))
	}

	out, err := ListRecentReceipts(ctx, db, "u1", 5)
	if err != nil {
		t.Fatalf("ListRecentReceipts: %v", err)
	}
	if len(out) != 5 {
		t.Fatalf("len = %d, want 5", len(out))
	}
	for i := 1; i < len(out); i++ {
		if out[i].CreatedAt.After(out[i-1].CreatedAt) {
			t.Fatalf("not newest-first at %d", i)
		}
	}
}

func TestListReceiptsBetween_HalfOpenWindow(t *testing.T) {
	db := newTestDB(t, &domain.Receipt{})
	ctx := context.Background()

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)

	stamps := []time.Time{
		from.Add(-time.Second), // before
		from,                   // inclusive
		from.AddDate(0, 0, 15), // inside
		to,                     // exclusive
	}
	for _, ts := range stamps {
		rec := &domain.Receipt{UserID: "u1", CustomerName: "C", Items: []string{"x"}, Prices: []string{"1"}}
		_ = CreateReceipt(ctx, db, rec)
		db.Model(rec).Update("created_at", ts)
	}

	out, err := ListReceiptsBetween(ctx, db, "u1", from, to)
	if err != nil {
		t.Fatalf("ListReceiptsBetween: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2 (inclusive from, exclusive to)", len(out))
	}
	if out[0].CreatedAt.After(out[1].CreatedAt) {
		t.Fatalf("export order should be oldest first")
	}
}
