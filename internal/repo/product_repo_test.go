package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/tbourn/go-receipt-bot/internal/domain"
)

func TestUpsertProduct_SameNameUpdatesPrice(t *testing.T) {
	db := newTestDB(t, &domain.Product{})
	ctx := context.Background()

	if _, err := UpsertProduct(ctx, db, "u1", "Fanta", "500"); err != nil {
		t.Fatalf("UpsertProduct insert: %v", err)
	}
	// Different casing and padding still hit the same row.
	if _, err := UpsertProduct(ctx, db, "u1", "  FANTA ", "600"); err != nil {
		t.Fatalf("UpsertProduct upsert: %v", err)
	}

	var count int64
	db.Model(&domain.Product{}).Where("user_id = ?", "u1").Count(&count)
	if count != 1 {
		t.Fatalf("product rows = %d, want 1", count)
	}
	p, err := FindProduct(ctx, db, "u1", "fanta")
	if err != nil {
		t.Fatalf("FindProduct: %v", err)
	}
	if p.Price != "600" {
		t.Fatalf("Price = %q, want 600", p.Price)
	}
}

func TestUpsertProduct_ScopedPerOwner(t *testing.T) {
	db := newTestDB(t, &domain.Product{})
	ctx := context.Background()

	_, _ = UpsertProduct(ctx, db, "u1", "Fanta", "500")
	_, _ = UpsertProduct(ctx, db, "u2", "Fanta", "700")

	p1, _ := FindProduct(ctx, db, "u1", "Fanta")
	p2, _ := FindProduct(ctx, db, "u2", "Fanta")
	if p1.Price != "500" || p2.Price != "700" {
		t.Fatalf("catalogs leaked across owners: %q / %q", p1.Price, p2.Price)
	}
}

func TestFindProduct_NotFound(t *testing.T) {
	db := newTestDB(t, &domain.Product{})
	if _, err := FindProduct(context.Background(), db, "u1", "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteProduct(t *testing.T) {
	db := newTestDB(t, &domain.Product{})
	ctx := context.Background()

	_, _ = UpsertProduct(ctx, db, "u1", "Fanta", "500")
	if err := DeleteProduct(ctx, db, "u1", "FANTA"); err != nil {
		t.Fatalf("DeleteProduct: %v", err)
	}
	if err := DeleteProduct(ctx, db, "u1", "Fanta"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat delete, got %v", err)
	}
}

func TestListProducts_OrderedByKey(t *testing.T) {
	db := newTestDB(t, &domain.Product{})
	ctx := context.Background()

	_, _ = UpsertProduct(ctx, db, "u1", "Zobo", "300")
	_, _ = UpsertProduct(ctx, db, "u1", "amala", "1500")
	_, _ = UpsertProduct(ctx, db, "u1", "Fanta", "500")

	out, err := ListProducts(ctx, db, "u1")
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	if out[0].Name != "amala" || out[1].Name != "Fanta" || out[2].Name != "Zobo" {
		t.Fatalf("unexpected order: %v %v %v", out[0].Name, out[1].Name, out[2].Name)
	}
}
