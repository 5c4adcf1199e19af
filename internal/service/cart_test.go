package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/rosswilson/skylark/internal/domain"
)

func testCatalog() *fakeCatalog {
	return newFakeCatalog(
		domain.Product{ID: 1, Title: "Aurora Print", ImageURL: "/img/aurora.jpg", PriceCents: 2999, Kind: domain.ProductKindPoster, Active: true},
		domain.Product{ID: 2, Title: "Glacier Print", ImageURL: "/img/glacier.jpg", PriceCents: 4500, Kind: domain.ProductKindPoster, Active: true},
		domain.Product{ID: 3, Title: "Retired Print", PriceCents: 1000, Kind: domain.ProductKindPoster, Active: false},
	)
}

func TestCartService_AddItem(t *testing.T) {
	ctx := context.Background()
	sessions := newMemSessionStore()
	svc := NewCartService(sessions, testCatalog(), slog.Default())

	cart, err := svc.AddItem(ctx, "tok1", 1, 2)
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 line, got %d", len(cart.Items))
	}
	line := cart.Items[0]
	if line.Title != "Aurora Print" {
		t.Errorf("expected snapshot title Aurora Print, got %q", line.Title)
	}
	if line.UnitPriceCents != 2999 {
		t.Errorf("expected snapshot price 2999, got %d", line.UnitPriceCents)
	}
	if line.Quantity != 2 {
		t.Errorf("expected quantity 2, got %d", line.Quantity)
	}
	if cart.TotalCents() != 5998 {
		t.Errorf("expected total 5998, got %d", cart.TotalCents())
	}
}

func TestCartService_AddItem_IncrementsExistingLine(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newMemSessionStore(), testCatalog(), slog.Default())

	if _, err := svc.AddItem(ctx, "tok1", 1, 1); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	cart, err := svc.AddItem(ctx, "tok1", 1, 3)
	if err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	if len(cart.Items) != 1 {
		t.Fatalf("expected merged line, got %d lines", len(cart.Items))
	}
	if cart.Items[0].Quantity != 4 {
		t.Errorf("expected quantity 4, got %d", cart.Items[0].Quantity)
	}
}

func TestCartService_AddItem_SnapshotSurvivesCatalogEdit(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog()
	svc := NewCartService(newMemSessionStore(), catalog, slog.Default())

	if _, err := svc.AddItem(ctx, "tok1", 1, 1); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	// Catalog price change after the line was added.
	p := catalog.products[1]
	p.PriceCents = 9999
	catalog.products[1] = p

	cart, err := svc.Get(ctx, "tok1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if cart.Items[0].UnitPriceCents != 2999 {
		t.Errorf("expected snapshot price 2999, got %d", cart.Items[0].UnitPriceCents)
	}
}

func TestCartService_AddItem_Errors(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newMemSessionStore(), testCatalog(), slog.Default())

	tests := []struct {
		name      string
		productID int64
		quantity  int32
		wantCode  string
	}{
		{"unknown product", 99, 1, domain.ENOTFOUND},
		{"inactive product", 3, 1, domain.ENOTFOUND},
		{"zero quantity", 1, 0, domain.EINVALID},
		{"negative quantity", 1, -2, domain.EINVALID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddItem(ctx, "tok1", tt.productID, tt.quantity)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !domain.IsCode(err, tt.wantCode) {
				t.Errorf("expected code %s, got %s", tt.wantCode, domain.ErrorCode(err))
			}
		})
	}

	// None of the failures may leave state behind.
	cart, err := svc.Get(ctx, "tok1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !cart.IsEmpty() {
		t.Errorf("expected cart to stay empty, got %d lines", len(cart.Items))
	}
}

func TestCartService_SetQuantity(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newMemSessionStore(), testCatalog(), slog.Default())

	if _, err := svc.AddItem(ctx, "tok1", 1, 2); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	cart, err := svc.SetQuantity(ctx, "tok1", 1, 5)
	if err != nil {
		t.Fatalf("SetQuantity() error = %v", err)
	}
	if cart.Items[0].Quantity != 5 {
		t.Errorf("expected quantity 5, got %d", cart.Items[0].Quantity)
	}
}

func TestCartService_SetQuantity_ZeroRemovesLine(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newMemSessionStore(), testCatalog(), slog.Default())

	if _, err := svc.AddItem(ctx, "tok1", 1, 2); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	cart, err := svc.SetQuantity(ctx, "tok1", 1, 0)
	if err != nil {
		t.Fatalf("SetQuantity() error = %v", err)
	}
	if !cart.IsEmpty() {
		t.Errorf("expected line removed, got %d lines", len(cart.Items))
	}
}

func TestCartService_SetQuantity_AbsentLineIsNoOp(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newMemSessionStore(), testCatalog(), slog.Default())

	if _, err := svc.AddItem(ctx, "tok1", 1, 2); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	cart, err := svc.SetQuantity(ctx, "tok1", 99, 7)
	if err != nil {
		t.Fatalf("SetQuantity() error = %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].Quantity != 2 {
		t.Errorf("expected cart unchanged, got %+v", cart.Items)
	}
}

func TestCartService_RemoveItem(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newMemSessionStore(), testCatalog(), slog.Default())

	if _, err := svc.AddItem(ctx, "tok1", 1, 1); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if _, err := svc.AddItem(ctx, "tok1", 2, 1); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	cart, err := svc.RemoveItem(ctx, "tok1", 1)
	if err != nil {
		t.Fatalf("RemoveItem() error = %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].ProductID != 2 {
		t.Errorf("expected only product 2 to remain, got %+v", cart.Items)
	}

	// Removing an absent line succeeds.
	cart, err = svc.RemoveItem(ctx, "tok1", 99)
	if err != nil {
		t.Fatalf("RemoveItem() absent line error = %v", err)
	}
	if len(cart.Items) != 1 {
		t.Errorf("expected cart unchanged, got %+v", cart.Items)
	}
}

func TestCartService_Get_CorruptStateBecomesEmptyCart(t *testing.T) {
	ctx := context.Background()
	sessions := newMemSessionStore()
	svc := NewCartService(sessions, testCatalog(), slog.Default())

	if err := sessions.Put(ctx, "tok1", []byte("{not json")); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	cart, err := svc.Get(ctx, "tok1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !cart.IsEmpty() {
		t.Errorf("expected empty cart for corrupt state, got %+v", cart.Items)
	}
}

func TestCartService_Get_MissingTokenIsEmptyCart(t *testing.T) {
	svc := NewCartService(newMemSessionStore(), testCatalog(), slog.Default())

	cart, err := svc.Get(context.Background(), "never-seen")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !cart.IsEmpty() {
		t.Errorf("expected empty cart, got %+v", cart.Items)
	}
}

func TestCartService_Clear(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newMemSessionStore(), testCatalog(), slog.Default())

	if _, err := svc.AddItem(ctx, "tok1", 1, 2); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}
	if err := svc.Clear(ctx, "tok1"); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	cart, err := svc.Get(ctx, "tok1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !cart.IsEmpty() {
		t.Errorf("expected empty cart after clear, got %+v", cart.Items)
	}
}

func TestCartService_SessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	svc := NewCartService(newMemSessionStore(), testCatalog(), slog.Default())

	if _, err := svc.AddItem(ctx, "tokA", 1, 1); err != nil {
		t.Fatalf("AddItem() error = %v", err)
	}

	cart, err := svc.Get(ctx, "tokB")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !cart.IsEmpty() {
		t.Errorf("expected tokB cart to be empty, got %+v", cart.Items)
	}
}

func TestCartService_AddItem_ErrorIdentity(t *testing.T) {
	svc := NewCartService(newMemSessionStore(), testCatalog(), slog.Default())

	_, err := svc.AddItem(context.Background(), "tok1", 1, 0)
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Errorf("expected ErrInvalidQuantity, got %v", err)
	}
}
