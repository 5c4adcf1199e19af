package domain

import "context"

// ProductKind distinguishes catalog entries.
type ProductKind string

const (
	ProductKindPoster ProductKind = "poster"
	ProductKindVideo  ProductKind = "video"
)

// Product is a catalog entry. The cart snapshots its title, image and price
// at add time.
type Product struct {
	ID         int64
	Title      string
	ImageURL   string
	PriceCents int64
	Kind       ProductKind
	Active     bool
}

// ProductCatalog exposes the catalog reads the checkout flow needs.
type ProductCatalog interface {
	// GetPurchasableProduct returns the product if it exists and is
	// currently purchasable, ENOTFOUND otherwise.
	GetPurchasableProduct(ctx context.Context, id int64) (*Product, error)

	// ListPurchasable returns all currently purchasable products.
	ListPurchasable(ctx context.Context) ([]Product, error)
}
