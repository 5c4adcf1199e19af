package domain

import "context"

// CartItem is one line of a shopper's pending selection. Title, image and
// price are snapshots taken when the line was added; later catalog edits do
// not change them.
type CartItem struct {
	ProductID      int64  `json:"product_id"`
	Title          string `json:"title"`
	ImageURL       string `json:"image_url"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int32  `json:"quantity"`
}

// LineSubtotal returns unit price times quantity for this line.
func (i CartItem) LineSubtotal() int64 {
	return i.UnitPriceCents * int64(i.Quantity)
}

// Cart holds the shopper's in-progress selection for one browsing session.
// At most one line exists per product id.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Find returns the line for productID, or nil if absent.
func (c *Cart) Find(productID int64) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// TotalCents sums unit price times quantity over all lines using the
// snapshot prices.
func (c *Cart) TotalCents() int64 {
	var total int64
	for _, item := range c.Items {
		total += item.LineSubtotal()
	}
	return total
}

// ItemCount sums quantities over all lines. Used for the cart badge, so it
// must stay cheap.
func (c *Cart) ItemCount() int {
	var count int
	for _, item := range c.Items {
		count += int(item.Quantity)
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// CartService maintains the shopper's pending selection, keyed explicitly by
// session token. There is no cross-session or cross-device sharing.
type CartService interface {
	// Get loads the cart for a session token. Missing or corrupt stored
	// state is returned as an empty cart, never an error.
	Get(ctx context.Context, token string) (*Cart, error)

	// AddItem adds quantity of a product to the cart, snapshotting current
	// title/image/price. Fails with ENOTFOUND if the product is absent or
	// not purchasable. If the line already exists, its quantity is
	// incremented.
	AddItem(ctx context.Context, token string, productID int64, quantity int32) (*Cart, error)

	// SetQuantity overwrites the quantity of an existing line. A quantity
	// of zero or less removes the line.
	SetQuantity(ctx context.Context, token string, productID int64, quantity int32) (*Cart, error)

	// RemoveItem deletes the line if present; absent lines are a no-op.
	RemoveItem(ctx context.Context, token string, productID int64) (*Cart, error)

	// Clear discards all lines.
	Clear(ctx context.Context, token string) error
}
