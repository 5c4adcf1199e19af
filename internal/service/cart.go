package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/rosswilson/skylark/internal/domain"
)

// SessionStore persists opaque per-session state keyed by session token.
// Cart state lives here for the lifetime of one browsing session.
type SessionStore interface {
	// Get returns the stored bytes for a token, or nil if none exist.
	Get(ctx context.Context, token string) ([]byte, error)

	// Put stores data under the token, replacing any previous value.
	Put(ctx context.Context, token string, data []byte) error

	// Delete discards the stored state for a token. Absent tokens are a no-op.
	Delete(ctx context.Context, token string) error
}

type cartService struct {
	sessions SessionStore
	catalog  domain.ProductCatalog
	logger   *slog.Logger
}

// Compile-time check that cartService implements domain.CartService.
var _ domain.CartService = (*cartService)(nil)

// NewCartService creates a cart service backed by the given session store
// and product catalog.
func NewCartService(sessions SessionStore, catalog domain.ProductCatalog, logger *slog.Logger) domain.CartService {
	if logger == nil {
		logger = slog.Default()
	}
	return &cartService{
		sessions: sessions,
		catalog:  catalog,
		logger:   logger,
	}
}

// Get loads the cart for a session token. Missing or corrupt stored state is
// treated as an empty cart rather than a hard failure.
func (s *cartService) Get(ctx context.Context, token string) (*domain.Cart, error) {
	data, err := s.sessions.Get(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if len(data) == 0 {
		return &domain.Cart{}, nil
	}

	var cart domain.Cart
	if err := json.Unmarshal(data, &cart); err != nil {
		s.logger.Warn("discarding corrupt cart state", "token", token, "error", err)
		return &domain.Cart{}, nil
	}

	return &cart, nil
}

// AddItem adds a product to the cart, snapshotting its current title, image
// and price. If the product is already present, the quantity is incremented.
func (s *cartService) AddItem(ctx context.Context, token string, productID int64, quantity int32) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	product, err := s.catalog.GetPurchasableProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	cart, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if line := cart.Find(productID); line != nil {
		line.Quantity += quantity
	} else {
		cart.Items = append(cart.Items, domain.CartItem{
			ProductID:      product.ID,
			Title:          product.Title,
			ImageURL:       product.ImageURL,
			UnitPriceCents: product.PriceCents,
			Quantity:       quantity,
		})
	}

	if err := s.save(ctx, token, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// SetQuantity overwrites the quantity of an existing line. Zero or negative
// quantities remove the line; absent lines are a no-op.
func (s *cartService) SetQuantity(ctx context.Context, token string, productID int64, quantity int32) (*domain.Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, token, productID)
	}

	cart, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	if line := cart.Find(productID); line != nil {
		line.Quantity = quantity
		if err := s.save(ctx, token, cart); err != nil {
			return nil, err
		}
	}

	return cart, nil
}

// RemoveItem deletes the line if present; removing an absent line is not an
// error.
func (s *cartService) RemoveItem(ctx context.Context, token string, productID int64) (*domain.Cart, error) {
	cart, err := s.Get(ctx, token)
	if err != nil {
		return nil, err
	}

	items := cart.Items[:0]
	for _, item := range cart.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	cart.Items = items

	if err := s.save(ctx, token, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// Clear discards all lines for the session.
func (s *cartService) Clear(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}

func (s *cartService) save(ctx context.Context, token string, cart *domain.Cart) error {
	data, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to serialize cart: %w", err)
	}
	if err := s.sessions.Put(ctx, token, data); err != nil {
		return fmt.Errorf("failed to persist cart: %w", err)
	}
	return nil
}
