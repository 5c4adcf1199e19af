package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rosswilson/skylark/internal/domain"
)

// memSessionStore is an in-memory SessionStore.
type memSessionStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{data: make(map[string][]byte)}
}

func (s *memSessionStore) Get(ctx context.Context, token string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data[token], nil
}

func (s *memSessionStore) Put(ctx context.Context, token string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[token] = data
	return nil
}

func (s *memSessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, token)
	return nil
}

// fakeCatalog is an in-memory ProductCatalog.
type fakeCatalog struct {
	products map[int64]domain.Product
}

func newFakeCatalog(products ...domain.Product) *fakeCatalog {
	c := &fakeCatalog{products: make(map[int64]domain.Product)}
	for _, p := range products {
		c.products[p.ID] = p
	}
	return c
}

func (c *fakeCatalog) GetPurchasableProduct(ctx context.Context, id int64) (*domain.Product, error) {
	p, ok := c.products[id]
	if !ok || !p.Active {
		return nil, domain.NotFound("catalog.get", "product", fmt.Sprintf("%d", id))
	}
	return &p, nil
}

func (c *fakeCatalog) ListPurchasable(ctx context.Context) ([]domain.Product, error) {
	var out []domain.Product
	for _, p := range c.products {
		if p.Active {
			out = append(out, p)
		}
	}
	return out, nil
}

// memOrderStore is an in-memory OrderStore enforcing session id uniqueness.
// The func hooks override individual operations for failure injection.
type memOrderStore struct {
	mu        sync.Mutex
	nextID    int64
	bySession map[string]*domain.Order

	createFunc       func(ctx context.Context, order *domain.Order) (*domain.Order, error)
	getBySessionFunc func(ctx context.Context, sessionID string) (*domain.Order, error)
}

func newMemOrderStore() *memOrderStore {
	return &memOrderStore{bySession: make(map[string]*domain.Order)}
}

func (s *memOrderStore) CreateWithItems(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if s.createFunc != nil {
		return s.createFunc(ctx, order)
	}
	return s.create(order)
}

func (s *memOrderStore) create(order *domain.Order) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bySession[order.SessionID]; exists {
		return nil, domain.Conflict("order.create", "order already exists for session")
	}

	s.nextID++
	stored := *order
	stored.ID = s.nextID
	stored.CreatedAt = time.Now()
	stored.Items = append([]domain.OrderItem(nil), order.Items...)
	s.bySession[order.SessionID] = &stored

	copied := stored
	return &copied, nil
}

func (s *memOrderStore) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.bySession {
		if o.ID == id {
			copied := *o
			return &copied, nil
		}
	}
	return nil, domain.NotFound("order.get", "order", fmt.Sprintf("%d", id))
}

func (s *memOrderStore) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	if s.getBySessionFunc != nil {
		return s.getBySessionFunc(ctx, sessionID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.bySession[sessionID]
	if !ok {
		return nil, domain.NotFound("order.get", "order", sessionID)
	}
	copied := *o
	return &copied, nil
}

func (s *memOrderStore) ListForCustomer(ctx context.Context, userID, email string) ([]domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Order
	for _, o := range s.bySession {
		if (userID != "" && o.UserID == userID) || (email != "" && o.CustomerEmail == email) {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (s *memOrderStore) Update(ctx context.Context, sessionID string, upd domain.OrderUpdate) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	o, ok := s.bySession[sessionID]
	if !ok {
		return nil, domain.NotFound("order.update", "order", sessionID)
	}

	if upd.PaymentIntentID != "" {
		o.PaymentIntentID = upd.PaymentIntentID
	}
	if upd.MarkPaid && o.Status == domain.OrderStatusPending {
		o.Status = domain.OrderStatusPaid
	}
	if upd.CustomerEmail != nil {
		o.CustomerEmail = *upd.CustomerEmail
	}
	if upd.CustomerName != nil {
		o.CustomerName = *upd.CustomerName
	}
	if upd.PhoneNumber != nil {
		o.PhoneNumber = *upd.PhoneNumber
	}
	if upd.ShippingAddress != nil {
		o.ShippingAddress = *upd.ShippingAddress
	}
	if upd.TotalCents != nil {
		o.TotalCents = *upd.TotalCents
	}

	copied := *o
	return &copied, nil
}

// memProfileStore is an in-memory ProfileStore.
type memProfileStore struct {
	mu       sync.Mutex
	profiles map[string]*domain.ShippingProfile
}

func newMemProfileStore() *memProfileStore {
	return &memProfileStore{profiles: make(map[string]*domain.ShippingProfile)}
}

func (s *memProfileStore) GetByUserID(ctx context.Context, userID string) (*domain.ShippingProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, domain.NotFound("profile.get", "shipping profile", userID)
	}
	copied := *p
	return &copied, nil
}

func (s *memProfileStore) Upsert(ctx context.Context, profile *domain.ShippingProfile) (*domain.ShippingProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *profile
	stored.UpdatedAt = time.Now()
	s.profiles[profile.UserID] = &stored
	copied := stored
	return &copied, nil
}
