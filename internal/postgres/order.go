package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rosswilson/skylark/internal/domain"
)

// OrderStore implements domain.OrderStore on PostgreSQL.
//
// The orders table carries a unique constraint on the payment session id,
// which arbitrates concurrent creation from the eager checkout path and the
// two reconciliation paths: exactly one insert wins, the rest see ECONFLICT.
type OrderStore struct {
	pool *pgxpool.Pool
}

var _ domain.OrderStore = (*OrderStore)(nil)

func NewOrderStore(pool *pgxpool.Pool) *OrderStore {
	return &OrderStore{pool: pool}
}

// CreateWithItems inserts the order and its line items in one transaction.
// Returns ECONFLICT if an order for the same payment session already exists.
func (s *OrderStore) CreateWithItems(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	const op = "postgres.order.create"

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		INSERT INTO orders (
			user_id, stripe_session_id, payment_intent_id,
			customer_email, customer_name, phone_number,
			shipping_address, total_cents, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at`,
		nullable(order.UserID), order.SessionID, nullable(order.PaymentIntentID),
		order.CustomerEmail, order.CustomerName, nullable(order.PhoneNumber),
		nullable(order.ShippingAddress), order.TotalCents, string(order.Status),
	)

	created := *order
	if err := row.Scan(&created.ID, &created.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return nil, domain.Conflict(op, fmt.Sprintf("order for session %s already exists", order.SessionID))
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to insert order")
	}

	for i := range created.Items {
		item := &created.Items[i]
		err := tx.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, product_title, quantity, unit_price_cents)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			created.ID, item.ProductID, item.ProductTitle, item.Quantity, item.UnitPriceCents,
		).Scan(&item.ID)
		if err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to insert order item")
		}
		item.OrderID = created.ID
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to commit order")
	}

	return &created, nil
}

func (s *OrderStore) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	const op = "postgres.order.get_by_id"

	order, err := s.scanOrder(ctx, `
		SELECT id, COALESCE(user_id, ''), stripe_session_id, COALESCE(payment_intent_id, ''),
		       customer_email, customer_name, COALESCE(phone_number, ''),
		       COALESCE(shipping_address, ''), total_cents, status, created_at
		FROM orders WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "order", fmt.Sprintf("%d", id))
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to query order")
	}

	if err := s.loadItems(ctx, order); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to load order items")
	}
	return order, nil
}

func (s *OrderStore) GetBySessionID(ctx context.Context, sessionID string) (*domain.Order, error) {
	const op = "postgres.order.get_by_session"

	order, err := s.scanOrder(ctx, `
		SELECT id, COALESCE(user_id, ''), stripe_session_id, COALESCE(payment_intent_id, ''),
		       customer_email, customer_name, COALESCE(phone_number, ''),
		       COALESCE(shipping_address, ''), total_cents, status, created_at
		FROM orders WHERE stripe_session_id = $1`, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "order", sessionID)
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to query order")
	}

	if err := s.loadItems(ctx, order); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to load order items")
	}
	return order, nil
}

// ListForCustomer returns orders matching the user id or, for guest orders,
// the customer email. Newest first.
func (s *OrderStore) ListForCustomer(ctx context.Context, userID, email string) ([]domain.Order, error) {
	const op = "postgres.order.list_for_customer"

	rows, err := s.pool.Query(ctx, `
		SELECT id, COALESCE(user_id, ''), stripe_session_id, COALESCE(payment_intent_id, ''),
		       customer_email, customer_name, COALESCE(phone_number, ''),
		       COALESCE(shipping_address, ''), total_cents, status, created_at
		FROM orders
		WHERE ($1 <> '' AND user_id = $1) OR ($2 <> '' AND customer_email = $2)
		ORDER BY created_at DESC, id DESC`,
		userID, email)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to query orders")
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		var status string
		err := rows.Scan(&o.ID, &o.UserID, &o.SessionID, &o.PaymentIntentID,
			&o.CustomerEmail, &o.CustomerName, &o.PhoneNumber,
			&o.ShippingAddress, &o.TotalCents, &status, &o.CreatedAt)
		if err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to scan order")
		}
		o.Status = domain.OrderStatus(status)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to read orders")
	}

	for i := range orders {
		if err := s.loadItems(ctx, &orders[i]); err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to load order items")
		}
	}
	return orders, nil
}

// Update applies the non-nil fields of upd to the order for sessionID.
// The status transition to paid is one-way: a paid order never reverts to
// pending regardless of what the caller passes.
func (s *OrderStore) Update(ctx context.Context, sessionID string, upd domain.OrderUpdate) (*domain.Order, error) {
	const op = "postgres.order.update"

	row := s.pool.QueryRow(ctx, `
		UPDATE orders SET
			payment_intent_id = COALESCE(NULLIF($2, ''), payment_intent_id),
			status            = CASE WHEN $3 AND status = 'pending' THEN 'paid' ELSE status END,
			customer_email    = COALESCE($4, customer_email),
			customer_name     = COALESCE($5, customer_name),
			phone_number      = COALESCE($6, phone_number),
			shipping_address  = COALESCE($7, shipping_address),
			total_cents       = COALESCE($8, total_cents)
		WHERE stripe_session_id = $1
		RETURNING id, COALESCE(user_id, ''), stripe_session_id, COALESCE(payment_intent_id, ''),
		          customer_email, customer_name, COALESCE(phone_number, ''),
		          COALESCE(shipping_address, ''), total_cents, status, created_at`,
		sessionID, upd.PaymentIntentID, upd.MarkPaid,
		upd.CustomerEmail, upd.CustomerName, upd.PhoneNumber,
		upd.ShippingAddress, upd.TotalCents,
	)

	var o domain.Order
	var status string
	err := row.Scan(&o.ID, &o.UserID, &o.SessionID, &o.PaymentIntentID,
		&o.CustomerEmail, &o.CustomerName, &o.PhoneNumber,
		&o.ShippingAddress, &o.TotalCents, &status, &o.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "order", sessionID)
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to update order")
	}
	o.Status = domain.OrderStatus(status)

	if err := s.loadItems(ctx, &o); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to load order items")
	}
	return &o, nil
}

func (s *OrderStore) scanOrder(ctx context.Context, query string, arg any) (*domain.Order, error) {
	var o domain.Order
	var status string
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&o.ID, &o.UserID, &o.SessionID, &o.PaymentIntentID,
		&o.CustomerEmail, &o.CustomerName, &o.PhoneNumber,
		&o.ShippingAddress, &o.TotalCents, &status, &o.CreatedAt)
	if err != nil {
		return nil, err
	}
	o.Status = domain.OrderStatus(status)
	return &o, nil
}

func (s *OrderStore) loadItems(ctx context.Context, order *domain.Order) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, order_id, product_id, product_title, quantity, unit_price_cents
		FROM order_items WHERE order_id = $1 ORDER BY id`,
		order.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	order.Items = order.Items[:0]
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.ProductTitle, &item.Quantity, &item.UnitPriceCents); err != nil {
			return err
		}
		order.Items = append(order.Items, item)
	}
	return rows.Err()
}

// nullable maps the empty string to SQL NULL for optional text columns.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
