package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rosswilson/skylark/internal/domain"
)

// ProductStore implements domain.ProductCatalog on PostgreSQL.
type ProductStore struct {
	pool *pgxpool.Pool
}

var _ domain.ProductCatalog = (*ProductStore)(nil)

func NewProductStore(pool *pgxpool.Pool) *ProductStore {
	return &ProductStore{pool: pool}
}

// GetPurchasableProduct returns the product if it exists and can be sold.
// Inactive products are reported as not found rather than unavailable, so
// the storefront never confirms their existence.
func (s *ProductStore) GetPurchasableProduct(ctx context.Context, id int64) (*domain.Product, error) {
	const op = "postgres.product.get_purchasable"

	var p domain.Product
	var kind string
	err := s.pool.QueryRow(ctx, `
		SELECT id, title, COALESCE(image_url, ''), price_cents, kind, active
		FROM products WHERE id = $1 AND active`,
		id).Scan(&p.ID, &p.Title, &p.ImageURL, &p.PriceCents, &kind, &p.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "product", fmt.Sprintf("%d", id))
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to query product")
	}
	p.Kind = domain.ProductKind(kind)
	return &p, nil
}

func (s *ProductStore) ListPurchasable(ctx context.Context) ([]domain.Product, error) {
	const op = "postgres.product.list_purchasable"

	rows, err := s.pool.Query(ctx, `
		SELECT id, title, COALESCE(image_url, ''), price_cents, kind, active
		FROM products WHERE active ORDER BY title`)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to query products")
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var kind string
		if err := rows.Scan(&p.ID, &p.Title, &p.ImageURL, &p.PriceCents, &kind, &p.Active); err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to scan product")
		}
		p.Kind = domain.ProductKind(kind)
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to read products")
	}
	return products, nil
}
