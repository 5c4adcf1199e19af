package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rosswilson/skylark/internal/domain"
)

// ProfileStore implements domain.ProfileStore on PostgreSQL. Each user has
// at most one default shipping profile, enforced by a unique index on
// user_id.
type ProfileStore struct {
	pool *pgxpool.Pool
}

var _ domain.ProfileStore = (*ProfileStore)(nil)

func NewProfileStore(pool *pgxpool.Pool) *ProfileStore {
	return &ProfileStore{pool: pool}
}

func (s *ProfileStore) GetByUserID(ctx context.Context, userID string) (*domain.ShippingProfile, error) {
	const op = "postgres.profile.get"

	var p domain.ShippingProfile
	err := s.pool.QueryRow(ctx, `
		SELECT user_id, full_name, email, COALESCE(phone_number, ''),
		       street_address, COALESCE(street_number, ''), city,
		       COALESCE(province, ''), country, updated_at
		FROM user_profiles WHERE user_id = $1`,
		userID).Scan(&p.UserID, &p.FullName, &p.Email, &p.PhoneNumber,
		&p.StreetAddress, &p.StreetNumber, &p.City, &p.Province, &p.Country, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NotFound(op, "shipping profile", userID)
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to query profile")
	}
	return &p, nil
}

// Upsert replaces the user's shipping profile wholesale.
func (s *ProfileStore) Upsert(ctx context.Context, profile *domain.ShippingProfile) (*domain.ShippingProfile, error) {
	const op = "postgres.profile.upsert"

	saved := *profile
	err := s.pool.QueryRow(ctx, `
		INSERT INTO user_profiles (
			user_id, full_name, email, phone_number,
			street_address, street_number, city, province, country, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (user_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			email = EXCLUDED.email,
			phone_number = EXCLUDED.phone_number,
			street_address = EXCLUDED.street_address,
			street_number = EXCLUDED.street_number,
			city = EXCLUDED.city,
			province = EXCLUDED.province,
			country = EXCLUDED.country,
			updated_at = now()
		RETURNING updated_at`,
		profile.UserID, profile.FullName, profile.Email, nullable(profile.PhoneNumber),
		profile.StreetAddress, nullable(profile.StreetNumber), profile.City,
		nullable(profile.Province), profile.Country,
	).Scan(&saved.UpdatedAt)
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to upsert profile")
	}
	return &saved, nil
}
