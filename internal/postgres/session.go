package postgres

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rosswilson/skylark/internal/domain"
	"github.com/rosswilson/skylark/internal/service"
)

// SessionStore persists per-visitor session blobs (cart contents) keyed by
// the session token from the browser cookie. Implements service.SessionStore.
type SessionStore struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

var _ service.SessionStore = (*SessionStore)(nil)

func NewSessionStore(pool *pgxpool.Pool, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionStore{pool: pool, ttl: ttl}
}

// Get returns the stored blob for token, or nil if the session does not
// exist or has expired.
func (s *SessionStore) Get(ctx context.Context, token string) ([]byte, error) {
	const op = "postgres.session.get"

	var data []byte
	err := s.pool.QueryRow(ctx, `
		SELECT data FROM sessions
		WHERE token = $1 AND expires_at > now()`,
		token).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to read session")
	}
	return data, nil
}

// Put stores the blob for token, extending the expiry.
func (s *SessionStore) Put(ctx context.Context, token string, data []byte) error {
	const op = "postgres.session.put"

	_, err := s.pool.Exec(ctx, `
		INSERT INTO sessions (token, data, expires_at)
		VALUES ($1, $2, now() + $3)
		ON CONFLICT (token) DO UPDATE
		SET data = EXCLUDED.data, expires_at = EXCLUDED.expires_at`,
		token, data, s.ttl)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to write session")
	}
	return nil
}

// Delete removes the session. Deleting an absent token is not an error.
func (s *SessionStore) Delete(ctx context.Context, token string) error {
	const op = "postgres.session.delete"

	_, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token)
	if err != nil {
		return domain.WrapError(err, domain.EINTERNAL, op, "failed to delete session")
	}
	return nil
}

// DeleteExpired reaps expired sessions. Run periodically via ReapSessions;
// reads already filter on expires_at, so this only reclaims storage.
func (s *SessionStore) DeleteExpired(ctx context.Context) (int64, error) {
	const op = "postgres.session.delete_expired"

	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, domain.WrapError(err, domain.EINTERNAL, op, "failed to reap sessions")
	}
	return tag.RowsAffected(), nil
}

// ExpiredDeleter is the reaping capability of a session store.
type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// ReapSessions deletes expired sessions on every tick of interval until ctx
// is cancelled. Errors are logged and the sweep continues on the next tick.
func ReapSessions(ctx context.Context, store ExpiredDeleter, interval time.Duration, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.DeleteExpired(ctx)
			if err != nil {
				logger.Error("session reap failed", "error", err)
				continue
			}
			if n > 0 {
				logger.Info("reaped expired sessions", "count", n)
			}
		}
	}
}
