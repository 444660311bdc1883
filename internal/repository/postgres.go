package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"debitgate/internal/errs"
	"debitgate/internal/model"
)

// PostgresStore is the durable side of the balance store: a last-known
// balance snapshot per key plus an idempotent journal of authorized charges.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) FetchBalance(ctx context.Context, key string) (int64, error) {
	var cents int64
	query := `SELECT balance_cents FROM accounts WHERE account_key = $1`
	err := s.pool.QueryRow(ctx, query, key).Scan(&cents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: no snapshot for %q", errs.ErrAccountNotFound, key)
		}
		return 0, fmt.Errorf("%w: snapshot query: %v", errs.ErrStoreUnavailable, err)
	}
	return cents, nil
}

func (s *PostgresStore) UpsertBalance(ctx context.Context, key string, cents int64) error {
	query := `
		INSERT INTO accounts (account_key, balance_cents, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (account_key) DO UPDATE
			SET balance_cents = EXCLUDED.balance_cents, updated_at = now()`
	if _, err := s.pool.Exec(ctx, query, key, cents); err != nil {
		return fmt.Errorf("%w: snapshot upsert: %v", errs.ErrStoreUnavailable, err)
	}
	return nil
}

// InsertCharge journals an authorized charge. The event id is the
// idempotency key: redelivered events are dropped by ON CONFLICT.
func (s *PostgresStore) InsertCharge(ctx context.Context, event model.ChargeEvent) error {
	query := `
		INSERT INTO charges (event_id, account, amount_cents, initial_cents, remaining_cents, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (event_id) DO NOTHING`
	_, err := s.pool.Exec(ctx, query,
		event.EventID,
		event.Account,
		event.AmountCents,
		event.InitialCents,
		event.RemainingCents,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: charge insert: %v", errs.ErrStoreUnavailable, err)
	}
	return nil
}
