package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"net"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"debitgate/internal/errs"
	"debitgate/internal/model"
)

//go:embed debit.lua
var debitLuaScript string

var errCacheMiss = errors.New("balance not found in cache")

// SnapshotSource supplies the durable balance for a key whose cache entry is
// missing (cold start). Implemented by PostgresStore; tests use a stub.
type SnapshotSource interface {
	FetchBalance(ctx context.Context, key string) (int64, error)
	UpsertBalance(ctx context.Context, key string, cents int64) error
}

// BalanceRepo is the balance store. Every debit runs as a single server-side
// Lua script, so the read-decide-write sequence cannot interleave with any
// other operation on the same key.
type BalanceRepo struct {
	redisClient *redis.Client
	debitScript *redis.Script
	snapshots   SnapshotSource
	log         *zap.Logger
}

func NewBalanceRepo(rdb *redis.Client, snapshots SnapshotSource, log *zap.Logger) *BalanceRepo {
	return &BalanceRepo{
		redisClient: rdb,
		debitScript: redis.NewScript(debitLuaScript),
		snapshots:   snapshots,
		log:         log,
	}
}

// TryDebit atomically deducts amountCents from key if the balance covers it.
// On a cold cache it warms the key from the durable snapshot and runs the
// script once more.
func (r *BalanceRepo) TryDebit(ctx context.Context, key string, amountCents int64) (*model.DebitResult, error) {
	res, err := r.runDebit(ctx, key, amountCents)
	if !errors.Is(err, errCacheMiss) {
		return res, err
	}

	r.log.Info("cold cache, warming balance from snapshot", zap.String("key", key))
	if err := r.warmUpCache(ctx, key); err != nil {
		return nil, err
	}
	res, err = r.runDebit(ctx, key, amountCents)
	if errors.Is(err, errCacheMiss) {
		// Warmed a moment ago; only an external delete explains this.
		return nil, fmt.Errorf("%w: key %q vanished after warmup", errs.ErrStoreUnavailable, key)
	}
	return res, err
}

func (r *BalanceRepo) runDebit(ctx context.Context, key string, amountCents int64) (*model.DebitResult, error) {
	reply, err := r.debitScript.Run(ctx, r.redisClient, []string{key}, amountCents).Result()
	if err != nil {
		return nil, classifyStoreErr(err)
	}

	arr, ok := reply.([]interface{})
	if !ok || len(arr) != 4 {
		return nil, fmt.Errorf("%w: unexpected script reply %v", errs.ErrStoreUnavailable, reply)
	}
	status, initial, remaining, charged := toInt64(arr[0]), toInt64(arr[1]), toInt64(arr[2]), toInt64(arr[3])

	switch status {
	case 1, 0:
		return &model.DebitResult{
			Authorized:     status == 1,
			InitialCents:   initial,
			RemainingCents: remaining,
			ChargedCents:   charged,
		}, nil
	case -1:
		return nil, errCacheMiss
	case -2:
		r.log.Error("negative balance observed in store",
			zap.String("key", key),
			zap.Int64("balance_cents", initial),
		)
		return nil, fmt.Errorf("%w: key %q holds %d cents", errs.ErrCorruptBalance, key, initial)
	default:
		return nil, fmt.Errorf("%w: unknown script status %d", errs.ErrStoreUnavailable, status)
	}
}

// Reset unconditionally sets the balance for key and mirrors it to the
// durable snapshot. Last writer wins with respect to concurrent debits.
func (r *BalanceRepo) Reset(ctx context.Context, key string, cents int64) error {
	if err := r.redisClient.Set(ctx, key, cents, 0).Err(); err != nil {
		return classifyStoreErr(err)
	}
	if err := r.snapshots.UpsertBalance(ctx, key, cents); err != nil {
		return err
	}
	return nil
}

// Balance reads the current balance for key, warming from the snapshot on a
// cold cache.
func (r *BalanceRepo) Balance(ctx context.Context, key string) (int64, error) {
	cents, err := r.redisClient.Get(ctx, key).Int64()
	if err == nil {
		return cents, nil
	}
	if !errors.Is(err, redis.Nil) {
		return 0, classifyStoreErr(err)
	}
	if err := r.warmUpCache(ctx, key); err != nil {
		return 0, err
	}
	cents, err = r.redisClient.Get(ctx, key).Int64()
	if err != nil {
		return 0, classifyStoreErr(err)
	}
	return cents, nil
}

// warmUpCache copies the durable balance into Redis. SET NX so a balance
// written by a concurrent debit is never clobbered with a stale snapshot.
func (r *BalanceRepo) warmUpCache(ctx context.Context, key string) error {
	cents, err := r.snapshots.FetchBalance(ctx, key)
	if err != nil {
		return err
	}
	if err := r.redisClient.SetNX(ctx, key, cents, 0).Err(); err != nil {
		return classifyStoreErr(err)
	}
	return nil
}

// classifyStoreErr separates failures that provably did not apply from those
// whose outcome is unknown. A deadline or timeout may have fired after the
// script was submitted, so those are indeterminate; connection-level refusals
// happen before anything was sent.
func classifyStoreErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", errs.ErrIndeterminate, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", errs.ErrIndeterminate, err)
	}
	return fmt.Errorf("%w: %v", errs.ErrStoreUnavailable, err)
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}
