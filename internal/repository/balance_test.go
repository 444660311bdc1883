package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"debitgate/internal/errs"
	"debitgate/internal/model"
)

type stubSnapshots struct {
	mu       sync.Mutex
	balances map[string]int64
	upserts  map[string]int64
}

func (s *stubSnapshots) FetchBalance(ctx context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cents, ok := s.balances[key]
	if !ok {
		return 0, fmt.Errorf("%w: no snapshot for %q", errs.ErrAccountNotFound, key)
	}
	return cents, nil
}

func (s *stubSnapshots) UpsertBalance(ctx context.Context, key string, cents int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.upserts == nil {
		s.upserts = make(map[string]int64)
	}
	s.upserts[key] = cents
	return nil
}

func newTestRepo(t *testing.T, snaps *stubSnapshots) (*BalanceRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	if snaps == nil {
		snaps = &stubSnapshots{}
	}
	return NewBalanceRepo(rdb, snaps, zap.NewNop()), mr
}

func TestTryDebitAuthorized(t *testing.T) {
	repo, mr := newTestRepo(t, nil)
	require.NoError(t, mr.Set("balance:test", "10000"))

	res, err := repo.TryDebit(context.Background(), "balance:test", 3000)
	require.NoError(t, err)

	assert.True(t, res.Authorized)
	assert.Equal(t, int64(10000), res.InitialCents)
	assert.Equal(t, int64(7000), res.RemainingCents)
	assert.Equal(t, int64(3000), res.ChargedCents)
}

func TestTryDebitDeclinedLeavesBalanceUntouched(t *testing.T) {
	repo, mr := newTestRepo(t, nil)
	require.NoError(t, mr.Set("balance:test", "1000"))

	res, err := repo.TryDebit(context.Background(), "balance:test", 2000)
	require.NoError(t, err)

	assert.False(t, res.Authorized)
	assert.Equal(t, int64(1000), res.InitialCents)
	assert.Equal(t, int64(1000), res.RemainingCents)
	assert.Equal(t, int64(0), res.ChargedCents)

	cents, err := repo.Balance(context.Background(), "balance:test")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), cents)
}

func TestTryDebitNeverGoesNegative(t *testing.T) {
	repo, mr := newTestRepo(t, nil)
	require.NoError(t, mr.Set("balance:test", "2500"))

	for i := 0; i < 10; i++ {
		_, err := repo.TryDebit(context.Background(), "balance:test", 1000)
		require.NoError(t, err)
	}

	cents, err := repo.Balance(context.Background(), "balance:test")
	require.NoError(t, err)
	assert.Equal(t, int64(500), cents)
}

func TestTryDebitColdCacheWarmsFromSnapshot(t *testing.T) {
	snaps := &stubSnapshots{balances: map[string]int64{"balance:test": 5000}}
	repo, mr := newTestRepo(t, snaps)

	res, err := repo.TryDebit(context.Background(), "balance:test", 2000)
	require.NoError(t, err)

	assert.True(t, res.Authorized)
	assert.Equal(t, int64(5000), res.InitialCents)
	assert.Equal(t, int64(3000), res.RemainingCents)

	cached, err := mr.Get("balance:test")
	require.NoError(t, err)
	assert.Equal(t, "3000", cached)
}

func TestTryDebitUnknownAccount(t *testing.T) {
	repo, _ := newTestRepo(t, nil)

	_, err := repo.TryDebit(context.Background(), "balance:ghost", 1000)
	assert.ErrorIs(t, err, errs.ErrAccountNotFound)
}

func TestTryDebitNegativeStoredBalance(t *testing.T) {
	repo, mr := newTestRepo(t, nil)
	require.NoError(t, mr.Set("balance:test", "-5"))

	_, err := repo.TryDebit(context.Background(), "balance:test", 1000)
	assert.ErrorIs(t, err, errs.ErrCorruptBalance)
}

func TestResetIsIdempotent(t *testing.T) {
	snaps := &stubSnapshots{}
	repo, _ := newTestRepo(t, snaps)

	for i := 0; i < 2; i++ {
		require.NoError(t, repo.Reset(context.Background(), "balance:test", 10000))
		cents, err := repo.Balance(context.Background(), "balance:test")
		require.NoError(t, err)
		assert.Equal(t, int64(10000), cents)
	}
	assert.Equal(t, int64(10000), snaps.upserts["balance:test"])
}

// Ten concurrent 30-unit debits against a 100-unit balance: exactly three may
// succeed, and the observed (initial, remaining) pairs must chain without
// gaps or duplicates.
func TestTryDebitSerializableUnderConcurrency(t *testing.T) {
	repo, mr := newTestRepo(t, nil)
	require.NoError(t, mr.Set("balance:test", "10000"))

	const attempts = 10
	results := make([]*model.DebitResult, attempts)
	debitErrs := make([]error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], debitErrs[i] = repo.TryDebit(context.Background(), "balance:test", 3000)
		}(i)
	}
	wg.Wait()

	for i := 0; i < attempts; i++ {
		require.NoError(t, debitErrs[i])
	}

	var authorizedInitials []int64
	authorized := 0
	for _, res := range results {
		assert.Equal(t, res.InitialCents-res.RemainingCents, res.ChargedCents)
		if res.Authorized {
			authorized++
			assert.Equal(t, int64(3000), res.ChargedCents)
			authorizedInitials = append(authorizedInitials, res.InitialCents)
		} else {
			assert.Equal(t, res.InitialCents, res.RemainingCents)
			assert.Equal(t, int64(0), res.ChargedCents)
		}
	}

	assert.Equal(t, 3, authorized)

	// Each authorized debit must have started from a distinct link of the
	// 10000 -> 7000 -> 4000 chain.
	sort.Slice(authorizedInitials, func(i, j int) bool { return authorizedInitials[i] > authorizedInitials[j] })
	assert.Equal(t, []int64{10000, 7000, 4000}, authorizedInitials)

	res, err := repo.TryDebit(context.Background(), "balance:test", 2000)
	require.NoError(t, err)
	assert.False(t, res.Authorized)
	assert.Equal(t, int64(1000), res.InitialCents)
	assert.Equal(t, int64(1000), res.RemainingCents)
}

func TestClassifyStoreErr(t *testing.T) {
	assert.ErrorIs(t, classifyStoreErr(context.DeadlineExceeded), errs.ErrIndeterminate)
	assert.ErrorIs(t, classifyStoreErr(context.Canceled), errs.ErrIndeterminate)
	assert.ErrorIs(t, classifyStoreErr(errors.New("connection refused")), errs.ErrStoreUnavailable)
}
