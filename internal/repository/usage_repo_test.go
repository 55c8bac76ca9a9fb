package repository

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"viralclip/internal/model"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testPool connects to TEST_DATABASE_URL and applies the schema.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func newTestUser(t *testing.T, pool *pgxpool.Pool) string {
	t.Helper()
	id := fmt.Sprintf("test-%d", time.Now().UnixNano())
	require.NoError(t, NewUserRepo(pool).UpsertUser(context.Background(), &model.User{UserID: id, Role: model.RoleUser}))
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), "DELETE FROM users WHERE user_id = $1", id)
	})
	return id
}

func TestConsumeDailyQuotaStopsAtLimit(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	userID := newTestUser(t, pool)
	repo := NewUsageRepo(pool)

	for i := 1; i <= 15; i++ {
		n, err := repo.ConsumeDailyQuota(ctx, userID, "2025-01-15", 15)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	_, err := repo.ConsumeDailyQuota(ctx, userID, "2025-01-15", 15)
	assert.ErrorIs(t, err, ErrDailyLimitReached)

	n, err := repo.GetDailyUsage(ctx, userID, "2025-01-15")
	require.NoError(t, err)
	assert.Equal(t, 15, n)

	n, err = repo.GetDailyUsage(ctx, userID, "2025-01-16")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestConsumeDailyQuotaConcurrentLastSlot(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	userID := newTestUser(t, pool)
	repo := NewUsageRepo(pool)

	for range 14 {
		_, err := repo.ConsumeDailyQuota(ctx, userID, "2025-02-01", 15)
		require.NoError(t, err)
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	granted := 0
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.ConsumeDailyQuota(ctx, userID, "2025-02-01", 15); err == nil {
				mu.Lock()
				granted++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, granted)
}

func TestUpsertUserProvisionsLiteTier(t *testing.T) {
	pool := testPool(t)
	ctx := context.Background()
	userID := newTestUser(t, pool)

	tier, err := NewTierRepo(pool).GetTier(ctx, userID)
	require.NoError(t, err)
	require.NotNil(t, tier)
	assert.Equal(t, model.TierLite, tier.Tier)
}
