package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDailyLimitReached is returned when a user has no clips left for the day.
var ErrDailyLimitReached = errors.New("daily_limit_reached")

// UsageRepository tracks per-day clip generation counters.
type UsageRepository interface {
	// ConsumeDailyQuota atomically increments the user's counter for date
	// unless it already reached limit, returning the new count. Returns
	// ErrDailyLimitReached when no slot is left.
	ConsumeDailyQuota(ctx context.Context, userID, date string, limit int) (int, error)
	// GetDailyUsage returns the counter for date, 0 when no row exists.
	GetDailyUsage(ctx context.Context, userID, date string) (int, error)
}

type usageRepo struct {
	pool *pgxpool.Pool
}

// NewUsageRepo creates a new UsageRepository.
func NewUsageRepo(pool *pgxpool.Pool) UsageRepository {
	return &usageRepo{pool: pool}
}

// ConsumeDailyQuota relies on the conditional upsert so two concurrent
// requests can never both take the last slot.
func (r *usageRepo) ConsumeDailyQuota(ctx context.Context, userID, date string, limit int) (int, error) {
	const q = `
		INSERT INTO daily_usage (user_id, date, clips_generated)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, date) DO UPDATE
		    SET clips_generated = daily_usage.clips_generated + 1,
		        updated_at = NOW()
		    WHERE daily_usage.clips_generated < $3
		RETURNING clips_generated
	`
	if limit <= 0 {
		return 0, ErrDailyLimitReached
	}
	var n int
	err := r.pool.QueryRow(ctx, q, userID, date, limit).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrDailyLimitReached
	}
	if err != nil {
		return 0, fmt.Errorf("consuming daily quota for user %s on %s: %w", userID, date, err)
	}
	return n, nil
}

// GetDailyUsage returns the number of clips generated by the user on date.
func (r *usageRepo) GetDailyUsage(ctx context.Context, userID, date string) (int, error) {
	const q = `SELECT clips_generated FROM daily_usage WHERE user_id = $1 AND date = $2`
	var n int
	err := r.pool.QueryRow(ctx, q, userID, date).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("fetching daily usage for user %s on %s: %w", userID, date, err)
	}
	return n, nil
}
