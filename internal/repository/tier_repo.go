package repository

import (
	"context"
	"errors"
	"fmt"

	"viralclip/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TierRepository reads and writes the per-user subscription tier.
type TierRepository interface {
	// GetTier returns nil, nil when the user has no tier row.
	GetTier(ctx context.Context, userID string) (*model.UserTier, error)
	SetTier(ctx context.Context, userID string, tier model.Tier) (*model.UserTier, error)
}

type tierRepo struct {
	pool *pgxpool.Pool
}

// NewTierRepo creates a new TierRepository.
func NewTierRepo(pool *pgxpool.Pool) TierRepository {
	return &tierRepo{pool: pool}
}

func (r *tierRepo) GetTier(ctx context.Context, userID string) (*model.UserTier, error) {
	const q = `
        SELECT user_id, tier, created_at, updated_at
        FROM user_tiers
        WHERE user_id = $1
    `
	var t model.UserTier
	err := r.pool.QueryRow(ctx, q, userID).Scan(&t.UserID, &t.Tier, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch tier for user %s: %w", userID, err)
	}
	return &t, nil
}

// SetTier upserts the user's tier row.
func (r *tierRepo) SetTier(ctx context.Context, userID string, tier model.Tier) (*model.UserTier, error) {
	const q = `
        INSERT INTO user_tiers (user_id, tier)
        VALUES ($1, $2)
        ON CONFLICT (user_id) DO UPDATE
            SET tier = EXCLUDED.tier,
                updated_at = NOW()
        RETURNING user_id, tier, created_at, updated_at
    `
	var t model.UserTier
	if err := r.pool.QueryRow(ctx, q, userID, tier).Scan(&t.UserID, &t.Tier, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, fmt.Errorf("set tier %s for user %s: %w", tier, userID, err)
	}
	return &t, nil
}
