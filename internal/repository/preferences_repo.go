package repository

import (
	"context"
	"errors"
	"fmt"

	"viralclip/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PreferencesRepository stores per-user creation defaults.
type PreferencesRepository interface {
	// GetPreferences returns nil, nil when the user never saved preferences.
	GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error)
	// UpsertPreferences applies a partial update. On first write an omitted
	// SubtitlesEnabled is stored as false.
	UpsertPreferences(ctx context.Context, userID string, upd model.PreferencesUpdate) (*model.UserPreferences, error)
}

type preferencesRepo struct {
	pool *pgxpool.Pool
}

// NewPreferencesRepo creates a new PreferencesRepository.
func NewPreferencesRepo(pool *pgxpool.Pool) PreferencesRepository {
	return &preferencesRepo{pool: pool}
}

func (r *preferencesRepo) GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error) {
	const q = `
        SELECT user_id, default_artist_name, default_theme, subtitles_enabled, created_at, updated_at
        FROM user_preferences
        WHERE user_id = $1
    `
	var p model.UserPreferences
	err := r.pool.QueryRow(ctx, q, userID).Scan(&p.UserID, &p.DefaultArtistName, &p.DefaultTheme, &p.SubtitlesEnabled, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch preferences for user %s: %w", userID, err)
	}
	return &p, nil
}

func (r *preferencesRepo) UpsertPreferences(ctx context.Context, userID string, upd model.PreferencesUpdate) (*model.UserPreferences, error) {
	const q = `
        INSERT INTO user_preferences (user_id, default_artist_name, default_theme, subtitles_enabled)
        VALUES ($1, $2, $3, COALESCE($4::boolean, FALSE))
        ON CONFLICT (user_id) DO UPDATE
            SET default_artist_name = COALESCE($2, user_preferences.default_artist_name),
                default_theme = COALESCE($3, user_preferences.default_theme),
                subtitles_enabled = COALESCE($4::boolean, user_preferences.subtitles_enabled),
                updated_at = NOW()
        RETURNING user_id, default_artist_name, default_theme, subtitles_enabled, created_at, updated_at
    `
	var p model.UserPreferences
	err := r.pool.QueryRow(ctx, q, userID, upd.DefaultArtistName, upd.DefaultTheme, upd.SubtitlesEnabled).
		Scan(&p.UserID, &p.DefaultArtistName, &p.DefaultTheme, &p.SubtitlesEnabled, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("upsert preferences for user %s: %w", userID, err)
	}
	return &p, nil
}
