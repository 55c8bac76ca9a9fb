package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"viralclip/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ClipRepository persists generated clips. Clips are insert-only.
type ClipRepository interface {
	CreateClip(ctx context.Context, c *model.Clip) error
	// ListClipsByUser returns the user's clips newest first, each with its
	// most recent render attached when one exists.
	ListClipsByUser(ctx context.Context, userID string) ([]model.Clip, error)
	// GetClipByID returns nil, nil when the clip does not exist.
	GetClipByID(ctx context.Context, id int64) (*model.Clip, error)
}

type clipRepo struct {
	pool *pgxpool.Pool
}

// NewClipRepo creates a new ClipRepository.
func NewClipRepo(pool *pgxpool.Pool) ClipRepository {
	return &clipRepo{pool: pool}
}

const clipColumns = `c.id, c.user_id, c.video_url, c.video_source, c.artist_name, c.scene_theme, c.keywords,
        c.clip_title, c.clip_description, c.clip_url, c.start_time, c.end_time, c.duration,
        c.has_subtitles, c.viral_score, c.persona_analysis, c.theme_analysis, c.sentiment_analysis,
        c.created_at, c.updated_at`

// encodeAnalysis stores structured analysis as JSON text; nil stays NULL.
func encodeAnalysis(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	s := string(b)
	return &s, nil
}

func decodeAnalysis[T any](raw *string) (*T, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal([]byte(*raw), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *clipRepo) CreateClip(ctx context.Context, c *model.Clip) error {
	var persona, theme, sentiment *string
	var err error
	if c.PersonaAnalysis != nil {
		if persona, err = encodeAnalysis(c.PersonaAnalysis); err != nil {
			return fmt.Errorf("encoding persona analysis: %w", err)
		}
	}
	if c.ThemeAnalysis != nil {
		if theme, err = encodeAnalysis(c.ThemeAnalysis); err != nil {
			return fmt.Errorf("encoding theme analysis: %w", err)
		}
	}
	if c.SentimentAnalysis != nil {
		if sentiment, err = encodeAnalysis(c.SentimentAnalysis); err != nil {
			return fmt.Errorf("encoding sentiment analysis: %w", err)
		}
	}

	const q = `
        INSERT INTO clips (
            user_id, video_url, video_source, artist_name, scene_theme, keywords,
            clip_title, clip_description, clip_url, start_time, end_time, duration,
            has_subtitles, viral_score, persona_analysis, theme_analysis, sentiment_analysis
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
        RETURNING id, created_at, updated_at
    `
	err = r.pool.QueryRow(ctx, q,
		c.UserID, c.VideoURL, c.VideoSource, c.ArtistName, c.SceneTheme, c.Keywords,
		c.ClipTitle, c.ClipDescription, c.ClipURL, c.StartTime, c.EndTime, c.Duration,
		c.HasSubtitles, c.ViralScore, persona, theme, sentiment,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting clip for user %s: %w", c.UserID, err)
	}
	return nil
}

func (r *clipRepo) ListClipsByUser(ctx context.Context, userID string) ([]model.Clip, error) {
	q := `
        SELECT ` + clipColumns + `,
               lr.id, lr.status, lr.with_subtitles, lr.url, lr.storage_key, lr.error, lr.created_at, lr.updated_at
        FROM clips c
        LEFT JOIN LATERAL (
            SELECT id, status, with_subtitles, url, storage_key, error, created_at, updated_at
            FROM clip_renders
            WHERE clip_id = c.id
            ORDER BY created_at DESC, id DESC
            LIMIT 1
        ) lr ON TRUE
        WHERE c.user_id = $1
        ORDER BY c.created_at DESC, c.id DESC
    `
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("listing clips for user %s: %w", userID, err)
	}
	defer rows.Close()

	clips := []model.Clip{}
	for rows.Next() {
		var c model.Clip
		var persona, theme, sentiment *string
		var (
			renderID        *int64
			renderStatus    *string
			renderSubtitles *bool
			renderURL       *string
			renderKey       *string
			renderErr       *string
			renderCreated   *time.Time
			renderUpdated   *time.Time
		)
		if err := rows.Scan(
			&c.ID, &c.UserID, &c.VideoURL, &c.VideoSource, &c.ArtistName, &c.SceneTheme, &c.Keywords,
			&c.ClipTitle, &c.ClipDescription, &c.ClipURL, &c.StartTime, &c.EndTime, &c.Duration,
			&c.HasSubtitles, &c.ViralScore, &persona, &theme, &sentiment,
			&c.CreatedAt, &c.UpdatedAt,
			&renderID, &renderStatus, &renderSubtitles, &renderURL, &renderKey, &renderErr, &renderCreated, &renderUpdated,
		); err != nil {
			return nil, fmt.Errorf("scanning clip row for user %s: %w", userID, err)
		}
		if err := attachAnalysis(&c, persona, theme, sentiment); err != nil {
			return nil, err
		}
		if renderID != nil {
			c.LatestRender = &model.ClipRender{
				ID:            *renderID,
				ClipID:        c.ID,
				UserID:        c.UserID,
				Status:        model.RenderStatus(*renderStatus),
				WithSubtitles: *renderSubtitles,
				URL:           renderURL,
				StorageKey:    renderKey,
				Error:         renderErr,
				CreatedAt:     *renderCreated,
				UpdatedAt:     *renderUpdated,
			}
		}
		clips = append(clips, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating clips for user %s: %w", userID, err)
	}
	return clips, nil
}

func (r *clipRepo) GetClipByID(ctx context.Context, id int64) (*model.Clip, error) {
	q := `SELECT ` + clipColumns + ` FROM clips c WHERE c.id = $1`
	var c model.Clip
	var persona, theme, sentiment *string
	err := r.pool.QueryRow(ctx, q, id).Scan(
		&c.ID, &c.UserID, &c.VideoURL, &c.VideoSource, &c.ArtistName, &c.SceneTheme, &c.Keywords,
		&c.ClipTitle, &c.ClipDescription, &c.ClipURL, &c.StartTime, &c.EndTime, &c.Duration,
		&c.HasSubtitles, &c.ViralScore, &persona, &theme, &sentiment,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch clip %d: %w", id, err)
	}
	if err := attachAnalysis(&c, persona, theme, sentiment); err != nil {
		return nil, err
	}
	return &c, nil
}

func attachAnalysis(c *model.Clip, persona, theme, sentiment *string) error {
	var err error
	if c.PersonaAnalysis, err = decodeAnalysis[model.PersonaAnalysis](persona); err != nil {
		return fmt.Errorf("decoding persona analysis of clip %d: %w", c.ID, err)
	}
	if c.ThemeAnalysis, err = decodeAnalysis[model.SceneAnalysis](theme); err != nil {
		return fmt.Errorf("decoding theme analysis of clip %d: %w", c.ID, err)
	}
	if c.SentimentAnalysis, err = decodeAnalysis[model.SentimentAnalysis](sentiment); err != nil {
		return fmt.Errorf("decoding sentiment analysis of clip %d: %w", c.ID, err)
	}
	return nil
}
