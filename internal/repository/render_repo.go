package repository

import (
	"context"
	"errors"
	"fmt"

	"viralclip/internal/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RenderRepository tracks media render attempts for clips.
type RenderRepository interface {
	CreateRender(ctx context.Context, clipID int64, userID string, withSubtitles bool) (*model.ClipRender, error)
	GetRender(ctx context.Context, id int64) (*model.ClipRender, error)
	MarkProcessing(ctx context.Context, id int64) error
	MarkComplete(ctx context.Context, id int64, url, storageKey string) error
	MarkFailed(ctx context.Context, id int64, reason string) error
}

type renderRepo struct {
	pool *pgxpool.Pool
}

// NewRenderRepo creates a new RenderRepository.
func NewRenderRepo(pool *pgxpool.Pool) RenderRepository {
	return &renderRepo{pool: pool}
}

const renderColumns = `id, clip_id, user_id, status, with_subtitles, url, storage_key, error, created_at, updated_at`

func scanRender(row pgx.Row, cr *model.ClipRender) error {
	return row.Scan(&cr.ID, &cr.ClipID, &cr.UserID, &cr.Status, &cr.WithSubtitles, &cr.URL, &cr.StorageKey, &cr.Error, &cr.CreatedAt, &cr.UpdatedAt)
}

func (r *renderRepo) CreateRender(ctx context.Context, clipID int64, userID string, withSubtitles bool) (*model.ClipRender, error) {
	q := `
        INSERT INTO clip_renders (clip_id, user_id, status, with_subtitles)
        VALUES ($1, $2, 'queued', $3)
        RETURNING ` + renderColumns
	var cr model.ClipRender
	if err := scanRender(r.pool.QueryRow(ctx, q, clipID, userID, withSubtitles), &cr); err != nil {
		return nil, fmt.Errorf("creating render for clip %d: %w", clipID, err)
	}
	return &cr, nil
}

// GetRender returns nil, nil when the render does not exist.
func (r *renderRepo) GetRender(ctx context.Context, id int64) (*model.ClipRender, error) {
	q := `SELECT ` + renderColumns + ` FROM clip_renders WHERE id = $1`
	var cr model.ClipRender
	err := scanRender(r.pool.QueryRow(ctx, q, id), &cr)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch render %d: %w", id, err)
	}
	return &cr, nil
}

func (r *renderRepo) MarkProcessing(ctx context.Context, id int64) error {
	const q = `UPDATE clip_renders SET status = 'processing', error = NULL, updated_at = NOW() WHERE id = $1`
	if _, err := r.pool.Exec(ctx, q, id); err != nil {
		return fmt.Errorf("marking render %d processing: %w", id, err)
	}
	return nil
}

func (r *renderRepo) MarkComplete(ctx context.Context, id int64, url, storageKey string) error {
	const q = `
        UPDATE clip_renders
        SET status = 'complete', url = $2, storage_key = $3, error = NULL, updated_at = NOW()
        WHERE id = $1
    `
	if _, err := r.pool.Exec(ctx, q, id, url, storageKey); err != nil {
		return fmt.Errorf("marking render %d complete: %w", id, err)
	}
	return nil
}

func (r *renderRepo) MarkFailed(ctx context.Context, id int64, reason string) error {
	const q = `UPDATE clip_renders SET status = 'failed', error = $2, updated_at = NOW() WHERE id = $1`
	if _, err := r.pool.Exec(ctx, q, id, reason); err != nil {
		return fmt.Errorf("marking render %d failed: %w", id, err)
	}
	return nil
}
