package repository

import (
	"context"
	"database/sql"
	"fmt"

	"viralclip/internal/model"
)

type DLQRepository interface {
	Create(ctx context.Context, message *model.DeadLetterMessage) error
	ListUnprocessed(ctx context.Context, queueName string, limit int) ([]model.DeadLetterMessage, error)
}

type dlqRepository struct {
	db *sql.DB
}

func NewDLQRepository(db *sql.DB) DLQRepository {
	return &dlqRepository{db: db}
}

func (r *dlqRepository) Create(ctx context.Context, message *model.DeadLetterMessage) error {
	if message.Status == "" {
		message.Status = "unprocessed"
	}
	query := `
        INSERT INTO dead_letter_messages (queue_name, message_id, payload, error, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at
    `
	err := r.db.QueryRowContext(
		ctx,
		query,
		message.QueueName,
		message.MessageID,
		message.Payload,
		message.Error,
		message.Status,
	).Scan(&message.ID, &message.CreatedAt, &message.UpdatedAt)
	if err != nil {
		return fmt.Errorf("recording dead letter %s from %s: %w", message.MessageID, message.QueueName, err)
	}
	return nil
}

func (r *dlqRepository) ListUnprocessed(ctx context.Context, queueName string, limit int) ([]model.DeadLetterMessage, error) {
	query := `
        SELECT id, queue_name, message_id, payload, error, status, created_at, updated_at
        FROM dead_letter_messages
        WHERE queue_name = $1 AND status = 'unprocessed'
        ORDER BY created_at DESC
        LIMIT $2
    `
	rows, err := r.db.QueryContext(ctx, query, queueName, limit)
	if err != nil {
		return nil, fmt.Errorf("listing dead letters for %s: %w", queueName, err)
	}
	defer rows.Close()

	var out []model.DeadLetterMessage
	for rows.Next() {
		var m model.DeadLetterMessage
		if err := rows.Scan(&m.ID, &m.QueueName, &m.MessageID, &m.Payload, &m.Error, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning dead letter: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
