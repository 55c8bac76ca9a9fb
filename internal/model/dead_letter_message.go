package model

import "time"

// DeadLetterMessage is a queue job that exhausted its retries.
type DeadLetterMessage struct {
	ID        int64     `db:"id"`
	QueueName string    `db:"queue_name"`
	MessageID string    `db:"message_id"`
	Payload   string    `db:"payload"` // Should be a JSON string
	Error     *string   `db:"error"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
