package service

import (
	"context"
	"encoding/json"
	"fmt"

	"viralclip/internal/model"
	"viralclip/internal/pgmq"
)

// RenderQueue hands render jobs to the background worker.
type RenderQueue interface {
	Enqueue(ctx context.Context, job model.RenderJob) error
}

type pgmqRenderQueue struct {
	client *pgmq.Client
	queue  string
}

// NewRenderQueue returns a RenderQueue backed by the named pgmq queue.
func NewRenderQueue(client *pgmq.Client, queue string) RenderQueue {
	return &pgmqRenderQueue{client: client, queue: queue}
}

func (q *pgmqRenderQueue) Enqueue(ctx context.Context, job model.RenderJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("marshal render job %d: %w", job.RenderID, err)
	}
	if _, err := q.client.Send(ctx, q.queue, payload); err != nil {
		return fmt.Errorf("enqueue render job %d: %w", job.RenderID, err)
	}
	return nil
}
