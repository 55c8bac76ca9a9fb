package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"viralclip/internal/config"
	"viralclip/internal/media"
	"viralclip/internal/model"
	"viralclip/internal/pgmq"
	"viralclip/internal/pubsub"
	"viralclip/internal/repository"

	"github.com/rs/zerolog"
)

// Queue is the subset of the pgmq client the worker needs.
type Queue interface {
	ReadWithPoll(ctx context.Context, queue string, visibilitySec, maxMessages, timeoutSec int) ([]*pgmq.Message, error)
	Send(ctx context.Context, queue string, payload []byte) (int64, error)
	Delete(ctx context.Context, queue string, msgIDs []int64) error
}

// Processor renders a clip and uploads the result.
type Processor interface {
	Process(ctx context.Context, req media.Request) (*media.Result, error)
}

// EventPublisher receives clip.rendered notifications.
type EventPublisher interface {
	PublishClipEvent(ctx context.Context, ev pubsub.ClipEvent) (string, error)
}

// Settings tunes polling and retries.
type Settings struct {
	QueueName      string
	DeadLetterName string
	PollTimeoutSec int
	PollMaxMsg     int
	VisibilitySec  int
	MaxRetries     int
	BackoffInitial time.Duration
	BackoffMax     time.Duration
}

// SettingsFromConfig maps RENDER_* settings. Messages stay invisible for
// long enough to cover every retry of the slowest media step.
func SettingsFromConfig(cfg *config.Config) Settings {
	retries := max(1, cfg.RenderMaxRetries)
	return Settings{
		QueueName:      cfg.RenderQueueName,
		DeadLetterName: cfg.RenderDeadLetterQueueName,
		PollTimeoutSec: cfg.RenderPollTimeoutSec,
		PollMaxMsg:     max(1, cfg.RenderPollMaxMsg),
		VisibilitySec:  (cfg.MediaTimeoutSec*4 + cfg.RenderBackoffMaxSec) * retries,
		MaxRetries:     retries,
		BackoffInitial: time.Duration(cfg.RenderBackoffInitialSec) * time.Second,
		BackoffMax:     time.Duration(cfg.RenderBackoffMaxSec) * time.Second,
	}
}

// Worker consumes render jobs from the queue.
type Worker struct {
	queue    Queue
	clips    repository.ClipRepository
	renders  repository.RenderRepository
	dlq      repository.DLQRepository
	media    Processor
	events   EventPublisher
	settings Settings
	logger   zerolog.Logger

	sleep func(ctx context.Context, d time.Duration) error
}

// Deps groups the worker's collaborators.
type Deps struct {
	Queue   Queue
	Clips   repository.ClipRepository
	Renders repository.RenderRepository
	DLQ     repository.DLQRepository
	Media   Processor
	Events  EventPublisher
}

func NewWorker(deps Deps, settings Settings, logger zerolog.Logger) *Worker {
	return &Worker{
		queue:    deps.Queue,
		clips:    deps.Clips,
		renders:  deps.Renders,
		dlq:      deps.DLQ,
		media:    deps.Media,
		events:   deps.Events,
		settings: settings,
		logger:   logger.With().Str("service", "RenderWorker").Logger(),
		sleep:    sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Run polls the render queue until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	queue := w.settings.QueueName
	w.logger.Info().Str("queue", queue).Msg("Starting render orchestrator")
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Shutting down render orchestrator")
			return nil
		default:
		}
		msgs, err := w.queue.ReadWithPoll(ctx, queue, w.settings.VisibilitySec, w.settings.PollMaxMsg, w.settings.PollTimeoutSec)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.logger.Error().Err(err).Msg("Error reading render queue")
			_ = w.sleep(ctx, time.Second)
			continue
		}
		for _, msg := range msgs {
			w.HandleMessage(ctx, msg)
		}
	}
}

// HandleMessage processes one job. The message is always deleted except when
// the worker is shutting down mid-job, in which case it becomes visible again
// after the visibility timeout.
func (w *Worker) HandleMessage(ctx context.Context, msg *pgmq.Message) {
	log := w.logger.With().Int64("msg_id", msg.ID).Logger()
	log.Info().Msgf("Received render job: %s", string(msg.Data))

	var job model.RenderJob
	if err := json.Unmarshal(msg.Data, &job); err != nil || job.RenderID == 0 {
		log.Error().Err(err).Msg("Failed to unmarshal render payload; deleting message")
		w.ack(ctx, msg)
		return
	}
	log = log.With().Int64("render_id", job.RenderID).Int64("clip_id", job.ClipID).Logger()

	clip, err := w.clips.GetClipByID(ctx, job.ClipID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load clip; leaving message for retry")
		return
	}
	if clip == nil || clip.UserID != job.UserID {
		w.fail(ctx, msg, job, errors.New("clip not found"))
		return
	}
	if err := w.renders.MarkProcessing(ctx, job.RenderID); err != nil {
		log.Error().Err(err).Msg("Failed to mark render processing; leaving message for retry")
		return
	}

	req := media.Request{
		VideoURL:      clip.VideoURL,
		StartTime:     clip.StartTime,
		EndTime:       clip.EndTime,
		Title:         clip.ClipTitle,
		Description:   clip.ClipDescription,
		UserID:        clip.UserID,
		ClipID:        clip.ID,
		WithSubtitles: job.WithSubtitles,
	}

	backoff := w.settings.BackoffInitial
	var res *media.Result
	var procErr error
	for attempt := 1; attempt <= w.settings.MaxRetries; attempt++ {
		start := time.Now()
		res, procErr = w.media.Process(ctx, req)
		if procErr == nil {
			log.Info().Str("duration", time.Since(start).String()).Msg("Render succeeded")
			break
		}
		if ctx.Err() != nil {
			log.Warn().Err(procErr).Msg("Shutdown during render; message will be redelivered")
			return
		}
		if errors.Is(procErr, media.ErrUnsupportedSource) {
			break
		}
		log.Error().Err(procErr).Int("attempt", attempt).Msg("Render failed, retrying")
		if attempt == w.settings.MaxRetries {
			break
		}
		if err := w.sleep(ctx, backoff); err != nil {
			return
		}
		backoff *= 2
		if backoff > w.settings.BackoffMax {
			backoff = w.settings.BackoffMax
		}
	}
	if procErr != nil {
		log.Warn().Int("attempts", w.settings.MaxRetries).Err(procErr).Msg("Render failed permanently; moving job to DLQ")
		w.fail(ctx, msg, job, procErr)
		return
	}

	if err := w.renders.MarkComplete(ctx, job.RenderID, res.URL, res.Key); err != nil {
		log.Error().Err(err).Msg("Failed to record completed render")
	}
	if w.events != nil {
		ev := pubsub.ClipEvent{Type: pubsub.EventClipRendered, UserID: job.UserID, ClipID: job.ClipID, RenderID: job.RenderID, URL: res.URL}
		if _, err := w.events.PublishClipEvent(ctx, ev); err != nil {
			log.Warn().Err(err).Msg("Failed to publish clip.rendered event")
		}
	}
	w.ack(ctx, msg)
}

func (w *Worker) fail(ctx context.Context, msg *pgmq.Message, job model.RenderJob, cause error) {
	log := w.logger.With().Int64("msg_id", msg.ID).Int64("render_id", job.RenderID).Logger()
	reason := cause.Error()
	if err := w.renders.MarkFailed(ctx, job.RenderID, reason); err != nil {
		log.Error().Err(err).Msg("Failed to mark render as failed")
	}
	if w.dlq != nil {
		dl := &model.DeadLetterMessage{
			QueueName: w.settings.QueueName,
			MessageID: strconv.FormatInt(msg.ID, 10),
			Payload:   string(msg.Data),
			Error:     &reason,
		}
		if err := w.dlq.Create(ctx, dl); err != nil {
			log.Error().Err(err).Msg("Failed to record dead letter")
		}
	}
	if w.settings.DeadLetterName != "" {
		if _, err := w.queue.Send(ctx, w.settings.DeadLetterName, msg.Data); err != nil {
			log.Error().Err(err).Str("dlq", w.settings.DeadLetterName).Msg("Failed to send message to dead-letter queue")
		}
	}
	w.ack(ctx, msg)
}

func (w *Worker) ack(ctx context.Context, msg *pgmq.Message) {
	if err := w.queue.Delete(ctx, w.settings.QueueName, []int64{msg.ID}); err != nil {
		w.logger.Error().Err(fmt.Errorf("message %d: %w", msg.ID, err)).Msg("Error deleting render message")
	}
}
