package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"

	"viralclip/internal/model"
	"viralclip/internal/pubsub"
	"viralclip/internal/repository"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// LiteDailyLimit is the number of clips a lite user may generate per UTC day.
const LiteDailyLimit = 15

// maxStartOffsetSec bounds the pseudo-random clip start.
const maxStartOffsetSec = 60

// GenerateClipInput is a validated clip-generation request.
type GenerateClipInput struct {
	VideoURL    string
	VideoSource model.VideoSource
	ArtistName  string
	SceneTheme  string
	Keywords    *string
}

// UsageSummary reports today's generation count against the lite limit.
type UsageSummary struct {
	ClipsGenerated int `json:"clipsGenerated"`
	DailyLimit     int `json:"dailyLimit"`
	Remaining      int `json:"remaining"`
}

// ClipEventPublisher receives clip lifecycle notifications.
type ClipEventPublisher interface {
	PublishClipEvent(ctx context.Context, ev pubsub.ClipEvent) (string, error)
}

type ClipService interface {
	GenerateClip(ctx context.Context, userID string, in GenerateClipInput) (*model.Clip, error)
	GetClips(ctx context.Context, userID string) ([]model.Clip, error)
	GetDailyUsage(ctx context.Context, userID string) (*UsageSummary, error)
	RequestRender(ctx context.Context, userID string, clipID int64, withSubtitles *bool) (*model.ClipRender, error)
}

type clipService struct {
	tiers    repository.TierRepository
	usage    repository.UsageRepository
	clips    repository.ClipRepository
	renders  repository.RenderRepository
	prefs    repository.PreferencesRepository
	analyzer *Analyzer
	queue    RenderQueue
	events   ClipEventPublisher
	logger   zerolog.Logger

	now      func() time.Time
	startSec func() int
}

// ClipServiceDeps groups the collaborators of the clip service.
type ClipServiceDeps struct {
	Tiers    repository.TierRepository
	Usage    repository.UsageRepository
	Clips    repository.ClipRepository
	Renders  repository.RenderRepository
	Prefs    repository.PreferencesRepository
	Analyzer *Analyzer
	Queue    RenderQueue
	Events   ClipEventPublisher
}

// NewClipService creates a new ClipService with a scoped logger.
func NewClipService(deps ClipServiceDeps, logger zerolog.Logger) ClipService {
	return &clipService{
		tiers:    deps.Tiers,
		usage:    deps.Usage,
		clips:    deps.Clips,
		renders:  deps.Renders,
		prefs:    deps.Prefs,
		analyzer: deps.Analyzer,
		queue:    deps.Queue,
		events:   deps.Events,
		logger:   logger.With().Str("service", "ClipService").Logger(),
		now:      time.Now,
		startSec: func() int { return rand.IntN(maxStartOffsetSec) },
	}
}

// DateKey returns the UTC calendar day of t as YYYY-MM-DD.
func DateKey(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// ViralScore maps a sentiment viral potential to a 0-100 score.
func ViralScore(viralPotential float64) int {
	if math.IsNaN(viralPotential) {
		return 0
	}
	return int(math.Min(100, math.Max(0, math.Floor(viralPotential*1.2))))
}

// Remaining is the number of clips left today, never negative.
func Remaining(limit, generated int) int {
	return max(0, limit-generated)
}

// maxClipDurationSec bounds a suggested duration; longer suggestions are
// treated as absent.
const maxClipDurationSec = 3600

// clipDuration rounds the suggested duration to whole seconds, falling back
// to the default when the suggestion is absent, not positive or above
// maxClipDurationSec.
func clipDuration(optimal float64) int {
	if math.IsNaN(optimal) || optimal > maxClipDurationSec {
		return defaultOptimalDuration
	}
	d := math.Round(optimal)
	if d <= 0 {
		return defaultOptimalDuration
	}
	return int(d)
}

// GenerateClip runs the analysis prompts and persists a new clip. For lite
// users the daily slot is consumed before any AI work, so a later failure
// still counts against the quota.
func (s *clipService) GenerateClip(ctx context.Context, userID string, in GenerateClipInput) (*model.Clip, error) {
	in.Keywords = normalizeKeywords(in.Keywords)

	tier, err := s.tiers.GetTier(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolving tier for user %s: %w", userID, err)
	}
	if tier == nil {
		s.logger.Error().Str("user_id", userID).Msg("Authenticated user has no tier row")
		return nil, fmt.Errorf("user %s: %w", userID, ErrTierNotFound)
	}

	if tier.Tier == model.TierLite {
		date := DateKey(s.now())
		n, err := s.usage.ConsumeDailyQuota(ctx, userID, date, LiteDailyLimit)
		if errors.Is(err, repository.ErrDailyLimitReached) {
			s.logger.Info().Str("user_id", userID).Str("date", date).Msg("Daily clip quota exhausted")
			return nil, &QuotaExceededError{Limit: LiteDailyLimit}
		}
		if err != nil {
			return nil, err
		}
		s.logger.Debug().Str("user_id", userID).Str("date", date).Int("clips_generated", n).Msg("Consumed daily quota slot")
	}

	var (
		persona   model.PersonaAnalysis
		scene     model.SceneAnalysis
		sentiment model.SentimentAnalysis
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		persona = s.analyzer.AnalyzePersona(gctx, in.ArtistName, in.SceneTheme)
		return ctx.Err()
	})
	g.Go(func() error {
		scene = s.analyzer.DetectScene(gctx, in.SceneTheme, in.ArtistName)
		return ctx.Err()
	})
	g.Go(func() error {
		sentiment = s.analyzer.AnalyzeSentiment(gctx, in.ArtistName, in.SceneTheme)
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("analysing clip for user %s: %w", userID, err)
	}

	keywords := ""
	if in.Keywords != nil {
		keywords = *in.Keywords
	}
	title := s.analyzer.GenerateTitle(ctx, in.ArtistName, in.SceneTheme, keywords)
	description := s.analyzer.GenerateDescription(ctx, in.ArtistName, in.SceneTheme, title)

	start := s.startSec()
	duration := clipDuration(scene.OptimalDuration)

	clip := &model.Clip{
		UserID:            userID,
		VideoURL:          in.VideoURL,
		VideoSource:       in.VideoSource,
		ArtistName:        in.ArtistName,
		SceneTheme:        in.SceneTheme,
		Keywords:          in.Keywords,
		ClipTitle:         title,
		ClipDescription:   description,
		StartTime:         start,
		EndTime:           start + duration,
		Duration:          duration,
		HasSubtitles:      false,
		ViralScore:        ViralScore(sentiment.ViralPotential),
		PersonaAnalysis:   &persona,
		ThemeAnalysis:     &scene,
		SentimentAnalysis: &sentiment,
	}
	if err := s.clips.CreateClip(ctx, clip); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", userID).Int64("clip_id", clip.ID).Int("viral_score", clip.ViralScore).Msg("Clip generated")

	s.publish(ctx, pubsub.ClipEvent{
		Type:       pubsub.EventClipGenerated,
		UserID:     userID,
		ClipID:     clip.ID,
		ViralScore: clip.ViralScore,
	})
	return clip, nil
}

func (s *clipService) publish(ctx context.Context, ev pubsub.ClipEvent) {
	if s.events == nil {
		return
	}
	if _, err := s.events.PublishClipEvent(ctx, ev); err != nil {
		s.logger.Warn().Err(err).Str("event_type", ev.Type).Int64("clip_id", ev.ClipID).Msg("Failed to publish clip event")
	}
}

// GetClips returns the user's clips newest first.
func (s *clipService) GetClips(ctx context.Context, userID string) ([]model.Clip, error) {
	clips, err := s.clips.ListClipsByUser(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to list clips")
		return nil, err
	}
	return clips, nil
}

// GetDailyUsage reports today's usage against the lite limit.
func (s *clipService) GetDailyUsage(ctx context.Context, userID string) (*UsageSummary, error) {
	n, err := s.usage.GetDailyUsage(ctx, userID, DateKey(s.now()))
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch daily usage")
		return nil, err
	}
	return &UsageSummary{
		ClipsGenerated: n,
		DailyLimit:     LiteDailyLimit,
		Remaining:      Remaining(LiteDailyLimit, n),
	}, nil
}

// RequestRender queues a media render of the caller's clip. When
// withSubtitles is nil the user's saved preference decides.
func (s *clipService) RequestRender(ctx context.Context, userID string, clipID int64, withSubtitles *bool) (*model.ClipRender, error) {
	clip, err := s.clips.GetClipByID(ctx, clipID)
	if err != nil {
		return nil, err
	}
	if clip == nil || clip.UserID != userID {
		return nil, ErrClipNotFound
	}

	subtitles := true
	if withSubtitles != nil {
		subtitles = *withSubtitles
	} else {
		prefs, err := s.prefs.GetPreferences(ctx, userID)
		if err != nil {
			return nil, err
		}
		if prefs != nil {
			subtitles = prefs.SubtitlesEnabled
		}
	}

	render, err := s.renders.CreateRender(ctx, clipID, userID, subtitles)
	if err != nil {
		return nil, err
	}
	job := model.RenderJob{RenderID: render.ID, ClipID: clipID, UserID: userID, WithSubtitles: subtitles}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.logger.Error().Err(err).Int64("render_id", render.ID).Msg("Failed to enqueue render job")
		if markErr := s.renders.MarkFailed(ctx, render.ID, "enqueue failed"); markErr != nil {
			s.logger.Error().Err(markErr).Int64("render_id", render.ID).Msg("Failed to mark render as failed")
		}
		return nil, err
	}
	s.logger.Info().Int64("render_id", render.ID).Int64("clip_id", clipID).Bool("with_subtitles", subtitles).Msg("Render queued")
	return render, nil
}

// normalizeKeywords turns blank keywords into nil.
func normalizeKeywords(k *string) *string {
	if k == nil {
		return nil
	}
	t := strings.TrimSpace(*k)
	if t == "" {
		return nil
	}
	return &t
}
