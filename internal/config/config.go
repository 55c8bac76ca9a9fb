package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port               string `envconfig:"PORT" default:"8080"`
	Environment        string `envconfig:"ENV" default:"development"`
	LogLevel           string `envconfig:"LOG_LEVEL" default:"debug"`
	DBConnectionString string `envconfig:"DB_CONNECTION_STRING" required:"true"`
	JWTSecret          string `envconfig:"JWT_SECRET" required:"true"`
	OwnerOpenID        string `envconfig:"OWNER_OPEN_ID"`

	// Text-generation endpoint (OpenAI-compatible chat completions)
	LLMBaseURL        string  `envconfig:"LLM_BASE_URL" default:"https://api.openai.com/v1"`
	LLMAPIKey         string  `envconfig:"LLM_API_KEY"`
	LLMAPIKeySecret   string  `envconfig:"LLM_API_KEY_SECRET"`
	LLMModel          string  `envconfig:"LLM_MODEL" default:"gpt-4o-mini"`
	LLMTimeoutSec     int     `envconfig:"LLM_TIMEOUT_SEC" default:"60"`
	LLMRequestsPerSec float64 `envconfig:"LLM_REQUESTS_PER_SEC" default:"5"`

	// Blob storage (any S3-compatible endpoint). Only the render worker
	// needs it; see ValidateStorage.
	S3URL       string `envconfig:"S3_URL" validate:"required,url"`
	S3Bucket    string `envconfig:"S3_BUCKET" validate:"required"`
	S3Region    string `envconfig:"S3_REGION" validate:"required"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY" validate:"required"`
	S3SecretKey string `envconfig:"S3_SECRET_KEY" validate:"required"`

	// Media tooling
	FFmpegPath          string `envconfig:"FFMPEG_PATH" default:"ffmpeg"`
	FFprobePath         string `envconfig:"FFPROBE_PATH" default:"ffprobe"`
	MediaTimeoutSec     int    `envconfig:"MEDIA_TIMEOUT_SEC" default:"300"`
	MediaMaxConcurrency int64  `envconfig:"MEDIA_MAX_CONCURRENCY" default:"2"`

	// Google Cloud
	GCPProjectID       string `envconfig:"GCP_PROJECT_ID"`
	PubSubEmulatorHost string `envconfig:"PUBSUB_EMULATOR_HOST"`
	PubSubClipTopic    string `envconfig:"PUBSUB_CLIP_TOPIC"`

	// Stripe
	StripeSecretKey     string `envconfig:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `envconfig:"STRIPE_WEBHOOK_SECRET"`
	StripePricePro      string `envconfig:"STRIPE_PRICE_PRO"`
	StripeReturnURL     string `envconfig:"STRIPE_RETURN_URL" default:"http://localhost:3000/dashboard"`

	// Render orchestrator settings
	RenderQueueName           string `envconfig:"RENDER_QUEUE_NAME" default:"render_queue"`
	RenderPollTimeoutSec      int    `envconfig:"RENDER_POLL_TIMEOUT_SEC" default:"30"`
	RenderPollMaxMsg          int    `envconfig:"RENDER_POLL_MAX_MSG" default:"1"`
	RenderMaxRetries          int    `envconfig:"RENDER_MAX_RETRIES" default:"3"`
	RenderBackoffInitialSec   int    `envconfig:"RENDER_BACKOFF_INITIAL_SEC" default:"2"`
	RenderBackoffMaxSec       int    `envconfig:"RENDER_BACKOFF_MAX_SEC" default:"60"`
	RenderDeadLetterQueueName string `envconfig:"RENDER_DEAD_LETTER_QUEUE_NAME" default:"render_queue_dlq"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var storageFields = []string{"S3URL", "S3Bucket", "S3Region", "S3AccessKey", "S3SecretKey"}

// ValidateStorage checks the S3 settings required by processes that upload
// rendered clips.
func (c *Config) ValidateStorage() error {
	if err := validator.New().StructPartial(c, storageFields...); err != nil {
		return fmt.Errorf("invalid storage config: %w", err)
	}
	return nil
}

// StripeEnabled reports whether billing endpoints should be served. Without a
// webhook secret, webhook signatures cannot be trusted, so billing stays off.
func (c *Config) StripeEnabled() bool {
	return c.StripeSecretKey != "" && c.StripePricePro != "" && c.StripeWebhookSecret != ""
}

// EventsEnabled reports whether clip events are published to Pub/Sub.
func (c *Config) EventsEnabled() bool {
	return c.GCPProjectID != "" && c.PubSubClipTopic != ""
}
