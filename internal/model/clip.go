package model

import "time"

// VideoSource is where the source video came from.
type VideoSource string

const (
	VideoSourceYouTube VideoSource = "youtube"
	VideoSourceUpload  VideoSource = "upload"
)

// Clip is a single generated artifact. Rows are written once and never updated.
type Clip struct {
	ID                int64              `db:"id" json:"id"`
	UserID            string             `db:"user_id" json:"user_id"`
	VideoURL          string             `db:"video_url" json:"video_url"`
	VideoSource       VideoSource        `db:"video_source" json:"video_source"`
	ArtistName        string             `db:"artist_name" json:"artist_name"`
	SceneTheme        string             `db:"scene_theme" json:"scene_theme"`
	Keywords          *string            `db:"keywords" json:"keywords,omitempty"`
	ClipTitle         string             `db:"clip_title" json:"clip_title"`
	ClipDescription   string             `db:"clip_description" json:"clip_description"`
	ClipURL           *string            `db:"clip_url" json:"clip_url,omitempty"`
	StartTime         int                `db:"start_time" json:"start_time"`
	EndTime           int                `db:"end_time" json:"end_time"`
	Duration          int                `db:"duration" json:"duration"`
	HasSubtitles      bool               `db:"has_subtitles" json:"has_subtitles"`
	ViralScore        int                `db:"viral_score" json:"viral_score"`
	PersonaAnalysis   *PersonaAnalysis   `db:"persona_analysis" json:"persona_analysis,omitempty"`
	ThemeAnalysis     *SceneAnalysis     `db:"theme_analysis" json:"theme_analysis,omitempty"`
	SentimentAnalysis *SentimentAnalysis `db:"sentiment_analysis" json:"sentiment_analysis,omitempty"`
	CreatedAt         time.Time          `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time          `db:"updated_at" json:"updated_at"`

	// LatestRender is populated by list queries; it is not a column of clips.
	LatestRender *ClipRender `db:"-" json:"latest_render,omitempty"`
}

// PersonaAnalysis describes the artist persona and what fans respond to.
type PersonaAnalysis struct {
	PersonaType      string   `json:"personaType"`
	FanPreferences   []string `json:"fanPreferences"`
	BestMomentTypes  []string `json:"bestMomentTypes"`
	RecommendedStyle string   `json:"recommendedStyle"`
}

// SceneAnalysis carries scene-detection hints for the theme.
type SceneAnalysis struct {
	OptimalDuration    float64  `json:"optimalDuration"`
	KeywordsTriggers   []string `json:"keywordsTriggers"`
	EmotionalIntensity string   `json:"emotionalIntensity"`
	EngagementFactors  []string `json:"engagementFactors"`
}

// SentimentAnalysis captures market sentiment around the artist and theme.
type SentimentAnalysis struct {
	TrendingTopics      []string `json:"trendingTopics"`
	ViralPotential      float64  `json:"viralPotential"`
	RecommendedHashtags []string `json:"recommendedHashtags"`
	ContentTiming       string   `json:"contentTiming"`
}

// RenderStatus is the lifecycle state of a clip render.
type RenderStatus string

const (
	RenderQueued     RenderStatus = "queued"
	RenderProcessing RenderStatus = "processing"
	RenderComplete   RenderStatus = "complete"
	RenderFailed     RenderStatus = "failed"
)

// ClipRender records one attempt to cut, caption and upload a clip's media.
type ClipRender struct {
	ID            int64        `db:"id" json:"id"`
	ClipID        int64        `db:"clip_id" json:"clip_id"`
	UserID        string       `db:"user_id" json:"user_id"`
	Status        RenderStatus `db:"status" json:"status"`
	WithSubtitles bool         `db:"with_subtitles" json:"with_subtitles"`
	URL           *string      `db:"url" json:"url,omitempty"`
	StorageKey    *string      `db:"storage_key" json:"storage_key,omitempty"`
	Error         *string      `db:"error" json:"error,omitempty"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// RenderJob is the queue payload that asks the worker to render a clip.
type RenderJob struct {
	RenderID      int64  `json:"render_id"`
	ClipID        int64  `json:"clip_id"`
	UserID        string `json:"user_id"`
	WithSubtitles bool   `json:"with_subtitles"`
}
