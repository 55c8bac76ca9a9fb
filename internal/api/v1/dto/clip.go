package dto

import (
	"strings"
	"time"

	"viralclip/internal/model"
)

// GenerateClipRequest is the body of POST /clips.
type GenerateClipRequest struct {
	VideoURL    string  `json:"videoUrl" validate:"required,url"`
	VideoSource string  `json:"videoSource" validate:"required,oneof=youtube upload"`
	ArtistName  string  `json:"artistName" validate:"required"`
	SceneTheme  string  `json:"sceneTheme" validate:"required"`
	Keywords    *string `json:"keywords,omitempty"`
}

// Normalize trims the free-text fields so whitespace-only values fail validation.
func (r *GenerateClipRequest) Normalize() {
	r.VideoURL = strings.TrimSpace(r.VideoURL)
	r.ArtistName = strings.TrimSpace(r.ArtistName)
	r.SceneTheme = strings.TrimSpace(r.SceneTheme)
}

// RenderRequest is the optional body of POST /clips/{id}/render.
type RenderRequest struct {
	WithSubtitles *bool `json:"withSubtitles,omitempty"`
}

type ClipRenderResponse struct {
	ID            int64      `json:"id"`
	ClipID        int64      `json:"clipId"`
	Status        string     `json:"status"`
	WithSubtitles bool       `json:"withSubtitles"`
	URL           *string    `json:"url,omitempty"`
	Error         *string    `json:"error,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     *time.Time `json:"updatedAt,omitempty"`
}

type ClipResponse struct {
	ID                int64                    `json:"id"`
	UserID            string                   `json:"userId"`
	VideoURL          string                   `json:"videoUrl"`
	VideoSource       string                   `json:"videoSource"`
	ArtistName        string                   `json:"artistName"`
	SceneTheme        string                   `json:"sceneTheme"`
	Keywords          *string                  `json:"keywords,omitempty"`
	ClipTitle         string                   `json:"clipTitle"`
	ClipDescription   string                   `json:"clipDescription"`
	ClipURL           *string                  `json:"clipUrl,omitempty"`
	StartTime         int                      `json:"startTime"`
	EndTime           int                      `json:"endTime"`
	Duration          int                      `json:"duration"`
	HasSubtitles      bool                     `json:"hasSubtitles"`
	ViralScore        int                      `json:"viralScore"`
	PersonaAnalysis   *model.PersonaAnalysis   `json:"personaAnalysis,omitempty"`
	ThemeAnalysis     *model.SceneAnalysis     `json:"themeAnalysis,omitempty"`
	SentimentAnalysis *model.SentimentAnalysis `json:"sentimentAnalysis,omitempty"`
	LatestRender      *ClipRenderResponse      `json:"latestRender,omitempty"`
	CreatedAt         time.Time                `json:"createdAt"`
}

// GenerateClipResponse wraps a freshly generated clip.
type GenerateClipResponse struct {
	Success bool         `json:"success"`
	Clip    ClipResponse `json:"clip"`
}

func NewClipRenderResponse(r *model.ClipRender) *ClipRenderResponse {
	if r == nil {
		return nil
	}
	resp := &ClipRenderResponse{
		ID:            r.ID,
		ClipID:        r.ClipID,
		Status:        string(r.Status),
		WithSubtitles: r.WithSubtitles,
		URL:           r.URL,
		Error:         r.Error,
		CreatedAt:     r.CreatedAt,
	}
	if !r.UpdatedAt.IsZero() {
		updated := r.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}

func NewClipResponse(c *model.Clip) ClipResponse {
	return ClipResponse{
		ID:                c.ID,
		UserID:            c.UserID,
		VideoURL:          c.VideoURL,
		VideoSource:       string(c.VideoSource),
		ArtistName:        c.ArtistName,
		SceneTheme:        c.SceneTheme,
		Keywords:          c.Keywords,
		ClipTitle:         c.ClipTitle,
		ClipDescription:   c.ClipDescription,
		ClipURL:           c.ClipURL,
		StartTime:         c.StartTime,
		EndTime:           c.EndTime,
		Duration:          c.Duration,
		HasSubtitles:      c.HasSubtitles,
		ViralScore:        c.ViralScore,
		PersonaAnalysis:   c.PersonaAnalysis,
		ThemeAnalysis:     c.ThemeAnalysis,
		SentimentAnalysis: c.SentimentAnalysis,
		LatestRender:      NewClipRenderResponse(c.LatestRender),
		CreatedAt:         c.CreatedAt,
	}
}
