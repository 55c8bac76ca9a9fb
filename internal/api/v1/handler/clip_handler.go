package handler

import (
	"errors"
	"net/http"
	"strconv"

	"viralclip/internal/api/v1/dto"
	"viralclip/internal/model"
	"viralclip/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// ClipHandler serves clip generation, listing, rendering and usage.
type ClipHandler struct {
	clipService service.ClipService
	validate    *validator.Validate
	logger      zerolog.Logger
}

func NewClipHandler(clipService service.ClipService, validate *validator.Validate, logger zerolog.Logger) *ClipHandler {
	return &ClipHandler{clipService: clipService, validate: validate, logger: logger.With().Str("handler", "clip").Logger()}
}

// RegisterRoutes mounts v1 clip routes
func (h *ClipHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /clips", authMw(http.HandlerFunc(h.generateClip)))
	mux.Handle("GET /clips", authMw(http.HandlerFunc(h.getClips)))
	mux.Handle("POST /clips/{id}/render", authMw(http.HandlerFunc(h.requestRender)))
	mux.Handle("GET /usage", authMw(http.HandlerFunc(h.getDailyUsage)))
}

// generateClip godoc
// @Summary Generate a viral clip
// @Description Runs persona, scene and sentiment analysis, then generates a title and description and stores the clip. Lite users are limited to 15 clips per UTC day.
// @Tags clips
// @Accept json
// @Produce json
// @Param clip body dto.GenerateClipRequest true "Clip generation request"
// @Success 201 {object} dto.GenerateClipResponse
// @Failure 400 {string} string "Validation failed"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "Lite users can only generate 15 clips per day"
// @Failure 500 {string} string "internal server error"
// @Security BearerAuth
// @Router /clips [post]
func (h *ClipHandler) generateClip(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	var req dto.GenerateClipRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	req.Normalize()
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}

	clip, err := h.clipService.GenerateClip(r.Context(), userID, service.GenerateClipInput{
		VideoURL:    req.VideoURL,
		VideoSource: model.VideoSource(req.VideoSource),
		ArtistName:  req.ArtistName,
		SceneTheme:  req.SceneTheme,
		Keywords:    req.Keywords,
	})
	if err != nil {
		var quotaErr *service.QuotaExceededError
		switch {
		case errors.As(err, &quotaErr):
			http.Error(w, quotaErr.Error(), http.StatusForbidden)
		default:
			h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to generate clip")
			http.Error(w, msgInternal, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, h.logger, http.StatusCreated, dto.GenerateClipResponse{Success: true, Clip: dto.NewClipResponse(clip)})
}

// getClips godoc
// @Summary List the caller's clips
// @Description Returns every clip of the authenticated user, newest first, with its latest render.
// @Tags clips
// @Produce json
// @Success 200 {array} dto.ClipResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal server error"
// @Security BearerAuth
// @Router /clips [get]
func (h *ClipHandler) getClips(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	clips, err := h.clipService.GetClips(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to list clips")
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	resp := make([]dto.ClipResponse, 0, len(clips))
	for i := range clips {
		resp = append(resp, dto.NewClipResponse(&clips[i]))
	}
	writeJSON(w, h.logger, http.StatusOK, resp)
}

// requestRender godoc
// @Summary Queue a render of a clip
// @Description Cuts the clip from its source video, optionally embeds captions, and uploads it. Subtitles default to the caller's preference.
// @Tags clips
// @Accept json
// @Produce json
// @Param id path int true "Clip ID"
// @Param render body dto.RenderRequest false "Render options"
// @Success 202 {object} dto.ClipRenderResponse
// @Failure 400 {string} string "Invalid clip id"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "clip not found"
// @Failure 500 {string} string "internal server error"
// @Security BearerAuth
// @Router /clips/{id}/render [post]
func (h *ClipHandler) requestRender(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	clipID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || clipID <= 0 {
		http.Error(w, "Invalid clip id", http.StatusBadRequest)
		return
	}
	var req dto.RenderRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}

	render, err := h.clipService.RequestRender(r.Context(), userID, clipID, req.WithSubtitles)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrClipNotFound):
			http.Error(w, "clip not found", http.StatusNotFound)
		default:
			h.logger.Error().Err(err).Int64("clip_id", clipID).Msg("failed to request render")
			http.Error(w, msgInternal, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, h.logger, http.StatusAccepted, dto.NewClipRenderResponse(render))
}

// getDailyUsage godoc
// @Summary Today's clip usage
// @Description Returns clips generated today (UTC), the lite daily limit and the remaining allowance.
// @Tags usage
// @Produce json
// @Success 200 {object} service.UsageSummary
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal server error"
// @Security BearerAuth
// @Router /usage [get]
func (h *ClipHandler) getDailyUsage(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	usage, err := h.clipService.GetDailyUsage(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to read daily usage")
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, usage)
}
