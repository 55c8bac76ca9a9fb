package handler

import (
	"errors"
	"net/http"

	"viralclip/internal/api/v1/dto"
	"viralclip/internal/middleware"
	"viralclip/internal/model"
	"viralclip/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type UserHandler struct {
	userService service.UserService
	validate    *validator.Validate
	logger      zerolog.Logger
}

func NewUserHandler(userService service.UserService, v *validator.Validate, logger zerolog.Logger) *UserHandler {
	return &UserHandler{userService: userService, validate: v, logger: logger.With().Str("handler", "user").Logger()}
}

// RegisterRoutes mounts v1 user routes
func (h *UserHandler) RegisterRoutes(mux *http.ServeMux, authMw func(http.Handler) http.Handler) {
	mux.Handle("POST /users/me", authMw(http.HandlerFunc(h.signIn)))
	mux.Handle("GET /users/me", authMw(http.HandlerFunc(h.getUser)))
	mux.Handle("GET /users/me/preferences", authMw(http.HandlerFunc(h.getPreferences)))
	mux.Handle("PUT /users/me/preferences", authMw(http.HandlerFunc(h.updatePreferences)))
}

// signIn godoc
// @Summary Sign in
// @Description Creates or refreshes the user behind the bearer token and provisions a lite tier on first sign-in. Profile fields missing from the body fall back to the token claims.
// @Tags users
// @Accept json
// @Produce json
// @Param user body dto.SignInRequest false "Profile fields"
// @Success 200 {object} dto.UserResponse
// @Failure 400 {string} string "Validation failed"
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal server error"
// @Security BearerAuth
// @Router /users/me [post]
func (h *UserHandler) signIn(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	var req dto.SignInRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	in := service.SignInInput{Name: req.Name, Email: req.Email, LoginMethod: req.LoginMethod}
	if claims := middleware.ClaimsFromContext(r.Context()); claims != nil {
		if in.Name == nil && claims.Name != "" {
			in.Name = &claims.Name
		}
		if in.Email == nil && claims.Email != "" {
			in.Email = &claims.Email
		}
	}

	user, err := h.userService.SignIn(r.Context(), userID, in)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to sign in")
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.NewUserResponse(user))
}

// getUser godoc
// @Summary Get the current user
// @Tags users
// @Produce json
// @Success 200 {object} dto.UserResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "user not found"
// @Failure 500 {string} string "internal server error"
// @Security BearerAuth
// @Router /users/me [get]
func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	user, err := h.userService.Get(r.Context(), userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		default:
			h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to fetch user")
			http.Error(w, msgInternal, http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.NewUserResponse(user))
}

// getPreferences godoc
// @Summary Get creation-form defaults
// @Tags users
// @Produce json
// @Success 200 {object} dto.PreferencesResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal server error"
// @Security BearerAuth
// @Router /users/me/preferences [get]
func (h *UserHandler) getPreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	prefs, err := h.userService.GetPreferences(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to fetch preferences")
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.NewPreferencesResponse(prefs))
}

// updatePreferences godoc
// @Summary Update creation-form defaults
// @Description Omitted fields keep their stored values.
// @Tags users
// @Accept json
// @Produce json
// @Param preferences body dto.UpdatePreferencesRequest true "Preferences update"
// @Success 200 {object} dto.PreferencesResponse
// @Failure 400 {string} string "Validation failed"
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal server error"
// @Security BearerAuth
// @Router /users/me/preferences [put]
func (h *UserHandler) updatePreferences(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	var req dto.UpdatePreferencesRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		http.Error(w, "Invalid JSON payload: "+err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		http.Error(w, "Validation failed: "+err.Error(), http.StatusBadRequest)
		return
	}
	prefs, err := h.userService.UpdatePreferences(r.Context(), userID, model.PreferencesUpdate{
		DefaultArtistName: req.DefaultArtistName,
		DefaultTheme:      req.DefaultTheme,
		SubtitlesEnabled:  req.SubtitlesEnabled,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to update preferences")
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.NewPreferencesResponse(prefs))
}
