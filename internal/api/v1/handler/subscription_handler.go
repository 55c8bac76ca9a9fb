package handler

import (
	"context"
	"errors"
	"net/http"

	"viralclip/internal/api/v1/dto"
	"viralclip/internal/service"

	"github.com/rs/zerolog"
)

// BillingService is the Stripe surface used by SubscriptionHandler.
type BillingService interface {
	CreateCheckoutSession(ctx context.Context, userID string) (string, error)
	CreatePortalSession(ctx context.Context, userID string) (string, error)
	HandleWebhook(w http.ResponseWriter, r *http.Request)
}

// SubscriptionHandler handles tier and billing endpoints.
type SubscriptionHandler struct {
	billing BillingService
	subSvc  service.SubscriptionService
	logger  zerolog.Logger
}

// NewSubscriptionHandler creates a new SubscriptionHandler.
func NewSubscriptionHandler(billing BillingService, subSvc service.SubscriptionService, logger zerolog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{billing: billing, subSvc: subSvc, logger: logger.With().Str("handler", "subscription").Logger()}
}

// RegisterRoutes registers the subscription endpoints. The webhook is
// authenticated by its Stripe signature, not a bearer token.
func (h *SubscriptionHandler) RegisterRoutes(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	mux.Handle("GET /tier", authMiddleware(http.HandlerFunc(h.GetTier)))
	mux.Handle("POST /subscriptions/checkout", authMiddleware(http.HandlerFunc(h.Checkout)))
	mux.Handle("GET /subscriptions/portal", authMiddleware(http.HandlerFunc(h.Portal)))
	mux.Handle("POST /subscriptions/webhook", http.HandlerFunc(h.billing.HandleWebhook))
}

// GetTier godoc
// @Summary Get the caller's tier
// @Description Returns lite or pro. Users without a tier record are reported as lite.
// @Tags subscriptions
// @Produce json
// @Success 200 {object} dto.TierResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal server error"
// @Security BearerAuth
// @Router /tier [get]
func (h *SubscriptionHandler) GetTier(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	tier, err := h.subSvc.GetTier(r.Context(), userID)
	if err != nil {
		h.logger.Error().Err(err).Str("user_id", userID).Msg("failed to fetch tier")
		http.Error(w, msgInternal, http.StatusInternalServerError)
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.TierResponse{Tier: string(tier)})
}

// Checkout godoc
// @Summary Start a Stripe Checkout session for the pro plan
// @Tags subscriptions
// @Produce json
// @Success 200 {object} dto.SessionURLResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "user not found"
// @Failure 503 {string} string "billing is not enabled"
// @Failure 500 {string} string "internal server error"
// @Security BearerAuth
// @Router /subscriptions/checkout [post]
func (h *SubscriptionHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	url, err := h.billing.CreateCheckoutSession(r.Context(), userID)
	if err != nil {
		h.writeBillingError(w, err, userID, "failed to create checkout session")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.SessionURLResponse{URL: url})
}

// Portal godoc
// @Summary Create a Stripe Customer Portal session
// @Tags subscriptions
// @Produce json
// @Success 200 {object} dto.SessionURLResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "user not found"
// @Failure 503 {string} string "billing is not enabled"
// @Failure 500 {string} string "internal server error"
// @Security BearerAuth
// @Router /subscriptions/portal [get]
func (h *SubscriptionHandler) Portal(w http.ResponseWriter, r *http.Request) {
	userID, ok := userIDFrom(w, r)
	if !ok {
		return
	}
	url, err := h.billing.CreatePortalSession(r.Context(), userID)
	if err != nil {
		h.writeBillingError(w, err, userID, "failed to create portal session")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, dto.SessionURLResponse{URL: url})
}

func (h *SubscriptionHandler) writeBillingError(w http.ResponseWriter, err error, userID, msg string) {
	switch {
	case errors.Is(err, service.ErrBillingDisabled):
		http.Error(w, "billing is not enabled", http.StatusServiceUnavailable)
	case errors.Is(err, service.ErrUserNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	default:
		h.logger.Error().Err(err).Str("user_id", userID).Msg(msg)
		http.Error(w, msgInternal, http.StatusInternalServerError)
	}
}
