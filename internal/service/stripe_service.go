package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"viralclip/internal/config"
	"viralclip/internal/model"
	"viralclip/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v82"
	billingsession "github.com/stripe/stripe-go/v82/billingportal/session"
	checkoutsession "github.com/stripe/stripe-go/v82/checkout/session"
	customerpkg "github.com/stripe/stripe-go/v82/customer"
	"github.com/stripe/stripe-go/v82/webhook"
)

// errBadEventPayload marks webhook payloads that cannot be decoded.
var errBadEventPayload = errors.New("invalid event payload")

// StripeService upgrades users to pro through Checkout and keeps the tier in
// sync with subscription webhooks.
type StripeService struct {
	cfg      *config.Config
	userRepo repository.UserRepository
	subSvc   SubscriptionService
	logger   zerolog.Logger
}

// NewStripeService initializes Stripe key and returns service with a scoped logger
func NewStripeService(cfg *config.Config, userRepo repository.UserRepository, subSvc SubscriptionService, logger zerolog.Logger) *StripeService {
	stripe.Key = cfg.StripeSecretKey
	lg := logger.With().Str("service", "StripeService").Logger()
	return &StripeService{cfg: cfg, userRepo: userRepo, subSvc: subSvc, logger: lg}
}

// Enabled reports whether billing is configured.
func (s *StripeService) Enabled() bool {
	return s.cfg.StripeEnabled()
}

// getUserIDFromEvent resolves the user from webhook metadata, falling back to the customer ID.
func (s *StripeService) getUserIDFromEvent(ctx context.Context, metadata map[string]string, customerID string) (string, error) {
	if userID, ok := metadata["user_id"]; ok && userID != "" {
		return userID, nil
	}
	if customerID == "" {
		return "", errors.New("cannot determine user: missing metadata and customer id")
	}
	s.logger.Warn().Str("stripe_customer_id", customerID).Msg("Missing user_id metadata; looking up user by customer ID")
	u, err := s.userRepo.GetUserByStripeCustomerID(ctx, customerID)
	if err != nil {
		return "", fmt.Errorf("failed to lookup user by Stripe customer ID: %w", err)
	}
	if u == nil {
		return "", fmt.Errorf("no user found for customer ID: %s", customerID)
	}
	return u.UserID, nil
}

// GetOrCreateCustomer ensures a Stripe Customer exists for a user.
func (s *StripeService) GetOrCreateCustomer(ctx context.Context, user *model.User) (string, error) {
	if user.StripeCustomerID != nil && *user.StripeCustomerID != "" {
		return *user.StripeCustomerID, nil
	}
	params := &stripe.CustomerParams{
		Email:    user.Email,
		Name:     user.Name,
		Metadata: map[string]string{"user_id": user.UserID},
	}
	cust, err := customerpkg.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", user.UserID).Msg("Failed to create Stripe customer")
		return "", fmt.Errorf("create stripe customer: %w", err)
	}
	if err := s.userRepo.UpdateStripeCustomerID(ctx, user.UserID, cust.ID); err != nil {
		s.logger.Error().Err(err).Str("user_id", user.UserID).Msg("Failed to store stripe customer id")
		return "", fmt.Errorf("store stripe customer id: %w", err)
	}
	return cust.ID, nil
}

// CreateCheckoutSession creates a Checkout session for the pro price and returns its URL.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, userID string) (string, error) {
	if !s.Enabled() {
		return "", ErrBillingDisabled
	}
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("fetch user: %w", err)
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	customerID, err := s.GetOrCreateCustomer(ctx, user)
	if err != nil {
		return "", err
	}
	meta := map[string]string{"user_id": userID}
	sessParams := &stripe.CheckoutSessionParams{
		Customer:         stripe.String(customerID),
		LineItems:        []*stripe.CheckoutSessionLineItemParams{{Price: stripe.String(s.cfg.StripePricePro), Quantity: stripe.Int64(1)}},
		Mode:             stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL:       stripe.String(s.cfg.StripeReturnURL + "?status=success"),
		CancelURL:        stripe.String(s.cfg.StripeReturnURL + "?status=cancel"),
		Metadata:         meta,
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{Metadata: meta},
	}
	sess, err := checkoutsession.New(sessParams)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create Stripe checkout session")
		return "", fmt.Errorf("create checkout session: %w", err)
	}
	return sess.URL, nil
}

// CreatePortalSession creates a Stripe Customer Portal session and returns its URL.
func (s *StripeService) CreatePortalSession(ctx context.Context, userID string) (string, error) {
	if !s.Enabled() {
		return "", ErrBillingDisabled
	}
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("fetch user: %w", err)
	}
	if user == nil || user.StripeCustomerID == nil || *user.StripeCustomerID == "" {
		return "", fmt.Errorf("no stripe customer for user %s: %w", userID, ErrUserNotFound)
	}
	params := &stripe.BillingPortalSessionParams{Customer: user.StripeCustomerID, ReturnURL: stripe.String(s.cfg.StripeReturnURL)}
	sess, err := billingsession.New(params)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to create Stripe billing portal session")
		return "", fmt.Errorf("create billing portal session: %w", err)
	}
	return sess.URL, nil
}

// HandleWebhook verifies and applies a Stripe webhook event.
func (s *StripeService) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if !s.Enabled() {
		http.Error(w, "billing is not enabled", http.StatusServiceUnavailable)
		return
	}
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to read Stripe webhook payload")
		http.Error(w, "failed to read payload", http.StatusBadRequest)
		return
	}
	sig := r.Header.Get("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sig, s.cfg.StripeWebhookSecret)
	if err != nil {
		s.logger.Error().Err(err).Msg("Signature verification failed for Stripe webhook")
		http.Error(w, "signature verification failed", http.StatusBadRequest)
		return
	}
	s.logger.Info().Str("event_type", string(event.Type)).Msg("Stripe webhook received")

	if err := s.ApplyEvent(r.Context(), event); err != nil {
		if errors.Is(err, errBadEventPayload) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "failed to apply event", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ApplyEvent maps a verified Stripe event onto the user's tier.
func (s *StripeService) ApplyEvent(ctx context.Context, event stripe.Event) error {
	if event.Data == nil {
		return errBadEventPayload
	}
	switch event.Type {
	case "checkout.session.completed":
		var cs stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
			s.logger.Error().Err(err).Msg("Invalid checkout.session data")
			return fmt.Errorf("checkout.session: %w", errBadEventPayload)
		}
		userID, err := s.getUserIDFromEvent(ctx, cs.Metadata, customerID(cs.Customer))
		if err != nil {
			s.logger.Error().Err(err).Str("session_id", cs.ID).Msg("Failed to determine user ID from checkout session")
			return err
		}
		return s.setTier(ctx, userID, model.TierPro, event.Type)
	case "customer.subscription.updated":
		var ss stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &ss); err != nil {
			s.logger.Error().Err(err).Msg("Invalid customer.subscription.updated payload")
			return fmt.Errorf("subscription: %w", errBadEventPayload)
		}
		userID, err := s.getUserIDFromEvent(ctx, ss.Metadata, customerID(ss.Customer))
		if err != nil {
			s.logger.Error().Err(err).Str("subscription_id", ss.ID).Msg("Failed to determine user ID from subscription")
			return err
		}
		return s.setTier(ctx, userID, tierForSubscriptionStatus(ss.Status), event.Type)
	case "customer.subscription.deleted":
		var ss stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &ss); err != nil {
			s.logger.Error().Err(err).Msg("Invalid customer.subscription.deleted payload")
			return fmt.Errorf("subscription: %w", errBadEventPayload)
		}
		userID, err := s.getUserIDFromEvent(ctx, ss.Metadata, customerID(ss.Customer))
		if err != nil {
			s.logger.Error().Err(err).Str("subscription_id", ss.ID).Msg("Failed to determine user ID from subscription")
			return err
		}
		return s.setTier(ctx, userID, model.TierLite, event.Type)
	default:
		s.logger.Warn().Str("event_type", string(event.Type)).Msg("Unhandled Stripe webhook event")
		return nil
	}
}

func (s *StripeService) setTier(ctx context.Context, userID string, tier model.Tier, eventType stripe.EventType) error {
	if _, err := s.subSvc.SetTier(ctx, userID, tier); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("event_type", string(eventType)).Msg("Failed to update tier from webhook")
		return err
	}
	return nil
}

func tierForSubscriptionStatus(status stripe.SubscriptionStatus) model.Tier {
	switch status {
	case stripe.SubscriptionStatusActive, stripe.SubscriptionStatusTrialing:
		return model.TierPro
	default:
		return model.TierLite
	}
}

func customerID(c *stripe.Customer) string {
	if c == nil {
		return ""
	}
	return c.ID
}
