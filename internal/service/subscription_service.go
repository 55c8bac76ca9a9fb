package service

import (
	"context"
	"fmt"

	"viralclip/internal/model"
	"viralclip/internal/repository"

	"github.com/rs/zerolog"
)

// SubscriptionService reads and changes a user's tier.
type SubscriptionService interface {
	// GetTier returns the user's tier, lite when none is provisioned.
	GetTier(ctx context.Context, userID string) (model.Tier, error)
	SetTier(ctx context.Context, userID string, tier model.Tier) (*model.UserTier, error)
}

type subscriptionService struct {
	tiers  repository.TierRepository
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewSubscriptionService creates a new SubscriptionService with a scoped logger.
func NewSubscriptionService(tiers repository.TierRepository, users repository.UserRepository, logger zerolog.Logger) SubscriptionService {
	return &subscriptionService{
		tiers:  tiers,
		users:  users,
		logger: logger.With().Str("service", "SubscriptionService").Logger(),
	}
}

func (s *subscriptionService) GetTier(ctx context.Context, userID string) (model.Tier, error) {
	t, err := s.tiers.GetTier(ctx, userID)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to fetch tier")
		return "", err
	}
	if t == nil {
		// Sign-in provisions a tier, so this is a gap worth seeing in logs.
		s.logger.Warn().Str("user_id", userID).Msg("No tier row for user, reporting lite")
		return model.TierLite, nil
	}
	return t.Tier, nil
}

func (s *subscriptionService) SetTier(ctx context.Context, userID string, tier model.Tier) (*model.UserTier, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("%q: %w", tier, ErrInvalidTier)
	}
	u, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	ut, err := s.tiers.SetTier(ctx, userID, tier)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Str("tier", string(tier)).Msg("Failed to set tier")
		return nil, err
	}
	s.logger.Info().Str("user_id", userID).Str("tier", string(tier)).Msg("Tier updated")
	return ut, nil
}
