package service

import (
	"context"

	"viralclip/internal/model"
	"viralclip/internal/repository"

	"github.com/rs/zerolog"
)

// SignInInput carries the optional profile fields presented at sign-in.
type SignInInput struct {
	Name        *string
	Email       *string
	LoginMethod *string
}

type UserService interface {
	// SignIn records a sign-in for the token subject, creating the user and
	// a lite tier on first sight.
	SignIn(ctx context.Context, userID string, in SignInInput) (*model.User, error)
	Get(ctx context.Context, id string) (*model.User, error)
	GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error)
	UpdatePreferences(ctx context.Context, userID string, upd model.PreferencesUpdate) (*model.UserPreferences, error)
}

type userService struct {
	userRepo    repository.UserRepository
	prefsRepo   repository.PreferencesRepository
	ownerOpenID string
	logger      zerolog.Logger
}

func NewUserService(userRepo repository.UserRepository, prefsRepo repository.PreferencesRepository, ownerOpenID string, logger zerolog.Logger) UserService {
	return &userService{
		userRepo:    userRepo,
		prefsRepo:   prefsRepo,
		ownerOpenID: ownerOpenID,
		logger:      logger.With().Str("service", "UserService").Logger(),
	}
}

func (s *userService) SignIn(ctx context.Context, userID string, in SignInInput) (*model.User, error) {
	u := &model.User{
		UserID:      userID,
		Name:        in.Name,
		Email:       in.Email,
		LoginMethod: in.LoginMethod,
		Role:        model.RoleUser,
	}
	if s.ownerOpenID != "" && userID == s.ownerOpenID {
		u.Role = model.RoleAdmin
	}
	if err := s.userRepo.UpsertUser(ctx, u); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to record sign-in")
		return nil, err
	}
	return u, nil
}

func (s *userService) Get(ctx context.Context, id string) (*model.User, error) {
	u, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

// GetPreferences returns the saved preferences, or the defaults when the
// user never saved any. No row is created.
func (s *userService) GetPreferences(ctx context.Context, userID string) (*model.UserPreferences, error) {
	p, err := s.prefsRepo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return &model.UserPreferences{UserID: userID, SubtitlesEnabled: true}, nil
	}
	return p, nil
}

func (s *userService) UpdatePreferences(ctx context.Context, userID string, upd model.PreferencesUpdate) (*model.UserPreferences, error) {
	p, err := s.prefsRepo.UpsertPreferences(ctx, userID, upd)
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("Failed to update preferences")
		return nil, err
	}
	return p, nil
}
