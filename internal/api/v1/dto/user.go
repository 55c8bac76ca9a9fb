package dto

import (
	"time"

	"viralclip/internal/model"
)

// SignInRequest carries optional profile fields; identity comes from the token.
type SignInRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,max=255"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	LoginMethod *string `json:"loginMethod,omitempty" validate:"omitempty,max=64"`
}

type UserResponse struct {
	UserID       string    `json:"userId"`
	Name         *string   `json:"name,omitempty"`
	Email        *string   `json:"email,omitempty"`
	LoginMethod  *string   `json:"loginMethod,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	LastSignedIn time.Time `json:"lastSignedIn"`
}

func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		UserID:       u.UserID,
		Name:         u.Name,
		Email:        u.Email,
		LoginMethod:  u.LoginMethod,
		Role:         string(u.Role),
		CreatedAt:    u.CreatedAt,
		LastSignedIn: u.LastSignedIn,
	}
}

// UpdatePreferencesRequest is a partial update; omitted fields are unchanged.
type UpdatePreferencesRequest struct {
	DefaultArtistName *string `json:"defaultArtistName,omitempty" validate:"omitempty,max=255"`
	DefaultTheme      *string `json:"defaultTheme,omitempty" validate:"omitempty,max=255"`
	SubtitlesEnabled  *bool   `json:"subtitlesEnabled,omitempty"`
}

type PreferencesResponse struct {
	DefaultArtistName *string `json:"defaultArtistName"`
	DefaultTheme      *string `json:"defaultTheme"`
	SubtitlesEnabled  bool    `json:"subtitlesEnabled"`
}

func NewPreferencesResponse(p *model.UserPreferences) PreferencesResponse {
	return PreferencesResponse{
		DefaultArtistName: p.DefaultArtistName,
		DefaultTheme:      p.DefaultTheme,
		SubtitlesEnabled:  p.SubtitlesEnabled,
	}
}
