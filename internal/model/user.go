package model

import "time"

// Role is the authorization role of a user.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an authenticated principal. UserID is the external
// identity (token subject) and doubles as the primary key.
type User struct {
	UserID           string    `db:"user_id" json:"user_id"`
	Name             *string   `db:"name" json:"name,omitempty"`
	Email            *string   `db:"email" json:"email,omitempty"`
	LoginMethod      *string   `db:"login_method" json:"login_method,omitempty"`
	Role             Role      `db:"role" json:"role"`
	StripeCustomerID *string   `db:"stripe_customer_id" json:"stripe_customer_id,omitempty"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
	LastSignedIn     time.Time `db:"last_signed_in" json:"last_signed_in"`
}

// Tier is a subscription level.
type Tier string

const (
	TierLite Tier = "lite"
	TierPro  Tier = "pro"
)

// Valid reports whether t is a known tier.
func (t Tier) Valid() bool {
	return t == TierLite || t == TierPro
}

// UserTier is the subscription state of a user, one row per user.
type UserTier struct {
	UserID    string    `db:"user_id" json:"user_id"`
	Tier      Tier      `db:"tier" json:"tier"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// UserPreferences holds saved defaults for the creation form.
type UserPreferences struct {
	UserID            string    `db:"user_id" json:"user_id"`
	DefaultArtistName *string   `db:"default_artist_name" json:"default_artist_name,omitempty"`
	DefaultTheme      *string   `db:"default_theme" json:"default_theme,omitempty"`
	SubtitlesEnabled  bool      `db:"subtitles_enabled" json:"subtitles_enabled"`
	CreatedAt         time.Time `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time `db:"updated_at" json:"updated_at"`
}

// PreferencesUpdate carries a partial preferences write; nil fields keep
// their stored value.
type PreferencesUpdate struct {
	DefaultArtistName *string
	DefaultTheme      *string
	SubtitlesEnabled  *bool
}
