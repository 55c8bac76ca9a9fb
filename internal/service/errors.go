package service

import (
	"errors"
	"fmt"
)

var (
	// ErrQuotaExceeded is returned when a lite user has used up today's clips.
	ErrQuotaExceeded = errors.New("quota_exceeded")
	// ErrTierNotFound means an authenticated user has no tier row; sign-in
	// is expected to provision one.
	ErrTierNotFound = errors.New("tier_not_found")
	ErrClipNotFound = errors.New("clip_not_found")
	ErrUserNotFound = errors.New("user_not_found")
	ErrInvalidTier  = errors.New("invalid_tier")
	// ErrBillingDisabled is returned by billing operations when Stripe is not configured.
	ErrBillingDisabled = errors.New("billing_disabled")
)

// QuotaExceededError carries the daily limit that was hit.
type QuotaExceededError struct {
	Limit int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("Lite users can only generate %d clips per day", e.Limit)
}

func (e *QuotaExceededError) Unwrap() error {
	return ErrQuotaExceeded
}
