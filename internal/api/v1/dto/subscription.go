package dto

// TierResponse is returned by GET /tier.
type TierResponse struct {
	Tier string `json:"tier"`
}

// SessionURLResponse carries a Stripe-hosted page URL.
type SessionURLResponse struct {
	URL string `json:"url"`
}
