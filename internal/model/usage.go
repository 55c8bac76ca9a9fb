package model

import "time"

// DailyUsage counts clip generations per user per UTC calendar day.
type DailyUsage struct {
	UserID         string    `db:"user_id" json:"user_id"`
	Date           string    `db:"date" json:"date"` // YYYY-MM-DD
	ClipsGenerated int       `db:"clips_generated" json:"clips_generated"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
