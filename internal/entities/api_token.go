package entities

import "time"

// APIToken maps the SHA-256 hash of a bearer token to its owner.
type APIToken struct {
	TokenHash string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	ExpiresAt *time.Time
	CreatedAt time.Time
}

func (t APIToken) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && !now.Before(*t.ExpiresAt)
}
