package repositories

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"github.com/maxaizer/cv-matcher/internal/entities"
	"gorm.io/gorm"
	"time"
)

type Tokens struct {
	db *gorm.DB
}

func NewTokensRepository(db *gorm.DB) *Tokens {
	return &Tokens{db: db}
}

func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func (repo *Tokens) Add(ctx context.Context, token string, userID string, expiresAt *time.Time) error {
	return repo.db.WithContext(ctx).Create(&entities.APIToken{
		TokenHash: HashToken(token),
		UserID:    userID,
		ExpiresAt: expiresAt,
	}).Error
}

// Get returns the stored token, or nil for unknown tokens.
func (repo *Tokens) Get(ctx context.Context, token string) (*entities.APIToken, error) {
	var apiToken entities.APIToken
	if err := repo.db.WithContext(ctx).First(&apiToken, "token_hash = ?", HashToken(token)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &apiToken, nil
}

// GetUserID returns the owner of a token, or an empty string for unknown and expired tokens.
func (repo *Tokens) GetUserID(ctx context.Context, token string) (string, error) {
	apiToken, err := repo.Get(ctx, token)
	if err != nil || apiToken == nil {
		return "", err
	}
	if apiToken.IsExpired(time.Now()) {
		return "", nil
	}
	return apiToken.UserID, nil
}
