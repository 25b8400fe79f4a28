package repositories

import (
	"context"
	"github.com/maxaizer/cv-matcher/internal/entities"
	gocache "github.com/patrickmn/go-cache"
	"time"
)

const tokenCacheTTL = 5 * time.Minute

type tokenRepository interface {
	Get(ctx context.Context, token string) (*entities.APIToken, error)
}

// CachedTokens keeps resolved tokens for a few minutes, never past their expiry.
type CachedTokens struct {
	repo  tokenRepository
	cache *gocache.Cache
	now   func() time.Time
}

func NewCachedTokens(repo tokenRepository) *CachedTokens {
	return &CachedTokens{
		repo:  repo,
		cache: gocache.New(tokenCacheTTL, 10*time.Minute),
		now:   time.Now,
	}
}

func (c *CachedTokens) GetUserID(ctx context.Context, token string) (string, error) {
	key := HashToken(token)
	now := c.now()

	if value, found := c.cache.Get(key); found {
		apiToken := value.(entities.APIToken)
		if apiToken.IsExpired(now) {
			c.cache.Delete(key)
			return "", nil
		}
		return apiToken.UserID, nil
	}

	apiToken, err := c.repo.Get(ctx, token)
	if err != nil || apiToken == nil || apiToken.IsExpired(now) {
		return "", err
	}

	ttl := tokenCacheTTL
	if apiToken.ExpiresAt != nil {
		ttl = min(ttl, apiToken.ExpiresAt.Sub(now))
	}
	c.cache.Set(key, *apiToken, ttl)

	return apiToken.UserID, nil
}
