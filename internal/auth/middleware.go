package auth

import (
	"context"
	"github.com/gin-gonic/gin"
	"github.com/maxaizer/cv-matcher/internal/logger"
	log "github.com/sirupsen/logrus"
	"net/http"
	"strings"
)

const ownerIDKey = "owner_id"

type tokenVerifier interface {
	GetUserID(ctx context.Context, token string) (string, error)
}

// Middleware rejects requests without a known bearer token and stores the token owner in the context.
func Middleware(tokens tokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing bearer token"})
			return
		}

		userID, err := tokens.GetUserID(c.Request.Context(), token)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).Errorf("failed to verify token: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal error"})
			return
		}
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid token"})
			return
		}

		c.Set(ownerIDKey, userID)
		c.Next()
	}
}

func OwnerID(c *gin.Context) string {
	return c.GetString(ownerIDKey)
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
