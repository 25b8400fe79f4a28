package auth

import (
	"context"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"net/http"
	"net/http/httptest"
	"testing"
)

type staticTokens map[string]string

func (s staticTokens) GetUserID(_ context.Context, token string) (string, error) {
	if token == "broken" {
		return "", errors.New("db is down")
	}
	return s[token], nil
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware(staticTokens{"secret": "alice"}))
	r.GET("/me", func(c *gin.Context) {
		c.String(http.StatusOK, OwnerID(c))
	})
	return r
}

func Test_Middleware_ShouldResolveOwner(t *testing.T) {
	tests := []struct {
		name   string
		header string
		status int
		body   string
	}{
		{"valid token", "Bearer secret", http.StatusOK, "alice"},
		{"lowercase scheme", "bearer secret", http.StatusOK, "alice"},
		{"missing header", "", http.StatusUnauthorized, ""},
		{"wrong scheme", "Basic secret", http.StatusUnauthorized, ""},
		{"unknown token", "Bearer other", http.StatusUnauthorized, ""},
		{"verifier failure", "Bearer broken", http.StatusInternalServerError, ""},
	}

	router := newTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}
