package oauth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Verify returns a middleware that admits requests carrying a bearer token
// accepted by OnVerify. Missing or unknown tokens are rejected with 403 and no
// body; a callback error aborts the request with 500.
func (s *Service) Verify() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			s.logger.Debug().Err(ErrUnauthorized).Str("path", c.Request.URL.Path).Msg("Provider request without token")
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		userID, ok, err := s.cfg.Callbacks.OnVerify(c.Request.Context(), token)
		if err != nil {
			s.fail(c, fmt.Errorf("verify token through OnVerify: %w", err))
			return
		}
		if !ok {
			s.logger.Warn().Err(ErrUnauthorized).Str("path", c.Request.URL.Path).Msg("Received provider request with unknown token")
			c.AbortWithStatus(http.StatusForbidden)
			return
		}

		c.Set(string(userIDKey), userID)
		c.Request = c.Request.WithContext(WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// WithUserID returns a copy of ctx carrying userID
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the user id stored by Verify
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok
}

// UserID returns the user id of a verified request
func UserID(c *gin.Context) string {
	return c.GetString(string(userIDKey))
}

// bearerToken returns the credentials after the auth scheme
func bearerToken(header string) string {
	_, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}
