package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/GabKongroo/NothingSpecial/pkg/jwt"
	"github.com/gin-gonic/gin"
)

const (
	OperatorKey = "operator"
	TokenKey    = "token"
)

// TokenValidator checks a bearer token.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, token string) (*jwt.Claims, error)
}

// BearerToken extracts the token of an "Authorization: Bearer" header.
func BearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}

// Auth requires a valid, non revoked access token.
func Auth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := validator.ValidateAccessToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		c.Set(OperatorKey, claims.Subject)
		c.Set(TokenKey, token)
		c.Next()
	}
}
