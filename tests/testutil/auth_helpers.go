package testutil

import (
	"net/http"
	"strings"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/ducali/ducali-api/middleware"
	"github.com/gin-gonic/gin"
)

// MockValidatedClaims creates a mock ValidatedClaims for testing
func MockValidatedClaims(subject, role string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "https://ducali-test.auth0.com/",
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
			Role:  role,
		},
	}
}

// MockAuthMiddleware stands in for EnsureValidToken, storing claims the same way it does
func MockAuthMiddleware(auth0ID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", auth0ID)
		c.Set("access_token", accessToken)
		c.Set("validated_claims", MockValidatedClaims(auth0ID, role, nil))
		c.Next()
	}
}

// AuthHeaderMiddleware authenticates from X-Test-User, X-Test-Role and the optional
// X-Test-Token headers, letting one router serve requests from several users
func AuthHeaderMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		auth0ID := c.GetHeader("X-Test-User")
		if auth0ID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "INVALID_TOKEN", "message": "Failed to validate JWT."},
			})
			return
		}
		token := c.GetHeader("X-Test-Token")
		if token == "" {
			token = "test-token"
		}
		MockAuthMiddleware(auth0ID, c.GetHeader("X-Test-Role"), token)(c)
	}
}
