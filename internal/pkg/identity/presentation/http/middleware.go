package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/IsraelChiamovich/second-hand-market/internal/pkg/identity/application/usecase"
)

// UserIDKey is the gin context key set by the auth middlewares.
const UserIDKey = "user_id"

// AuthRequired rejects requests without a valid bearer token.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFromHeader(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Set(UserIDKey, claims.UserID)
		c.Next()
	}
}

// AuthOptional sets the user id when a valid token is present and lets the
// request through either way.
func AuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := claimsFromHeader(c); ok {
			c.Set(UserIDKey, claims.UserID)
		}
		c.Next()
	}
}

// CallerID returns the authenticated user id, empty for anonymous requests.
func CallerID(c *gin.Context) string {
	v, _ := c.Get(UserIDKey)
	id, _ := v.(string)
	return id
}

func claimsFromHeader(c *gin.Context) (*usecase.Claims, bool) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, false
	}
	claims, err := usecase.ValidateToken(token)
	if err != nil {
		return nil, false
	}
	return claims, true
}
