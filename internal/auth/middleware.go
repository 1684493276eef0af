package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bookmarket/bookmarket/internal/entities"
)

// Context keys for resolved identity
const (
	ContextKeyUserID = "auth_user_id"
	ContextKeyRole   = "auth_role"
)

// Middleware carries the per-route authorization guards. Token→userID
// resolution happens once in RequireAuth; everything downstream reads the
// resolved identity from the request context.
type Middleware struct {
	tokens  *TokenService
	service *Service
}

// NewMiddleware creates the authorization guards.
func NewMiddleware(tokens *TokenService, service *Service) *Middleware {
	return &Middleware{tokens: tokens, service: service}
}

// RequireAuth rejects requests without a valid bearer token (401) and
// stores the resolved user id and role in the context. The user row is
// re-read so revoked accounts and stale role claims are caught while the
// token is still unexpired.
func (m *Middleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthenticated(c, "authentication required")
			return
		}

		claims, err := m.tokens.Validate(token)
		if err != nil {
			abortUnauthenticated(c, "invalid or expired token")
			return
		}

		user, err := m.service.GetUserByID(claims.UserID)
		if err != nil {
			abortUnauthenticated(c, "invalid or expired token")
			return
		}

		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyRole, user.Role)
		c.Next()
	}
}

// RequireAdmin rejects non-admin callers (403). Must run after RequireAuth.
func (m *Middleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetUserRole(c) != entities.UserRoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":   "forbidden",
				"message": "admin privileges required",
			})
			return
		}
		c.Next()
	}
}

func abortUnauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":   "unauthenticated",
		"message": message,
	})
}

// bearerToken extracts the token from an "Authorization: Bearer <t>" header.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", false
	}
	return parts[1], true
}

// GetUserID retrieves the authenticated user's id from the context.
// Returns 0 when the request did not pass RequireAuth.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return 0
}

// GetUserRole retrieves the authenticated user's role from the context.
func GetUserRole(c *gin.Context) entities.UserRole {
	if r, exists := c.Get(ContextKeyRole); exists {
		if role, ok := r.(entities.UserRole); ok {
			return role
		}
	}
	return ""
}
