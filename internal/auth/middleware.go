package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/chumash/internal/config"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyAuthType = "auth_type" // "bearer" or "none"
)

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBearer AuthType = "bearer"
)

// DefaultUserID is used when authentication is disabled
const DefaultUserID = "local"

// Middleware handles authentication for HTTP requests.
type Middleware struct {
	tokens      *TokenService
	config      config.Auth
	publicPaths map[string]bool
}

func NewMiddleware(tokens *TokenService, cfg config.Auth) *Middleware {
	return &Middleware{
		tokens: tokens,
		config: cfg,
		publicPaths: map[string]bool{
			"/health": true,
			"/ping":   true,
		},
	}
}

// Handler returns a Gin middleware that sets the user id on the context.
// In jwt mode, requests outside the public paths without a valid bearer
// token are rejected with 401.
func (m *Middleware) Handler() gin.HandlerFunc {
	if m.config.Mode != config.AuthModeJWT {
		return func(c *gin.Context) {
			c.Set(ContextKeyUserID, DefaultUserID)
			c.Set(ContextKeyAuthType, AuthTypeNone)
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if m.publicPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		userID, err := m.bearerUser(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Set(ContextKeyAuthType, AuthTypeBearer)
		c.Next()
	}
}

func (m *Middleware) bearerUser(c *gin.Context) (string, error) {
	token := bearerToken(c.GetHeader("Authorization"))
	if token == "" {
		// Browsers cannot set headers on websocket upgrades
		token = c.Query("access_token")
	}
	if token == "" {
		return "", ErrInvalidToken
	}
	return m.tokens.Validate(token)
}

func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// GetUserID retrieves the authenticated user's id from the context.
func GetUserID(c *gin.Context) string {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(string); ok {
			return userID
		}
	}
	return ""
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeNone
}
