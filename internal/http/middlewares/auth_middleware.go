package middlewares

import (
	"context"
	"net/http"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type SessionResolver interface {
	Resolve(ctx context.Context, token string) (int64, error)
}

// AuthMiddleware guards every task route: it pulls the session token off the
// request cookie, resolves it against codec and registry, and injects the
// resolved user id. Handlers behind it never see a caller-supplied user id.
type AuthMiddleware struct {
	sessions SessionResolver
}

func NewAuthMiddleware(sessions SessionResolver) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

func (m *AuthMiddleware) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(auth.CookieName)

		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}

		userID, err := m.sessions.Resolve(c.Request.Context(), token)

		if err != nil {
			// Missing record, bad signature and expiry all look the same
			// from out here.
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}

		c.Set(ctxUserIDKey, userID)

		c.Next()
	}
}

// UserIDFromContext is how handlers read the identity the guard resolved,
// without knowing the magic key.
func UserIDFromContext(c *gin.Context) (int64, bool) {
	v, ok := c.Get(ctxUserIDKey)
	if !ok {
		return 0, false
	}

	id, ok := v.(int64)

	return id, ok
}
