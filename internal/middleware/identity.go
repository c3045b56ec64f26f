package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/cart"
)

// identityKey is where the resolved cart identity lives in the gin context.
const identityKey = "cartIdentity"

// SessionCookie names the cookie carrying the anonymous session key.
const SessionCookie = "storefront_session"

const sessionCookieMaxAge = int(365 * 24 * time.Hour / time.Second)

// Identity resolves who owns the cart for this request. A valid bearer token
// yields a user identity; otherwise the session cookie does, minted lazily
// on first contact. Exactly one side of the identity is ever populated.
func Identity(jwtSecret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format (must be Bearer)"})
				c.Abort()
				return
			}
			userID, err := auth.ValidateToken(jwtSecret, parts[1])
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
				c.Abort()
				return
			}
			c.Set(identityKey, cart.UserIdentity(userID))
			c.Next()
			return
		}

		sessionKey, err := c.Cookie(SessionCookie)
		if err != nil || sessionKey == "" {
			sessionKey = uuid.NewString()
			c.SetCookie(SessionCookie, sessionKey, sessionCookieMaxAge, "/", "", false, true)
		}
		c.Set(identityKey, cart.SessionIdentity(sessionKey))
		c.Next()
	}
}

// IdentityFromContext returns the cart identity set by the Identity
// middleware.
func IdentityFromContext(c *gin.Context) (cart.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return cart.Identity{}, false
	}
	identity, ok := value.(cart.Identity)
	return identity, ok
}
