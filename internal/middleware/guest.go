package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"upahar/internal/cart"
)

const guestCookieMaxAge = 30 * 24 * 60 * 60

// GuestSession gives anonymous callers a stable guest id for their cart.
// An id sent in the header or cookie is reused; otherwise one is issued and
// returned in both.
func GuestSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, signedIn := Caller(c); signedIn {
			c.Next()
			return
		}

		guestID := cart.GuestIDFromRequest(c.Request)
		if guestID == "" {
			guestID = uuid.New().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cart.GuestCookie, guestID, guestCookieMaxAge, "/", "", false, true)
		}

		c.Header(cart.GuestHeader, guestID)
		c.Set(GuestIDKey, guestID)
		c.Next()
	}
}
