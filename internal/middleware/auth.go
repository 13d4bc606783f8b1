package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"upahar/internal/auth"
)

// Context keys for the authenticated caller and the guest cart id.
const (
	UserIDKey    = "userID"
	UserEmailKey = "userEmail"
	UserRoleKey  = "userRole"
	GuestIDKey   = "guestID"
)

func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		claims, err := parseBearer(authHeader)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth attaches the caller when a valid token is present and lets
// anonymous requests through. A bad token is still rejected.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		claims, err := parseBearer(authHeader)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

type authError string

func (e authError) Error() string { return string(e) }

func parseBearer(header string) (*auth.Claims, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, authError("invalid authorization format, use 'Bearer <token>'")
	}

	claims, err := auth.ValidateToken(parts[1])
	if err != nil {
		return nil, authError("invalid token: " + err.Error())
	}
	return claims, nil
}

func setClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(UserIDKey, claims.UserID)
	c.Set(UserEmailKey, claims.Email)
	c.Set(UserRoleKey, claims.Role)
}

// Caller reads back the claims setClaims stored. ok is false when the
// request carried no valid token.
func Caller(c *gin.Context) (claims auth.Claims, ok bool) {
	claims.UserID = c.GetString(UserIDKey)
	claims.Email = c.GetString(UserEmailKey)
	claims.Role = c.GetString(UserRoleKey)
	return claims, claims.UserID != ""
}
