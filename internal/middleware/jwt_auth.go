package middleware

import (
	"strings"

	"github.com/anonto42/inkwell/backend/internal/identity"
	"github.com/labstack/echo/v4"
)

const (
	// TokenCookie is the name of the httpOnly session cookie
	TokenCookie = "token"
	// UserIDKey is where the authenticated user id is stored on the echo context
	UserIDKey = "userID"
	claimsKey = "user"
)

// JWTAuthMiddleware resolves the caller from the session cookie or a Bearer header.
// It never rejects a request: routes that need a user check UserID themselves.
func JWTAuthMiddleware(tokens *identity.Tokens) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := tokenFromRequest(c)
			if tokenString == "" {
				return next(c)
			}

			claims, err := tokens.Parse(tokenString)
			if err != nil {
				c.Logger().Debugf("ignoring session token: %v", err)
				return next(c)
			}

			c.Set(claimsKey, claims)
			c.Set(UserIDKey, claims.UserID)
			return next(c)
		}
	}
}

func tokenFromRequest(c echo.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	// Expecting "Bearer <token>"
	parts := strings.SplitN(c.Request().Header.Get(echo.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// UserID returns the authenticated user id, or 0 for anonymous requests
func UserID(c echo.Context) uint {
	id, _ := c.Get(UserIDKey).(uint)
	return id
}
