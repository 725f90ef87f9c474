package middleware // middleware provides reusable HTTP middleware for the API

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/ticket-marketplace/internal/utils"
)

// JWTAuth returns an Echo middleware that validates a Bearer access
// token and injects the subject email and role claims into the request
// context under "email" and "role". The secret must match the one used
// when issuing tokens. Every failure mode (missing header, bad
// signature, wrong algorithm, expiry) collapses to a single 401 with a
// Bearer challenge so callers cannot probe token internals.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return unauthorized(c, "missing bearer token")
			}
			raw := strings.TrimPrefix(auth, "Bearer ")
			email, role, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return unauthorized(c, "invalid token")
			}
			c.Set("email", email)
			c.Set("role", role)
			return next(c)
		}
	}
}

func unauthorized(c echo.Context, msg string) error {
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(http.StatusUnauthorized, echo.Map{"error": msg})
}
