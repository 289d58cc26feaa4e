package middleware

import (
	"net/http"
	"strings"

	"github.com/anonto42/social-graph/backend/internal/identity"
	"github.com/labstack/echo/v4"
)

const principalKey = "principal"

// Auth verifies the bearer token with the identity provider and stores the
// principal in the request context.
func Auth(provider identity.Provider) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header is missing")
			}

			tokenParts := strings.Fields(authHeader)
			if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
			}

			principal, err := provider.Verify(c.Request().Context(), tokenParts[1])
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
			}

			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// Principal returns the principal stored by Auth
func Principal(c echo.Context) (*identity.Principal, bool) {
	p, ok := c.Get(principalKey).(*identity.Principal)
	return p, ok && p != nil
}
