package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/pomodoro-hub/auth-service/internal/api/handler"
	"github.com/pomodoro-hub/auth-service/internal/core/domain"
	"github.com/pomodoro-hub/auth-service/internal/core/ports"
)

// Auth resolves the bearer token into an account and stores it in the
// context. Every token or lookup failure is domain.ErrUnauthenticated; store
// outages are passed on unchanged.
func Auth(resolver ports.PrincipalResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return domain.ErrUnauthenticated
			}

			principal, err := resolver.ResolvePrincipal(c.Request().Context(), authHeader)
			if err != nil {
				return err
			}

			handler.SetPrincipal(c, principal)
			return next(c)
		}
	}
}
