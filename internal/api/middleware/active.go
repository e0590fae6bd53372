package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/pomodoro-hub/auth-service/internal/api/handler"
	"github.com/pomodoro-hub/auth-service/internal/core/ports"
)

// RequireActive rejects principals whose account is deactivated. It must run
// after Auth.
func RequireActive(resolver ports.PrincipalResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			principal, err := handler.Principal(c)
			if err != nil {
				return err
			}
			if err := resolver.RequireActive(principal); err != nil {
				return err
			}
			return next(c)
		}
	}
}
