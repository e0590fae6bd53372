package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/pomodoro-hub/auth-service/internal/core/domain"
)

// PrincipalContextKey is where the Auth middleware stores the resolved account.
const PrincipalContextKey = "principal"

// SetPrincipal attaches the authenticated account to the request context.
func SetPrincipal(c echo.Context, principal *domain.Credential) {
	c.Set(PrincipalContextKey, principal)
}

// Principal returns the account injected by the Auth middleware, or
// domain.ErrUnauthenticated when the route was reached without it.
func Principal(c echo.Context) (*domain.Credential, error) {
	p, _ := c.Get(PrincipalContextKey).(*domain.Credential)
	if p == nil {
		return nil, domain.ErrUnauthenticated
	}
	return p, nil
}
