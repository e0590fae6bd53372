package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/pomodoro-hub/auth-service/internal/core/domain"
	"github.com/pomodoro-hub/auth-service/internal/core/ports"
)

// AuthHandler serves the /authorization endpoints. Service errors are
// returned unchanged to the central error handler.
type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login exchanges a username and password for a bearer token.
//
// @Summary      Obtain an access token
// @Tags         authorization
// @Accept       x-www-form-urlencoded
// @Produce      json
// @Param        username  formData  string  true  "Username"
// @Param        password  formData  string  true  "Password"
// @Success      200       {object}  tokenResponse
// @Failure      401       {object}  errorResponse
// @Failure      500       {object}  errorResponse
// @Router       /authorization [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var form loginForm
	if err := c.Bind(&form); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	token, err := h.authService.Authenticate(c.Request().Context(), form.Username, form.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, tokenResponse{AccessToken: token.AccessToken, TokenType: token.TokenType})
}

// UpdatePassword rotates the caller's password and returns their profile.
//
// @Summary      Change password
// @Tags         authorization
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      passwordChangeRequest  true  "Old and new password"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /authorization/update_password [post]
func (h *AuthHandler) UpdatePassword(c echo.Context) error {
	principal, err := Principal(c)
	if err != nil {
		return err
	}

	var req passwordChangeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	change := domain.PasswordChange{OldPassword: req.OldPassword, NewPassword: req.NewPassword}
	if err := h.authService.ChangePassword(c.Request().Context(), change, principal); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toUserResponse(principal))
}

// Register creates a new account.
//
// @Summary      Register a user
// @Tags         authorization
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /authorization/user [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		IsActive: active,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toUserResponse(user))
}
