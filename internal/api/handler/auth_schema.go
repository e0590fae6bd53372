package handler

import (
	"time"

	"github.com/pomodoro-hub/auth-service/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// loginForm mirrors the OAuth2 password grant form; grant_type and scope are
// accepted and ignored.
type loginForm struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type passwordChangeRequest struct {
	OldPassword string `json:"old_password" validate:"required,min=6,max=40"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=40"`
}

type registerRequest struct {
	Username string `json:"username"  validate:"required,username"`
	Email    string `json:"email"     validate:"required,email"`
	Password string `json:"password"  validate:"required,min=6,max=40"`
	IsActive *bool  `json:"is_active"`
}

type userResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u *domain.Credential) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
