package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/pomodoro-hub/auth-service/internal/core/domain"
	"github.com/pomodoro-hub/auth-service/internal/core/ports"
)

type stubAuthService struct {
	authenticateFn   func(ctx context.Context, username, password string) (*domain.AuthToken, error)
	changePasswordFn func(ctx context.Context, req domain.PasswordChange, current *domain.Credential) error
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*domain.Credential, error)
}

func (s *stubAuthService) Authenticate(ctx context.Context, username, password string) (*domain.AuthToken, error) {
	return s.authenticateFn(ctx, username, password)
}

func (s *stubAuthService) ChangePassword(ctx context.Context, req domain.PasswordChange, current *domain.Credential) error {
	return s.changePasswordFn(ctx, req, current)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Credential, error) {
	return s.registerFn(ctx, in)
}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	return req
}

func jsonRequest(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		authenticateFn: func(ctx context.Context, username, password string) (*domain.AuthToken, error) {
			if username != "alice" || password != "Secret1" {
				t.Fatalf("unexpected args: %s %s", username, password)
			}
			return &domain.AuthToken{AccessToken: "token123", TokenType: domain.TokenTypeBearer}, nil
		},
	}
	handler := NewAuthHandler(stub)

	req := formRequest("/authorization", url.Values{"username": {"alice"}, "password": {"Secret1"}, "grant_type": {"password"}})
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["access_token"] != "token123" || resp["token_type"] != "Bearer" {
		t.Fatalf("unexpected token payload: %+v", resp)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		authenticateFn: func(ctx context.Context, username, password string) (*domain.AuthToken, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub)

	req := formRequest("/authorization", url.Values{"username": {"alice"}, "password": {"bad"}})
	c := e.NewContext(req, httptest.NewRecorder())

	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthHandler_UpdatePassword_Success(t *testing.T) {
	e := newEcho()
	principal := &domain.Credential{ID: "u-1", Username: "alice", Email: "alice@example.com", IsActive: true}
	stub := &stubAuthService{
		changePasswordFn: func(ctx context.Context, req domain.PasswordChange, current *domain.Credential) error {
			if req.OldPassword != "Secret1" || req.NewPassword != "Secret2" {
				t.Fatalf("unexpected change: %+v", req)
			}
			if current != principal {
				t.Fatalf("principal not forwarded")
			}
			return nil
		},
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest("/authorization/update_password", `{"old_password":"Secret1","new_password":"Secret2"}`), rec)
	SetPrincipal(c, principal)

	if err := handler.UpdatePassword(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "password") {
		t.Fatalf("response must not carry password material: %s", rec.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["username"] != "alice" || resp["is_active"] != true {
		t.Fatalf("unexpected profile payload: %+v", resp)
	}
}

func TestAuthHandler_UpdatePassword_ValidationErrors(t *testing.T) {
	cases := map[string]string{
		"short new":   `{"old_password":"Secret1","new_password":"abc"}`,
		"long new":    `{"old_password":"Secret1","new_password":"` + strings.Repeat("x", 41) + `"}`,
		"missing old": `{"new_password":"Secret2"}`,
		"bad json":    `{`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			e := newEcho()
			stub := &stubAuthService{
				changePasswordFn: func(ctx context.Context, req domain.PasswordChange, current *domain.Credential) error {
					t.Fatalf("should not be called")
					return nil
				},
			}
			handler := NewAuthHandler(stub)

			rec := httptest.NewRecorder()
			c := e.NewContext(jsonRequest("/authorization/update_password", body), rec)
			SetPrincipal(c, &domain.Credential{Username: "alice", IsActive: true})

			_ = handler.UpdatePassword(c)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestAuthHandler_UpdatePassword_ServiceErrorsPropagate(t *testing.T) {
	for _, want := range []error{domain.ErrInvalidArgument, domain.ErrInvalidCredentials, domain.ErrConflict} {
		e := newEcho()
		stub := &stubAuthService{
			changePasswordFn: func(ctx context.Context, req domain.PasswordChange, current *domain.Credential) error {
				return want
			},
		}
		handler := NewAuthHandler(stub)

		c := e.NewContext(jsonRequest("/authorization/update_password", `{"old_password":"Secret1","new_password":"Secret1"}`), httptest.NewRecorder())
		SetPrincipal(c, &domain.Credential{Username: "alice", IsActive: true})

		if err := handler.UpdatePassword(c); !errors.Is(err, want) {
			t.Fatalf("expected %v, got %v", want, err)
		}
	}
}

func TestAuthHandler_UpdatePassword_NoPrincipal(t *testing.T) {
	e := newEcho()
	handler := NewAuthHandler(&stubAuthService{})

	c := e.NewContext(jsonRequest("/authorization/update_password", `{}`), httptest.NewRecorder())

	if err := handler.UpdatePassword(c); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.Credential, error) {
			if in.Username != "alice" || in.Email != "alice@example.com" || in.Password != "Secret1" {
				t.Fatalf("unexpected input: %+v", in)
			}
			if !in.IsActive {
				t.Fatalf("is_active should default to true")
			}
			return &domain.Credential{ID: "u-1", Username: in.Username, Email: in.Email, IsActive: true}, nil
		},
	}
	handler := NewAuthHandler(stub)

	rec := httptest.NewRecorder()
	c := e.NewContext(jsonRequest("/authorization/user", `{"username":"alice","email":"alice@example.com","password":"Secret1"}`), rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "Secret1") {
		t.Fatalf("response leaked the password: %s", rec.Body.String())
	}
}

func TestAuthHandler_Register_Inactive(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.Credential, error) {
			if in.IsActive {
				t.Fatalf("expected inactive account")
			}
			return &domain.Credential{Username: in.Username}, nil
		},
	}
	handler := NewAuthHandler(stub)

	c := e.NewContext(jsonRequest("/authorization/user", `{"username":"alice","email":"alice@example.com","password":"Secret1","is_active":false}`), httptest.NewRecorder())

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
}

func TestAuthHandler_Register_InvalidUsername(t *testing.T) {
	for _, username := range []string{"abc", "_alice", "alice.", "al..ice", "al ice", "averyveryverylongusername"} {
		e := newEcho()
		stub := &stubAuthService{
			registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.Credential, error) {
				t.Fatalf("should not be called for %q", username)
				return nil, nil
			},
		}
		handler := NewAuthHandler(stub)

		rec := httptest.NewRecorder()
		body := `{"username":"` + username + `","email":"a@example.com","password":"Secret1"}`
		c := e.NewContext(jsonRequest("/authorization/user", body), rec)

		_ = handler.Register(c)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%q: expected 400, got %d", username, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "username") {
			t.Fatalf("%q: message should name the field: %s", username, rec.Body.String())
		}
	}
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	e := newEcho()
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*domain.Credential, error) {
			return nil, domain.ErrConflict
		},
	}
	handler := NewAuthHandler(stub)

	c := e.NewContext(jsonRequest("/authorization/user", `{"username":"alice","email":"alice@example.com","password":"Secret1"}`), httptest.NewRecorder())

	if err := handler.Register(c); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestValidator_PasswordLengthMatchesDomainRule(t *testing.T) {
	v := NewValidator()
	for _, pw := range []string{"пароль-надежный-длинный", strings.Repeat("ж", 40), strings.Repeat("ж", 41), "жжжжж"} {
		req := passwordChangeRequest{OldPassword: "Secret1", NewPassword: pw}
		accepted := v.Validate(&req) == nil
		if accepted != domain.ValidPassword(pw) {
			t.Fatalf("%q: validator accepted=%v, domain accepted=%v", pw, accepted, domain.ValidPassword(pw))
		}
	}
}
