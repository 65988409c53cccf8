package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-user-auth/internal/middleware"
	"go-user-auth/internal/model"
	"go-user-auth/internal/service"
	"go-user-auth/pkg/apierror"
)

type stubService struct {
	loginErr    error
	lastLogin   service.LoginInput
	lastUnlock  int64
	lastStatus  model.UserStatus
	passwordErr error
}

func (s *stubService) Login(_ context.Context, in service.LoginInput) (model.AuthResponse, error) {
	s.lastLogin = in
	if s.loginErr != nil {
		return model.AuthResponse{}, s.loginErr
	}
	return model.AuthResponse{Token: "tok", TokenType: "Bearer", User: model.UserView{ID: 1, Username: in.Identifier}}, nil
}

func (s *stubService) Register(_ context.Context, in service.RegisterInput) (model.AuthResponse, error) {
	return model.AuthResponse{Token: "tok", TokenType: "Bearer", User: model.UserView{ID: 2, Username: in.Username}}, nil
}

func (s *stubService) Profile(p *model.Principal) (model.UserProfile, error) {
	return model.UserProfile{UserView: p.User.View(), Role: service.PrimaryRole(p.Roles), Roles: p.Roles}, nil
}

func (s *stubService) ChangePassword(context.Context, int64, string, string) error {
	return s.passwordErr
}

func (s *stubService) ResetPassword(context.Context, *model.Principal, int64) (string, error) {
	return "Temp0rary123", nil
}

func (s *stubService) Unlock(_ context.Context, _ *model.Principal, userID int64) error {
	s.lastUnlock = userID
	return nil
}

func (s *stubService) SetStatus(_ context.Context, _ *model.Principal, _ int64, status model.UserStatus) error {
	s.lastStatus = status
	return nil
}

func (s *stubService) RecentEvents(context.Context, int64, int) ([]model.AuthEvent, error) {
	return []model.AuthEvent{}, nil
}

var (
	plainUser = service.NewPrincipal(model.User{ID: 1, Username: "alice", Status: model.UserStatusActive}, []string{model.RoleUser})
	adminUser = service.NewPrincipal(model.User{ID: 2, Username: "root", Status: model.UserStatusActive}, []string{model.RoleUser, model.RoleAdmin})
)

func doRequest(t *testing.T, h http.HandlerFunc, method string, target string, body string, p *model.Principal) (*httptest.ResponseRecorder, model.APIResponse) {
	t.Helper()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if p != nil {
		req = req.WithContext(middleware.WithPrincipal(req.Context(), p))
	}

	rec := httptest.NewRecorder()
	h(rec, req)

	var envelope model.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return rec, envelope
}

func withUserID(h http.HandlerFunc, pattern string) http.HandlerFunc {
	r := chi.NewRouter()
	r.HandleFunc(pattern, h)
	return r.ServeHTTP
}

func TestLoginHandler(t *testing.T) {
	t.Run("success uses client ip and wraps the envelope", func(t *testing.T) {
		svc := &stubService{}
		h := NewAuthHandler(svc)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"alice","password":"pw"}`))
		req.Header.Set("X-Forwarded-For", "198.51.100.1")
		rec := httptest.NewRecorder()
		h.Login(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"code":0,"message":"success","data":{"token":"tok","token_type":"Bearer","expires_at":"0001-01-01T00:00:00Z","user":{"id":1,"username":"alice","email":"","nickname":"","status":0,"created_at":"0001-01-01T00:00:00Z"}}}`, rec.Body.String())
		assert.Equal(t, "198.51.100.1", svc.lastLogin.ClientIP)
	})

	cases := []struct {
		name   string
		err    error
		status int
		code   int
	}{
		{"invalid credentials", model.ErrInvalidCredentials, http.StatusUnauthorized, apierror.CodeInvalidCredentials},
		{"reset required looks like invalid credentials", model.ErrPasswordResetRequired, http.StatusUnauthorized, apierror.CodeInvalidCredentials},
		{"locked", model.ErrAccountLocked, http.StatusLocked, apierror.CodeAccountLocked},
		{"disabled", model.ErrAccountDisabled, http.StatusForbidden, apierror.CodeAccountDisabled},
		{"store failure", errors.New("db down"), http.StatusInternalServerError, apierror.CodeInternal},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewAuthHandler(&stubService{loginErr: tc.err})
			rec, body := doRequest(t, h.Login, http.MethodPost, "/api/v1/auth/login", `{"username":"alice","password":"pw"}`, nil)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, tc.code, body.Code)
		})
	}

	t.Run("locked message carries no lock details", func(t *testing.T) {
		h := NewAuthHandler(&stubService{loginErr: model.ErrAccountLocked})
		_, body := doRequest(t, h.Login, http.MethodPost, "/api/v1/auth/login", `{"username":"alice","password":"pw"}`, nil)
		assert.Equal(t, "Account is locked, try again later", body.Message)
		assert.Nil(t, body.Data)
	})

	t.Run("malformed and incomplete bodies", func(t *testing.T) {
		h := NewAuthHandler(&stubService{})

		rec, body := doRequest(t, h.Login, http.MethodPost, "/api/v1/auth/login", `{`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apierror.CodeBadRequest, body.Code)

		rec, body = doRequest(t, h.Login, http.MethodPost, "/api/v1/auth/login", `{"username":"alice"}`, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, apierror.CodeBadRequest, body.Code)
		assert.Contains(t, body.Data, "password")
	})
}

func TestRegisterHandler(t *testing.T) {
	h := NewAuthHandler(&stubService{})

	rec, body := doRequest(t, h.Register, http.MethodPost, "/api/v1/auth/register",
		`{"username":"carol","email":"carol@example.com","password":"secret1"}`, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, apierror.CodeOK, body.Code)

	rec, body = doRequest(t, h.Register, http.MethodPost, "/api/v1/auth/register",
		`{"username":"13812345678","email":"carol@example.com","password":"secret1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body.Data, "username")

	rec, _ = doRequest(t, h.Register, http.MethodPost, "/api/v1/auth/register",
		`{"username":"carol","email":"not-an-email","password":"secret1"}`, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutHandler(t *testing.T) {
	h := NewAuthHandler(&stubService{})
	rec, body := doRequest(t, h.Logout, http.MethodPost, "/api/v1/auth/logout", ``, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, apierror.CodeOK, body.Code)
}

func TestProfileHandler(t *testing.T) {
	h := NewUserHandler(&stubService{})

	rec, body := doRequest(t, h.Profile, http.MethodGet, "/api/v1/users/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, apierror.CodeUnauthorized, body.Code)

	rec, body = doRequest(t, h.Profile, http.MethodGet, "/api/v1/users/profile", "", adminUser)
	require.Equal(t, http.StatusOK, rec.Code)
	data := body.Data.(map[string]any)
	assert.Equal(t, model.RoleAdmin, data["role"])
	assert.Equal(t, "root", data["username"])
}

func TestChangePasswordHandler(t *testing.T) {
	svc := &stubService{}
	h := NewUserHandler(svc)

	rec, _ := doRequest(t, h.ChangePassword, http.MethodPut, "/api/v1/users/password",
		`{"current_password":"old-pass","new_password":"new-pass","confirm_password":"other"}`, plainUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := doRequest(t, h.ChangePassword, http.MethodPut, "/api/v1/users/password",
		`{"current_password":"old-pass","new_password":"new-pass","confirm_password":"new-pass"}`, plainUser)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, apierror.CodeOK, body.Code)

	svc.passwordErr = model.ErrInvalidPassword
	rec, body = doRequest(t, h.ChangePassword, http.MethodPut, "/api/v1/users/password",
		`{"current_password":"wrong","new_password":"new-pass","confirm_password":"new-pass"}`, plainUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Current password is incorrect", body.Message)

	svc.passwordErr = apierror.New(apierror.CodeResetRequired, "password must be reset by an administrator", "", http.StatusConflict)
	rec, body = doRequest(t, h.ChangePassword, http.MethodPut, "/api/v1/users/password",
		`{"current_password":"old-pass","new_password":"new-pass","confirm_password":"new-pass"}`, plainUser)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, apierror.CodeResetRequired, body.Code)
}

func TestMenuHandler(t *testing.T) {
	h := NewMenuHandler()

	_, body := doRequest(t, h.List, http.MethodGet, "/api/v1/menus", "", plainUser)
	assert.Len(t, body.Data, len(baseMenus))

	_, body = doRequest(t, h.List, http.MethodGet, "/api/v1/menus", "", adminUser)
	assert.Len(t, body.Data, len(baseMenus)+len(adminMenus))

	rec, _ := doRequest(t, h.List, http.MethodGet, "/api/v1/menus", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminHandler(t *testing.T) {
	svc := &stubService{}
	h := NewAdminHandler(svc)

	unlock := withUserID(h.Unlock, "/api/v1/admin/users/{id}/unlock")
	status := withUserID(h.SetStatus, "/api/v1/admin/users/{id}/status")
	reset := withUserID(h.ResetPassword, "/api/v1/admin/users/{id}/reset-password")

	rec, body := doRequest(t, unlock, http.MethodPost, "/api/v1/admin/users/7/unlock", "", plainUser)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apierror.CodeForbidden, body.Code)

	rec, _ = doRequest(t, unlock, http.MethodPost, "/api/v1/admin/users/7/unlock", "", adminUser)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), svc.lastUnlock)

	rec, _ = doRequest(t, unlock, http.MethodPost, "/api/v1/admin/users/abc/unlock", "", adminUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doRequest(t, status, http.MethodPut, "/api/v1/admin/users/7/status", `{"status":0}`, adminUser)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.UserStatusDisabled, svc.lastStatus)

	rec, _ = doRequest(t, status, http.MethodPut, "/api/v1/admin/users/7/status", `{"status":5}`, adminUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = doRequest(t, status, http.MethodPut, "/api/v1/admin/users/7/status", `{}`, adminUser)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	_, body = doRequest(t, reset, http.MethodPost, "/api/v1/admin/users/7/reset-password", "", adminUser)
	assert.Equal(t, map[string]any{"temporary_password": "Temp0rary123"}, body.Data)
}
