package handler

import (
	"context"
	"net/http"

	"go-user-auth/internal/middleware"
	"go-user-auth/internal/model"
	"go-user-auth/internal/service"
)

type authenticator interface {
	Login(ctx context.Context, in service.LoginInput) (model.AuthResponse, error)
	Register(ctx context.Context, in service.RegisterInput) (model.AuthResponse, error)
}

type AuthHandler struct {
	service authenticator
}

func NewAuthHandler(service authenticator) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.service.Login(r.Context(), service.LoginInput{
		Identifier: payload.Username,
		Password:   payload.Password,
		ClientIP:   middleware.ClientIP(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var payload model.RegisterRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.service.Register(r.Context(), service.RegisterInput{
		Username: payload.Username,
		Email:    payload.Email,
		Phone:    payload.Phone,
		Password: payload.Password,
		Nickname: payload.Nickname,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, resp)
}

// Logout is an acknowledgement only. Tokens are stateless and stay valid
// until they expire; clients discard them.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, map[string]any{"logged_out": true})
}
