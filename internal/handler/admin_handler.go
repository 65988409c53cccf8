package handler

import (
	"context"
	"net/http"

	"go-user-auth/internal/middleware"
	"go-user-auth/internal/model"
)

type accountAdmin interface {
	ResetPassword(ctx context.Context, actor *model.Principal, userID int64) (string, error)
	Unlock(ctx context.Context, actor *model.Principal, userID int64) error
	SetStatus(ctx context.Context, actor *model.Principal, userID int64, status model.UserStatus) error
	RecentEvents(ctx context.Context, userID int64, limit int) ([]model.AuthEvent, error)
}

// AdminHandler serves account maintenance for administrators. Routes are
// mounted behind RequireRole(ADMIN); each action re-checks the role.
type AdminHandler struct {
	service accountAdmin
}

func NewAdminHandler(service accountAdmin) *AdminHandler {
	return &AdminHandler{service: service}
}

func (h *AdminHandler) adminTarget(r *http.Request) (*model.Principal, int64, error) {
	actor, _ := middleware.PrincipalFromContext(r.Context())
	if err := middleware.Authorize(actor, model.RoleAdmin); err != nil {
		return nil, 0, err
	}

	userID, err := pathUserID(r)
	if err != nil {
		return nil, 0, err
	}

	return actor, userID, nil
}

func (h *AdminHandler) Unlock(w http.ResponseWriter, r *http.Request) {
	actor, userID, err := h.adminTarget(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Unlock(r.Context(), actor, userID); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"unlocked": true})
}

func (h *AdminHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	actor, userID, err := h.adminTarget(r)
	if err != nil {
		writeError(w, err)
		return
	}

	temporary, err := h.service.ResetPassword(r.Context(), actor, userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.ResetPasswordResponse{TemporaryPassword: temporary})
}

func (h *AdminHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	actor, userID, err := h.adminTarget(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.UpdateStatusRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	status := model.UserStatus(*payload.Status)
	if err := h.service.SetStatus(r.Context(), actor, userID, status); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"status": status})
}

func (h *AdminHandler) Events(w http.ResponseWriter, r *http.Request) {
	_, userID, err := h.adminTarget(r)
	if err != nil {
		writeError(w, err)
		return
	}

	limit := parseIntOrDefault(r.URL.Query().Get("limit"), 50)
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	events, err := h.service.RecentEvents(r.Context(), userID, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, events)
}
