package handler

import (
	"net/http"

	"go-user-auth/internal/model"
)

var baseMenus = []model.MenuItem{
	{Path: "/dashboard", Name: "Dashboard", Icon: "home"},
	{Path: "/profile", Name: "Profile", Icon: "user"},
}

var adminMenus = []model.MenuItem{
	{Path: "/admin/users", Name: "User Management", Icon: "users"},
	{Path: "/admin/events", Name: "Login Events", Icon: "shield"},
}

type MenuHandler struct{}

func NewMenuHandler() *MenuHandler {
	return &MenuHandler{}
}

// List returns the navigation entries visible to the caller.
func (h *MenuHandler) List(w http.ResponseWriter, r *http.Request) {
	principal, err := principalFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	items := make([]model.MenuItem, 0, len(baseMenus)+len(adminMenus))
	items = append(items, baseMenus...)
	if principal.HasRole(model.RoleAdmin) {
		items = append(items, adminMenus...)
	}

	writeSuccess(w, http.StatusOK, items)
}
