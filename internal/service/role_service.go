package service

import (
	"context"
	"fmt"

	"go-user-auth/internal/model"
)

type RoleStore interface {
	FindRoleCodesByUserID(ctx context.Context, userID int64) ([]string, error)
}

type RoleResolver struct {
	store RoleStore
}

func NewRoleResolver(store RoleStore) *RoleResolver {
	return &RoleResolver{store: store}
}

// RolesOf returns the user's role codes in store order.
func (r *RoleResolver) RolesOf(ctx context.Context, userID int64) ([]string, error) {
	codes, err := r.store.FindRoleCodesByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("resolve roles for user %d: %w", userID, err)
	}
	return codes, nil
}

// PrimaryRole picks ADMIN when present, otherwise the first code. A user
// without assignments is treated as USER.
func PrimaryRole(codes []string) string {
	if len(codes) == 0 {
		return model.RoleUser
	}
	for _, code := range codes {
		if code == model.RoleAdmin {
			return model.RoleAdmin
		}
	}
	return codes[0]
}

// Authorities maps role codes to ROLE_<code>, preserving order.
func Authorities(codes []string) []string {
	authorities := make([]string, 0, len(codes))
	for _, code := range codes {
		authorities = append(authorities, model.AuthorityPrefix+code)
	}
	return authorities
}

// NewPrincipal builds the request identity for an active user.
func NewPrincipal(user model.User, codes []string) *model.Principal {
	return &model.Principal{
		User:        user,
		Roles:       codes,
		Authorities: Authorities(codes),
	}
}
