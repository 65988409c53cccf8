package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"go-user-auth/internal/model"
)

type fakeRoleStore struct {
	roles map[int64][]string
	err   error
}

func (f *fakeRoleStore) FindRoleCodesByUserID(_ context.Context, userID int64) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.roles[userID], nil
}

func TestPrimaryRole(t *testing.T) {
	t.Parallel()

	require.Equal(t, model.RoleAdmin, PrimaryRole([]string{"USER", "ADMIN"}))
	require.Equal(t, model.RoleAdmin, PrimaryRole([]string{"ADMIN", "USER"}))
	require.Equal(t, model.RoleUser, PrimaryRole([]string{"USER"}))
	require.Equal(t, "AUDITOR", PrimaryRole([]string{"AUDITOR", "USER"}))
	require.Equal(t, model.RoleUser, PrimaryRole(nil))
}

func TestAuthorities(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{"ROLE_USER", "ROLE_ADMIN"}, Authorities([]string{"USER", "ADMIN"}))
	require.Empty(t, Authorities(nil))
}

func TestRoleResolver(t *testing.T) {
	t.Parallel()

	resolver := NewRoleResolver(&fakeRoleStore{roles: map[int64][]string{7: {"USER", "ADMIN"}}})

	codes, err := resolver.RolesOf(context.Background(), 7)
	require.NoError(t, err)
	require.Equal(t, []string{"USER", "ADMIN"}, codes)

	codes, err = resolver.RolesOf(context.Background(), 8)
	require.NoError(t, err)
	require.Empty(t, codes)

	failing := NewRoleResolver(&fakeRoleStore{err: errors.New("db down")})
	_, err = failing.RolesOf(context.Background(), 7)
	require.ErrorContains(t, err, "db down")
}

func TestNewPrincipal(t *testing.T) {
	t.Parallel()

	p := NewPrincipal(model.User{ID: 1, Username: "root"}, []string{"USER", "ADMIN"})
	require.True(t, p.HasRole(model.RoleAdmin))
	require.True(t, p.HasAuthority("ROLE_USER"))
	require.False(t, p.HasRole("AUDITOR"))
}
