package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"go-user-auth/internal/metrics"
	"go-user-auth/internal/model"
	"go-user-auth/internal/service"
	"go-user-auth/pkg/apierror"
)

type tokenVerifier interface {
	Validate(token string) bool
	Claims(token string) (model.TokenClaims, error)
}

type userFinder interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
}

type roleLookup interface {
	RolesOf(ctx context.Context, userID int64) ([]string, error)
}

type contextKey string

const principalContextKey contextKey = "principal"

const bearerPrefix = "bearer "

// AuthMiddleware resolves a bearer token into a request-scoped principal.
type AuthMiddleware struct {
	tokens  tokenVerifier
	users   userFinder
	roles   roleLookup
	metrics *metrics.Metrics
}

func NewAuthMiddleware(tokens tokenVerifier, users userFinder, roles roleLookup, m *metrics.Metrics) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users, roles: roles, metrics: m}
}

// Authenticate never rejects a request. When the bearer token is valid and
// names an active user whose id matches the claim, the principal is attached
// to the request context; otherwise the request proceeds anonymously.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := PrincipalFromContext(r.Context()); ok {
			next.ServeHTTP(w, r)
			return
		}

		principal, outcome := m.resolve(r)
		m.metrics.ObserveFilter(outcome)

		if principal != nil {
			r = r.WithContext(WithPrincipal(r.Context(), principal))
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) resolve(r *http.Request) (*model.Principal, string) {
	token, ok := bearerToken(r)
	if !ok {
		return nil, metrics.FilterAnonymous
	}

	if !m.tokens.Validate(token) {
		return nil, metrics.FilterInvalidToken
	}

	claims, err := m.tokens.Claims(token)
	if err != nil {
		return nil, metrics.FilterInvalidToken
	}

	ctx := r.Context()
	user, err := m.users.FindByUsername(ctx, claims.Username)
	if errors.Is(err, model.ErrUserNotFound) {
		return nil, metrics.FilterUnknownUser
	}
	if err != nil {
		slog.Warn("auth filter user lookup failed", "username", claims.Username, "error", err)
		return nil, metrics.FilterError
	}

	if user.ID != claims.UserID {
		slog.Debug("auth filter token user id mismatch", "username", claims.Username)
		return nil, metrics.FilterUnknownUser
	}

	if !user.IsActive() {
		return nil, metrics.FilterInactiveUser
	}

	codes, err := m.roles.RolesOf(ctx, user.ID)
	if err != nil {
		slog.Warn("auth filter role lookup failed", "user_id", user.ID, "error", err)
		return nil, metrics.FilterError
	}

	return service.NewPrincipal(user, codes), metrics.FilterAuthenticated
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(header) <= len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// Authorize is the single access decision: nil allows, ErrUnauthorized means
// no identity, ErrForbidden means the identity lacks role. An empty role only
// requires authentication.
func Authorize(p *model.Principal, role string) error {
	if p == nil {
		return model.ErrUnauthorized
	}
	if role != "" && !p.HasRole(role) {
		return model.ErrForbidden
	}
	return nil
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return m.RequireRole("")(next)
}

func (m *AuthMiddleware) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, _ := PrincipalFromContext(r.Context())

			switch err := Authorize(principal, role); {
			case errors.Is(err, model.ErrUnauthorized):
				writeEnvelope(w, http.StatusUnauthorized, apierror.CodeUnauthorized, "authentication required")
				return
			case errors.Is(err, model.ErrForbidden):
				writeEnvelope(w, http.StatusForbidden, apierror.CodeForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func WithPrincipal(ctx context.Context, p *model.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, p)
}

func PrincipalFromContext(ctx context.Context) (*model.Principal, bool) {
	p, ok := ctx.Value(principalContextKey).(*model.Principal)
	return p, ok && p != nil
}
