package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net/http"
	"strings"
	"time"

	"go-user-auth/internal/metrics"
	"go-user-auth/internal/model"
	"go-user-auth/pkg/apierror"
)

// UserStore is the subset of the user repository the auth flows need.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByPhone(ctx context.Context, phone string) (model.User, error)
	ExistsByIdentity(ctx context.Context, username string, email string, phone string) (string, error)
	Create(ctx context.Context, u *model.User, roleCodes ...string) error
	RecordFailedLogin(ctx context.Context, userID int64, now time.Time, maxAttempts int, lockUntil time.Time) (int, *time.Time, error)
	ResetFailedAttempts(ctx context.Context, userID int64) error
	CompleteLogin(ctx context.Context, userID int64, now time.Time) (bool, error)
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time, ip string) error
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	UpdateStatus(ctx context.Context, userID int64, status model.UserStatus) error
}

type AuditStore interface {
	Log(ctx context.Context, event model.AuthEvent) error
	ListForUser(ctx context.Context, userID int64, limit int) ([]model.AuthEvent, error)
}

type IdentifierKind string

const (
	IdentifierUsername IdentifierKind = "username"
	IdentifierEmail    IdentifierKind = "email"
	IdentifierPhone    IdentifierKind = "phone"
)

// ResolveIdentifier decides which lookup a login identifier goes through.
func ResolveIdentifier(identifier string) IdentifierKind {
	switch {
	case strings.Contains(identifier, "@"):
		return IdentifierEmail
	case model.MobilePattern.MatchString(identifier):
		return IdentifierPhone
	default:
		return IdentifierUsername
	}
}

// LockoutPolicy controls brute-force protection.
type LockoutPolicy struct {
	MaxAttempts  int
	LockDuration time.Duration
}

func DefaultLockoutPolicy() LockoutPolicy {
	return LockoutPolicy{MaxAttempts: 5, LockDuration: 30 * time.Minute}
}

type LoginInput struct {
	Identifier string
	Password   string
	ClientIP   string
}

type RegisterInput struct {
	Username string
	Email    string
	Phone    string
	Password string
	Nickname string
}

type AuthService struct {
	users     UserStore
	tokens    *TokenService
	passwords *PasswordHasher
	audit     AuditStore
	metrics   *metrics.Metrics
	policy    LockoutPolicy
	now       func() time.Time
}

func NewAuthService(
	users UserStore,
	tokens *TokenService,
	passwords *PasswordHasher,
	audit AuditStore,
	m *metrics.Metrics,
	policy LockoutPolicy,
) *AuthService {
	if policy.MaxAttempts <= 0 || policy.LockDuration <= 0 {
		policy = DefaultLockoutPolicy()
	}

	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		audit:     audit,
		metrics:   m,
		policy:    policy,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// SetClock is used by tests to control lockout timing.
func (s *AuthService) SetClock(now func() time.Time) {
	s.now = now
}

// Login runs the credential state machine: lookup, disabled gate, lock gate,
// hash format check, password check, then counter bookkeeping.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (model.AuthResponse, error) {
	identifier := strings.TrimSpace(in.Identifier)
	kind := ResolveIdentifier(identifier)

	user, err := s.lookup(ctx, kind, identifier)
	if errors.Is(err, model.ErrUserNotFound) {
		slog.Debug("login rejected: unknown identifier", "kind", kind, "identifier", identifier)
		s.recordLogin(ctx, nil, identifier, in.ClientIP, model.AuthStatusFailure, "unknown_identifier")
		s.metrics.ObserveLogin(metrics.LoginInvalidCredentials)
		return model.AuthResponse{}, model.ErrInvalidCredentials
	}
	if err != nil {
		s.metrics.ObserveLogin(metrics.LoginError)
		return model.AuthResponse{}, err
	}

	if !user.IsActive() {
		slog.Debug("login rejected: account disabled", "user_id", user.ID)
		s.recordLogin(ctx, &user.ID, identifier, in.ClientIP, model.AuthStatusFailure, "disabled")
		s.metrics.ObserveLogin(metrics.LoginDisabled)
		return model.AuthResponse{}, model.ErrAccountDisabled
	}

	now := s.now()
	if user.IsLocked(now) {
		slog.Debug("login rejected: account locked", "user_id", user.ID, "locked_until", *user.LockedUntil)
		s.recordLogin(ctx, &user.ID, identifier, in.ClientIP, model.AuthStatusFailure, "locked")
		s.metrics.ObserveLogin(metrics.LoginLocked)
		return model.AuthResponse{}, model.ErrAccountLocked
	}

	matched, err := s.passwords.Verify(in.Password, user.PasswordHash)
	if err != nil {
		slog.Warn("login rejected: stored password hash is not verifiable, reset required", "user_id", user.ID)
		s.recordLogin(ctx, &user.ID, identifier, in.ClientIP, model.AuthStatusFailure, "unsupported_hash")
		s.metrics.ObserveLogin(metrics.LoginInvalidCredentials)
		return model.AuthResponse{}, err
	}

	if !matched {
		attempts, lockedUntil, err := s.users.RecordFailedLogin(ctx, user.ID, now, s.policy.MaxAttempts, now.Add(s.policy.LockDuration))
		if err != nil {
			s.metrics.ObserveLogin(metrics.LoginError)
			return model.AuthResponse{}, err
		}

		slog.Debug("login rejected: wrong password", "user_id", user.ID, "attempts", attempts)
		if lockedUntil != nil && lockedUntil.After(now) {
			slog.Warn("account locked after repeated failed logins", "user_id", user.ID, "locked_until", *lockedUntil)
			s.metrics.ObserveLockout()
		}
		s.recordLogin(ctx, &user.ID, identifier, in.ClientIP, model.AuthStatusFailure, "wrong_password")
		s.metrics.ObserveLogin(metrics.LoginInvalidCredentials)
		return model.AuthResponse{}, model.ErrInvalidCredentials
	}

	// The row read above may predate a lock set by concurrent failures, so the
	// gate is re-evaluated by the store in the same statement that clears the counter.
	completed, err := s.users.CompleteLogin(ctx, user.ID, now)
	if err != nil {
		s.metrics.ObserveLogin(metrics.LoginError)
		return model.AuthResponse{}, err
	}
	if !completed {
		return model.AuthResponse{}, s.rejectCompletedLogin(ctx, user.ID, identifier, in.ClientIP)
	}
	user.LoginAttempts = 0
	user.LockedUntil = nil

	if err := s.users.UpdateLastLogin(ctx, user.ID, now, in.ClientIP); err != nil {
		slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}

	resp, err := s.issue(user)
	if err != nil {
		s.metrics.ObserveLogin(metrics.LoginError)
		return model.AuthResponse{}, err
	}

	slog.Info("user logged in", "user_id", user.ID, "username", user.Username, "client_ip", in.ClientIP)
	s.recordLogin(ctx, &user.ID, identifier, in.ClientIP, model.AuthStatusSuccess, "")
	s.metrics.ObserveLogin(metrics.LoginSuccess)
	return resp, nil
}

// rejectCompletedLogin reports why a verified login lost the race against a
// concurrent lock or status change.
func (s *AuthService) rejectCompletedLogin(ctx context.Context, userID int64, identifier string, ip string) error {
	current, err := s.users.FindByID(ctx, userID)
	if err == nil && !current.IsActive() {
		slog.Debug("login rejected: account disabled concurrently", "user_id", userID)
		s.recordLogin(ctx, &userID, identifier, ip, model.AuthStatusFailure, "disabled")
		s.metrics.ObserveLogin(metrics.LoginDisabled)
		return model.ErrAccountDisabled
	}

	slog.Debug("login rejected: account locked concurrently", "user_id", userID)
	s.recordLogin(ctx, &userID, identifier, ip, model.AuthStatusFailure, "locked")
	s.metrics.ObserveLogin(metrics.LoginLocked)
	return model.ErrAccountLocked
}

func (s *AuthService) lookup(ctx context.Context, kind IdentifierKind, identifier string) (model.User, error) {
	if identifier == "" {
		return model.User{}, model.ErrUserNotFound
	}

	switch kind {
	case IdentifierEmail:
		return s.users.FindByEmail(ctx, identifier)
	case IdentifierPhone:
		return s.users.FindByPhone(ctx, identifier)
	default:
		return s.users.FindByUsername(ctx, identifier)
	}
}

// Register creates an active USER account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.AuthResponse, error) {
	username := strings.TrimSpace(in.Username)
	email := strings.TrimSpace(in.Email)
	phone := strings.TrimSpace(in.Phone)

	taken, err := s.users.ExistsByIdentity(ctx, username, email, phone)
	if err != nil {
		return model.AuthResponse{}, err
	}
	if taken != "" {
		return model.AuthResponse{}, apierror.New(apierror.CodeConflict, taken+" already exists", taken, http.StatusConflict)
	}

	hash, err := s.passwords.Hash(in.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	nickname := strings.TrimSpace(in.Nickname)
	if nickname == "" {
		nickname = username
	}

	user := model.User{
		Username:     username,
		Email:        email,
		Nickname:     nickname,
		PasswordHash: hash,
		Status:       model.UserStatusActive,
	}
	if phone != "" {
		user.Phone = &phone
	}

	if err := s.users.Create(ctx, &user, model.RoleUser); err != nil {
		if errors.Is(err, model.ErrUserAlreadyExists) {
			return model.AuthResponse{}, apierror.New(apierror.CodeConflict, "user already exists", "", http.StatusConflict)
		}
		return model.AuthResponse{}, err
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	s.logEvent(ctx, model.AuthEvent{
		Action:     model.AuthActionRegister,
		Status:     model.AuthStatusSuccess,
		UserID:     &user.ID,
		Identifier: user.Username,
	})

	return s.issue(user)
}

// Profile builds the caller's profile; the primary role follows ADMIN precedence.
func (s *AuthService) Profile(p *model.Principal) (model.UserProfile, error) {
	if p == nil {
		return model.UserProfile{}, model.ErrUnauthorized
	}

	return model.UserProfile{
		UserView: p.User.View(),
		Role:     PrimaryRole(p.Roles),
		Roles:    p.Roles,
	}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int64, current string, next string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	matched, err := s.passwords.Verify(current, user.PasswordHash)
	if errors.Is(err, model.ErrPasswordResetRequired) {
		return apierror.New(apierror.CodeResetRequired, "password must be reset by an administrator", "", http.StatusConflict)
	}
	if err != nil {
		return err
	}
	if !matched {
		return model.ErrInvalidPassword
	}

	hash, err := s.passwords.Hash(next)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return err
	}

	slog.Info("password changed", "user_id", userID)
	return nil
}

// ResetPassword replaces the user's password with a random temporary one and
// returns it. Used by administrators, including for accounts whose stored hash
// is not verifiable.
func (s *AuthService) ResetPassword(ctx context.Context, actor *model.Principal, userID int64) (string, error) {
	if _, err := s.users.FindByID(ctx, userID); err != nil {
		return "", err
	}

	temporary, err := temporaryPassword(12)
	if err != nil {
		return "", err
	}

	hash, err := s.passwords.Hash(temporary)
	if err != nil {
		return "", err
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return "", err
	}

	slog.Info("password reset by administrator", "user_id", userID, "actor_id", actorID(actor))
	s.logEvent(ctx, model.AuthEvent{Action: model.AuthActionPasswordReset, Status: model.AuthStatusSuccess, UserID: &userID})
	return temporary, nil
}

// Unlock clears the failure counter and any lockout window.
func (s *AuthService) Unlock(ctx context.Context, actor *model.Principal, userID int64) error {
	if err := s.users.ResetFailedAttempts(ctx, userID); err != nil {
		return err
	}

	slog.Info("account unlocked by administrator", "user_id", userID, "actor_id", actorID(actor))
	s.logEvent(ctx, model.AuthEvent{Action: model.AuthActionUnlock, Status: model.AuthStatusSuccess, UserID: &userID})
	return nil
}

func (s *AuthService) SetStatus(ctx context.Context, actor *model.Principal, userID int64, status model.UserStatus) error {
	if actor != nil && actor.User.ID == userID && status != model.UserStatusActive {
		return apierror.New(apierror.CodeBadRequest, "administrators cannot disable their own account", "", http.StatusBadRequest)
	}

	if err := s.users.UpdateStatus(ctx, userID, status); err != nil {
		return err
	}

	slog.Info("account status changed", "user_id", userID, "status", status, "actor_id", actorID(actor))
	s.logEvent(ctx, model.AuthEvent{
		Action: model.AuthActionStatus,
		Status: model.AuthStatusSuccess,
		UserID: &userID,
		Reason: fmt.Sprintf("status=%d", status),
	})
	return nil
}

func (s *AuthService) RecentEvents(ctx context.Context, userID int64, limit int) ([]model.AuthEvent, error) {
	if s.audit == nil {
		return []model.AuthEvent{}, nil
	}
	return s.audit.ListForUser(ctx, userID, limit)
}

func (s *AuthService) issue(user model.User) (model.AuthResponse, error) {
	token, expiresAt, err := s.tokens.Issue(user.Username, user.ID)
	if err != nil {
		return model.AuthResponse{}, err
	}
	s.metrics.ObserveTokenIssued()

	return model.AuthResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: expiresAt,
		User:      user.View(),
	}, nil
}

func (s *AuthService) recordLogin(ctx context.Context, userID *int64, identifier string, ip string, status string, reason string) {
	s.logEvent(ctx, model.AuthEvent{
		Action:     model.AuthActionLogin,
		Status:     status,
		UserID:     userID,
		Identifier: identifier,
		ClientIP:   ip,
		Reason:     reason,
	})
}

// logEvent never fails the calling flow.
func (s *AuthService) logEvent(ctx context.Context, event model.AuthEvent) {
	if s.audit == nil {
		return
	}
	event.OccurredAt = s.now()
	if err := s.audit.Log(ctx, event); err != nil {
		slog.Warn("failed to write auth event", "action", event.Action, "error", err)
	}
}

func actorID(p *model.Principal) int64 {
	if p == nil {
		return 0
	}
	return p.User.ID
}

const temporaryPasswordAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func temporaryPassword(length int) (string, error) {
	out := make([]byte, length)
	limit := big.NewInt(int64(len(temporaryPasswordAlphabet)))
	for i := range out {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", fmt.Errorf("generate temporary password: %w", err)
		}
		out[i] = temporaryPasswordAlphabet[n.Int64()]
	}
	return string(out), nil
}
