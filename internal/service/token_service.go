package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"go-user-auth/internal/config"
	"go-user-auth/internal/model"
)

// ErrWeakSigningSecret is a startup configuration error: the process must not
// serve traffic without a strong signing key.
var ErrWeakSigningSecret = fmt.Errorf("jwt signing secret must be at least %d bytes", config.MinJWTSecretBytes)

type tokenClaims struct {
	UserID int64 `json:"userId"`
	jwt.RegisteredClaims
}

type TokenOption func(*TokenService)

// WithClock replaces the time source used for issuing and validating tokens.
func WithClock(now func() time.Time) TokenOption {
	return func(s *TokenService) {
		s.now = now
	}
}

// TokenService issues and verifies HS256 tokens. The key is derived once in
// NewTokenService and never changes, so all methods are safe for concurrent use.
type TokenService struct {
	key    []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

func NewTokenService(secret string, ttl time.Duration, opts ...TokenOption) (*TokenService, error) {
	if len(secret) < config.MinJWTSecretBytes {
		return nil, ErrWeakSigningSecret
	}
	if ttl <= 0 {
		return nil, errors.New("token ttl must be positive")
	}

	s := &TokenService{
		key: []byte(secret),
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.parser = jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)

	return s, nil
}

func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for the user and returns it with its expiry.
func (s *TokenService) Issue(username string, userID int64) (string, time.Time, error) {
	now := s.now()
	expiresAt := now.Add(s.ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Validate reports whether the token is well formed, signed with the
// configured key and inside its validity window. It never returns an error.
func (s *TokenService) Validate(token string) bool {
	_, err := s.parse(token)
	return err == nil
}

// Claims extracts identity from a token. Callers are expected to Validate
// first; an invalid token yields model.ErrTokenInvalid.
func (s *TokenService) Claims(token string) (model.TokenClaims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return model.TokenClaims{}, err
	}

	return model.TokenClaims{Username: claims.Subject, UserID: claims.UserID}, nil
}

func (s *TokenService) parse(token string) (*tokenClaims, error) {
	if token == "" {
		return nil, model.ErrTokenInvalid
	}

	claims := &tokenClaims{}
	parsed, err := s.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.key, nil
	})
	if err != nil || !parsed.Valid {
		return nil, fmt.Errorf("%w: %v", model.ErrTokenInvalid, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", model.ErrTokenInvalid)
	}

	return claims, nil
}
