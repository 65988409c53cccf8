package model

import (
	"errors"
	"fmt"
)

var (
	// User related errors
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
	ErrInvalidPassword   = errors.New("invalid password")

	// Login related errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrAccountLocked      = errors.New("account locked")

	// ErrPasswordResetRequired is returned when the stored hash is not in a
	// verifiable format. It is an ErrInvalidCredentials to callers.
	ErrPasswordResetRequired = fmt.Errorf("%w: password must be reset", ErrInvalidCredentials)

	// Token related errors
	ErrTokenInvalid = errors.New("token invalid")

	// Permission/Access related errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	// Generic errors
	ErrInvalidInput = errors.New("invalid input")
)
