package model

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// MobilePattern matches mainland mobile numbers: 1, then 3-9, then nine digits.
var MobilePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 100)),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 100)),
	)
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Nickname string `json:"nickname"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.Required,
			validation.Length(3, 50),
			validation.Match(usernamePattern),
			validation.By(notPhoneShaped),
		),
		validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&r.Phone, validation.Match(MobilePattern)),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 72)),
		validation.Field(&r.Nickname, validation.Length(0, 50)),
	)
}

// A username shaped like a phone number would never be routed to the
// username lookup at login.
func notPhoneShaped(value interface{}) error {
	s, _ := value.(string)
	if MobilePattern.MatchString(strings.TrimSpace(s)) {
		return errors.New("must not be a phone number")
	}
	return nil
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (r ChangePasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CurrentPassword, validation.Required),
		validation.Field(&r.NewPassword, validation.Required, validation.Length(6, 72)),
		validation.Field(&r.ConfirmPassword,
			validation.Required,
			validation.By(func(value interface{}) error {
				if s, _ := value.(string); s != r.NewPassword {
					return errors.New("does not match new password")
				}
				return nil
			}),
		),
	)
}

type UpdateStatusRequest struct {
	Status *int `json:"status"`
}

func (r UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Status, validation.NotNil, validation.In(int(UserStatusDisabled), int(UserStatusActive))),
	)
}

type ResetPasswordResponse struct {
	TemporaryPassword string `json:"temporary_password"`
}
