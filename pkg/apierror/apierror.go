package apierror

import "fmt"

// Numeric business codes carried in the response envelope.
const (
	CodeOK                 = 0
	CodeBadRequest         = 40000
	CodeUnauthorized       = 40100
	CodeInvalidCredentials = 40101
	CodeForbidden          = 40300
	CodeAccountDisabled    = 40301
	CodeNotFound           = 40400
	CodeConflict           = 40900
	CodeResetRequired      = 40901
	CodeAccountLocked      = 42300
	CodeRateLimited        = 42900
	CodeInternal           = 50000
)

type APIError struct {
	Code       int    `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%d: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%d: %s", e.Code, e.Message)
}

func New(code int, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}
