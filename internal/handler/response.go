package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"

	"go-user-auth/internal/model"
	"go-user-auth/pkg/apierror"
)

func writeSuccess(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Code:    apierror.CodeOK,
		Message: "success",
		Data:    data,
	})
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := apierror.CodeInternal
	message := "Unexpected server error"
	var data any

	var apiErr *apierror.APIError
	var validationErrs validation.Errors
	if errors.As(err, &apiErr) {
		status = apiErr.HTTPStatus
		code = apiErr.Code
		message = apiErr.Message
		if apiErr.Details != "" {
			data = map[string]string{"details": apiErr.Details}
		}
	} else if errors.As(err, &validationErrs) {
		status = http.StatusBadRequest
		code = apierror.CodeBadRequest
		message = "Invalid request"
		data = validationErrs
	} else if errors.Is(err, model.ErrInvalidCredentials) {
		// Unknown user, wrong password and unverifiable hash are indistinguishable.
		status = http.StatusUnauthorized
		code = apierror.CodeInvalidCredentials
		message = "Invalid username or password"
	} else if errors.Is(err, model.ErrAccountLocked) {
		status = http.StatusLocked
		code = apierror.CodeAccountLocked
		message = "Account is locked, try again later"
	} else if errors.Is(err, model.ErrAccountDisabled) {
		status = http.StatusForbidden
		code = apierror.CodeAccountDisabled
		message = "Account is disabled"
	} else if errors.Is(err, model.ErrInvalidPassword) {
		status = http.StatusBadRequest
		code = apierror.CodeBadRequest
		message = "Current password is incorrect"
	} else if errors.Is(err, model.ErrUserNotFound) {
		status = http.StatusNotFound
		code = apierror.CodeNotFound
		message = "User not found"
	} else if errors.Is(err, model.ErrUserAlreadyExists) {
		status = http.StatusConflict
		code = apierror.CodeConflict
		message = "User already exists"
	} else if errors.Is(err, model.ErrUnauthorized) || errors.Is(err, model.ErrTokenInvalid) {
		status = http.StatusUnauthorized
		code = apierror.CodeUnauthorized
		message = "Authentication required"
	} else if errors.Is(err, model.ErrForbidden) {
		status = http.StatusForbidden
		code = apierror.CodeForbidden
		message = "Access denied"
	} else if errors.Is(err, model.ErrInvalidInput) {
		status = http.StatusBadRequest
		code = apierror.CodeBadRequest
		message = "Invalid input"
	} else {
		slog.Error("unhandled error in writeError", "error", err.Error())
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Code:    code,
		Message: message,
		Data:    data,
	})
}
