package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-user-auth/internal/middleware"
	"go-user-auth/internal/model"
	"go-user-auth/pkg/apierror"
)

const maxBodyBytes = 1 << 20

// validatable is implemented by the request payloads in model.
type validatable interface {
	Validate() error
}

// decodeJSON reads a JSON body into payload and runs its validation rules.
func decodeJSON(w http.ResponseWriter, r *http.Request, payload validatable) error {
	defer r.Body.Close()

	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(payload); err != nil {
		return apierror.New(apierror.CodeBadRequest, "invalid JSON body", "", http.StatusBadRequest)
	}

	return payload.Validate()
}

func principalFromRequest(r *http.Request) (*model.Principal, error) {
	p, _ := middleware.PrincipalFromContext(r.Context())
	if err := middleware.Authorize(p, ""); err != nil {
		return nil, err
	}
	return p, nil
}

func pathUserID(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.New(apierror.CodeBadRequest, "user id must be a positive integer", "id", http.StatusBadRequest)
	}
	return id, nil
}

func parseIntOrDefault(raw string, fallback int) int {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}
