package middleware

import (
	"fmt"
	"net/http"
	"time"

	"go-user-auth/pkg/apierror"
)

func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	message := fmt.Sprintf(`{"code":%d,"message":"request timed out"}`, apierror.CodeInternal)

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, message)
	}
}
