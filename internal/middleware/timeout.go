package middleware

import (
	"encoding/json"
	"net/http"
	"time"

	"go-survey-admin/internal/model"
)

const defaultRequestTimeout = 30 * time.Second

// Timeout bounds each request. The handler's context is cancelled when
// the deadline passes, which aborts any in-flight query.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	body, _ := json.Marshal(model.APIResponse{
		Success: false,
		Error:   &model.APIError{Code: "REQUEST_TIMEOUT", Message: "request timed out"},
	})

	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, string(body))
	}
}
