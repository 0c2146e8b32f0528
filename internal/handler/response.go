package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"go-survey-admin/internal/model"
	"go-survey-admin/pkg/apierror"
)

const maxBodyBytes = 1 << 20

func writeSuccess(w http.ResponseWriter, status int, data any, meta *model.Meta) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: true,
		Data:    data,
		Meta:    meta,
	})
}

// writeError maps service errors onto the response envelope. It is the
// only place an error becomes an HTTP status.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	body := &model.APIError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected server error",
	}

	var apiErr *apierror.APIError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatus
		body.Code = apiErr.Code
		body.Message = apiErr.Message
		body.Details = apiErr.Details
	case errors.Is(err, model.ErrInvalidCredentials):
		status, body.Code, body.Message = http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password"
	case errors.Is(err, model.ErrUnauthorized):
		status, body.Code, body.Message = http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required"
	case errors.Is(err, model.ErrForbidden):
		status, body.Code, body.Message = http.StatusForbidden, "FORBIDDEN", "Access denied"
	case errors.Is(err, model.ErrInvalidPassword):
		status, body.Code, body.Message = http.StatusBadRequest, "INVALID_PASSWORD", "Current password is incorrect"
	case errors.Is(err, model.ErrCannotDeleteSelf):
		status, body.Code, body.Message = http.StatusBadRequest, "BAD_REQUEST", "You cannot delete your own account"
	case errors.Is(err, model.ErrUserNotFound):
		status, body.Code, body.Message = http.StatusNotFound, "NOT_FOUND", "User not found"
	case errors.Is(err, model.ErrRoleNotFound):
		status, body.Code, body.Message = http.StatusNotFound, "NOT_FOUND", "Role not found"
	case errors.Is(err, model.ErrSurveyNotFound):
		status, body.Code, body.Message = http.StatusNotFound, "NOT_FOUND", "Survey not found"
	case errors.Is(err, model.ErrProgramNotFound):
		status, body.Code, body.Message = http.StatusNotFound, "NOT_FOUND", "Program not found"
	case errors.Is(err, model.ErrUserAlreadyExists):
		status, body.Code, body.Message = http.StatusConflict, "ALREADY_EXISTS", "User already exists"
	case errors.Is(err, model.ErrProgramFull):
		status, body.Code, body.Message = http.StatusConflict, "CONFLICT", "Program is full"
	case errors.Is(err, model.ErrProgramClosed):
		status, body.Code, body.Message = http.StatusConflict, "CONFLICT", "Program is not open for registration"
	case errors.Is(err, model.ErrAlreadyRegistered):
		status, body.Code, body.Message = http.StatusConflict, "CONFLICT", "Already registered for this program"
	case errors.Is(err, model.ErrInvalidInput):
		status, body.Code, body.Message = http.StatusBadRequest, "BAD_REQUEST", "Invalid input"
	default:
		slog.Error("unhandled error in writeError", "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(model.APIResponse{
		Success: false,
		Error:   body,
	})
}

// decodeJSON reads a single JSON document from the body into dst.
func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return apierror.BadRequest("invalid JSON body", "")
	}
	return nil
}

func parseIntOrDefault(raw string, fallback int) int {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}

	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}

	return v
}

func parseID(raw string, name string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.BadRequest(name+" must be a positive integer", raw)
	}
	return id, nil
}

// pathID reads the {id} URL parameter.
func pathID(r *http.Request) (int64, error) {
	return parseID(chi.URLParam(r, "id"), "id")
}

// queryID reads the ?id= query parameter.
func queryID(r *http.Request) (int64, error) {
	return parseID(r.URL.Query().Get("id"), "id")
}
