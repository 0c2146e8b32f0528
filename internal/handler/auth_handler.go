package handler

import (
	"context"
	"net/http"
	"strings"

	"go-survey-admin/internal/model"
	"go-survey-admin/pkg/apierror"
)

type AuthService interface {
	Login(ctx context.Context, username string, password string) (model.LoginResponse, error)
	FindByUsername(ctx context.Context, username string) (model.UserResponse, error)
}

type AuthHandler struct {
	service AuthService
}

func NewAuthHandler(service AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload model.LoginRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	resp, err := h.service.Login(r.Context(), payload.Username, payload.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, resp, nil)
}

// FindByUsername serves GET /auth?username=.
func (h *AuthHandler) FindByUsername(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.URL.Query().Get("username"))
	if username == "" {
		writeError(w, apierror.BadRequest("username is required", "username"))
		return
	}

	user, err := h.service.FindByUsername(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}
