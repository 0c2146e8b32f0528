package handler

import (
	"context"
	"net/http"
	"strings"

	"go-survey-admin/internal/model"
)

type UserService interface {
	FindByID(ctx context.Context, id int64) (model.UserResponse, error)
	FindAll(ctx context.Context, filter model.UserFilter) ([]model.UserResponse, model.Meta, error)
	ListSpecialists(ctx context.Context) ([]model.UserResponse, error)
	ListUsers(ctx context.Context) ([]model.UserResponse, error)
	Create(ctx context.Context, actor model.AuditActor, req model.CreateUserRequest) (model.UserResponse, error)
	Update(ctx context.Context, actor model.AuditActor, id int64, req model.UpdateUserRequest) (model.UserResponse, error)
	Delete(ctx context.Context, actor model.AuditActor, id int64) error
	ChangePassword(ctx context.Context, actor model.AuditActor, id int64, req model.ChangePasswordRequest) error
}

type UserHandler struct {
	service UserService
}

func NewUserHandler(service UserService) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *UserHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	users, meta, err := h.service.FindAll(r.Context(), model.UserFilter{
		Keyword:   strings.TrimSpace(query.Get("keyword")),
		RoleName:  strings.TrimSpace(query.Get("roleName")),
		MajorName: strings.TrimSpace(query.Get("majorName")),
		Page:      parseIntOrDefault(query.Get("page"), 1),
		Limit:     parseIntOrDefault(query.Get("limit"), 5),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.UserListData{Items: users}, &meta)
}

func (h *UserHandler) ListSpecialists(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListSpecialists(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, model.UserListData{Items: users}, nil)
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, model.UserListData{Items: users}, nil)
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateUserRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.Create(r.Context(), actorFromRequest(r), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, user, nil)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.UpdateUserRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.service.Update(r.Context(), actorFromRequest(r), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, user, nil)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), actorFromRequest(r), id); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]int64{"id": id}, nil)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.ChangePasswordRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.ChangePassword(r.Context(), actorFromRequest(r), id, payload); err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]int64{"id": id}, nil)
}
