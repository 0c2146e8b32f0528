package handler

import (
	"context"
	"net/http"
	"strings"

	"go-survey-admin/internal/model"
)

type ProgramService interface {
	FindByID(ctx context.Context, id int64) (model.Program, error)
	FindAll(ctx context.Context, filter model.ProgramFilter) ([]model.Program, model.Meta, error)
	Create(ctx context.Context, actor model.AuditActor, req model.ProgramRequest) (model.Program, error)
	Update(ctx context.Context, actor model.AuditActor, id int64, req model.ProgramRequest) (model.Program, error)
	Delete(ctx context.Context, actor model.AuditActor, id int64) error
	Register(ctx context.Context, actor model.AuditActor, programID int64) (model.ProgramRegistration, error)
	Statistics(ctx context.Context) (model.ProgramStatistics, error)
}

type ProgramHandler struct {
	service ProgramService
}

func NewProgramHandler(service ProgramService) *ProgramHandler {
	return &ProgramHandler{service: service}
}

func (h *ProgramHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	program, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, program, nil)
}

func (h *ProgramHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	programs, meta, err := h.service.FindAll(r.Context(), model.ProgramFilter{
		Keyword: strings.TrimSpace(query.Get("keyword")),
		Status:  strings.ToUpper(strings.TrimSpace(query.Get("status"))),
		Page:    parseIntOrDefault(query.Get("page"), 1),
		Limit:   parseIntOrDefault(query.Get("limit"), 5),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.ProgramListData{Items: programs}, &meta)
}

func (h *ProgramHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.ProgramRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	program, err := h.service.Create(r.Context(), actorFromRequest(r), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, program, nil)
}

func (h *ProgramHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.ProgramRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	program, err := h.service.Update(r.Context(), actorFromRequest(r), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, program, nil)
}

func (h *ProgramHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *ProgramHandler) Register(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	reg, err := h.service.Register(r.Context(), actorFromRequest(r), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, reg, nil)
}

func (h *ProgramHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Statistics(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, stats, nil)
}
