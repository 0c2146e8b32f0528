package handler

import (
	"context"
	"net/http"
	"strings"

	"go-survey-admin/internal/model"
)

type SurveyService interface {
	FindByID(ctx context.Context, id int64) (model.Survey, error)
	FindAll(ctx context.Context, filter model.SurveyFilter) ([]model.Survey, model.Meta, error)
	Create(ctx context.Context, actor model.AuditActor, req model.SurveyRequest) (model.Survey, error)
	Update(ctx context.Context, actor model.AuditActor, id int64, req model.SurveyRequest) (model.Survey, error)
	Delete(ctx context.Context, actor model.AuditActor, id int64) error
}

type SurveyHandler struct {
	service SurveyService
}

func NewSurveyHandler(service SurveyService) *SurveyHandler {
	return &SurveyHandler{service: service}
}

func (h *SurveyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := queryID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	survey, err := h.service.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, survey, nil)
}

func (h *SurveyHandler) FindAll(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	surveys, meta, err := h.service.FindAll(r.Context(), model.SurveyFilter{
		Keyword: strings.TrimSpace(query.Get("keyword")),
		Type:    strings.ToUpper(strings.TrimSpace(query.Get("type"))),
		Page:    parseIntOrDefault(query.Get("page"), 1),
		Limit:   parseIntOrDefault(query.Get("limit"), 5),
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, model.SurveyListData{Items: surveys}, &meta)
}

func (h *SurveyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.SurveyRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	survey, err := h.service.Create(r.Context(), actorFromRequest(r), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, survey, nil)
}

func (h *SurveyHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.SurveyRequest
	if err := decodeAndValidate(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	survey, err := h.service.Update(r.Context(), actorFromRequest(r), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, survey, nil)
}

func (h *SurveyHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
