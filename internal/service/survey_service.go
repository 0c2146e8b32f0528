package service

import (
	"context"
	"fmt"
	"strings"

	"go-survey-admin/internal/model"
)

type surveyStore interface {
	FindByID(ctx context.Context, id int64) (model.Survey, error)
	Questions(ctx context.Context, surveyID int64) ([]model.Question, error)
	Search(ctx context.Context, filter model.SurveyFilter) ([]model.Survey, int, error)
	Create(ctx context.Context, s *model.Survey) error
	Update(ctx context.Context, s *model.Survey) error
	Delete(ctx context.Context, id int64) error
}

type SurveyService struct {
	surveys surveyStore
	tx      transactor
	audit   auditLogger
}

func NewSurveyService(surveys surveyStore, tx transactor, audit auditLogger) *SurveyService {
	return &SurveyService{surveys: surveys, tx: tx, audit: audit}
}

func (s *SurveyService) FindByID(ctx context.Context, id int64) (model.Survey, error) {
	return s.surveys.FindByID(ctx, id)
}

func (s *SurveyService) FindAll(ctx context.Context, filter model.SurveyFilter) ([]model.Survey, model.Meta, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	surveys, total, err := s.surveys.Search(ctx, filter)
	if err != nil {
		return nil, model.Meta{}, err
	}

	for i := range surveys {
		questions, err := s.surveys.Questions(ctx, surveys[i].ID)
		if err != nil {
			return nil, model.Meta{}, err
		}
		surveys[i].Questions = questions
	}

	return surveys, model.NewMeta(filter.Page, filter.Limit, total), nil
}

func (s *SurveyService) Create(ctx context.Context, actor model.AuditActor, req model.SurveyRequest) (model.Survey, error) {
	survey := surveyFromRequest(req)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.surveys.Create(ctx, &survey)
	})

	recordAudit(ctx, s.audit, "survey.create", actor, surveyResource(survey.ID), nil, survey, err)
	if err != nil {
		return model.Survey{}, err
	}
	return survey, nil
}

// Update replaces the survey header and its whole question tree.
func (s *SurveyService) Update(ctx context.Context, actor model.AuditActor, id int64, req model.SurveyRequest) (model.Survey, error) {
	var before model.Survey
	survey := surveyFromRequest(req)
	survey.ID = id

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		existing, err := s.surveys.FindByID(ctx, id)
		if err != nil {
			return err
		}
		before = existing
		return s.surveys.Update(ctx, &survey)
	})

	recordAudit(ctx, s.audit, "survey.update", actor, surveyResource(id), before, survey, err)
	if err != nil {
		return model.Survey{}, err
	}
	return survey, nil
}

func (s *SurveyService) Delete(ctx context.Context, actor model.AuditActor, id int64) error {
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.surveys.Delete(ctx, id)
	})

	recordAudit(ctx, s.audit, "survey.delete", actor, surveyResource(id), nil, nil, err)
	return err
}

func surveyFromRequest(req model.SurveyRequest) model.Survey {
	survey := model.Survey{
		Name:      strings.TrimSpace(req.Name),
		Type:      strings.ToUpper(strings.TrimSpace(req.Type)),
		Questions: make([]model.Question, 0, len(req.Questions)),
	}

	for _, q := range req.Questions {
		question := model.Question{
			Content: strings.TrimSpace(q.Content),
			Answers: make([]model.Answer, 0, len(q.Answers)),
		}
		for _, a := range q.Answers {
			question.Answers = append(question.Answers, model.Answer{
				Content: strings.TrimSpace(a.Content),
				Correct: a.Correct,
				Score:   a.Score,
			})
		}
		survey.Questions = append(survey.Questions, question)
	}

	return survey
}

func surveyResource(id int64) string {
	if id == 0 {
		return "surveys"
	}
	return fmt.Sprintf("surveys/%d", id)
}
