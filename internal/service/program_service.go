package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go-survey-admin/internal/metrics"
	"go-survey-admin/internal/model"
	"go-survey-admin/pkg/apierror"
)

type programStore interface {
	FindByID(ctx context.Context, id int64) (model.Program, error)
	LockByID(ctx context.Context, id int64) (model.Program, error)
	Search(ctx context.Context, filter model.ProgramFilter) ([]model.Program, int, error)
	Create(ctx context.Context, p *model.Program) error
	Update(ctx context.Context, p *model.Program) error
	Delete(ctx context.Context, id int64) error
	AddRegistration(ctx context.Context, reg *model.ProgramRegistration) error
	Statistics(ctx context.Context) (model.ProgramStatistics, error)
}

type ProgramService struct {
	programs programStore
	tx       transactor
	audit    auditLogger
}

func NewProgramService(programs programStore, tx transactor, audit auditLogger) *ProgramService {
	return &ProgramService{programs: programs, tx: tx, audit: audit}
}

func (s *ProgramService) FindByID(ctx context.Context, id int64) (model.Program, error) {
	return s.programs.FindByID(ctx, id)
}

func (s *ProgramService) FindAll(ctx context.Context, filter model.ProgramFilter) ([]model.Program, model.Meta, error) {
	filter.Page, filter.Limit = normalizePage(filter.Page, filter.Limit)

	programs, total, err := s.programs.Search(ctx, filter)
	if err != nil {
		return nil, model.Meta{}, err
	}
	return programs, model.NewMeta(filter.Page, filter.Limit, total), nil
}

func (s *ProgramService) Create(ctx context.Context, actor model.AuditActor, req model.ProgramRequest) (model.Program, error) {
	program := programFromRequest(req)
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.programs.Create(ctx, &program)
	})

	recordAudit(ctx, s.audit, "program.create", actor, programResource(program.ID), nil, program, err)
	if err != nil {
		return model.Program{}, err
	}
	return program, nil
}

func (s *ProgramService) Update(ctx context.Context, actor model.AuditActor, id int64, req model.ProgramRequest) (model.Program, error) {
	var before model.Program
	program := programFromRequest(req)
	program.ID = id

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		existing, err := s.programs.LockByID(ctx, id)
		if err != nil {
			return err
		}
		before = existing

		if program.Capacity < existing.Registered {
			return apierror.New("CONFLICT", "capacity is below current registrations",
				fmt.Sprintf("registered=%d", existing.Registered), http.StatusConflict)
		}

		if err := s.programs.Update(ctx, &program); err != nil {
			return err
		}
		program.Registered = existing.Registered
		return nil
	})

	recordAudit(ctx, s.audit, "program.update", actor, programResource(id), before, program, err)
	if err != nil {
		return model.Program{}, err
	}
	return program, nil
}

func (s *ProgramService) Delete(ctx context.Context, actor model.AuditActor, id int64) error {
	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		return s.programs.Delete(ctx, id)
	})

	recordAudit(ctx, s.audit, "program.delete", actor, programResource(id), nil, nil, err)
	return err
}

// Register signs the caller up for a program. The program row stays
// locked while capacity is checked, so concurrent registrations cannot
// overshoot it.
func (s *ProgramService) Register(ctx context.Context, actor model.AuditActor, programID int64) (model.ProgramRegistration, error) {
	reg := model.ProgramRegistration{ProgramID: programID, UserID: actor.UserID}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		program, err := s.programs.LockByID(ctx, programID)
		if err != nil {
			return err
		}

		if program.Status == model.ProgramStatusFinished || program.Status == model.ProgramStatusCancelled {
			return apierror.Conflict(model.ErrProgramClosed, "program is not open for registration", program.Status)
		}
		if program.Registered >= program.Capacity {
			return apierror.Conflict(model.ErrProgramFull, "program is full", fmt.Sprintf("capacity=%d", program.Capacity))
		}

		return s.programs.AddRegistration(ctx, &reg)
	})

	metrics.ProgramRegistrationsTotal.WithLabelValues(registrationResult(err)).Inc()
	recordAudit(ctx, s.audit, "program.register", actor, programResource(programID), nil, reg, err)
	if err != nil {
		return model.ProgramRegistration{}, err
	}
	return reg, nil
}

func (s *ProgramService) Statistics(ctx context.Context) (model.ProgramStatistics, error) {
	return s.programs.Statistics(ctx)
}

func programFromRequest(req model.ProgramRequest) model.Program {
	status := req.Status
	if status == "" {
		status = model.ProgramStatusUpcoming
	}

	return model.Program{
		Title:       strings.TrimSpace(req.Title),
		Image:       strings.TrimSpace(req.Image),
		Address:     strings.TrimSpace(req.Address),
		Date:        strings.TrimSpace(req.Date),
		Time:        strings.TrimSpace(req.Time),
		Status:      status,
		Capacity:    req.Capacity,
		Description: strings.TrimSpace(req.Description),
	}
}

func registrationResult(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, model.ErrProgramFull):
		return "full"
	case errors.Is(err, model.ErrProgramClosed):
		return "closed"
	case errors.Is(err, model.ErrAlreadyRegistered):
		return "duplicate"
	case errors.Is(err, model.ErrProgramNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func programResource(id int64) string {
	if id == 0 {
		return "programs"
	}
	return fmt.Sprintf("programs/%d", id)
}
