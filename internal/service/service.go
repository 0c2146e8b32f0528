package service

import (
	"context"

	"go-survey-admin/internal/model"
)

type transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type auditLogger interface {
	Log(ctx context.Context, action string, actor model.AuditActor, status string, resource string, before any, after any, errText string)
}

const (
	defaultPage  = 1
	defaultLimit = 5
	maxLimit     = 100
)

func normalizePage(page int, limit int) (int, int) {
	if page < 1 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return page, limit
}

// recordAudit writes one audit entry describing the outcome of a mutation.
func recordAudit(ctx context.Context, audit auditLogger, action string, actor model.AuditActor, resource string, before any, after any, err error) {
	if audit == nil {
		return
	}

	status := model.AuditStatusSuccess
	errText := ""
	if err != nil {
		status = model.AuditStatusFailure
		errText = err.Error()
		after = nil
	}

	audit.Log(ctx, action, actor, status, resource, before, after, errText)
}
