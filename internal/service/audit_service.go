package service

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-survey-admin/internal/model"
	"go-survey-admin/pkg/apierror"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 200
)

type auditStore interface {
	Log(ctx context.Context, entry model.AuditEntry, occurredAt time.Time) error
	Query(ctx context.Context, query model.AuditQuery, from time.Time, to time.Time) ([]model.AuditEntry, int, error)
}

type AuditService struct {
	store auditStore
	now   func() time.Time
}

func NewAuditService(store auditStore) *AuditService {
	return &AuditService{store: store, now: time.Now}
}

// Log persists an entry. Failures are logged and never returned, so an
// audit outage cannot fail the operation being audited.
func (s *AuditService) Log(ctx context.Context, action string, actor model.AuditActor, status string, resource string, before any, after any, errText string) {
	if s == nil {
		return
	}

	occurredAt := s.now().UTC()
	entry := model.AuditEntry{
		ID:         uuid.NewString(),
		Action:     action,
		OccurredAt: occurredAt.Format(time.RFC3339Nano),
		Actor:      actor,
		Status:     status,
		Resource:   resource,
		Before:     before,
		After:      after,
		Error:      errText,
	}

	if err := s.store.Log(context.WithoutCancel(ctx), entry, occurredAt); err != nil {
		slog.Error("write audit entry", "action", action, "resource", resource, "error", err)
	}
}

func (s *AuditService) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditEntry, model.Meta, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit <= 0 {
		query.Limit = defaultAuditLimit
	}
	if query.Limit > maxAuditLimit {
		query.Limit = maxAuditLimit
	}

	from, err := parseOptionalAuditTime(query.From)
	if err != nil {
		return nil, model.Meta{}, apierror.New("BAD_REQUEST", "invalid 'from' datetime format", query.From, http.StatusBadRequest)
	}

	to, err := parseOptionalAuditTime(query.To)
	if err != nil {
		return nil, model.Meta{}, apierror.New("BAD_REQUEST", "invalid 'to' datetime format", query.To, http.StatusBadRequest)
	}

	items, total, err := s.store.Query(ctx, query, from, to)
	if err != nil {
		return nil, model.Meta{}, err
	}

	return items, model.NewMeta(query.Page, query.Limit, total), nil
}

func parseOptionalAuditTime(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, nil
	}

	if value, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return value.UTC(), nil
	}

	value, err := time.Parse(time.DateOnly, trimmed)
	if err != nil {
		return time.Time{}, err
	}
	return value.UTC(), nil
}
