package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-survey-admin/internal/model"
)

func TestAuditRepository_Log(t *testing.T) {
	db, mock := setupMockDB(t)
	at := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO audit_entries`).
		WithArgs("0b7e6a52-3d41-4c2e-9a51-2f0c8d1e7b10", "user.delete", at, int64(1), "admin", "ADMIN", "10.0.0.1",
			model.AuditStatusSuccess, "users/5", sqlmock.AnyArg(), sqlmock.AnyArg(), "").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := NewAuditRepository(db).Log(context.Background(), model.AuditEntry{
		ID:       "0b7e6a52-3d41-4c2e-9a51-2f0c8d1e7b10",
		Action:   "user.delete",
		Actor:    model.AuditActor{UserID: 1, Username: "admin", Role: "ADMIN", IP: "10.0.0.1"},
		Status:   model.AuditStatusSuccess,
		Resource: "users/5",
		Before:   map[string]any{"username": "lehung"},
	}, at)
	require.NoError(t, err)
}

func TestAuditRepository_Query(t *testing.T) {
	db, mock := setupMockDB(t)
	at := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	from := at.Add(-time.Hour)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM audit_entries WHERE actor_user_id = \$1 AND lower\(status\) = lower\(\$2\) AND occurred_at >= \$3`).
		WithArgs(int64(1), "success", from).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`ORDER BY occurred_at DESC, id DESC\s+LIMIT \$4 OFFSET \$5`).
		WithArgs(int64(1), "success", from, 50, 0).
		WillReturnRows(sqlmock.NewRows([]string{
			"entry_id", "action", "occurred_at", "actor_user_id", "actor_username", "actor_role", "actor_ip",
			"status", "resource", "before_data", "after_data", "error_text",
		}).AddRow("5d1c2b3a-0e9f-4a8b-b7c6-d5e4f3a2b1c0", "user.delete", at, 1, "admin", "ADMIN", "10.0.0.1", "success", "users/5",
			[]byte(`{"username":"lehung"}`), nil, ""))

	entries, total, err := NewAuditRepository(db).Query(context.Background(), model.AuditQuery{
		ActorID: "1",
		Status:  "success",
		Page:    1,
		Limit:   50,
	}, from, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, entries, 1)
	assert.Equal(t, "5d1c2b3a-0e9f-4a8b-b7c6-d5e4f3a2b1c0", entries[0].ID)
	assert.Equal(t, int64(1), entries[0].Actor.UserID)
	assert.Equal(t, map[string]any{"username": "lehung"}, entries[0].Before)
	assert.Nil(t, entries[0].After)
	assert.Equal(t, "2026-10-01T09:00:00Z", entries[0].OccurredAt)
}
