//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"

	"go-survey-admin/internal/app"
	"go-survey-admin/internal/config"
	"go-survey-admin/internal/database"
)

const testJWTSecret = "integration-secret-0123456789abcdef"

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// newServer migrates and resets the database behind TEST_DATABASE_URL,
// seeds it, and serves the full application.
func newServer(t *testing.T) *httptest.Server {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	cfg, err := config.LoadFrom(ctx, envconfig.MapLookuper(map[string]string{
		"DATABASE_URL": dsn,
		"JWT_SECRET":   testJWTSecret,
		"BCRYPT_COST":  "4",
		"LOG_LEVEL":    "error",
	}))
	require.NoError(t, err)

	require.NoError(t, database.Migrate(dsn))

	db, err := database.New(ctx, dsn, database.Options{MaxOpenConns: 5, MaxIdleConns: 2, ConnMaxLifetime: cfg.DBConnMaxLifetime})
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.SQL.ExecContext(ctx, `TRUNCATE audit_entries, program_registrations, programs,
		survey_answers, survey_questions, surveys, users, roles RESTART IDENTITY CASCADE`)
	require.NoError(t, err)

	h, err := app.NewHandler(ctx, cfg, db)
	require.NoError(t, err)

	server := httptest.NewServer(h)
	t.Cleanup(server.Close)
	return server
}

func login(t *testing.T, server *httptest.Server, username string, password string) string {
	t.Helper()

	resp, env := call(t, server, http.MethodPost, "/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(t, data.Token)
	return data.Token
}

func call(t *testing.T, server *httptest.Server, method string, path string, token string, body any) (*http.Response, envelope) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

// postStatus issues an empty POST and returns only the status code. It
// does not touch testing.T, so it is safe to call from goroutines.
func postStatus(server *httptest.Server, path string, token string) int {
	req, err := http.NewRequest(http.MethodPost, server.URL+path, nil)
	if err != nil {
		return 0
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode
}
