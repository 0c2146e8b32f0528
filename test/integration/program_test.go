//go:build integration

package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProgramRegistrationRespectsCapacity(t *testing.T) {
	server := newServer(t)
	admin := login(t, server, "admin", "1234")

	resp, env := call(t, server, http.MethodPost, "/programs/create", admin, map[string]any{
		"title":    "Stress management workshop",
		"address":  "Hà Nội",
		"date":     "2030-05-01",
		"time":     "09:00",
		"capacity": 2,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var program struct {
		ID     int64  `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &program))
	assert.Equal(t, "UPCOMING", program.Status)

	users := []string{"nguyenminh", "tranhuong", "phamtuan", "dolinh"}
	tokens := make([]string, len(users))
	for i, u := range users {
		tokens[i] = login(t, server, u, "1234")
	}

	path := fmt.Sprintf("/programs/register/%d", program.ID)
	statuses := make([]int, len(tokens))
	var wg sync.WaitGroup
	for i, token := range tokens {
		wg.Add(1)
		go func() {
			defer wg.Done()
			statuses[i] = postStatus(server, path, token)
		}()
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, s := range statuses {
		switch s {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 2, created)
	assert.Equal(t, 2, conflicts)

	resp, _ = call(t, server, http.MethodPost, path, tokens[0], nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, env = call(t, server, http.MethodGet, "/programs/statistics", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var stats struct {
		CntProgram  int64 `json:"cntProgram"`
		CntRegister int64 `json:"cntRegister"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, int64(1), stats.CntProgram)
	assert.Equal(t, int64(2), stats.CntRegister)

	resp, env = call(t, server, http.MethodGet, "/audit?action=program.register&status=failure", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var audit struct {
		Items []struct {
			ID string `json:"id"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &audit))
	require.Len(t, audit.Items, 3)
	assert.NotEmpty(t, audit.Items[0].ID)
	assert.NotEqual(t, audit.Items[0].ID, audit.Items[1].ID)
}
