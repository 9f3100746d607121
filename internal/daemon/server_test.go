package daemon

import (
	"encoding/json"
	"hotbackup/internal/db"
	"hotbackup/internal/logreader"
	"hotbackup/internal/metrics"
	"hotbackup/internal/model"
	"hotbackup/internal/repository"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverLog = `2024-02-12T12:20:55+00:00 /hot/a.txt was backed up to: /backup/a.txt.bak
2024-02-12T12:20:56+00:00 /backup/a.txt.bak was updated
2024-02-12T12:21:00+00:00 /hot/delete_a.txt was deleted
`

func newTestServer(t *testing.T, opts ...ServerOption) (*Server, *harness) {
	t.Helper()

	h := newHarness(t)
	require.NoError(t, os.WriteFile(h.logFile, []byte(serverLog), 0644))

	reader := logreader.New(afero.NewOsFs(), h.logFile, h.lock)
	return NewServer(h.runner(), reader, 0, opts...), h
}

func get(t *testing.T, s *Server, target string) *httptest.ResponseRecorder {
	t.Helper()

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestStatusEndpoint(t *testing.T) {
	s, h := newTestServer(t)

	rec := get(t, s, "/status")
	require.Equal(t, http.StatusOK, rec.Code)

	var snap model.RunSnapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &snap))
	assert.Equal(t, h.hot, snap.HotDir)
	assert.Equal(t, h.backup, snap.BackupDir)
}

func TestLogEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	var body struct {
		Lines []string `json:"lines"`
	}

	rec := get(t, s, "/log?q=was+updated")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"2024-02-12T12:20:56+00:00 /backup/a.txt.bak was updated"}, body.Lines)

	rec = get(t, s, "/log?re=deleted$&n=5")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"2024-02-12T12:21:00+00:00 /hot/delete_a.txt was deleted"}, body.Lines)

	rec = get(t, s, "/log?n=2")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Lines, 2)
}

func TestLogEndpointRejectsBadRegex(t *testing.T) {
	s, _ := newTestServer(t)

	rec := get(t, s, "/log?re=%28unclosed")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHistoryEndpoint(t *testing.T) {
	s, _ := newTestServer(t)
	rec := get(t, s, "/history")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	conn, err := db.Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(conn) })
	repo := repository.NewHistoryRepository(conn)
	require.NoError(t, repo.Save(model.SyncResult{Action: model.ActionBackup, SrcPath: "/hot/a.txt"}))
	require.NoError(t, repo.Save(model.SyncResult{Action: model.ActionDelete, SrcPath: "/hot/delete_b", Err: assert.AnError}))

	s, _ = newTestServer(t, WithHistory(repo))

	rec = get(t, s, "/history?n=10")
	require.Equal(t, http.StatusOK, rec.Code)

	var body historyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Len(t, body.Entries, 2)
	assert.Equal(t, repository.Stats{Total: 2, Success: 1, Failed: 1}, body.Stats)

	rec = get(t, s, "/history?failed=true")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Entries, 1)
	assert.Equal(t, "/hot/delete_b", body.Entries[0].SrcPath)
}

func TestStopEndpoint(t *testing.T) {
	s, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stop", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case <-s.StopCh():
	default:
		t.Fatal("stop was not signalled")
	}
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.New()
	m.Record(model.SyncResult{Action: model.ActionBackup})
	s, _ := newTestServer(t, WithMetricsEndpoint(m))

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `hotbackup_actions_total{action="BACKUP"} 1`))
}
