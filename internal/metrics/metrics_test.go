package metrics

import (
	"hotbackup/internal/model"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord(t *testing.T) {
	m := New()
	m.Record(model.SyncResult{Action: model.ActionBackup})
	m.Record(model.SyncResult{Action: model.ActionBackup})
	m.Record(model.SyncResult{Action: model.ActionDelete, Err: assert.AnError})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.actions.WithLabelValues(string(model.ActionBackup))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues(string(model.ActionDelete))))
}

func TestObservePass(t *testing.T) {
	m := New()
	m.ObservePass(10 * time.Millisecond)
	m.ObservePass(20 * time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.passes))
	assert.Equal(t, 1, testutil.CollectAndCount(m.passDuration))
}

func TestHandlerExposesLogPipeline(t *testing.T) {
	m := New()
	m.WatchLogPipeline(func() int { return 4 }, func() int64 { return 17 })

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "hotbackup_log_queue_depth 4"))
	assert.True(t, strings.Contains(body, "hotbackup_log_lines_written_total 17"))
}
