package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveTool(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveTool("asset_matte", nil, 10*time.Millisecond)
	m.ObserveTool("asset_matte", nil, 20*time.Millisecond)
	m.ObserveTool("asset_matte", errors.New("boom"), time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("asset_matte", ResultOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.toolCalls.WithLabelValues("asset_matte", ResultError)))
	assert.Equal(t, 1, testutil.CollectAndCount(m.toolDuration))
}

func TestBatchItem(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.BatchItem("ok")
	m.BatchItem("ok")
	m.BatchItem("skipped")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.batchItems.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.batchItems.WithLabelValues("skipped")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTool("asset_trim", nil, time.Second)
		m.BatchItem("failed")
	})
}

func TestHandler(t *testing.T) {
	m := New(NewRegistry())
	m.ObserveTool("asset_token", nil, time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `asset_studio_tool_calls_total{result="ok",tool="asset_token"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
