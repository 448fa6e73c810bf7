package api

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/poiesic/rendezvous/core"
	"github.com/poiesic/rendezvous/refresh"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_RequestCounters(t *testing.T) {
	f := setup(t)

	f.do(t, http.MethodGet, "/health", "")
	f.do(t, http.MethodGet, "/health", "")
	f.do(t, http.MethodPost, "/retrieve/", `{"contents": [["a"]], "ids": ["q"], "top_n": 0}`)
	f.do(t, http.MethodGet, "/nowhere", "")

	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.requests.WithLabelValues("/health", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.requests.WithLabelValues("/retrieve/", "400")))
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.requests.WithLabelValues("unmatched", "404")))
	assert.Equal(t, 3, testutil.CollectAndCount(f.metrics.requestDuration), "one series per route observed")
}

func TestMetrics_StoreAndQuery(t *testing.T) {
	f := setup(t)

	w := f.do(t, http.MethodPost, "/store/", `{"contents": [["a"], ["b"], ["c"]], "ids": ["1", "2", "3"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.0, testutil.ToFloat64(f.metrics.entriesStored))

	w = f.do(t, http.MethodPost, "/retrieve/", `{"contents": [["a"], ["b"]], "ids": ["x", "y"], "top_n": 2}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2.0, testutil.ToFloat64(f.metrics.queries))
	assert.Zero(t, testutil.ToFloat64(f.metrics.queryErrors))
}

func TestMetrics_Monitor(t *testing.T) {
	m := NewMetrics()

	m.Start("query")
	m.AfterEmbedding(1024)
	m.Finish([]core.Neighbor{{ID: "a"}}, nil)
	m.Finish(nil, errors.New("boom"))

	assert.Equal(t, 1024.0, testutil.ToFloat64(m.embeddingDims))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.queries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queryErrors))
}

func TestMetrics_RefreshCompleted(t *testing.T) {
	m := NewMetrics()

	m.RefreshCompleted(refresh.Result{Fetched: 10, Unchanged: 7, Stored: 3}, nil)
	m.RefreshCompleted(refresh.Result{Fetched: 4, Stored: 1}, errors.New("model offline"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshRuns.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshRuns.WithLabelValues("failure")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.refreshEvents.WithLabelValues("stored")))
	assert.Equal(t, 7.0, testutil.ToFloat64(m.refreshEvents.WithLabelValues("unchanged")))
}

func TestMetrics_Exposition(t *testing.T) {
	f := setup(t)
	f.do(t, http.MethodGet, "/health", "")

	w := f.do(t, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for _, name := range []string{
		"rendezvous_http_requests_total",
		"rendezvous_http_request_duration_seconds",
		"rendezvous_entries_stored_total",
		"rendezvous_queries_total",
		"go_goroutines",
	} {
		assert.True(t, strings.Contains(body, name), "missing %s", name)
	}

	expected := `
# HELP rendezvous_entries_stored_total Entries embedded and written to the collection.
# TYPE rendezvous_entries_stored_total counter
rendezvous_entries_stored_total 0
`
	assert.NoError(t, testutil.GatherAndCompare(f.metrics.Registry(), strings.NewReader(expected), "rendezvous_entries_stored_total"))
}
