// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package api

import (
	"net/http"

	"github.com/poiesic/rendezvous/core"
	"github.com/poiesic/rendezvous/refresh"
	"github.com/poiesic/rendezvous/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "rendezvous"

// Metrics holds the service's Prometheus metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	entriesStored prometheus.Counter

	queries       prometheus.Counter
	queryErrors   prometheus.Counter
	queryResults  prometheus.Histogram
	embeddingDims prometheus.Gauge

	refreshRuns   *prometheus.CounterVec
	refreshEvents *prometheus.CounterVec
}

var _ search.RetrievalMonitor = (*Metrics)(nil)

// NewMetrics creates and registers all metrics, including the Go runtime
// and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code.",
		}, []string{"route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"route"}),
		entriesStored: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entries_stored_total",
			Help:      "Entries embedded and written to the collection.",
		}),
		queries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "queries_total",
			Help:      "Similarity queries run against the collection.",
		}),
		queryErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_errors_total",
			Help:      "Similarity queries that failed.",
		}),
		queryResults: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_results",
			Help:      "Neighbors returned per query.",
			Buckets:   prometheus.LinearBuckets(0, 5, 10),
		}),
		embeddingDims: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "embedding_dimension",
			Help:      "Dimension of the most recent query embedding.",
		}),
		refreshRuns: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_runs_total",
			Help:      "Event refresh runs by result.",
		}, []string{"result"}),
		refreshEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_events_total",
			Help:      "Events seen by refresh runs by outcome.",
		}, []string{"outcome"}),
	}
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// EntriesStored counts entries written by the ingestion pipeline.
func (m *Metrics) EntriesStored(count int) {
	m.entriesStored.Add(float64(count))
}

// RefreshCompleted records the outcome of an event refresh run.
func (m *Metrics) RefreshCompleted(result refresh.Result, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.refreshRuns.WithLabelValues(status).Inc()
	m.refreshEvents.WithLabelValues("stored").Add(float64(result.Stored))
	m.refreshEvents.WithLabelValues("unchanged").Add(float64(result.Unchanged))
}

func (m *Metrics) Start(string) {}

func (m *Metrics) AfterEmbedding(dimension int) {
	m.embeddingDims.Set(float64(dimension))
}

func (m *Metrics) Finish(results []core.Neighbor, err error) {
	m.queries.Inc()
	if err != nil {
		m.queryErrors.Inc()
		return
	}
	m.queryResults.Observe(float64(len(results)))
}

func (m *Metrics) observeRequest(route string, status string, seconds float64) {
	m.requests.WithLabelValues(route, status).Inc()
	m.requestDuration.WithLabelValues(route).Observe(seconds)
}
