package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docqa"

// Metrics holds the service collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	turns              *prometheus.CounterVec
	retrievalDecisions *prometheus.CounterVec
	stageDuration      *prometheus.HistogramVec
	ingestedDocuments  *prometheus.CounterVec
	ingestedPassages   prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "turns_total",
			Help:      "Conversation turns processed, by outcome.",
		}, []string{"outcome"}),
		retrievalDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retrieval_decisions_total",
			Help:      "Retrieval policy outcomes.",
		}, []string{"decision"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Latency of each turn pipeline stage.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"stage"}),
		ingestedDocuments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_documents_total",
			Help:      "Uploaded documents, by result.",
		}, []string{"result"}),
		ingestedPassages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_passages_total",
			Help:      "Passages written to the vector store.",
		}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.turns,
		m.retrievalDecisions,
		m.stageDuration,
		m.ingestedDocuments,
		m.ingestedPassages,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveTurn(outcome string) {
	if m == nil {
		return
	}
	m.turns.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveDecision(needsRetrieval bool) {
	if m == nil {
		return
	}
	decision := "reuse"
	if needsRetrieval {
		decision = "retrieve"
	}
	m.retrievalDecisions.WithLabelValues(decision).Inc()
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *Metrics) ObserveDocument(result string) {
	if m == nil {
		return
	}
	m.ingestedDocuments.WithLabelValues(result).Inc()
}

func (m *Metrics) ObservePassages(n int) {
	if m == nil {
		return
	}
	m.ingestedPassages.Add(float64(n))
}
