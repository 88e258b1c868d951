// Package metrics exposes data-quality and evaluation counters for the
// admission matcher. A CLI run can dump them to a node-exporter textfile.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Requirement text fragments dropped by the parser
	ParseIssuesTotal *prometheus.CounterVec

	// Rows seen by the aggregator, by outcome
	RowsTotal *prometheus.CounterVec

	// Rows rejected by the importer
	ImportRejectedTotal *prometheus.CounterVec

	EvaluationDuration prometheus.Histogram

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered
func New(registry *prometheus.Registry) *Metrics {
	return &Metrics{
		ParseIssuesTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "admission_parse_issues_total",
				Help: "Requirement text fragments dropped while parsing, by reason",
			},
			[]string{"reason"}, // reason: unparsable_alternative, unparsable_clause, empty_group, no_requirements
		),

		RowsTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "admission_rows_total",
				Help: "Admission plan rows evaluated, by outcome",
			},
			[]string{"outcome"}, // outcome: matched, no_requirements, no_match, no_seats
		),

		ImportRejectedTotal: promauto.With(registry).NewCounterVec(
			prometheus.CounterOpts{
				Name: "admission_import_rejected_total",
				Help: "Admission plan records rejected during import, by reason",
			},
			[]string{"reason"},
		),

		EvaluationDuration: promauto.With(registry).NewHistogram(
			prometheus.HistogramOpts{
				Name:    "admission_evaluation_duration_seconds",
				Help:    "Duration of one evaluation pass over the admission plan",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),

		registry: registry,
	}
}

// RecordParseIssue counts a dropped requirement fragment.
func (m *Metrics) RecordParseIssue(reason string) {
	m.ParseIssuesTotal.WithLabelValues(reason).Inc()
}

// RecordRow counts an evaluated row.
func (m *Metrics) RecordRow(outcome string) {
	m.RowsTotal.WithLabelValues(outcome).Inc()
}

// RecordImportRejected counts a record the importer could not use.
func (m *Metrics) RecordImportRejected(reason string) {
	m.ImportRejectedTotal.WithLabelValues(reason).Inc()
}

// RecordEvaluation records the duration of an evaluation pass.
func (m *Metrics) RecordEvaluation(seconds float64) {
	m.EvaluationDuration.Observe(seconds)
}

// WriteTextfile writes every registered metric to path in the text exposition
// format, for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
