package metrics

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// SubmissionMetrics tracks draft submission outcomes and session counts.
type SubmissionMetrics struct {
	submissionsTotal *prometheus.CounterVec
	fieldErrorsTotal prometheus.Counter
	activeDrafts     prometheus.Gauge
	draftsPurged     prometheus.Counter
}

var (
	submissionMetricsOnce sync.Once
	submissionMetrics     *SubmissionMetrics
)

// Submission returns the process-wide submission metrics.
func Submission() *SubmissionMetrics {
	return SubmissionWithConfig(Config{})
}

// SubmissionWithConfig initializes the singleton with service labels.
func SubmissionWithConfig(cfg Config) *SubmissionMetrics {
	submissionMetricsOnce.Do(func() {
		submissionMetrics = newSubmissionMetrics(prometheus.DefaultRegisterer, cfg)
	})
	return submissionMetrics
}

// ResetSubmissionMetricsForTest clears the singleton between test runs.
func ResetSubmissionMetricsForTest() {
	submissionMetricsOnce = sync.Once{}
	submissionMetrics = nil
}

func newSubmissionMetrics(registerer prometheus.Registerer, cfg Config) *SubmissionMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	serviceName := strings.TrimSpace(cfg.ServiceName)
	if serviceName == "" {
		serviceName = "invoicedesk"
	}
	environment := strings.TrimSpace(cfg.Environment)
	if environment == "" {
		environment = "unknown"
	}

	constLabels := prometheus.Labels{
		"service": serviceName,
		"env":     environment,
	}

	submissionsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name:        "invoice_submissions_total",
			Help:        "Draft submissions by outcome (validated or rejected).",
			ConstLabels: constLabels,
		},
		[]string{"outcome"},
	)
	fieldErrorsTotal := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "invoice_submission_field_errors_total",
			Help:        "Field-level validation errors reported across submissions.",
			ConstLabels: constLabels,
		},
	)
	activeDrafts := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name:        "invoice_active_drafts",
			Help:        "Draft sessions currently held in memory.",
			ConstLabels: constLabels,
		},
	)
	draftsPurged := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name:        "invoice_drafts_purged_total",
			Help:        "Idle draft sessions removed by the sweeper.",
			ConstLabels: constLabels,
		},
	)

	for _, collector := range []prometheus.Collector{submissionsTotal, fieldErrorsTotal, activeDrafts, draftsPurged} {
		if err := registerer.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}

	return &SubmissionMetrics{
		submissionsTotal: submissionsTotal,
		fieldErrorsTotal: fieldErrorsTotal,
		activeDrafts:     activeDrafts,
		draftsPurged:     draftsPurged,
	}
}

// RecordSubmission counts one submission attempt and its field errors.
func (m *SubmissionMetrics) RecordSubmission(outcome string, fieldErrors int) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
	if fieldErrors > 0 {
		m.fieldErrorsTotal.Add(float64(fieldErrors))
	}
}

// SetActiveDrafts records the current draft session count.
func (m *SubmissionMetrics) SetActiveDrafts(count int) {
	if m == nil {
		return
	}
	m.activeDrafts.Set(float64(count))
}

// RecordPurged counts drafts removed by the sweeper.
func (m *SubmissionMetrics) RecordPurged(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.draftsPurged.Add(float64(count))
}
