package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the case workflow.
type Metrics struct {
	CasesCreated       prometheus.Counter
	CaseRejections     *prometheus.CounterVec
	StatusTransitions  *prometheus.CounterVec
	ItemDecisions      *prometheus.CounterVec
	Fulfillments       *prometheus.CounterVec
	DerivationMismatch prometheus.Counter
	CreateDuration     prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		CasesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ayuda_cases_created_total",
			Help: "Cases opened",
		}),
		CaseRejections: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ayuda_case_create_rejected_total",
			Help: "Case creations refused, by error code",
		}, []string{"code"}),
		StatusTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ayuda_case_status_transitions_total",
			Help: "Case status changes, by source and target status",
		}, []string{"from", "to"}),
		ItemDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ayuda_case_item_decisions_total",
			Help: "Item review decisions, by outcome",
		}, []string{"decision"}),
		Fulfillments: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ayuda_case_item_fulfillments_total",
			Help: "Item fulfillments, by target kind and stock outcome",
		}, []string{"target", "stock"}),
		DerivationMismatch: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ayuda_case_status_derivation_mismatch_total",
			Help: "Bulk reviews whose requested status differs from the derived one",
		}),
		CreateDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ayuda_case_create_duration_seconds",
			Help:    "Duration of case creation including eligibility checks",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),
	}
}

func (m *Metrics) IncrementCasesCreated() {
	m.CasesCreated.Inc()
}

func (m *Metrics) IncrementCreateRejected(code string) {
	m.CaseRejections.WithLabelValues(code).Inc()
}

func (m *Metrics) RecordTransition(from, to string) {
	m.StatusTransitions.WithLabelValues(from, to).Inc()
}

func (m *Metrics) RecordDecision(decision string) {
	m.ItemDecisions.WithLabelValues(decision).Inc()
}

// RecordFulfillment labels stock as debited, skipped or none (services).
func (m *Metrics) RecordFulfillment(target, stock string) {
	m.Fulfillments.WithLabelValues(target, stock).Inc()
}

func (m *Metrics) IncrementDerivationMismatch() {
	m.DerivationMismatch.Inc()
}

// ObserveCreate records the duration of a creation. Call with time.Now() at the start.
func (m *Metrics) ObserveCreate(start time.Time) {
	m.CreateDuration.Observe(time.Since(start).Seconds())
}
