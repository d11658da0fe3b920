package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the stock ledger.
type Metrics struct {
	Movements         *prometheus.CounterVec
	InsufficientStock prometheus.Counter
	StockLevel        *prometheus.GaugeVec
	ReconcileDrift    prometheus.Counter
	DebitDuration     prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		Movements: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "ayuda_stock_movements_total",
			Help: "Stock movements recorded, by kind and reason",
		}, []string{"kind", "reason"}),
		InsufficientStock: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ayuda_stock_insufficient_total",
			Help: "Debits refused because stock would go negative",
		}),
		StockLevel: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ayuda_stock_level",
			Help: "Current stock after the last movement, by supply",
		}, []string{"supply_id"}),
		ReconcileDrift: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ayuda_stock_reconcile_drift_total",
			Help: "Reconciliations where the cached balance differed from the ledger fold",
		}),
		DebitDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ayuda_stock_debit_duration_seconds",
			Help:    "Duration of debit transactions including the row lock wait",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) RecordMovement(kind, reason, supplyID string, stock int64) {
	m.Movements.WithLabelValues(kind, reason).Inc()
	m.StockLevel.WithLabelValues(supplyID).Set(float64(stock))
}

func (m *Metrics) IncrementInsufficientStock() {
	m.InsufficientStock.Inc()
}

func (m *Metrics) IncrementReconcileDrift() {
	m.ReconcileDrift.Inc()
}

// ObserveDebit records the duration of a debit. Call with time.Now() at the start.
func (m *Metrics) ObserveDebit(start time.Time) {
	m.DebitDuration.Observe(time.Since(start).Seconds())
}
