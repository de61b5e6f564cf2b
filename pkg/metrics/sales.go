package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SalesMetrics counts order activity per pricing mode.
type SalesMetrics struct {
	linesAdded    *prometheus.CounterVec
	payments      *prometheus.CounterVec
	paymentAmount *prometheus.CounterVec
}

// NewSalesMetrics registers the sales metrics. A nil registerer yields a
// no-op recorder.
func NewSalesMetrics(reg prometheus.Registerer) *SalesMetrics {
	if reg == nil {
		return &SalesMetrics{}
	}
	linesAdded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "comptoir_order_lines_added_total",
		Help: "Units added to table orders.",
	}, []string{"mode"})
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "comptoir_payments_total",
		Help: "Recorded table payments.",
	}, []string{"mode"})
	paymentAmount := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "comptoir_payment_amount_fcfa_total",
		Help: "Sum of recorded payments in FCFA.",
	}, []string{"mode"})
	reg.MustRegister(linesAdded, payments, paymentAmount)
	return &SalesMetrics{linesAdded: linesAdded, payments: payments, paymentAmount: paymentAmount}
}

func (s *SalesMetrics) AddLines(mode string, quantity int) {
	if s == nil || s.linesAdded == nil || quantity <= 0 {
		return
	}
	s.linesAdded.WithLabelValues(normalizeLabel(mode)).Add(float64(quantity))
}

func (s *SalesMetrics) ObservePayment(mode string, amount int64) {
	if s == nil || s.payments == nil {
		return
	}
	s.payments.WithLabelValues(normalizeLabel(mode)).Inc()
	if amount > 0 {
		s.paymentAmount.WithLabelValues(normalizeLabel(mode)).Add(float64(amount))
	}
}
