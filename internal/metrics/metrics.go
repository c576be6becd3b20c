// Package metrics holds the Prometheus collectors of the invoicing engine.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FX fetch outcomes
const (
	OutcomeOK        = "ok"
	OutcomeNotFound  = "not_found"
	OutcomeMalformed = "malformed"
	OutcomeError     = "error"
)

// Recorder groups engine collectors. A nil *Recorder records nothing.
type Recorder struct {
	InvoicesTotal prometheus.Counter
	ItemsTotal    prometheus.Counter
	FXFetchTotal  *prometheus.CounterVec
	FXFetchDur    prometheus.Histogram
}

// NewRecorder registers and returns the engine collectors
func NewRecorder(namespace string, reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	r := &Recorder{
		InvoicesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_processed_total",
			Help:      "Total number of invoices computed by the engine.",
		}),
		ItemsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoice_items_processed_total",
			Help:      "Total number of line items computed by the engine.",
		}),
		FXFetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fx_fetch_total",
			Help:      "BNR rate feed lookups by outcome.",
		}, []string{"outcome"}),
		FXFetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fx_fetch_duration_ms",
			Help:      "BNR rate feed download latency in milliseconds.",
			Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}),
	}

	mustRegister(reg, r.InvoicesTotal, func(c prometheus.Collector) {
		if existing, ok := c.(prometheus.Counter); ok {
			r.InvoicesTotal = existing
		}
	})
	mustRegister(reg, r.ItemsTotal, func(c prometheus.Collector) {
		if existing, ok := c.(prometheus.Counter); ok {
			r.ItemsTotal = existing
		}
	})
	mustRegister(reg, r.FXFetchTotal, func(c prometheus.Collector) {
		if existing, ok := c.(*prometheus.CounterVec); ok {
			r.FXFetchTotal = existing
		}
	})
	mustRegister(reg, r.FXFetchDur, func(c prometheus.Collector) {
		if existing, ok := c.(prometheus.Histogram); ok {
			r.FXFetchDur = existing
		}
	})
	return r
}

// InvoiceProcessed counts one computed invoice with its items
func (r *Recorder) InvoiceProcessed(items int) {
	if r == nil {
		return
	}
	r.InvoicesTotal.Inc()
	r.ItemsTotal.Add(float64(items))
}

// FXFetched records a feed lookup
func (r *Recorder) FXFetched(outcome string, d time.Duration) {
	if r == nil {
		return
	}
	r.FXFetchTotal.WithLabelValues(outcome).Inc()
	r.FXFetchDur.Observe(float64(d) / float64(time.Millisecond))
}

func mustRegister(reg prometheus.Registerer, collector prometheus.Collector, reuse func(prometheus.Collector)) {
	if err := reg.Register(collector); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if reuse != nil {
				reuse(are.ExistingCollector)
			}
			return
		}
		panic(fmt.Errorf("register metric: %w", err))
	}
}
