// Package engine computes invoices from a rule set and a list of invoiced items.
//
// Each call to Process builds a fresh invoice through a fixed sequence of
// stages: header, static currency, live FX rates, items, totals. Every stage
// takes the invoice by value and returns the updated invoice. An Engine holds
// only its immutable rule set and collaborators, so Process is safe for
// concurrent use.
package engine

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/rezonia/invoice-utils/internal/fxrate"
	"github.com/rezonia/invoice-utils/internal/metrics"
	"github.com/rezonia/invoice-utils/internal/model"
)

// RateSource provides yearly FX rate feeds
type RateSource interface {
	FetchYear(ctx context.Context, year int) (*fxrate.Feed, error)
}

// Engine computes invoices
type Engine struct {
	rules   model.RuleSet
	rates   RateSource
	log     zerolog.Logger
	metrics *metrics.Recorder
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the engine logger
func WithLogger(log zerolog.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// WithRateSource sets the live FX rate source
func WithRateSource(src RateSource) Option {
	return func(e *Engine) {
		e.rates = src
	}
}

// WithMetrics sets the metrics recorder
func WithMetrics(r *metrics.Recorder) Option {
	return func(e *Engine) {
		e.metrics = r
	}
}

// New creates an engine for an already parsed rule set
func New(rules model.RuleSet, opts ...Option) *Engine {
	e := &Engine{
		rules: rules,
		log:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rates == nil {
		e.rates = fxrate.NewClient()
	}
	return e
}

// NewFromJSON parses a JSON rule list and creates an engine
func NewFromJSON(source string, data []byte, opts ...Option) (*Engine, error) {
	rules, err := model.ParseRules(source, data)
	if err != nil {
		return nil, err
	}
	return New(rules, opts...), nil
}

// NewFromFile loads a JSON rule file and creates an engine
func NewFromFile(path string, opts ...Option) (*Engine, error) {
	rules, err := model.LoadRulesFile(path)
	if err != nil {
		return nil, err
	}
	return New(rules, opts...), nil
}

// Rules returns the engine rule set
func (e *Engine) Rules() model.RuleSet {
	return e.rules
}

// Process computes the invoice numbered invoiceNo, dated invoiceDate, for items
func (e *Engine) Process(ctx context.Context, invoiceNo int, invoiceDate time.Time, items []model.InvoicedItem) model.Invoice {
	inv := model.NewInvoice()

	inv = applyHeader(inv, e.rules.Header, invoiceNo, invoiceDate)
	inv = applyCurrency(inv, e.rules.Currency)
	inv = e.applyLiveFX(ctx, inv, e.rules.LiveFX, invoiceDate)

	for i, item := range items {
		// superseded by the item operation taxes
		baseTax := defaultItemTax(item)
		inv = processItem(inv, e.rules.ItemOps, i+1, baseTax, item)
	}

	inv = computeTotals(inv)

	e.metrics.InvoiceProcessed(len(items))
	e.log.Debug().
		Int("number", invoiceNo).
		Int("items", len(inv.Items)).
		Str("total", inv.Totals.Total.String()).
		Msg("invoice computed")
	return inv
}
