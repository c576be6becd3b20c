package invoicelib

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rezonia/invoice-utils/internal/engine"
	"github.com/rezonia/invoice-utils/internal/fxrate"
)

// InvoiceEngine computes invoices from invoiced items
type InvoiceEngine interface {
	// Process computes one invoice
	Process(ctx context.Context, invoiceNo int, invoiceDate time.Time, items []InvoicedItem) Invoice

	// ProcessBatch computes several invoices
	ProcessBatch(ctx context.Context, entries []BatchEntry) []Invoice
}

// RateSource provides yearly BNR rate feeds
type RateSource = engine.RateSource

// EngineOptions configures engine behavior
type EngineOptions struct {
	// BNR feed
	FXBaseURL string        // Feed host (env: INVOICE_UTILS_FX_BASE_URL)
	FXTimeout time.Duration // Download timeout (env: INVOICE_UTILS_FX_TIMEOUT)

	// RateSource replaces the BNR client when set
	RateSource RateSource

	// FXCacheTTL keeps downloaded feeds for the engine lifetime, zero disables
	FXCacheTTL time.Duration

	// Logger receives live FX diagnostics, silent when nil
	Logger *zerolog.Logger

	// Concurrency bounds ProcessBatch workers
	Concurrency int
}

// DefaultEngineOptions returns default engine options
func DefaultEngineOptions() EngineOptions {
	return EngineOptions{
		FXBaseURL:   fxrate.DefaultBaseURL,
		FXTimeout:   fxrate.DefaultTimeout,
		FXCacheTTL:  fxrate.DefaultCacheTTL,
		Concurrency: 4,
	}
}

// Engine implements InvoiceEngine using the internal engine
type Engine struct {
	engine  *engine.Engine
	options EngineOptions
}

// NewEngine parses a JSON rule list and creates an engine
func NewEngine(rules []byte, opts EngineOptions) (*Engine, error) {
	eng, err := engine.NewFromJSON("rules", rules, engineOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return &Engine{engine: eng, options: opts}, nil
}

// NewEngineFromFile loads a JSON rule file and creates an engine
func NewEngineFromFile(path string, opts EngineOptions) (*Engine, error) {
	eng, err := engine.NewFromFile(path, engineOptions(opts)...)
	if err != nil {
		return nil, err
	}
	return &Engine{engine: eng, options: opts}, nil
}

func engineOptions(opts EngineOptions) []engine.Option {
	var engineOpts []engine.Option
	if opts.Logger != nil {
		engineOpts = append(engineOpts, engine.WithLogger(*opts.Logger))
	}

	source := opts.RateSource
	if source == nil {
		var clientOpts []fxrate.ClientOption
		if opts.FXBaseURL != "" {
			clientOpts = append(clientOpts, fxrate.WithBaseURL(opts.FXBaseURL))
		}
		if opts.FXTimeout > 0 {
			clientOpts = append(clientOpts, fxrate.WithTimeout(opts.FXTimeout))
		}
		source = fxrate.NewClient(clientOpts...)
	}
	if opts.FXCacheTTL > 0 {
		source = fxrate.NewCachedSource(source, opts.FXCacheTTL)
	}
	return append(engineOpts, engine.WithRateSource(source))
}

// Rules returns the dispatched rule set
func (e *Engine) Rules() RuleSet {
	return e.engine.Rules()
}

// Process computes one invoice
func (e *Engine) Process(ctx context.Context, invoiceNo int, invoiceDate time.Time, items []InvoicedItem) Invoice {
	return e.engine.Process(ctx, invoiceNo, invoiceDate, items)
}

// ProcessBatch computes entries concurrently, keeping their order
func (e *Engine) ProcessBatch(ctx context.Context, entries []BatchEntry) []Invoice {
	results := make([]Invoice, len(entries))
	workers := e.options.Concurrency
	if workers < 1 {
		workers = 1
	}

	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup
	for i, entry := range entries {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, entry BatchEntry) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = e.engine.Process(ctx, entry.Number, entry.Date, entry.Items)
		}(i, entry)
	}
	wg.Wait()

	return results
}
