// Package invoicelib provides a public API for computing invoices from JSON
// rule templates.
//
// Example usage:
//
//	eng, err := invoicelib.NewEngine(rules, invoicelib.DefaultEngineOptions())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	inv := eng.Process(ctx, 1, time.Now(), items)
//	fmt.Println(inv.Totals.Total)
package invoicelib

import (
	"github.com/rezonia/invoice-utils/internal/model"
)

// Re-export core types for public API
type (
	Invoice        = model.Invoice
	Header         = model.Header
	Party          = model.Party
	CurrencyInfo   = model.CurrencyInfo
	ExchangeRate   = model.ExchangeRate
	ExchangeRates  = model.ExchangeRates
	LineItem       = model.LineItem
	CurrencyLine   = model.CurrencyLine
	Tax            = model.Tax
	Totals         = model.Totals
	CurrencyTotals = model.CurrencyTotals
	InvoicedItem   = model.InvoicedItem
	BatchEntry     = model.BatchEntry
	RuleSet        = model.RuleSet
	RuleReport     = model.RuleReport
)

// Re-export rule types
const (
	RuleTypeHeader   = model.RuleTypeHeader
	RuleTypeCurrency = model.RuleTypeCurrency
	RuleTypeLiveFX   = model.RuleTypeLiveFX
	RuleTypeItemOp   = model.RuleTypeItemOp
)

// Re-export error types
type (
	InputError       = model.InputError
	InputFormatError = model.InputFormatError
	FeedError        = model.FeedError
)

// Re-export feed error kinds
var (
	ErrFeedTransport = model.ErrFeedTransport
	ErrFeedMalformed = model.ErrFeedMalformed
)

// NewInvoicedItem creates an invoiced item
var NewInvoicedItem = model.NewInvoicedItem

// IsConfigError reports whether err means the rule source is unusable
var IsConfigError = model.IsConfigError

// CheckRules inspects a rule list for ignored or surprising records
var CheckRules = model.CheckRules
