package engine_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezonia/invoice-utils/internal/engine"
	"github.com/rezonia/invoice-utils/internal/fxrate"
	"github.com/rezonia/invoice-utils/internal/metrics"
	"github.com/rezonia/invoice-utils/internal/model"
)

const basicRules = `[
	{
		"type": "header",
		"buyer": {"name": "Invoiced Customer Ltd", "address": "Buyer Street, 10", "bank": {"iban": "ABC", "name": "Buyer Test Bank"}},
		"seller": {"name": "Invoicing Company Ltd", "address": "Seller's Lane, Building C", "bank": {"iban": "DEF", "name": "Seller Test Bank"}}
	},
	{"type": "currency", "main": {"symbol": "XYZ"}, "secondary": [{"symbol": "ABC", "rate": 1.15}]},
	{"type": "item_op", "name": "vat", "operation": "*", "value": 0.2}
]`

// fakeRates serves a fixed feed or error and records the requested years
type fakeRates struct {
	mu    sync.Mutex
	feed  *fxrate.Feed
	err   error
	years []int
}

func (f *fakeRates) FetchYear(_ context.Context, year int) (*fxrate.Feed, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.years = append(f.years, year)
	return f.feed, f.err
}

func (f *fakeRates) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.years)
}

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newEngine(t *testing.T, rules string, opts ...engine.Option) *engine.Engine {
	t.Helper()
	e, err := engine.NewFromJSON("rules.json", []byte(rules), opts...)
	require.NoError(t, err)
	return e
}

func assertDecimal(t *testing.T, expected string, actual decimal.Decimal, field string) {
	t.Helper()
	assert.True(t, actual.Equal(d(expected)), "%s: expected %s, got %s", field, expected, actual)
}

func TestNewFromJSON_ConfigErrors(t *testing.T) {
	_, err := engine.NewFromJSON("rules.json", nil)
	require.Error(t, err)
	assert.True(t, model.IsConfigError(err))

	_, err = engine.NewFromJSON("rules.json", []byte("{not json"))
	require.Error(t, err)
	var formatErr *model.InputFormatError
	assert.True(t, errors.As(err, &formatErr))

	_, err = engine.NewFromFile("/does/not/exist.json")
	var inputErr *model.InputError
	assert.True(t, errors.As(err, &inputErr))
}

func TestProcess_EmptyRules(t *testing.T) {
	rates := &fakeRates{}
	e := newEngine(t, "[]", engine.WithRateSource(rates))
	date := time.Date(2022, 1, 15, 13, 14, 15, 0, time.UTC)

	inv := e.Process(context.Background(), 1, date, nil)

	assert.Equal(t, 1, inv.Header.Number)
	assert.Equal(t, date, inv.Header.Date)
	assert.Equal(t, model.Party{}, inv.Header.Buyer)
	assert.Equal(t, model.Party{}, inv.Header.Seller)
	assert.True(t, inv.Header.Currency.IsZero())
	assert.Empty(t, inv.Items)
	assertDecimal(t, "0", inv.Totals.Price, "price")
	assertDecimal(t, "0", inv.Totals.Total, "total")
	assert.Nil(t, inv.Totals.Taxes)
	assert.Nil(t, inv.Totals.Extra.Currencies)
	assert.Equal(t, 0, rates.calls())

	data, err := json.Marshal(inv)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"header": {"number": 1, "date": "2022-01-15T13:14:15Z", "currency": {}, "buyer": {}, "seller": {}},
		"items": [],
		"totals": {"price": "0.000000", "total": "0.000000", "extra": {}}
	}`, string(data))
}

func TestProcess_HeaderRule(t *testing.T) {
	e := newEngine(t, basicRules)

	inv := e.Process(context.Background(), 7, time.Date(2022, 1, 15, 0, 0, 0, 0, time.UTC), nil)

	assert.Equal(t, "Invoiced Customer Ltd", inv.Header.Buyer["name"])
	assert.Equal(t, map[string]any{"iban": "ABC", "name": "Buyer Test Bank"}, inv.Header.Buyer["bank"])
	assert.Equal(t, "Invoicing Company Ltd", inv.Header.Seller["name"])
}

func TestProcess_CurrencyRule(t *testing.T) {
	e := newEngine(t, basicRules)

	inv := e.Process(context.Background(), 1, time.Date(2022, 1, 15, 0, 0, 0, 0, time.UTC), nil)

	assert.Equal(t, "XYZ", inv.Header.Currency.Main)
	require.Len(t, inv.Header.Currency.ExchangeRates, 1)
	assert.Equal(t, "ABC", inv.Header.Currency.ExchangeRates[0].Symbol)
	assertDecimal(t, "1.15", inv.Header.Currency.ExchangeRates[0].Rate, "rate")
}

func TestProcess_VATRoundTrip(t *testing.T) {
	e := newEngine(t, `[{"type": "item_op", "name": "vat", "operation": "*", "value": 0.2}]`)

	inv := e.Process(context.Background(), 1, time.Now(), []model.InvoicedItem{
		model.NewInvoicedItem("test", decimal.NewFromInt(2), decimal.NewFromInt(5)),
	})

	require.Len(t, inv.Items, 1)
	item := inv.Items[0]
	assertDecimal(t, "10.000000", item.ItemPrice, "item_price")
	require.Len(t, item.Taxes, 1)
	assert.Equal(t, "vat", item.Taxes[0].Name)
	assertDecimal(t, "2.000000", item.Taxes[0].Value, "vat")
	assertDecimal(t, "12.000000", item.ItemTotal, "item_total")
	assert.Empty(t, item.Extra.Currencies)

	assertDecimal(t, "10", inv.Totals.Price, "totals.price")
	assertDecimal(t, "12", inv.Totals.Total, "totals.total")
	require.Len(t, inv.Totals.Taxes, 1)
	assert.Equal(t, "vat", inv.Totals.Taxes[0].Name)
	assertDecimal(t, "2", inv.Totals.Taxes[0].Value, "totals.vat")
}

func TestProcess_BasicTemplateItems(t *testing.T) {
	e := newEngine(t, basicRules)

	inv := e.Process(context.Background(), 1, time.Date(2022, 1, 15, 13, 14, 15, 0, time.UTC), []model.InvoicedItem{
		model.NewInvoicedItem("test item", d("2.71828182"), d("3.14159265")),
		model.NewInvoicedItem("second", d("3"), d("1.5")),
	})

	require.Len(t, inv.Items, 2)

	first := inv.Items[0]
	assert.Equal(t, 1, first.ItemNo)
	assert.Equal(t, "XYZ", first.Currency)
	assert.Equal(t, "test item", first.Text)
	assertDecimal(t, "2.718282", first.Quantity, "quantity")
	assertDecimal(t, "3.141593", first.UnitPrice, "unit_price")
	assertDecimal(t, "8.539736", first.ItemPrice, "item_price")
	assertDecimal(t, "1.707947", first.Taxes[0].Value, "vat")
	assertDecimal(t, "10.247683", first.ItemTotal, "item_total")

	require.Len(t, first.Extra.Currencies, 1)
	abc := first.Extra.Currencies[0]
	assert.Equal(t, "ABC", abc.Currency)
	assertDecimal(t, "3.612832", abc.UnitPrice, "abc.unit_price")
	assertDecimal(t, "9.820696", abc.ItemPrice, "abc.item_price")
	assertDecimal(t, "1.964139", abc.Taxes[0].Value, "abc.vat")
	assertDecimal(t, "11.784835", abc.ItemTotal, "abc.item_total")

	assert.Equal(t, 2, inv.Items[1].ItemNo)

	assertDecimal(t, "13.039736", inv.Totals.Price, "totals.price")
	assertDecimal(t, "15.647683", inv.Totals.Total, "totals.total")
	assertDecimal(t, "2.607947", inv.Totals.Taxes[0].Value, "totals.vat")

	require.Len(t, inv.Totals.Extra.Currencies, 1)
	abcTotals := inv.Totals.Extra.Currencies[0]
	assert.Equal(t, "ABC", abcTotals.Currency)
	assertDecimal(t, "14.995696", abcTotals.Price, "abc.price")
	assertDecimal(t, "17.994835", abcTotals.Total, "abc.total")
	assertDecimal(t, "2.999139", abcTotals.Taxes[0].Value, "abc.vat")
}

func TestProcess_TaxRuleCurrency(t *testing.T) {
	e := newEngine(t, basicRules)

	inv := e.Process(context.Background(), 1, time.Now(), []model.InvoicedItem{
		model.NewInvoicedItem("test", decimal.NewFromInt(2), decimal.NewFromInt(5)),
	})

	require.Len(t, inv.Items, 1)
	assertDecimal(t, "2.000000", inv.Items[0].Taxes[0].Value, "vat")
	assertDecimal(t, "2.300000", inv.Items[0].Extra.Currencies[0].Taxes[0].Value, "abc.vat")
	assertDecimal(t, "12.000000", inv.Items[0].ItemTotal, "item_total")
}

func TestProcess_ItemOperations(t *testing.T) {
	rules := `[
		{"type": "item_op", "name": "vat", "operation": "*", "value": 0.19},
		{"type": "item_op", "name": "fee", "operation": "+", "value": 1.5},
		{"type": "item_op", "name": "ignored", "operation": "/", "value": 2}
	]`
	e := newEngine(t, rules)

	inv := e.Process(context.Background(), 1, time.Now(), []model.InvoicedItem{
		model.NewInvoicedItem("x", decimal.NewFromInt(1), decimal.NewFromInt(10)),
	})

	item := inv.Items[0]
	require.Len(t, item.Taxes, 2)
	assert.Equal(t, "vat", item.Taxes[0].Name)
	assertDecimal(t, "1.9", item.Taxes[0].Value, "vat")
	assert.Equal(t, "fee", item.Taxes[1].Name)
	assertDecimal(t, "11.5", item.Taxes[1].Value, "fee")
	assertDecimal(t, "23.4", item.ItemTotal, "item_total")
}

func TestProcess_SecondaryCurrencyOrder(t *testing.T) {
	rules := `[
		{"type": "currency", "main": {"symbol": "RON"}, "secondary": [
			{"symbol": "USD", "rate": 0.2},
			{"rate": 3},
			{"symbol": "EUR"},
			{"symbol": "USD", "rate": 0.25}
		]}
	]`
	e := newEngine(t, rules)

	inv := e.Process(context.Background(), 1, time.Now(), []model.InvoicedItem{
		model.NewInvoicedItem("a", decimal.NewFromInt(2), decimal.NewFromInt(10)),
		model.NewInvoicedItem("b", decimal.NewFromInt(1), decimal.NewFromInt(4)),
	})

	rates := inv.Header.Currency.ExchangeRates
	require.Len(t, rates, 3)
	assert.Equal(t, "USD", rates[0].Symbol)
	assertDecimal(t, "0.25", rates[0].Rate, "usd")
	assert.Equal(t, "currency-1", rates[1].Symbol)
	assert.Equal(t, "EUR", rates[2].Symbol)
	assertDecimal(t, "1", rates[2].Rate, "eur default")

	for _, item := range inv.Items {
		require.Len(t, item.Extra.Currencies, 3)
		assert.Equal(t, "USD", item.Extra.Currencies[0].Currency)
		assert.Equal(t, "currency-1", item.Extra.Currencies[1].Currency)
		assert.Equal(t, "EUR", item.Extra.Currencies[2].Currency)
	}

	require.Len(t, inv.Totals.Extra.Currencies, 3)
	assert.Equal(t, "USD", inv.Totals.Extra.Currencies[0].Currency)
	assertDecimal(t, "6", inv.Totals.Extra.Currencies[0].Price, "usd.price")
	assertDecimal(t, "72", inv.Totals.Extra.Currencies[1].Price, "currency-1.price")
	assertDecimal(t, "24", inv.Totals.Extra.Currencies[2].Total, "eur.total")
	assert.Nil(t, inv.Totals.Extra.Currencies[0].Taxes)
}

func TestProcess_CurrencyConversionConsistency(t *testing.T) {
	rules := `[{"type": "currency", "main": {"symbol": "RON"}, "secondary": [{"symbol": "EUR", "rate": "0.20123456789"}]}]`
	e := newEngine(t, rules)

	qty := d("3.3333333")
	price := d("7.7777777")
	inv := e.Process(context.Background(), 1, time.Now(), []model.InvoicedItem{model.NewInvoicedItem("x", qty, price)})

	rate := d("0.20123456789").RoundBank(6)
	expected := qty.RoundBank(6).Mul(price.RoundBank(6).Mul(rate).RoundBank(6)).RoundBank(6)
	assert.True(t, expected.Equal(inv.Items[0].Extra.Currencies[0].ItemPrice))
}

func TestProcess_Idempotent(t *testing.T) {
	e := newEngine(t, basicRules)
	date := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)
	items := []model.InvoicedItem{
		model.NewInvoicedItem("a", decimal.NewFromInt(2), decimal.NewFromInt(5)),
		model.NewInvoicedItem("b", d("1.5"), d("3.25")),
	}

	first := e.Process(context.Background(), 3, date, items)
	second := e.Process(context.Background(), 3, date, items)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(firstJSON), string(secondJSON))
	assert.Len(t, second.Items, 2)

	// callers mutating a result do not affect later calls
	first.Header.Buyer["name"] = "changed"
	first.Header.Buyer["bank"].(map[string]any)["iban"] = "changed"
	first.Header.Seller["bank"].(map[string]any)["name"] = "changed"
	third := e.Process(context.Background(), 3, date, items)
	assert.Equal(t, "Invoiced Customer Ltd", third.Header.Buyer["name"])
	assert.Equal(t, "ABC", third.Header.Buyer["bank"].(map[string]any)["iban"])

	thirdJSON, err := json.Marshal(third)
	require.NoError(t, err)
	assert.JSONEq(t, string(secondJSON), string(thirdJSON))
}

func TestProcess_Concurrent(t *testing.T) {
	e := newEngine(t, basicRules)
	date := time.Date(2023, 3, 1, 0, 0, 0, 0, time.UTC)

	var wg sync.WaitGroup
	results := make([]model.Invoice, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = e.Process(context.Background(), i, date, []model.InvoicedItem{
				model.NewInvoicedItem("x", decimal.NewFromInt(int64(i+1)), decimal.NewFromInt(10)),
			})
		}(i)
	}
	wg.Wait()

	for i, inv := range results {
		require.Len(t, inv.Items, 1)
		assert.Equal(t, i, inv.Header.Number)
		assertDecimal(t, decimal.NewFromInt(int64((i+1)*10)).String(), inv.Totals.Price, "price")
	}
}

func sampleFeed(date string, rates ...fxrate.Rate) *fxrate.Feed {
	return &fxrate.Feed{Cubes: []fxrate.Cube{{Date: date, Rates: rates}}}
}

func TestProcess_LiveFX(t *testing.T) {
	rates := &fakeRates{feed: sampleFeed("2023-11-13",
		fxrate.Rate{Currency: "USD", Value: "4.6541"},
		fxrate.Rate{Currency: "EUR", Value: "4.9273"},
	)}
	rules := `[
		{"type": "currency", "main": {"symbol": "XYZ"}, "secondary": [{"symbol": "ABC", "rate": 1.15}]},
		{"type": "bnr-fx-rate", "symbol": "EUR"}
	]`
	reg := prometheus.NewRegistry()
	recorder := metrics.NewRecorder("test", reg)
	e := newEngine(t, rules, engine.WithRateSource(rates), engine.WithMetrics(recorder))

	inv := e.Process(context.Background(), 12, time.Date(2023, 11, 13, 9, 0, 0, 0, time.UTC), []model.InvoicedItem{
		model.NewInvoicedItem("x", decimal.NewFromInt(1), decimal.NewFromInt(100)),
	})

	assert.Equal(t, []int{2023}, rates.years)
	assert.Equal(t, "EUR", inv.Header.Currency.Main)
	require.Len(t, inv.Header.Currency.ExchangeRates, 1)
	assert.Equal(t, "RON", inv.Header.Currency.ExchangeRates[0].Symbol)
	assertDecimal(t, "4.9273", inv.Header.Currency.ExchangeRates[0].Rate, "ron")

	require.Len(t, inv.Items[0].Extra.Currencies, 1)
	assert.Equal(t, "RON", inv.Items[0].Extra.Currencies[0].Currency)
	assertDecimal(t, "492.73", inv.Items[0].Extra.Currencies[0].ItemPrice, "ron.item_price")

	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.FXFetchTotal.WithLabelValues(metrics.OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(recorder.InvoicesTotal))
}

func TestProcess_LiveFX_DefaultSymbol(t *testing.T) {
	rates := &fakeRates{feed: sampleFeed("2023-11-13", fxrate.Rate{Currency: "RON", Value: "1"})}
	e := newEngine(t, `[{"type": "bnr-fx-rate"}]`, engine.WithRateSource(rates))

	inv := e.Process(context.Background(), 1, time.Date(2023, 11, 13, 0, 0, 0, 0, time.UTC), nil)

	assert.Equal(t, "RON", inv.Header.Currency.Main)
	require.Len(t, inv.Header.Currency.ExchangeRates, 1)
	assertDecimal(t, "1", inv.Header.Currency.ExchangeRates[0].Rate, "ron")
}

func TestProcess_LiveFX_ExplicitEmptySymbol(t *testing.T) {
	rates := &fakeRates{feed: sampleFeed("2023-11-13", fxrate.Rate{Currency: "EUR", Value: "4.9273"})}
	e := newEngine(t, `[{"type": "bnr-fx-rate", "symbol": ""}]`, engine.WithRateSource(rates))

	inv := e.Process(context.Background(), 1, time.Date(2023, 11, 13, 0, 0, 0, 0, time.UTC), nil)

	data, err := json.Marshal(inv.Header.Currency)
	require.NoError(t, err)
	assert.JSONEq(t, `{"main": "", "exchangeRates": {}}`, string(data))
}

func TestProcess_LiveFX_SymbolMissingFromCube(t *testing.T) {
	rates := &fakeRates{feed: sampleFeed("2023-11-13", fxrate.Rate{Currency: "USD", Value: "4.6541"})}
	e := newEngine(t, `[{"type": "bnr-fx-rate", "symbol": "GBP"}]`, engine.WithRateSource(rates))

	inv := e.Process(context.Background(), 1, time.Date(2023, 11, 13, 0, 0, 0, 0, time.UTC), nil)

	assert.Equal(t, "GBP", inv.Header.Currency.Main)
	assert.NotNil(t, inv.Header.Currency.ExchangeRates)
	assert.Empty(t, inv.Header.Currency.ExchangeRates)
}

func TestProcess_LiveFX_WeekendSnapsToFriday(t *testing.T) {
	rates := &fakeRates{feed: sampleFeed("2023-11-17", fxrate.Rate{Currency: "EUR", Value: "4.9700"})}
	e := newEngine(t, `[{"type": "bnr-fx-rate", "symbol": "EUR"}]`, engine.WithRateSource(rates))

	for _, day := range []int{18, 19} {
		inv := e.Process(context.Background(), 1, time.Date(2023, 11, day, 0, 0, 0, 0, time.UTC), nil)
		require.Len(t, inv.Header.Currency.ExchangeRates, 1, "day %d", day)
		assertDecimal(t, "4.97", inv.Header.Currency.ExchangeRates[0].Rate, "ron")
	}

	// the snapped date is still the invoice date in the header
	inv := e.Process(context.Background(), 1, time.Date(2023, 11, 19, 0, 0, 0, 0, time.UTC), nil)
	assert.Equal(t, 19, inv.Header.Date.Day())
}

func TestProcess_LiveFX_Failures(t *testing.T) {
	tests := []struct {
		name    string
		rates   *fakeRates
		level   string
		message string
		outcome string
	}{
		{
			name:    "date not found",
			rates:   &fakeRates{feed: sampleFeed("2023-11-10", fxrate.Rate{Currency: "EUR", Value: "4.97"})},
			level:   "info",
			message: "can't find BNR fx rates for 2023-11-13",
			outcome: metrics.OutcomeNotFound,
		},
		{
			name:    "malformed feed",
			rates:   &fakeRates{err: model.NewFeedError(model.ErrFeedMalformed, "u", "invalid XML", errors.New("EOF"))},
			level:   "warn",
			message: "invalid XML downloaded from BNR",
			outcome: metrics.OutcomeMalformed,
		},
		{
			name:    "transport failure",
			rates:   &fakeRates{err: model.NewFeedError(model.ErrFeedTransport, "u", "request failed", errors.New("connection refused"))},
			level:   "error",
			message: "download error on BNR fx-rates",
			outcome: metrics.OutcomeError,
		},
		{
			name:    "rate value not a number",
			rates:   &fakeRates{feed: sampleFeed("2023-11-13", fxrate.Rate{Currency: "EUR", Value: "n/a"})},
			level:   "error",
			message: "download error on BNR fx-rates",
			outcome: metrics.OutcomeError,
		},
		{
			name:    "unexpected error",
			rates:   &fakeRates{err: errors.New("boom")},
			level:   "error",
			message: "download error on BNR fx-rates",
			outcome: metrics.OutcomeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			recorder := metrics.NewRecorder("test", prometheus.NewRegistry())
			e := newEngine(t, `[
				{"type": "currency", "main": {"symbol": "XYZ"}, "secondary": [{"symbol": "ABC", "rate": 1.15}]},
				{"type": "bnr-fx-rate", "symbol": "EUR"}
			]`,
				engine.WithRateSource(tt.rates),
				engine.WithLogger(zerolog.New(&buf)),
				engine.WithMetrics(recorder),
			)

			var inv model.Invoice
			require.NotPanics(t, func() {
				inv = e.Process(context.Background(), 1, time.Date(2023, 11, 13, 0, 0, 0, 0, time.UTC), []model.InvoicedItem{
					model.NewInvoicedItem("x", decimal.NewFromInt(1), decimal.NewFromInt(1)),
				})
			})

			assert.Equal(t, 1, tt.rates.calls())
			assert.Equal(t, "EUR", inv.Header.Currency.Main)
			assert.NotNil(t, inv.Header.Currency.ExchangeRates)
			assert.Empty(t, inv.Header.Currency.ExchangeRates)
			assert.Empty(t, inv.Items[0].Extra.Currencies)
			assert.Nil(t, inv.Totals.Extra.Currencies)

			data, err := json.Marshal(inv.Header.Currency)
			require.NoError(t, err)
			assert.JSONEq(t, `{"main": "EUR", "exchangeRates": {}}`, string(data))

			var entry map[string]any
			// first entry; the debug summary follows it
			require.NoError(t, json.NewDecoder(&buf).Decode(&entry))
			assert.Equal(t, tt.level, entry["level"])
			assert.Equal(t, tt.message, entry["message"])

			assert.Equal(t, 1.0, testutil.ToFloat64(recorder.FXFetchTotal.WithLabelValues(tt.outcome)))
		})
	}
}

func TestProcess_LiveFX_BadValueOnOtherDate(t *testing.T) {
	rates := &fakeRates{feed: &fxrate.Feed{Cubes: []fxrate.Cube{
		{Date: "2011-11-10", Rates: []fxrate.Rate{{Currency: "EUR", Value: "bad"}}},
		{Date: "2011-11-11", Rates: []fxrate.Rate{{Currency: "EUR", Value: "4.9273"}, {Currency: "USD", Value: "bad"}}},
	}}}
	e := newEngine(t, `[{"type": "bnr-fx-rate", "symbol": "EUR"}]`, engine.WithRateSource(rates))

	inv := e.Process(context.Background(), 1, time.Date(2011, 11, 11, 0, 0, 0, 0, time.UTC), nil)

	data, err := json.Marshal(inv.Header.Currency)
	require.NoError(t, err)
	assert.JSONEq(t, `{"main": "EUR", "exchangeRates": {"RON": "4.9273"}}`, string(data))
}

func TestProcess_NoLiveFXRuleDoesNotFetch(t *testing.T) {
	rates := &fakeRates{}
	e := newEngine(t, basicRules, engine.WithRateSource(rates))

	e.Process(context.Background(), 12, time.Date(2011, 11, 11, 0, 0, 0, 0, time.UTC), nil)

	assert.Equal(t, 0, rates.calls())
}
