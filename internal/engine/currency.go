package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	dec "github.com/rezonia/invoice-utils/internal/decimal"
	"github.com/rezonia/invoice-utils/internal/fxrate"
	"github.com/rezonia/invoice-utils/internal/metrics"
	"github.com/rezonia/invoice-utils/internal/model"
)

// ReportingCurrency keys every rate found in the BNR feed.
// The requested symbol is not used as the key.
const ReportingCurrency = "RON"

// applyCurrency seeds main currency and fixed rates from the currency rule
func applyCurrency(inv model.Invoice, rule *model.CurrencyRule) model.Invoice {
	if rule == nil {
		return inv
	}

	rates := model.ExchangeRates{}
	for index, secondary := range rule.Secondary {
		symbol := fmt.Sprintf("currency-%d", index)
		if secondary.Symbol != nil {
			symbol = *secondary.Symbol
		}
		rate := dec.FromInt(1)
		if secondary.Rate != nil {
			rate = *secondary.Rate
		}
		rates.Set(symbol, rate)
	}

	inv.Header.Currency = model.CurrencyInfo{
		Main:          rule.Main.Symbol,
		ExchangeRates: rates,
	}
	return inv
}

// applyLiveFX replaces the currency info with the BNR rate for the invoice date.
// Download and lookup failures leave an empty rate mapping; they never fail
// the invoice.
func (e *Engine) applyLiveFX(ctx context.Context, inv model.Invoice, rule *model.LiveFXRule, invoiceDate time.Time) model.Invoice {
	if rule == nil {
		return inv
	}

	symbol := rule.SymbolOrDefault()
	rates := model.ExchangeRates{}
	effective := fxrate.EffectiveDate(invoiceDate)
	date := fxrate.FormatDate(effective)

	start := time.Now()
	outcome := e.lookupRate(ctx, &rates, symbol, effective.Year(), date)
	e.metrics.FXFetched(outcome, time.Since(start))

	inv.Header.Currency = model.CurrencyInfo{
		Main:          symbol,
		ExchangeRates: rates,
	}
	return inv
}

func (e *Engine) lookupRate(ctx context.Context, rates *model.ExchangeRates, symbol string, year int, date string) string {
	feed, err := e.rates.FetchYear(ctx, year)
	if err != nil {
		if errors.Is(err, model.ErrFeedMalformed) {
			e.log.Warn().Str("date", date).Msg("invalid XML downloaded from BNR")
			return metrics.OutcomeMalformed
		}
		e.log.Error().Err(err).Str("date", date).Msg("download error on BNR fx-rates")
		return metrics.OutcomeError
	}

	cube, ok := feed.RatesOn(date)
	if !ok {
		e.log.Info().Str("date", date).Msgf("can't find BNR fx rates for %s", date)
		return metrics.OutcomeNotFound
	}

	rate, ok, err := cube.Rate(symbol)
	if err != nil {
		e.log.Error().Err(err).Str("date", date).Msg("download error on BNR fx-rates")
		return metrics.OutcomeError
	}
	if ok {
		rates.Set(ReportingCurrency, rate)
	}
	return metrics.OutcomeOK
}
