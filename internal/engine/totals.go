package engine

import (
	"github.com/shopspring/decimal"

	dec "github.com/rezonia/invoice-utils/internal/decimal"
	"github.com/rezonia/invoice-utils/internal/model"
)

// Aggregate sums price, total and taxes over lines.
// Taxes are keyed by name in order of first appearance; nil when no line has a tax.
func Aggregate[L model.PricedLine](lines []L) (price, total decimal.Decimal, taxes []model.Tax) {
	price = decimal.Zero
	total = decimal.Zero

	var names []string
	sums := map[string][]decimal.Decimal{}
	for _, line := range lines {
		price = price.Add(line.LinePrice())
		total = total.Add(line.LineTotal())
		for _, tax := range line.LineTaxes() {
			if _, seen := sums[tax.Name]; !seen {
				names = append(names, tax.Name)
			}
			sums[tax.Name] = append(sums[tax.Name], tax.Value)
		}
	}

	for _, name := range names {
		taxes = append(taxes, model.Tax{Name: name, Value: dec.SumRounded(sums[name])})
	}
	return price, total, taxes
}

// computeTotals aggregates the main currency items, then each secondary
// currency over the lines sharing its symbol
func computeTotals(inv model.Invoice) model.Invoice {
	price, total, taxes := Aggregate(inv.Items)
	totals := model.Totals{
		Price: price,
		Total: total,
		Taxes: taxes,
	}

	var symbols []string
	buckets := map[string][]model.CurrencyLine{}
	for _, item := range inv.Items {
		for _, line := range item.Extra.Currencies {
			if _, seen := buckets[line.Currency]; !seen {
				symbols = append(symbols, line.Currency)
			}
			buckets[line.Currency] = append(buckets[line.Currency], line)
		}
	}

	for _, symbol := range symbols {
		price, total, taxes := Aggregate(buckets[symbol])
		totals.Extra.Currencies = append(totals.Extra.Currencies, model.CurrencyTotals{
			Currency: symbol,
			Price:    price,
			Total:    total,
			Taxes:    taxes,
		})
	}

	inv.Totals = totals
	return inv
}
