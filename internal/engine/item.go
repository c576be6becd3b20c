package engine

import (
	"github.com/shopspring/decimal"

	dec "github.com/rezonia/invoice-utils/internal/decimal"
	"github.com/rezonia/invoice-utils/internal/model"
)

var defaultVATRate = dec.MustFromString("0.19")

func defaultItemTax(item model.InvoicedItem) decimal.Decimal {
	return dec.Round(defaultVATRate.Mul(item.UnitPrice).Mul(item.Quantity))
}

// applyOperation computes the tax of one item operation.
// Unknown operations yield no tax.
func applyOperation(op model.ItemOpRule, itemPrice decimal.Decimal) (model.Tax, bool) {
	switch op.Operation {
	case model.OperationMultiply:
		return model.Tax{Name: op.Name, Value: dec.Mul(op.Value, itemPrice)}, true
	case model.OperationAdd:
		return model.Tax{Name: op.Name, Value: dec.Add(op.Value, itemPrice)}, true
	default:
		return model.Tax{}, false
	}
}

func taxValues(taxes []model.Tax) []decimal.Decimal {
	values := make([]decimal.Decimal, len(taxes))
	for i, t := range taxes {
		values[i] = t.Value
	}
	return values
}

// processItem prices one item in the main currency and in every secondary
// currency, and appends it to the invoice.
// baseTax is replaced by the sum of the item operation taxes.
func processItem(inv model.Invoice, ops []model.ItemOpRule, itemNo int, baseTax decimal.Decimal, item model.InvoicedItem) model.Invoice {
	quantity := dec.Round(item.Quantity)
	unitPrice := dec.Round(item.UnitPrice)
	itemPrice := dec.Mul(quantity, unitPrice)

	taxes := make([]model.Tax, 0, len(ops))
	for _, op := range ops {
		if tax, ok := applyOperation(op, itemPrice); ok {
			taxes = append(taxes, tax)
		}
	}
	itemTax := dec.SumRounded(taxValues(taxes))

	currencyInfo := inv.Header.Currency
	currencies := make([]model.CurrencyLine, 0, len(currencyInfo.ExchangeRates))
	for _, er := range currencyInfo.ExchangeRates {
		rate := dec.Round(er.Rate)
		unitPriceC := dec.Mul(unitPrice, rate)
		itemPriceC := dec.Mul(quantity, unitPriceC)

		taxesC := make([]model.Tax, len(taxes))
		for i, tax := range taxes {
			taxesC[i] = model.Tax{Name: tax.Name, Value: dec.Mul(tax.Value, rate)}
		}

		currencies = append(currencies, model.CurrencyLine{
			Currency:  er.Symbol,
			UnitPrice: unitPriceC,
			ItemPrice: itemPriceC,
			ItemTotal: itemPriceC.Add(dec.Sum(taxValues(taxesC))),
			Taxes:     taxesC,
		})
	}

	inv.Items = append(inv.Items, model.LineItem{
		ItemNo:    itemNo,
		Currency:  currencyInfo.Main,
		Text:      item.Text,
		Quantity:  quantity,
		UnitPrice: unitPrice,
		ItemPrice: itemPrice,
		ItemTotal: itemPrice.Add(itemTax),
		Taxes:     taxes,
		Extra:     model.LineExtra{Currencies: currencies},
	})
	return inv
}
