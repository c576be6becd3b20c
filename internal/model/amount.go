package model

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	dec "github.com/rezonia/invoice-utils/internal/decimal"
)

// Amount formats a computed amount with the fixed scale of every stored
// invoice amount, so 10 is written as "10.000000".
func Amount(d decimal.Decimal) string {
	return d.StringFixedBank(dec.Places)
}

// MarshalJSON writes the value at the fixed amount scale
func (t Tax) MarshalJSON() ([]byte, error) {
	type alias Tax
	return json.Marshal(struct {
		alias
		Value string `json:"value"`
	}{alias(t), Amount(t.Value)})
}

// MarshalJSON writes prices and totals at the fixed amount scale
func (cl CurrencyLine) MarshalJSON() ([]byte, error) {
	type alias CurrencyLine
	return json.Marshal(struct {
		alias
		UnitPrice string `json:"unit_price"`
		ItemPrice string `json:"item_price"`
		ItemTotal string `json:"item_total"`
	}{alias(cl), Amount(cl.UnitPrice), Amount(cl.ItemPrice), Amount(cl.ItemTotal)})
}

// MarshalJSON writes quantity, prices and totals at the fixed amount scale
func (li LineItem) MarshalJSON() ([]byte, error) {
	type alias LineItem
	return json.Marshal(struct {
		alias
		Quantity  string `json:"quantity"`
		UnitPrice string `json:"unit_price"`
		ItemPrice string `json:"item_price"`
		ItemTotal string `json:"item_total"`
	}{alias(li), Amount(li.Quantity), Amount(li.UnitPrice), Amount(li.ItemPrice), Amount(li.ItemTotal)})
}

// MarshalJSON writes price and total at the fixed amount scale
func (ct CurrencyTotals) MarshalJSON() ([]byte, error) {
	type alias CurrencyTotals
	return json.Marshal(struct {
		alias
		Price string `json:"price"`
		Total string `json:"total"`
	}{alias(ct), Amount(ct.Price), Amount(ct.Total)})
}

// MarshalJSON writes price and total at the fixed amount scale
func (t Totals) MarshalJSON() ([]byte, error) {
	type alias Totals
	return json.Marshal(struct {
		alias
		Price string `json:"price"`
		Total string `json:"total"`
	}{alias(t), Amount(t.Price), Amount(t.Total)})
}
