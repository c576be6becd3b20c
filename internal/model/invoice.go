package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Party holds buyer or seller details exactly as configured in the header rule
type Party map[string]any

// Clone returns a deep copy of p. Nested objects and lists are copied too.
func (p Party) Clone() Party {
	if p == nil {
		return nil
	}
	return Party(cloneObject(p))
}

func cloneObject(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return cloneObject(val)
	case Party:
		return val.Clone()
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	default:
		return v
	}
}

// InvoicedItem is one line of input to the engine
type InvoicedItem struct {
	Text      string          `json:"text"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// NewInvoicedItem creates an invoiced item
func NewInvoicedItem(text string, quantity, unitPrice decimal.Decimal) InvoicedItem {
	return InvoicedItem{
		Text:      text,
		Quantity:  quantity,
		UnitPrice: unitPrice,
	}
}

// UnmarshalJSON decodes an item, defaulting quantity to 1 and unit price to 0
func (i *InvoicedItem) UnmarshalJSON(data []byte) error {
	type alias InvoicedItem
	item := alias{
		Quantity:  decimal.NewFromInt(1),
		UnitPrice: decimal.Zero,
	}
	if err := json.Unmarshal(data, &item); err != nil {
		return err
	}
	*i = InvoicedItem(item)
	return nil
}

// ExchangeRate is one secondary currency and its rate against the main currency
type ExchangeRate struct {
	Symbol string
	Rate   decimal.Decimal
}

// ExchangeRates keeps rates in insertion order.
// Setting an existing symbol replaces the rate in place.
type ExchangeRates []ExchangeRate

// Set inserts or replaces the rate for symbol
func (r *ExchangeRates) Set(symbol string, rate decimal.Decimal) {
	for i := range *r {
		if (*r)[i].Symbol == symbol {
			(*r)[i].Rate = rate
			return
		}
	}
	*r = append(*r, ExchangeRate{Symbol: symbol, Rate: rate})
}

// Get returns the rate for symbol
func (r ExchangeRates) Get(symbol string) (decimal.Decimal, bool) {
	for _, er := range r {
		if er.Symbol == symbol {
			return er.Rate, true
		}
	}
	return decimal.Zero, false
}

// MarshalJSON encodes the rates as a JSON object in insertion order
func (r ExchangeRates) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, er := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(er.Symbol)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(er.Rate)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping key order
func (r *ExchangeRates) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("exchange rates: expected object, got %v", tok)
	}
	rates := ExchangeRates{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		symbol, ok := tok.(string)
		if !ok {
			return fmt.Errorf("exchange rates: unexpected key %v", tok)
		}
		var rate decimal.Decimal
		if err := dec.Decode(&rate); err != nil {
			return fmt.Errorf("exchange rates: rate for %s: %w", symbol, err)
		}
		rates.Set(symbol, rate)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*r = rates
	return nil
}

// CurrencyInfo describes the main currency and the secondary exchange rates
type CurrencyInfo struct {
	Main          string        `json:"main"`
	ExchangeRates ExchangeRates `json:"exchangeRates"`
}

// IsZero reports whether no currency rule has filled the info
func (c CurrencyInfo) IsZero() bool {
	return c.Main == "" && c.ExchangeRates == nil
}

// MarshalJSON encodes an unset currency info as an empty object
func (c CurrencyInfo) MarshalJSON() ([]byte, error) {
	if c.IsZero() {
		return []byte("{}"), nil
	}
	type alias CurrencyInfo
	return json.Marshal(alias(c))
}

// Header is the invoice header
type Header struct {
	Number   int          `json:"number"`
	Date     time.Time    `json:"date"`
	Currency CurrencyInfo `json:"currency"`
	Buyer    Party        `json:"buyer"`
	Seller   Party        `json:"seller"`
}

// Tax is one named charge computed by an item operation
type Tax struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// CurrencyLine is a line item re-priced in one secondary currency
type CurrencyLine struct {
	Currency  string          `json:"currency"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ItemPrice decimal.Decimal `json:"item_price"`
	ItemTotal decimal.Decimal `json:"item_total"`
	Taxes     []Tax           `json:"taxes"`
}

// LineExtra holds the secondary currency lines of an item
type LineExtra struct {
	Currencies []CurrencyLine `json:"currencies"`
}

// LineItem is a computed line item in the main currency
type LineItem struct {
	ItemNo    int             `json:"item_no"`
	Currency  string          `json:"currency"`
	Text      string          `json:"text"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	ItemPrice decimal.Decimal `json:"item_price"`
	ItemTotal decimal.Decimal `json:"item_total"`
	Taxes     []Tax           `json:"taxes"`
	Extra     LineExtra       `json:"extra"`
}

// CurrencyTotals are totals over the lines of one secondary currency
type CurrencyTotals struct {
	Currency string          `json:"currency"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
	Taxes    []Tax           `json:"taxes,omitempty"`
}

// TotalsExtra holds per secondary currency totals
type TotalsExtra struct {
	Currencies []CurrencyTotals `json:"currencies,omitempty"`
}

// Totals are the aggregated invoice totals in the main currency
type Totals struct {
	Price decimal.Decimal `json:"price"`
	Total decimal.Decimal `json:"total"`
	Taxes []Tax           `json:"taxes,omitempty"`
	Extra TotalsExtra     `json:"extra"`
}

// Invoice is the computed invoice document
type Invoice struct {
	Header Header     `json:"header"`
	Items  []LineItem `json:"items"`
	Totals Totals     `json:"totals"`
}

// NewInvoice returns an empty invoice skeleton
func NewInvoice() Invoice {
	return Invoice{
		Header: Header{
			Buyer:  Party{},
			Seller: Party{},
		},
		Items: []LineItem{},
		Totals: Totals{
			Price: decimal.Zero,
			Total: decimal.Zero,
		},
	}
}

// PricedLine is anything the totals aggregator can sum
type PricedLine interface {
	LinePrice() decimal.Decimal
	LineTotal() decimal.Decimal
	LineTaxes() []Tax
}

// LinePrice implements PricedLine
func (li LineItem) LinePrice() decimal.Decimal { return li.ItemPrice }

// LineTotal implements PricedLine
func (li LineItem) LineTotal() decimal.Decimal { return li.ItemTotal }

// LineTaxes implements PricedLine
func (li LineItem) LineTaxes() []Tax { return li.Taxes }

// LinePrice implements PricedLine
func (cl CurrencyLine) LinePrice() decimal.Decimal { return cl.ItemPrice }

// LineTotal implements PricedLine
func (cl CurrencyLine) LineTotal() decimal.Decimal { return cl.ItemTotal }

// LineTaxes implements PricedLine
func (cl CurrencyLine) LineTaxes() []Tax { return cl.Taxes }
