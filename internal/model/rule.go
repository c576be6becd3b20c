package model

import (
	"bytes"
	"encoding/json"
	"os"

	"github.com/shopspring/decimal"
)

// RuleType is the discriminator of a rule record
type RuleType string

const (
	RuleTypeHeader   RuleType = "header"
	RuleTypeCurrency RuleType = "currency"
	RuleTypeLiveFX   RuleType = "bnr-fx-rate"
	RuleTypeItemOp   RuleType = "item_op"
)

// DefaultLiveFXSymbol is used when a live FX rule names no symbol
const DefaultLiveFXSymbol = "RON"

// Operation is the arithmetic applied by an item operation
type Operation string

const (
	OperationAdd      Operation = "+"
	OperationMultiply Operation = "*"
)

// HeaderRule seeds buyer and seller
type HeaderRule struct {
	Buyer  Party `json:"buyer"`
	Seller Party `json:"seller"`
}

// CurrencySymbol names a currency
type CurrencySymbol struct {
	Symbol string `json:"symbol"`
}

// SecondaryCurrency is a statically configured exchange rate.
// Nil fields were absent from the rule.
type SecondaryCurrency struct {
	Symbol *string          `json:"symbol"`
	Rate   *decimal.Decimal `json:"rate"`
}

// CurrencyRule seeds the main currency and fixed secondary rates
type CurrencyRule struct {
	Main      CurrencySymbol      `json:"main"`
	Secondary []SecondaryCurrency `json:"secondary"`
}

// LiveFXRule requests rates from the BNR daily feed.
// Symbol is nil when the rule has no symbol key.
type LiveFXRule struct {
	Symbol *string `json:"symbol"`
}

// SymbolOrDefault returns the configured symbol, RON when the key is absent.
// An explicit empty symbol is kept.
func (r LiveFXRule) SymbolOrDefault() string {
	if r.Symbol == nil {
		return DefaultLiveFXSymbol
	}
	return *r.Symbol
}

// ItemOpRule computes one named tax per line item
type ItemOpRule struct {
	Name      string          `json:"name"`
	Operation Operation       `json:"operation"`
	Value     decimal.Decimal `json:"value"`
}

// RuleSet is a rule list dispatched by type.
// Header, Currency and LiveFX hold the first rule of their type, ItemOps holds
// every item operation in list order.
type RuleSet struct {
	Header   *HeaderRule
	Currency *CurrencyRule
	LiveFX   *LiveFXRule
	ItemOps  []ItemOpRule
	Raw      []json.RawMessage
}

// LoadRulesFile reads and parses a rule file
func LoadRulesFile(path string) (RuleSet, error) {
	if path == "" {
		return RuleSet{}, NewInputError(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, NewInputError(path)
	}
	return ParseRules(path, data)
}

// ParseRules parses a JSON list of rule records.
// Empty data is an InputError, anything but a JSON list an InputFormatError.
func ParseRules(source string, data []byte) (RuleSet, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return RuleSet{}, NewInputError(source)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return RuleSet{}, NewInputFormatError(source, err)
	}
	if raw == nil {
		// JSON null
		return RuleSet{}, NewInputFormatError(source, nil)
	}
	return RulesFromRaw(source, raw)
}

// RulesFromRaw dispatches an already decoded rule list.
// Records that are not objects or do not fit their type are ignored.
func RulesFromRaw(source string, raw []json.RawMessage) (RuleSet, error) {
	if raw == nil {
		return RuleSet{}, NewInputError(source)
	}

	set := RuleSet{
		ItemOps: []ItemOpRule{},
		Raw:     raw,
	}
	for _, record := range raw {
		var tag struct {
			Type RuleType `json:"type"`
		}
		if err := json.Unmarshal(record, &tag); err != nil {
			continue
		}

		switch tag.Type {
		case RuleTypeHeader:
			if set.Header != nil {
				continue
			}
			var rule HeaderRule
			if err := json.Unmarshal(record, &rule); err == nil {
				set.Header = &rule
			}
		case RuleTypeCurrency:
			if set.Currency != nil {
				continue
			}
			var rule CurrencyRule
			if err := json.Unmarshal(record, &rule); err == nil {
				set.Currency = &rule
			}
		case RuleTypeLiveFX:
			if set.LiveFX != nil {
				continue
			}
			var rule LiveFXRule
			if err := json.Unmarshal(record, &rule); err == nil {
				set.LiveFX = &rule
			}
		case RuleTypeItemOp:
			var rule ItemOpRule
			if err := json.Unmarshal(record, &rule); err == nil {
				set.ItemOps = append(set.ItemOps, rule)
			}
		}
	}
	return set, nil
}
