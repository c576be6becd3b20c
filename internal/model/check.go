package model

import (
	"encoding/json"
	"fmt"
)

// RuleReport lists problems found in a rule list. Errors mark records the
// engine ignores, warnings mark records it applies differently than written.
type RuleReport struct {
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Valid reports whether no errors were found
func (r RuleReport) Valid() bool {
	return len(r.Errors) == 0
}

// CheckRules inspects every record of a rule list the way RulesFromRaw
// dispatches it
func CheckRules(raw []json.RawMessage) RuleReport {
	var report RuleReport
	seen := map[RuleType]int{}

	for i, record := range raw {
		pos := i + 1
		var tag struct {
			Type RuleType `json:"type"`
		}
		if err := json.Unmarshal(record, &tag); err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("rule %d: not a rule object: %v", pos, err))
			continue
		}

		switch tag.Type {
		case RuleTypeHeader:
			var rule HeaderRule
			if err := json.Unmarshal(record, &rule); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("rule %d: invalid header rule: %v", pos, err))
				continue
			}
		case RuleTypeCurrency:
			var rule CurrencyRule
			if err := json.Unmarshal(record, &rule); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("rule %d: invalid currency rule: %v", pos, err))
				continue
			}
			if rule.Main.Symbol == "" {
				report.Warnings = append(report.Warnings, fmt.Sprintf("rule %d: currency rule has no main symbol", pos))
			}
			for j, secondary := range rule.Secondary {
				if secondary.Symbol == nil {
					report.Warnings = append(report.Warnings, fmt.Sprintf("rule %d: secondary currency %d has no symbol, keyed as currency-%d", pos, j, j))
				}
				if secondary.Rate == nil {
					report.Warnings = append(report.Warnings, fmt.Sprintf("rule %d: secondary currency %d has no rate, using 1", pos, j))
				}
			}
		case RuleTypeLiveFX:
			var rule LiveFXRule
			if err := json.Unmarshal(record, &rule); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("rule %d: invalid bnr-fx-rate rule: %v", pos, err))
				continue
			}
			if rule.Symbol != nil && *rule.Symbol == "" {
				report.Warnings = append(report.Warnings, fmt.Sprintf("rule %d: bnr-fx-rate symbol is empty, no rate will be found", pos))
			}
			if seen[RuleTypeCurrency] > 0 {
				report.Warnings = append(report.Warnings, fmt.Sprintf("rule %d: bnr-fx-rate replaces the static currency rule", pos))
			}
		case RuleTypeItemOp:
			var rule ItemOpRule
			if err := json.Unmarshal(record, &rule); err != nil {
				report.Errors = append(report.Errors, fmt.Sprintf("rule %d: invalid item_op rule: %v", pos, err))
				continue
			}
			if rule.Operation != OperationAdd && rule.Operation != OperationMultiply {
				report.Warnings = append(report.Warnings, fmt.Sprintf("rule %d: item_op '%s' has unsupported operation %q and is skipped", pos, rule.Name, rule.Operation))
			}
		default:
			report.Warnings = append(report.Warnings, fmt.Sprintf("rule %d: unknown rule type %q is ignored", pos, tag.Type))
			continue
		}

		if tag.Type != RuleTypeItemOp && seen[tag.Type] > 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("rule %d: duplicate %s rule is ignored", pos, tag.Type))
		}
		seen[tag.Type]++
	}
	return report
}
