package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-utils/internal/model"
)

var (
	strictValidation bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate rule template files",
	Long: `Validate one or more rule template files.

Checks performed:
  - The file holds a JSON list of rule objects
  - Every rule decodes into its type (header, currency, bnr-fx-rate, item_op)
  - Duplicate header, currency and bnr-fx-rate rules (only the first applies)
  - Unsupported item operations and unknown rule types
  - Secondary currencies without symbol or rate

Examples:
  invoice-utils validate basic.json
  invoice-utils validate templates/*.json --strict`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&strictValidation, "strict", false, "Treat warnings as errors")
}

func runValidate(cmd *cobra.Command, args []string) error {
	results := make([]*ValidationResult, 0, len(args))
	allValid := true

	for _, file := range args {
		result := validateFile(file)
		results = append(results, result)
		if !result.Valid {
			allValid = false
		}
	}

	// Output results
	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Printf("✓ %s: VALID\n", r.File)
			} else {
				fmt.Printf("✗ %s: INVALID\n", r.File)
				for _, e := range r.Errors {
					fmt.Printf("  - %s\n", e)
				}
			}
			for _, w := range r.Warnings {
				fmt.Printf("  ⚠ %s\n", w)
			}
		}
	}

	if !allValid {
		return fmt.Errorf("validation failed for some files")
	}
	return nil
}

func validateFile(filePath string) *ValidationResult {
	result := &ValidationResult{
		File:     filePath,
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
	}

	set, err := model.LoadRulesFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	report := model.CheckRules(set.Raw)
	result.Errors = append(result.Errors, report.Errors...)
	if strictValidation {
		result.Errors = append(result.Errors, report.Warnings...)
	} else {
		result.Warnings = append(result.Warnings, report.Warnings...)
	}
	result.Valid = len(result.Errors) == 0
	result.Rules = RuleCounts{
		Header:   set.Header != nil,
		Currency: set.Currency != nil,
		LiveFX:   set.LiveFX != nil,
		ItemOps:  len(set.ItemOps),
	}
	return result
}

// RuleCounts summarizes which rules a template applies
type RuleCounts struct {
	Header   bool `json:"header"`
	Currency bool `json:"currency"`
	LiveFX   bool `json:"bnr_fx_rate"`
	ItemOps  int  `json:"item_ops"`
}

// ValidationResult holds the result of validating a single file
type ValidationResult struct {
	File     string     `json:"file"`
	Valid    bool       `json:"valid"`
	Rules    RuleCounts `json:"rules"`
	Errors   []string   `json:"errors,omitempty"`
	Warnings []string   `json:"warnings,omitempty"`
}
