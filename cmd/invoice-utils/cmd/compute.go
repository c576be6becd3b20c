package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-utils/internal/engine"
	"github.com/rezonia/invoice-utils/internal/model"
)

var (
	outputFile string
	timeout    time.Duration
)

var computeCmd = &cobra.Command{
	Use:   "compute <invoices.json>",
	Short: "Compute invoices and print them",
	Long: `Compute every invoice of a batch file with the given rule template.

The batch file is a JSON list of [number, "date", [items...]] entries, each
item an object with text, quantity and unit_price.

Examples:
  invoice-utils compute --rules basic.json invoices.json
  invoice-utils compute --rules basic.json invoices.json -f table
  invoice-utils compute --rules basic.json invoices.json -o computed.json`,
	Args: cobra.ExactArgs(1),
	RunE: runCompute,
}

func init() {
	rootCmd.AddCommand(computeCmd)

	computeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	computeCmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Processing timeout per invoice")
}

func runCompute(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}
	entries, err := model.LoadBatchFile(args[0])
	if err != nil {
		return err
	}
	printVerbose("Found %d invoices to compute\n", len(entries))

	invoices := computeAll(eng, entries)
	return outputResults(invoices)
}

func computeAll(eng *engine.Engine, entries []model.BatchEntry) []model.Invoice {
	invoices := make([]model.Invoice, 0, len(entries))
	for _, entry := range entries {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		inv := eng.Process(ctx, entry.Number, entry.Date, entry.Items)
		cancel()

		printVerbose("Invoice %d: %d items, total %s %s\n",
			entry.Number, len(inv.Items), inv.Totals.Total.String(), inv.Header.Currency.Main)
		invoices = append(invoices, inv)
	}
	return invoices
}

func outputResults(invoices []model.Invoice) error {
	var writer io.Writer = os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		writer = f
	}

	switch outputFormat {
	case "json":
		return outputJSON(writer, invoices)
	case "table":
		return outputTable(writer, invoices)
	case "csv":
		return outputCSV(writer, invoices)
	default:
		return fmt.Errorf("unsupported output format: %s", outputFormat)
	}
}

func outputJSON(w io.Writer, invoices []model.Invoice) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(invoices)
}

func outputTable(w io.Writer, invoices []model.Invoice) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NUMBER\tDATE\tCURRENCY\tITEMS\tPRICE\tTAXES\tTOTAL")
	fmt.Fprintln(tw, "------\t----\t--------\t-----\t-----\t-----\t-----")

	for _, inv := range invoices {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			inv.Header.Number,
			inv.Header.Date.Format("2006-01-02"),
			inv.Header.Currency.Main,
			len(inv.Items),
			inv.Totals.Price.StringFixed(2),
			formatTaxes(inv.Totals.Taxes),
			inv.Totals.Total.StringFixed(2),
		)
		for _, ct := range inv.Totals.Extra.Currencies {
			fmt.Fprintf(tw, "\t\t%s\t\t%s\t%s\t%s\n",
				ct.Currency,
				ct.Price.StringFixed(2),
				formatTaxes(ct.Taxes),
				ct.Total.StringFixed(2),
			)
		}
	}

	return tw.Flush()
}

func outputCSV(w io.Writer, invoices []model.Invoice) error {
	fmt.Fprintln(w, "number,date,currency,items,price,taxes,total")

	for _, inv := range invoices {
		fmt.Fprintf(w, "%d,%s,%s,%d,%s,%s,%s\n",
			inv.Header.Number,
			inv.Header.Date.Format("2006-01-02"),
			escapeCSV(inv.Header.Currency.Main),
			len(inv.Items),
			inv.Totals.Price.String(),
			escapeCSV(formatTaxes(inv.Totals.Taxes)),
			inv.Totals.Total.String(),
		)
	}

	return nil
}

func formatTaxes(taxes []model.Tax) string {
	parts := make([]string, 0, len(taxes))
	for _, tax := range taxes {
		parts = append(parts, tax.Name+"="+tax.Value.StringFixed(2))
	}
	return strings.Join(parts, " ")
}

func escapeCSV(s string) string {
	if strings.Contains(s, ",") || strings.Contains(s, "\"") || strings.Contains(s, "\n") {
		return "\"" + strings.ReplaceAll(s, "\"", "\"\"") + "\""
	}
	return s
}
