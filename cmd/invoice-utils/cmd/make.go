package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-utils/internal/model"
	"github.com/rezonia/invoice-utils/internal/render"
)

var outputDir string

var makeCmd = &cobra.Command{
	Use:   "make <invoices.json>",
	Short: "Render invoices as PDF files",
	Long: `Compute every invoice of a batch file and write one PDF per invoice,
named YYYYMMDD-NNNN-invoice.pdf, into the output directory.

Examples:
  invoice-utils make --rules basic.json invoices.json
  invoice-utils make --rules basic.json --output-dir out/ invoices.json`,
	Args: cobra.ExactArgs(1),
	RunE: runMake,
}

func init() {
	rootCmd.AddCommand(makeCmd)

	makeCmd.Flags().StringVarP(&outputDir, "output-dir", "o", "", "Directory for the PDF files (env: INVOICE_UTILS_INVOICE_DIR)")
}

func runMake(cmd *cobra.Command, args []string) error {
	eng, err := loadEngine()
	if err != nil {
		return err
	}
	entries, err := model.LoadBatchFile(args[0])
	if err != nil {
		return err
	}

	dir := outputDir
	if dir == "" {
		dir = cfg.InvoiceDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	renderer := render.NewRenderer()
	for _, inv := range computeAll(eng, entries) {
		content, err := renderer.Render(inv)
		if err != nil {
			return fmt.Errorf("render invoice %d: %w", inv.Header.Number, err)
		}
		path, err := render.Save(dir, render.FileName(inv), content)
		if err != nil {
			return fmt.Errorf("save invoice %d: %w", inv.Header.Number, err)
		}
		fmt.Println(path)
	}
	return nil
}
