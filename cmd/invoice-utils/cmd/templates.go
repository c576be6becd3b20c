package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-utils/internal/store"
)

var templatesDir string

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List stored rule templates",
	Long: `List the rule templates of the templates directory served by the API.

Examples:
  invoice-utils templates
  invoice-utils templates --dir ./templates -f json`,
	RunE: runTemplates,
}

func init() {
	rootCmd.AddCommand(templatesCmd)

	templatesCmd.Flags().StringVar(&templatesDir, "dir", "", "Templates directory (env: INVOICE_UTILS_TEMPLATES_DIR)")
}

// TemplateSummary describes one stored template
type TemplateSummary struct {
	Name     string `json:"name"`
	Rules    int    `json:"rules"`
	Currency string `json:"currency,omitempty"`
	LiveFX   string `json:"bnr_fx_rate,omitempty"`
	ItemOps  int    `json:"item_ops"`
	Default  bool   `json:"default"`
}

func runTemplates(cmd *cobra.Command, args []string) error {
	dir := templatesDir
	if dir == "" {
		dir = cfg.TemplatesDir
	}

	templates, err := store.NewFileRepository(dir).List()
	if err != nil {
		return err
	}

	summaries := make([]TemplateSummary, 0, len(templates))
	for _, t := range templates {
		summaries = append(summaries, summarize(t))
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(summaries)
	}

	if len(summaries) == 0 {
		fmt.Printf("No templates found in %s\n", dir)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRULES\tCURRENCY\tBNR RATE\tITEM OPS\tDEFAULT")
	fmt.Fprintln(w, "----\t-----\t--------\t--------\t--------\t-------")
	for _, s := range summaries {
		def := ""
		if s.Default {
			def = "*"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\t%s\n", s.Name, s.Rules, s.Currency, s.LiveFX, s.ItemOps, def)
	}
	return w.Flush()
}

func summarize(t store.Template) TemplateSummary {
	summary := TemplateSummary{
		Name:    t.Name,
		Rules:   len(t.Rules),
		Default: t.Name == cfg.DefaultRuleTemplateName,
	}
	set, err := t.RuleSet()
	if err != nil {
		return summary
	}
	if set.Currency != nil {
		summary.Currency = set.Currency.Main.Symbol
	}
	if set.LiveFX != nil {
		summary.LiveFX = set.LiveFX.SymbolOrDefault()
	}
	summary.ItemOps = len(set.ItemOps)
	return summary
}
