package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-utils/internal/config"
	"github.com/rezonia/invoice-utils/internal/engine"
	"github.com/rezonia/invoice-utils/internal/fxrate"
	"github.com/rezonia/invoice-utils/internal/logging"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	rulesFile    string
	logLevel     string
	logFormat    string

	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "invoice-utils",
	Short: "Compute invoices from JSON rule templates",
	Long: `invoice-utils computes invoices from a list of invoiced items and a JSON
rule template: header parties, main and secondary currencies, live BNR
exchange rates, per item taxes and totals.

Examples:
  # Print computed invoices as JSON
  invoice-utils compute --rules basic.json invoices.json

  # Render PDF invoices
  invoice-utils make --rules basic.json --output-dir invoices invoices.json

  # Check a rule template
  invoice-utils validate basic.json

  # Start the HTTP API
  invoice-utils serve --address :8080`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "json", "Output format (json, csv, table)")
	rootCmd.PersistentFlags().StringVarP(&rulesFile, "rules", "t", "", "JSON rule template file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (env: INVOICE_UTILS_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format, json or console (env: INVOICE_UTILS_LOG_FORMAT)")
}

func initConfig() error {
	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded

	// Flags win over the environment
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	if logFormat != "" {
		cfg.LogFormat = logFormat
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	log = logging.New(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	return nil
}

// rateSource builds the BNR client from the loaded configuration, cached
// when INVOICE_UTILS_FX_CACHE_TTL is positive
func rateSource() engine.RateSource {
	client := fxrate.NewClient(
		fxrate.WithBaseURL(cfg.FXBaseURL),
		fxrate.WithTimeout(cfg.FXTimeout),
	)
	if cfg.FXCacheTTL <= 0 {
		return client
	}
	return fxrate.NewCachedSource(client, cfg.FXCacheTTL)
}

// loadEngine builds an engine from the --rules file
func loadEngine() (*engine.Engine, error) {
	if rulesFile == "" {
		return nil, fmt.Errorf("--rules is required")
	}
	return engine.NewFromFile(rulesFile,
		engine.WithLogger(log),
		engine.WithRateSource(rateSource()),
	)
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
