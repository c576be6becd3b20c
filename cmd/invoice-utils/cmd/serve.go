package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-utils/internal/mail"
	"github.com/rezonia/invoice-utils/internal/metrics"
	"github.com/rezonia/invoice-utils/internal/server"
	"github.com/rezonia/invoice-utils/internal/store"
)

var (
	serverAddr   string
	serverDebug  bool
	readTimeout  time.Duration
	writeTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for rule templates and invoices.

The API provides endpoints for:
  - GET    /api/v1/templates        - List rule templates
  - GET    /api/v1/template/{name}  - Get a rule template
  - PUT    /api/v1/template/{name}  - Create or update a rule template
  - DELETE /api/v1/template/{name}  - Delete a rule template
  - POST   /api/v1/invoices         - Compute, render and optionally mail an invoice
  - GET    /metrics                 - Prometheus metrics
  - GET    /health                  - Health check

The default rule template (INVOICE_UTILS_DEFAULT_RULE_TEMPLATE_NAME) must
exist in the templates directory.

Examples:
  # Start server on default port
  invoice-utils serve

  # Start in debug mode on a custom port
  invoice-utils serve --address :9000 --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", "", "Server listen address (env: INVOICE_UTILS_ADDRESS)")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 5*time.Minute, "HTTP write timeout")
}

func runServe(cmd *cobra.Command, args []string) error {
	address := cfg.Address
	if serverAddr != "" {
		address = serverAddr
	}

	repo := store.NewFileRepository(cfg.TemplatesDir)
	found, err := repo.Exists(cfg.DefaultRuleTemplateName)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("default rule template '%s' not found in %s", cfg.DefaultRuleTemplateName, cfg.TemplatesDir)
	}

	var mailer mail.Sender
	if cfg.Mail.Enabled() {
		mailer = mail.NewSMTPSender(cfg.Mail)
	} else {
		log.Warn().Msg("mail disabled, INVOICE_UTILS_SENDER_EMAIL is not set")
	}

	ruleTemplate := cfg.RuleTemplateName
	if ruleTemplate == "" {
		ruleTemplate = cfg.DefaultRuleTemplateName
	}

	config := &server.Config{
		Address:          address,
		RuleTemplateName: ruleTemplate,
		InvoiceDir:       cfg.InvoiceDir,
		SenderEmail:      cfg.Mail.SenderEmail,
		MailSubject:      cfg.Mail.Subject,
		ReadTimeout:      readTimeout,
		WriteTimeout:     writeTimeout,
		Debug:            serverDebug,
	}

	srv := server.NewServer(config,
		server.WithLogger(log),
		server.WithTemplates(repo),
		server.WithMailer(mailer),
		server.WithRateSource(rateSource()),
		server.WithMetrics(metrics.NewRecorder("invoice_utils", prometheus.DefaultRegisterer), prometheus.DefaultGatherer),
	)

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("shutting down server")
		os.Exit(0)
	}()

	return srv.Run()
}
