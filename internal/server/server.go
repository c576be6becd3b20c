package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/rezonia/invoice-utils/internal/engine"
	"github.com/rezonia/invoice-utils/internal/fxrate"
	"github.com/rezonia/invoice-utils/internal/mail"
	"github.com/rezonia/invoice-utils/internal/metrics"
	"github.com/rezonia/invoice-utils/internal/model"
	"github.com/rezonia/invoice-utils/internal/render"
	"github.com/rezonia/invoice-utils/internal/store"
)

// Config holds server configuration
type Config struct {
	Address          string
	RuleTemplateName string
	InvoiceDir       string
	SenderEmail      string
	MailSubject      string
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	Debug            bool
}

// Renderer produces the PDF of a computed invoice
type Renderer interface {
	Render(inv model.Invoice) ([]byte, error)
}

// Server represents the HTTP API server
type Server struct {
	config    *Config
	router    *gin.Engine
	log       zerolog.Logger
	templates store.Repository
	renderer  Renderer
	mailer    mail.Sender
	rates     engine.RateSource
	metrics   *metrics.Recorder
	gatherer  prometheus.Gatherer
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the server logger
func WithLogger(log zerolog.Logger) Option {
	return func(s *Server) { s.log = log }
}

// WithTemplates sets the rule template repository
func WithTemplates(repo store.Repository) Option {
	return func(s *Server) { s.templates = repo }
}

// WithRenderer sets the PDF renderer
func WithRenderer(r Renderer) Option {
	return func(s *Server) { s.renderer = r }
}

// WithMailer sets the mail sender
func WithMailer(m mail.Sender) Option {
	return func(s *Server) { s.mailer = m }
}

// WithRateSource sets the live FX rate source handed to every engine
func WithRateSource(src engine.RateSource) Option {
	return func(s *Server) { s.rates = src }
}

// WithMetrics sets the engine recorder and the gatherer served on /metrics
func WithMetrics(r *metrics.Recorder, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = r
		s.gatherer = g
	}
}

// NewServer creates a new API server
func NewServer(config *Config, opts ...Option) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		config: config,
		log:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.templates == nil {
		s.templates = store.NewFileRepository("templates")
	}
	if s.renderer == nil {
		s.renderer = render.NewRenderer()
	}
	if s.rates == nil {
		s.rates = fxrate.NewClient()
	}
	if s.gatherer == nil {
		s.gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(s.log))
	s.router = router

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/templates", s.handleListTemplates)

		v1.GET("/template/:name", s.handleGetTemplate)
		v1.PUT("/template/:name", s.handleUpsertTemplate)
		v1.DELETE("/template/:name", s.handleDeleteTemplate)

		v1.POST("/invoices", s.handleGenerateInvoice)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	s.log.Info().Str("address", s.config.Address).Msg("starting invoice-utils API")
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
