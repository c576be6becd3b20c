// Package config loads invoice-utils settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every variable read by Load
const EnvPrefix = "INVOICE_UTILS_"

// Config holds application configuration loaded from the environment.
type Config struct {
	Address                 string
	LogFormat               string
	LogLevel                string
	TemplatesDir            string
	RuleTemplateName        string
	DefaultRuleTemplateName string
	InvoiceDir              string
	FXBaseURL               string
	FXTimeout               time.Duration
	FXCacheTTL              time.Duration
	Mail                    MailConfig
}

// MailConfig holds SMTP settings
type MailConfig struct {
	Host          string
	Port          int
	LoginUser     string
	LoginPassword string
	SenderEmail   string
	Subject       string
}

// Enabled reports whether enough settings exist to send mail
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.SenderEmail != ""
}

// Addr returns host:port of the SMTP server
func (m MailConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	provider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(s, EnvPrefix)
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	port, err := parsePort(k.String("MAIL_PORT"), 587)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Address:                 valueOrDefault(k.String("ADDRESS"), ":8080"),
		LogFormat:               valueOrDefault(k.String("LOG_FORMAT"), "console"),
		LogLevel:                valueOrDefault(k.String("LOG_LEVEL"), "info"),
		TemplatesDir:            valueOrDefault(k.String("TEMPLATES_DIR"), "templates"),
		RuleTemplateName:        valueOrDefault(k.String("RULE_TEMPLATE_NAME"), "basic"),
		DefaultRuleTemplateName: valueOrDefault(k.String("DEFAULT_RULE_TEMPLATE_NAME"), "basic"),
		InvoiceDir:              valueOrDefault(k.String("INVOICE_DIR"), "invoices"),
		FXBaseURL:               valueOrDefault(k.String("FX_BASE_URL"), "https://bnr.ro"),
		FXTimeout:               parseDuration(k.String("FX_TIMEOUT"), "10s"),
		FXCacheTTL:              parseDuration(k.String("FX_CACHE_TTL"), "1h"),
		Mail: MailConfig{
			Host:          valueOrDefault(k.String("MAIL_HOST"), "smtp.gmail.com"),
			Port:          port,
			LoginUser:     strings.TrimSpace(k.String("MAIL_LOGIN_USER")),
			LoginPassword: k.String("MAIL_LOGIN_PASSWORD"),
			SenderEmail:   strings.TrimSpace(k.String("SENDER_EMAIL")),
			Subject:       valueOrDefault(k.String("MAIL_SUBJECT"), "Invoice generated with invoice-utils"),
		},
	}
	return cfg, nil
}

// MustLoad behaves like Load but panics on error.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests overrides environment variables for the duration of Load.
func LoadForTests(vars map[string]string) (*Config, error) {
	original := make(map[string]string, len(vars))
	for key := range vars {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, vars[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parsePort(value string, fallback int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	port, err := strconv.Atoi(value)
	if err != nil || port <= 0 || port > 65535 {
		return 0, fmt.Errorf("%sMAIL_PORT: invalid port %q", EnvPrefix, value)
	}
	return port, nil
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
