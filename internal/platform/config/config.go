package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

const (
	defaultEnvFile             = ".env"
	defaultAddress             = ":8080"
	defaultBasePath            = "/admin"
	defaultEnvironment         = "Development"
	defaultCatalogTimeout      = 20 * time.Second
	defaultCurrencySymbol      = "$"
	defaultPageTitle           = "Control de Stock"
	defaultLocale              = "es"
	defaultConfirmationLiteral = "ELIMINAR"
	defaultRecordLimit         = 999
	defaultLogLevel            = "info"
	defaultLogMode             = "production"
	defaultLoginURL            = "/login"
	defaultShutdownTimeout     = 10 * time.Second
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Server   ServerConfig
	Catalog  CatalogConfig
	UI       UIConfig
	Log      LogConfig
	Firebase FirebaseConfig
}

// ServerConfig configures the admin HTTP listener.
type ServerConfig struct {
	Address         string
	BasePath        string
	Environment     string
	LoginURL        string
	ShutdownTimeout time.Duration
}

// CatalogConfig points at the spreadsheet endpoint and its operating limits.
type CatalogConfig struct {
	// Endpoint is empty when the in-memory demo catalog should be used.
	Endpoint            string
	Timeout             time.Duration
	RecordLimit         int
	ConfirmationLiteral string
	RefreshSchedule     string
}

// UIConfig controls presentation.
type UIConfig struct {
	PageTitle      string
	CurrencySymbol string
	Locale         language.Tag
	ThemeFile      string
	Theme          Theme
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level string
	Mode  string
	File  string
}

// FirebaseConfig stores Firebase project settings.
type FirebaseConfig struct {
	ProjectID string
}

// ValidationError is returned when required configuration fields are missing or invalid.
type ValidationError struct {
	fields []string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed: missing or invalid fields [%s]", strings.Join(e.fields, ", "))
}

// Fields returns a copy of the missing/invalid field list.
func (e *ValidationError) Fields() []string {
	out := make([]string, len(e.fields))
	copy(out, e.fields)
	return out
}

// Option customises Load.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the dotenv path. An empty path disables dotenv loading.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap supplies values that take precedence over every other source.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv ignores the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load resolves configuration from the explicit map, the process environment
// and the dotenv file, in that order of precedence.
func Load(opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	dotEnvValues, err := loadDotEnv(options.envFile)
	if err != nil {
		return Config{}, err
	}

	lookup := func(key string) (string, bool) {
		if options.envMap != nil {
			if value, ok := options.envMap[key]; ok {
				return value, true
			}
		}
		if options.useSystemEnv {
			if value, ok := os.LookupEnv(key); ok {
				return value, true
			}
		}
		if dotEnvValues != nil {
			if value, ok := dotEnvValues[key]; ok {
				return value, true
			}
		}
		return "", false
	}

	var invalid []string
	locale, err := language.Parse(stringWithDefault(lookup, "STOCK_LOCALE", defaultLocale))
	if err != nil {
		invalid = append(invalid, "UI.Locale")
		locale = language.Spanish
	}

	cfg := Config{
		Server: ServerConfig{
			Address:         stringWithDefault(lookup, "STOCK_HTTP_ADDR", defaultAddress),
			BasePath:        stringWithDefault(lookup, "STOCK_BASE_PATH", defaultBasePath),
			Environment:     stringWithDefault(lookup, "STOCK_ENVIRONMENT", defaultEnvironment),
			LoginURL:        stringWithDefault(lookup, "STOCK_LOGIN_URL", defaultLoginURL),
			ShutdownTimeout: durationWithDefault(lookup, "STOCK_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
		},
		Catalog: CatalogConfig{
			Endpoint:            strings.TrimSpace(stringWithDefault(lookup, "STOCK_CATALOG_ENDPOINT", "")),
			Timeout:             durationWithDefault(lookup, "STOCK_CATALOG_TIMEOUT", defaultCatalogTimeout),
			RecordLimit:         intWithDefault(lookup, "STOCK_RECORD_LIMIT", defaultRecordLimit),
			ConfirmationLiteral: stringWithDefault(lookup, "STOCK_DELETE_CONFIRMATION", defaultConfirmationLiteral),
			RefreshSchedule:     strings.TrimSpace(stringWithDefault(lookup, "STOCK_REFRESH_SCHEDULE", "")),
		},
		UI: UIConfig{
			PageTitle:      stringWithDefault(lookup, "STOCK_PAGE_TITLE", defaultPageTitle),
			CurrencySymbol: stringWithDefault(lookup, "STOCK_CURRENCY_SYMBOL", defaultCurrencySymbol),
			Locale:         locale,
			ThemeFile:      stringWithDefault(lookup, "STOCK_THEME_FILE", ""),
		},
		Log: LogConfig{
			Level: strings.ToLower(stringWithDefault(lookup, "STOCK_LOG_LEVEL", defaultLogLevel)),
			Mode:  strings.ToLower(stringWithDefault(lookup, "STOCK_LOG_MODE", defaultLogMode)),
			File:  stringWithDefault(lookup, "STOCK_LOG_FILE", ""),
		},
		Firebase: FirebaseConfig{
			ProjectID: stringWithDefault(lookup, "STOCK_FIREBASE_PROJECT_ID", ""),
		},
	}

	theme, err := LoadTheme(cfg.UI.ThemeFile)
	if err != nil {
		return Config{}, err
	}
	cfg.UI.Theme = theme

	if err := validateConfig(cfg, invalid); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config, invalid []string) error {
	missing := append([]string(nil), invalid...)

	if strings.TrimSpace(cfg.Server.Address) == "" {
		missing = append(missing, "Server.Address")
	}
	if !strings.HasPrefix(cfg.Server.BasePath, "/") {
		missing = append(missing, "Server.BasePath")
	}
	if cfg.Server.ShutdownTimeout <= 0 {
		missing = append(missing, "Server.ShutdownTimeout")
	}
	if cfg.Catalog.Timeout <= 0 {
		missing = append(missing, "Catalog.Timeout")
	}
	if cfg.Catalog.RecordLimit <= 0 {
		missing = append(missing, "Catalog.RecordLimit")
	}
	if strings.TrimSpace(cfg.Catalog.ConfirmationLiteral) == "" {
		missing = append(missing, "Catalog.ConfirmationLiteral")
	}
	switch cfg.Log.Mode {
	case "production", "development":
	default:
		missing = append(missing, "Log.Mode")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: missing}
	}
	return nil
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	values, err := godotenv.Read(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	return values, nil
}

func stringWithDefault(lookup func(string) (string, bool), key, fallback string) string {
	if value, ok := lookup(key); ok && value != "" {
		return value
	}
	return fallback
}

func durationWithDefault(lookup func(string) (string, bool), key string, fallback time.Duration) time.Duration {
	if value, ok := lookup(key); ok && value != "" {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return fallback
}

func intWithDefault(lookup func(string) (string, bool), key string, fallback int) int {
	if value, ok := lookup(key); ok && value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}
