package config

import (
	"bufio"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	defaultEnvFile             = ".env"
	defaultPort                = "8080"
	defaultEnvironment         = "local"
	defaultReadHeaderTimeout   = 10 * time.Second
	defaultReadTimeout         = 15 * time.Second
	defaultWriteTimeout        = 30 * time.Second
	defaultIdleTimeout         = 60 * time.Second
	defaultShutdownTimeout     = 10 * time.Second
	defaultRequestTimeout      = 30 * time.Second
	defaultBackendURL          = "http://127.0.0.1:8000"
	defaultBackendTimeout      = 10 * time.Second
	defaultSessionCookie       = "qnh_session"
	defaultSessionLifetime     = 30 * 24 * time.Hour
	defaultSessionIdleTimeout  = 14 * 24 * time.Hour
	defaultSiteURL             = "https://qhenterprises.com"
	defaultSiteName            = "QnH Enterprises"
	defaultWhatsAppNumber      = "923147864467"
	defaultCurrencyLabel       = "Rs."
	defaultCartShipping        = "3.00"
	defaultCheckoutShipping    = "0"
	defaultCountry             = "Pakistan"
	defaultShopPageSize        = 6
	defaultTestimonialPageSize = 6
	defaultLocale              = "en"
)

// Config captures all runtime configuration organised by concern.
type Config struct {
	Environment string
	Dev         bool
	LogLevel    string
	Server      ServerConfig
	Backend     BackendConfig
	Session     SessionConfig
	Storefront  StorefrontConfig
	Assets      AssetsConfig
}

// ServerConfig configures HTTP server parameters.
type ServerConfig struct {
	Port              string
	ReadHeaderTimeout time.Duration
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	RequestTimeout    time.Duration
}

// Addr returns the listen address for the configured port.
func (s ServerConfig) Addr() string {
	if strings.Contains(s.Port, ":") {
		return s.Port
	}
	return ":" + s.Port
}

// BackendConfig points at the storefront API that owns carts, orders and accounts.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig controls the visitor session cookie.
type SessionConfig struct {
	CookieName  string
	HashKey     []byte
	BlockKey    []byte
	Secure      bool
	Lifetime    time.Duration
	IdleTimeout time.Duration
}

// StorefrontConfig holds presentation constants shared by the pages.
type StorefrontConfig struct {
	SiteURL             string
	SiteName            string
	WhatsAppNumber      string
	CurrencyLabel       string
	CartShipping        int64
	CheckoutShipping    int64
	DefaultCountry      string
	ShopPageSize        int
	TestimonialPageSize int
	DefaultLocale       string
	AnalyticsID         string
}

// AssetsConfig allows serving templates and static files from disk during development.
type AssetsConfig struct {
	TemplatesDir string
	StaticDir    string
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

// Option customises Load behaviour.
type Option func(*loaderOptions)

type loaderOptions struct {
	envFile      string
	envMap       map[string]string
	useSystemEnv bool
}

// WithEnvFile overrides the .env file path used for local overrides.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) {
		o.envFile = path
	}
}

// WithEnvMap injects an explicit key/value map for environment lookups. Values in the map
// take precedence over system environment variables.
func WithEnvMap(values map[string]string) Option {
	return func(o *loaderOptions) {
		o.envMap = values
	}
}

// WithoutSystemEnv disables reading from the process environment.
func WithoutSystemEnv() Option {
	return func(o *loaderOptions) {
		o.useSystemEnv = false
	}
}

// Load resolves configuration from an explicit env map, the process environment and a .env file,
// in that order of precedence.
func Load(ctx context.Context, opts ...Option) (Config, error) {
	options := loaderOptions{
		envFile:      defaultEnvFile,
		useSystemEnv: true,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if err := ctx.Err(); err != nil {
		return Config{}, err
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

	env := strings.ToLower(stringWithDefault(lookup, "QNH_WEB_ENV", defaultEnvironment))
	port := stringWithDefault(lookup, "QNH_WEB_PORT", "")
	if port == "" {
		port = stringWithDefault(lookup, "PORT", defaultPort)
	}

	hashKey, err := keyWithDefault(lookup, "QNH_WEB_SESSION_HASH_KEY")
	if err != nil {
		invalid = append(invalid, "Session.HashKey")
	}
	blockKey, err := keyWithDefault(lookup, "QNH_WEB_SESSION_BLOCK_KEY")
	if err != nil {
		invalid = append(invalid, "Session.BlockKey")
	}

	cartShipping, err := amountWithDefault(lookup, "QNH_WEB_CART_SHIPPING", defaultCartShipping)
	if err != nil {
		invalid = append(invalid, "Storefront.CartShipping")
	}
	checkoutShipping, err := amountWithDefault(lookup, "QNH_WEB_CHECKOUT_SHIPPING", defaultCheckoutShipping)
	if err != nil {
		invalid = append(invalid, "Storefront.CheckoutShipping")
	}

	cfg := Config{
		Environment: env,
		Dev:         boolWithDefault(lookup, "QNH_WEB_DEV", false),
		LogLevel:    stringWithDefault(lookup, "LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port:              port,
			ReadHeaderTimeout: durationWithDefault(lookup, "QNH_WEB_READ_HEADER_TIMEOUT", defaultReadHeaderTimeout),
			ReadTimeout:       durationWithDefault(lookup, "QNH_WEB_READ_TIMEOUT", defaultReadTimeout),
			WriteTimeout:      durationWithDefault(lookup, "QNH_WEB_WRITE_TIMEOUT", defaultWriteTimeout),
			IdleTimeout:       durationWithDefault(lookup, "QNH_WEB_IDLE_TIMEOUT", defaultIdleTimeout),
			ShutdownTimeout:   durationWithDefault(lookup, "QNH_WEB_SHUTDOWN_TIMEOUT", defaultShutdownTimeout),
			RequestTimeout:    durationWithDefault(lookup, "QNH_WEB_REQUEST_TIMEOUT", defaultRequestTimeout),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(stringWithDefault(lookup, "QNH_WEB_BACKEND_URL", defaultBackendURL), "/"),
			Timeout: durationWithDefault(lookup, "QNH_WEB_BACKEND_TIMEOUT", defaultBackendTimeout),
		},
		Session: SessionConfig{
			CookieName:  stringWithDefault(lookup, "QNH_WEB_SESSION_COOKIE", defaultSessionCookie),
			HashKey:     hashKey,
			BlockKey:    blockKey,
			Secure:      boolWithDefault(lookup, "QNH_WEB_SESSION_SECURE", env == "prod"),
			Lifetime:    durationWithDefault(lookup, "QNH_WEB_SESSION_LIFETIME", defaultSessionLifetime),
			IdleTimeout: durationWithDefault(lookup, "QNH_WEB_SESSION_IDLE_TIMEOUT", defaultSessionIdleTimeout),
		},
		Storefront: StorefrontConfig{
			SiteURL:             strings.TrimRight(stringWithDefault(lookup, "QNH_WEB_SITE_URL", defaultSiteURL), "/"),
			SiteName:            stringWithDefault(lookup, "QNH_WEB_SITE_NAME", defaultSiteName),
			WhatsAppNumber:      stringWithDefault(lookup, "QNH_WEB_WHATSAPP_NUMBER", defaultWhatsAppNumber),
			CurrencyLabel:       stringWithDefault(lookup, "QNH_WEB_CURRENCY_LABEL", defaultCurrencyLabel),
			CartShipping:        cartShipping,
			CheckoutShipping:    checkoutShipping,
			DefaultCountry:      stringWithDefault(lookup, "QNH_WEB_DEFAULT_COUNTRY", defaultCountry),
			ShopPageSize:        intWithDefault(lookup, "QNH_WEB_SHOP_PAGE_SIZE", defaultShopPageSize),
			TestimonialPageSize: intWithDefault(lookup, "QNH_WEB_TESTIMONIAL_PAGE_SIZE", defaultTestimonialPageSize),
			DefaultLocale:       stringWithDefault(lookup, "QNH_WEB_DEFAULT_LOCALE", defaultLocale),
			AnalyticsID:         stringWithDefault(lookup, "QNH_WEB_GA_MEASUREMENT_ID", ""),
		},
		Assets: AssetsConfig{
			TemplatesDir: stringWithDefault(lookup, "QNH_WEB_TEMPLATES_DIR", ""),
			StaticDir:    stringWithDefault(lookup, "QNH_WEB_STATIC_DIR", ""),
		},
	}

	if err := validateConfig(cfg, invalid); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func validateConfig(cfg Config, invalid []string) error {
	missing := append([]string(nil), invalid...)

	if cfg.Server.Port == "" {
		missing = append(missing, "Server.Port")
	}
	if u, err := url.Parse(cfg.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		missing = append(missing, "Backend.BaseURL")
	}
	if cfg.Backend.Timeout <= 0 {
		missing = append(missing, "Backend.Timeout")
	}
	if cfg.Environment == "prod" && len(cfg.Session.HashKey) == 0 {
		missing = append(missing, "Session.HashKey")
	}
	if n := len(cfg.Session.BlockKey); n != 0 && n != 16 && n != 24 && n != 32 {
		missing = append(missing, "Session.BlockKey")
	}
	if cfg.Storefront.WhatsAppNumber == "" {
		missing = append(missing, "Storefront.WhatsAppNumber")
	}
	if cfg.Storefront.ShopPageSize <= 0 {
		missing = append(missing, "Storefront.ShopPageSize")
	}
	if cfg.Storefront.TestimonialPageSize <= 0 {
		missing = append(missing, "Storefront.TestimonialPageSize")
	}

	if len(missing) > 0 {
		return &ValidationError{fields: dedupe(missing)}
	}
	return nil
}

func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func loadDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}

	file, err := os.Open(absPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("config: unable to read %s: %w", absPath, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	values := make(map[string]string)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			continue
		}
		value = strings.Trim(value, "\"'")
		values[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("config: failed parsing %s: %w", absPath, err)
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

func boolWithDefault(lookup func(string) (string, bool), key string, fallback bool) bool {
	if value, ok := lookup(key); ok && value != "" {
		switch strings.ToLower(value) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return fallback
}

// keyWithDefault decodes a base64 session key. Raw values of a valid AES length are accepted as-is.
func keyWithDefault(lookup func(string) (string, bool), key string) ([]byte, error) {
	value, ok := lookup(key)
	value = strings.TrimSpace(value)
	if !ok || value == "" {
		return nil, nil
	}
	if decoded, err := base64.StdEncoding.DecodeString(value); err == nil && len(decoded) >= 16 {
		return decoded, nil
	}
	if decoded, err := base64.RawURLEncoding.DecodeString(value); err == nil && len(decoded) >= 16 {
		return decoded, nil
	}
	if len(value) >= 16 {
		return []byte(value), nil
	}
	return nil, fmt.Errorf("config: %s must be at least 16 bytes", key)
}

// amountWithDefault parses a decimal amount such as "3.00" into minor units.
func amountWithDefault(lookup func(string) (string, bool), key, fallback string) (int64, error) {
	value := stringWithDefault(lookup, key, fallback)
	return parseMinorUnits(value)
}

func parseMinorUnits(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	whole, frac, _ := strings.Cut(value, ".")
	if len(frac) > 2 {
		frac = frac[:2]
	}
	for len(frac) < 2 {
		frac += "0"
	}
	if whole == "" {
		whole = "0"
	}
	major, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid amount %q: %w", value, err)
	}
	minor, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: invalid amount %q: %w", value, err)
	}
	if major < 0 {
		return 0, fmt.Errorf("config: negative amount %q", value)
	}
	return major*100 + minor, nil
}
