package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string `yaml:"log_level"`
	JSONLog  bool   `yaml:"json_log"`

	// Fetching
	HTTPTimeout     time.Duration `yaml:"http_timeout"`
	UserAgent       string        `yaml:"user_agent"`
	Proxies         []string      `yaml:"proxies"`
	MaxRetries      int           `yaml:"max_retries"`
	RetryDelay      time.Duration `yaml:"retry_delay"`
	MaxConnsPerHost int           `yaml:"max_conns_per_host"`

	// Rate limiting, per host
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`

	// Page cache
	CacheTTL          time.Duration `yaml:"cache_ttl"`
	CacheMaxSizeBytes int64         `yaml:"cache_max_size_bytes"`

	// Headless rendering of the home page
	RenderHome    bool          `yaml:"render_home"`
	ChromePath    string        `yaml:"chrome_path"`
	RenderTimeout time.Duration `yaml:"render_timeout"`

	// Storage and server
	DatabasePath string `yaml:"database_path"`
	ListenAddr   string `yaml:"listen_addr"`

	// Limits
	BulkMaxURLs     int `yaml:"bulk_max_urls"`
	BulkConcurrency int `yaml:"bulk_concurrency"`
	CompareMaxURLs  int `yaml:"compare_max_urls"`
	CompetitorLimit int `yaml:"competitor_limit"`
}

// Defaults returns a Config populated with the Default* constants.
func Defaults() *Config {
	return &Config{
		LogLevel:          DefaultLogLevel,
		JSONLog:           DefaultJSONLog,
		HTTPTimeout:       DefaultHTTPTimeout,
		UserAgent:         DefaultUserAgent,
		MaxRetries:        DefaultMaxRetries,
		RetryDelay:        DefaultRetryDelay,
		MaxConnsPerHost:   DefaultMaxConnsPerHost,
		RateLimitRPS:      DefaultRateLimitRPS,
		RateLimitBurst:    DefaultRateLimitBurst,
		CacheTTL:          DefaultCacheTTL,
		CacheMaxSizeBytes: DefaultCacheMaxSizeBytes,
		RenderTimeout:     DefaultRenderTimeout,
		DatabasePath:      DefaultDatabasePath,
		ListenAddr:        DefaultListenAddr,
		BulkMaxURLs:       DefaultBulkMaxURLs,
		BulkConcurrency:   DefaultBulkConcurrency,
		CompareMaxURLs:    DefaultCompareMaxURLs,
		CompetitorLimit:   DefaultCompetitorLimit,
	}
}

// Load builds a Config by layering defaults, an optional YAML file,
// STORELENS_* environment variables and CLI flags, in that order.
// Caller should pass the root *cobra.Command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Defaults()

	path := os.Getenv("STORELENS_CONFIG")
	if cmd != nil {
		if f := cmd.Flags().Lookup("config"); f != nil && f.Value.String() != "" {
			path = f.Value.String()
		}
	}
	if path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config file: %w", err)
		}
		if err := mergo.Merge(cfg, fileCfg, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge config file: %w", err)
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}

	if cmd != nil {
		if err := applyFlags(cmd, cfg); err != nil {
			return nil, err
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("STORELENS_USER_AGENT"); v != "" {
		cfg.UserAgent = v
	}
	if v := os.Getenv("STORELENS_PROXY"); v != "" {
		cfg.Proxies = splitList(v)
	}
	if v := os.Getenv("STORELENS_DB"); v != "" {
		cfg.DatabasePath = v
	}
	if v := os.Getenv("STORELENS_ADDR"); v != "" {
		cfg.ListenAddr = v
	}
	if v := os.Getenv("STORELENS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("STORELENS_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("STORELENS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("STORELENS_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	if v := os.Getenv("STORELENS_MAX_RETRIES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STORELENS_MAX_RETRIES: %w", err)
		}
		cfg.MaxRetries = n
	}
	return nil
}

func applyFlags(cmd *cobra.Command, cfg *Config) error {
	flags := cmd.Flags()
	changed := func(name string) (string, bool) {
		f := flags.Lookup(name)
		if f == nil || !f.Changed {
			return "", false
		}
		return f.Value.String(), true
	}

	if v, ok := changed("user-agent"); ok && v != "" {
		cfg.UserAgent = v
	}
	if v, ok := changed("proxy"); ok {
		cfg.Proxies = splitList(v)
	}
	if v, ok := changed("timeout"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("--timeout: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	if v, ok := changed("retries"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("--retries: %w", err)
		}
		cfg.MaxRetries = n
	}
	if v, ok := changed("retry-delay"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("--retry-delay: %w", err)
		}
		cfg.RetryDelay = d
	}
	if v, ok := changed("db"); ok && v != "" {
		cfg.DatabasePath = v
	}
	if v, ok := changed("render"); ok {
		cfg.RenderHome = v == "true"
	}
	if v, ok := changed("json"); ok && v == "true" {
		cfg.JSONLog = true
	}
	if v, ok := changed("quiet"); ok && v == "true" {
		cfg.LogLevel = "error"
	}
	if v, ok := changed("verbose"); ok && v == "true" {
		cfg.LogLevel = "debug"
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
