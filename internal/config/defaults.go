package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel          = "info"
	DefaultJSONLog           = false
	DefaultUserAgent         = "Mozilla/5.0 (compatible; storelens/1.0; +https://github.com/law-makers/storelens)"
	DefaultHTTPTimeout       = 30 * time.Second
	DefaultMaxRetries        = 3
	DefaultRetryDelay        = 1 * time.Second
	DefaultMaxConnsPerHost   = 10
	DefaultRateLimitRPS      = 20.0
	DefaultRateLimitBurst    = 30
	DefaultCacheTTL          = 5 * time.Minute
	DefaultCacheMaxSizeBytes = 64 * 1024 * 1024 // 64MB
	DefaultRenderTimeout     = 45 * time.Second
	DefaultDatabasePath      = "storelens.db"
	DefaultListenAddr        = ":8080"
	DefaultBulkMaxURLs       = 50
	DefaultBulkConcurrency   = 3
	DefaultCompareMinURLs    = 2
	DefaultCompareMaxURLs    = 10
	DefaultCompetitorLimit   = 5
	DefaultShutdownTimeout   = 10 * time.Second

	MaxRetriesLimit    = 10
	MaxBulkConcurrency = 20
)
