package config

import "fmt"

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.MaxRetries < 0 || c.MaxRetries > MaxRetriesLimit {
		return fmt.Errorf("max retries must be between 0 and %d", MaxRetriesLimit)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay must be >= 0")
	}
	if c.MaxConnsPerHost <= 0 {
		return fmt.Errorf("max connections per host must be > 0")
	}
	if c.CacheMaxSizeBytes <= 0 {
		return fmt.Errorf("cache max size must be > 0")
	}
	if c.BulkMaxURLs <= 0 {
		return fmt.Errorf("bulk max urls must be > 0")
	}
	if c.BulkConcurrency <= 0 || c.BulkConcurrency > MaxBulkConcurrency {
		return fmt.Errorf("bulk concurrency must be between 1 and %d", MaxBulkConcurrency)
	}
	if c.CompareMaxURLs < DefaultCompareMinURLs {
		return fmt.Errorf("compare max urls must be >= %d", DefaultCompareMinURLs)
	}
	if c.CompetitorLimit <= 0 {
		return fmt.Errorf("competitor limit must be > 0")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return nil
}
