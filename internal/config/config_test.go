package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("Expected 30s timeout, got %v", cfg.HTTPTimeout)
	}
	if cfg.MaxRetries != 3 {
		t.Errorf("Expected 3 retries, got %d", cfg.MaxRetries)
	}
	if cfg.RetryDelay != time.Second {
		t.Errorf("Expected 1s retry delay, got %v", cfg.RetryDelay)
	}
	if cfg.MaxConnsPerHost != 10 {
		t.Errorf("Expected 10 connections, got %d", cfg.MaxConnsPerHost)
	}
}

func TestLoadLayersFileEnvAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "storelens.yaml")
	yaml := "http_timeout: 20s\nmax_retries: 1\nproxies: [\"http://p1:3128\"]\ndatabase_path: /tmp/file.db\n"
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("STORELENS_DB", "/tmp/env.db")

	cmd := &cobra.Command{Use: "test"}
	RegisterFlags(cmd)
	if err := cmd.ParseFlags([]string{"--config", path, "--timeout", "5s", "--verbose"}); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(cmd)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPTimeout != 5*time.Second {
		t.Errorf("Expected flag to win with 5s, got %v", cfg.HTTPTimeout)
	}
	if cfg.MaxRetries != 1 {
		t.Errorf("Expected file value 1 retry, got %d", cfg.MaxRetries)
	}
	if cfg.DatabasePath != "/tmp/env.db" {
		t.Errorf("Expected env to override file db path, got %s", cfg.DatabasePath)
	}
	if len(cfg.Proxies) != 1 || cfg.Proxies[0] != "http://p1:3128" {
		t.Errorf("Expected proxies from file, got %v", cfg.Proxies)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("Expected debug log level, got %s", cfg.LogLevel)
	}
	if cfg.UserAgent != DefaultUserAgent {
		t.Errorf("Expected default user agent to survive, got %s", cfg.UserAgent)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	RegisterFlags(cmd)
	if err := cmd.ParseFlags([]string{"--retries", "99"}); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(cmd); err == nil {
		t.Errorf("Expected validation error for 99 retries")
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("STORELENS_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := Load(nil); err == nil {
		t.Errorf("Expected error for missing config file")
	}
}
