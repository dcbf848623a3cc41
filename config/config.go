// Package config provides configuration loading and management for Semgraph.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete Semgraph configuration
type Config struct {
	Store  StoreConfig  `yaml:"store"`
	Scope  ScopeConfig  `yaml:"scope"`
	NATS   NATSConfig   `yaml:"nats"`
	Ingest IngestConfig `yaml:"ingest"`
}

// StoreConfig configures the SPARQL store connection
type StoreConfig struct {
	// Endpoint is the base URL of the store, without a dataset path
	// (default: http://localhost:3030)
	Endpoint string `yaml:"endpoint"`
	// Timeout is the per-request HTTP timeout
	Timeout time.Duration `yaml:"timeout"`
	// QueryBatchSize bounds entities per existing-facts query
	QueryBatchSize int `yaml:"query_batch_size"`
	// DeleteBatchSize bounds entities per stale-delete update
	DeleteBatchSize int `yaml:"delete_batch_size"`
	// InsertBatchSize bounds triples per insert request
	InsertBatchSize int `yaml:"insert_batch_size"`
}

// ScopeConfig identifies the tenant and workspace commits target
type ScopeConfig struct {
	Tenant    string `yaml:"tenant"`
	Workspace string `yaml:"workspace"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	// URL is the NATS server URL (empty = no NATS, direct commits only)
	URL string `yaml:"url"`
	// LockTTL bounds how long a commit advisory lock survives a crashed
	// holder
	LockTTL time.Duration `yaml:"lock_ttl"`
}

// IngestConfig configures fact-file ingestion
type IngestConfig struct {
	// FactsDir is the directory fact files live under; document URIs are
	// derived relative to it
	FactsDir string `yaml:"facts_dir"`
	// Patterns are glob patterns selecting fact files (supports **)
	Patterns []string `yaml:"patterns"`
	// DebounceDelay is how long watch mode waits for more changes before
	// re-ingesting
	DebounceDelay time.Duration `yaml:"debounce_delay"`
	// FileExtensions lists file extensions watch mode reacts to
	FileExtensions []string `yaml:"file_extensions"`
	// ExcludeDirs lists directory names watch mode skips
	ExcludeDirs []string `yaml:"exclude_dirs"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Endpoint:        "http://localhost:3030",
			Timeout:         30 * time.Second,
			QueryBatchSize:  100,
			DeleteBatchSize: 100,
			InsertBatchSize: 10000,
		},
		Scope: ScopeConfig{
			Tenant:    "",
			Workspace: "main",
		},
		NATS: NATSConfig{
			URL:     "",
			LockTTL: 5 * time.Minute,
		},
		Ingest: IngestConfig{
			FactsDir:       "facts",
			Patterns:       []string{"facts/**/*.nt"},
			DebounceDelay:  500 * time.Millisecond,
			FileExtensions: []string{".nt"},
			ExcludeDirs:    []string{".git", "node_modules", "vendor"},
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Store.Endpoint == "" {
		return fmt.Errorf("store.endpoint is required")
	}
	if c.Store.QueryBatchSize < 0 || c.Store.DeleteBatchSize < 0 || c.Store.InsertBatchSize < 0 {
		return fmt.Errorf("store batch sizes must be non-negative")
	}
	if c.Scope.Tenant == "" {
		return fmt.Errorf("scope.tenant is required")
	}
	if c.Scope.Workspace == "" {
		return fmt.Errorf("scope.workspace is required")
	}
	if c.NATS.LockTTL < 0 {
		return fmt.Errorf("nats.lock_ttl must be non-negative")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Store
	if other.Store.Endpoint != "" {
		c.Store.Endpoint = other.Store.Endpoint
	}
	if other.Store.Timeout != 0 {
		c.Store.Timeout = other.Store.Timeout
	}
	if other.Store.QueryBatchSize != 0 {
		c.Store.QueryBatchSize = other.Store.QueryBatchSize
	}
	if other.Store.DeleteBatchSize != 0 {
		c.Store.DeleteBatchSize = other.Store.DeleteBatchSize
	}
	if other.Store.InsertBatchSize != 0 {
		c.Store.InsertBatchSize = other.Store.InsertBatchSize
	}

	// Scope
	if other.Scope.Tenant != "" {
		c.Scope.Tenant = other.Scope.Tenant
	}
	if other.Scope.Workspace != "" {
		c.Scope.Workspace = other.Scope.Workspace
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.LockTTL != 0 {
		c.NATS.LockTTL = other.NATS.LockTTL
	}

	// Ingest
	if other.Ingest.FactsDir != "" {
		c.Ingest.FactsDir = other.Ingest.FactsDir
	}
	if len(other.Ingest.Patterns) > 0 {
		c.Ingest.Patterns = other.Ingest.Patterns
	}
	if other.Ingest.DebounceDelay != 0 {
		c.Ingest.DebounceDelay = other.Ingest.DebounceDelay
	}
	if len(other.Ingest.FileExtensions) > 0 {
		c.Ingest.FileExtensions = other.Ingest.FileExtensions
	}
	if len(other.Ingest.ExcludeDirs) > 0 {
		c.Ingest.ExcludeDirs = other.Ingest.ExcludeDirs
	}
}
