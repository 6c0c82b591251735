package service

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config defines the store, manifest, cache and search settings.
type Config struct {
	Store     StoreConfig     `yaml:"store"`
	Manifest  ManifestConfig  `yaml:"manifest"`
	Cache     CacheConfig     `yaml:"cache"`
	Search    SearchConfig    `yaml:"search"`
	MCPServer MCPServerConfig `yaml:"mcpServer"`
}

// StoreConfig defines remote object store settings. Scheme selects the
// backend: "s3" talks to the AWS API, anything else is served through the
// abstract file system rooted at BaseURL (file, mem).
type StoreConfig struct {
	Scheme    string `yaml:"scheme"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	PathStyle bool   `yaml:"pathStyle,omitempty"`
	BaseURL   string `yaml:"baseURL,omitempty"`
}

// ManifestConfig defines the listing side channel.
type ManifestConfig struct {
	URL        string `yaml:"url"`
	TTLSeconds int    `yaml:"ttlSeconds"`
}

// CacheConfig defines local content cache settings; an empty Dir disables
// the cache.
type CacheConfig struct {
	Dir        string `yaml:"dir"`
	MaxBytes   int64  `yaml:"maxBytes"`
	MaxEntries int    `yaml:"maxEntries"`
}

// SearchConfig defines text search settings.
type SearchConfig struct {
	Binary         string `yaml:"binary"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
	Concurrency    int    `yaml:"concurrency"`
}

// MCPServerConfig defines MCP server settings.
type MCPServerConfig struct {
	Addr string `yaml:"addr"`
	Port int    `yaml:"port"`
}

// LoadConfig reads and validates a YAML config file.
func LoadConfig(path string) (*Config, error) {
	path, err := expandUserPath(path)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	if cfg.Cache.Dir != "" {
		expanded, err := expandUserPath(cfg.Cache.Dir)
		if err != nil {
			return nil, err
		}
		cfg.Cache.Dir = expanded
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks required fields.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Store.Bucket) == "" {
		return fmt.Errorf("config: store.bucket is required")
	}
	if c.Store.Scheme != "" && c.Store.Scheme != "s3" && c.Store.BaseURL == "" {
		return fmt.Errorf("config: store.baseURL is required for scheme %q", c.Store.Scheme)
	}
	return nil
}

func expandUserPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed[0] != '~' {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	if trimmed == "~" {
		return home, nil
	}
	if !strings.HasPrefix(trimmed, "~/") {
		return "", fmt.Errorf("config: unsupported ~user path: %s", path)
	}
	return filepath.Join(home, trimmed[2:]), nil
}
