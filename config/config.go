// Package config loads storefront settings from defaults, an optional YAML file, a
// .env file and the environment, in that order of precedence (last wins).
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Storage kinds
const (
	StorageMemory   = "memory"
	StorageFile     = "file"
	StoragePostgres = "postgres"
)

// Config holds all storefront configuration
type Config struct {
	Env string `yaml:"env"`

	Services ServicesConfig `yaml:"services"`
	Storage  StorageConfig  `yaml:"storage"`
	Server   ServerConfig   `yaml:"server"`
	Export   ExportConfig   `yaml:"export"`
	Covers   CoversConfig   `yaml:"covers"`

	// HTTPTimeout bounds every call to a remote service, e.g. "10s"
	HTTPTimeout string `yaml:"http_timeout"`
	SearchLimit int    `yaml:"search_limit"`
}

// ServicesConfig holds the base URLs of the remote services
type ServicesConfig struct {
	CatalogURL string `yaml:"catalog_url"`
	CartURL    string `yaml:"cart_url"`
	OrdersURL  string `yaml:"orders_url"`
	AuthURL    string `yaml:"auth_url"`
}

// StorageConfig selects the backend of the local storage port
type StorageConfig struct {
	Kind        string `yaml:"kind"` // memory, file, postgres
	Path        string `yaml:"path"`
	DatabaseURL string `yaml:"database_url"`
	Namespace   string `yaml:"namespace"`
}

// ServerConfig configures `storefront serve`
type ServerConfig struct {
	Port    string `yaml:"port"`
	BaseURL string `yaml:"base_url"`
}

// ExportConfig configures PDF/PNG export
type ExportConfig struct {
	ChromePath string `yaml:"chrome_path"`
	Timeout    string `yaml:"timeout"`
	OutputDir  string `yaml:"output_dir"`
}

// CoversConfig configures the cover thumbnail cache
type CoversConfig struct {
	CacheDir string `yaml:"cache_dir"`
	Size     string `yaml:"size"` // thumb or medium
}

// DefaultConfig returns the settings used when nothing else is configured
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	dataDir := filepath.Join(home, ".storefront")

	return &Config{
		Env: "development",
		Services: ServicesConfig{
			CatalogURL: "http://localhost:8002",
			CartURL:    "http://localhost:8004/api/v1",
			OrdersURL:  "http://localhost:8003/api/v1",
			AuthURL:    "http://localhost:8001",
		},
		Storage: StorageConfig{
			Kind:      StorageFile,
			Path:      filepath.Join(dataDir, "storage.json"),
			Namespace: "default",
		},
		Server: ServerConfig{
			Port: "8080",
		},
		Export: ExportConfig{
			Timeout:   "30s",
			OutputDir: ".",
		},
		Covers: CoversConfig{
			CacheDir: filepath.Join(dataDir, "covers"),
			Size:     "thumb",
		},
		HTTPTimeout: "10s",
		SearchLimit: 100,
	}
}

// Load builds the configuration. path may be empty; a missing .env file is not an
// error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	LoadDotEnv(".env")
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads a .env file. Outside production its values override the process
// environment. It reports whether a file was loaded.
func LoadDotEnv(path string) bool {
	if os.Getenv("ENV") == "production" {
		return godotenv.Load(path) == nil
	}
	return godotenv.Overload(path) == nil
}

func (c *Config) applyEnv() {
	overrides := []struct {
		key    string
		target *string
	}{
		{"ENV", &c.Env},
		{"CATALOG_URL", &c.Services.CatalogURL},
		{"CART_URL", &c.Services.CartURL},
		{"ORDERS_URL", &c.Services.OrdersURL},
		{"AUTH_URL", &c.Services.AuthURL},
		{"STORAGE", &c.Storage.Kind},
		{"STORAGE_PATH", &c.Storage.Path},
		{"STORAGE_NAMESPACE", &c.Storage.Namespace},
		{"DATABASE_URL", &c.Storage.DatabaseURL},
		{"PORT", &c.Server.Port},
		{"BASE_URL", &c.Server.BaseURL},
		{"CHROME_PATH", &c.Export.ChromePath},
		{"EXPORT_TIMEOUT", &c.Export.Timeout},
		{"COVER_CACHE_DIR", &c.Covers.CacheDir},
		{"HTTP_TIMEOUT", &c.HTTPTimeout},
	}
	for _, o := range overrides {
		if v, ok := os.LookupEnv(o.key); ok && strings.TrimSpace(v) != "" {
			*o.target = strings.TrimSpace(v)
		}
	}
	if v := os.Getenv("SEARCH_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SearchLimit = n
		}
	}
	// PORT from some hosts comes with a leading colon
	c.Server.Port = strings.TrimPrefix(c.Server.Port, ":")
}

// Validate checks URLs, durations and the storage kind
func (c *Config) Validate() error {
	urls := map[string]string{
		"services.catalog_url": c.Services.CatalogURL,
		"services.cart_url":    c.Services.CartURL,
		"services.orders_url":  c.Services.OrdersURL,
		"services.auth_url":    c.Services.AuthURL,
	}
	for name, raw := range urls {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid %s %q: expected an http(s) URL", name, raw)
		}
	}

	switch c.Storage.Kind {
	case StorageMemory:
	case StorageFile:
		if c.Storage.Path == "" {
			return fmt.Errorf("invalid storage: file storage needs a path")
		}
	case StoragePostgres:
		if c.Storage.Namespace == "" {
			return fmt.Errorf("invalid storage: postgres storage needs a namespace")
		}
	default:
		return fmt.Errorf("invalid storage kind %q: expected memory, file or postgres", c.Storage.Kind)
	}

	for name, raw := range map[string]string{"http_timeout": c.HTTPTimeout, "export.timeout": c.Export.Timeout} {
		if d, err := time.ParseDuration(raw); err != nil || d <= 0 {
			return fmt.Errorf("invalid %s %q", name, raw)
		}
	}

	if c.SearchLimit <= 0 {
		return fmt.Errorf("invalid search_limit %d", c.SearchLimit)
	}
	if _, err := strconv.Atoi(c.Server.Port); err != nil {
		return fmt.Errorf("invalid server.port %q", c.Server.Port)
	}
	return nil
}

// Timeout returns the parsed HTTP timeout
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// ExportTimeout returns the parsed export timeout
func (c *Config) ExportTimeout() time.Duration {
	d, err := time.ParseDuration(c.Export.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// ListenAddr is the address `storefront serve` binds to
func (c *Config) ListenAddr() string {
	return "0.0.0.0:" + c.Server.Port
}

// PublicBaseURL is the URL the server is reachable at, used for export rendering
func (c *Config) PublicBaseURL() string {
	if c.Server.BaseURL != "" {
		return strings.TrimRight(c.Server.BaseURL, "/")
	}
	return "http://localhost:" + c.Server.Port
}
