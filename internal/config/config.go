// Package config loads and saves the application configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// EnvConfigPath overrides the configuration file location.
const EnvConfigPath = "NRDB_COMPANION_CONFIG"

// DefaultDir is the application directory under the user's home.
const DefaultDir = ".nrdb-companion"

// Config represents the application configuration.
type Config struct {
	// Collection file configuration
	Collection CollectionConfig `toml:"collection"`

	// Metadata and image cache configuration
	Cache CacheConfig `toml:"cache"`

	// NetrunnerDB API configuration
	API APIConfig `toml:"api"`

	// Proxy sheet configuration
	PDF PDFConfig `toml:"pdf"`

	// Application configuration
	App AppConfig `toml:"app"`

	path string
}

// CollectionConfig locates the collection file.
type CollectionConfig struct {
	Path string `toml:"path"` // Path to the collection TOML file
}

// CacheConfig contains caching settings.
type CacheConfig struct {
	Dir            string `toml:"dir"`               // Cache directory ("~" is expanded)
	TTL            string `toml:"ttl"`               // Metadata TTL (e.g., "24h")
	ImageMaxSizeMB int    `toml:"image_max_size_mb"` // Image cache limit (0 = unlimited)
}

// APIConfig contains NetrunnerDB client settings.
type APIConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit string `toml:"rate_limit"` // Minimum delay between requests (e.g., "500ms")
	Timeout   string `toml:"timeout"`    // HTTP timeout (e.g., "30s")
}

// PDFConfig contains proxy sheet settings.
type PDFConfig struct {
	PageSize       string `toml:"page_size"` // letter, a4 or legal
	DownloadImages bool   `toml:"download_images"`
	GroupByPack    bool   `toml:"group_by_pack"`
	OutputDir      string `toml:"output_dir"` // Root for decks/<side>/<id>/<name>.pdf
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Collection: CollectionConfig{
			Path: "collection.toml",
		},
		Cache: CacheConfig{
			Dir:            filepath.Join("~", DefaultDir, "cache"),
			TTL:            "24h",
			ImageMaxSizeMB: 500,
		},
		API: APIConfig{
			BaseURL:   "https://netrunnerdb.com/api/2.0/public",
			RateLimit: "500ms",
			Timeout:   "30s",
		},
		PDF: PDFConfig{
			PageSize:       "letter",
			DownloadImages: true,
			GroupByPack:    false,
			OutputDir:      "decks",
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// Path returns the file the configuration was loaded from or will be saved to.
func (c *Config) Path() string {
	return c.path
}

// DefaultPath returns the configuration file location, honoring
// NRDB_COMPANION_CONFIG.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return ExpandHome(p)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, DefaultDir, "config.toml"), nil
}

// Load loads the configuration from the default location. Returns the
// default config if the file doesn't exist.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from path. Keys missing from the file
// keep their default values.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()
	config.path = path

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return config, nil
}

// Save saves the configuration to the path it was loaded from, or the
// default location.
func (c *Config) Save() error {
	path := c.path
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path, creating parent directories.
func (c *Config) SaveTo(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	c.path = path
	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Collection.Path) == "" {
		return fmt.Errorf("collection path cannot be empty")
	}

	if _, err := time.ParseDuration(c.Cache.TTL); err != nil {
		return fmt.Errorf("invalid cache TTL %q: %w", c.Cache.TTL, err)
	}

	if c.Cache.ImageMaxSizeMB < 0 {
		return fmt.Errorf("image cache size cannot be negative: %d", c.Cache.ImageMaxSizeMB)
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid API base URL %q", c.API.BaseURL)
	}

	if d, err := time.ParseDuration(c.API.RateLimit); err != nil || d < 0 {
		return fmt.Errorf("invalid API rate limit %q", c.API.RateLimit)
	}

	if d, err := time.ParseDuration(c.API.Timeout); err != nil || d <= 0 {
		return fmt.Errorf("invalid API timeout %q", c.API.Timeout)
	}

	switch strings.ToLower(c.PDF.PageSize) {
	case "letter", "a4", "legal":
	default:
		return fmt.Errorf("invalid page size %q (use letter, a4 or legal)", c.PDF.PageSize)
	}

	return nil
}

// GetCacheTTL returns the cache TTL as a duration.
func (c *Config) GetCacheTTL() (time.Duration, error) {
	return time.ParseDuration(c.Cache.TTL)
}

// GetRateLimit returns the minimum delay between API requests.
func (c *Config) GetRateLimit() (time.Duration, error) {
	return time.ParseDuration(c.API.RateLimit)
}

// GetTimeout returns the HTTP timeout.
func (c *Config) GetTimeout() (time.Duration, error) {
	return time.ParseDuration(c.API.Timeout)
}

// CacheDir returns the cache directory with "~" expanded.
func (c *Config) CacheDir() (string, error) {
	return ExpandHome(c.Cache.Dir)
}

// ImageMaxSize returns the image cache limit in bytes.
func (c *Config) ImageMaxSize() int64 {
	return int64(c.Cache.ImageMaxSizeMB) * 1024 * 1024
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, `~\`) {
		return path, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}
