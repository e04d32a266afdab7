// Package config loads the docsite YAML configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/logfields"
)

// DefaultPath is the configuration file used when none is given.
const DefaultPath = "docsite.yaml"

// Config is the complete configuration.
type Config struct {
	Site         SiteConfig         `yaml:"site"`
	Content      ContentConfig      `yaml:"content"`
	Server       ServerConfig       `yaml:"server"`
	Contributors ContributorsConfig `yaml:"contributors"`
	Output       OutputConfig       `yaml:"output"`
}

// SiteConfig describes the site as a whole.
type SiteConfig struct {
	Title         string   `yaml:"title"`
	BaseURL       string   `yaml:"base_url,omitempty"`
	BuildType     string   `yaml:"build_type"` // online|archive
	DefaultLocale string   `yaml:"default_locale"`
	Locales       []string `yaml:"locales"`
	// UnversionedRepos keep their documents directly below the repository directory.
	UnversionedRepos []string `yaml:"unversioned_repos,omitempty"`
	ClassName        string   `yaml:"class_name,omitempty"`
	Layout           string   `yaml:"layout,omitempty"` // optional layout template override
}

// ContentConfig locates the content tree and its tables.
type ContentConfig struct {
	Root         string `yaml:"root"`
	VersionTable string `yaml:"version_table"`
	LocalesDir   string `yaml:"locales_dir"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr          string `yaml:"addr"`
	EnableMetrics bool   `yaml:"enable_metrics"`
	MetricsPath   string `yaml:"metrics_path"`
	WatchContent  bool   `yaml:"watch_content"`
	// WatchDebounce delays index rebuilds after content changes ("500ms").
	WatchDebounce   string `yaml:"watch_debounce,omitempty"`
	ShutdownTimeout string `yaml:"shutdown_timeout,omitempty"`
}

// ContributorsConfig configures contributor counting.
type ContributorsConfig struct {
	Enabled bool        `yaml:"enabled"`
	GitRoot string      `yaml:"git_root"`
	Store   StoreConfig `yaml:"store"`
	// QueueSize bounds pending requests; excess requests are dropped.
	QueueSize       int        `yaml:"queue_size"`
	Workers         int        `yaml:"workers"`
	RefreshInterval string     `yaml:"refresh_interval,omitempty"`
	NATS            NATSConfig `yaml:"nats"`
}

// StoreConfig selects the contributor count store.
type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite|postgres
	DSN    string `yaml:"dsn"`
}

// NATSConfig enables request distribution over NATS when URL is set.
type NATSConfig struct {
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
	Queue   string `yaml:"queue,omitempty"`
}

// OutputConfig configures where build writes pages.
type OutputConfig struct {
	Driver    string      `yaml:"driver"` // fs|s3|memory
	Directory string      `yaml:"directory"`
	S3        S3Config    `yaml:"s3,omitempty"`
	Retry     RetryConfig `yaml:"retry,omitempty"`
}

// RetryConfig controls retries of failed uploads to remote output stores.
type RetryConfig struct {
	Backoff    string `yaml:"backoff,omitempty"` // fixed|linear|exponential
	Initial    string `yaml:"initial,omitempty"`
	Max        string `yaml:"max,omitempty"`
	MaxRetries int    `yaml:"max_retries,omitempty"`
}

// S3Config configures the S3 output driver.
type S3Config struct {
	Bucket          string `yaml:"bucket,omitempty"`
	Region          string `yaml:"region,omitempty"`
	Endpoint        string `yaml:"endpoint,omitempty"`
	PathStyle       bool   `yaml:"path_style,omitempty"`
	Prefix          string `yaml:"prefix,omitempty"`
	AccessKeyID     string `yaml:"access_key_id,omitempty"`
	SecretAccessKey string `yaml:"secret_access_key,omitempty"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Site.Title == "" {
		c.Site.Title = "Documentation"
	}
	if c.Site.BuildType == "" {
		c.Site.BuildType = "online"
	}
	if c.Site.DefaultLocale == "" {
		c.Site.DefaultLocale = "en"
	}
	if len(c.Site.Locales) == 0 {
		c.Site.Locales = []string{c.Site.DefaultLocale}
	}
	if c.Content.Root == "" {
		c.Content.Root = "docs"
	}
	if c.Content.VersionTable == "" {
		c.Content.VersionTable = filepath.Join(c.Content.Root, "docs.json")
	}
	if c.Content.LocalesDir == "" {
		c.Content.LocalesDir = "locale"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.MetricsPath == "" {
		c.Server.MetricsPath = "/metrics"
	}
	if c.Server.WatchDebounce == "" {
		c.Server.WatchDebounce = "500ms"
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Contributors.Store.Driver == "" {
		c.Contributors.Store.Driver = "sqlite"
	}
	if c.Contributors.Store.DSN == "" && c.Contributors.Store.Driver == "sqlite" {
		c.Contributors.Store.DSN = "contributors.db"
	}
	if c.Contributors.QueueSize <= 0 {
		c.Contributors.QueueSize = 256
	}
	if c.Contributors.Workers <= 0 {
		c.Contributors.Workers = 1
	}
	if c.Contributors.RefreshInterval == "" {
		c.Contributors.RefreshInterval = "6h"
	}
	if c.Output.Driver == "" {
		c.Output.Driver = "fs"
	}
	if c.Output.Directory == "" {
		c.Output.Directory = "public"
	}
	if c.Output.Retry.Backoff == "" {
		c.Output.Retry.Backoff = "exponential"
	}
	if c.Output.Retry.Initial == "" {
		c.Output.Retry.Initial = "1s"
	}
	if c.Output.Retry.Max == "" {
		c.Output.Retry.Max = "30s"
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string
	switch c.Site.BuildType {
	case "online", "archive":
	default:
		problems = append(problems, fmt.Sprintf("site.build_type must be online or archive, got %q", c.Site.BuildType))
	}
	found := false
	for _, l := range c.Site.Locales {
		if l == c.Site.DefaultLocale {
			found = true
		}
	}
	if !found {
		problems = append(problems, fmt.Sprintf("site.default_locale %q is not listed in site.locales", c.Site.DefaultLocale))
	}
	for name, d := range map[string]string{
		"server.watch_debounce":         c.Server.WatchDebounce,
		"server.shutdown_timeout":       c.Server.ShutdownTimeout,
		"contributors.refresh_interval": c.Contributors.RefreshInterval,
		"output.retry.initial":          c.Output.Retry.Initial,
		"output.retry.max":              c.Output.Retry.Max,
	} {
		if _, err := time.ParseDuration(d); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", name, err))
		}
	}
	switch c.Contributors.Store.Driver {
	case "sqlite", "postgres":
	default:
		problems = append(problems, fmt.Sprintf("contributors.store.driver must be sqlite or postgres, got %q", c.Contributors.Store.Driver))
	}
	if c.Contributors.Enabled && c.Contributors.Store.DSN == "" {
		problems = append(problems, "contributors.store.dsn is required")
	}
	switch c.Output.Retry.Backoff {
	case "fixed", "linear", "exponential":
	default:
		problems = append(problems, fmt.Sprintf("output.retry.backoff must be fixed, linear or exponential, got %q", c.Output.Retry.Backoff))
	}
	if c.Output.Retry.MaxRetries < 0 {
		problems = append(problems, "output.retry.max_retries cannot be negative")
	}
	switch c.Output.Driver {
	case "fs", "memory":
	case "s3":
		if c.Output.S3.Bucket == "" {
			problems = append(problems, "output.s3.bucket is required for the s3 driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("output.driver must be fs, s3 or memory, got %q", c.Output.Driver))
	}
	if len(problems) > 0 {
		return errors.ConfigError("invalid configuration").
			WithContext("problems", strings.Join(problems, "; ")).
			Build()
	}
	return nil
}

// Duration parses a validated duration field.
func Duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

// Load reads path after loading .env and .env.local (existing environment
// variables win), expands ${VAR} references, applies defaults and validates.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigError("configuration file not found").WithContext("path", path).Build()
		}
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").Build()
	}
	return Parse([]byte(os.ExpandEnv(string(data))))
}

// Parse decodes YAML configuration, applies defaults and validates.
func Parse(data []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to unmarshal config").Build()
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func loadEnvFiles() {
	for _, name := range []string{".env", ".env.local"} {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load environment file", logfields.File(name), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.File(name))
	}
}

// Init writes an example configuration to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return errors.ValidationError("configuration file already exists (use --force to overwrite)").
			WithContext("path", path).
			Build()
	}
	example := Default()
	example.Site.Title = "PingCAP Docs"
	example.Site.BaseURL = "https://docs.example.com"
	example.Site.Locales = []string{"en", "zh", "ja"}
	example.Site.UnversionedRepos = []string{"tidbcloud"}
	example.Contributors.Enabled = true
	example.Contributors.GitRoot = "repos"
	example.Output.Retry.MaxRetries = 3

	data, err := yaml.Marshal(example)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.FileSystemError("failed to write config file").WithCause(err).WithContext("path", path).Build()
	}
	return nil
}
