// Package config loads the reporting configuration from a YAML file and the
// environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the complete reporting configuration.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	ServiceContext ServiceContextConfig `yaml:"service_context"`
	Log            LogConfig            `yaml:"log"`
	Reporter       ReporterConfig       `yaml:"reporter"`
	Google         GoogleConfig         `yaml:"google"`
	HTTP           HTTPConfig           `yaml:"http"`
	Store          StoreConfig          `yaml:"store"`
	Metrics        MetricsConfig        `yaml:"metrics"`
}

// ServerConfig configures the example service.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// ServiceContextConfig is stamped on every report.
type ServiceContextConfig struct {
	Service string `yaml:"service"`
	Version string `yaml:"version"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`

	// Sink also writes every report to the log.
	Sink bool `yaml:"sink"`
}

type ReporterConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	MinStatus int           `yaml:"min_status"`
}

// GoogleConfig enables the Cloud Error Reporting sink when ProjectID is set.
type GoogleConfig struct {
	ProjectID       string `yaml:"project_id"`
	APIKey          string `yaml:"api_key"`
	CredentialsFile string `yaml:"credentials_file"`
	Endpoint        string `yaml:"endpoint"`
}

// HTTPConfig enables the JSON collector sink when Endpoint is set.
type HTTPConfig struct {
	Endpoint string            `yaml:"endpoint"`
	Headers  map[string]string `yaml:"headers"`
	Timeout  time.Duration     `yaml:"timeout"`
}

// StoreConfig enables the SQLite sink when Path is set.
type StoreConfig struct {
	Path          string `yaml:"path"`
	BusyTimeoutMS int    `yaml:"busy_timeout_ms"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Default returns a configuration that reports to the log only.
func Default() *Config {
	return &Config{
		Server:         ServerConfig{Addr: ":8080"},
		ServiceContext: ServiceContextConfig{Service: "default", Version: "default"},
		Log:            LogConfig{Level: "info", Format: "text", Output: "stdout", Sink: true},
		Reporter:       ReporterConfig{Timeout: 10 * time.Second, MinStatus: 500},
		HTTP:           HTTPConfig{Timeout: 10 * time.Second},
		Store:          StoreConfig{BusyTimeoutMS: 5000},
		Metrics:        MetricsConfig{Enabled: true, Path: "/metrics"},
	}
}

// Load reads path over Default, applies SCG_* environment overrides and
// validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("config: open %s: %w", path, err)
		}
		defer f.Close()

		if err := decode(f, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Parse decodes a YAML document over Default without reading the environment.
func Parse(r io.Reader) (*Config, error) {
	cfg := Default()
	if err := decode(r, cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}

	return nil
}

func (c *Config) applyEnv() {
	c.ServiceContext.Service = getEnv("SCG_SERVICE", c.ServiceContext.Service)
	c.ServiceContext.Version = getEnv("SCG_VERSION", c.ServiceContext.Version)
	c.Log.Level = getEnv("SCG_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("SCG_LOG_FORMAT", c.Log.Format)
	c.Google.ProjectID = getEnv("SCG_GOOGLE_PROJECT_ID", c.Google.ProjectID)
	c.Google.APIKey = getEnv("SCG_GOOGLE_API_KEY", c.Google.APIKey)
	c.HTTP.Endpoint = getEnv("SCG_HTTP_ENDPOINT", c.HTTP.Endpoint)
	c.Store.Path = getEnv("SCG_STORE_PATH", c.Store.Path)
	c.Reporter.MinStatus = getEnvInt("SCG_MIN_STATUS", c.Reporter.MinStatus)
	c.Metrics.Enabled = getEnvBool("SCG_METRICS_ENABLED", c.Metrics.Enabled)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("config: log.format %q: want text or json", c.Log.Format)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: log.level %q: want debug, info, warn or error", c.Log.Level)
	}

	if c.Reporter.Timeout < 0 || c.HTTP.Timeout < 0 {
		return errors.New("config: timeouts must not be negative")
	}

	if m := c.Reporter.MinStatus; m != 0 && (m < 100 || m > 599) {
		return fmt.Errorf("config: reporter.min_status %d: want 0 or an HTTP status", m)
	}

	if c.HTTP.Endpoint != "" {
		u, err := url.Parse(c.HTTP.Endpoint)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("config: http.endpoint %q: want an absolute URL", c.HTTP.Endpoint)
		}
	}

	if c.Google.Endpoint != "" && c.Google.ProjectID == "" {
		return errors.New("config: google.endpoint set without google.project_id")
	}

	if c.Store.BusyTimeoutMS < 0 {
		return fmt.Errorf("config: store.busy_timeout_ms %d must not be negative", c.Store.BusyTimeoutMS)
	}

	if c.Metrics.Enabled && !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("config: metrics.path %q must start with /", c.Metrics.Path)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}

	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}

	return defaultValue
}
