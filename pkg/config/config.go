package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL   = "https://api.stlouisfed.org/fred"
	DefaultOutputDir = "./saved_categories"

	FormatCSV     = "csv"
	FormatParquet = "parquet"

	StrategyWindow = "window"
	StrategyLeaky  = "leaky"
)

// Config holds all configuration options for the category crawler
type Config struct {
	API       APIConfig       `yaml:"api" json:"api"`
	RateLimit RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
	Output    OutputConfig    `yaml:"output" json:"output"`
	Traversal TraversalConfig `yaml:"traversal" json:"traversal"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
}

// APIConfig holds FRED API access settings
type APIConfig struct {
	Key     string        `yaml:"key" json:"-"`
	BaseURL string        `yaml:"base_url" json:"base_url"`
	Timeout time.Duration `yaml:"timeout" json:"timeout"`
}

// RateLimitConfig bounds how often the API is called.
// Calls per Period, process-wide.
type RateLimitConfig struct {
	Calls    int           `yaml:"calls" json:"calls"`
	Period   time.Duration `yaml:"period" json:"period"`
	Strategy string        `yaml:"strategy" json:"strategy"`
}

// OutputConfig controls where level checkpoints are written
type OutputConfig struct {
	Directory     string `yaml:"directory" json:"directory"`
	Format        string `yaml:"format" json:"format"`
	FilePattern   string `yaml:"file_pattern" json:"file_pattern"`
	AggregateFile string `yaml:"aggregate_file" json:"aggregate_file"`
}

// TraversalConfig bounds the breadth-first walk
type TraversalConfig struct {
	MaxDepth int      `yaml:"max_depth" json:"max_depth"`
	RootIDs  []string `yaml:"root_ids" json:"root_ids"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" json:"level"`
	File  string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with the crawler's defaults:
// one call every two seconds, ten levels starting at the root category 0.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: DefaultBaseURL,
			Timeout: 30 * time.Second,
		},
		RateLimit: RateLimitConfig{
			Calls:    1,
			Period:   2 * time.Second,
			Strategy: StrategyWindow,
		},
		Output: OutputConfig{
			Directory:   DefaultOutputDir,
			Format:      FormatCSV,
			FilePattern: "fetched_level_%d",
		},
		Traversal: TraversalConfig{
			MaxDepth: 10,
			RootIDs:  []string{"0"},
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadFromEnv loads configuration from environment variables.
// Malformed numeric or duration values are reported rather than ignored.
func (c *Config) LoadFromEnv() error {
	var errs []error

	if key := os.Getenv("FRED_API_KEY"); key != "" {
		c.API.Key = key
	}
	if key := os.Getenv("FREDCAT_API_KEY"); key != "" {
		c.API.Key = key
	}
	if baseURL := os.Getenv("FREDCAT_BASE_URL"); baseURL != "" {
		c.API.BaseURL = baseURL
	}
	if v := os.Getenv("FREDCAT_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("FREDCAT_TIMEOUT: %w", err))
		} else {
			c.API.Timeout = d
		}
	}

	if v := os.Getenv("FREDCAT_RATE_LIMIT_CALLS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("FREDCAT_RATE_LIMIT_CALLS: %w", err))
		} else {
			c.RateLimit.Calls = n
		}
	}
	if v := os.Getenv("FREDCAT_RATE_LIMIT_PERIOD"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("FREDCAT_RATE_LIMIT_PERIOD: %w", err))
		} else {
			c.RateLimit.Period = d
		}
	}
	if v := os.Getenv("FREDCAT_RATE_LIMIT_STRATEGY"); v != "" {
		c.RateLimit.Strategy = strings.ToLower(v)
	}

	if v := os.Getenv("FREDCAT_OUTPUT_DIR"); v != "" {
		c.Output.Directory = v
	}
	if v := os.Getenv("FREDCAT_OUTPUT_FORMAT"); v != "" {
		c.Output.Format = strings.ToLower(v)
	}
	if v := os.Getenv("FREDCAT_AGGREGATE_FILE"); v != "" {
		c.Output.AggregateFile = v
	}

	if v := os.Getenv("FREDCAT_MAX_DEPTH"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("FREDCAT_MAX_DEPTH: %w", err))
		} else {
			c.Traversal.MaxDepth = n
		}
	}
	if v := os.Getenv("FREDCAT_ROOT_IDS"); v != "" {
		c.Traversal.RootIDs = splitList(v)
	}

	if v := os.Getenv("FREDCAT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("FREDCAT_LOG_FILE"); v != "" {
		c.Logging.File = v
	}

	return errors.Join(errs...)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadFromFile loads configuration from a YAML file.
// An empty path searches the default locations; finding nothing is not an error.
func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// DefaultPath is where `config init` writes when no path is given.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "fredcat", "config.yaml")
}

func findConfigFile() string {
	home := os.Getenv("HOME")
	locations := []string{
		".fredcat.yaml",
		".fredcat.yml",
		filepath.Join(home, ".config", "fredcat", "config.yaml"),
		filepath.Join(home, ".fredcat.yaml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

// Validate checks if the configuration is valid.
// The API key is not checked here because it may still come from the
// credential store; use RequireAPIKey once resolution is done.
func (c *Config) Validate() error {
	var errs []error

	if c.API.BaseURL == "" {
		errs = append(errs, errors.New("API base URL is required"))
	}
	if c.API.Timeout <= 0 {
		errs = append(errs, errors.New("API timeout must be positive"))
	}

	if c.RateLimit.Calls <= 0 {
		errs = append(errs, errors.New("rate limit calls must be positive"))
	}
	if c.RateLimit.Period <= 0 {
		errs = append(errs, errors.New("rate limit period must be positive"))
	}
	switch c.RateLimit.Strategy {
	case StrategyWindow, StrategyLeaky:
	default:
		errs = append(errs, fmt.Errorf("unknown rate limit strategy %q", c.RateLimit.Strategy))
	}

	if c.Output.Directory == "" {
		errs = append(errs, errors.New("output directory is required"))
	}
	switch c.Output.Format {
	case FormatCSV, FormatParquet:
	default:
		errs = append(errs, fmt.Errorf("unknown output format %q", c.Output.Format))
	}
	if strings.Count(c.Output.FilePattern, "%d") != 1 {
		errs = append(errs, errors.New("file pattern must contain exactly one %d"))
	}

	if c.Traversal.MaxDepth <= 0 {
		errs = append(errs, errors.New("max depth must be positive"))
	}
	if len(c.Traversal.RootIDs) == 0 {
		errs = append(errs, errors.New("at least one root category id is required"))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}

	return errors.Join(errs...)
}

// RequireAPIKey fails when no API key has been resolved.
func (c *Config) RequireAPIKey() error {
	if strings.TrimSpace(c.API.Key) == "" {
		return errors.New("FRED API key is required: set FRED_API_KEY or run 'fredcat auth set-key'")
	}
	return nil
}

// Save writes the configuration as YAML. The API key is omitted.
func (c *Config) Save(path string) error {
	out := *c
	out.API.Key = ""

	data, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Overrides are values set on the command line.
type Overrides struct {
	LogLevel string
}

func (c *Config) apply(o Overrides) {
	if o.LogLevel != "" {
		c.Logging.Level = o.LogLevel
	}
}

// Load loads configuration from all sources with proper precedence:
// flags > environment > .env file > config file > defaults.
func Load(configPath string, o Overrides) (*Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".fredcat.env"))

	cfg := DefaultConfig()

	if err := cfg.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg.apply(o)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
