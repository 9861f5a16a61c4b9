package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Storage StorageConfig `mapstructure:"storage"`
	Gemini  GeminiConfig  `mapstructure:"gemini"`
	Log     LogConfig     `mapstructure:"log"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Notion  NotionConfig  `mapstructure:"notion"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// StorageConfig selects the snapshot backend
type StorageConfig struct {
	Backend string `mapstructure:"backend"` // "file", "gcs" or "bigquery"
	Dir     string `mapstructure:"dir"`
	Bucket  string `mapstructure:"bucket"`
	Prefix  string `mapstructure:"prefix"`
	Project string `mapstructure:"project"`
	Dataset string `mapstructure:"dataset"`
}

// GeminiConfig holds the extraction and advisor model settings
type GeminiConfig struct {
	APIKey          string `mapstructure:"api_key"`
	ExtractionModel string `mapstructure:"extraction_model"`
	ReceiptModel    string `mapstructure:"receipt_model"`
	AdvisorModel    string `mapstructure:"advisor_model"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

type HTTPConfig struct {
	Port string `mapstructure:"port"`
}

// NotionConfig enables the optional ledger mirror
type NotionConfig struct {
	Token      string `mapstructure:"token"`
	DatabaseID string `mapstructure:"database_id"`
}

type MetricsConfig struct {
	WarnThreshold float64 `mapstructure:"warn_threshold"`
}

// Storage backends
const (
	BackendFile     = "file"
	BackendGCS      = "gcs"
	BackendBigQuery = "bigquery"
)

// EnvPrefix prefixes every environment override, e.g. VAULTY_STORAGE_BACKEND.
const EnvPrefix = "VAULTY"

// DefaultConfigFile is read when no path is given and it exists.
const DefaultConfigFile = "vaulty.toml"

// LoadConfig loads configuration from an optional .env file, an optional TOML
// file and VAULTY_* environment variables, in increasing precedence.
// An empty configPath reads DefaultConfigFile if present.
func LoadConfig(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configPath == "" {
		if _, err := os.Stat(DefaultConfigFile); err == nil {
			configPath = DefaultConfigFile
		}
	}
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Gemini.APIKey == "" {
		config.Gemini.APIKey = firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", BackendFile)
	v.SetDefault("storage.dir", ".vaulty")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.prefix", "")
	v.SetDefault("storage.project", "")
	v.SetDefault("storage.dataset", "vaulty")
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.extraction_model", "")
	v.SetDefault("gemini.receipt_model", "")
	v.SetDefault("gemini.advisor_model", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("http.port", "8080")
	v.SetDefault("notion.token", "")
	v.SetDefault("notion.database_id", "")
	v.SetDefault("metrics.warn_threshold", 0.85)
}

// Validate checks the settings each backend needs.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.Dir == "" {
			return fmt.Errorf("invalid config: storage.dir is required for the file backend")
		}
	case BackendGCS:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("invalid config: storage.bucket is required for the gcs backend")
		}
	case BackendBigQuery:
		if c.Storage.Project == "" || c.Storage.Dataset == "" {
			return fmt.Errorf("invalid config: storage.project and storage.dataset are required for the bigquery backend")
		}
	default:
		return fmt.Errorf("invalid config: unknown storage.backend %q", c.Storage.Backend)
	}
	if c.Metrics.WarnThreshold <= 0 || c.Metrics.WarnThreshold > 1 {
		return fmt.Errorf("invalid config: metrics.warn_threshold must be in (0, 1], got %v", c.Metrics.WarnThreshold)
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
