// Package config provides configuration loading, validation, and management
// for the Realistly ingestion service. It handles reading from YAML files,
// environment variables, default values, and validating configuration
// parameters before the rest of the application starts.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the application configuration parameters for all components
// of the ingestion service, including logging, database, AI extraction,
// geocoding, the HTTP API, the parsing pipeline, and scheduled tasks.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Server    ServerConfig    `mapstructure:"server"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Geocoding GeocodingConfig `mapstructure:"geocoding"`
	Pipeline  PipelineConfig  `mapstructure:"pipeline"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
}

// LoggerConfig controls log verbosity and output format.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// DatabaseConfig holds SQLite connection settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port           int   `mapstructure:"port"             validate:"min=1,max=65535"`
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" validate:"min=1024"`
}

// GeminiConfig holds settings for the Gemini AI client used for field
// extraction and image text recovery. An empty APIKey disables the AI
// path entirely; extraction then runs on the rule-based fallback.
type GeminiConfig struct {
	APIKey            string  `mapstructure:"api_key"`
	ModelName         string  `mapstructure:"model_name"  validate:"required"`
	Temperature       float32 `mapstructure:"temperature" validate:"min=0,max=2"`
	MaxRetries        int     `mapstructure:"max_retries" validate:"min=0,max=10"`
	RetryDelaySeconds int     `mapstructure:"retry_delay_seconds" validate:"min=0,max=300"`
}

// GeocodingConfig holds settings for the Google Maps geocoding client.
// An empty APIKey disables geocoding enrichment.
type GeocodingConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url" validate:"url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"min=1s,max=2m"`
	CallDelay      time.Duration `mapstructure:"call_delay"`
}

// PipelineConfig tunes the chat-processing pipeline.
type PipelineConfig struct {
	ExtractionDelay     time.Duration `mapstructure:"extraction_delay"`
	MinImageTextLength  int           `mapstructure:"min_image_text_length" validate:"min=0"`
	ConfidenceThreshold float64       `mapstructure:"confidence_threshold" validate:"min=0,max=100"`
}

// TaskConfig describes a single scheduled task entry.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// SchedulerConfig maps task names to their schedules.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`
}

// LoadConfig reads configuration from the given YAML file path, applies
// defaults, merges APP_-prefixed environment variables, and validates the
// result. A missing config file is not an error; defaults and environment
// variables are used instead.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine; viper reports it either as its own
		// not-found type (search paths) or as a plain fs error (explicit path).
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.json", true)

	v.SetDefault("database.path", "realistly.db")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.max_upload_bytes", int64(10*1024*1024))

	v.SetDefault("gemini.model_name", "gemini-2.0-flash")
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.max_retries", 2)
	v.SetDefault("gemini.retry_delay_seconds", 5)

	v.SetDefault("geocoding.base_url", "https://maps.googleapis.com/maps/api/geocode/json")
	v.SetDefault("geocoding.request_timeout", 15*time.Second)
	v.SetDefault("geocoding.call_delay", 200*time.Millisecond)

	v.SetDefault("pipeline.extraction_delay", 500*time.Millisecond)
	v.SetDefault("pipeline.min_image_text_length", 10)
	v.SetDefault("pipeline.confidence_threshold", 70.0)
}
