package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/anerudhh/Realistly-mvp/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig with missing file: %v", err)
	}

	if cfg.Logger.Level != "info" {
		t.Errorf("logger level = %q, want info", cfg.Logger.Level)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("server port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Path != "realistly.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.Pipeline.ConfidenceThreshold != 70 {
		t.Errorf("confidence threshold = %v, want 70", cfg.Pipeline.ConfidenceThreshold)
	}
	if cfg.Pipeline.ExtractionDelay != 500*time.Millisecond {
		t.Errorf("extraction delay = %v", cfg.Pipeline.ExtractionDelay)
	}
	if cfg.Geocoding.RequestTimeout != 15*time.Second {
		t.Errorf("geocoding timeout = %v", cfg.Geocoding.RequestTimeout)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: debug
  json: false
server:
  port: 9090
pipeline:
  confidence_threshold: 80
scheduler:
  tasks:
    sql_maintenance:
      enabled: true
      schedule: "0 0 3 * * *"
`)

	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Logger.Level != "debug" || cfg.Logger.JSON {
		t.Errorf("logger = %+v", cfg.Logger)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.Pipeline.ConfidenceThreshold != 80 {
		t.Errorf("confidence threshold = %v, want 80", cfg.Pipeline.ConfidenceThreshold)
	}

	task, ok := cfg.Scheduler.Tasks["sql_maintenance"]
	if !ok || !task.Enabled || task.Schedule != "0 0 3 * * *" {
		t.Errorf("scheduler task = %+v", task)
	}

	// Untouched sections keep their defaults.
	if cfg.Gemini.ModelName != "gemini-2.0-flash" {
		t.Errorf("gemini model = %q", cfg.Gemini.ModelName)
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"bad log level", "logger:\n  level: loud\n"},
		{"bad port", "server:\n  port: 99999\n"},
		{"bad confidence", "pipeline:\n  confidence_threshold: 150\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			if _, err := config.LoadConfig(path); err == nil {
				t.Error("expected validation error, got nil")
			}
		})
	}
}
