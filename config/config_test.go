package config

import (
	"os"
	"path/filepath"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Dentalink: DentalinkConfig{
			URL:     "https://api.dentalink.healthatom.com/api/v1",
			Token:   "valid-token",
			Timeout: 30,
		},
		Output: OutputConfig{
			Format: "table",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "missing url",
			mutate:  func(c *Config) { c.Dentalink.URL = "" },
			wantErr: true,
		},
		{
			name:    "missing token",
			mutate:  func(c *Config) { c.Dentalink.Token = "" },
			wantErr: true,
		},
		{
			name:    "placeholder token",
			mutate:  func(c *Config) { c.Dentalink.Token = "your-token-here" },
			wantErr: true,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.Dentalink.Timeout = 0 },
			wantErr: true,
		},
		{
			name:    "invalid output format",
			mutate:  func(c *Config) { c.Output.Format = "csv" },
			wantErr: true,
		},
		{
			name:    "json output format",
			mutate:  func(c *Config) { c.Output.Format = "json" },
			wantErr: false,
		},
		{
			name:    "invalid logging level",
			mutate:  func(c *Config) { c.Logging.Level = "trace" },
			wantErr: true,
		},
		{
			name:    "invalid logging format",
			mutate:  func(c *Config) { c.Logging.Format = "logfmt" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoadFromFile(t *testing.T) {
	// Neutralize ambient environment, empty env vars are ignored
	t.Setenv("DENTALINK_URL", "")
	t.Setenv("DENTALINK_TOKEN", "")

	path := writeConfigFile(t, `dentalink:
  url: https://api.dentalink.healthatom.com/api/v1
  token: file-token
filter:
  confirmed: 'Confirmed == true'
  morning: 'startsBefore("12:00")'
logging:
  level: debug
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Dentalink.Token != "file-token" {
		t.Errorf("expected token from file, got %q", cfg.Dentalink.Token)
	}
	if cfg.Dentalink.Timeout != 30 {
		t.Errorf("expected default timeout 30, got %d", cfg.Dentalink.Timeout)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected logging level debug, got %q", cfg.Logging.Level)
	}
	if cfg.Output.Format != "table" {
		t.Errorf("expected default output format table, got %q", cfg.Output.Format)
	}
	if len(cfg.Filter) != 2 {
		t.Errorf("expected 2 filter presets, got %d", len(cfg.Filter))
	}
	if cfg.Filter["confirmed"] != "Confirmed == true" {
		t.Errorf("unexpected preset: %q", cfg.Filter["confirmed"])
	}
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("DENTALINK_TOKEN", "env-token")

	path := writeConfigFile(t, `dentalink:
  url: https://api.dentalink.healthatom.com/api/v1
  token: file-token
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Dentalink.Token != "env-token" {
		t.Errorf("expected env token to override file, got %q", cfg.Dentalink.Token)
	}
}

func TestLoadMissingToken(t *testing.T) {
	t.Setenv("DENTALINK_TOKEN", "")

	path := writeConfigFile(t, `dentalink:
  url: https://api.dentalink.healthatom.com/api/v1
`)

	if _, err := Load(path); err == nil {
		t.Error("expected error for missing token")
	}
}
