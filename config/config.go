package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Load loads the configuration from file. Values can be overridden
// through DENTALINK_* environment variables, optionally taken from a
// .env file in the working directory.
func Load(configPath string) (*Config, error) {
	// Best effort, a missing .env file is fine
	_ = godotenv.Load()

	v := viper.New()

	// Set default values
	setDefaults(v)

	v.SetEnvPrefix("dentalink")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Connection settings map onto DENTALINK_URL and DENTALINK_TOKEN
	// rather than the doubled-up names AutomaticEnv would derive
	_ = v.BindEnv("dentalink.url", "DENTALINK_URL")
	_ = v.BindEnv("dentalink.token", "DENTALINK_TOKEN")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Look for config in standard locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		// Check current directory first
		v.AddConfigPath(".")

		// Check home directory
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".go-dentalink"))
		}

		// Check /etc
		v.AddConfigPath("/etc/go-dentalink/")
	}

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		// No config file is fine when the environment provides the
		// connection details
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Dentalink defaults
	v.SetDefault("dentalink.url", "https://api.dentalink.healthatom.com/api/v1")
	v.SetDefault("dentalink.timeout", 30)

	// Output defaults
	v.SetDefault("output.format", "table")
	v.SetDefault("output.show_details", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.color", true)
}

// validate checks if the configuration is valid
func validate(cfg *Config) error {
	if cfg.Dentalink.URL == "" {
		return fmt.Errorf("dentalink.url is required")
	}

	if cfg.Dentalink.Token == "" || cfg.Dentalink.Token == "your-token-here" {
		return fmt.Errorf("dentalink.token must be set to a valid API token")
	}

	if cfg.Dentalink.Timeout <= 0 {
		return fmt.Errorf("dentalink.timeout must be positive")
	}

	// Validate output format
	validOutputs := map[string]bool{
		"table": true,
		"json":  true,
	}
	if !validOutputs[cfg.Output.Format] {
		return fmt.Errorf("invalid output format: %s", cfg.Output.Format)
	}

	// Validate logging level
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s", cfg.Logging.Level)
	}

	// Validate logging format
	validFormats := map[string]bool{
		"console": true,
		"json":    true,
	}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s", cfg.Logging.Format)
	}

	return nil
}
