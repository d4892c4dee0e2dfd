package config

// Config represents the complete configuration structure
type Config struct {
	Dentalink DentalinkConfig `mapstructure:"dentalink"`
	Filter    FilterConfig    `mapstructure:"filter"`
	Output    OutputConfig    `mapstructure:"output"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// DentalinkConfig holds Dentalink API connection details
type DentalinkConfig struct {
	URL     string `mapstructure:"url"`
	Token   string `mapstructure:"token"`
	Timeout int    `mapstructure:"timeout"`
}

// FilterConfig contains named filter presets
type FilterConfig map[string]string

// OutputConfig controls how command results are displayed
type OutputConfig struct {
	Format      string `mapstructure:"format"`
	ShowDetails bool   `mapstructure:"show_details"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}
