package config

import "fmt"

// LogConfig holds logger settings
type LogConfig struct {
	Level  string
	Format string
}

// LoadLogConfig loads logging configuration from environment variables
func LoadLogConfig(getenv func(string) string) (LogConfig, error) {
	cfg := LogConfig{
		Level:  getenv("LOG_LEVEL"),
		Format: getenv("LOG_FORMAT"),
	}
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	switch cfg.Format {
	case "":
		cfg.Format = "console"
	case "console", "json":
	default:
		return cfg, fmt.Errorf("LOG_FORMAT must be console or json, got %q", cfg.Format)
	}
	return cfg, nil
}
