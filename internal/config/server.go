package config

import (
	"fmt"
	"strconv"
	"time"
)

// ServerConfig holds settings for the fixture storefront
type ServerConfig struct {
	Port string
	// Theme selects the default markup generation: "current" or "legacy".
	Theme string
	// RenderDelay postpones client-side re-renders to imitate a live component.
	RenderDelay time.Duration
	// FlakyAdd makes the first add-to-cart of every session fail with a 500.
	FlakyAdd bool
}

// LoadServerConfig loads fixture server configuration from environment variables
func LoadServerConfig(getenv func(string) string) (ServerConfig, error) {
	cfg := ServerConfig{
		Port:        getenv("PORT"),
		Theme:       getenv("FIXTURE_THEME"),
		RenderDelay: 150 * time.Millisecond,
	}

	if cfg.Port == "" {
		cfg.Port = "8080" // Default to port 8080
	}
	switch cfg.Theme {
	case "":
		cfg.Theme = "current"
	case "current", "legacy":
	default:
		return cfg, fmt.Errorf("FIXTURE_THEME must be current or legacy, got %q", cfg.Theme)
	}
	if v := getenv("FIXTURE_RENDER_DELAY"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("FIXTURE_RENDER_DELAY must be a duration: %w", err)
		}
		cfg.RenderDelay = d
	}

	if v := getenv("FIXTURE_FLAKY_ADD"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("FIXTURE_FLAKY_ADD must be a boolean: %w", err)
		}
		cfg.FlakyAdd = b
	}

	return cfg, nil
}
