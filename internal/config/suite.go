package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/adyen/storefront-e2e/internal/poll"
)

// SuiteConfig holds settings for driving a storefront with the browser
type SuiteConfig struct {
	BaseURL       string
	Headless      bool
	DemoUser      string
	DemoPass      string
	PollTimeout   time.Duration
	PollIntervals []time.Duration
	ActionTimeout time.Duration
	WaitLog       bool
}

// LoadSuiteConfig loads suite configuration from environment variables
func LoadSuiteConfig(getenv func(string) string) (*SuiteConfig, error) {
	cfg := &SuiteConfig{
		BaseURL:       getenv("BASE_URL"),
		Headless:      true,
		DemoUser:      getenv("DEMO_USER"),
		DemoPass:      getenv("DEMO_PASS"),
		PollTimeout:   10 * time.Second,
		PollIntervals: poll.DefaultIntervals(),
		ActionTimeout: 15 * time.Second,
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:8080/"
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("BASE_URL must be an absolute URL, got %q", cfg.BaseURL)
	}
	// Relative navigation keeps a locale prefix such as /en_US only with a trailing slash.
	if !strings.HasSuffix(cfg.BaseURL, "/") {
		cfg.BaseURL += "/"
	}

	if cfg.DemoUser == "" {
		cfg.DemoUser = "fashion@example.com"
	}
	if cfg.DemoPass == "" {
		cfg.DemoPass = "sylius"
	}

	if v := getenv("HEADLESS"); v != "" {
		cfg.Headless, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("HEADLESS must be a boolean: %w", err)
		}
	}
	if v := getenv("WAIT_LOG"); v != "" {
		cfg.WaitLog, err = strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("WAIT_LOG must be a boolean: %w", err)
		}
	}
	if v := getenv("POLL_TIMEOUT"); v != "" {
		if cfg.PollTimeout, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("POLL_TIMEOUT must be a duration: %w", err)
		}
	}
	if v := getenv("ACTION_TIMEOUT"); v != "" {
		if cfg.ActionTimeout, err = time.ParseDuration(v); err != nil {
			return nil, fmt.Errorf("ACTION_TIMEOUT must be a duration: %w", err)
		}
	}
	if v := getenv("POLL_INTERVALS"); v != "" {
		if cfg.PollIntervals, err = poll.ParseIntervals(v); err != nil {
			return nil, fmt.Errorf("POLL_INTERVALS: %w", err)
		}
	}

	if err := cfg.Policy().Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Policy is the poll policy hard waits use by default
func (c *SuiteConfig) Policy() poll.Policy {
	return poll.Policy{Timeout: c.PollTimeout, Intervals: append([]time.Duration(nil), c.PollIntervals...)}
}
