package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"8080"`
	Environment string `envconfig:"ENV" default:"development"`

	// Recognition backend
	BackendURL     string        `envconfig:"BACKEND_URL" default:"http://localhost:5001"`
	BackendWSURL   string        `envconfig:"BACKEND_WS_URL" default:""`
	BackendToken   string        `envconfig:"BACKEND_TOKEN" default:""`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"15s"`

	// Live feed
	EventBufferSize  int           `envconfig:"EVENT_BUFFER_SIZE" default:"100"`
	StreamMinBackoff time.Duration `envconfig:"STREAM_MIN_BACKOFF" default:"1s"`
	StreamMaxBackoff time.Duration `envconfig:"STREAM_MAX_BACKOFF" default:"30s"`

	// Registration status dwell times before the status line auto-clears
	SuccessClearAfter time.Duration `envconfig:"SUCCESS_CLEAR_AFTER" default:"3s"`
	FailureClearAfter time.Duration `envconfig:"FAILURE_CLEAR_AFTER" default:"5s"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

// PushURL is the websocket endpoint of the backend's push channel. It can
// be set explicitly; otherwise it is derived from BackendURL by swapping
// the scheme.
func (c *Config) PushURL() string {
	if c.BackendWSURL != "" {
		return c.BackendWSURL
	}
	url := c.BackendURL
	switch {
	case strings.HasPrefix(url, "https://"):
		url = "wss://" + strings.TrimPrefix(url, "https://")
	case strings.HasPrefix(url, "http://"):
		url = "ws://" + strings.TrimPrefix(url, "http://")
	}
	return strings.TrimSuffix(url, "/") + "/ws"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
