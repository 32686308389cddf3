package main

import (
	"log/slog"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the settings read from CURVES_* environment variables.
type Config struct {
	Workers     int        `envconfig:"WORKERS" default:"0"`
	LogLevel    slog.Level `envconfig:"LOG_LEVEL" default:"warn"`
	PreviewSize int        `envconfig:"PREVIEW_SIZE" default:"512"`
	StrokeWidth float32    `envconfig:"STROKE_WIDTH" default:"1.5"`
}

func loadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("curves", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
