package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	RootPath string // components root; each child directory is one build unit

	LogFormat string
	LogLevel  string
	Output    string // "human" or "json"
	Workers   int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.RootPath == "" {
		return nil, errors.New("RootPath is a required configuration field and cannot be empty")
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &cfg, nil
}
