package main

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the service configuration. Values from the YAML file can be
// overridden by environment variables (PORT, POLL_INTERVAL_MS, NATS_URL).
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	Poll struct {
		IntervalMs int `yaml:"interval_ms"`
	} `yaml:"poll"`

	NATS struct {
		Enabled       bool   `yaml:"enabled"`
		URL           string `yaml:"url"`
		SubjectPrefix string `yaml:"subject_prefix"`
		PublishTicks  bool   `yaml:"publish_ticks"`
	} `yaml:"nats"`

	// Timers declared here are created at startup, so the service comes
	// up with its last-configured timers ready to start.
	Timers []SeedTimer `yaml:"timers"`
}

// SeedTimer declares a timer to create at startup.
type SeedTimer struct {
	Label    string `yaml:"label"`
	Duration string `yaml:"duration"` // HH:MM:SS
}

func defaultConfig() *Config {
	cfg := &Config{}
	cfg.Server.Port = "8080"
	cfg.Poll.IntervalMs = 100
	cfg.NATS.URL = "nats://127.0.0.1:4222"
	cfg.NATS.SubjectPrefix = "timers.events"
	return cfg
}

func loadConfig(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.Server.Port = getEnv("PORT", cfg.Server.Port)
	cfg.Poll.IntervalMs = getEnvAsInt("POLL_INTERVAL_MS", cfg.Poll.IntervalMs)
	cfg.NATS.URL = getEnv("NATS_URL", cfg.NATS.URL)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
