// Package config loads yuzu-server's TOML configuration file, the
// same load-with-fallback-defaults shape
// five82-flyer/internal/config/config.go uses for its own daemon
// config.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config is the subset of Server options a host process typically
// wants to externalize (spec §6's serverConfig/path/batchDelay).
type Config struct {
	Port       int
	Path       string
	BatchDelay time.Duration
}

const (
	defaultPath       = "/api/yuzu"
	defaultPort       = 8080
	defaultBatchDelay = 16 * time.Millisecond
)

// Load parses path, falling back to defaults entirely when the file
// doesn't exist.
func Load(path string) (Config, error) {
	cfg := Config{Port: defaultPort, Path: defaultPath, BatchDelay: defaultBatchDelay}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		Port         int    `toml:"port"`
		Path         string `toml:"path"`
		BatchDelayMs int    `toml:"batch_delay_ms"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if p := strings.TrimSpace(raw.Path); p != "" {
		cfg.Path = p
	}
	if raw.BatchDelayMs != 0 {
		cfg.BatchDelay = time.Duration(raw.BatchDelayMs) * time.Millisecond
	}

	return cfg, nil
}
