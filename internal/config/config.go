// Package config loads the settings of the example binaries from the
// environment, optionally seeded from a .env file.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"github.com/Zereker/duckclient"
)

// Config is the connection target plus logging settings.
type Config struct {
	Host      string // DUCK_HOST
	Port      int    // DUCK_PORT
	Transport string // DUCK_TRANSPORT: tcp or ws
	WSPath    string // DUCK_WS_PATH
	Framing   duckclient.Framing

	LogLevel  string // LOG_LEVEL
	LogFormat string // LOG_FORMAT: text, json or logrus
}

// Load reads files (default ".env") if present, then the environment.
// Variables already set in the environment win over the files.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(errors.Cause(err)) {
			return nil, errors.Wrapf(err, "load %s", f)
		}
	}

	port, err := strconv.Atoi(getEnv("DUCK_PORT", "4242"))
	if err != nil || port <= 0 || port > 65535 {
		return nil, errors.Errorf("invalid DUCK_PORT %q", os.Getenv("DUCK_PORT"))
	}

	framing, err := duckclient.ParseFraming(strings.ToLower(getEnv("DUCK_FRAMING", "raw")))
	if err != nil {
		return nil, errors.Wrap(err, "DUCK_FRAMING")
	}

	cfg := &Config{
		Host:      getEnv("DUCK_HOST", "127.0.0.1"),
		Port:      port,
		Transport: strings.ToLower(getEnv("DUCK_TRANSPORT", "tcp")),
		WSPath:    getEnv("DUCK_WS_PATH", "/ws"),
		Framing:   framing,
		LogLevel:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	if cfg.Transport != "tcp" && cfg.Transport != "ws" {
		return nil, errors.Errorf("invalid DUCK_TRANSPORT %q", cfg.Transport)
	}

	return cfg, nil
}

// WebSocketURL returns the ws:// URL of the target.
func (c *Config) WebSocketURL() string {
	return "ws://" + c.Addr() + c.WSPath
}

// Addr returns host:port.
func (c *Config) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}
