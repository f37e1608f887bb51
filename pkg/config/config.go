package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"workflow-sandbox/api/pkg/validation"
)

const (
	defaultPort        = "8080"
	defaultCORSOrigins = "http://localhost:3003"
	defaultLogLevel    = "info"
)

// Config is the server's runtime configuration, sourced from the
// environment.
type Config struct {
	Port            string   `json:"port" validate:"required,numeric"`
	DatabaseURL     string   `json:"database_url"`
	CORSOrigins     []string `json:"cors_origins" validate:"min=1,dive,required"`
	LogLevel        string   `json:"log_level" validate:"oneof=debug info warn error"`
	AutomationsFile string   `json:"automations_file"`
}

// Load reads envFile into the process environment when it exists, then
// builds the Config from the environment. Variables already set win over
// the file.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	return LoadFrom(os.LookupEnv)
}

// LoadFrom builds a Config using lookup to resolve variables.
func LoadFrom(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key, def string) string {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
		return def
	}

	cfg := &Config{
		Port:            get("PORT", defaultPort),
		DatabaseURL:     get("DATABASE_URL", ""),
		CORSOrigins:     splitList(get("CORS_ORIGINS", defaultCORSOrigins)),
		LogLevel:        strings.ToLower(get("LOG_LEVEL", defaultLogLevel)),
		AutomationsFile: get("AUTOMATIONS_FILE", ""),
	}
	if err := validation.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// HasDatabase reports whether persistence is configured.
func (c *Config) HasDatabase() bool {
	return c.DatabaseURL != ""
}

// SlogLevel maps LogLevel onto slog's levels.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
