package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Loader resolves configuration in three layers: built-in defaults, an
// optional config.yaml, then environment variables (optionally seeded from a
// .env file).
type Loader struct {
	useDotEnv bool
	path      string
}

func NewLoader() *Loader {
	return &Loader{
		useDotEnv: true,
		path:      "config.yaml",
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath overrides the config file location (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	if path != "" {
		l.path = path
	}
	return l
}

// Result captures the loaded configuration and its origin.
type Result struct {
	Config *Config
	Path   string
}

func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		// Missing .env is fine; the process environment still applies.
		_ = godotenv.Load()
	}

	cfg := DefaultConfig()
	origin := "defaults"

	if data, err := os.ReadFile(l.path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", l.path, err)
		}
		origin = l.path
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read %s: %w", l.path, err)
	}

	applyEnv(cfg)

	if cfg.Session.UnreachablePolicy != PolicyOpen && cfg.Session.UnreachablePolicy != PolicyClosed {
		return nil, fmt.Errorf("session.unreachable_policy must be %q or %q, got %q",
			PolicyOpen, PolicyClosed, cfg.Session.UnreachablePolicy)
	}

	return &Result{Config: cfg, Path: origin}, nil
}

// applyEnv maps the environment variables the original deployment used onto
// the config structure.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("PORTAL_URL"); v != "" {
		cfg.Session.PortalURL = v
	}
	if v := os.Getenv("SESSION_VERIFY_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Session.VerifyTimeout = d
		}
	}
	if v := os.Getenv("SESSION_UNREACHABLE_POLICY"); v != "" {
		cfg.Session.UnreachablePolicy = v
	}
	if v := os.Getenv("SESSION_CACHE_ADDR"); v != "" {
		cfg.Session.Cache.Enabled = true
		cfg.Session.Cache.Addr = v
	}
	if v := os.Getenv("DATABASE_DIR"); v != "" {
		cfg.Database.Dir = v
	}
	if v := os.Getenv("STATIC_DIR"); v != "" {
		cfg.Web.StaticDir = v
	}
	if v := os.Getenv("REQUIRE_EMAIL"); v != "" {
		cfg.Carriers.RequireEmail = v == "true" || v == "1"
	}
	if v := os.Getenv("ACCESS_LOG_PATH"); v != "" {
		cfg.AccessLog.Path = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_DIR"); v != "" {
		cfg.Log.Dir = v
	}
}
