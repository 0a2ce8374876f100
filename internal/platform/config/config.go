package config

import (
	"time"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Log       LogConfig       `yaml:"log"`
	Web       WebConfig       `yaml:"web"`
	Database  DatabaseConfig  `yaml:"database"`
	Session   SessionConfig   `yaml:"session"`
	Carriers  CarriersConfig  `yaml:"carriers"`
	AccessLog AccessLogConfig `yaml:"access_log"`
	Client    ClientConfig    `yaml:"client"`
}

type ServerConfig struct {
	IP   string `yaml:"ip"`
	Port int    `yaml:"port"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

// WebConfig controls the static app shell served alongside the API.
type WebConfig struct {
	StaticDir string `yaml:"static_dir"`
}

type DatabaseConfig struct {
	Dir  string `yaml:"dir"`
	File string `yaml:"file"`
}

// SessionConfig describes how session tokens are delegated to the portal.
type SessionConfig struct {
	PortalURL     string             `yaml:"portal_url"`
	VerifyTimeout time.Duration      `yaml:"verify_timeout"`
	// UnreachablePolicy decides what happens when the portal cannot be
	// reached: "open" trusts the caller in a degraded offline mode, "closed"
	// rejects every request. Security-relevant; must be set deliberately.
	UnreachablePolicy string           `yaml:"unreachable_policy"`
	Cache             SessionCacheConfig `yaml:"cache"`
}

type SessionCacheConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Addr     string        `yaml:"addr"`
	Username string        `yaml:"username,omitempty"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db,omitempty"`
	Prefix   string        `yaml:"prefix,omitempty"`
	TTL      time.Duration `yaml:"ttl"`
}

type CarriersConfig struct {
	// RequireEmail tightens create/update validation for deployments that
	// treat the contact e-mail as mandatory.
	RequireEmail bool `yaml:"require_email"`
}

type AccessLogConfig struct {
	Path           string        `yaml:"path"`
	ReportInterval time.Duration `yaml:"report_interval"`
}

// ClientConfig carries the defaults used by the terminal client.
type ClientConfig struct {
	ServerURL      string        `yaml:"server_url"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	StatusInterval time.Duration `yaml:"status_interval"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}
