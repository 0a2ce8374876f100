package config

import "time"

// DefaultConfig returns the configuration used when no file or environment
// overrides are present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:   "0.0.0.0",
			Port: 3003,
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Web: WebConfig{
			StaticDir: "./web",
		},
		Database: DatabaseConfig{
			Dir:  "./data",
			File: "transportadoras.db",
		},
		Session: SessionConfig{
			PortalURL:         "https://ir-comercio-portal-zcan.onrender.com",
			VerifyTimeout:     5 * time.Second,
			UnreachablePolicy: PolicyOpen,
			Cache: SessionCacheConfig{
				Enabled: false,
				Prefix:  "session:verified:",
				TTL:     time.Minute,
			},
		},
		Carriers: CarriersConfig{
			RequireEmail: false,
		},
		AccessLog: AccessLogConfig{
			Path:           "acessos.log",
			ReportInterval: time.Hour,
		},
		Client: ClientConfig{
			ServerURL:      "http://localhost:3003",
			PollInterval:   10 * time.Second,
			StatusInterval: 15 * time.Second,
			RequestTimeout: 10 * time.Second,
		},
	}
}

// Unreachable-portal policies. See SessionConfig.UnreachablePolicy.
const (
	PolicyOpen   = "open"
	PolicyClosed = "closed"
)
