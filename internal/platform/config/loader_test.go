package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	loader := NewLoader().WithDotEnv(false).WithPath(filepath.Join(t.TempDir(), "missing.yaml"))

	res, err := loader.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if res.Path != "defaults" {
		t.Errorf("expected defaults origin, got %s", res.Path)
	}
	if res.Config.Server.Port != 3003 {
		t.Errorf("unexpected default port: %d", res.Config.Server.Port)
	}
	if res.Config.Session.UnreachablePolicy != PolicyOpen {
		t.Errorf("default unreachable policy should be open, got %s", res.Config.Session.UnreachablePolicy)
	}
	if res.Config.Session.VerifyTimeout != 5*time.Second {
		t.Errorf("unexpected verify timeout: %v", res.Config.Session.VerifyTimeout)
	}
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  port: 4000
session:
  portal_url: "http://portal.local"
  unreachable_policy: closed
carriers:
  require_email: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	res, err := NewLoader().WithDotEnv(false).WithPath(path).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if res.Path != path {
		t.Errorf("expected origin %s, got %s", path, res.Path)
	}
	cfg := res.Config
	if cfg.Server.Port != 4000 {
		t.Errorf("port not read from file: %d", cfg.Server.Port)
	}
	if cfg.Session.PortalURL != "http://portal.local" {
		t.Errorf("portal url not read from file: %s", cfg.Session.PortalURL)
	}
	if cfg.Session.UnreachablePolicy != PolicyClosed {
		t.Errorf("policy not read from file: %s", cfg.Session.UnreachablePolicy)
	}
	if !cfg.Carriers.RequireEmail {
		t.Error("require_email not read from file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "5001")
	t.Setenv("PORTAL_URL", "http://env-portal.local")
	t.Setenv("SESSION_UNREACHABLE_POLICY", "closed")
	t.Setenv("REQUIRE_EMAIL", "true")

	res, err := NewLoader().WithDotEnv(false).WithPath(filepath.Join(t.TempDir(), "none.yaml")).Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	cfg := res.Config
	if cfg.Server.Port != 5001 {
		t.Errorf("PORT override ignored: %d", cfg.Server.Port)
	}
	if cfg.Session.PortalURL != "http://env-portal.local" {
		t.Errorf("PORTAL_URL override ignored: %s", cfg.Session.PortalURL)
	}
	if cfg.Session.UnreachablePolicy != PolicyClosed {
		t.Errorf("policy override ignored: %s", cfg.Session.UnreachablePolicy)
	}
	if !cfg.Carriers.RequireEmail {
		t.Error("REQUIRE_EMAIL override ignored")
	}
}

func TestInvalidPolicyRejected(t *testing.T) {
	t.Setenv("SESSION_UNREACHABLE_POLICY", "maybe")

	_, err := NewLoader().WithDotEnv(false).WithPath(filepath.Join(t.TempDir(), "none.yaml")).Load()
	if err == nil {
		t.Fatal("expected error for invalid unreachable policy")
	}
}
