package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	v, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := v.GetInt("server.port"); got != 8080 {
		t.Errorf("server.port = %d, want 8080", got)
	}
	if got := v.GetDuration("taostats.min_interval"); got != 12*time.Second {
		t.Errorf("taostats.min_interval = %v, want 12s", got)
	}
	if got := v.GetInt("taostats.page_limit"); got != 500 {
		t.Errorf("taostats.page_limit = %d, want 500", got)
	}
	if got := v.GetDuration("cache.ttl"); got != 300*time.Second {
		t.Errorf("cache.ttl = %v, want 5m", got)
	}
	if got := v.GetInt("geo.batch_size"); got != 20 {
		t.Errorf("geo.batch_size = %d, want 20", got)
	}
	if !v.GetBool("modules.subnet.enabled") {
		t.Error("modules.subnet.enabled = false, want true")
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "server:\n  port: 9090\ntaostats:\n  default_netuid: 19\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	v, err := Load(path)
	if err != nil {
		t.Fatalf("Load(%q) error = %v", path, err)
	}
	if got := v.GetInt("server.port"); got != 9090 {
		t.Errorf("server.port = %d, want 9090", got)
	}
	if got := v.GetInt("taostats.default_netuid"); got != 19 {
		t.Errorf("taostats.default_netuid = %d, want 19", got)
	}
	// Untouched keys keep their defaults.
	if got := v.GetString("taostats.base_url"); got != "https://api.taostats.io/api" {
		t.Errorf("taostats.base_url = %q, want default", got)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Load() with missing explicit file did not error")
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SUBNETSCOPE_TAOSTATS_API_KEY", "secret-key")

	v, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got := v.GetString("taostats.api_key"); got != "secret-key" {
		t.Errorf("taostats.api_key = %q, want env override", got)
	}
}

func TestSubModuleConfig(t *testing.T) {
	v, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	sub := v.Sub("modules.subnet")
	if sub == nil {
		t.Fatal("Sub(modules.subnet) = nil")
	}
	if !sub.GetBool("enabled") {
		t.Error("sub enabled = false, want true")
	}
}
