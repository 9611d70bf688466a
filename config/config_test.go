package config

import (
	"os"
	"testing"
	"time"
)

// writeTempConfig creates a configuration file overriding a few defaults and
// returns its path.
func writeTempConfig(t *testing.T) string {
	t.Helper()
	content := `bitsouk:
  name: "TestApp"
  version: "1.0"
bridge:
  port: 6573
  update_client_span: 10s
upstream:
  rest_url: "http://127.0.0.1:9999"
  ws_url: "ws://127.0.0.1:9998"
  watchdog_timeout: 5s
history:
  data_dir: "testdata"
`
	f, err := os.CreateTemp("", "cfg-*.yml")
	if err != nil {
		t.Fatalf("create temp file: %v", err)
	}
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("write temp file: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close temp file: %v", err)
	}
	return f.Name()
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("BTREX_REST_URL", "")
	t.Setenv("BTREX_WS_URL", "")

	path := writeTempConfig(t)
	defer os.Remove(path)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Bitsouk.Name != "TestApp" {
		t.Errorf("name = %q, want TestApp", cfg.Bitsouk.Name)
	}
	if cfg.Bridge.Port != 6573 {
		t.Errorf("bridge port = %d, want 6573", cfg.Bridge.Port)
	}
	if cfg.Bridge.UpdateClientSpan != 10*time.Second {
		t.Errorf("update_client_span = %v, want 10s", cfg.Bridge.UpdateClientSpan)
	}
	// Fields absent from the file keep their defaults.
	if cfg.History.Port != 5576 {
		t.Errorf("history port = %d, want default 5576", cfg.History.Port)
	}
	if cfg.Upstream.TickerRefresh != 60*time.Second {
		t.Errorf("ticker_refresh = %v, want default 60s", cfg.Upstream.TickerRefresh)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig("does/not/exist.yml"); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestDefaultsValidate(t *testing.T) {
	t.Setenv("BTREX_REST_URL", "")
	t.Setenv("BTREX_WS_URL", "")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Bridge.Port != 5573 {
		t.Errorf("bridge port = %d, want 5573", cfg.Bridge.Port)
	}
	if cfg.Upstream.WatchdogTimeout != 60*time.Second {
		t.Errorf("watchdog = %v, want 60s", cfg.Upstream.WatchdogTimeout)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero bridge port", func(c *Config) { c.Bridge.Port = 0 }},
		{"huge history port", func(c *Config) { c.History.Port = 70000 }},
		{"zero refresh span", func(c *Config) { c.Bridge.UpdateClientSpan = 0 }},
		{"tls without cert", func(c *Config) { c.Bridge.TLS = true; c.Bridge.CrtFile = "" }},
		{"empty rest url", func(c *Config) { c.Upstream.RestURL = "" }},
		{"zero watchdog", func(c *Config) { c.Upstream.WatchdogTimeout = 0 }},
		{"kafka brokers without topic", func(c *Config) {
			c.History.Kafka.Brokers = []string{"localhost:9092"}
			c.History.Kafka.Topic = ""
		}},
	}
	for _, tc := range cases {
		cfg := DefaultConfig()
		tc.mutate(cfg)
		if err := validateConfig(cfg); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("BTREX_REST_URL", "http://override:1234")
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Upstream.RestURL != "http://override:1234" {
		t.Errorf("rest_url = %q, want env override", cfg.Upstream.RestURL)
	}
}
