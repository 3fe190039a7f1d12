package server

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iwvelando/microloan/pkg/constants"
)

func TestLoadConfigDefaultsWhenMissing(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != constants.DefaultServerAddress {
		t.Fatalf("expected default address, got %q", cfg.Address)
	}
	if cfg.BodySizeBytes() != constants.DefaultMaxBodySizeBytes {
		t.Fatalf("expected default body limit, got %d", cfg.BodySizeBytes())
	}
	if cfg.ShutdownTimeout != constants.DefaultShutdownTimeout {
		t.Fatalf("expected default shutdown timeout, got %v", cfg.ShutdownTimeout)
	}
}

func TestLoadConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server-config.yaml")
	contents := []byte(`address: 127.0.0.1:9000
maxBodySize: 16K
shutdownTimeout: 3s
logging:
  level: debug
  format: console
`)
	if err := os.WriteFile(path, contents, 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Address != "127.0.0.1:9000" {
		t.Errorf("expected address override, got %s", cfg.Address)
	}
	if cfg.BodySizeBytes() != 16*1024 {
		t.Errorf("expected body limit override, got %d", cfg.BodySizeBytes())
	}
	if cfg.ShutdownTimeout != 3*time.Second {
		t.Errorf("expected shutdown timeout 3s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "console" {
		t.Errorf("unexpected logging config %+v", cfg.Logging)
	}

	cfg.SetBodySizeBytes(1024)
	if cfg.BodySizeBytes() != 1024 || cfg.MaxBodySize != "1024" {
		t.Errorf("SetBodySizeBytes did not apply: %d %s", cfg.BodySizeBytes(), cfg.MaxBodySize)
	}
}

func TestLoadConfigInvalidSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("maxBodySize: invalid"), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for invalid size but got nil")
	}
}

func TestParseSize(t *testing.T) {
	tests := map[string]int64{
		"":        constants.DefaultMaxBodySizeBytes,
		"1024":    1024,
		"512b":    512,
		"64K":     64 * 1024,
		"1m":      1024 * 1024,
		"2 MB":    2 * 1024 * 1024,
		"1G":      1024 * 1024 * 1024,
		"  4096 ": 4096,
	}

	for input, expected := range tests {
		got, err := ParseSize(input)
		if err != nil {
			t.Fatalf("ParseSize(%q) returned error: %v", input, err)
		}
		if got != expected {
			t.Fatalf("ParseSize(%q) = %d, expected %d", input, got, expected)
		}
	}

	for _, bad := range []string{"1TB", "abc", "99999999999G"} {
		if _, err := ParseSize(bad); err == nil {
			t.Errorf("ParseSize(%q) expected error", bad)
		}
	}
}
