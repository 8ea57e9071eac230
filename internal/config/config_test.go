package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `{"db_path": "engine.db"}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.ListenAddr != ":9810" {
		t.Errorf("ListenAddr = %q, want :9810", cfg.ListenAddr)
	}
	if cfg.CacheTTLSec != 120 {
		t.Errorf("CacheTTLSec = %d, want 120", cfg.CacheTTLSec)
	}
	if cfg.HistoryWindowDays != 90 {
		t.Errorf("HistoryWindowDays = %d, want 90", cfg.HistoryWindowDays)
	}
	if cfg.InsulinWaveHours != 3 {
		t.Errorf("InsulinWaveHours = %f, want 3", cfg.InsulinWaveHours)
	}
	if !cfg.Enabled() {
		t.Error("Enabled() = false, want true by default")
	}
}

func TestLoad_KillSwitch(t *testing.T) {
	path := writeConfig(t, `{"db_path": "engine.db", "engine_enabled": false}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Enabled() {
		t.Error("Enabled() = true, want false")
	}
}

func TestLoad_MissingDBPath(t *testing.T) {
	path := writeConfig(t, `{}`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	if !strings.Contains(err.Error(), "db_path") {
		t.Errorf("error %q does not mention db_path", err)
	}
}

func TestLoad_WindowTooLarge(t *testing.T) {
	path := writeConfig(t, `{"db_path": "engine.db", "history_window_days": 120}`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
}

func TestLoad_BadJSON(t *testing.T) {
	path := writeConfig(t, `{not json`)

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected parse error, got nil")
	}
}
