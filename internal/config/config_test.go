package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with no file: %v", err)
	}
	if cfg.General.WeekStart != "monday" {
		t.Errorf("week_start = %q, want monday", cfg.General.WeekStart)
	}
	if cfg.Dedupe.MaxHourDelta != 72 || cfg.Dedupe.SimilarityThreshold != 0.8 {
		t.Errorf("dedupe defaults = %+v", cfg.Dedupe)
	}
	if cfg.Receivables.Enabled {
		t.Error("receivables enabled by default")
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.General.WeekStart = "sunday"
	cfg.General.StartingBalance = "50000.00"
	cfg.Receivables.Enabled = true
	cfg.Receivables.BaseURL = "https://billing.example.com"
	cfg.Receivables.OnTimeRate = 0.85

	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists() = false after Save")
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.General.WeekStart != "sunday" {
		t.Errorf("week_start = %q", loaded.General.WeekStart)
	}
	if loaded.General.StartingBalance != "50000.00" {
		t.Errorf("starting_balance = %q", loaded.General.StartingBalance)
	}
	if !loaded.Receivables.Enabled || loaded.Receivables.OnTimeRate != 0.85 {
		t.Errorf("receivables = %+v", loaded.Receivables)
	}
}

func TestLoad_InvalidConfigFails(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	// Overdue rate above on-time rate breaks the pessimism ordering.
	cfgDir := filepath.Join(dir, "runway")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	bad := "[receivables]\non_time_rate = 0.5\noverdue_rate = 0.9\n"
	if err := os.WriteFile(filepath.Join(cfgDir, "config.toml"), []byte(bad), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("expected error for overdue_rate > on_time_rate")
	}
}

func TestWeekday(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Weekday
		wantErr bool
	}{
		{"", time.Monday, false},
		{"monday", time.Monday, false},
		{"Sunday", time.Sunday, false},
		{"FRIDAY", time.Friday, false},
		{"someday", time.Monday, true},
	}
	for _, tt := range tests {
		got, err := GeneralConfig{WeekStart: tt.in}.Weekday()
		if (err != nil) != tt.wantErr {
			t.Errorf("Weekday(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("Weekday(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGetInvoicingKey_EnvWins(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Receivables.APIKey = "from-config"

	t.Setenv("RUNWAY_INVOICING_KEY", "from-env")
	if got := GetInvoicingKey(cfg); got != "from-env" {
		t.Errorf("key = %q, want env value", got)
	}

	t.Setenv("RUNWAY_INVOICING_KEY", "")
	if got := GetInvoicingKey(cfg); got != "from-config" {
		t.Errorf("key = %q, want config value", got)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}

	cfg = DefaultConfig()
	cfg.Dedupe.SimilarityThreshold = 1.5
	if err := cfg.Validate(); err == nil {
		t.Error("threshold 1.5 accepted")
	}

	cfg = DefaultConfig()
	cfg.Receivables.Enabled = true
	if err := cfg.Validate(); err == nil {
		t.Error("enabled receivables without base_url accepted")
	}
}
