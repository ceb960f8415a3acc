// Package config loads and validates runway configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config holds all runway configuration.
type Config struct {
	General     GeneralConfig     `toml:"general"`
	Dedupe      DedupeConfig      `toml:"dedupe"`
	Receivables ReceivablesConfig `toml:"receivables"`
	Appearance  AppearanceConfig  `toml:"appearance"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	// WeekStart is the day forecast weeks begin on, e.g. "monday".
	WeekStart string `toml:"week_start"`
	// DataDir overrides where the database lives.
	DataDir string `toml:"data_dir,omitempty"`
	// StartingBalance overrides the bank-reported balance as the
	// forecast seed, for accounts whose exports omit balances.
	// Decimal string, e.g. "50000.00".
	StartingBalance string `toml:"starting_balance,omitempty"`
}

// DedupeConfig holds the fuzzy-duplicate thresholds.
type DedupeConfig struct {
	MaxHourDelta        int     `toml:"max_hour_delta"`
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	// AmountTolerance is a decimal string; "0" requires exact matches.
	AmountTolerance string `toml:"amount_tolerance"`
}

// ReceivablesConfig holds the AR overlay settings and collection
// assumptions. Disabled by default: receivables are opt-in.
type ReceivablesConfig struct {
	Enabled      bool    `toml:"enabled"`
	BaseURL      string  `toml:"base_url,omitempty"`
	APIKey       string  `toml:"api_key,omitempty"`
	OnTimeRate   float64 `toml:"on_time_rate"`
	OverdueRate  float64 `toml:"overdue_rate"`
	AvgDelayDays int     `toml:"avg_delay_days"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			WeekStart: "monday",
		},
		Dedupe: DedupeConfig{
			MaxHourDelta:        72,
			SimilarityThreshold: 0.8,
			AmountTolerance:     "0",
		},
		Receivables: ReceivablesConfig{
			OnTimeRate:   0.90,
			OverdueRate:  0.70,
			AvgDelayDays: 14,
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "runway")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "runway")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning validated defaults if it doesn't
// exist. A .env file in the working directory is folded into the
// environment first so the invoicing API key can live outside the config.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Validate checks every configured value the engine will consume.
// The engine itself never re-validates: bad configuration stops here.
func (c Config) Validate() error {
	if _, err := c.General.Weekday(); err != nil {
		return err
	}
	if c.Dedupe.MaxHourDelta < 0 {
		return fmt.Errorf("config: max_hour_delta must be >= 0, got %d", c.Dedupe.MaxHourDelta)
	}
	if c.Dedupe.SimilarityThreshold < 0 || c.Dedupe.SimilarityThreshold > 1 {
		return fmt.Errorf("config: similarity_threshold must be 0-1, got %g", c.Dedupe.SimilarityThreshold)
	}
	r := c.Receivables
	if r.OnTimeRate < 0 || r.OnTimeRate > 1 {
		return fmt.Errorf("config: on_time_rate must be 0-1, got %g", r.OnTimeRate)
	}
	if r.OverdueRate < 0 || r.OverdueRate > 1 {
		return fmt.Errorf("config: overdue_rate must be 0-1, got %g", r.OverdueRate)
	}
	if r.OverdueRate > r.OnTimeRate {
		return fmt.Errorf("config: overdue_rate %g exceeds on_time_rate %g", r.OverdueRate, r.OnTimeRate)
	}
	if r.AvgDelayDays < 0 {
		return fmt.Errorf("config: avg_delay_days must be >= 0, got %d", r.AvgDelayDays)
	}
	if r.Enabled && r.BaseURL == "" {
		return fmt.Errorf("config: receivables enabled but base_url not set")
	}
	return nil
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// Weekday resolves the configured week-start day.
func (g GeneralConfig) Weekday() (time.Weekday, error) {
	if g.WeekStart == "" {
		return time.Monday, nil
	}
	if d, ok := weekdays[strings.ToLower(g.WeekStart)]; ok {
		return d, nil
	}
	return time.Monday, fmt.Errorf("config: unknown week_start %q", g.WeekStart)
}

// GetInvoicingKey returns the invoicing API key from the environment or
// config, in that order.
func GetInvoicingKey(cfg Config) string {
	if key := os.Getenv("RUNWAY_INVOICING_KEY"); key != "" {
		return key
	}
	return cfg.Receivables.APIKey
}
