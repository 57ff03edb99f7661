package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Analysis.CycleWeeks != 12 {
		t.Errorf("Analysis.CycleWeeks = %v, want 12", cfg.Analysis.CycleWeeks)
	}
	if cfg.Analysis.CacheTTLSeconds != 300 {
		t.Errorf("Analysis.CacheTTLSeconds = %v, want 300", cfg.Analysis.CacheTTLSeconds)
	}
	if cfg.Display.DistanceUnit != "km" {
		t.Errorf("Display.DistanceUnit = %q, want %q", cfg.Display.DistanceUnit, "km")
	}
	if cfg.Display.PaceUnit != "min/km" {
		t.Errorf("Display.PaceUnit = %q, want %q", cfg.Display.PaceUnit, "min/km")
	}
	if cfg.Server.Addr != ":8090" {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, ":8090")
	}

	// Strava config should be empty by default
	if cfg.Strava.ClientID != "" {
		t.Errorf("Strava.ClientID should be empty, got %q", cfg.Strava.ClientID)
	}
	if cfg.Strava.ClientSecret != "" {
		t.Errorf("Strava.ClientSecret should be empty, got %q", cfg.Strava.ClientSecret)
	}
}

func TestConfigValidateStrava(t *testing.T) {
	tests := []struct {
		name        string
		strava      StravaConfig
		errContains string
	}{
		{"valid config", StravaConfig{ClientID: "12345", ClientSecret: "abc123secret"}, ""},
		{"empty client ID", StravaConfig{ClientSecret: "abc123secret"}, "client_id"},
		{"placeholder client ID", StravaConfig{ClientID: "YOUR_CLIENT_ID", ClientSecret: "abc123secret"}, "client_id"},
		{"empty client secret", StravaConfig{ClientID: "12345"}, "client_secret"},
		{"placeholder client secret", StravaConfig{ClientID: "12345", ClientSecret: "YOUR_CLIENT_SECRET"}, "client_secret"},
		{"both placeholders", StravaConfig{ClientID: "YOUR_CLIENT_ID", ClientSecret: "YOUR_CLIENT_SECRET"}, "client_id"}, // first error wins
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Strava = tt.strava
			err := cfg.ValidateStrava()
			if tt.errContains == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Config)
		errContains string
	}{
		{"defaults", func(*Config) {}, ""},
		{"no strava needed", func(c *Config) { c.Strava = StravaConfig{} }, ""},
		{"miles", func(c *Config) { c.Display = DisplayConfig{DistanceUnit: "mi", PaceUnit: "min/mi"} }, ""},
		{"bad distance unit", func(c *Config) { c.Display.DistanceUnit = "yards" }, "distance_unit"},
		{"bad pace unit", func(c *Config) { c.Display.PaceUnit = "sec/km" }, "pace_unit"},
		{"too many weeks", func(c *Config) { c.Analysis.CycleWeeks = 500 }, "cycle_weeks"},
		{"negative ttl", func(c *Config) { c.Analysis.CacheTTLSeconds = -1 }, "cache_ttl_seconds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			switch {
			case tt.errContains == "" && err != nil:
				t.Errorf("unexpected error: %v", err)
			case tt.errContains != "" && err == nil:
				t.Error("expected error, got nil")
			case tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains):
				t.Errorf("error %q should contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "config.json"))
	if !errors.Is(err, ErrNoConfig) {
		t.Errorf("LoadFile(missing) err = %v, want ErrNoConfig", err)
	}
}

func TestLoadFileAppliesDefaultsAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{"strava": {"client_id": "file-id", "client_secret": "file-secret"}, "display": {"distance_unit": "mi"}}`
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("COACH_STRAVA_CLIENT_SECRET", "env-secret")
	t.Setenv("COACH_SERVER_ADDR", "127.0.0.1:9000")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Strava.ClientID != "file-id" {
		t.Errorf("Strava.ClientID = %q, want file-id", cfg.Strava.ClientID)
	}
	if cfg.Strava.ClientSecret != "env-secret" {
		t.Errorf("Strava.ClientSecret = %q, want env-secret", cfg.Strava.ClientSecret)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
	if cfg.Display.DistanceUnit != "mi" || cfg.Display.PaceUnit != "min/km" {
		t.Errorf("Display = %+v", cfg.Display)
	}
	if cfg.Analysis.CycleWeeks != 12 || cfg.Strava.CallbackPort != 8089 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
}

func TestSaveFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.json")
	cfg := DefaultConfig()
	cfg.Strava.ClientID = "abc"
	cfg.Analysis.CycleWeeks = 8

	if err := SaveFile(path, &cfg); err != nil {
		t.Fatalf("SaveFile() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("permissions = %v, want 0600", perm)
	}

	got, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got.Strava.ClientID != "abc" || got.Analysis.CycleWeeks != 8 {
		t.Errorf("round trip lost values: %+v", got)
	}
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"COACH_STRAVA_CLIENT_ID":           "strava.client_id",
		"COACH_ANALYSIS_CACHE_TTL_SECONDS": "analysis.cache_ttl_seconds",
		"COACH_DEBUG":                      "debug",
	}
	for in, want := range tests {
		if got := envKey(in); got != want {
			t.Errorf("envKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDBPathOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Data.DBPath = "/tmp/coach-test.db"
	got, err := cfg.DBPath()
	if err != nil || got != "/tmp/coach-test.db" {
		t.Errorf("DBPath() = %q, %v", got, err)
	}
}
