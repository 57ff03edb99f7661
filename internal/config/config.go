package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix marks environment variables that override file settings:
// COACH_STRAVA_CLIENT_ID -> strava.client_id.
const EnvPrefix = "COACH_"

// Config represents the application configuration
type Config struct {
	Strava   StravaConfig   `json:"strava" koanf:"strava"`
	Analysis AnalysisConfig `json:"analysis" koanf:"analysis"`
	Display  DisplayConfig  `json:"display" koanf:"display"`
	Server   ServerConfig   `json:"server" koanf:"server"`
	Log      LogConfig      `json:"log" koanf:"log"`
	Data     DataConfig     `json:"data" koanf:"data"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `json:"client_id" koanf:"client_id"`
	ClientSecret string `json:"client_secret" koanf:"client_secret"`
	CallbackPort int    `json:"callback_port" koanf:"callback_port"`
}

// AnalysisConfig tunes the analytics and their result cache.
type AnalysisConfig struct {
	CycleWeeks      int `json:"cycle_weeks" koanf:"cycle_weeks"`
	CacheTTLSeconds int `json:"cache_ttl_seconds" koanf:"cache_ttl_seconds"`
	CacheSizeMB     int `json:"cache_size_mb" koanf:"cache_size_mb"`
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	DistanceUnit string `json:"distance_unit" koanf:"distance_unit"`
	PaceUnit     string `json:"pace_unit" koanf:"pace_unit"`
}

// ServerConfig is the HTTP API listener.
type ServerConfig struct {
	Addr string `json:"addr" koanf:"addr"`
}

type LogConfig struct {
	Level string `json:"level" koanf:"level"`
	File  string `json:"file" koanf:"file"`
	JSON  bool   `json:"json" koanf:"json"`
}

type DataConfig struct {
	DBPath string `json:"db_path" koanf:"db_path"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Strava: StravaConfig{
			CallbackPort: 8089,
		},
		Analysis: AnalysisConfig{
			CycleWeeks:      12,
			CacheTTLSeconds: 300,
			CacheSizeMB:     8,
		},
		Display: DisplayConfig{
			DistanceUnit: "km",
			PaceUnit:     "min/km",
		},
		Server: ServerConfig{
			Addr: ":8090",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads ~/.coach/config.json and applies COACH_* overrides.
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path)
}

// LoadFile reads the config at path and applies COACH_* overrides. It
// returns ErrNoConfig when the file is missing.
func LoadFile(path string) (*Config, error) {
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	k := koanf.New(".")
	// JSON is a subset of YAML, so the YAML parser reads the config file as is.
	if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("loading environment overrides: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// envKey maps COACH_SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	section, field, ok := strings.Cut(lower, "_")
	if !ok {
		return lower
	}
	return section + "." + field
}

func applyDefaults(cfg *Config) {
	defaults := DefaultConfig()
	if cfg.Strava.CallbackPort == 0 {
		cfg.Strava.CallbackPort = defaults.Strava.CallbackPort
	}
	if cfg.Analysis.CycleWeeks == 0 {
		cfg.Analysis.CycleWeeks = defaults.Analysis.CycleWeeks
	}
	if cfg.Analysis.CacheTTLSeconds == 0 {
		cfg.Analysis.CacheTTLSeconds = defaults.Analysis.CacheTTLSeconds
	}
	if cfg.Analysis.CacheSizeMB == 0 {
		cfg.Analysis.CacheSizeMB = defaults.Analysis.CacheSizeMB
	}
	if cfg.Display.DistanceUnit == "" {
		cfg.Display.DistanceUnit = defaults.Display.DistanceUnit
	}
	if cfg.Display.PaceUnit == "" {
		cfg.Display.PaceUnit = defaults.Display.PaceUnit
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaults.Server.Addr
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaults.Log.Level
	}
}

// Save writes the configuration to ~/.coach/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg as indented JSON to path.
func SaveFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Strava.ClientID = "YOUR_CLIENT_ID"
	example.Strava.ClientSecret = "YOUR_CLIENT_SECRET"

	return Save(&example)
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	if c.Display.DistanceUnit != "" && c.Display.DistanceUnit != "km" && c.Display.DistanceUnit != "mi" {
		return fmt.Errorf("display.distance_unit must be \"km\" or \"mi\", got %q", c.Display.DistanceUnit)
	}
	if c.Display.PaceUnit != "" && c.Display.PaceUnit != "min/km" && c.Display.PaceUnit != "min/mi" {
		return fmt.Errorf("display.pace_unit must be \"min/km\" or \"min/mi\", got %q", c.Display.PaceUnit)
	}
	if c.Analysis.CycleWeeks < 0 || c.Analysis.CycleWeeks > 104 {
		return fmt.Errorf("analysis.cycle_weeks must be between 1 and 104, got %d", c.Analysis.CycleWeeks)
	}
	if c.Analysis.CacheTTLSeconds < 0 {
		return fmt.Errorf("analysis.cache_ttl_seconds must not be negative, got %d", c.Analysis.CacheTTLSeconds)
	}
	if c.Strava.CallbackPort < 0 || c.Strava.CallbackPort > 65535 {
		return fmt.Errorf("strava.callback_port out of range: %d", c.Strava.CallbackPort)
	}
	return nil
}

// ValidateStrava checks the credentials needed by commands that call Strava.
func (c *Config) ValidateStrava() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}
	return c.Validate()
}

// DBPath is the SQLite file, defaulting to ~/.coach/coach.db.
func (c *Config) DBPath() (string, error) {
	if c.Data.DBPath != "" {
		return c.Data.DBPath, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "coach.db"), nil
}

// LogFile is the log file, defaulting to ~/.coach/coach.log.
func (c *Config) LogFile() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "coach.log"), nil
}

func getConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ConfigDir returns the path to the config directory
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".coach"), nil
}
