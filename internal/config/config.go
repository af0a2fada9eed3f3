// Package config handles the flat application configuration: defaults,
// loading from the user config directory and saving with a backup.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/user/aat_analyzer_go/internal/logutil"
)

// AppVersion is stamped into saved configs and cached results so stale
// caches from older releases are rejected.
const AppVersion = "2.1.0"

// EnvConfigDir overrides the config directory when set (used by tests and
// batch environments).
const EnvConfigDir = "AAT_CONFIG_DIR"

const configFileName = "config.json"

// Config is the flat parameter set consumed by the processing pipeline.
// It is treated as a value: the core never mutates a caller's Config, and
// per-call overrides (e.g. manual column selection) work on copies.
type Config struct {
	TimeColumn                     string  `json:"time_column"`
	AccelerationColumnInnerCapsule string  `json:"acceleration_column_inner_capsule"`
	AccelerationColumnDragShield   string  `json:"acceleration_column_drag_shield"`
	SamplingRate                   float64 `json:"sampling_rate"`
	GravityConstant                float64 `json:"gravity_constant"`
	YLimMin                        float64 `json:"ylim_min"`
	YLimMax                        float64 `json:"ylim_max"`
	AccelerationThreshold          float64 `json:"acceleration_threshold"`
	EndGravityLevel                float64 `json:"end_gravity_level"`
	MinSecondsAfterStart           float64 `json:"min_seconds_after_start"`
	WindowSize                     float64 `json:"window_size"`
	GQualityStart                  float64 `json:"g_quality_start"`
	GQualityEnd                    float64 `json:"g_quality_end"`
	GQualityStep                   float64 `json:"g_quality_step"`
	UseInnerAcceleration           bool    `json:"use_inner_acceleration"`
	UseDragAcceleration            bool    `json:"use_drag_acceleration"`
	InvertInnerAcceleration        bool    `json:"invert_inner_acceleration"`
	UseCache                       bool    `json:"use_cache"`
	AppVersion                     string  `json:"app_version"`
}

// Default returns the built-in configuration matching the reference drop
// tower setup.
func Default() Config {
	return Config{
		TimeColumn:                     "データセット1:時間(s)",
		AccelerationColumnInnerCapsule: "データセット1:Z-axis acceleration 1(m/s²)",
		AccelerationColumnDragShield:   "データセット1:Z-axis acceleration 2(m/s²)",
		SamplingRate:                   1000,
		GravityConstant:                9.797578,
		YLimMin:                        -1,
		YLimMax:                        1,
		AccelerationThreshold:          1.0,
		EndGravityLevel:                8,
		MinSecondsAfterStart:           0,
		WindowSize:                     0.1,
		GQualityStart:                  0.1,
		GQualityEnd:                    1.0,
		GQualityStep:                   0.05,
		UseInnerAcceleration:           true,
		UseDragAcceleration:            true,
		InvertInnerAcceleration:        false,
		UseCache:                       true,
		AppVersion:                     AppVersion,
	}
}

// Dir resolves the directory holding config.json.
func Dir() (string, error) {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("cannot resolve user config directory: %w", err)
	}
	return filepath.Join(base, "aat_analyzer"), nil
}

// Load reads config.json from the config directory, applying defaults for
// any missing keys. A missing file is created from the defaults; a corrupt
// file is logged and replaced by the defaults in memory (the file on disk is
// left untouched so the user can inspect it).
func Load(logger logutil.Logger) (Config, error) {
	if logger == nil {
		logger = logutil.Nop
	}
	cfg := Default()

	dir, err := Dir()
	if err != nil {
		return cfg, err
	}
	path := filepath.Join(dir, configFileName)

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		logger.Warnf("config file not found at %s, writing defaults", path)
		if saveErr := Save(cfg); saveErr != nil {
			logger.Errorf("could not write default config: %v", saveErr)
		}
		return cfg, nil
	case err != nil:
		return cfg, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Unmarshal over the defaults: keys present in the file win, missing
	// keys keep their default values, unknown keys are ignored.
	if err := json.Unmarshal(raw, &cfg); err != nil {
		logger.Warnf("config file %s is not valid JSON (%v), using defaults", path, err)
		cfg = Default()
	}
	cfg.AppVersion = AppVersion
	return cfg, nil
}

// Save writes the config to the config directory, keeping the previous file
// as config.json.bak.
func Save(cfg Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create config directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, configFileName)

	if prev, err := os.ReadFile(path); err == nil {
		if err := os.WriteFile(path+".bak", prev, 0o644); err != nil {
			return fmt.Errorf("cannot write config backup: %w", err)
		}
	}

	cfg.AppVersion = AppVersion
	raw, err := json.MarshalIndent(cfg, "", "    ")
	if err != nil {
		return fmt.Errorf("cannot encode config: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("cannot write config file %s: %w", path, err)
	}
	return nil
}
