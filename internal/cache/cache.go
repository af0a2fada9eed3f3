// Package cache stores processed results next to the source data so a file
// already analyzed under the same configuration and application version is
// not recomputed. Cache files live in <csv dir>/results_AAT/cache/ and are
// keyed by a hash of the file path, its modification time and the
// cache-relevant configuration subset.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/user/aat_analyzer_go/internal/analysis"
	"github.com/user/aat_analyzer_go/internal/config"
	"github.com/user/aat_analyzer_go/internal/logutil"
)

const cacheSubdir = "results_AAT/cache"

// Record is the cached outcome of one file-processing invocation, keyed by
// the descriptive names the export and GUI layers consume.
type Record struct {
	FilteredTime                     []float64                  `json:"filtered_time"`
	FilteredGravityLevelInnerCapsule []float64                  `json:"filtered_gravity_level_inner_capsule"`
	FilteredGravityLevelDragShield   []float64                  `json:"filtered_gravity_level_drag_shield"`
	FilteredAdjustedTime             []float64                  `json:"filtered_adjusted_time"`
	EndIndex                         int                        `json:"end_index"`
	InnerStatistics                  *analysis.StatisticsResult `json:"inner_statistics,omitempty"`
	DragStatistics                   *analysis.StatisticsResult `json:"drag_statistics,omitempty"`
	GQualityData                     []analysis.GQualityRow     `json:"g_quality_data,omitempty"`
}

// metadata is stored alongside the record to validate a cache hit.
type metadata struct {
	CreatedAt  time.Time      `json:"created_at"`
	FilePath   string         `json:"file_path"`
	FileMtime  int64          `json:"file_mtime"`
	AppVersion string         `json:"app_version"`
	Config     relevantConfig `json:"config"`
}

type envelope struct {
	Metadata metadata `json:"_metadata"`
	Record   Record   `json:"record"`
}

// relevantConfig is the configuration subset that affects processing output
// and therefore the cache identity. Struct (not map) so the JSON key order
// is deterministic.
type relevantConfig struct {
	TimeColumn                     string  `json:"time_column"`
	AccelerationColumnInnerCapsule string  `json:"acceleration_column_inner_capsule"`
	AccelerationColumnDragShield   string  `json:"acceleration_column_drag_shield"`
	SamplingRate                   float64 `json:"sampling_rate"`
	GravityConstant                float64 `json:"gravity_constant"`
	AccelerationThreshold          float64 `json:"acceleration_threshold"`
	EndGravityLevel                float64 `json:"end_gravity_level"`
	MinSecondsAfterStart           float64 `json:"min_seconds_after_start"`
	UseInnerAcceleration           bool    `json:"use_inner_acceleration"`
	UseDragAcceleration            bool    `json:"use_drag_acceleration"`
	InvertInnerAcceleration        bool    `json:"invert_inner_acceleration"`
	AppVersion                     string  `json:"app_version"`
}

func subset(cfg config.Config) relevantConfig {
	return relevantConfig{
		TimeColumn:                     cfg.TimeColumn,
		AccelerationColumnInnerCapsule: cfg.AccelerationColumnInnerCapsule,
		AccelerationColumnDragShield:   cfg.AccelerationColumnDragShield,
		SamplingRate:                   cfg.SamplingRate,
		GravityConstant:                cfg.GravityConstant,
		AccelerationThreshold:          cfg.AccelerationThreshold,
		EndGravityLevel:                cfg.EndGravityLevel,
		MinSecondsAfterStart:           cfg.MinSecondsAfterStart,
		UseInnerAcceleration:           cfg.UseInnerAcceleration,
		UseDragAcceleration:            cfg.UseDragAcceleration,
		InvertInnerAcceleration:        cfg.InvertInnerAcceleration,
		AppVersion:                     config.AppVersion,
	}
}

// ID derives the cache identity for a data file under the given
// configuration.
func ID(filePath string, cfg config.Config) (string, error) {
	info, err := os.Stat(filePath)
	if err != nil {
		return "", fmt.Errorf("cannot stat %s: %w", filePath, err)
	}
	cfgJSON, err := json.Marshal(subset(cfg))
	if err != nil {
		return "", fmt.Errorf("cannot encode config subset: %w", err)
	}
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%s", filePath, info.ModTime().UnixNano(), cfgJSON)))
	return hex.EncodeToString(sum[:]), nil
}

// Path returns the cache file location for a data file and cache id,
// creating the cache directory if needed.
func Path(filePath, id string) (string, error) {
	dir := filepath.Join(filepath.Dir(filePath), filepath.FromSlash(cacheSubdir))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("cannot create cache directory %s: %w", dir, err)
	}
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	return filepath.Join(dir, fmt.Sprintf("%s_%s.json", base, id)), nil
}

// Save writes a processed record to the cache. Failures are reported but a
// caller is expected to treat them as non-fatal.
func Save(rec Record, filePath, id string, cfg config.Config, logger logutil.Logger) error {
	if logger == nil {
		logger = logutil.Nop
	}
	cachePath, err := Path(filePath, id)
	if err != nil {
		return err
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return fmt.Errorf("cannot stat %s: %w", filePath, err)
	}
	env := envelope{
		Metadata: metadata{
			CreatedAt:  time.Now(),
			FilePath:   filePath,
			FileMtime:  info.ModTime().UnixNano(),
			AppVersion: config.AppVersion,
			Config:     subset(cfg),
		},
		Record: rec,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("cannot encode cache record: %w", err)
	}
	if err := os.WriteFile(cachePath, raw, 0o644); err != nil {
		return fmt.Errorf("cannot write cache file %s: %w", cachePath, err)
	}
	logger.Infof("cached processed data at %s", cachePath)
	return nil
}

// Load reads a cached record. A missing file or a version mismatch is a
// miss, reported as (nil, nil).
func Load(filePath, id string, logger logutil.Logger) (*Record, error) {
	if logger == nil {
		logger = logutil.Nop
	}
	cachePath, err := Path(filePath, id)
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(cachePath)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debugf("no cache file at %s", cachePath)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read cache file %s: %w", cachePath, err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("corrupt cache file %s: %w", cachePath, err)
	}
	if env.Metadata.AppVersion != config.AppVersion {
		logger.Warnf("cache version %s does not match application version %s", env.Metadata.AppVersion, config.AppVersion)
		return nil, nil
	}
	logger.Infof("loaded processed data from cache %s", cachePath)
	return &env.Record, nil
}

// HasValid reports whether a usable cache entry exists for the file and
// configuration. It also returns the cache id so the caller can reuse it for
// a subsequent Load or Save.
func HasValid(filePath string, cfg config.Config, logger logutil.Logger) (bool, string) {
	if logger == nil {
		logger = logutil.Nop
	}
	if !cfg.UseCache {
		return false, ""
	}
	id, err := ID(filePath, cfg)
	if err != nil {
		logger.Errorf("cannot derive cache id: %v", err)
		return false, ""
	}
	cachePath, err := Path(filePath, id)
	if err != nil {
		logger.Errorf("cannot derive cache path: %v", err)
		return false, id
	}
	raw, err := os.ReadFile(cachePath)
	if err != nil {
		logger.Debugf("no valid cache at %s", cachePath)
		return false, id
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logger.Warnf("corrupt cache file %s: %v", cachePath, err)
		return false, id
	}
	if env.Metadata.AppVersion != config.AppVersion {
		logger.Warnf("cache version %s does not match application version %s", env.Metadata.AppVersion, config.AppVersion)
		return false, id
	}
	info, err := os.Stat(filePath)
	if err != nil || env.Metadata.FileMtime != info.ModTime().UnixNano() {
		logger.Warnf("data file changed since caching: %s", filePath)
		return false, id
	}
	return true, id
}

// Delete removes one cache entry, or every entry for the file when id is
// empty.
func Delete(filePath, id string, logger logutil.Logger) error {
	if logger == nil {
		logger = logutil.Nop
	}
	dir := filepath.Join(filepath.Dir(filePath), filepath.FromSlash(cacheSubdir))
	if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	if id != "" {
		cachePath, err := Path(filePath, id)
		if err != nil {
			return err
		}
		if err := os.Remove(cachePath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		logger.Infof("deleted cache %s", cachePath)
		return nil
	}

	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, base+"_") && strings.HasSuffix(name, ".json") {
			if err := os.Remove(filepath.Join(dir, name)); err != nil {
				return err
			}
			logger.Infof("deleted cache %s", name)
		}
	}
	return nil
}
