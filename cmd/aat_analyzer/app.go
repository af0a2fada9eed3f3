package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/user/aat_analyzer_go/internal/analysis"
	"github.com/user/aat_analyzer_go/internal/cache"
	"github.com/user/aat_analyzer_go/internal/config"
	"github.com/user/aat_analyzer_go/internal/logutil"
	"github.com/user/aat_analyzer_go/internal/parser"
	"github.com/user/aat_analyzer_go/internal/report"
)

// Options select the optional stages of a batch run.
type Options struct {
	GQuality  bool
	PDFReport bool
	Overwrite bool
}

// App drives the per-file pipeline: cache check, load, synchronize, filter,
// statistics, optional G-quality sweep, export, cache save.
type App struct {
	cfg    config.Config
	logger logutil.Logger
	opts   Options
}

func NewApp(cfg config.Config, logger logutil.Logger, opts Options) *App {
	if logger == nil {
		logger = logutil.Nop
	}
	return &App{cfg: cfg, logger: logger, opts: opts}
}

// ProcessFile runs the whole pipeline for one data file.
func (a *App) ProcessFile(path string) error {
	a.logger.Infof("processing %s", path)

	rec, cacheID, hit := a.loadCached(path)
	updated := !hit
	if !hit {
		fresh, err := a.computeRecord(path)
		if err != nil {
			return err
		}
		rec = fresh
	}

	if a.opts.GQuality && len(rec.GQualityData) == 0 {
		rec.GQualityData = a.runSweep(rec)
		updated = true
	}

	if err := a.export(path, rec); err != nil {
		return err
	}

	if a.cfg.UseCache && updated && cacheID != "" {
		if err := cache.Save(*rec, path, cacheID, a.cfg, a.logger); err != nil {
			a.logger.Warnf("could not cache results: %v", err)
		}
	}

	a.logger.Infof("finished %s", path)
	return nil
}

func (a *App) loadCached(path string) (*cache.Record, string, bool) {
	if !a.cfg.UseCache {
		return nil, "", false
	}
	valid, id := cache.HasValid(path, a.cfg, a.logger)
	if !valid {
		return nil, id, false
	}
	rec, err := cache.Load(path, id, a.logger)
	if err != nil || rec == nil {
		if err != nil {
			a.logger.Warnf("cache load failed: %v", err)
		}
		return nil, id, false
	}
	return rec, id, true
}

func (a *App) computeRecord(path string) (*cache.Record, error) {
	ds, err := parser.Load(path)
	if err != nil {
		return nil, err
	}

	processed, err := analysis.LoadAndProcess(ds, a.cfg, a.logger)
	if err != nil {
		var colErr *parser.ColumnNotFoundError
		if errors.As(err, &colErr) {
			a.suggestColumns(ds, colErr)
		}
		return nil, err
	}

	filtered, err := analysis.FilterData(processed.Inner, processed.Drag, a.cfg, a.logger)
	if err != nil {
		a.logger.Warnf("filtering fell back to unfiltered data: %v", err)
	}

	rec := &cache.Record{
		FilteredTime:                     filtered.Inner.Time,
		FilteredGravityLevelInnerCapsule: filtered.Inner.Value,
		FilteredGravityLevelDragShield:   filtered.Drag.Value,
		FilteredAdjustedTime:             filtered.Drag.Time,
		EndIndex:                         filtered.EndIndex,
	}

	if !filtered.Inner.Empty() {
		stats, err := analysis.CalculateStatistics(filtered.Inner.Value, filtered.Inner.Time, a.cfg)
		if err != nil {
			return nil, err
		}
		rec.InnerStatistics = stats
	}
	if !filtered.Drag.Empty() {
		stats, err := analysis.CalculateStatistics(filtered.Drag.Value, filtered.Drag.Time, a.cfg)
		if err != nil {
			return nil, err
		}
		rec.DragStatistics = stats
	}
	return rec, nil
}

// runSweep executes the G-quality sweep on a background worker while the
// main goroutine renders progress.
func (a *App) runSweep(rec *cache.Record) []analysis.GQualityRow {
	sweep := analysis.NewGQualitySweep(
		rec.FilteredTime,
		rec.FilteredGravityLevelInnerCapsule,
		rec.FilteredGravityLevelDragShield,
		rec.FilteredAdjustedTime,
		a.cfg,
		a.logger,
	)
	sweep.OnProgress(func(percent int) {
		fmt.Printf("\rG-quality sweep: %3d%%", percent)
		if percent >= 100 {
			fmt.Println()
		}
	})
	sweep.OnStatus(func(message string) {
		a.logger.Debugf("g-quality: %s", message)
	})
	return <-sweep.Start()
}

func (a *App) export(path string, rec *cache.Record) error {
	inner := analysis.SensorSeries{Time: rec.FilteredTime, Value: rec.FilteredGravityLevelInnerCapsule}
	drag := analysis.SensorSeries{Time: rec.FilteredAdjustedTime, Value: rec.FilteredGravityLevelDragShield}

	plots := make(map[string][]byte)
	if png, err := report.PlotGravityLevel(inner, drag, "Gravity Level"); err != nil {
		a.logger.Warnf("gravity level plot skipped: %v", err)
	} else {
		plots["gravity_level"] = png
	}

	confirm := report.ConfirmFunc(func(message string) bool {
		a.logger.Infof("%s -> %v", message, a.opts.Overwrite)
		return a.opts.Overwrite
	})

	outputPath, err := report.ExportData(report.ExportInput{
		Inner:        inner,
		Drag:         drag,
		InnerStats:   rec.InnerStatistics,
		DragStats:    rec.DragStatistics,
		SamplingRate: a.cfg.SamplingRate,
		GraphPNG:     plots["gravity_level"],
	}, path, confirm)
	if err != nil {
		return fmt.Errorf("excel export failed: %w", err)
	}
	a.logger.Infof("wrote %s", outputPath)

	if len(rec.GQualityData) > 0 {
		if png, err := report.PlotGQuality(rec.GQualityData, "G-quality"); err != nil {
			a.logger.Warnf("g-quality plot skipped: %v", err)
		} else {
			plots["g_quality"] = png
		}
		if _, err := report.ExportGQuality(rec.GQualityData, path); err != nil {
			return fmt.Errorf("g-quality export failed: %w", err)
		}
		a.logger.Infof("appended G-quality sheet to %s", outputPath)
	}

	if a.opts.PDFReport {
		pdfPath := strings.TrimSuffix(outputPath, ".xlsx") + ".pdf"
		summary := report.ReportSummary{
			SourceFile:   path,
			SamplingRate: a.cfg.SamplingRate,
			WindowSize:   a.cfg.WindowSize,
			EndIndex:     rec.EndIndex,
			InnerStats:   rec.InnerStatistics,
			DragStats:    rec.DragStatistics,
			GQualityRows: rec.GQualityData,
		}
		if err := report.BuildPDFReport(pdfPath, summary, plots); err != nil {
			return fmt.Errorf("pdf report failed: %w", err)
		}
		a.logger.Infof("wrote %s", pdfPath)
	}
	return nil
}

// suggestColumns prints detection candidates so the user can re-run with
// corrected column overrides.
func (a *App) suggestColumns(ds *parser.Dataset, colErr *parser.ColumnNotFoundError) {
	timeCands, accelCands := parser.DetectColumns(ds)
	a.logger.Errorf("missing columns: %s", strings.Join(colErr.Missing, ", "))
	a.logger.Infof("available columns: %s", strings.Join(colErr.Available, ", "))
	if len(timeCands) > 0 {
		a.logger.Infof("time column candidates: %s (use -time-column)", strings.Join(timeCands, ", "))
	}
	if len(accelCands) > 0 {
		a.logger.Infof("acceleration column candidates: %s (use -inner-column / -drag-column)", strings.Join(accelCands, ", "))
	}
}
