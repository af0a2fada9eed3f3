package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"gonum.org/v1/gonum/interp"

	"github.com/user/aat_analyzer_go/internal/analysis"
)

const (
	sheetData     = "Gravity Level Data"
	sheetStats    = "Gravity Level Statistics"
	sheetGraph    = "Gravity Level Graph"
	sheetGQuality = "G-quality Analysis"
)

// ConfirmFunc asks the host application whether an existing output file may
// be overwritten. A nil ConfirmFunc means "always overwrite".
type ConfirmFunc func(message string) bool

// ExportInput bundles the processed series and statistics for one file.
type ExportInput struct {
	Inner        analysis.SensorSeries
	Drag         analysis.SensorSeries
	InnerStats   *analysis.StatisticsResult
	DragStats    *analysis.StatisticsResult
	SamplingRate float64
	GraphPNG     []byte
}

// ExportData writes the gravity-level series, the minimum-variance
// statistics and the graph image to <base>_processed.xlsx next to the source
// file. Both sensors are resampled onto a unified time axis by linear
// interpolation so the sheet rows line up. Returns the path written.
func ExportData(in ExportInput, csvPath string, confirm ConfirmFunc) (string, error) {
	outputPath, err := resolveOutputPath(csvPath, confirm)
	if err != nil {
		return "", err
	}

	unified, innerVals, dragVals, err := unifiedTimeAxis(in.Inner, in.Drag, in.SamplingRate)
	if err != nil {
		return "", fmt.Errorf("cannot build unified time axis: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()
	f.SetSheetName("Sheet1", sheetData)

	sw, err := f.NewStreamWriter(sheetData)
	if err != nil {
		return "", fmt.Errorf("cannot write data sheet: %w", err)
	}
	header := []interface{}{
		"Time (s)",
		"Gravity Level (Inner Capsule) (G)",
		"Gravity Level (Drag Shield) (G)",
	}
	if err := sw.SetRow("A1", header); err != nil {
		return "", fmt.Errorf("cannot write data header: %w", err)
	}
	for i, t := range unified {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{t, cellValue(innerVals, i), cellValue(dragVals, i)}
		if err := sw.SetRow(cell, row); err != nil {
			return "", fmt.Errorf("cannot write data row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return "", fmt.Errorf("cannot flush data sheet: %w", err)
	}

	if err := writeStatsSheet(f, in.InnerStats, in.DragStats); err != nil {
		return "", err
	}

	if len(in.GraphPNG) > 0 {
		if _, err := f.NewSheet(sheetGraph); err != nil {
			return "", fmt.Errorf("cannot create graph sheet: %w", err)
		}
		pic := &excelize.Picture{Extension: ".png", File: in.GraphPNG, Format: &excelize.GraphicOptions{}}
		if err := f.AddPictureFromBytes(sheetGraph, "A1", pic); err != nil {
			return "", fmt.Errorf("cannot embed graph image: %w", err)
		}
	}

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("cannot save workbook %s (is it open elsewhere?): %w", outputPath, err)
	}
	return outputPath, nil
}

// ExportGQuality appends (or replaces) the G-quality Analysis sheet in the
// processed workbook belonging to the original data file. The workbook is
// created when it does not exist yet.
func ExportGQuality(rows []analysis.GQualityRow, originalPath string) (string, error) {
	outputPath := processedPath(originalPath)

	f, err := excelize.OpenFile(outputPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return "", fmt.Errorf("cannot open workbook %s: %w", outputPath, err)
		}
		f = excelize.NewFile()
		f.SetSheetName("Sheet1", sheetGQuality)
	}
	defer f.Close()

	// Replace a stale sheet by renaming it aside first; a workbook must keep
	// at least one sheet, so delete only after the fresh one exists.
	if idx, _ := f.GetSheetIndex(sheetGQuality); idx >= 0 {
		stale := sheetGQuality + " (old)"
		if err := f.SetSheetName(sheetGQuality, stale); err != nil {
			return "", fmt.Errorf("cannot reset g-quality sheet: %w", err)
		}
		if _, err := f.NewSheet(sheetGQuality); err != nil {
			return "", fmt.Errorf("cannot create g-quality sheet: %w", err)
		}
		if err := f.DeleteSheet(stale); err != nil {
			return "", fmt.Errorf("cannot reset g-quality sheet: %w", err)
		}
	} else if _, err := f.NewSheet(sheetGQuality); err != nil {
		return "", fmt.Errorf("cannot create g-quality sheet: %w", err)
	}

	header := []interface{}{
		"Window Size (s)",
		"Inner Capsule: Time at smallest Standard Deviation(s)",
		"Inner Capsule: Mean Gravity Level of the interval with the smallest standard deviation(G)",
		"Inner Capsule: smallest Standard Deviation(G)",
		"Drag Shield: Time at smallest Standard Deviation(s)",
		"Drag Shield: Mean Gravity Level of the interval with the smallest standard deviation(G)",
		"Drag Shield: smallest Standard Deviation(G)",
	}
	if err := f.SetSheetRow(sheetGQuality, "A1", &header); err != nil {
		return "", fmt.Errorf("cannot write g-quality header: %w", err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{
			row.WindowSize,
			ptrValue(row.TimeIC), ptrValue(row.MeanIC), ptrValue(row.StdIC),
			ptrValue(row.TimeDS), ptrValue(row.MeanDS), ptrValue(row.StdDS),
		}
		if err := f.SetSheetRow(sheetGQuality, cell, &values); err != nil {
			return "", fmt.Errorf("cannot write g-quality row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(outputPath); err != nil {
		return "", fmt.Errorf("cannot save workbook %s (is it open elsewhere?): %w", outputPath, err)
	}
	return outputPath, nil
}

func writeStatsSheet(f *excelize.File, innerStats, dragStats *analysis.StatisticsResult) error {
	if _, err := f.NewSheet(sheetStats); err != nil {
		return fmt.Errorf("cannot create statistics sheet: %w", err)
	}
	rows := []struct {
		label string
		value interface{}
	}{
		{"Inner Capsule: Mean Gravity Level of the interval with the smallest standard deviation(G)", statValue(innerStats, func(s *analysis.StatisticsResult) float64 { return s.MeanAbs })},
		{"Inner Capsule: Time at smallest Standard Deviation(s)", statValue(innerStats, func(s *analysis.StatisticsResult) float64 { return s.StartTime })},
		{"Inner Capsule: smallest Standard Deviation(G)", statValue(innerStats, func(s *analysis.StatisticsResult) float64 { return s.StdDev })},
		{"Drag Shield: Mean Gravity Level of the interval with the smallest standard deviation(G)", statValue(dragStats, func(s *analysis.StatisticsResult) float64 { return s.MeanAbs })},
		{"Drag Shield: Time at smallest Standard Deviation(s)", statValue(dragStats, func(s *analysis.StatisticsResult) float64 { return s.StartTime })},
		{"Drag Shield: smallest Standard Deviation(G)", statValue(dragStats, func(s *analysis.StatisticsResult) float64 { return s.StdDev })},
	}
	headerRow := []interface{}{"Statistic", "Value"}
	if err := f.SetSheetRow(sheetStats, "A1", &headerRow); err != nil {
		return fmt.Errorf("cannot write statistics header: %w", err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := []interface{}{row.label, row.value}
		if err := f.SetSheetRow(sheetStats, cell, &values); err != nil {
			return fmt.Errorf("cannot write statistics row %d: %w", i+2, err)
		}
	}
	return nil
}

// unifiedTimeAxis resamples both sensors onto one shared axis spanning the
// overlap of their time ranges at the configured sampling rate. An empty
// sensor contributes nil values. Requires strictly increasing time axes.
func unifiedTimeAxis(inner, drag analysis.SensorSeries, samplingRate float64) (unified, innerVals, dragVals []float64, err error) {
	if samplingRate <= 0 {
		return nil, nil, nil, fmt.Errorf("sampling rate must be positive")
	}

	start := math.Inf(-1)
	end := math.Inf(1)
	any := false
	for _, s := range []analysis.SensorSeries{inner, drag} {
		if s.Empty() {
			continue
		}
		any = true
		if s.Time[0] > start {
			start = s.Time[0]
		}
		if s.Time[len(s.Time)-1] < end {
			end = s.Time[len(s.Time)-1]
		}
	}
	if !any || end < start {
		return nil, nil, nil, fmt.Errorf("sensor time ranges do not overlap")
	}

	step := 1.0 / samplingRate
	for t := start; t <= end+step/2; t += step {
		unified = append(unified, t)
	}

	if innerVals, err = resample(inner, unified); err != nil {
		return nil, nil, nil, err
	}
	if dragVals, err = resample(drag, unified); err != nil {
		return nil, nil, nil, err
	}
	return unified, innerVals, dragVals, nil
}

func resample(s analysis.SensorSeries, axis []float64) ([]float64, error) {
	if s.Empty() {
		return nil, nil
	}
	if s.Len() == 1 {
		out := make([]float64, len(axis))
		for i := range out {
			out[i] = s.Value[0]
		}
		return out, nil
	}
	var pl interp.PiecewiseLinear
	if err := pl.Fit(s.Time, s.Value); err != nil {
		return nil, fmt.Errorf("cannot interpolate series: %w", err)
	}
	lo, hi := s.Time[0], s.Time[len(s.Time)-1]
	out := make([]float64, len(axis))
	for i, t := range axis {
		out[i] = pl.Predict(math.Min(math.Max(t, lo), hi))
	}
	return out, nil
}

// resolveOutputPath chooses <base>_processed.xlsx, asking the confirm hook
// before overwriting an existing workbook and falling back to a numbered
// suffix when overwriting is declined.
func resolveOutputPath(csvPath string, confirm ConfirmFunc) (string, error) {
	outputPath := processedPath(csvPath)
	if _, err := os.Stat(outputPath); err != nil {
		return outputPath, nil
	}
	if confirm == nil || confirm(fmt.Sprintf("output file already exists: %s, overwrite?", outputPath)) {
		return outputPath, nil
	}
	base := strings.TrimSuffix(outputPath, ".xlsx")
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s_%d.xlsx", base, counter)
		if _, err := os.Stat(candidate); err != nil {
			return candidate, nil
		}
	}
}

func processedPath(csvPath string) string {
	base := strings.TrimSuffix(csvPath, filepath.Ext(csvPath))
	return base + "_processed.xlsx"
}

func cellValue(values []float64, i int) interface{} {
	if values == nil || i >= len(values) {
		return nil
	}
	return values[i]
}

func ptrValue(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func statValue(s *analysis.StatisticsResult, pick func(*analysis.StatisticsResult) float64) interface{} {
	if s == nil {
		return nil
	}
	return pick(s)
}
