package report

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/user/aat_analyzer_go/internal/analysis"
)

func f64(v float64) *float64 { return &v }

func TestProcessedPath(t *testing.T) {
	got := processedPath(filepath.Join("data", "drop_01.csv"))
	want := filepath.Join("data", "drop_01_processed.xlsx")
	if got != want {
		t.Errorf("processedPath = %q, want %q", got, want)
	}
}

func TestResolveOutputPath(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "drop.csv")
	existing := filepath.Join(dir, "drop_processed.xlsx")

	// No existing workbook: no confirmation needed.
	got, err := resolveOutputPath(csvPath, func(string) bool {
		t.Fatal("confirm called although no file exists")
		return false
	})
	if err != nil || got != existing {
		t.Fatalf("resolveOutputPath = %q, %v; want %q", got, err, existing)
	}

	if err := os.WriteFile(existing, []byte("x"), 0o644); err != nil {
		t.Fatalf("writing workbook: %v", err)
	}

	// Overwrite approved.
	got, err = resolveOutputPath(csvPath, func(string) bool { return true })
	if err != nil || got != existing {
		t.Fatalf("resolveOutputPath = %q, %v; want %q", got, err, existing)
	}

	// Overwrite declined: numbered suffix.
	got, err = resolveOutputPath(csvPath, func(string) bool { return false })
	want := filepath.Join(dir, "drop_processed_1.xlsx")
	if err != nil || got != want {
		t.Fatalf("resolveOutputPath = %q, %v; want %q", got, err, want)
	}

	// Numbered file also exists: counter advances.
	if err := os.WriteFile(want, []byte("x"), 0o644); err != nil {
		t.Fatalf("writing workbook: %v", err)
	}
	got, err = resolveOutputPath(csvPath, func(string) bool { return false })
	want = filepath.Join(dir, "drop_processed_2.xlsx")
	if err != nil || got != want {
		t.Fatalf("resolveOutputPath = %q, %v; want %q", got, err, want)
	}
}

func TestUnifiedTimeAxisOverlap(t *testing.T) {
	inner := analysis.SensorSeries{
		Time:  []float64{0, 0.1, 0.2, 0.3},
		Value: []float64{0, 1, 2, 3},
	}
	drag := analysis.SensorSeries{
		Time:  []float64{0.1, 0.2, 0.3, 0.4},
		Value: []float64{10, 20, 30, 40},
	}

	unified, innerVals, dragVals, err := unifiedTimeAxis(inner, drag, 10)
	if err != nil {
		t.Fatalf("unifiedTimeAxis: %v", err)
	}
	// Overlap is [0.1, 0.3] at 10 Hz: three points.
	if len(unified) != 3 {
		t.Fatalf("axis length = %d (%v), want 3", len(unified), unified)
	}
	if math.Abs(unified[0]-0.1) > 1e-9 || math.Abs(unified[2]-0.3) > 1e-9 {
		t.Errorf("axis = %v, want 0.1 .. 0.3", unified)
	}
	if math.Abs(innerVals[0]-1) > 1e-9 || math.Abs(innerVals[2]-3) > 1e-9 {
		t.Errorf("inner resampled = %v", innerVals)
	}
	if math.Abs(dragVals[0]-10) > 1e-9 || math.Abs(dragVals[2]-30) > 1e-9 {
		t.Errorf("drag resampled = %v", dragVals)
	}
}

func TestUnifiedTimeAxisSingleSensor(t *testing.T) {
	inner := analysis.SensorSeries{
		Time:  []float64{0, 0.1, 0.2},
		Value: []float64{0, 1, 2},
	}

	unified, innerVals, dragVals, err := unifiedTimeAxis(inner, analysis.SensorSeries{}, 10)
	if err != nil {
		t.Fatalf("unifiedTimeAxis: %v", err)
	}
	if len(unified) != 3 || len(innerVals) != 3 {
		t.Errorf("axis/values lengths = %d/%d, want 3/3", len(unified), len(innerVals))
	}
	if dragVals != nil {
		t.Errorf("drag values = %v, want nil for empty sensor", dragVals)
	}
}

func TestUnifiedTimeAxisNoOverlap(t *testing.T) {
	inner := analysis.SensorSeries{Time: []float64{0, 0.1}, Value: []float64{0, 1}}
	drag := analysis.SensorSeries{Time: []float64{1.0, 1.1}, Value: []float64{0, 1}}

	if _, _, _, err := unifiedTimeAxis(inner, drag, 10); err == nil {
		t.Error("error is nil, want non-overlapping ranges error")
	}
}

func TestResampleClampsOutsideRange(t *testing.T) {
	s := analysis.SensorSeries{Time: []float64{0.1, 0.2}, Value: []float64{1, 2}}

	out, err := resample(s, []float64{0, 0.15, 0.5})
	if err != nil {
		t.Fatalf("resample: %v", err)
	}
	// Points outside the series range hold the edge values.
	if out[0] != 1 || out[2] != 2 {
		t.Errorf("edge values = %v, %v; want 1, 2", out[0], out[2])
	}
	if math.Abs(out[1]-1.5) > 1e-9 {
		t.Errorf("interpolated value = %v, want 1.5", out[1])
	}
}

func TestResampleSingleSampleIsConstant(t *testing.T) {
	s := analysis.SensorSeries{Time: []float64{0.1}, Value: []float64{7}}

	out, err := resample(s, []float64{0, 0.1, 0.2})
	if err != nil {
		t.Fatalf("resample: %v", err)
	}
	for i, v := range out {
		if v != 7 {
			t.Errorf("out[%d] = %v, want 7", i, v)
		}
	}
}

func TestExportDataWritesWorkbook(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "drop.csv")

	in := ExportInput{
		Inner: analysis.SensorSeries{
			Time:  []float64{0, 0.1, 0.2},
			Value: []float64{0.01, 0.02, 0.03},
		},
		Drag: analysis.SensorSeries{
			Time:  []float64{0, 0.1, 0.2},
			Value: []float64{0.02, 0.03, 0.04},
		},
		InnerStats:   &analysis.StatisticsResult{MeanAbs: 0.02, StartTime: 0, StdDev: 0.001},
		SamplingRate: 10,
	}

	outputPath, err := ExportData(in, csvPath, nil)
	if err != nil {
		t.Fatalf("ExportData: %v", err)
	}
	if outputPath != filepath.Join(dir, "drop_processed.xlsx") {
		t.Errorf("outputPath = %q", outputPath)
	}

	f, err := excelize.OpenFile(outputPath)
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{sheetData, sheetStats} {
		if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
			t.Errorf("sheet %q missing", sheet)
		}
	}
	got, err := f.GetCellValue(sheetData, "A1")
	if err != nil || got != "Time (s)" {
		t.Errorf("A1 = %q, %v; want Time (s)", got, err)
	}
	// Four data rows: header plus three samples.
	rows, err := f.GetRows(sheetData)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("data rows = %d, want 4", len(rows))
	}
}

func TestExportGQualityAppendsSheet(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "drop.csv")

	rows := []analysis.GQualityRow{
		{WindowSize: 0.1, TimeIC: f64(0.2), MeanIC: f64(0.01), StdIC: f64(0.001)},
		{WindowSize: 0.2, TimeIC: f64(0.2), MeanIC: f64(0.012), StdIC: f64(0.0012), TimeDS: f64(0.3), MeanDS: f64(0.02), StdDS: f64(0.002)},
	}

	outputPath, err := ExportGQuality(rows, csvPath)
	if err != nil {
		t.Fatalf("ExportGQuality: %v", err)
	}

	f, err := excelize.OpenFile(outputPath)
	if err != nil {
		t.Fatalf("opening workbook: %v", err)
	}
	defer f.Close()

	got, err := f.GetCellValue(sheetGQuality, "A1")
	if err != nil || got != "Window Size (s)" {
		t.Errorf("A1 = %q, %v", got, err)
	}
	// Nil drag fields of the first row leave the cells empty.
	if got, _ := f.GetCellValue(sheetGQuality, "E2"); got != "" {
		t.Errorf("E2 = %q, want empty", got)
	}
	if got, _ := f.GetCellValue(sheetGQuality, "A3"); got != "0.2" {
		t.Errorf("A3 = %q, want 0.2", got)
	}
}
