package report

import (
	"bytes"
	"testing"

	"github.com/user/aat_analyzer_go/internal/analysis"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func TestPlotGravityLevelRendersPNG(t *testing.T) {
	inner := analysis.SensorSeries{
		Time:  []float64{0, 0.1, 0.2},
		Value: []float64{0.01, 0.02, 0.03},
	}
	drag := analysis.SensorSeries{
		Time:  []float64{0, 0.1, 0.2},
		Value: []float64{0.02, 0.03, 0.04},
	}

	png, err := PlotGravityLevel(inner, drag, "Gravity Level")
	if err != nil {
		t.Fatalf("PlotGravityLevel: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("output is not a PNG")
	}
}

func TestPlotGravityLevelNoData(t *testing.T) {
	if _, err := PlotGravityLevel(analysis.SensorSeries{}, analysis.SensorSeries{}, "empty"); err == nil {
		t.Error("error is nil, want no-data error")
	}
}

func TestPlotGQualityRendersPNG(t *testing.T) {
	rows := []analysis.GQualityRow{
		{WindowSize: 0.1, StdIC: f64(0.001)},
		{WindowSize: 0.2, StdIC: f64(0.0012), StdDS: f64(0.002)},
	}

	png, err := PlotGQuality(rows, "G-quality")
	if err != nil {
		t.Fatalf("PlotGQuality: %v", err)
	}
	if !bytes.HasPrefix(png, pngMagic) {
		t.Error("output is not a PNG")
	}
}

func TestPlotGQualityNoRows(t *testing.T) {
	if _, err := PlotGQuality(nil, "empty"); err == nil {
		t.Error("error is nil, want no-rows error")
	}
}

func TestPlotGQualityRowsWithoutResults(t *testing.T) {
	rows := []analysis.GQualityRow{{WindowSize: 0.1}}
	if _, err := PlotGQuality(rows, "empty"); err == nil {
		t.Error("error is nil, want no-results error")
	}
}
