package analysis

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/aat_analyzer_go/internal/config"
	"github.com/user/aat_analyzer_go/internal/parser"
)

const sampleCSV = "time_s,acc_ic,acc_ds\n" +
	"0.0,0.0,0.0\n" +
	"0.1,0.0,0.0\n" +
	"0.2,0.98,0.98\n" +
	"0.3,0.98,0.98\n" +
	"0.4,2.0,1.5\n" +
	"0.5,2.0,1.5\n"

func sampleConfig() config.Config {
	return config.Config{
		TimeColumn:                     "time_s",
		AccelerationColumnInnerCapsule: "acc_ic",
		AccelerationColumnDragShield:   "acc_ds",
		SamplingRate:                   10,
		GravityConstant:                9.8,
		AccelerationThreshold:          1.0,
		EndGravityLevel:                0.15,
		MinSecondsAfterStart:           0.2,
		WindowSize:                     0.2,
		GQualityStart:                  0.1,
		GQualityEnd:                    0.3,
		GQualityStep:                   0.1,
		UseInnerAcceleration:           true,
		UseDragAcceleration:            true,
	}
}

func loadDataset(t *testing.T, csv string) *parser.Dataset {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatalf("writing data file: %v", err)
	}
	ds, err := parser.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return ds
}

func approx(a, b float64) bool { return math.Abs(a-b) <= 1e-9 }

func TestLoadAndProcessConvertsAndSynchronizes(t *testing.T) {
	ds := loadDataset(t, sampleCSV)

	res, err := LoadAndProcess(ds, sampleConfig(), nil)
	if err != nil {
		t.Fatalf("LoadAndProcess: %v", err)
	}

	if res.InnerSync.Provenance != SyncFound || res.InnerSync.Index != 0 {
		t.Errorf("inner sync = %+v, want found at index 0", res.InnerSync)
	}
	if res.DragSync.Provenance != SyncFound || res.DragSync.Index != 0 {
		t.Errorf("drag sync = %+v, want found at index 0", res.DragSync)
	}
	if !approx(res.Inner.Time[0], 0) {
		t.Errorf("adjusted time[0] = %v, want 0", res.Inner.Time[0])
	}
	if !approx(res.Inner.Value[4], 2.0/9.8) {
		t.Errorf("inner gravity[4] = %v, want %v", res.Inner.Value[4], 2.0/9.8)
	}
	if !approx(res.Drag.Value[4], 1.5/9.8) {
		t.Errorf("drag gravity[4] = %v, want %v", res.Drag.Value[4], 1.5/9.8)
	}
}

func TestLoadAndProcessMissingColumn(t *testing.T) {
	ds := loadDataset(t, sampleCSV)
	cfg := sampleConfig()
	cfg.TimeColumn = "does_not_exist"

	_, err := LoadAndProcess(ds, cfg, nil)
	var colErr *parser.ColumnNotFoundError
	if !errors.As(err, &colErr) {
		t.Fatalf("error = %v, want *parser.ColumnNotFoundError", err)
	}
	if len(colErr.Missing) != 1 || colErr.Missing[0] != "does_not_exist" {
		t.Errorf("Missing = %v", colErr.Missing)
	}
	if len(colErr.Available) != 3 {
		t.Errorf("Available = %v, want the three data columns", colErr.Available)
	}
}

func TestLoadAndProcessInvertsInnerAcceleration(t *testing.T) {
	ds := loadDataset(t, sampleCSV)
	cfg := sampleConfig()
	cfg.InvertInnerAcceleration = true

	res, err := LoadAndProcess(ds, cfg, nil)
	if err != nil {
		t.Fatalf("LoadAndProcess: %v", err)
	}
	if !approx(res.Inner.Value[4], -2.0/9.8) {
		t.Errorf("inverted inner gravity[4] = %v, want %v", res.Inner.Value[4], -2.0/9.8)
	}
	// Drag shield is untouched by the inner inversion.
	if !approx(res.Drag.Value[4], 1.5/9.8) {
		t.Errorf("drag gravity[4] = %v, want %v", res.Drag.Value[4], 1.5/9.8)
	}
}

func TestLoadAndProcessNoSyncPointDefaults(t *testing.T) {
	csv := "time_s,acc_ic,acc_ds\n1.0,5.0,5.0\n1.1,5.0,5.0\n1.2,5.0,5.0\n"
	ds := loadDataset(t, csv)

	res, err := LoadAndProcess(ds, sampleConfig(), nil)
	if err != nil {
		t.Fatalf("LoadAndProcess: %v", err)
	}
	if res.InnerSync.Provenance != SyncDefaulted || res.InnerSync.Index != 0 {
		t.Errorf("inner sync = %+v, want defaulted at index 0", res.InnerSync)
	}
	if res.DragSync.Provenance != SyncDefaulted || res.DragSync.Index != 0 {
		t.Errorf("drag sync = %+v, want defaulted at index 0", res.DragSync)
	}
	// Time is rebased against the fallback index.
	if !approx(res.Inner.Time[0], 0) || !approx(res.Inner.Time[2], 0.2) {
		t.Errorf("adjusted time = %v", res.Inner.Time)
	}
}

func TestLoadAndProcessInnerBorrowsDragSync(t *testing.T) {
	csv := "time_s,acc_ic,acc_ds\n" +
		"0.0,5.0,5.0\n" +
		"0.1,5.0,5.0\n" +
		"0.2,5.0,0.5\n" +
		"0.3,5.0,0.5\n"
	ds := loadDataset(t, csv)

	res, err := LoadAndProcess(ds, sampleConfig(), nil)
	if err != nil {
		t.Fatalf("LoadAndProcess: %v", err)
	}
	if res.DragSync.Provenance != SyncFound || res.DragSync.Index != 2 {
		t.Errorf("drag sync = %+v, want found at index 2", res.DragSync)
	}
	if res.InnerSync.Provenance != SyncBorrowed || res.InnerSync.Index != 2 {
		t.Errorf("inner sync = %+v, want borrowed index 2", res.InnerSync)
	}
	if !approx(res.Inner.Time[2], 0) {
		t.Errorf("inner time at sync index = %v, want 0", res.Inner.Time[2])
	}
}

func TestLoadAndProcessInnerOnly(t *testing.T) {
	csv := "time_s,acc_ic\n0.0,0.0\n0.1,0.5\n"
	ds := loadDataset(t, csv)
	cfg := sampleConfig()
	cfg.UseDragAcceleration = false

	res, err := LoadAndProcess(ds, cfg, nil)
	if err != nil {
		t.Fatalf("LoadAndProcess: %v", err)
	}
	if res.Inner.Empty() {
		t.Error("inner series should not be empty")
	}
	if !res.Drag.Empty() {
		t.Error("drag series should be empty when the sensor is disabled")
	}
}

func TestLoadAndProcessDragOnly(t *testing.T) {
	csv := "time_s,acc_ds\n0.0,0.0\n0.1,0.5\n"
	ds := loadDataset(t, csv)
	cfg := sampleConfig()
	cfg.UseInnerAcceleration = false

	res, err := LoadAndProcess(ds, cfg, nil)
	if err != nil {
		t.Fatalf("LoadAndProcess: %v", err)
	}
	if !res.Inner.Empty() {
		t.Error("inner series should be empty when the sensor is disabled")
	}
	if res.Drag.Empty() {
		t.Error("drag series should not be empty")
	}
}

func TestLoadAndProcessBothDisabled(t *testing.T) {
	ds := loadDataset(t, sampleCSV)
	cfg := sampleConfig()
	cfg.UseInnerAcceleration = false
	cfg.UseDragAcceleration = false

	_, err := LoadAndProcess(ds, cfg, nil)
	var procErr *ProcessingError
	if !errors.As(err, &procErr) {
		t.Fatalf("error = %v, want *ProcessingError", err)
	}
}

func TestLoadAndProcessZeroGravityConstant(t *testing.T) {
	ds := loadDataset(t, sampleCSV)
	cfg := sampleConfig()
	cfg.GravityConstant = 0

	_, err := LoadAndProcess(ds, cfg, nil)
	var procErr *ProcessingError
	if !errors.As(err, &procErr) {
		t.Fatalf("error = %v, want *ProcessingError", err)
	}
}
