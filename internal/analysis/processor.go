package analysis

import (
	"math"

	"github.com/user/aat_analyzer_go/internal/config"
	"github.com/user/aat_analyzer_go/internal/logutil"
	"github.com/user/aat_analyzer_go/internal/parser"
)

// LoadAndProcess synchronizes both accelerometer channels to their release
// events and converts them to gravity-level units.
//
// For each enabled sensor the sync point is the first sample where the
// acceleration magnitude drops below the configured threshold. The drag
// shield falls back to index 0 when it has no such point; the inner capsule
// first borrows the drag shield's index, then falls back to 0. Each sensor's
// time axis is re-based so its own sync sample sits at t=0, and values are
// divided by the gravity constant. Disabled sensors come back as empty
// series.
func LoadAndProcess(ds *parser.Dataset, cfg config.Config, logger logutil.Logger) (*ProcessResult, error) {
	if logger == nil {
		logger = logutil.Nop
	}

	useInner := cfg.UseInnerAcceleration
	useDrag := cfg.UseDragAcceleration
	if !useInner && !useDrag {
		return nil, &ProcessingError{Message: "both accelerometers disabled"}
	}
	if cfg.GravityConstant == 0 {
		return nil, &ProcessingError{Message: "gravity constant must be non-zero"}
	}

	required := []string{cfg.TimeColumn}
	if useInner {
		required = append(required, cfg.AccelerationColumnInnerCapsule)
	}
	if useDrag {
		required = append(required, cfg.AccelerationColumnDragShield)
	}
	var missing []string
	for _, name := range required {
		if !ds.Has(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, &parser.ColumnNotFoundError{
			Path:      ds.Path,
			Missing:   missing,
			Available: ds.ColumnNames(),
		}
	}

	time, _ := ds.Float(cfg.TimeColumn)
	if len(time) == 0 {
		return nil, &ProcessingError{Message: "time column is empty"}
	}

	threshold := cfg.AccelerationThreshold
	if threshold <= 0 {
		threshold = 1.0
	}

	var accInner, accDrag []float64
	if useInner {
		accInner, _ = ds.Float(cfg.AccelerationColumnInnerCapsule)
		if cfg.InvertInnerAcceleration {
			for i := range accInner {
				accInner[i] = -accInner[i]
			}
		}
	}
	if useDrag {
		accDrag, _ = ds.Float(cfg.AccelerationColumnDragShield)
	}

	result := &ProcessResult{}

	dragIdx, dragFound := 0, false
	if useDrag {
		dragIdx, dragFound = findSyncIndex(accDrag, threshold)
		if dragFound {
			result.DragSync = SyncResult{Index: dragIdx, Provenance: SyncFound}
		} else {
			dragIdx = fallbackIndex
			result.DragSync = SyncResult{Index: dragIdx, Provenance: SyncDefaulted}
			logger.Warnf("no sync point found for drag shield, defaulting to index %d", fallbackIndex)
		}
	}

	if useInner {
		innerIdx, innerFound := findSyncIndex(accInner, threshold)
		switch {
		case innerFound:
			result.InnerSync = SyncResult{Index: innerIdx, Provenance: SyncFound}
		case useDrag && dragFound:
			innerIdx = dragIdx
			result.InnerSync = SyncResult{Index: innerIdx, Provenance: SyncBorrowed}
			logger.Warnf("no sync point found for inner capsule, borrowing drag shield index %d", innerIdx)
		default:
			innerIdx = fallbackIndex
			result.InnerSync = SyncResult{Index: innerIdx, Provenance: SyncDefaulted}
			logger.Warnf("no sync point found for inner capsule, defaulting to index %d", fallbackIndex)
		}
		result.Inner = SensorSeries{
			Time:  rebaseTime(time, innerIdx),
			Value: toGravity(accInner, cfg.GravityConstant),
		}
	}

	if useDrag {
		result.Drag = SensorSeries{
			Time:  rebaseTime(time, dragIdx),
			Value: toGravity(accDrag, cfg.GravityConstant),
		}
	}

	if useInner && useDrag &&
		result.InnerSync.Provenance == SyncDefaulted && result.DragSync.Provenance == SyncDefaulted {
		logger.Warnf("neither sensor crossed the sync threshold %.3f; the recording may be unusable", threshold)
	}

	return result, nil
}

// findSyncIndex returns the first index where |acceleration| < threshold.
func findSyncIndex(acc []float64, threshold float64) (int, bool) {
	for i, v := range acc {
		if math.Abs(v) < threshold {
			return i, true
		}
	}
	return 0, false
}

func rebaseTime(time []float64, syncIdx int) []float64 {
	base := time[syncIdx]
	out := make([]float64, len(time))
	for i, t := range time {
		out[i] = t - base
	}
	return out
}

func toGravity(acc []float64, gravityConstant float64) []float64 {
	out := make([]float64, len(acc))
	for i, a := range acc {
		out[i] = a / gravityConstant
	}
	return out
}
