package analysis

import (
	"fmt"

	"github.com/user/aat_analyzer_go/internal/config"
	"github.com/user/aat_analyzer_go/internal/logutil"
)

// FilterData trims each sensor's series to the scientifically relevant
// window: from the first sample with time >= 0 up to the first sample, at
// least min_seconds_after_start into the window, whose gravity level reaches
// end_gravity_level. Each sensor is trimmed independently on its own time
// axis.
//
// The returned FilterResult is always usable: on an internal inconsistency
// (mismatched series lengths) the unfiltered inputs are returned together
// with a *ProcessingError describing the problem.
func FilterData(inner, drag SensorSeries, cfg config.Config, logger logutil.Logger) (FilterResult, error) {
	if logger == nil {
		logger = logutil.Nop
	}

	if err := checkAligned(inner, "inner capsule"); err != nil {
		return FilterResult{Inner: inner, Drag: drag, EndIndex: lastIndex(inner, drag)}, err
	}
	if err := checkAligned(drag, "drag shield"); err != nil {
		return FilterResult{Inner: inner, Drag: drag, EndIndex: lastIndex(inner, drag)}, err
	}

	filteredInner, endInner, innerOK := filterSensor(inner, cfg, logger, "inner capsule")
	filteredDrag, endDrag, dragOK := filterSensor(drag, cfg, logger, "drag shield")

	if !innerOK && !dragOK {
		logger.Warnf("insufficient data for filtering")
	}

	end := -1
	if innerOK {
		end = endInner
	}
	if dragOK && endDrag > end {
		end = endDrag
	}

	return FilterResult{Inner: filteredInner, Drag: filteredDrag, EndIndex: end}, nil
}

// filterSensor applies the start/min/end index policy to one sensor. The
// returned end index refers to the sensor's raw series; ok is false when the
// sensor has no data at all.
func filterSensor(s SensorSeries, cfg config.Config, logger logutil.Logger, name string) (SensorSeries, int, bool) {
	if s.Empty() {
		return SensorSeries{}, -1, false
	}

	start := -1
	for i, t := range s.Time {
		if t >= 0 {
			start = i
			break
		}
	}
	if start < 0 {
		start = fallbackIndex
		logger.Warnf("%s: no sample with time >= 0, defaulting start to index %d", name, fallbackIndex)
	}

	minIdx := start
	floor := s.Time[start] + cfg.MinSecondsAfterStart
	for i := start; i < len(s.Time); i++ {
		if s.Time[i] >= floor {
			minIdx = i
			break
		}
	}

	end := -1
	for i := minIdx; i < len(s.Value); i++ {
		if s.Value[i] >= cfg.EndGravityLevel {
			end = i
			break
		}
	}
	if end < 0 {
		end = len(s.Value) - 1
		logger.Warnf("%s: gravity level never reached %.3f, defaulting end to last index %d", name, cfg.EndGravityLevel, end)
	}

	if end < start {
		return SensorSeries{}, end, true
	}
	return SensorSeries{
		Time:  append([]float64(nil), s.Time[start:end+1]...),
		Value: append([]float64(nil), s.Value[start:end+1]...),
	}, end, true
}

func checkAligned(s SensorSeries, name string) error {
	if len(s.Time) != len(s.Value) {
		return &ProcessingError{
			Message: "filtering failed",
			Details: fmt.Sprintf("%s time/value length mismatch: %d != %d", name, len(s.Time), len(s.Value)),
		}
	}
	return nil
}

func lastIndex(inner, drag SensorSeries) int {
	end := -1
	if n := inner.Len(); n > 0 && n-1 > end {
		end = n - 1
	}
	if n := drag.Len(); n > 0 && n-1 > end {
		end = n - 1
	}
	return end
}
