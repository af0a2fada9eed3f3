package analysis

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/user/aat_analyzer_go/internal/config"
)

// CalculateStatistics slides a fixed-duration window over the series and
// returns the statistics of the window with the lowest (population) standard
// deviation: the mean of absolute values inside it, its start time and the
// deviation itself. Iteration is in ascending index order and the first
// occurrence wins on ties.
//
// A nil result with a nil error is the insufficient-data signal: the series
// is shorter than floor(window_size * sampling_rate) samples. Mismatched
// values/time lengths are a precondition violation and return an error.
//
// The scan recomputes each window from scratch, O(n*w). Window and series
// lengths are bounded by experiment duration and sampling rate, so the
// simple form is preferred over an incremental variance update.
func CalculateStatistics(values, time []float64, cfg config.Config) (*StatisticsResult, error) {
	if len(values) != len(time) {
		return nil, fmt.Errorf("values and time have different lengths: %d != %d", len(values), len(time))
	}

	windowSamples := int(cfg.WindowSize * cfg.SamplingRate)
	if windowSamples < 1 {
		return nil, nil
	}
	if len(values) < windowSamples {
		return nil, nil
	}

	bestIdx := -1
	bestStd := math.Inf(1)
	for i := 0; i+windowSamples <= len(values); i++ {
		std := stat.PopStdDev(values[i:i+windowSamples], nil)
		if std < bestStd {
			bestStd = std
			bestIdx = i
		}
	}

	window := values[bestIdx : bestIdx+windowSamples]
	abs := make([]float64, len(window))
	for i, v := range window {
		abs[i] = math.Abs(v)
	}

	return &StatisticsResult{
		MeanAbs:   stat.Mean(abs, nil),
		StartTime: time[bestIdx],
		StdDev:    bestStd,
	}, nil
}

// CalculateRangeStatistics summarizes an arbitrary, typically user-selected
// sub-array. An empty selection yields Count 0 and nil fields, never an
// error.
func CalculateRangeStatistics(values []float64) RangeStatistics {
	if len(values) == 0 {
		return RangeStatistics{Count: 0}
	}

	abs := make([]float64, len(values))
	for i, v := range values {
		abs[i] = math.Abs(v)
	}
	minVal := floats.Min(values)
	maxVal := floats.Max(values)

	return RangeStatistics{
		Mean:    floatPtr(stat.Mean(values, nil)),
		AbsMean: floatPtr(stat.Mean(abs, nil)),
		StdDev:  floatPtr(stat.PopStdDev(values, nil)),
		Min:     floatPtr(minVal),
		Max:     floatPtr(maxVal),
		Range:   floatPtr(maxVal - minVal),
		Count:   len(values),
	}
}
