package analysis

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/user/aat_analyzer_go/internal/config"
	"github.com/user/aat_analyzer_go/internal/logutil"
)

// GQualitySweep repeats the minimum-variance window search across a range of
// window sizes, producing the quality-vs-window-size curve for each sensor
// independently. A sweep owns private copies of its inputs and never mutates
// them, so multiple sweeps may run concurrently on independent workers.
//
// The sweep is the one long-running operation of the pipeline: it supports a
// cooperative stop flag checked once per window size, and optional progress
// (0-100) and status-message callbacks. None of these are required for
// correct operation.
type GQualitySweep struct {
	time             []float64
	gravityInner     []float64
	gravityDrag      []float64
	adjustedTimeDrag []float64
	cfg              config.Config
	logger           logutil.Logger

	progress func(percent int)
	status   func(message string)
	stopped  atomic.Bool
}

// NewGQualitySweep builds a sweep over the filtered series. The drag shield
// is evaluated against its own adjusted time axis.
func NewGQualitySweep(filteredTime, gravityInner, gravityDrag, adjustedTimeDrag []float64, cfg config.Config, logger logutil.Logger) *GQualitySweep {
	if logger == nil {
		logger = logutil.Nop
	}
	return &GQualitySweep{
		time:             append([]float64(nil), filteredTime...),
		gravityInner:     append([]float64(nil), gravityInner...),
		gravityDrag:      append([]float64(nil), gravityDrag...),
		adjustedTimeDrag: append([]float64(nil), adjustedTimeDrag...),
		cfg:              cfg,
		logger:           logger,
	}
}

// OnProgress attaches a progress observer called once per window size with
// the completed fraction scaled to 0-100.
func (s *GQualitySweep) OnProgress(fn func(percent int)) { s.progress = fn }

// OnStatus attaches a human-readable status observer.
func (s *GQualitySweep) OnStatus(fn func(message string)) { s.status = fn }

// Stop requests cooperative cancellation. The current window size finishes;
// rows computed so far are still returned.
func (s *GQualitySweep) Stop() { s.stopped.Store(true) }

// Start runs the sweep on its own goroutine and delivers the rows on the
// returned channel. The caller is never blocked by the sweep itself.
func (s *GQualitySweep) Start() <-chan []GQualityRow {
	done := make(chan []GQualityRow, 1)
	go func() {
		done <- s.Run()
		close(done)
	}()
	return done
}

// Run executes the sweep inline and blocks until it finishes, is stopped, or
// runs out of usable window sizes. Rows come back in ascending window-size
// order. An unexpected panic mid-sweep is recovered and logged; the rows
// computed so far are still returned.
func (s *GQualitySweep) Run() (rows []GQualityRow) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Errorf("g-quality sweep aborted: %v (returning %d completed rows)", r, len(rows))
		}
	}()

	innerOK := len(s.gravityInner) > 0
	dragOK := len(s.gravityDrag) > 0
	if !innerOK && !dragOK {
		s.logger.Warnf("g-quality sweep skipped: both sensors are empty")
		return nil
	}

	windowSizes := s.windowSizes()
	if len(windowSizes) == 0 {
		s.logger.Warnf("g-quality sweep skipped: no window sizes generated")
		return nil
	}

	minSamples := int(windowSizes[0] * s.cfg.SamplingRate)
	if !(innerOK && len(s.gravityInner) >= minSamples) && !(dragOK && len(s.gravityDrag) >= minSamples) {
		s.logger.Warnf("g-quality sweep skipped: no sensor has %d samples for the smallest window size %.3f s", minSamples, windowSizes[0])
		return nil
	}

	for i, windowSize := range windowSizes {
		if s.stopped.Load() {
			s.logger.Infof("g-quality sweep stopped after %d of %d window sizes", i, len(windowSizes))
			break
		}
		s.reportStatus(windowSize)

		wcfg := s.cfg
		wcfg.WindowSize = windowSize

		innerRes := s.sensorStatistics(s.gravityInner, s.time, wcfg, "inner capsule")
		dragRes := s.sensorStatistics(s.gravityDrag, s.adjustedTimeDrag, wcfg, "drag shield")

		if innerRes != nil || dragRes != nil {
			row := GQualityRow{WindowSize: windowSize}
			if innerRes != nil {
				row.TimeIC = floatPtr(innerRes.StartTime)
				row.MeanIC = floatPtr(innerRes.MeanAbs)
				row.StdIC = floatPtr(innerRes.StdDev)
			}
			if dragRes != nil {
				row.TimeDS = floatPtr(dragRes.StartTime)
				row.MeanDS = floatPtr(dragRes.MeanAbs)
				row.StdDS = floatPtr(dragRes.StdDev)
			}
			rows = append(rows, row)
		}

		if s.progress != nil {
			s.progress((i + 1) * 100 / len(windowSizes))
		}
	}
	return rows
}

func (s *GQualitySweep) sensorStatistics(values, time []float64, cfg config.Config, name string) *StatisticsResult {
	if len(values) == 0 {
		return nil
	}
	res, err := CalculateStatistics(values, time, cfg)
	if err != nil {
		s.logger.Errorf("g-quality: %s statistics failed for window size %.3f s: %v", name, cfg.WindowSize, err)
		return nil
	}
	return res
}

func (s *GQualitySweep) reportStatus(windowSize float64) {
	if s.status != nil {
		s.status(fmt.Sprintf("window size %.3f s", windowSize))
	}
}

// windowSizes generates the arithmetic sequence from g_quality_start towards
// g_quality_end + g_quality_step (exclusive). The deliberate overshoot keeps
// the end value in the sequence even when it is not an exact step multiple;
// overshooting sizes are excluded later by the statistics engine's length
// check.
func (s *GQualitySweep) windowSizes() []float64 {
	start, end, step := s.cfg.GQualityStart, s.cfg.GQualityEnd, s.cfg.GQualityStep
	if step <= 0 || end < start {
		s.logger.Errorf("invalid g-quality range: start=%.3f end=%.3f step=%.3f", start, end, step)
		return nil
	}
	n := int(math.Ceil((end + step - start) / step * (1 - 1e-12)))
	sizes := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		sizes = append(sizes, start+float64(i)*step)
	}
	return sizes
}
