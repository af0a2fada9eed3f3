package analysis

// SensorSeries is an index-aligned (time, value) pair for one accelerometer
// channel at one processing stage. The empty series is a first-class state:
// it means the sensor is disabled or its column is absent, and every
// downstream stage treats it as a normal branch rather than an error.
type SensorSeries struct {
	Time  []float64 `json:"time"`
	Value []float64 `json:"value"`
}

// Empty reports whether the series carries no samples.
func (s SensorSeries) Empty() bool { return len(s.Value) == 0 }

// Len returns the number of samples.
func (s SensorSeries) Len() int { return len(s.Value) }

// SyncProvenance records how a sensor's synchronization index was obtained.
type SyncProvenance int

const (
	// SyncFound: the sensor's own acceleration magnitude dropped below the
	// threshold.
	SyncFound SyncProvenance = iota
	// SyncBorrowed: no own crossing; the index was borrowed from the other
	// sensor.
	SyncBorrowed
	// SyncDefaulted: no crossing anywhere; index 0 was substituted.
	SyncDefaulted
)

func (p SyncProvenance) String() string {
	switch p {
	case SyncFound:
		return "found"
	case SyncBorrowed:
		return "borrowed"
	default:
		return "defaulted"
	}
}

// SyncResult is the synchronization point of one sensor in its raw series.
type SyncResult struct {
	Index      int            `json:"index"`
	Provenance SyncProvenance `json:"provenance"`
}

// ProcessResult holds the synchronized, gravity-converted series of both
// sensors. A disabled sensor yields an empty SensorSeries.
type ProcessResult struct {
	Inner     SensorSeries `json:"inner"`
	Drag      SensorSeries `json:"drag"`
	InnerSync SyncResult   `json:"inner_sync"`
	DragSync  SyncResult   `json:"drag_sync"`
}

// FilterResult holds the trimmed series of both sensors plus the combined
// end index (the later of the two sensors' raw end indices, -1 if neither
// sensor produced one). The combined index is reporting context only; it is
// never used for slicing.
type FilterResult struct {
	Inner    SensorSeries `json:"inner"`
	Drag     SensorSeries `json:"drag"`
	EndIndex int          `json:"end_index"`
}

// StatisticsResult describes the minimum-standard-deviation window of a
// series: the mean of absolute values inside the window, the window's start
// time and the (population) standard deviation. A nil *StatisticsResult is
// the insufficient-data signal.
type StatisticsResult struct {
	MeanAbs   float64 `json:"mean_abs"`
	StartTime float64 `json:"start_time"`
	StdDev    float64 `json:"std_dev"`
}

// RangeStatistics summarizes an arbitrary user-selected sub-interval. All
// value fields are nil and Count is 0 for an empty selection.
type RangeStatistics struct {
	Mean    *float64 `json:"mean"`
	AbsMean *float64 `json:"abs_mean"`
	StdDev  *float64 `json:"std"`
	Min     *float64 `json:"min"`
	Max     *float64 `json:"max"`
	Range   *float64 `json:"range"`
	Count   int      `json:"count"`
}

// GQualityRow is one sweep result: the minimum-variance statistics of both
// sensors for a single window size. A sensor that lacks enough samples for
// the window size has nil fields; a row is only emitted when at least one
// sensor produced a result.
type GQualityRow struct {
	WindowSize float64  `json:"window_size"`
	TimeIC     *float64 `json:"time_ic"`
	MeanIC     *float64 `json:"mean_ic"`
	StdIC      *float64 `json:"std_ic"`
	TimeDS     *float64 `json:"time_ds"`
	MeanDS     *float64 `json:"mean_ds"`
	StdDS      *float64 `json:"std_ds"`
}

// Fallback defaults substituted when a detection step finds no candidate.
// Keeping them named in one place makes every degraded path enumerable:
//
//	drag sync missing   -> index fallbackIndex
//	inner sync missing  -> borrow drag's index, else fallbackIndex
//	start time >= 0 missing -> index fallbackIndex
//	end threshold never crossed -> the sensor's last index
const fallbackIndex = 0

func floatPtr(v float64) *float64 { return &v }
