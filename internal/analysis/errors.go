package analysis

// ProcessingError marks a semantically invalid state reachable only through
// bad configuration or pathological data (both sensors disabled, empty time
// column, inconsistent series lengths). It is surfaced, never retried.
type ProcessingError struct {
	Message string
	Details string
}

func (e *ProcessingError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}
