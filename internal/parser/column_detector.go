package parser

import "strings"

// Keyword heuristics for proposing time and acceleration columns. Substring
// keywords match anywhere in the lowercased name; token keywords only match
// a whole underscore/space/punctuation-separated token, so "time_s" matches
// the "s" token but "acc_x" does not.
var (
	timeSubstrings  = []string{"time", "sec", "時間", "秒"}
	timeTokens      = []string{"t", "s"}
	accelSubstrings = []string{"acc", "accel", "acceleration", "gravity", "加速", "重力"}
	accelTokens     = []string{"g"}
)

// DetectColumns proposes candidate time and acceleration columns for a
// dataset whose configuration is ambiguous or missing. If keyword matching
// finds no time candidates, every numeric column not already claimed as an
// acceleration candidate becomes one, and vice versa. A column may appear in
// both lists.
func DetectColumns(ds *Dataset) (timeCandidates, accelCandidates []string) {
	names := ds.ColumnNames()

	for _, name := range names {
		if matchesKeywords(name, timeSubstrings, timeTokens) {
			timeCandidates = append(timeCandidates, name)
		}
		if matchesKeywords(name, accelSubstrings, accelTokens) {
			accelCandidates = append(accelCandidates, name)
		}
	}

	if len(timeCandidates) == 0 {
		claimed := toSet(accelCandidates)
		for _, name := range names {
			if ds.IsNumeric(name) && !claimed[name] {
				timeCandidates = append(timeCandidates, name)
			}
		}
	}
	if len(accelCandidates) == 0 {
		claimed := toSet(timeCandidates)
		for _, name := range names {
			if ds.IsNumeric(name) && !claimed[name] {
				accelCandidates = append(accelCandidates, name)
			}
		}
	}
	return timeCandidates, accelCandidates
}

func matchesKeywords(name string, substrings, tokens []string) bool {
	lower := strings.ToLower(name)
	for _, kw := range substrings {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	for _, tok := range splitTokens(lower) {
		for _, kw := range tokens {
			if tok == kw {
				return true
			}
		}
	}
	return false
}

func splitTokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

func toSet(names []string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
