package model

// RunStatistics holds the monotonically incremented counters for one engine
// run. A fresh value is created at the start of each run and returned by
// value; there is no shared global accumulator.
type RunStatistics struct {
	Scanned         int `json:"scanned"`
	Classified      int `json:"classified"`
	Unknown         int `json:"unknown"`
	DuplicatesFound int `json:"duplicates_found"`
	Moved           int `json:"moved"`
	Skipped         int `json:"skipped"`
	Errors          int `json:"errors"`
}
