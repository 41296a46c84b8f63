package history

import "time"

// Record is one stored recognition outcome.
type Record struct {
	ID         string
	GrammarKey string
	Input      string
	Accepted   bool
	Tokens     int
	Steps      int
	Duration   time.Duration
	Error      string
	Timestamp  time.Time
}

// Summary aggregates the records of one grammar key.
type Summary struct {
	Total    int
	Accepted int
	Rejected int
	Failed   int
	AvgSteps float64
}
