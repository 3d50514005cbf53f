package model

import "time"

// ProgressEvent is emitted once per processed unit, carrying the post-update tallies
type ProgressEvent struct {
	RunID       string  `json:"run_id"`
	Unit        Unit    `json:"unit"`
	Verdict     Verdict `json:"plagiarised"`
	Plagiarised int     `json:"plagiarised_count"`
	Original    int     `json:"original_count"`
	Processed   int     `json:"processed"`
	Total       int     `json:"total"`
}

// Originality returns the running originality percentage against the run total
func (e ProgressEvent) Originality() float64 {
	return Percentage(e.Original, e.Total)
}

// Outcome is the terminal state of a run
type Outcome string

const (
	OutcomeCompleted Outcome = "completed" // Every unit was checked
	OutcomeCancelled Outcome = "cancelled" // Cancellation observed at a unit boundary
	OutcomeFailed    Outcome = "failed"    // The oracle returned an error
)

// CompletionEvent is emitted exactly once per run, after the last ProgressEvent
type CompletionEvent struct {
	RunID          string        `json:"run_id"`
	Outcome        Outcome       `json:"outcome"`
	CompletedFully bool          `json:"completed_fully"`
	Processed      int           `json:"processed"`
	Total          int           `json:"total"`
	Plagiarised    int           `json:"plagiarised_count"`
	Original       int           `json:"original_count"`
	Originality    float64       `json:"originality"` // Original / Total * 100, Total fixed at run start
	FailedUnit     *Unit         `json:"failed_unit,omitempty"`
	Error          string        `json:"error,omitempty"`
	Elapsed        time.Duration `json:"elapsed_ns"`

	Err error `json:"-"`
}

// Percentage computes part/total*100, returning 0 for an empty total
func Percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}
