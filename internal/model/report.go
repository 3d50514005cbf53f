package model

import "time"

// Report is the rendered outcome of one check run over one document
type Report struct {
	Source    string       `json:"source"`              // File path, URL or "-" for stdin
	RunID     string       `json:"run_id"`
	Strategy  Strategy     `json:"strategy"`
	CheckedAt time.Time    `json:"checked_at"`
	Units     []UnitResult `json:"units"`
	Summary   Summary      `json:"summary"`
}

// UnitResult is a checked unit and its verdict
type UnitResult struct {
	Unit      Unit    `json:"unit"`
	Verdict   Verdict `json:"plagiarised"`
	SearchURL string  `json:"search_url,omitempty"` // Link to re-run the query in a browser
}

// Summary condenses the completion event for reports
type Summary struct {
	Outcome        Outcome `json:"outcome"`
	CompletedFully bool    `json:"completed_fully"`
	Total          int     `json:"total"`
	Processed      int     `json:"processed"`
	Plagiarised    int     `json:"plagiarised"`
	Original       int     `json:"original"`
	Originality    float64 `json:"originality"`
	Error          string  `json:"error,omitempty"`
}

// SummaryFromCompletion builds a report summary from a completion event
func SummaryFromCompletion(ev CompletionEvent) Summary {
	return Summary{
		Outcome:        ev.Outcome,
		CompletedFully: ev.CompletedFully,
		Total:          ev.Total,
		Processed:      ev.Processed,
		Plagiarised:    ev.Plagiarised,
		Original:       ev.Original,
		Originality:    ev.Originality,
		Error:          ev.Error,
	}
}
