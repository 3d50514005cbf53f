package model

import "fmt"

// Unit is one segmented piece of a document, the atomic thing checked against the oracle
type Unit struct {
	Index int    `json:"index"` // Position in the segmented sequence (0-based)
	Text  string `json:"text"`
}

// Verdict is the oracle's outcome for a unit
type Verdict bool

const (
	Original    Verdict = false // No matching text found elsewhere
	Plagiarised Verdict = true  // Matching text appears to exist elsewhere
)

func (v Verdict) String() string {
	if v {
		return "plagiarised"
	}
	return "original"
}

// Strategy selects how a document is segmented into units
type Strategy string

const (
	StrategyFullSentence Strategy = "sentence" // Split on sentence delimiters, filter short fragments
	StrategyFixedWindow  Strategy = "window"   // Fixed-size word windows, no filtering
)

// ParseStrategy converts a user-supplied name into a Strategy
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "sentence", "full-sentence", "full_sentence":
		return StrategyFullSentence, nil
	case "window", "fixed-window", "fixed_window":
		return StrategyFixedWindow, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// StrategyFromFlag maps the boolean full-sentence switch onto a Strategy
func StrategyFromFlag(fullSentence bool) Strategy {
	if fullSentence {
		return StrategyFullSentence
	}
	return StrategyFixedWindow
}
