package model

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnknownStrategy indicates a segmentation strategy name that is not recognised.
	ErrUnknownStrategy = errors.New("unknown segmentation strategy")

	// ErrEmptySource indicates a document source that resolved to nothing.
	ErrEmptySource = errors.New("empty document source")

	// ErrRunInProgress is returned when a run is started while another is active.
	ErrRunInProgress = errors.New("a check run is already in progress")

	// ErrBodyTooLarge indicates a response or input larger than http.max_body_bytes.
	ErrBodyTooLarge = errors.New("body exceeds size limit")

	// ErrNoActiveRun indicates there is no run to inspect or cancel.
	ErrNoActiveRun = errors.New("no active check run")

	// Oracle errors.

	// ErrProviderUnavailable covers transport failures, timeouts and non-2xx responses.
	ErrProviderUnavailable = errors.New("search provider unavailable")

	// ErrUnrecognizedResponse indicates a response the marker matcher cannot classify.
	ErrUnrecognizedResponse = errors.New("unrecognized search provider response")

	// ErrProviderDisallowed indicates robots.txt forbids querying the provider.
	ErrProviderDisallowed = errors.New("search provider disallows automated queries")
)

// StatusError reports a non-2xx response from the search provider
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.StatusCode, http.StatusText(e.StatusCode))
}

// UnitError ties a run-terminating error to the unit being checked
type UnitError struct {
	Unit Unit
	Err  error
}

func (e *UnitError) Error() string {
	text := []rune(e.Unit.Text)
	if len(text) > 60 {
		text = append(text[:57], []rune("...")...)
	}
	return fmt.Sprintf("unit %d (%q): %v", e.Unit.Index, string(text), e.Err)
}

func (e *UnitError) Unwrap() error {
	return e.Err
}
