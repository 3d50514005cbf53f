package worker

import (
	"sync"

	"github.com/ppiankov/originality/internal/model"
)

// Sink receives run events. Callbacks run on the run goroutine, in unit order,
// with the completion event last.
type Sink interface {
	OnProgress(ev model.ProgressEvent)
	OnComplete(ev model.CompletionEvent)
}

// SinkFuncs adapts plain functions to Sink; nil fields are skipped
type SinkFuncs struct {
	Progress func(model.ProgressEvent)
	Complete func(model.CompletionEvent)
}

func (s SinkFuncs) OnProgress(ev model.ProgressEvent) {
	if s.Progress != nil {
		s.Progress(ev)
	}
}

func (s SinkFuncs) OnComplete(ev model.CompletionEvent) {
	if s.Complete != nil {
		s.Complete(ev)
	}
}

type tee []Sink

// Tee fans events out to every non-nil sink in order
func Tee(sinks ...Sink) Sink {
	t := make(tee, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			t = append(t, s)
		}
	}
	return t
}

func (t tee) OnProgress(ev model.ProgressEvent) {
	for _, s := range t {
		s.OnProgress(ev)
	}
}

func (t tee) OnComplete(ev model.CompletionEvent) {
	for _, s := range t {
		s.OnComplete(ev)
	}
}

// Recorder keeps every event it receives. Safe for concurrent use.
type Recorder struct {
	mu          sync.Mutex
	progress    []model.ProgressEvent
	completions []model.CompletionEvent
}

func (r *Recorder) OnProgress(ev model.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress = append(r.progress, ev)
}

func (r *Recorder) OnComplete(ev model.CompletionEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completions = append(r.completions, ev)
}

// Progress returns a copy of the recorded progress events
func (r *Recorder) Progress() []model.ProgressEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.ProgressEvent, len(r.progress))
	copy(out, r.progress)
	return out
}

// Completions returns a copy of the recorded completion events
func (r *Recorder) Completions() []model.CompletionEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]model.CompletionEvent, len(r.completions))
	copy(out, r.completions)
	return out
}
