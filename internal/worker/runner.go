package worker

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ppiankov/originality/internal/model"
)

// DefaultYield is the pause after each unit that keeps the host responsive
const DefaultYield = 10 * time.Millisecond

// Oracle decides whether a unit's text already exists elsewhere
type Oracle interface {
	Check(ctx context.Context, text string) (bool, error)
}

// Runner checks units one at a time on a background goroutine. Only one run may be
// active per Runner.
type Runner struct {
	oracle Oracle
	yield  time.Duration
	log    io.Writer
	newID  func() string

	mu     sync.Mutex
	active *Run
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithYield sets the pause after each unit. Zero disables it.
func WithYield(d time.Duration) RunnerOption {
	return func(r *Runner) {
		if d >= 0 {
			r.yield = d
		}
	}
}

// WithLog sends per-unit diagnostics to w
func WithLog(w io.Writer) RunnerOption {
	return func(r *Runner) {
		if w != nil {
			r.log = w
		}
	}
}

// WithIDFunc overrides run id generation
func WithIDFunc(fn func() string) RunnerOption {
	return func(r *Runner) {
		if fn != nil {
			r.newID = fn
		}
	}
}

// NewRunner creates a runner backed by the given oracle
func NewRunner(oracle Oracle, opts ...RunnerOption) *Runner {
	r := &Runner{
		oracle: oracle,
		yield:  DefaultYield,
		log:    io.Discard,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run is a handle on a started check
type Run struct {
	ID    string
	Total int

	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	last    model.ProgressEvent
	hasLast bool
	result  model.CompletionEvent
}

// Cancel requests cancellation. It takes effect at the next unit boundary.
func (r *Run) Cancel() {
	r.cancel()
}

// Done is closed after the completion event has been delivered
func (r *Run) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the run finishes and returns its completion event
func (r *Run) Wait() model.CompletionEvent {
	<-r.done
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

// Last returns the most recent progress event, if any
func (r *Run) Last() (model.ProgressEvent, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.hasLast
}

// Active returns the run in progress, or nil when idle
func (r *Runner) Active() *Run {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Start begins checking units in the background. It returns model.ErrRunInProgress
// while another run is active. A nil sink discards events.
func (r *Runner) Start(ctx context.Context, units []model.Unit, sink Sink) (*Run, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil {
		return nil, model.ErrRunInProgress
	}
	if sink == nil {
		sink = SinkFuncs{}
	}

	runCtx, cancel := context.WithCancel(ctx)
	run := &Run{
		ID:     r.newID(),
		Total:  len(units),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	r.active = run

	owned := make([]model.Unit, len(units))
	copy(owned, units)

	go r.execute(runCtx, run, owned, sink)

	return run, nil
}

// execute owns the run state; nothing else touches the tallies
func (r *Runner) execute(ctx context.Context, run *Run, units []model.Unit, sink Sink) {
	defer run.cancel()

	start := time.Now()
	total := len(units)
	var plagiarised, original int

	result := model.CompletionEvent{
		RunID:   run.ID,
		Outcome: model.OutcomeCompleted,
		Total:   total,
	}

	for i, unit := range units {
		if ctx.Err() != nil {
			result.Outcome = model.OutcomeCancelled
			break
		}

		// An in-flight check always finishes; cancellation waits for the boundary.
		verdict, err := r.oracle.Check(context.WithoutCancel(ctx), unit.Text)
		if err != nil {
			failed := unit
			result.Outcome = model.OutcomeFailed
			result.FailedUnit = &failed
			result.Err = &model.UnitError{Unit: unit, Err: err}
			result.Error = result.Err.Error()
			_, _ = fmt.Fprintf(r.log, "run %s: unit %d failed: %v\n", run.ID, unit.Index, err)
			break
		}

		if verdict {
			plagiarised++
		} else {
			original++
		}

		ev := model.ProgressEvent{
			RunID:       run.ID,
			Unit:        unit,
			Verdict:     model.Verdict(verdict),
			Plagiarised: plagiarised,
			Original:    original,
			Processed:   plagiarised + original,
			Total:       total,
		}
		_, _ = fmt.Fprintf(r.log, "run %s: unit %d/%d %s\n", run.ID, ev.Processed, total, ev.Verdict)

		run.mu.Lock()
		run.last = ev
		run.hasLast = true
		run.mu.Unlock()

		sink.OnProgress(ev)

		if i < total-1 {
			r.pause(ctx)
		}
	}

	result.Plagiarised = plagiarised
	result.Original = original
	result.Processed = plagiarised + original
	result.CompletedFully = result.Outcome == model.OutcomeCompleted
	result.Originality = model.Percentage(original, total)
	result.Elapsed = time.Since(start)

	run.mu.Lock()
	run.result = result
	run.mu.Unlock()

	r.mu.Lock()
	r.active = nil
	r.mu.Unlock()

	sink.OnComplete(result)
	close(run.done)
}

// pause yields for the configured duration or until cancellation
func (r *Runner) pause(ctx context.Context) {
	if r.yield <= 0 {
		return
	}
	t := time.NewTimer(r.yield)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
}
