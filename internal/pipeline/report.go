package pipeline

import (
	"sync"
	"time"

	"github.com/ppiankov/originality/internal/model"
)

// ReportBuilder is a sink that assembles a model.Report from run events
type ReportBuilder struct {
	mu        sync.Mutex
	report    model.Report
	searchURL func(string) string
}

// NewReportBuilder creates a builder. searchURL, if set, fills UnitResult.SearchURL
// for plagiarised units.
func NewReportBuilder(source string, strategy model.Strategy, searchURL func(string) string, now func() time.Time) *ReportBuilder {
	if now == nil {
		now = time.Now
	}
	return &ReportBuilder{
		report: model.Report{
			Source:    source,
			Strategy:  strategy,
			CheckedAt: now().UTC(),
			Units:     []model.UnitResult{},
		},
		searchURL: searchURL,
	}
}

func (b *ReportBuilder) OnProgress(ev model.ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	res := model.UnitResult{Unit: ev.Unit, Verdict: ev.Verdict}
	if ev.Verdict == model.Plagiarised && b.searchURL != nil {
		res.SearchURL = b.searchURL(ev.Unit.Text)
	}
	b.report.RunID = ev.RunID
	b.report.Units = append(b.report.Units, res)
}

func (b *ReportBuilder) OnComplete(ev model.CompletionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.report.RunID = ev.RunID
	b.report.Summary = model.SummaryFromCompletion(ev)
}

// Report returns a copy of the report built so far
func (b *ReportBuilder) Report() *model.Report {
	b.mu.Lock()
	defer b.mu.Unlock()

	r := b.report
	r.Units = make([]model.UnitResult, len(b.report.Units))
	copy(r.Units, b.report.Units)
	return &r
}
