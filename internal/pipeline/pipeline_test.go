package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/originality/internal/model"
	"github.com/ppiankov/originality/internal/worker"
)

const twoSentences = "The quick brown fox jumps over the lazy dog. I wrote this sentence myself just now."

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.Runner.Yield = 0
	return cfg
}

type fakeOracle struct {
	calls atomic.Int32
	fn    func(text string) (bool, error)
}

func (f *fakeOracle) Check(ctx context.Context, text string) (bool, error) {
	f.calls.Add(1)
	return f.fn(text)
}

// knownPhrases treats anything mentioning the fox as already published
func knownPhrases() *fakeOracle {
	return &fakeOracle{fn: func(text string) (bool, error) {
		return strings.Contains(text, "fox"), nil
	}}
}

func newTestPipeline(t *testing.T, cfg *model.Config, opts ...Option) *Pipeline {
	t.Helper()
	p, err := NewPipeline(cfg, nil, opts...)
	require.NoError(t, err)
	return p
}

func TestPipeline_Check(t *testing.T) {
	p := newTestPipeline(t, testConfig(), WithOracle(knownPhrases()))

	report, err := p.Check(context.Background(), twoSentences, model.StrategyFullSentence, nil)
	require.NoError(t, err)

	require.Len(t, report.Units, 2)
	assert.Equal(t, model.Plagiarised, report.Units[0].Verdict)
	assert.Contains(t, report.Units[0].SearchURL, "bing.com/search")
	assert.Equal(t, model.Original, report.Units[1].Verdict)
	assert.Empty(t, report.Units[1].SearchURL)

	assert.Equal(t, model.OutcomeCompleted, report.Summary.Outcome)
	assert.Equal(t, 2, report.Summary.Total)
	assert.InDelta(t, 50.0, report.Summary.Originality, 1e-9)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, model.StrategyFullSentence, report.Strategy)
}

func TestPipeline_CheckEmptyDocument(t *testing.T) {
	o := knownPhrases()
	p := newTestPipeline(t, testConfig(), WithOracle(o))

	report, err := p.Check(context.Background(), "   ", model.StrategyFixedWindow, nil)
	require.NoError(t, err)

	assert.NotNil(t, report.Units)
	assert.Empty(t, report.Units)
	assert.Equal(t, model.OutcomeCompleted, report.Summary.Outcome)
	assert.Equal(t, 0.0, report.Summary.Originality)
	assert.Equal(t, int32(0), o.calls.Load())
}

func TestPipeline_CheckFailed(t *testing.T) {
	o := &fakeOracle{fn: func(text string) (bool, error) {
		if strings.Contains(text, "myself") {
			return false, model.ErrUnrecognizedResponse
		}
		return true, nil
	}}
	p := newTestPipeline(t, testConfig(), WithOracle(o))

	report, err := p.Check(context.Background(), twoSentences, model.StrategyFullSentence, nil)
	require.Error(t, err)

	var unitErr *model.UnitError
	require.ErrorAs(t, err, &unitErr)
	assert.Equal(t, 1, unitErr.Unit.Index)
	assert.ErrorIs(t, err, model.ErrUnrecognizedResponse)

	require.NotNil(t, report)
	assert.Len(t, report.Units, 1)
	assert.Equal(t, model.OutcomeFailed, report.Summary.Outcome)
	assert.NotEmpty(t, report.Summary.Error)
}

func TestPipeline_CacheDeduplicates(t *testing.T) {
	o := knownPhrases()
	p := newTestPipeline(t, testConfig(), WithOracle(o))

	doc := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 3)
	report, err := p.Check(context.Background(), doc, model.StrategyFullSentence, nil)
	require.NoError(t, err)

	assert.Len(t, report.Units, 3)
	assert.Equal(t, int32(1), o.calls.Load())

	hits, misses, enabled := p.CacheStats()
	assert.True(t, enabled)
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestPipeline_NoCache(t *testing.T) {
	cfg := testConfig()
	cfg.Cache.Enabled = false
	o := knownPhrases()
	p := newTestPipeline(t, cfg, WithOracle(o))

	doc := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 3)
	_, err := p.Check(context.Background(), doc, model.StrategyFullSentence, nil)
	require.NoError(t, err)

	assert.Equal(t, int32(3), o.calls.Load())
	_, _, enabled := p.CacheStats()
	assert.False(t, enabled)
}

func TestPipeline_StartWhileActive(t *testing.T) {
	release := make(chan struct{})
	o := &fakeOracle{fn: func(text string) (bool, error) {
		<-release
		return false, nil
	}}
	p := newTestPipeline(t, testConfig(), WithOracle(o))

	run, err := p.Start(context.Background(), twoSentences, model.StrategyFullSentence, nil)
	require.NoError(t, err)
	assert.Same(t, run, p.Active())

	_, err = p.Check(context.Background(), twoSentences, model.StrategyFullSentence, nil)
	assert.ErrorIs(t, err, model.ErrRunInProgress)

	close(release)
	run.Wait()
	assert.Nil(t, p.Active())
}

func TestPipeline_SinkReceivesEvents(t *testing.T) {
	p := newTestPipeline(t, testConfig(), WithOracle(knownPhrases()))
	rec := &worker.Recorder{}

	_, err := p.Check(context.Background(), twoSentences, model.StrategyFullSentence, rec)
	require.NoError(t, err)

	assert.Len(t, rec.Progress(), 2)
	assert.Len(t, rec.Completions(), 1)
}

func TestPipeline_Segment(t *testing.T) {
	cfg := testConfig()
	p := newTestPipeline(t, cfg, WithOracle(knownPhrases()))

	units, err := p.Segment(twoSentences)
	require.NoError(t, err)
	assert.Len(t, units, 2)

	units, err = p.SegmentWith("one two three four five six seven eight nine ten eleven", model.StrategyFixedWindow)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "eleven", units[1].Text)

	_, err = p.SegmentWith("text", model.Strategy("paragraph"))
	assert.ErrorIs(t, err, model.ErrUnknownStrategy)
}

func TestPipeline_LoadDocument(t *testing.T) {
	dir := t.TempDir()
	txt := filepath.Join(dir, "essay.txt")
	html := filepath.Join(dir, "essay.html")
	require.NoError(t, os.WriteFile(txt, []byte("plain <b>text</b>"), 0644))
	require.NoError(t, os.WriteFile(html, []byte("<html><body><p>Hello <b>there</b></p><script>x()</script></body></html>"), 0644))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, "<html><body><h1>Title</h1><style>p{}</style></body></html>")
		case "/raw":
			w.Header().Set("Content-Type", "text/plain")
			fmt.Fprint(w, "raw words")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	p := newTestPipeline(t, testConfig(), WithOracle(knownPhrases()), WithStdin(strings.NewReader("from stdin")))
	ctx := context.Background()

	doc, err := p.LoadDocument(ctx, "-")
	require.NoError(t, err)
	assert.Equal(t, "from stdin", doc)

	doc, err = p.LoadDocument(ctx, txt)
	require.NoError(t, err)
	assert.Equal(t, "plain <b>text</b>", doc)

	doc, err = p.LoadDocument(ctx, html)
	require.NoError(t, err)
	assert.Contains(t, doc, "Hello there")
	assert.NotContains(t, doc, "x()")

	doc, err = p.LoadDocument(ctx, srv.URL+"/page")
	require.NoError(t, err)
	assert.Contains(t, doc, "Title")
	assert.NotContains(t, doc, "p{}")

	doc, err = p.LoadDocument(ctx, srv.URL+"/raw")
	require.NoError(t, err)
	assert.Equal(t, "raw words", doc)

	_, err = p.LoadDocument(ctx, srv.URL+"/missing")
	var se *model.StatusError
	assert.True(t, errors.As(err, &se))

	_, err = p.LoadDocument(ctx, filepath.Join(dir, "nope.txt"))
	assert.Error(t, err)

	_, err = p.LoadDocument(ctx, " ")
	assert.ErrorIs(t, err, model.ErrEmptySource)
}

func TestPipeline_LoadDocumentStdinTooLarge(t *testing.T) {
	cfg := testConfig()
	cfg.HTTP.MaxBodyBytes = 16
	p := newTestPipeline(t, cfg, WithOracle(knownPhrases()), WithStdin(strings.NewReader(strings.Repeat("word ", 10))))

	_, err := p.LoadDocument(context.Background(), "-")
	assert.ErrorIs(t, err, model.ErrBodyTooLarge)
}

func TestPipeline_CheckSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(twoSentences), 0644))

	p := newTestPipeline(t, testConfig(), WithOracle(knownPhrases()))
	report, err := p.CheckSource(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, report.Source)
	assert.Len(t, report.Units, 2)
}

func TestPipeline_InvalidProvider(t *testing.T) {
	cfg := testConfig()
	cfg.Provider.Endpoint = "://broken"
	_, err := NewPipeline(cfg, nil)
	assert.Error(t, err)
}

func TestRenderer(t *testing.T) {
	p := newTestPipeline(t, testConfig(), WithOracle(knownPhrases()))
	report, err := p.Check(context.Background(), twoSentences, model.StrategyFullSentence, nil)
	require.NoError(t, err)
	report.Source = "essay.txt"

	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "r.json")
	mdPath := filepath.Join(dir, "r.md")
	require.NoError(t, p.RenderReport(report, jsonPath, mdPath, false))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)
	var decoded model.Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, report.RunID, decoded.RunID)
	assert.Len(t, decoded.Units, 2)

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Contains(t, string(md), "The document has 50.00% original content")
	assert.Contains(t, string(md), "essay.txt")
	assert.Contains(t, string(md), "[plagiarised](")
	assert.Contains(t, string(md), "not a finding of authorship")

	noFooter := NewRenderer(false).Markdown(report)
	assert.NotContains(t, noFooter, "not a finding of authorship")
}

func TestCompletionMessage(t *testing.T) {
	assert.Equal(t, "The document has 75.00% original content",
		CompletionMessage(model.Summary{Outcome: model.OutcomeCompleted, Originality: 75}))
	assert.Equal(t, "Check cancelled after 2 of 8 units: 25.00% original so far",
		CompletionMessage(model.Summary{Outcome: model.OutcomeCancelled, Processed: 2, Total: 8, Originality: 25}))
}

func TestReportBuilder_Timestamp(t *testing.T) {
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	b := NewReportBuilder("x", model.StrategyFixedWindow, nil, func() time.Time { return fixed })
	b.OnProgress(model.ProgressEvent{RunID: "r", Unit: model.Unit{Text: "t"}, Verdict: model.Plagiarised})

	r := b.Report()
	assert.Equal(t, fixed, r.CheckedAt)
	assert.Empty(t, r.Units[0].SearchURL)
	assert.Equal(t, "r", r.RunID)
}
