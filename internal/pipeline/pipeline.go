// Package pipeline wires document loading, segmentation, the originality oracle and
// the check runner into one entry point shared by the CLI, HTTP and MCP collaborators.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/originality/internal/cache"
	"github.com/ppiankov/originality/internal/extract"
	"github.com/ppiankov/originality/internal/model"
	"github.com/ppiankov/originality/internal/oracle"
	"github.com/ppiankov/originality/internal/segment"
	"github.com/ppiankov/originality/internal/util"
	"github.com/ppiankov/originality/internal/worker"
)

// Pipeline orchestrates a complete check
type Pipeline struct {
	config   *model.Config
	fetcher  *oracle.Fetcher
	search   *oracle.SearchOracle
	cached   *oracle.Cached
	oracle   worker.Oracle
	runner   *worker.Runner
	renderer *Renderer
	log      io.Writer
	stdin    io.Reader
	now      func() time.Time
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithOracle replaces the search provider, e.g. with a fake in tests
func WithOracle(o worker.Oracle) Option {
	return func(p *Pipeline) { p.oracle = o }
}

// WithStdin sets the reader used for the "-" source
func WithStdin(r io.Reader) Option {
	return func(p *Pipeline) { p.stdin = r }
}

// NewPipeline creates a new pipeline with the given configuration. Warnings and
// per-unit diagnostics go to log.
func NewPipeline(cfg *model.Config, log io.Writer, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		cfg = model.DefaultConfig()
	}
	if log == nil {
		log = io.Discard
	}

	p := &Pipeline{
		config:   cfg,
		fetcher:  oracle.NewFetcher(cfg.HTTP),
		renderer: NewRenderer(cfg.Output.IncludeFooter),
		log:      log,
		stdin:    os.Stdin,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}

	// The provider URL is still needed for search links when the oracle is replaced.
	searchOpts := []oracle.Option{
		oracle.WithLimiter(worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)),
	}
	if cfg.Provider.RespectRobots {
		searchOpts = append(searchOpts, oracle.WithRobots(util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)))
	}
	search, err := oracle.NewSearchOracle(p.fetcher, cfg.Provider, searchOpts...)
	if err != nil {
		return nil, err
	}
	p.search = search

	if p.oracle == nil {
		p.oracle = search
	}

	if cfg.Cache.Enabled {
		ttl := cfg.Cache.TTL
		if ttl <= 0 {
			ttl = 15 * time.Minute
		}
		p.cached = oracle.NewCached(p.oracle, cache.NewMemoryCache(ttl, 2*ttl), ttl)
		p.oracle = p.cached
	}

	runnerOpts := []worker.RunnerOption{worker.WithYield(cfg.Runner.Yield)}
	if cfg.Output.Verbose {
		runnerOpts = append(runnerOpts, worker.WithLog(log))
	}
	p.runner = worker.NewRunner(p.oracle, runnerOpts...)

	return p, nil
}

// Config returns the pipeline configuration
func (p *Pipeline) Config() *model.Config {
	return p.config
}

// LoadDocument resolves a source to plain text: "-" reads stdin, http(s) URLs are
// fetched, .html/.htm files and HTML pages are reduced to their visible text, and
// anything else is read as a plain file.
func (p *Pipeline) LoadDocument(ctx context.Context, source string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", model.ErrEmptySource
	}

	switch {
	case source == "-":
		data, err := util.ReadLimited(p.stdin, p.config.HTTP.MaxBodyBytes)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil

	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		result, err := p.fetcher.Fetch(ctx, source)
		if err != nil {
			return "", fmt.Errorf("fetch %s: %w", source, err)
		}
		if strings.Contains(result.ContentType, "html") || extract.LooksLikeHTML(result.Body) {
			return p.visibleText(result.Body, source)
		}
		return result.Body, nil

	default:
		data, err := os.ReadFile(source)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", source, err)
		}
		ext := strings.ToLower(filepath.Ext(source))
		if ext == ".html" || ext == ".htm" {
			return p.visibleText(string(data), source)
		}
		return string(data), nil
	}
}

func (p *Pipeline) visibleText(html, source string) (string, error) {
	text, err := extract.VisibleText(html)
	if err != nil {
		return "", fmt.Errorf("extract text from %s: %w", source, err)
	}
	return text, nil
}

// Segment splits doc with the configured strategy
func (p *Pipeline) Segment(doc string) ([]model.Unit, error) {
	return p.SegmentWith(doc, p.config.Segment.Strategy())
}

// SegmentWith splits doc with an explicit strategy
func (p *Pipeline) SegmentWith(doc string, strategy model.Strategy) ([]model.Unit, error) {
	return segment.Segment(doc, strategy, segment.OptionsFromConfig(p.config.Segment))
}

// Start segments doc and starts a background run. It fails with
// model.ErrRunInProgress while another run is active.
func (p *Pipeline) Start(ctx context.Context, doc string, strategy model.Strategy, sink worker.Sink) (*worker.Run, error) {
	units, err := p.SegmentWith(doc, strategy)
	if err != nil {
		return nil, err
	}
	return p.runner.Start(ctx, units, sink)
}

// Check runs a check to completion and returns its report. A failed run returns the
// partial report together with the run error; a cancelled run is not an error.
func (p *Pipeline) Check(ctx context.Context, doc string, strategy model.Strategy, sink worker.Sink) (*model.Report, error) {
	builder := NewReportBuilder("", strategy, p.SearchURL, p.now)

	run, err := p.Start(ctx, doc, strategy, worker.Tee(builder, sink))
	if err != nil {
		return nil, err
	}

	done := run.Wait()
	return builder.Report(), done.Err
}

// CheckSource loads and checks one source with the configured strategy
func (p *Pipeline) CheckSource(ctx context.Context, source string) (*model.Report, error) {
	doc, err := p.LoadDocument(ctx, source)
	if err != nil {
		return nil, err
	}

	report, err := p.Check(ctx, doc, p.config.Segment.Strategy(), nil)
	if report != nil {
		report.Source = source
	}
	return report, err
}

// Active returns the run in progress, or nil
func (p *Pipeline) Active() *worker.Run {
	return p.runner.Active()
}

// SearchURL returns the provider link for an exact-phrase search of text
func (p *Pipeline) SearchURL(text string) string {
	return p.search.SearchURL(text)
}

// CacheStats reports verdict cache hits and misses; enabled is false without a cache
func (p *Pipeline) CacheStats() (hits, misses int64, enabled bool) {
	if p.cached == nil {
		return 0, 0, false
	}
	hits, misses = p.cached.Stats()
	return hits, misses, true
}

// RenderReport writes the report to the requested outputs
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			_, _ = fmt.Fprintf(p.log, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			_, _ = fmt.Fprintf(p.log, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	return nil
}
