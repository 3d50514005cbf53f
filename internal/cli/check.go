package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/ppiankov/originality/internal/model"
	"github.com/ppiankov/originality/internal/oracle"
)

var (
	outJSON      string
	outMD        string
	checkTimeout time.Duration
	showLinks    bool
	noFooter     bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <source>",
	Short: "Check how much of a document already exists on the web",
	Long: `Check splits a document into units and queries the search provider for an
exact-phrase match of each unit, one at a time.

The source may be a plain text file, an .html file, an http(s) URL, or "-" for stdin.
Press Ctrl-C to stop after the unit currently being checked.

Example:
  originality check essay.txt
  originality check essay.txt --full-sentence=false --links
  cat draft.md | originality check - --json report.json --md report.md`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringVar(&outJSON, "json", "", "output JSON report path (optional)")
	checkCmd.Flags().StringVar(&outMD, "md", "", "output Markdown report path (optional)")
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 0, "overall check timeout (0 = none)")
	checkCmd.Flags().BoolVar(&showLinks, "links", false, "print a search link under each plagiarised unit")
	checkCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

// signalContext is cancelled by Ctrl-C or SIGTERM and, if timeout > 0, after timeout
func signalContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	if timeout <= 0 {
		return ctx, stop
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func runCheck(cmd *cobra.Command, args []string) error {
	source := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("links") {
		cfg.Output.Links = showLinks
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	ctx, cancel := signalContext(checkTimeout)
	defer cancel()

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	doc, err := p.LoadDocument(ctx, source)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}

	strategy := cfg.Segment.Strategy()
	units, err := p.SegmentWith(doc, strategy)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "%s %s (%s, %s strategy, %d units)\n",
		headerStyle.Render("Checking"), source, humanize.Bytes(uint64(len(doc))), strategy, len(units))
	if verbose {
		fmt.Fprintf(os.Stderr, "Provider: %s\n", cfg.Provider.Endpoint)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
	}
	fmt.Fprintln(os.Stderr)

	sink := &terminalSink{w: os.Stdout, links: cfg.Output.Links, searchURL: p.SearchURL}
	report, err := p.Check(ctx, doc, strategy, sink)
	if report == nil {
		return fmt.Errorf("check failed: %w", err)
	}
	report.Source = source

	if verbose {
		if hits, misses, ok := p.CacheStats(); ok {
			fmt.Fprintf(os.Stderr, "Cache: %d hits, %d misses\n", hits, misses)
		}
	}

	if renderErr := p.RenderReport(report, outJSON, outMD, true); renderErr != nil {
		return fmt.Errorf("render failed: %w", renderErr)
	}

	if err != nil {
		if oracle.IsProviderError(err) {
			fmt.Fprintln(os.Stderr, dimStyle.Render("The search provider may be rejecting automated queries. Try a lower --rps or check provider.* settings with 'originality config show'."))
		}
		return fmt.Errorf("check failed: %w", err)
	}
	if report.Summary.Outcome == model.OutcomeCancelled && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("check timed out after %s", checkTimeout)
	}
	return nil
}
