package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/originality/internal/model"
	"github.com/ppiankov/originality/internal/pipeline"
	"github.com/ppiankov/originality/internal/worker"
)

var (
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Check several documents listed in a file",
	Long: `Batch reads document sources (paths or URLs, one per line, # for comments)
and checks them one after another. Only one check runs at a time, so the search
provider sees the same request rate as a single check.

A JSON and a Markdown report are written for each document.

Example:
  originality batch essays.txt
  originality batch essays.txt --output-dir ./reports --full-sentence=false`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./originality-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 0, "total timeout for the batch (0 = none)")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	ctx, cancel := signalContext(batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Originality Batch\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Strategy:     %s\n", cfg.Segment.Strategy())
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := newPipeline(cfg)
	if err != nil {
		return err
	}
	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)

	successCount := 0
	failureCount := 0
	partialCount := 0
	names := newReportNamer()

	processor := worker.NewBatchProcessor(p, func(i, n int, res worker.BatchResult) {
		prefix := fmt.Sprintf("[%d/%d]", i+1, n)

		if res.Report == nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "%s ✗ %s: %v\n", prefix, res.Source, res.Err)
			return
		}

		slug := names.next(res.Source)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(res.Report, jsonPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "%s ✗ %s: failed to write JSON: %v\n", prefix, res.Source, err)
			return
		}
		if err := renderer.RenderMarkdown(res.Report, mdPath); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "%s ✗ %s: failed to write Markdown: %v\n", prefix, res.Source, err)
			return
		}

		status, line := describeResult(res)
		switch status {
		case statusFailed:
			failureCount++
		case statusPartial:
			partialCount++
		default:
			successCount++
		}
		fmt.Fprintf(os.Stderr, "%s %s\n", prefix, line)
	})

	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Checked:   %d documents\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Partial:   %d\n", partialCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if ctx.Err() != nil {
		return fmt.Errorf("batch stopped: %w", ctx.Err())
	}
	return nil
}

type batchStatus int

const (
	statusOK batchStatus = iota
	statusPartial
	statusFailed
)

// describeResult classifies a document whose report was written. A run stopped
// by Ctrl-C or --timeout is partial, not a success.
func describeResult(res worker.BatchResult) (batchStatus, string) {
	if res.Err != nil {
		return statusFailed, fmt.Sprintf("✗ %s: %v (partial report written)", res.Source, res.Err)
	}

	summary := res.Report.Summary
	switch summary.Outcome {
	case model.OutcomeCompleted:
		return statusOK, fmt.Sprintf("✓ %s (%.2f%% original)", res.Source, summary.Originality)
	case model.OutcomeFailed:
		return statusFailed, fmt.Sprintf("✗ %s: %s (partial report written)", res.Source, summary.Error)
	default:
		return statusPartial, fmt.Sprintf("◐ %s: %s after %d of %d units (partial report written)",
			res.Source, summary.Outcome, summary.Processed, summary.Total)
	}
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	"&", "_",
	"=", "_",
	" ", "-",
)

const maxFilenameRunes = 100

// sanitizeFilename turns a source path or URL into a safe report file name.
// The extension is kept as a suffix so essay.txt and essay.html stay apart.
func sanitizeFilename(s string) string {
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	if s == "-" {
		s = "stdin"
	}
	if ext := filepath.Ext(s); len(ext) > 1 && !strings.ContainsAny(ext, "/?&") {
		s = strings.TrimSuffix(s, ext) + "_" + ext[1:]
	}
	s = strings.Trim(filenameReplacer.Replace(s), "_.-")

	if r := []rune(s); len(r) > maxFilenameRunes {
		s = strings.TrimRight(string(r[:maxFilenameRunes]), "_.-")
	}
	if s == "" {
		s = "document"
	}

	return s
}

// reportNamer hands out report names that are unique within one batch
type reportNamer struct {
	used map[string]int
}

func newReportNamer() *reportNamer {
	return &reportNamer{used: make(map[string]int)}
}

func (n *reportNamer) next(source string) string {
	base := sanitizeFilename(source)
	name := base
	for n.used[name] > 0 {
		n.used[base]++
		name = fmt.Sprintf("%s-%d", base, n.used[base])
	}
	n.used[name]++
	return name
}
