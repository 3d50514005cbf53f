package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/originality/internal/model"
)

// Checker produces a report for one document source
type Checker interface {
	CheckSource(ctx context.Context, source string) (*model.Report, error)
}

// BatchResult is the outcome for one source in a batch
type BatchResult struct {
	Source string
	Report *model.Report
	Err    error
}

// BatchProcessor checks several documents one after another. Runs never overlap,
// so a batch respects the same single-flight rule as a single check.
type BatchProcessor struct {
	checker    Checker
	onDocument func(i, n int, res BatchResult)
}

// NewBatchProcessor creates a new batch processor. onDocument, if set, is called
// after each source finishes.
func NewBatchProcessor(checker Checker, onDocument func(i, n int, res BatchResult)) *BatchProcessor {
	return &BatchProcessor{
		checker:    checker,
		onDocument: onDocument,
	}
}

// ProcessSources checks each source in order. Cancellation stops the batch before
// the next document; results so far are returned.
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []BatchResult {
	results := make([]BatchResult, 0, len(sources))

	for i, source := range sources {
		if ctx.Err() != nil {
			break
		}

		report, err := b.checker.CheckSource(ctx, source)
		res := BatchResult{Source: source, Report: report, Err: err}
		results = append(results, res)

		if b.onDocument != nil {
			b.onDocument(i, len(sources), res)
		}
	}

	return results
}

// ProcessFile reads sources from a file and checks them in order
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]BatchResult, error) {
	sources, err := ReadSourcesFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads document sources (paths or URLs), one per line
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}
