package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ppiankov/originality/internal/model"
)

// Renderer writes reports as JSON and Markdown
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// RenderJSON writes the report as indented JSON to path
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return WriteJSON(f, report)
}

// WriteJSON encodes the report to w
func WriteJSON(w io.Writer, report *model.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// RenderMarkdown writes the report as Markdown to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return os.WriteFile(path, []byte(r.Markdown(report)), 0644)
}

// Markdown renders the report as a Markdown document
func (r *Renderer) Markdown(report *model.Report) string {
	var b strings.Builder
	s := report.Summary

	b.WriteString("# Originality Report\n\n")
	if report.Source != "" {
		fmt.Fprintf(&b, "**Source:** %s  \n", report.Source)
	}
	fmt.Fprintf(&b, "**Run:** `%s`  \n", report.RunID)
	fmt.Fprintf(&b, "**Strategy:** %s  \n", report.Strategy)
	fmt.Fprintf(&b, "**Checked:** %s\n\n", report.CheckedAt.Format("2006-01-02 15:04:05 MST"))

	b.WriteString("## Summary\n\n")
	fmt.Fprintf(&b, "%s\n\n", CompletionMessage(s))
	b.WriteString("| Outcome | Checked | Plagiarised | Original |\n")
	b.WriteString("|---|---|---|---|\n")
	fmt.Fprintf(&b, "| %s | %d/%d | %d | %d |\n\n", s.Outcome, s.Processed, s.Total, s.Plagiarised, s.Original)
	if s.Error != "" {
		fmt.Fprintf(&b, "> Stopped early: %s\n\n", s.Error)
	}

	if len(report.Units) > 0 {
		b.WriteString("## Units\n\n")
		b.WriteString("| # | Verdict | Text |\n")
		b.WriteString("|---|---|---|\n")
		for _, u := range report.Units {
			verdict := u.Verdict.String()
			if u.SearchURL != "" {
				verdict = fmt.Sprintf("[%s](%s)", verdict, u.SearchURL)
			}
			fmt.Fprintf(&b, "| %d | %s | %s |\n", u.Unit.Index+1, verdict, escapeCell(u.Unit.Text))
		}
		b.WriteString("\n")
	}

	if r.includeFooter {
		b.WriteString("---\n\n")
		b.WriteString("*A plagiarised verdict means the search provider returned results for the exact phrase at check time. It is not a finding of authorship.*\n")
	}

	return b.String()
}

// CompletionMessage is the one-line result of a run
func CompletionMessage(s model.Summary) string {
	switch s.Outcome {
	case model.OutcomeCancelled:
		return fmt.Sprintf("Check cancelled after %d of %d units: %.2f%% original so far", s.Processed, s.Total, s.Originality)
	case model.OutcomeFailed:
		return fmt.Sprintf("Check failed after %d of %d units: %.2f%% original so far", s.Processed, s.Total, s.Originality)
	default:
		return fmt.Sprintf("The document has %.2f%% original content", s.Originality)
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
