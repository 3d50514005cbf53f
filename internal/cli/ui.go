package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/ppiankov/originality/internal/model"
	"github.com/ppiankov/originality/internal/pipeline"
)

var (
	plagiarisedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	originalStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	headerStyle      = lipgloss.NewStyle().Bold(true)
	warnStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
)

// terminalSink prints one line per checked unit and a closing summary
type terminalSink struct {
	w         io.Writer
	links     bool
	searchURL func(string) string
}

func (t *terminalSink) OnProgress(ev model.ProgressEvent) {
	verdict := originalStyle.Render(fmt.Sprintf("%-11s", ev.Verdict))
	if ev.Verdict == model.Plagiarised {
		verdict = plagiarisedStyle.Render(fmt.Sprintf("%-11s", ev.Verdict))
	}

	width := len(fmt.Sprint(ev.Total))
	_, _ = fmt.Fprintf(t.w, "[%*d/%d] %s %s %s\n",
		width, ev.Processed, ev.Total,
		verdict,
		dimStyle.Render(fmt.Sprintf("%6.2f%%", ev.Originality())),
		truncate(ev.Unit.Text, 72))

	if t.links && ev.Verdict == model.Plagiarised && t.searchURL != nil {
		_, _ = fmt.Fprintf(t.w, "%s %s\n", dimStyle.Render("    ↳"), t.searchURL(ev.Unit.Text))
	}
}

func (t *terminalSink) OnComplete(ev model.CompletionEvent) {
	_, _ = fmt.Fprintln(t.w)

	msg := pipeline.CompletionMessage(model.SummaryFromCompletion(ev))
	switch ev.Outcome {
	case model.OutcomeCompleted:
		_, _ = fmt.Fprintln(t.w, headerStyle.Render(msg))
	default:
		_, _ = fmt.Fprintln(t.w, warnStyle.Render(msg))
	}

	_, _ = fmt.Fprintf(t.w, "%s\n", dimStyle.Render(fmt.Sprintf(
		"%s units checked, %s plagiarised, %s original in %s",
		humanize.Comma(int64(ev.Processed)),
		humanize.Comma(int64(ev.Plagiarised)),
		humanize.Comma(int64(ev.Original)),
		ev.Elapsed.Round(time.Millisecond))))

	if ev.Err != nil {
		_, _ = fmt.Fprintln(t.w, warnStyle.Render("Error: ")+ev.Err.Error())
	}
}

// truncate shortens s to n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
