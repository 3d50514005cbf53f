package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/ppiankov/originality/internal/model"
	"github.com/ppiankov/originality/internal/worker"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"essays/first draft.txt", "essays_first-draft_txt"},
		{"essay.txt", "essay_txt"},
		{"essay.html", "essay_html"},
		{"notes", "notes"},
		{"https://example.com/post?id=3", "example.com_post_id_3"},
		{"-", "stdin"},
		{"///", "document"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSanitizeFilename_CutsOnRunes(t *testing.T) {
	got := sanitizeFilename(strings.Repeat("ж", 150))
	if !utf8.ValidString(got) {
		t.Fatalf("name is not valid UTF-8: %q", got)
	}
	if n := utf8.RuneCountInString(got); n != maxFilenameRunes {
		t.Errorf("name has %d runes, want %d", n, maxFilenameRunes)
	}
}

func TestReportNamer_Unique(t *testing.T) {
	names := newReportNamer()
	sources := []string{"essay.txt", "essay.html", "essay.txt", "essay.txt", "essay_txt-2"}
	want := []string{"essay_txt", "essay_html", "essay_txt-2", "essay_txt-3", "essay_txt-2-2"}

	for i, src := range sources {
		if got := names.next(src); got != want[i] {
			t.Errorf("next(%q) = %q, want %q", src, got, want[i])
		}
	}
}

func TestDescribeResult(t *testing.T) {
	report := func(outcome model.Outcome, processed, total int) *model.Report {
		return &model.Report{Summary: model.Summary{
			Outcome:     outcome,
			Processed:   processed,
			Total:       total,
			Originality: 50,
			Error:       "boom",
		}}
	}

	tests := []struct {
		name   string
		res    worker.BatchResult
		want   batchStatus
		prefix string
	}{
		{"completed", worker.BatchResult{Source: "a.txt", Report: report(model.OutcomeCompleted, 4, 4)}, statusOK, "✓ a.txt (50.00% original)"},
		{"cancelled", worker.BatchResult{Source: "b.txt", Report: report(model.OutcomeCancelled, 2, 8)}, statusPartial, "◐ b.txt: cancelled after 2 of 8 units"},
		{"failed outcome", worker.BatchResult{Source: "c.txt", Report: report(model.OutcomeFailed, 1, 3)}, statusFailed, "✗ c.txt: boom"},
		{"error", worker.BatchResult{Source: "d.txt", Report: report(model.OutcomeFailed, 1, 3), Err: errors.New("provider down")}, statusFailed, "✗ d.txt: provider down"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, line := describeResult(tt.res)
			if status != tt.want {
				t.Errorf("status = %d, want %d", status, tt.want)
			}
			if !strings.HasPrefix(line, tt.prefix) {
				t.Errorf("line = %q, want prefix %q", line, tt.prefix)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("ЖЖЖЖЖЖЖЖЖЖ", 6); got != "ЖЖЖ..." {
		t.Errorf("truncate by runes = %q", got)
	}
}

func TestDecodeConfig_Layers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
provider:
  endpoint: https://search.example.com/find
segment:
  window_size: 12
runner:
  yield: 50ms
`
	if err := os.WriteFile(path, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("ORIGINALITY_SEGMENT_FULL_SENTENCE", "false")

	v := viper.New()
	setDefaults(v, model.DefaultConfig())
	v.SetConfigFile(path)
	v.SetEnvPrefix("ORIGINALITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}

	cfg, err := decodeConfig(v)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Provider.Endpoint != "https://search.example.com/find" {
		t.Errorf("endpoint = %q", cfg.Provider.Endpoint)
	}
	if cfg.Segment.WindowSize != 12 {
		t.Errorf("window size = %d", cfg.Segment.WindowSize)
	}
	if cfg.Runner.Yield != 50*time.Millisecond {
		t.Errorf("yield = %v", cfg.Runner.Yield)
	}
	if cfg.Segment.FullSentence {
		t.Error("env override of segment.full_sentence ignored")
	}
	if cfg.Segment.MinWords != 5 || cfg.Provider.QueryParam != "q" {
		t.Errorf("defaults lost: %+v %+v", cfg.Segment, cfg.Provider)
	}
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	if err := writeDefaultConfig(path); err != nil {
		t.Fatalf("writeDefaultConfig: %v", err)
	}
	if err := writeDefaultConfig(path); err == nil {
		t.Error("expected error when config already exists")
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		t.Fatal(err)
	}
	cfg, err := decodeConfig(v)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.HTTP.Timeout != 30*time.Second {
		t.Errorf("timeout round trip = %v", cfg.HTTP.Timeout)
	}
}
