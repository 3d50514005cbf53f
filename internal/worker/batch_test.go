package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/originality/internal/model"
)

type mockChecker struct {
	failOn string
	seen   []string
}

func (m *mockChecker) CheckSource(ctx context.Context, source string) (*model.Report, error) {
	m.seen = append(m.seen, source)
	if source == m.failOn {
		return nil, errors.New("load failed")
	}
	return &model.Report{Source: source}, nil
}

func TestBatchProcessor_ProcessSources(t *testing.T) {
	checker := &mockChecker{failOn: "b.txt"}
	var calls int
	processor := NewBatchProcessor(checker, func(i, n int, res BatchResult) {
		calls++
		if n != 3 {
			t.Errorf("n = %d, want 3", n)
		}
	})

	results := processor.ProcessSources(context.Background(), []string{"a.txt", "b.txt", "c.txt"})

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if calls != 3 {
		t.Errorf("onDocument called %d times", calls)
	}
	for i, want := range []string{"a.txt", "b.txt", "c.txt"} {
		if checker.seen[i] != want {
			t.Errorf("source %d = %s, want %s", i, checker.seen[i], want)
		}
	}
	if results[1].Err == nil || results[1].Report != nil {
		t.Errorf("expected failure for b.txt, got %+v", results[1])
	}
	if results[2].Report == nil || results[2].Report.Source != "c.txt" {
		t.Errorf("unexpected result for c.txt: %+v", results[2])
	}
}

func TestBatchProcessor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	checker := &mockChecker{}
	processor := NewBatchProcessor(checker, func(i, n int, res BatchResult) {
		cancel()
	})

	results := processor.ProcessSources(ctx, []string{"a", "b", "c"})
	if len(results) != 1 {
		t.Errorf("expected batch to stop after 1 document, got %d", len(results))
	}
}

func TestReadSourcesFromFile(t *testing.T) {
	content := `# documents to check
essay.txt
https://example.com/post

essay.txt
  notes.html  
`
	path := filepath.Join(t.TempDir(), "sources.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	sources, err := ReadSourcesFromFile(path)
	if err != nil {
		t.Fatalf("ReadSourcesFromFile: %v", err)
	}

	want := []string{"essay.txt", "https://example.com/post", "notes.html"}
	if len(sources) != len(want) {
		t.Fatalf("got %v, want %v", sources, want)
	}
	for i := range want {
		if sources[i] != want[i] {
			t.Errorf("source %d = %q, want %q", i, sources[i], want[i])
		}
	}
}

func TestProcessFile_Missing(t *testing.T) {
	processor := NewBatchProcessor(&mockChecker{}, nil)
	if _, err := processor.ProcessFile(context.Background(), "/nonexistent/list.txt"); err == nil {
		t.Error("expected error for missing file")
	}
}
