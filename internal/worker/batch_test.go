package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/ppiankov/verifact/internal/input"
	"github.com/ppiankov/verifact/internal/model"
)

type mockVerifier struct {
	failOn string
	calls  int32
}

func (m *mockVerifier) Verify(ctx context.Context, in model.CanonicalInput) (*model.Report, error) {
	atomic.AddInt32(&m.calls, 1)
	if m.failOn != "" && strings.Contains(in.ResolvedText, m.failOn) {
		return nil, errors.New("stage failed")
	}
	return &model.Report{
		Input:   in,
		Verdict: model.VerdictTrue,
	}, nil
}

func TestBatchProcessor_Process(t *testing.T) {
	verifier := &mockVerifier{failOn: "broken"}
	processor := NewBatchProcessor(input.NewNormalizer(nil, nil), verifier, 2, nil)

	items := []Item{
		{Line: 1, Selection: input.Selection{Text: "The sky is blue"}},
		{Line: 2, Selection: input.Selection{URL: "https://example.com/broken"}},
		{Line: 3, Selection: input.Selection{VideoURL: "https://youtu.be/abc123"}},
	}

	results := processor.Process(context.Background(), items)
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}

	for i, r := range results {
		if r.Item.Line != items[i].Line {
			t.Errorf("expected result %d for line %d, got line %d", i, items[i].Line, r.Item.Line)
		}
	}
	if results[0].Error != nil || results[0].Report == nil {
		t.Errorf("expected success for text claim, got %v", results[0].Error)
	}
	if results[1].Error == nil {
		t.Error("expected failure for broken URL")
	}
	if results[2].Report == nil || results[2].Report.Input.Kind != model.SourceVideoURL {
		t.Error("expected video URL to be verified as video input")
	}
	if atomic.LoadInt32(&verifier.calls) != 3 {
		t.Errorf("expected 3 verifier calls, got %d", verifier.calls)
	}
}

func TestBatchProcessor_InputErrorSkipsVerifier(t *testing.T) {
	verifier := &mockVerifier{}
	processor := NewBatchProcessor(input.NewNormalizer(nil, nil), verifier, 1, nil)

	results := processor.Process(context.Background(), []Item{{Line: 1, Selection: input.Selection{}}})

	if !errors.Is(results[0].Error, input.ErrInvalidSelection) {
		t.Errorf("expected ErrInvalidSelection, got %v", results[0].Error)
	}
	if verifier.calls != 0 {
		t.Errorf("expected verifier not to be called, got %d calls", verifier.calls)
	}
}

func TestBatchProcessor_Empty(t *testing.T) {
	processor := NewBatchProcessor(input.NewNormalizer(nil, nil), &mockVerifier{}, 2, nil)

	if results := processor.Process(context.Background(), nil); len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestReadItemsFromFile(t *testing.T) {
	content := `# claims to check
The Great Wall is visible from space

https://example.com/article
https://www.youtube.com/watch?v=abc123
The Great Wall is visible from space
  https://youtu.be/xyz  
`
	path := filepath.Join(t.TempDir(), "claims.txt")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	items, err := ReadItemsFromFile(path)
	if err != nil {
		t.Fatalf("ReadItemsFromFile failed: %v", err)
	}

	if len(items) != 4 {
		t.Fatalf("expected 4 items (comment, blank and duplicate skipped), got %d", len(items))
	}

	if items[0].Selection.Text != "The Great Wall is visible from space" || items[0].Line != 2 {
		t.Errorf("unexpected first item: %+v", items[0])
	}
	if items[1].Selection.URL != "https://example.com/article" {
		t.Errorf("expected URL item, got %+v", items[1].Selection)
	}
	if items[2].Selection.VideoURL != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("expected video item, got %+v", items[2].Selection)
	}
	if items[3].Selection.VideoURL != "https://youtu.be/xyz" || items[3].Line != 7 {
		t.Errorf("expected trimmed short video link on line 7, got %+v", items[3])
	}
}

func TestReadItemsFromFile_Missing(t *testing.T) {
	if _, err := ReadItemsFromFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want model.SourceKind
	}{
		{"Vaccines cause autism", model.SourceText},
		{"HTTPS://EXAMPLE.COM", model.SourceURL},
		{"https://youtube.com/embed/abc", model.SourceVideoURL},
		{"http://youtu.be/abc", model.SourceVideoURL},
	}

	for _, tt := range tests {
		kind, err := ClassifyLine(tt.line).Kind()
		if err != nil {
			t.Fatalf("Kind(%q) failed: %v", tt.line, err)
		}
		if kind != tt.want {
			t.Errorf("ClassifyLine(%q) = %s, expected %s", tt.line, kind, tt.want)
		}
	}
}
