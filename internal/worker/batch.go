package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/ppiankov/verifact/internal/input"
	"github.com/ppiankov/verifact/internal/model"
	"github.com/ppiankov/verifact/internal/util"
)

// Verifier runs one verification over a normalized input
type Verifier interface {
	Verify(ctx context.Context, in model.CanonicalInput) (*model.Report, error)
}

// Item is one line of a batch file, classified into an input selection
type Item struct {
	Line      int
	Selection input.Selection
}

// Reference returns the raw value the item was built from
func (it Item) Reference() string {
	switch {
	case it.Selection.URL != "":
		return it.Selection.URL
	case it.Selection.VideoURL != "":
		return it.Selection.VideoURL
	default:
		return it.Selection.Text
	}
}

// VerifyJob normalizes and verifies one batch item
type VerifyJob struct {
	Item       Item
	Normalizer *input.Normalizer
	Verifier   Verifier
}

// Execute runs the job; input and pipeline errors are carried in the result
func (j *VerifyJob) Execute(ctx context.Context) Result {
	in, err := j.Normalizer.Normalize(j.Item.Selection)
	if err != nil {
		return &VerifyResult{Item: j.Item, Error: fmt.Errorf("normalize line %d: %w", j.Item.Line, err)}
	}

	report, err := j.Verifier.Verify(ctx, in)
	if err != nil {
		return &VerifyResult{Item: j.Item, Warnings: in.Warnings, Error: err}
	}
	return &VerifyResult{Item: j.Item, Warnings: in.Warnings, Report: report}
}

// VerifyResult is the outcome of one batch item
type VerifyResult struct {
	Item     Item
	Warnings []string
	Report   *model.Report
	Error    error
}

// GetError returns the error from the verification
func (r *VerifyResult) GetError() error {
	return r.Error
}

// BatchProcessor verifies many independent claims concurrently.
// Runs share no verification state; each item gets its own pipeline run.
type BatchProcessor struct {
	normalizer  *input.Normalizer
	verifier    Verifier
	concurrency int
	logger      *zap.Logger
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(normalizer *input.Normalizer, verifier Verifier, concurrency int, logger *zap.Logger) *BatchProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BatchProcessor{
		normalizer:  normalizer,
		verifier:    verifier,
		concurrency: concurrency,
		logger:      logger.With(zap.String("component", "batch")),
	}
}

// Process verifies items and returns results in input order.
// Items skipped because ctx was cancelled carry ctx's error.
func (b *BatchProcessor) Process(ctx context.Context, items []Item) []*VerifyResult {
	if len(items) == 0 {
		return []*VerifyResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	for _, item := range items {
		pool.Submit(&VerifyJob{
			Item:       item,
			Normalizer: b.normalizer,
			Verifier:   b.verifier,
		})
	}

	raw := pool.Wait()

	results := make([]*VerifyResult, len(items))
	for i, item := range items {
		if i < len(raw) && raw[i] != nil {
			results[i] = raw[i].(*VerifyResult)
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		results[i] = &VerifyResult{Item: item, Error: fmt.Errorf("not run: %w", err)}
	}

	var failed int
	for _, r := range results {
		if r.Error != nil {
			failed++
		}
	}
	b.logger.Info("batch finished",
		zap.Int("items", len(items)),
		zap.Int("failed", failed))

	return results
}

// ReadItemsFromFile reads one claim, URL or video URL per line.
// Blank lines and lines starting with # are skipped; duplicates are dropped.
func ReadItemsFromFile(filePath string) ([]Item, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var items []Item
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if seen[line] {
			continue
		}
		seen[line] = true

		items = append(items, Item{Line: lineNo, Selection: ClassifyLine(line)})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return items, nil
}

// ClassifyLine picks the input modality for a batch line
func ClassifyLine(line string) input.Selection {
	lower := strings.ToLower(line)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return input.Selection{Text: line}
	}
	if _, ok := util.ExtractVideoID(line); ok {
		return input.Selection{VideoURL: line}
	}
	return input.Selection{URL: line}
}
