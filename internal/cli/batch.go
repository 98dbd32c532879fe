package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/verifact/internal/document"
	"github.com/ppiankov/verifact/internal/input"
	"github.com/ppiankov/verifact/internal/logging"
	"github.com/ppiankov/verifact/internal/pipeline"
	"github.com/ppiankov/verifact/internal/worker"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	// noFooter is defined in check.go and shared here
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Verify many claims from a file in parallel",
	Long: `Batch verifies independent inputs concurrently:
- Read inputs from a file, one per line (# starts a comment)
- Lines starting with http:// or https:// are treated as web pages,
  or as videos when they are recognized YouTube URLs
- Every other line is verified as claim text
- Each input gets its own run; reports are written per line

Example:
  verifact batch claims.txt
  verifact batch claims.txt --concurrency 8 --output-dir ./reports
  verifact batch claims.txt --batch-timeout 1h`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent runs (default: concurrency.workers from config)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./verifact-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "batch-timeout", 30*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	logger := logging.Must(cfg.Output.Verbose, cfg.Output.LogFormat)
	defer func() { _ = logger.Sync() }()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  VeriFact Batch Verification\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	fmt.Fprintf(os.Stderr, "\n")

	items, err := worker.ReadItemsFromFile(file)
	if err != nil {
		return fmt.Errorf("read batch file: %w", err)
	}
	fmt.Fprintf(os.Stderr, "✓ Loaded %d inputs\n", len(items))

	// Create output directory
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	// One pipeline serves every run; runs share only the host limiter
	p, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}
	normalizer := input.NewNormalizer(document.NewDecoder(cfg.Document), logger)
	processor := worker.NewBatchProcessor(normalizer, p, cfg.Concurrency.Workers, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "⚙️  Verifying with %d workers...\n\n", cfg.Concurrency.Workers)
	results := processor.Process(ctx, items)

	// Process results
	successCount := 0
	failureCount := 0
	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)

	for _, result := range results {
		ref := result.Item.Reference()
		if result.Error != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ line %d %s: %v\n", result.Item.Line, preview(ref, 60), result.Error)
			continue
		}

		base := fmt.Sprintf("%04d-%s", result.Item.Line, sanitizeFilename(ref))
		jsonPath := filepath.Join(outputDir, base+".json")
		mdPath := filepath.Join(outputDir, base+".md")
		if err := renderReport(renderer, result.Report, jsonPath, mdPath, "", false); err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ line %d %s: %v\n", result.Item.Line, preview(ref, 60), err)
			continue
		}

		successCount++
		display := result.Report.Verdict.Display()
		fmt.Fprintf(os.Stderr, "✓ line %d %s: %s %s\n", result.Item.Line, preview(ref, 60), display.Icon, display.Label)
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d inputs\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// sanitizeFilename turns an input reference into a short filesystem-safe slug
func sanitizeFilename(s string) string {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "https://"), "http://")

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
		// Limit length
		if b.Len() >= 60 {
			break
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "input"
	}
	return slug
}

func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
