package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ppiankov/verifact/internal/document"
	"github.com/ppiankov/verifact/internal/input"
	"github.com/ppiankov/verifact/internal/logging"
	"github.com/ppiankov/verifact/internal/metrics"
	"github.com/ppiankov/verifact/internal/model"
	"github.com/ppiankov/verifact/internal/pipeline"
	"github.com/ppiankov/verifact/internal/tools"
	"github.com/ppiankov/verifact/internal/worker"
)

var (
	claimText   string
	pageURL     string
	videoURL    string
	docPath     string
	outJSON     string
	outMD       string
	outTXT      string
	noFooter    bool
	metricsDump bool
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check [claim]",
	Short: "Verify a claim, web page, YouTube video or document",
	Long: `Check runs one verification over exactly one input:
- a claim given as text (--text or a positional argument)
- a web page (--url), fetched by the research stage
- a YouTube video (--video), whose transcript is fetched by the research stage
- a PDF, DOCX or TXT document (--file)

The verdict card is printed to stdout. Reports can also be exported as
JSON, Markdown or plain text.

Example:
  verifact check "The Great Wall of China is visible from space"
  verifact check --url https://example.com/article --md report.md
  verifact check --video https://youtu.be/dQw4w9WgXcQ --json report.json
  verifact check --file statement.pdf --txt report.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Input flags
	checkCmd.Flags().StringVar(&claimText, "text", "", "claim text to verify")
	checkCmd.Flags().StringVar(&pageURL, "url", "", "web page URL to verify")
	checkCmd.Flags().StringVar(&videoURL, "video", "", "YouTube video URL to verify")
	checkCmd.Flags().StringVar(&docPath, "file", "", "document to verify (.pdf, .docx, .txt)")

	// Output flags
	checkCmd.Flags().StringVar(&outJSON, "json", "", "output JSON path (optional)")
	checkCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")
	checkCmd.Flags().StringVar(&outTXT, "txt", "", "output plain text path (optional)")
	checkCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	checkCmd.Flags().BoolVar(&metricsDump, "metrics-dump", false, "write Prometheus metrics to stderr after the run")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}
	logger := logging.Must(cfg.Output.Verbose, cfg.Output.LogFormat)
	defer func() { _ = logger.Sync() }()

	sel, err := selectionFromFlags(args)
	if err != nil {
		return err
	}

	normalizer := input.NewNormalizer(document.NewDecoder(cfg.Document), logger)
	in, err := normalizer.Normalize(sel)
	if err != nil {
		return fmt.Errorf("input: %w", err)
	}
	for _, w := range in.Warnings {
		fmt.Fprintf(os.Stderr, "⚠️  %s\n", w)
	}

	p, err := newPipeline(cfg, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	if cfg.Output.Verbose {
		fmt.Fprintf(os.Stderr, "Verifying %s input: %s\n", in.Kind, in.Preview(80))
		fmt.Fprintf(os.Stderr, "Timeout: %v\n", runTimeout)
		fmt.Fprintf(os.Stderr, "Tools: %v\n\n", p.Tools().IDs())
	}

	report, err := p.Verify(ctx, in)
	if metricsDump {
		defer func() { _ = metrics.Dump(os.Stderr) }()
	}
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	renderer := pipeline.NewRenderer(cfg.Output.IncludeFooter)
	if err := renderReport(renderer, report, outJSON, outMD, outTXT, cfg.Output.Verbose); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, report.ReportText)
	renderer.RenderSummary(out, report)

	return nil
}

// selectionFromFlags turns the input flags into exactly one modality
func selectionFromFlags(args []string) (input.Selection, error) {
	sel := input.Selection{
		Text:     claimText,
		URL:      pageURL,
		VideoURL: videoURL,
	}
	if len(args) == 1 {
		if sel.Text != "" {
			return input.Selection{}, fmt.Errorf("%w: claim given both as argument and --text", input.ErrInvalidSelection)
		}
		sel.Text = args[0]
	}
	if docPath != "" {
		data, err := os.ReadFile(docPath)
		if err != nil {
			return input.Selection{}, fmt.Errorf("read document: %w", err)
		}
		sel.FileName = filepath.Base(docPath)
		sel.FileData = data
	}
	return sel, nil
}

// newPipeline builds a pipeline with CLI progress reporting and a shared host limiter
func newPipeline(cfg *model.Config, logger *zap.Logger) (*pipeline.Pipeline, error) {
	limiter := worker.NewHostLimiter(cfg.RateLimiting)
	p, err := pipeline.New(cfg,
		pipeline.WithLogger(logger),
		pipeline.WithToolOptions(tools.Options{Limiter: limiter, Logger: logger}),
		pipeline.WithObserver(progressObserver(cfg.Output.Verbose)),
	)
	if err != nil {
		return nil, fmt.Errorf("create pipeline: %w", err)
	}
	return p, nil
}

var stageProgress = map[model.RunState]string{
	model.StateResearch:        "🔍 Researching claims and gathering evidence...",
	model.StateContentAnalysis: "🧠 Analyzing content and context...",
	model.StateVerification:    "⚖️  Cross-referencing sources...",
	model.StateComplete:        "✓ Analysis complete",
}

// progressObserver prints stage transitions to stderr when verbose
func progressObserver(enabled bool) pipeline.Observer {
	return func(ev pipeline.Event) {
		if !enabled {
			return
		}
		if ev.State == model.StateFailed {
			fmt.Fprintf(os.Stderr, "✗ Analysis failed during %s\n", ev.Stage)
			return
		}
		msg, ok := stageProgress[ev.State]
		if !ok {
			msg = "⚙️  " + strings.ReplaceAll(string(ev.State), "_", " ") + "..."
		}
		fmt.Fprintln(os.Stderr, msg)
	}
}

// renderReport writes the requested exports
func renderReport(r *pipeline.Renderer, report *model.Report, jsonPath, mdPath, txtPath string, verbose bool) error {
	if jsonPath != "" {
		if err := r.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := r.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	if txtPath != "" {
		if err := r.RenderText(report, txtPath); err != nil {
			return fmt.Errorf("render text: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote text report: %s\n", txtPath)
		}
	}

	return nil
}
