package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/verifact/internal/model"
)

const previewChars = 200

// Renderer writes reports in the supported export formats
type Renderer struct {
	includeFooter bool
}

// NewRenderer creates a renderer; includeFooter controls the Markdown footer
func NewRenderer(includeFooter bool) *Renderer {
	return &Renderer{includeFooter: includeFooter}
}

// Text returns the plain text export
func (r *Renderer) Text(report *model.Report) string {
	var b strings.Builder
	b.WriteString("VERIFACT PROFESSIONAL VERIFICATION REPORT\n")
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Input Content: %s\n\n", report.Input.Preview(previewChars))
	b.WriteString("Analysis Results:\n")
	b.WriteString(strings.Repeat("-", 20))
	b.WriteString("\n\n")
	b.WriteString(report.ReportText)
	return b.String()
}

// Markdown returns the Markdown export
func (r *Renderer) Markdown(report *model.Report) string {
	display := report.Verdict.Display()

	var b strings.Builder
	b.WriteString("# VERIFACT Professional Verification Report\n\n")

	b.WriteString("## Input Analysis\n")
	fmt.Fprintf(&b, "**Content:** %s\n\n", report.Input.Preview(previewChars))
	if report.Input.Kind != "" {
		fmt.Fprintf(&b, "**Source:** %s\n\n", report.Input.Kind)
	}
	for _, w := range report.Input.Warnings {
		fmt.Fprintf(&b, "> ⚠️ %s\n\n", w)
	}

	b.WriteString("## Verdict\n")
	fmt.Fprintf(&b, "%s **%s**\n\n", display.Icon, display.Label)
	fmt.Fprintf(&b, "**Assessment:** %s\n\n", display.Assessment)
	fmt.Fprintf(&b, "**Confidence Level:** %s\n\n", display.Confidence)

	b.WriteString("## Verification Results\n\n")
	b.WriteString(report.ReportText)
	b.WriteString("\n")

	if len(report.Stages) > 0 {
		b.WriteString("\n## Analysis Stages\n\n")
		b.WriteString("| Stage | Duration | Tool calls |\n")
		b.WriteString("|-------|----------|------------|\n")
		for _, st := range report.Stages {
			fmt.Fprintf(&b, "| %s | %s | %d |\n", st.Stage, st.Duration.Round(time.Millisecond), st.ToolCalls)
		}
	}

	if r.includeFooter {
		b.WriteString("\n---\n")
		b.WriteString("*Generated by VERIFACT AI Fact-Checking System*\n")
		b.WriteString("*Powered by Multi-Agent Intelligence Architecture*\n")
	}

	return b.String()
}

// RenderText writes the plain text export to path
func (r *Renderer) RenderText(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Text(report)))
}

// RenderMarkdown writes the Markdown export to path
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	return writeFile(path, []byte(r.Markdown(report)))
}

// RenderJSON writes the report as indented JSON to path
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderSummary prints the verdict card to w
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	display := report.Verdict.Display()

	fmt.Fprintf(w, "\n%s %s\n", display.Icon, display.Label)
	fmt.Fprintf(w, "Assessment: %s\n", display.Assessment)
	fmt.Fprintf(w, "Confidence Level: %s\n", display.Confidence)
	for _, warning := range report.Input.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warning)
	}
	if report.Provider != "" {
		fmt.Fprintf(w, "Backend: %s/%s\n", report.Provider, report.Model)
	}
	fmt.Fprintf(w, "Stages: %d, duration: %s\n", len(report.Stages), report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
