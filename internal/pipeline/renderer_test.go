package pipeline

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/verifact/internal/model"
)

func testReport(text string) *model.Report {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &model.Report{
		RunID:      "run-1",
		Input:      model.CanonicalInput{Kind: model.SourceText, RawReference: text, ResolvedText: text},
		Verdict:    model.VerdictMostlyTrue,
		Display:    model.VerdictMostlyTrue.Display(),
		ReportText: "Verdict: MOSTLY TRUE",
		Stages: []model.StageResult{
			{Stage: model.StageResearch, Duration: 1500 * time.Millisecond, ToolCalls: 2},
		},
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
		Provider:   "openai",
		Model:      "gpt-4o-mini",
	}
}

func TestRenderer_Text(t *testing.T) {
	r := NewRenderer(true)

	got := r.Text(testReport("Water boils at 100C."))

	want := "VERIFACT PROFESSIONAL VERIFICATION REPORT\n" +
		strings.Repeat("=", 50) + "\n\n" +
		"Input Content: Water boils at 100C.\n\n" +
		"Analysis Results:\n" +
		strings.Repeat("-", 20) + "\n\n" +
		"Verdict: MOSTLY TRUE"
	assert.Equal(t, want, got)
}

func TestRenderer_TextTruncatesPreview(t *testing.T) {
	long := strings.Repeat("a", 250)

	got := NewRenderer(false).Text(testReport(long))

	assert.Contains(t, got, "Input Content: "+strings.Repeat("a", 200)+"...\n")
	assert.NotContains(t, got, strings.Repeat("a", 201))
}

func TestRenderer_Markdown(t *testing.T) {
	report := testReport("claim")
	report.Input.Warnings = []string{"URL should begin with http:// or https://"}

	got := NewRenderer(true).Markdown(report)

	assert.True(t, strings.HasPrefix(got, "# VERIFACT Professional Verification Report\n"))
	assert.Contains(t, got, "## Input Analysis\n**Content:** claim\n")
	assert.Contains(t, got, "## Verdict\n✅ **MOSTLY TRUE**")
	assert.Contains(t, got, "**Confidence Level:** Medium - Generally accurate with minor qualifications.")
	assert.Contains(t, got, "## Verification Results\n\nVerdict: MOSTLY TRUE\n")
	assert.Contains(t, got, "| research | 1.5s | 2 |")
	assert.Contains(t, got, "URL should begin with http:// or https://")
	assert.Contains(t, got, "*Generated by VERIFACT AI Fact-Checking System*")

	assert.Less(t, strings.Index(got, "## Input Analysis"), strings.Index(got, "## Verdict"))
	assert.Less(t, strings.Index(got, "## Verdict"), strings.Index(got, "## Verification Results"))
}

func TestRenderer_MarkdownWithoutFooter(t *testing.T) {
	got := NewRenderer(false).Markdown(testReport("claim"))

	assert.NotContains(t, got, "Generated by VERIFACT")
	assert.NotContains(t, got, "\n---\n")
}

func TestRenderer_WritesFiles(t *testing.T) {
	dir := t.TempDir()
	r := NewRenderer(true)
	report := testReport("claim")

	jsonPath := filepath.Join(dir, "out", "report.json")
	require.NoError(t, r.RenderJSON(report, jsonPath))
	require.NoError(t, r.RenderMarkdown(report, filepath.Join(dir, "report.md")))
	require.NoError(t, r.RenderText(report, filepath.Join(dir, "report.txt")))

	data, err := os.ReadFile(jsonPath)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "MOSTLY_TRUE", decoded["verdict"])
	assert.Equal(t, "run-1", decoded["run_id"])

	txt, err := os.ReadFile(filepath.Join(dir, "report.txt"))
	require.NoError(t, err)
	assert.Equal(t, r.Text(report), string(txt))
}

func TestRenderer_Summary(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(true).RenderSummary(&buf, testReport("claim"))

	out := buf.String()
	assert.Contains(t, out, "✅ MOSTLY TRUE")
	assert.Contains(t, out, "Assessment: The claim is primarily accurate")
	assert.Contains(t, out, "Backend: openai/gpt-4o-mini")
	assert.Contains(t, out, "Stages: 1, duration: 3s")
}
