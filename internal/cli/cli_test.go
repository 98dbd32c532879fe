package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/verifact/internal/input"
	"github.com/ppiankov/verifact/internal/model"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.example.com/news/article?id=5", "www-example-com-news-article-id-5"},
		{"The Earth is flat!", "the-earth-is-flat"},
		{"???", "input"},
		{"", "input"},
	}

	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}

	long := sanitizeFilename("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	if len(long) != 60 {
		t.Errorf("Expected slug capped at 60 chars, got %d", len(long))
	}
}

func TestSelectionFromFlags(t *testing.T) {
	defer func() { claimText, pageURL, videoURL, docPath = "", "", "", "" }()

	claimText = ""
	sel, err := selectionFromFlags([]string{"the sky is green"})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sel.Text != "the sky is green" {
		t.Errorf("Expected positional claim, got %q", sel.Text)
	}

	claimText = "flag claim"
	if _, err := selectionFromFlags([]string{"arg claim"}); !errors.Is(err, input.ErrInvalidSelection) {
		t.Errorf("Expected ErrInvalidSelection, got %v", err)
	}

	claimText = ""
	path := filepath.Join(t.TempDir(), "claim.txt")
	if err := os.WriteFile(path, []byte("file claim"), 0o644); err != nil {
		t.Fatal(err)
	}
	docPath = path
	sel, err = selectionFromFlags(nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sel.FileName != "claim.txt" || string(sel.FileData) != "file claim" {
		t.Errorf("Unexpected document selection: %+v", sel)
	}

	docPath = filepath.Join(t.TempDir(), "missing.pdf")
	if _, err := selectionFromFlags(nil); err == nil {
		t.Error("Expected error for missing document")
	}
}

func TestPreview(t *testing.T) {
	if got := preview("short", 10); got != "short" {
		t.Errorf("Expected unchanged string, got %q", got)
	}
	if got := preview("héllo wörld", 5); got != "héllo..." {
		t.Errorf("Expected rune-safe cut, got %q", got)
	}
}

func TestShowConfig_HidesCredentials(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.LLM.Provider = "anthropic"
	cfg.LLM.APIKey = "sk-ant-secret"

	var buf bytes.Buffer
	if err := showConfig(&buf, cfg, ""); err != nil {
		t.Fatalf("showConfig failed: %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "sk-ant-secret") {
		t.Errorf("Expected credential to be hidden, got:\n%s", out)
	}
	if !strings.Contains(out, "# source: none (defaults)") {
		t.Errorf("Expected default source line, got:\n%s", out)
	}
	if !strings.Contains(out, "ANTHROPIC_API_KEY: set") {
		t.Errorf("Expected anthropic credential state, got:\n%s", out)
	}
	if !strings.Contains(out, "SERPER_API_KEY:    missing") {
		t.Errorf("Expected missing search credential, got:\n%s", out)
	}
}

func TestInitConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".verifact", "config.yaml")

	if err := initConfigFile(path); err != nil {
		t.Fatalf("initConfigFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# VeriFact configuration") {
		t.Errorf("Expected header comment, got:\n%s", data)
	}

	var cfg model.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("Expected valid YAML: %v", err)
	}
	if cfg.LLM.Model != model.DefaultConfig().LLM.Model {
		t.Errorf("Expected default model %q, got %q", model.DefaultConfig().LLM.Model, cfg.LLM.Model)
	}

	if err := initConfigFile(path); err == nil {
		t.Error("Expected error when config already exists")
	}
}
