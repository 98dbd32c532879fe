// Package tools implements the evidence tools analysis stages call to pull
// external text: web pages, video transcripts and web search results.
//
// A tool never returns a Go error. Every failure is reported as a Result with
// Success false and a descriptive message, so a stage can reason about missing
// evidence instead of aborting the run.
package tools

import (
	"context"
	"errors"

	"github.com/ppiankov/verifact/internal/model"
)

// ErrToolUnavailable is returned when a stage requires a tool that is not configured
var ErrToolUnavailable = errors.New("evidence tool unavailable")

// Result is the outcome of one tool invocation
type Result struct {
	Tool         model.ToolID `json:"tool"`
	Success      bool         `json:"success"`
	Text         string       `json:"text,omitempty"`
	ErrorMessage string       `json:"error,omitempty"`
}

// String returns the text handed back to the calling stage
func (r Result) String() string {
	if r.Success {
		return r.Text
	}
	return r.ErrorMessage
}

// Ok builds a successful result
func Ok(tool model.ToolID, text string) Result {
	return Result{Tool: tool, Success: true, Text: text}
}

// Fail builds a failed result
func Fail(tool model.ToolID, message string) Result {
	return Result{Tool: tool, ErrorMessage: message}
}

// Spec describes a tool to the reasoning backend. Every tool takes one string argument.
type Spec struct {
	ID          model.ToolID
	Name        string // Display name
	Description string
	Argument    string // Argument name, e.g. "url"
	ArgumentDoc string
}

// Tool converts one kind of external reference into evidence text
type Tool interface {
	Spec() Spec
	Invoke(ctx context.Context, reference string) Result
}
