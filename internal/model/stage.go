package model

import "time"

// StageName names one unit of work in the analysis chain
type StageName string

const (
	StageResearch        StageName = "research"
	StageContentAnalysis StageName = "content_analysis"
	StageVerification    StageName = "verification"
)

// ToolID identifies an evidence tool
type ToolID string

const (
	ToolWebPage         ToolID = "web_page"
	ToolVideoTranscript ToolID = "video_transcript"
	ToolWebSearch       ToolID = "web_search"
)

// RunState is the pipeline state machine position. Transitions only move forward.
type RunState string

const (
	StateResearch        RunState = "research"
	StateContentAnalysis RunState = "content_analysis"
	StateVerification    RunState = "verification"
	StateComplete        RunState = "complete"
	StateFailed          RunState = "failed"
)

// Stage describes one step of the chain: who does it, with which tools, seeing which prior outputs
type Stage struct {
	Name           StageName   `json:"name" yaml:"name"`
	Role           string      `json:"role" yaml:"role"`
	Goal           string      `json:"goal" yaml:"goal"`
	Task           string      `json:"task" yaml:"task"`
	ExpectedOutput string      `json:"expected_output" yaml:"expected_output"`
	RequiredTools  []ToolID    `json:"required_tools,omitempty" yaml:"required_tools,omitempty"`   // Missing => construction fails
	PreferredTools []ToolID    `json:"preferred_tools,omitempty" yaml:"preferred_tools,omitempty"` // Missing => silently dropped
	DependsOn      []StageName `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
}

// StageResult is the recorded output of one completed stage.
// It is owned by the run that produced it and never modified after recording.
type StageResult struct {
	Stage      StageName     `json:"stage"`
	OutputText string        `json:"output_text"`
	ProducedAt time.Time     `json:"produced_at"`
	Duration   time.Duration `json:"duration_ns"`
	ToolCalls  int           `json:"tool_calls"`
}
