package model

import "time"

// Report is the complete outcome of one verification run
type Report struct {
	RunID          string         `json:"run_id"`
	Input          CanonicalInput `json:"input"`
	Verdict        Verdict        `json:"verdict"`
	Display        VerdictDisplay `json:"display"`
	ReportText     string         `json:"report_text"`  // Terminal stage output, verbatim
	Stages         []StageResult  `json:"stages"`       // In execution order
	StartedAt      time.Time      `json:"started_at"`
	FinishedAt     time.Time      `json:"finished_at"`
	Provider       string         `json:"provider"`
	Model          string         `json:"model"`
	ToolsAvailable []ToolID       `json:"tools_available"`
}

// Stage returns the recorded result for the named stage
func (r *Report) Stage(name StageName) (StageResult, bool) {
	for _, s := range r.Stages {
		if s.Stage == name {
			return s, true
		}
	}
	return StageResult{}, false
}
