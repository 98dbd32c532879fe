package pipeline

import (
	"fmt"

	"github.com/ppiankov/verifact/internal/model"
)

// Chain is an ordered, validated list of stages
type Chain struct {
	stages []model.Stage
}

// NewChain validates stage order. A stage may only depend on stages that run
// before it; self references, forward references and unknown names are rejected.
func NewChain(stages []model.Stage) (*Chain, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("%w: chain has no stages", ErrConfiguration)
	}

	seen := make(map[model.StageName]bool, len(stages))
	for i, st := range stages {
		if st.Name == "" {
			return nil, fmt.Errorf("%w: stage %d has no name", ErrConfiguration, i)
		}
		if seen[st.Name] {
			return nil, fmt.Errorf("%w: duplicate stage %s", ErrConfiguration, st.Name)
		}
		for _, dep := range st.DependsOn {
			if dep == st.Name {
				return nil, fmt.Errorf("%w: stage %s depends on itself", ErrConfiguration, st.Name)
			}
			if !seen[dep] {
				return nil, fmt.Errorf("%w: stage %s depends on %s, which does not run before it", ErrConfiguration, st.Name, dep)
			}
		}
		seen[st.Name] = true
	}

	return &Chain{stages: append([]model.Stage(nil), stages...)}, nil
}

// Stages returns a copy of the stages in execution order
func (c *Chain) Stages() []model.Stage {
	return append([]model.Stage(nil), c.stages...)
}

// Len returns the number of stages
func (c *Chain) Len() int {
	return len(c.stages)
}

// DefaultStages returns the research, content analysis and verification chain
func DefaultStages() []model.Stage {
	return []model.Stage{
		{
			Name: model.StageResearch,
			Role: "Fact Research Specialist",
			Goal: "Gather the raw material needed to check the submitted content",
			Task: "Identify every factual claim in the content below. When it is a web page URL, " +
				"fetch the page; when it is a video URL, fetch the transcript. Search for " +
				"independent sources that address each claim when a search tool is available.",
			ExpectedOutput: "A numbered list of the factual claims found, each with the evidence gathered for it and the sources used.",
			RequiredTools:  []model.ToolID{model.ToolVideoTranscript, model.ToolWebPage},
			PreferredTools: []model.ToolID{model.ToolWebSearch},
		},
		{
			Name: model.StageContentAnalysis,
			Role: "Content Analysis Expert",
			Goal: "Assess the structure, context and framing of the claims",
			Task: "Using the research findings, analyze each claim for missing context, selective " +
				"framing, statistical misuse and emotional language. Re-read the original source " +
				"when a claim needs checking against its surrounding text.",
			ExpectedOutput: "An analysis of each claim noting context problems, framing issues and which statements are verifiable.",
			RequiredTools:  []model.ToolID{model.ToolVideoTranscript, model.ToolWebPage},
			DependsOn:      []model.StageName{model.StageResearch},
		},
		{
			Name: model.StageVerification,
			Role: "Senior Fact Verification Analyst",
			Goal: "Deliver a clear, evidence-based verdict on the submitted content",
			Task: "Cross-check the claims against authoritative sources using the research and " +
				"analysis so far. Weigh source authority, state which claims hold and which do " +
				"not, and conclude with an overall verdict.",
			ExpectedOutput: "A verification report ending with one overall verdict: TRUE, MOSTLY TRUE, " +
				"MISLEADING, MOSTLY FALSE, FALSE or INCONCLUSIVE, followed by the key sources.",
			PreferredTools: []model.ToolID{model.ToolWebSearch},
			DependsOn:      []model.StageName{model.StageResearch, model.StageContentAnalysis},
		},
	}
}
