package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/verifact/internal/input"
	"github.com/ppiankov/verifact/internal/llm"
	"github.com/ppiankov/verifact/internal/model"
	"github.com/ppiankov/verifact/internal/tools"
)

// fakeAgent answers each stage in turn, optionally failing on one call
type fakeAgent struct {
	mu      sync.Mutex
	answers []string
	failOn  int // 1-based call number, 0 never
	failErr error
	onTask  func(ctx context.Context, task llm.Task)
	tasks   []llm.Task
}

func (a *fakeAgent) Execute(ctx context.Context, task llm.Task) (*llm.Outcome, error) {
	a.mu.Lock()
	a.tasks = append(a.tasks, task)
	n := len(a.tasks)
	a.mu.Unlock()

	if a.onTask != nil {
		a.onTask(ctx, task)
	}
	if n == a.failOn {
		return nil, a.failErr
	}
	answer := fmt.Sprintf("stage %d output", n)
	if n <= len(a.answers) {
		answer = a.answers[n-1]
	}
	return &llm.Outcome{Text: answer, Iterations: 1}, nil
}

type stubTool struct {
	id    model.ToolID
	calls atomic.Int32
}

func (s *stubTool) Spec() tools.Spec {
	return tools.Spec{ID: s.id, Name: string(s.id), Description: "stub", Argument: "url", ArgumentDoc: "target"}
}

func (s *stubTool) Invoke(_ context.Context, reference string) tools.Result {
	s.calls.Add(1)
	return tools.Ok(s.id, "evidence for "+reference)
}

func testConfig() *model.Config {
	cfg := model.DefaultConfig()
	cfg.LLM.APIKey = "test-key"
	return cfg
}

func stubSet(ids ...model.ToolID) (*tools.Set, map[model.ToolID]*stubTool) {
	byID := make(map[model.ToolID]*stubTool, len(ids))
	list := make([]tools.Tool, 0, len(ids))
	for _, id := range ids {
		st := &stubTool{id: id}
		byID[id] = st
		list = append(list, st)
	}
	return tools.NewSet(list...), byID
}

func toolNames(task llm.Task) []string {
	names := make([]string, 0, len(task.Tools))
	for _, t := range task.Tools {
		names = append(names, t.Definition.Name)
	}
	return names
}

func TestPipeline_RunsStagesInOrder(t *testing.T) {
	agent := &fakeAgent{answers: []string{
		"research notes",
		"analysis notes",
		"Overall the claim is FALSE.",
	}}
	set, _ := stubSet(model.ToolVideoTranscript, model.ToolWebPage)

	var events []Event
	p, err := New(testConfig(),
		WithAgent(agent),
		WithTools(set),
		WithObserver(func(ev Event) { events = append(events, ev) }),
	)
	require.NoError(t, err)

	res, err := p.Run(context.Background(), "The moon is made of cheese.")
	require.NoError(t, err)

	assert.Equal(t, model.VerdictFalse, res.Verdict)
	assert.Equal(t, "Overall the claim is FALSE.", res.ReportText)
	assert.NotEmpty(t, res.RunID)
	require.Len(t, res.Stages, 3)
	assert.Equal(t, model.StageResearch, res.Stages[0].Stage)
	assert.Equal(t, model.StageContentAnalysis, res.Stages[1].Stage)
	assert.Equal(t, model.StageVerification, res.Stages[2].Stage)

	states := make([]model.RunState, 0, len(events))
	for _, ev := range events {
		states = append(states, ev.State)
	}
	assert.Equal(t, []model.RunState{
		model.StateResearch,
		model.StateContentAnalysis,
		model.StateVerification,
		model.StateComplete,
	}, states)

	require.Len(t, agent.tasks, 3)
	assert.Contains(t, agent.tasks[0].Prompt, "The moon is made of cheese.")
	assert.NotContains(t, agent.tasks[0].Prompt, "Findings from earlier stages")

	assert.Contains(t, agent.tasks[1].Prompt, "research notes")
	assert.NotContains(t, agent.tasks[1].Prompt, "analysis notes")

	assert.Contains(t, agent.tasks[2].Prompt, "research notes")
	assert.Contains(t, agent.tasks[2].Prompt, "analysis notes")
	assert.Less(t, strings.Index(agent.tasks[2].Prompt, "research notes"), strings.Index(agent.tasks[2].Prompt, "analysis notes"))
}

func TestPipeline_StageFailureIsTerminal(t *testing.T) {
	cause := errors.New("backend timeout")
	agent := &fakeAgent{failOn: 2, failErr: cause}
	set, _ := stubSet(model.ToolVideoTranscript, model.ToolWebPage)

	var last Event
	p, err := New(testConfig(), WithAgent(agent), WithTools(set), WithObserver(func(ev Event) { last = ev }))
	require.NoError(t, err)

	res, err := p.Run(context.Background(), "claim")
	assert.Nil(t, res)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrPipelineFailed)
	assert.ErrorIs(t, err, cause)

	var stageErr *StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, model.StageContentAnalysis, stageErr.Stage)

	assert.Len(t, agent.tasks, 2, "verification must not run after a failure")
	assert.Equal(t, model.StateFailed, last.State)
	assert.Equal(t, model.StageContentAnalysis, last.Stage)
}

func TestPipeline_EmptyStageOutputFails(t *testing.T) {
	agent := &fakeAgent{answers: []string{"notes", "   "}}
	set, _ := stubSet(model.ToolVideoTranscript, model.ToolWebPage)

	p, err := New(testConfig(), WithAgent(agent), WithTools(set))
	require.NoError(t, err)

	_, err = p.Run(context.Background(), "claim")
	assert.ErrorIs(t, err, ErrPipelineFailed)
	assert.ErrorIs(t, err, llm.ErrEmptyResponse)
}

func TestPipeline_CancelledContextStopsRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	agent := &fakeAgent{onTask: func(context.Context, llm.Task) { cancel() }}
	set, _ := stubSet(model.ToolVideoTranscript, model.ToolWebPage)

	p, err := New(testConfig(), WithAgent(agent), WithTools(set))
	require.NoError(t, err)

	_, err = p.Run(ctx, "claim")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, agent.tasks, 1)
}

func TestPipeline_EmptyInputRejected(t *testing.T) {
	set, _ := stubSet(model.ToolVideoTranscript, model.ToolWebPage)
	p, err := New(testConfig(), WithAgent(&fakeAgent{}), WithTools(set))
	require.NoError(t, err)

	_, err = p.Run(context.Background(), " \n\t")
	assert.ErrorIs(t, err, input.ErrEmptyInput)
}

func TestNew_RequiresLLMCredential(t *testing.T) {
	cfg := model.DefaultConfig()

	_, err := New(cfg)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "OPENAI_API_KEY")

	cfg.LLM.Provider = "anthropic"
	_, err = New(cfg)
	assert.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "ANTHROPIC_API_KEY")

	_, err = New(nil)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := testConfig()
	cfg.LLM.Provider = "mystery"

	_, err := New(cfg)
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestNew_MissingRequiredTool(t *testing.T) {
	set, _ := stubSet(model.ToolWebPage)

	_, err := New(testConfig(), WithAgent(&fakeAgent{}), WithTools(set))
	assert.ErrorIs(t, err, ErrToolBackendUnavailable)
	assert.ErrorIs(t, err, tools.ErrToolUnavailable)
}

func TestNew_RejectsForwardDependency(t *testing.T) {
	stages := DefaultStages()
	stages[0].DependsOn = []model.StageName{model.StageVerification}

	_, err := New(testConfig(), WithAgent(&fakeAgent{}), WithStages(stages))
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestPipeline_NoSearchWithoutCredential(t *testing.T) {
	agent := &fakeAgent{answers: []string{"a", "b", "TRUE"}}

	p, err := New(testConfig(), WithAgent(agent))
	require.NoError(t, err)

	assert.False(t, p.Tools().Has(model.ToolWebSearch))
	assert.True(t, p.Tools().Has(model.ToolWebPage))
	assert.True(t, p.Tools().Has(model.ToolVideoTranscript))

	_, err = p.Run(context.Background(), "claim")
	require.NoError(t, err)

	for _, task := range agent.tasks {
		assert.NotContains(t, toolNames(task), string(model.ToolWebSearch))
	}
	assert.Empty(t, agent.tasks[2].Tools, "verification only prefers search")
}

func TestPipeline_SearchOfferedWithCredential(t *testing.T) {
	cfg := testConfig()
	cfg.Search.APIKey = "serper-key"
	agent := &fakeAgent{}

	p, err := New(cfg, WithAgent(agent))
	require.NoError(t, err)

	_, err = p.Run(context.Background(), "claim")
	require.NoError(t, err)

	assert.Equal(t, []string{"video_transcript", "web_page", "web_search"}, toolNames(agent.tasks[0]))
	assert.Equal(t, []string{"video_transcript", "web_page"}, toolNames(agent.tasks[1]))
	assert.Equal(t, []string{"web_search"}, toolNames(agent.tasks[2]))
}

func TestPipeline_ToolCallsAreMemoizedPerRun(t *testing.T) {
	agent := &fakeAgent{onTask: func(ctx context.Context, task llm.Task) {
		for _, tool := range task.Tools {
			if tool.Definition.Name == string(model.ToolWebPage) {
				_ = tool.Call(ctx, `{"url":"https://example.com"}`)
				_ = tool.Call(ctx, `{"url":"https://example.com"}`)
			}
		}
	}}
	set, stubs := stubSet(model.ToolVideoTranscript, model.ToolWebPage)

	p, err := New(testConfig(), WithAgent(agent), WithTools(set))
	require.NoError(t, err)

	_, err = p.Run(context.Background(), "claim")
	require.NoError(t, err)
	// research and content analysis both call twice; one fetch per run
	assert.Equal(t, int32(1), stubs[model.ToolWebPage].calls.Load())

	_, err = p.Run(context.Background(), "claim")
	require.NoError(t, err)
	assert.Equal(t, int32(2), stubs[model.ToolWebPage].calls.Load(), "memo must not survive the run")
}

func TestPipeline_AgentToolArguments(t *testing.T) {
	var got []string
	agent := &fakeAgent{onTask: func(ctx context.Context, task llm.Task) {
		if len(got) > 0 {
			return
		}
		for _, tool := range task.Tools {
			if tool.Definition.Name == string(model.ToolWebPage) {
				got = append(got, tool.Call(ctx, `{"url":"https://a.example"}`))
				got = append(got, tool.Call(ctx, `[1,2]`))
			}
		}
	}}
	set, _ := stubSet(model.ToolVideoTranscript, model.ToolWebPage)

	p, err := New(testConfig(), WithAgent(agent), WithTools(set))
	require.NoError(t, err)
	_, err = p.Run(context.Background(), "claim")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "evidence for https://a.example", got[0])
	assert.True(t, strings.HasPrefix(got[1], "Error: "))
}

func TestPipeline_VerifyAssemblesReport(t *testing.T) {
	tick := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	agent := &fakeAgent{answers: []string{"a", "b", "This is misleading."}}
	set, _ := stubSet(model.ToolVideoTranscript, model.ToolWebPage)

	p, err := New(testConfig(), WithAgent(agent), WithTools(set), WithClock(clock))
	require.NoError(t, err)

	in := model.CanonicalInput{Kind: model.SourceText, RawReference: "claim", ResolvedText: "claim"}
	report, err := p.Verify(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, model.VerdictMisleading, report.Verdict)
	assert.Equal(t, "MISLEADING", report.Display.Label)
	assert.Equal(t, in, report.Input)
	assert.Equal(t, "openai", report.Provider)
	assert.Equal(t, "gpt-4o-mini", report.Model)
	assert.Equal(t, []model.ToolID{model.ToolVideoTranscript, model.ToolWebPage}, report.ToolsAvailable)
	assert.True(t, report.FinishedAt.After(report.StartedAt))
	assert.Equal(t, time.Second, report.Stages[0].Duration)
}
