package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/verifact/internal/cache"
	"github.com/ppiankov/verifact/internal/input"
	"github.com/ppiankov/verifact/internal/llm"
	"github.com/ppiankov/verifact/internal/metrics"
	"github.com/ppiankov/verifact/internal/model"
	"github.com/ppiankov/verifact/internal/tools"
	"github.com/ppiankov/verifact/internal/verdict"
)

// Agent executes one stage task against the reasoning backend
type Agent interface {
	Execute(ctx context.Context, task llm.Task) (*llm.Outcome, error)
}

// Event is a state transition of one run
type Event struct {
	RunID string
	State model.RunState
	Stage model.StageName // Stage being entered, or the failed stage
	Err   error           // Set on StateFailed
	At    time.Time
}

// Observer receives run state transitions. It is called synchronously.
type Observer func(Event)

// Option configures a Pipeline
type Option func(*Pipeline)

// WithAgent replaces the LLM-backed stage agent
func WithAgent(agent Agent) Option {
	return func(p *Pipeline) { p.agent = agent }
}

// WithTools replaces the capability set built from configuration
func WithTools(set *tools.Set) Option {
	return func(p *Pipeline) { p.tools = set }
}

// WithToolOptions sets the shared infrastructure used to build the capability set
func WithToolOptions(opts tools.Options) Option {
	return func(p *Pipeline) { p.toolOpts = opts }
}

// WithStages replaces the default stage chain
func WithStages(stages []model.Stage) Option {
	return func(p *Pipeline) { p.stages = stages }
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

// WithObserver registers a state transition hook
func WithObserver(obs Observer) Option {
	return func(p *Pipeline) { p.observer = obs }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// Pipeline runs the stage chain over canonical input text.
// It holds no per-run state and is safe for concurrent runs.
type Pipeline struct {
	config     *model.Config
	agent      Agent
	tools      *tools.Set
	toolOpts   tools.Options
	stages     []model.Stage
	chain      *Chain
	stageTools map[model.StageName][]model.ToolID
	provider   string
	model      string
	observer   Observer
	now        func() time.Time
	logger     *zap.Logger
}

// Result is the outcome of a completed run
type Result struct {
	RunID      string
	Verdict    model.Verdict
	ReportText string
	Stages     []model.StageResult
	StartedAt  time.Time
	FinishedAt time.Time
}

// New validates configuration and builds a pipeline. It fails with
// ErrConfiguration when no reasoning backend credential is configured and
// with ErrToolBackendUnavailable when a stage's required tool is missing.
func New(cfg *model.Config, opts ...Option) (*Pipeline, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: no configuration", ErrConfiguration)
	}

	p := &Pipeline{
		config: cfg,
		stages: DefaultStages(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	p.logger = p.logger.With(zap.String("component", "pipeline"))

	if !cfg.HasLLMCredential() {
		return nil, fmt.Errorf("%w: %s is not set", ErrConfiguration, llm.APIKeyEnv(cfg.LLM.Provider))
	}

	llmConfig := llm.ConfigFromModel(cfg)
	if p.agent == nil {
		provider, err := llm.NewProvider(llmConfig)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		p.agent = llm.NewToolAgent(provider, llmConfig, p.logger)
	}
	p.provider, p.model = llmConfig.Provider, llmConfig.Model
	if backed, ok := p.agent.(interface{ Provider() llm.Provider }); ok {
		p.provider, p.model = backed.Provider().Name(), backed.Provider().Model()
	}

	chain, err := NewChain(p.stages)
	if err != nil {
		return nil, err
	}
	p.chain = chain

	if p.tools == nil {
		if p.toolOpts.Logger == nil {
			p.toolOpts.Logger = p.logger
		}
		set, err := tools.BuildSet(cfg, p.toolOpts)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrToolBackendUnavailable, err)
		}
		p.tools = set
	}

	p.stageTools = make(map[model.StageName][]model.ToolID, chain.Len())
	for _, st := range chain.Stages() {
		resolved, skipped, err := p.tools.Resolve(st.RequiredTools, st.PreferredTools)
		if err != nil {
			return nil, fmt.Errorf("%w: stage %s: %w", ErrToolBackendUnavailable, st.Name, err)
		}
		for _, id := range skipped {
			p.logger.Debug("preferred tool not available",
				zap.String("stage", string(st.Name)),
				zap.String("tool", string(id)))
		}
		ids := make([]model.ToolID, 0, len(resolved))
		for _, t := range resolved {
			ids = append(ids, t.Spec().ID)
		}
		p.stageTools[st.Name] = ids
	}

	return p, nil
}

// Tools returns the capability set the pipeline was built with
func (p *Pipeline) Tools() *tools.Set {
	return p.tools
}

// Run executes every stage in order over text. Any stage error ends the run
// with a *StageError; no later stage runs and no verdict is produced.
func (p *Pipeline) Run(ctx context.Context, text string) (*Result, error) {
	if strings.TrimSpace(text) == "" {
		return nil, input.ErrEmptyInput
	}

	res := &Result{
		RunID:     uuid.NewString(),
		StartedAt: p.now().UTC(),
	}
	logger := p.logger.With(zap.String("run_id", res.RunID))

	// Memo lives for this run only
	memo := cache.NewRunMemo[tools.Result]()
	defer memo.Flush()
	runTools := p.tools.ForRun(memo)

	stages := p.chain.Stages()
	order := make([]model.StageName, len(stages))
	for i, st := range stages {
		order[i] = st.Name
	}
	pctx := NewContext(order)

	for _, st := range stages {
		p.emit(Event{RunID: res.RunID, State: model.RunState(st.Name), Stage: st.Name})

		stageResult, err := p.runStage(ctx, st, text, pctx, runTools, logger)
		if err == nil {
			err = pctx.Append(stageResult)
		}
		if err != nil {
			stageErr := &StageError{Stage: st.Name, Err: err}
			logger.Warn("run failed", zap.String("stage", string(st.Name)), zap.Error(err))
			p.emit(Event{RunID: res.RunID, State: model.StateFailed, Stage: st.Name, Err: stageErr})
			metrics.RecordRun(string(model.StateFailed), p.now().Sub(res.StartedAt))
			return nil, stageErr
		}
	}

	res.Stages = pctx.Results()
	res.ReportText = res.Stages[len(res.Stages)-1].OutputText
	res.Verdict = verdict.Classify(res.ReportText)
	res.FinishedAt = p.now().UTC()

	hits, misses := memo.Stats()
	logger.Info("run complete",
		zap.String("verdict", string(res.Verdict)),
		zap.Duration("duration", res.FinishedAt.Sub(res.StartedAt)),
		zap.Int64("memo_hits", hits),
		zap.Int64("memo_misses", misses))

	metrics.RecordVerdict(string(res.Verdict))
	metrics.RecordRun(string(model.StateComplete), res.FinishedAt.Sub(res.StartedAt))
	p.emit(Event{RunID: res.RunID, State: model.StateComplete})

	return res, nil
}

// Verify runs the pipeline over a normalized input and assembles the full report
func (p *Pipeline) Verify(ctx context.Context, in model.CanonicalInput) (*model.Report, error) {
	res, err := p.Run(ctx, in.ResolvedText)
	if err != nil {
		return nil, err
	}
	return p.Report(in, res), nil
}

// Report assembles the report for a completed run
func (p *Pipeline) Report(in model.CanonicalInput, res *Result) *model.Report {
	return &model.Report{
		RunID:          res.RunID,
		Input:          in,
		Verdict:        res.Verdict,
		Display:        res.Verdict.Display(),
		ReportText:     res.ReportText,
		Stages:         res.Stages,
		StartedAt:      res.StartedAt,
		FinishedAt:     res.FinishedAt,
		Provider:       p.provider,
		Model:          p.model,
		ToolsAvailable: p.tools.IDs(),
	}
}

func (p *Pipeline) runStage(ctx context.Context, st model.Stage, text string, pctx *Context, runTools *tools.Set, logger *zap.Logger) (model.StageResult, error) {
	if err := ctx.Err(); err != nil {
		return model.StageResult{}, err
	}

	task := llm.Task{
		System: systemPrompt(st),
		Prompt: stagePrompt(st, text, pctx.Select(st.DependsOn)),
	}
	for _, id := range p.stageTools[st.Name] {
		if t, ok := runTools.Get(id); ok {
			task.Tools = append(task.Tools, agentTool(t))
		}
	}

	start := p.now()
	logger.Debug("stage started", zap.String("stage", string(st.Name)), zap.Int("tools", len(task.Tools)))

	outcome, err := p.agent.Execute(ctx, task)
	if err != nil {
		return model.StageResult{}, err
	}
	if strings.TrimSpace(outcome.Text) == "" {
		return model.StageResult{}, llm.ErrEmptyResponse
	}

	elapsed := p.now().Sub(start)
	metrics.RecordStage(string(st.Name), elapsed, outcome.ToolCalls)
	logger.Debug("stage complete",
		zap.String("stage", string(st.Name)),
		zap.Duration("duration", elapsed),
		zap.Int("tool_calls", outcome.ToolCalls),
		zap.Int("tokens", outcome.TokensUsed))

	return model.StageResult{
		Stage:      st.Name,
		OutputText: outcome.Text,
		ProducedAt: p.now().UTC(),
		Duration:   elapsed,
		ToolCalls:  outcome.ToolCalls,
	}, nil
}

func (p *Pipeline) emit(ev Event) {
	if p.observer == nil {
		return
	}
	ev.At = p.now().UTC()
	p.observer(ev)
}

// agentTool exposes an evidence tool to the agent loop
func agentTool(t tools.Tool) llm.AgentTool {
	spec := t.Spec()
	return llm.AgentTool{
		Definition: llm.ToolDefinition{
			Name:        string(spec.ID),
			Description: spec.Name + ": " + spec.Description,
			Parameters:  llm.StringParameter(spec.Argument, spec.ArgumentDoc),
		},
		Call: func(ctx context.Context, arguments string) string {
			reference, err := llm.ArgumentString(arguments, spec.Argument)
			if err != nil {
				return fmt.Sprintf("Error: %v", err)
			}
			return t.Invoke(ctx, reference).String()
		},
	}
}

func systemPrompt(st model.Stage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a %s.\nYour goal: %s.\n", st.Role, st.Goal)
	b.WriteString("Base every statement on the content and evidence you were given or fetched. ")
	b.WriteString("When a tool returns an error, say the evidence is unavailable instead of guessing.")
	return b.String()
}

func stagePrompt(st model.Stage, text string, prior []model.StageResult) string {
	var b strings.Builder
	b.WriteString(st.Task)
	b.WriteString("\n\nContent to verify:\n")
	b.WriteString(text)
	b.WriteString("\n")

	if len(prior) > 0 {
		b.WriteString("\nFindings from earlier stages:\n")
		for _, r := range prior {
			fmt.Fprintf(&b, "\n## %s\n%s\n", r.Stage, r.OutputText)
		}
	}

	if st.ExpectedOutput != "" {
		fmt.Fprintf(&b, "\nExpected output: %s\n", st.ExpectedOutput)
	}
	return b.String()
}
