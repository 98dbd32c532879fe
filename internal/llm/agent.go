package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/ppiankov/verifact/internal/metrics"
)

// ErrIterationBudget is returned when the backend keeps requesting tools and
// still produces no answer after the forced final turn
var ErrIterationBudget = errors.New("agent exhausted its tool-call budget without an answer")

const finalTurnPrompt = "You have used all available tool calls. Using only the evidence gathered so far, produce your final answer now."

// AgentTool is a tool the agent may call: a definition for the backend and a
// function that runs it. Call never fails; problems are reported in the returned text.
type AgentTool struct {
	Definition ToolDefinition
	Call       func(ctx context.Context, arguments string) string
}

// Task is one unit of agent work
type Task struct {
	System string
	Prompt string
	Tools  []AgentTool
}

// Outcome is the agent's final answer and bookkeeping
type Outcome struct {
	Text       string
	ToolCalls  int
	Iterations int
	TokensUsed int
}

// ToolAgent drives a tool-calling conversation with a Provider until the
// backend answers without requesting tools, bounded by maxIterations rounds.
type ToolAgent struct {
	provider      Provider
	maxIterations int
	maxTokens     int
	temperature   float32
	logger        *zap.Logger
}

// NewToolAgent creates an agent on top of provider
func NewToolAgent(provider Provider, config Config, logger *zap.Logger) *ToolAgent {
	if logger == nil {
		logger = zap.NewNop()
	}
	iterations := config.MaxIterations
	if iterations <= 0 {
		iterations = DefaultConfig().MaxIterations
	}
	return &ToolAgent{
		provider:      provider,
		maxIterations: iterations,
		maxTokens:     config.MaxTokens,
		temperature:   config.Temperature,
		logger:        logger.With(zap.String("component", "agent"), zap.String("provider", provider.Name())),
	}
}

// Provider returns the backend the agent talks to
func (a *ToolAgent) Provider() Provider {
	return a.provider
}

// Execute runs the task. Any backend error ends the task with that error.
func (a *ToolAgent) Execute(ctx context.Context, task Task) (*Outcome, error) {
	byName := make(map[string]AgentTool, len(task.Tools))
	defs := make([]ToolDefinition, 0, len(task.Tools))
	for _, t := range task.Tools {
		byName[t.Definition.Name] = t
		defs = append(defs, t.Definition)
	}

	messages := []Message{{Role: RoleUser, Content: task.Prompt}}
	outcome := &Outcome{}

	for outcome.Iterations < a.maxIterations {
		outcome.Iterations++

		resp, err := a.complete(ctx, Request{
			System:      task.System,
			Messages:    messages,
			Tools:       defs,
			MaxTokens:   a.maxTokens,
			Temperature: a.temperature,
		})
		if err != nil {
			return nil, err
		}
		outcome.TokensUsed += resp.TokensUsed

		if len(resp.ToolCalls) == 0 {
			if resp.Content == "" {
				return nil, ErrEmptyResponse
			}
			outcome.Text = resp.Content
			return outcome, nil
		}

		messages = append(messages, Message{Role: RoleAssistant, Content: resp.Content, ToolCalls: resp.ToolCalls})
		for _, call := range resp.ToolCalls {
			outcome.ToolCalls++
			messages = append(messages, Message{
				Role:       RoleTool,
				ToolCallID: call.ID,
				Content:    a.runTool(ctx, byName, call),
			})
		}
	}

	// Budget spent: one last turn with calls disabled. The tools stay advertised
	// because the history holds tool calls and results.
	messages = append(messages, Message{Role: RoleUser, Content: finalTurnPrompt})
	resp, err := a.complete(ctx, Request{
		System:      task.System,
		Messages:    messages,
		Tools:       defs,
		ToolChoice:  ToolChoiceNone,
		MaxTokens:   a.maxTokens,
		Temperature: a.temperature,
	})
	if err != nil {
		return nil, err
	}
	outcome.TokensUsed += resp.TokensUsed
	if resp.Content == "" {
		return nil, ErrIterationBudget
	}
	outcome.Text = resp.Content
	return outcome, nil
}

func (a *ToolAgent) complete(ctx context.Context, req Request) (*Response, error) {
	resp, err := a.provider.Complete(ctx, req)
	if err != nil {
		metrics.RecordLLMRequest(a.provider.Name(), "error", 0)
		return nil, err
	}
	metrics.RecordLLMRequest(a.provider.Name(), "ok", resp.TokensUsed)
	return resp, nil
}

func (a *ToolAgent) runTool(ctx context.Context, tools map[string]AgentTool, call ToolCall) string {
	tool, ok := tools[call.Name]
	if !ok {
		a.logger.Warn("backend requested unknown tool", zap.String("tool", call.Name))
		return fmt.Sprintf("Error: tool %q is not available", call.Name)
	}

	a.logger.Debug("tool call", zap.String("tool", call.Name), zap.String("arguments", call.Arguments))
	return tool.Call(ctx, call.Arguments)
}

// ArgumentString extracts a string argument from a tool-call arguments object.
// Backends occasionally send a bare string or rename the field; in those cases
// the raw text or the object's only string value is used.
func ArgumentString(arguments, name string) (string, error) {
	arguments = strings.TrimSpace(arguments)
	if arguments == "" {
		return "", fmt.Errorf("missing argument %q", name)
	}
	if !gjson.Valid(arguments) {
		return arguments, nil
	}

	parsed := gjson.Parse(arguments)
	switch {
	case parsed.Type == gjson.String:
		return parsed.String(), nil
	case !parsed.IsObject():
		return "", fmt.Errorf("arguments must be an object, got %s", parsed.Type)
	}

	if v := parsed.Get(name); v.Exists() && v.Type == gjson.String {
		return v.String(), nil
	}

	var values []string
	parsed.ForEach(func(_, value gjson.Result) bool {
		if value.Type == gjson.String {
			values = append(values, value.String())
		}
		return true
	})
	if len(values) == 1 {
		return values[0], nil
	}
	return "", fmt.Errorf("missing argument %q", name)
}
