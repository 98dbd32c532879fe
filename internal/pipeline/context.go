package pipeline

import (
	"fmt"

	"github.com/ppiankov/verifact/internal/model"
)

// Context is the append-only record of completed stages for one run.
// It is created empty at run start and owned by that run.
type Context struct {
	order   []model.StageName
	results map[model.StageName]model.StageResult
}

// NewContext creates an empty context for a chain of stages in order
func NewContext(order []model.StageName) *Context {
	return &Context{
		order:   append([]model.StageName(nil), order...),
		results: make(map[model.StageName]model.StageResult, len(order)),
	}
}

// Append records a stage result. A stage can be recorded once, and only
// after every stage ahead of it in the chain.
func (c *Context) Append(res model.StageResult) error {
	if _, dup := c.results[res.Stage]; dup {
		return fmt.Errorf("stage %s already recorded", res.Stage)
	}
	next := len(c.results)
	if next >= len(c.order) || c.order[next] != res.Stage {
		return fmt.Errorf("stage %s recorded out of order", res.Stage)
	}
	c.results[res.Stage] = res
	return nil
}

// Get returns the recorded result for a stage
func (c *Context) Get(name model.StageName) (model.StageResult, bool) {
	res, ok := c.results[name]
	return res, ok
}

// Len returns the number of recorded stages
func (c *Context) Len() int {
	return len(c.results)
}

// Results returns a copy of the recorded results in execution order
func (c *Context) Results() []model.StageResult {
	out := make([]model.StageResult, 0, len(c.results))
	for _, name := range c.order[:len(c.results)] {
		out = append(out, c.results[name])
	}
	return out
}

// Select returns copies of the results for names, in the given order, skipping unrecorded stages
func (c *Context) Select(names []model.StageName) []model.StageResult {
	out := make([]model.StageResult, 0, len(names))
	for _, name := range names {
		if res, ok := c.results[name]; ok {
			out = append(out, res)
		}
	}
	return out
}
