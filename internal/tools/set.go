package tools

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/ppiankov/verifact/internal/cache"
	"github.com/ppiankov/verifact/internal/model"
	"github.com/ppiankov/verifact/internal/util"
	"github.com/ppiankov/verifact/internal/validate"
	"github.com/ppiankov/verifact/internal/worker"
)

// Set is the capability set of evidence tools available to a pipeline.
// It is computed once at construction and never changes.
type Set struct {
	byID  map[model.ToolID]Tool
	order []model.ToolID
}

// NewSet builds a set from tools; later duplicates of an ID are ignored
func NewSet(tools ...Tool) *Set {
	s := &Set{byID: make(map[model.ToolID]Tool, len(tools))}
	for _, t := range tools {
		id := t.Spec().ID
		if _, dup := s.byID[id]; dup {
			continue
		}
		s.byID[id] = t
		s.order = append(s.order, id)
	}
	return s
}

// Options carries shared infrastructure for BuildSet
type Options struct {
	Transport http.RoundTripper             // nil: built from the HTTP config
	Limiter   *worker.HostLimiter           // nil: no per-host pacing
	Authority *validate.AuthorityClassifier // nil: built from the authority config
	Logger    *zap.Logger
}

// BuildSet creates the tools the configuration allows. The web search tool is
// only included when a search credential is present. An error means a tool
// that should exist could not be initialized.
func BuildSet(cfg *model.Config, opts Options) (*Set, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	authority := opts.Authority
	if authority == nil {
		authority = validate.NewAuthorityClassifier(&cfg.Authority, logger)
	}

	transport := opts.Transport
	if transport == nil {
		// One connection pool for every tool
		transport = util.NewTransport(cfg.HTTP)
	}

	web := NewWebPageFetcher(cfg.HTTP, transport, opts.Limiter, logger)

	video, err := NewTranscriptFetcher(cfg.Video, cfg.HTTP, transport, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", model.ToolVideoTranscript, err)
	}

	tools := []Tool{video, web}

	if cfg.HasSearchCredential() {
		search, err := NewSearchFetcher(cfg.Search, cfg.HTTP, transport, authority, logger)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", model.ToolWebSearch, err)
		}
		tools = append(tools, search)
	} else {
		logger.Info("web search tool disabled: no search credential configured")
	}

	return NewSet(tools...), nil
}

// Get returns the tool with the given ID
func (s *Set) Get(id model.ToolID) (Tool, bool) {
	t, ok := s.byID[id]
	return t, ok
}

// Has reports whether the tool is available
func (s *Set) Has(id model.ToolID) bool {
	_, ok := s.byID[id]
	return ok
}

// IDs returns available tool IDs in registration order
func (s *Set) IDs() []model.ToolID {
	return append([]model.ToolID(nil), s.order...)
}

// Specs returns the spec of every available tool in registration order
func (s *Set) Specs() []Spec {
	specs := make([]Spec, 0, len(s.order))
	for _, id := range s.order {
		specs = append(specs, s.byID[id].Spec())
	}
	return specs
}

// Resolve returns the tools a stage may use. A missing required tool is an
// error wrapping ErrToolUnavailable; missing preferred tools are skipped.
func (s *Set) Resolve(required, preferred []model.ToolID) ([]Tool, []model.ToolID, error) {
	var (
		out     []Tool
		skipped []model.ToolID
		seen    = make(map[model.ToolID]bool)
	)

	for _, id := range required {
		t, ok := s.byID[id]
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrToolUnavailable, id)
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, t)
		}
	}
	for _, id := range preferred {
		t, ok := s.byID[id]
		if !ok {
			skipped = append(skipped, id)
			continue
		}
		if !seen[id] {
			seen[id] = true
			out = append(out, t)
		}
	}

	return out, skipped, nil
}

// ForRun returns a copy of the set whose tools share memo and record metrics.
// memo may be nil to disable deduplication.
func (s *Set) ForRun(memo cache.Memo[Result]) *Set {
	wrapped := make([]Tool, 0, len(s.order))
	for _, id := range s.order {
		wrapped = append(wrapped, Instrument(s.byID[id], memo))
	}
	return NewSet(wrapped...)
}
