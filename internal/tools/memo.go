package tools

import (
	"context"
	"strings"
	"time"

	"github.com/ppiankov/verifact/internal/cache"
	"github.com/ppiankov/verifact/internal/metrics"
)

type instrumentedTool struct {
	inner Tool
	memo  cache.Memo[Result]
}

// Instrument wraps t so that every call is counted and, when memo is not nil,
// successful results are reused for identical references.
func Instrument(t Tool, memo cache.Memo[Result]) Tool {
	return &instrumentedTool{inner: t, memo: memo}
}

func (t *instrumentedTool) Spec() Spec {
	return t.inner.Spec()
}

func (t *instrumentedTool) Invoke(ctx context.Context, reference string) Result {
	id := string(t.inner.Spec().ID)
	key := cache.MemoKey(id, strings.TrimSpace(reference))

	if t.memo != nil {
		if res, ok := t.memo.Get(key); ok {
			metrics.RecordToolInvocation(id, metrics.OutcomeCached, 0)
			return res
		}
	}

	start := time.Now()
	res := t.inner.Invoke(ctx, reference)
	elapsed := time.Since(start)

	if !res.Success {
		metrics.RecordToolInvocation(id, metrics.OutcomeError, elapsed)
		return res
	}

	metrics.RecordToolInvocation(id, metrics.OutcomeSuccess, elapsed)
	if t.memo != nil {
		t.memo.Set(key, res)
	}
	return res
}
