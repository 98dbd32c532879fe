package metrics

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordToolInvocation(t *testing.T) {
	before := testutil.ToFloat64(ToolInvocations.WithLabelValues("web_page", OutcomeSuccess))
	cachedBefore := testutil.ToFloat64(ToolInvocations.WithLabelValues("web_page", OutcomeCached))

	RecordToolInvocation("web_page", OutcomeSuccess, 120*time.Millisecond)
	RecordToolInvocation("web_page", OutcomeCached, 0)

	assert.Equal(t, before+1, testutil.ToFloat64(ToolInvocations.WithLabelValues("web_page", OutcomeSuccess)))
	assert.Equal(t, cachedBefore+1, testutil.ToFloat64(ToolInvocations.WithLabelValues("web_page", OutcomeCached)))
}

func TestRecordRunAndVerdict(t *testing.T) {
	runs := testutil.ToFloat64(RunsTotal.WithLabelValues("complete"))
	verdicts := testutil.ToFloat64(VerdictsTotal.WithLabelValues("FALSE"))

	RecordRun("complete", 3*time.Second)
	RecordVerdict("FALSE")

	assert.Equal(t, runs+1, testutil.ToFloat64(RunsTotal.WithLabelValues("complete")))
	assert.Equal(t, verdicts+1, testutil.ToFloat64(VerdictsTotal.WithLabelValues("FALSE")))
}

func TestRecordLLMRequest(t *testing.T) {
	tokens := testutil.ToFloat64(LLMTokens.WithLabelValues("openai"))

	RecordLLMRequest("openai", "ok", 250)
	RecordLLMRequest("openai", "error", 0)

	assert.Equal(t, tokens+250, testutil.ToFloat64(LLMTokens.WithLabelValues("openai")))
}

func TestDump(t *testing.T) {
	RecordStage("research", 2*time.Second, 3)

	var buf bytes.Buffer
	require.NoError(t, Dump(&buf))

	out := buf.String()
	assert.True(t, strings.Contains(out, "verifact_stage_duration_seconds"), "missing stage histogram in dump")
	assert.True(t, strings.Contains(out, `stage="research"`), "missing stage label in dump")
}
