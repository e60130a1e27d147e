package checks

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certverify/internal/common/logger"
)

// stubCheck returns a fixed result or failure mode.
type stubCheck struct {
	name   string
	hint   float64
	result Result
	err    error
	panics bool
}

func (s *stubCheck) Name() string { return s.name }

func (s *stubCheck) WeightHint() float64 { return s.hint }

func (s *stubCheck) Run(_ context.Context, _ *Input) (Result, error) {
	if s.panics {
		panic("boom")
	}
	return s.result, s.err
}

func newTestOrchestrator(t *testing.T, checks ...Check) *Orchestrator {
	t.Helper()
	reg := NewRegistry()
	for _, c := range checks {
		require.NoError(t, reg.Register(c))
	}
	return NewOrchestrator(reg, logger.NewNoOpLogger())
}

func fullSuiteStubs(score float64) []Check {
	names := []string{
		CheckColor, CheckELA, CheckMetadata, CheckStructure,
		CheckSignatureImage, CheckPHash, CheckTextField, CheckFingerprint,
	}
	out := make([]Check, len(names))
	for i, n := range names {
		c := &stubCheck{name: n, result: Result{"score": score}}
		if n == CheckMetadata {
			c.hint = metadataWeight
		}
		out[i] = c
	}
	return out
}

func TestRunAllPerfectScores(t *testing.T) {
	o := newTestOrchestrator(t, fullSuiteStubs(100)...)
	report := o.Run(context.Background(), &Input{})

	assert.InDelta(t, 100.0, report.FinalScore, 1e-9)
	assert.Equal(t, VerdictOriginal, report.FinalVerdict)
	assert.Len(t, report.PerCheck, 8)
}

func TestRunAllVerdictBands(t *testing.T) {
	tests := []struct {
		score   float64
		verdict string
	}{
		{80, VerdictOriginal},
		{75, VerdictOriginal},
		{74.9, VerdictSuspicious},
		{50, VerdictSuspicious},
		{45, VerdictSuspicious},
		{44.9, VerdictFake},
		{20, VerdictFake},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("score_%.1f", tt.score), func(t *testing.T) {
			o := newTestOrchestrator(t, fullSuiteStubs(tt.score)...)
			report := o.Run(context.Background(), &Input{})
			assert.InDelta(t, tt.score, report.FinalScore, 1e-9)
			assert.Equal(t, tt.verdict, report.FinalVerdict)
		})
	}
}

func TestRunAllIsolatesFailures(t *testing.T) {
	checks := fullSuiteStubs(100)
	checks[0] = &stubCheck{name: CheckColor, err: fmt.Errorf("lens cap on")}
	checks[1] = &stubCheck{name: CheckELA, panics: true}

	o := newTestOrchestrator(t, checks...)
	report := o.Run(context.Background(), &Input{})

	assert.Len(t, report.PerCheck, 8, "broken checks must not abort the suite")
	assert.NotEmpty(t, report.PerCheck[CheckColor].Error)
	assert.NotEmpty(t, report.PerCheck[CheckELA].Error)
	assert.Zero(t, report.PerCheck[CheckColor].NormalizedScore)
	assert.Zero(t, report.PerCheck[CheckELA].NormalizedScore)

	// The remaining six checks still contribute their full weight.
	for _, name := range []string{CheckMetadata, CheckStructure, CheckSignatureImage, CheckPHash, CheckTextField, CheckFingerprint} {
		assert.InDelta(t, 100.0, report.PerCheck[name].NormalizedScore, 1e-9, name)
	}
	assert.Less(t, report.FinalScore, 100.0)
	assert.Greater(t, report.FinalScore, 0.0)
}

func TestRunAllMetadataCriticalInReason(t *testing.T) {
	checks := fullSuiteStubs(100)
	checks[2] = &stubCheck{name: CheckMetadata, hint: metadataWeight, result: Result{
		"verdict":     VerdictFake,
		"final_score": float64(0),
	}}

	o := newTestOrchestrator(t, checks...)
	report := o.Run(context.Background(), &Input{})

	assert.Contains(t, report.OverallReason, "Critical issues")
	assert.Contains(t, report.OverallReason, CheckMetadata)
	// Metadata is half the total weight, so killing it halves the score.
	assert.InDelta(t, 50.0, report.FinalScore, 1e-9)
}

func TestRunAllCorroborationNote(t *testing.T) {
	checks := fullSuiteStubs(100)
	for i := 0; i < 5; i++ {
		checks[i] = &stubCheck{name: checks[i].Name(), hint: checks[i].WeightHint(), result: Result{
			"verdict": VerdictSuspicious,
			"score":   float64(55),
		}}
	}
	o := newTestOrchestrator(t, checks...)
	report := o.Run(context.Background(), &Input{})

	assert.Contains(t, report.OverallReason, "corroborating")
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(&stubCheck{name: CheckELA}))
	assert.Error(t, reg.Register(&stubCheck{name: CheckELA}))
	assert.Equal(t, []string{CheckELA}, reg.Names())
}
