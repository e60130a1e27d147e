package checks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"certverify/internal/common/errors"
	"certverify/internal/common/logger"
	"certverify/internal/common/metrics"
	"certverify/internal/pdfutil"
)

// Verdict bands for the weighted aggregate.
const (
	VerdictBandOriginal   = 75.0
	VerdictBandSuspicious = 45.0
)

const (
	strongSignalScore  = 85.0
	criticalIssueScore = 30.0
	corroborationCount = 5
)

// negativeVerdicts mark a check as a critical issue regardless of score.
var negativeVerdicts = map[string]bool{
	VerdictFake:           true,
	VerdictNoMatch:        true,
	VerdictLikelyTampered: true,
	"TAMPERED":            true,
	"FAKE_SIGNATURE":      true,
}

// CheckReport is the scored outcome of one check inside an aggregate.
type CheckReport struct {
	Raw                  Result  `json:"raw"`
	NormalizedScore      float64 `json:"normalized_score"`
	Verdict              string  `json:"verdict"`
	Weight               float64 `json:"weight"`
	WeightedContribution float64 `json:"weighted_contribution"`
	Error                string  `json:"error,omitempty"`
}

// AggregateReport is the full forensic outcome for one document. Built once
// by the orchestrator, read-only afterwards.
type AggregateReport struct {
	FinalScore    float64                `json:"final_score"`
	FinalVerdict  string                 `json:"final_verdict"`
	OverallReason string                 `json:"overall_reason"`
	PerCheck      map[string]CheckReport `json:"per_check"`
}

// Orchestrator runs every registered check against a document and folds the
// normalized scores into one weighted verdict.
type Orchestrator struct {
	registry *Registry
	log      logger.Logger
}

func NewOrchestrator(registry *Registry, log logger.Logger) *Orchestrator {
	return &Orchestrator{registry: registry, log: log}
}

// RunAll prepares the shared input from the document and executes the full
// suite.
func (o *Orchestrator) RunAll(ctx context.Context, file *pdfutil.File, reference *pdfutil.File) *AggregateReport {
	return o.Run(ctx, o.prepareInput(file, reference))
}

// Run executes every registered check against a prepared input. Check
// failures and panics are isolated: a broken check contributes an error
// entry with score 0 and every other check still runs.
func (o *Orchestrator) Run(ctx context.Context, in *Input) *AggregateReport {
	checks := o.registry.Checks()
	weights := Weights(checks)

	var mu sync.Mutex
	reports := make(map[string]CheckReport, len(checks))

	g, gctx := errgroup.WithContext(ctx)
	for _, check := range checks {
		g.Go(func() error {
			start := time.Now()
			result, err := o.runIsolated(gctx, check, in)

			report := CheckReport{Raw: result, Weight: weights[check.Name()]}
			if err != nil {
				report.Error = err.Error()
				report.Verdict = "ERROR"
				metrics.CheckFailures.WithLabelValues(check.Name(), errors.CodeOf(err)).Inc()
				o.log.WithError(err).WithFields(map[string]interface{}{
					"check": check.Name(),
				}).Warn("forensic check failed")
			} else {
				report.NormalizedScore, report.Verdict = Normalize(result)
			}
			report.WeightedContribution = report.NormalizedScore / 100 * report.Weight
			metrics.CheckScore.WithLabelValues(check.Name()).Observe(report.NormalizedScore)

			o.log.WithFields(map[string]interface{}{
				"check":    check.Name(),
				"score":    report.NormalizedScore,
				"verdict":  report.Verdict,
				"duration": time.Since(start).String(),
			}).Debug("forensic check completed")

			mu.Lock()
			reports[check.Name()] = report
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return o.aggregate(reports)
}

// runIsolated invokes one check, converting panics into errors so a single
// misbehaving analyzer cannot take down the suite.
func (o *Orchestrator) runIsolated(ctx context.Context, check Check, in *Input) (result Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = errors.NewCheckFailedError(check.Name(), fmt.Errorf("panic: %v", r))
		}
	}()
	result, err = check.Run(ctx, in)
	if err == nil && result == nil {
		err = errors.NewCheckFailedError(check.Name(), fmt.Errorf("check returned no result"))
	}
	return result, err
}

func (o *Orchestrator) prepareInput(file *pdfutil.File, reference *pdfutil.File) *Input {
	in := &Input{File: file, Reference: reference}

	if text, err := file.Text(); err == nil {
		in.Text = text
	} else {
		o.log.WithError(err).Warn("text extraction failed")
	}
	if page, err := file.RenderPage(0); err == nil {
		in.Page = page
	} else {
		o.log.WithError(err).Warn("page render failed")
	}
	return in
}

func (o *Orchestrator) aggregate(reports map[string]CheckReport) *AggregateReport {
	totalWeightSum := 0.0
	weightedTotal := 0.0
	for _, rep := range reports {
		totalWeightSum += rep.Weight
		weightedTotal += rep.WeightedContribution
	}

	finalScore := 0.0
	if totalWeightSum > 0 {
		finalScore = 100 * weightedTotal / totalWeightSum
	}

	verdict := VerdictFake
	switch {
	case finalScore >= VerdictBandOriginal:
		verdict = VerdictOriginal
	case finalScore >= VerdictBandSuspicious:
		verdict = VerdictSuspicious
	}

	return &AggregateReport{
		FinalScore:    finalScore,
		FinalVerdict:  verdict,
		OverallReason: synthesizeReason(finalScore, verdict, reports),
		PerCheck:      reports,
	}
}

// synthesizeReason builds the human-readable justification from the score
// pattern rather than per-check templates.
func synthesizeReason(finalScore float64, verdict string, reports map[string]CheckReport) string {
	var strong, critical []string
	uncertain := 0

	names := make([]string, 0, len(reports))
	for name := range reports {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rep := reports[name]
		switch {
		case rep.Error != "":
			critical = append(critical, name)
		case rep.NormalizedScore <= criticalIssueScore || negativeVerdicts[rep.Verdict]:
			critical = append(critical, name)
		case rep.NormalizedScore >= strongSignalScore:
			strong = append(strong, name)
		}
		if rep.Verdict == VerdictSuspicious || rep.Verdict == VerdictUncertain {
			uncertain++
		}
	}

	var parts []string
	parts = append(parts, fmt.Sprintf("Overall verdict %s with aggregate score %.1f/100.", verdict, finalScore))
	if len(strong) > 0 {
		parts = append(parts, "Strong authenticity signals: "+strings.Join(strong, ", ")+".")
	}
	if len(critical) > 0 {
		parts = append(parts, "Critical issues: "+strings.Join(critical, ", ")+".")
	}
	if uncertain >= corroborationCount {
		parts = append(parts, fmt.Sprintf("%d checks independently reported uncertainty, corroborating a suspicious document.", uncertain))
	}
	return strings.Join(parts, " ")
}
