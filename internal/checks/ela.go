package checks

import (
	"context"
	"fmt"

	"certverify/internal/common/errors"
)

const (
	elaQuality       = 90
	elaHighThreshold = 40.0
)

// ELACheck runs error level analysis on the first embedded raster image.
// Vector-only documents get an explicit NOT_APPLICABLE instead of a fake
// tamper signal.
type ELACheck struct{}

func NewELACheck() *ELACheck { return &ELACheck{} }

func (c *ELACheck) Name() string { return CheckELA }

func (c *ELACheck) WeightHint() float64 { return 0 }

func (c *ELACheck) Run(_ context.Context, in *Input) (Result, error) {
	images := in.File.EmbeddedJPEGs(1)
	if len(images) == 0 {
		return Result{
			"verdict": VerdictNotApplicable,
			"score":   50,
			"reason":  "Document contains no raster image. ELA cannot be applied safely.",
		}, nil
	}

	diff, _, _, err := recompressDiff(images[0], elaQuality)
	if err != nil {
		return nil, errors.NewCheckFailedError(CheckELA, err)
	}

	meanELA := mean(diff)
	stdELA := stddev(diff)
	high := 0
	for _, d := range diff {
		if d > elaHighThreshold {
			high++
		}
	}
	highRatio := float64(high) / float64(len(diff))

	var verdict string
	var score float64
	var reasons []string
	switch {
	case highRatio > 0.03:
		verdict, score = VerdictLikelyTampered, 30
		reasons = append(reasons, "Large high-ELA regions detected, strong sign of editing.")
	case highRatio > 0.01:
		verdict, score = VerdictSuspicious, 55
		reasons = append(reasons, "Moderate ELA spikes, possible local edits.")
	default:
		verdict, score = VerdictLikelyOriginal, 85
		reasons = append(reasons, "Very low ELA variations, no visible tampering.")
	}
	reasons = append(reasons,
		fmt.Sprintf("mean_ela=%.2f", meanELA),
		fmt.Sprintf("high_ratio=%.4f", highRatio))

	return Result{
		"verdict": verdict,
		"score":   score,
		"ela_stats": map[string]any{
			"mean_ela":       meanELA,
			"std_ela":        stdELA,
			"high_ratio":     highRatio,
			"high_threshold": elaHighThreshold,
		},
		"reasons": reasons,
	}, nil
}
