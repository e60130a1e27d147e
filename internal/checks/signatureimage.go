package checks

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"certverify/internal/common/errors"
)

const (
	inkThreshold     = 180
	signatureMinArea = 800
	signatureMaxArea = 30000
)

// SignatureImageCheck looks for a handwritten-signature region in the lower
// half of the page and judges whether the strokes look like natural ink or
// a pasted raster. Stroke width is estimated with a distance transform and
// the region is additionally screened with ELA.
type SignatureImageCheck struct{}

func NewSignatureImageCheck() *SignatureImageCheck { return &SignatureImageCheck{} }

func (c *SignatureImageCheck) Name() string { return CheckSignatureImage }

func (c *SignatureImageCheck) WeightHint() float64 { return 0 }

func (c *SignatureImageCheck) Run(_ context.Context, in *Input) (Result, error) {
	if in.Page == nil {
		return nil, errors.NewCheckFailedError(CheckSignatureImage, fmt.Errorf("no rendered page available"))
	}

	region := findSignatureRegion(in.Page)
	if region == nil {
		return Result{
			"verdict":    VerdictNoSignature,
			"confidence": 0,
			"reason":     "No signature detected in the certificate",
		}, nil
	}

	sw := strokeWidthStddev(region)
	elaMean, err := regionELAMean(region)
	if err != nil {
		return nil, errors.NewCheckFailedError(CheckSignatureImage, err)
	}

	score := 50.0
	var reasons []string

	switch {
	case sw < 3:
		score += 30
		reasons = append(reasons, "Natural handwritten signature")
	case sw < 7:
		score += 10
		reasons = append(reasons, "Moderate signature variation")
	default:
		score -= 20
		reasons = append(reasons, "Digitally pasted signature suspected")
	}

	if elaMean > 18 {
		score -= 25
		reasons = append(reasons, "ELA indicates signature region editing")
	} else {
		reasons = append(reasons, "No major ELA tampering marks")
	}

	score = clamp(score)
	verdict := VerdictUncertain
	switch {
	case score >= 70:
		verdict = "ORIGINAL_SIGNATURE"
	case score <= 40:
		verdict = "FAKE_SIGNATURE"
	}

	return Result{
		"verdict":       verdict,
		"confidence":    score / 100,
		"stroke_stddev": sw,
		"region_ela":    elaMean,
		"reason":        reasons[0],
	}, nil
}

// findSignatureRegion thresholds ink, labels connected components and keeps
// the largest one that sits in the lower half of the page within the area
// band typical of a signature.
func findSignatureRegion(page image.Image) image.Image {
	g := toGray(page)
	mask := g.inkMask(inkThreshold)
	comps := connectedComponents(mask, g.w, g.h)

	var best *component
	for i := range comps {
		r := comps[i].rect
		boxArea := r.Dx() * r.Dy()
		if r.Min.Y <= g.h/2 || boxArea <= signatureMinArea || boxArea >= signatureMaxArea {
			continue
		}
		if best == nil || boxArea > best.rect.Dx()*best.rect.Dy() {
			best = &comps[i]
		}
	}
	if best == nil {
		return nil
	}

	b := page.Bounds()
	crop := best.rect.Add(b.Min)
	return imaging.Crop(page, crop)
}

// strokeWidthStddev estimates the spread of local stroke widths. Real pen
// strokes taper and vary little; vector or pasted signatures produce either
// perfectly uniform or wildly inconsistent widths.
func strokeWidthStddev(region image.Image) float64 {
	g := toGray(region)
	mask := g.inkMask(inkThreshold)
	dist := distanceTransform(mask, g.w, g.h)

	var widths []float64
	for _, d := range dist {
		if d > 0 {
			widths = append(widths, d)
		}
	}
	if len(widths) < 50 {
		// Too little ink to evaluate, treat as pasted.
		return 999
	}
	return stddev(widths)
}

func regionELAMean(region image.Image) (float64, error) {
	diff, _, _, err := recompressDiff(region, 85)
	if err != nil {
		return 0, err
	}
	return mean(diff), nil
}
