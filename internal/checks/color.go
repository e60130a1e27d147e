package checks

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"

	"certverify/internal/common/errors"
)

const colorClusters = 5

// ColorCheck compares the dominant palette of the certificate against known
// institutional brand colors using the CIEDE2000 perceptual distance.
type ColorCheck struct {
	brands map[string][]string
}

func NewColorCheck(brands map[string][]string) *ColorCheck {
	return &ColorCheck{brands: brands}
}

func (c *ColorCheck) Name() string { return CheckColor }

func (c *ColorCheck) WeightHint() float64 { return 0 }

func (c *ColorCheck) Run(_ context.Context, in *Input) (Result, error) {
	img := in.Page
	if embedded := in.File.EmbeddedJPEGs(1); len(embedded) > 0 {
		img = embedded[0]
	}
	if img == nil {
		return nil, errors.NewCheckFailedError(CheckColor, fmt.Errorf("no rendered page available"))
	}

	dominant, err := dominantColors(img, colorClusters)
	if err != nil {
		return nil, errors.NewCheckFailedError(CheckColor, err)
	}

	bestBrand := ""
	bestDist := 9999.0
	for brand, hexes := range c.brands {
		for _, hex := range hexes {
			ref, err := colorful.Hex(hex)
			if err != nil {
				continue
			}
			for _, dom := range dominant {
				if d := dom.DistanceCIEDE2000(ref); d < bestDist {
					bestDist = d
					bestBrand = brand
				}
			}
		}
	}

	// go-colorful distances live on a 0..~1.3 scale; the verdict bands are
	// calibrated on the conventional 0..100 delta-E scale.
	deltaE := bestDist * 100

	verdict := VerdictFake
	switch {
	case deltaE < 25:
		verdict = VerdictOriginal
	case deltaE < 60:
		verdict = VerdictSuspicious
	}

	hexes := make([]string, len(dominant))
	for i, d := range dominant {
		hexes[i] = d.Hex()
	}

	return Result{
		"verdict":         verdict,
		"delta_e":         deltaE,
		"brand_detected":  bestBrand,
		"dominant_colors": hexes,
	}, nil
}

// dominantColors clusters a downsampled copy of the image into k palette
// colors.
func dominantColors(img image.Image, k int) ([]colorful.Color, error) {
	small := imaging.Resize(img, 300, 300, imaging.NearestNeighbor)

	var obs clusters.Observations
	b := small.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y += 2 {
		for x := b.Min.X; x < b.Max.X; x += 2 {
			r, g, bl, _ := small.At(x, y).RGBA()
			obs = append(obs, clusters.Coordinates{
				float64(r>>8) / 255,
				float64(g>>8) / 255,
				float64(bl>>8) / 255,
			})
		}
	}

	km := kmeans.New()
	result, err := km.Partition(obs, k)
	if err != nil {
		return nil, fmt.Errorf("cluster palette: %w", err)
	}

	out := make([]colorful.Color, 0, len(result))
	for _, cl := range result {
		center := cl.Center
		if len(center) < 3 {
			continue
		}
		out = append(out, colorful.Color{R: center[0], G: center[1], B: center[2]})
	}
	return out, nil
}
