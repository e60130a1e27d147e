package checks

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"math"
)

// grayPlane is an 8-bit luminance raster used by the pixel heuristics.
type grayPlane struct {
	w, h int
	pix  []uint8
}

func toGray(img image.Image) *grayPlane {
	b := img.Bounds()
	g := &grayPlane{w: b.Dx(), h: b.Dy(), pix: make([]uint8, b.Dx()*b.Dy())}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g.pix[i] = color.GrayModel.Convert(img.At(x, y)).(color.Gray).Y
			i++
		}
	}
	return g
}

func (g *grayPlane) at(x, y int) uint8 { return g.pix[y*g.w+x] }

// inkMask marks pixels darker than the threshold, the usual way to separate
// ink strokes from paper background.
func (g *grayPlane) inkMask(threshold uint8) []bool {
	mask := make([]bool, len(g.pix))
	for i, v := range g.pix {
		mask[i] = v < threshold
	}
	return mask
}

// recompressDiff re-encodes the image as JPEG at the given quality and
// returns the per-pixel mean channel difference against the original. This
// is the core of error level analysis: regions pasted or edited after the
// original compression answer recompression differently.
func recompressDiff(img image.Image, quality int) ([]float64, int, int, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, 0, 0, err
	}
	rec, err := jpeg.Decode(&buf)
	if err != nil {
		return nil, 0, 0, err
	}

	b := img.Bounds()
	rb := rec.Bounds()
	diff := make([]float64, 0, b.Dx()*b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			r1, g1, b1, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			r2, g2, b2, _ := rec.At(rb.Min.X+x, rb.Min.Y+y).RGBA()
			d := math.Abs(float64(r1>>8)-float64(r2>>8)) +
				math.Abs(float64(g1>>8)-float64(g2>>8)) +
				math.Abs(float64(b1>>8)-float64(b2>>8))
			diff = append(diff, d/3)
		}
	}
	return diff, b.Dx(), b.Dy(), nil
}

// component is one connected region of an ink mask.
type component struct {
	rect image.Rectangle
	area int
}

// connectedComponents labels 8-connected regions of the mask with a BFS and
// returns their bounding boxes.
func connectedComponents(mask []bool, w, h int) []component {
	visited := make([]bool, len(mask))
	var comps []component
	queue := make([]int, 0, 256)

	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}
		visited[start] = true
		queue = append(queue[:0], start)
		minX, minY := start%w, start/w
		maxX, maxY := minX, minY
		area := 0

		for len(queue) > 0 {
			idx := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			x, y := idx%w, idx/w
			area++
			if x < minX {
				minX = x
			}
			if x > maxX {
				maxX = x
			}
			if y < minY {
				minY = y
			}
			if y > maxY {
				maxY = y
			}
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx, ny := x+dx, y+dy
					if nx < 0 || ny < 0 || nx >= w || ny >= h {
						continue
					}
					nidx := ny*w + nx
					if mask[nidx] && !visited[nidx] {
						visited[nidx] = true
						queue = append(queue, nidx)
					}
				}
			}
		}
		comps = append(comps, component{
			rect: image.Rect(minX, minY, maxX+1, maxY+1),
			area: area,
		})
	}
	return comps
}

// distanceTransform computes an approximate Euclidean distance to the
// nearest background pixel using a two-pass 3-4 chamfer scan. The value at
// an ink pixel approximates half the local stroke width.
func distanceTransform(mask []bool, w, h int) []float64 {
	const inf = math.MaxInt32 / 2
	dist := make([]int, len(mask))
	for i, ink := range mask {
		if ink {
			dist[i] = inf
		}
	}

	// Forward pass.
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*w + x
			if dist[i] == 0 {
				continue
			}
			d := dist[i]
			if x > 0 && dist[i-1]+3 < d {
				d = dist[i-1] + 3
			}
			if y > 0 {
				if dist[i-w]+3 < d {
					d = dist[i-w] + 3
				}
				if x > 0 && dist[i-w-1]+4 < d {
					d = dist[i-w-1] + 4
				}
				if x < w-1 && dist[i-w+1]+4 < d {
					d = dist[i-w+1] + 4
				}
			}
			dist[i] = d
		}
	}
	// Backward pass.
	for y := h - 1; y >= 0; y-- {
		for x := w - 1; x >= 0; x-- {
			i := y*w + x
			if dist[i] == 0 {
				continue
			}
			d := dist[i]
			if x < w-1 && dist[i+1]+3 < d {
				d = dist[i+1] + 3
			}
			if y < h-1 {
				if dist[i+w]+3 < d {
					d = dist[i+w] + 3
				}
				if x < w-1 && dist[i+w+1]+4 < d {
					d = dist[i+w+1] + 4
				}
				if x > 0 && dist[i+w-1]+4 < d {
					d = dist[i+w-1] + 4
				}
			}
			dist[i] = d
		}
	}

	out := make([]float64, len(dist))
	for i, d := range dist {
		out[i] = float64(d) / 3.0
	}
	return out
}

// sobelVariance measures edge-magnitude variance. Genuine printed or scanned
// text sits in a middle band; synthetically rendered overlays come out too
// smooth and heavy recompression too noisy.
func sobelVariance(g *grayPlane) float64 {
	if g.w < 3 || g.h < 3 {
		return 0
	}
	var mags []float64
	for y := 1; y < g.h-1; y++ {
		for x := 1; x < g.w-1; x++ {
			gx := -int(g.at(x-1, y-1)) + int(g.at(x+1, y-1)) +
				-2*int(g.at(x-1, y)) + 2*int(g.at(x+1, y)) +
				-int(g.at(x-1, y+1)) + int(g.at(x+1, y+1))
			gy := -int(g.at(x-1, y-1)) - 2*int(g.at(x, y-1)) - int(g.at(x+1, y-1)) +
				int(g.at(x-1, y+1)) + 2*int(g.at(x, y+1)) + int(g.at(x+1, y+1))
			mags = append(mags, math.Hypot(float64(gx), float64(gy)))
		}
	}
	return variance(mags)
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func variance(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	m := mean(vals)
	sum := 0.0
	for _, v := range vals {
		sum += (v - m) * (v - m)
	}
	return sum / float64(len(vals))
}

func stddev(vals []float64) float64 { return math.Sqrt(variance(vals)) }
