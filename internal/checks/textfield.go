package checks

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"certverify/internal/ocr"
)

var requiredKeywords = []string{"certificate", "course", "awarded", "completed"}

// domainWords is a small dictionary of vocabulary expected on genuine
// academic certificates; words far outside it count toward the spelling
// anomaly ratio.
var domainWords = map[string]bool{
	"certificate": true, "course": true, "awarded": true, "completed": true,
	"completion": true, "successfully": true, "grade": true, "credits": true,
	"marks": true, "score": true, "online": true, "examination": true,
	"institute": true, "university": true, "college": true, "technology": true,
	"participation": true, "achievement": true, "training": true, "program": true,
	"organized": true, "conducted": true, "presented": true, "issued": true,
	"duration": true, "weeks": true, "national": true, "merit": true,
}

var (
	wordPattern   = regexp.MustCompile(`[A-Za-z]+`)
	marksPattern  = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)\s*%`)
	noisePattern  = regexp.MustCompile(`\b[A-Z]{2,}\s+[A-Z]{2,}\b`)
	vowelsPattern = regexp.MustCompile(`[aeiouAEIOU]`)
)

// Weights of the five text-consistency signals.
const (
	wEdge     = 25.0
	wSpelling = 25.0
	wKeywords = 25.0
	wMarks    = 15.0
	wRows     = 10.0
)

// TextFieldCheck OCRs the rendered page and combines five independent
// consistency signals into one score. Each signal targets a different
// forgery pattern: overlaid text has unnatural edges, template fills have
// gibberish placeholders, crude fakes miss the standard vocabulary, edited
// marks break format sanity and pasted lines break baseline rhythm.
type TextFieldCheck struct {
	engine ocr.Engine
}

func NewTextFieldCheck(engine ocr.Engine) *TextFieldCheck {
	return &TextFieldCheck{engine: engine}
}

func (c *TextFieldCheck) Name() string { return CheckTextField }

func (c *TextFieldCheck) WeightHint() float64 { return 0 }

func (c *TextFieldCheck) Run(_ context.Context, in *Input) (Result, error) {
	text := in.Text
	if strings.TrimSpace(text) == "" && c.engine != nil && in.Page != nil {
		if ocrText, err := ocr.RecognizeImage(c.engine, in.Page); err == nil {
			text = ocrText
		}
	}
	if strings.TrimSpace(text) == "" {
		return Result{
			"verdict": VerdictUncertain,
			"score":   50,
			"reason":  "No text could be extracted from the document.",
		}, nil
	}

	edge := edgeSignal(in)
	spelling := spellingSignal(text)
	keywords := keywordSignal(text)
	marks := marksSignal(text)
	rows := rowSignal(in)

	score := clamp((edge*wEdge + spelling*wSpelling + keywords*wKeywords +
		marks*wMarks + rows*wRows) / 100)

	verdict := VerdictFake
	switch {
	case score >= 80:
		verdict = VerdictOriginal
	case score >= 55:
		verdict = VerdictSuspicious
	}

	return Result{
		"verdict": verdict,
		"score":   score,
		"signals": map[string]any{
			"font_edge":        edge,
			"spelling_anomaly": spelling,
			"keywords":         keywords,
			"marks_format":     marks,
			"row_alignment":    rows,
		},
	}, nil
}

// edgeSignal scores edge-magnitude variance of the page. Both a too-smooth
// page (synthetic rendering over the template) and a too-noisy one (heavy
// recompression hiding edits) are penalized.
func edgeSignal(in *Input) float64 {
	if in.Page == nil {
		return 50
	}
	v := sobelVariance(toGray(in.Page))
	switch {
	case v >= 300 && v <= 15000:
		return 100
	case v >= 100 && v <= 30000:
		return 60
	default:
		return 30
	}
}

// spellingSignal measures the ratio of gibberish tokens: words with no
// vowels or all-caps noise pairs like the placeholder junk seen in
// template-generated fakes.
func spellingSignal(text string) float64 {
	words := wordPattern.FindAllString(text, -1)
	if len(words) == 0 {
		return 50
	}
	anomalies := 0
	total := 0
	for _, w := range words {
		if len(w) < 3 {
			continue
		}
		total++
		if domainWords[strings.ToLower(w)] {
			continue
		}
		if !vowelsPattern.MatchString(w) {
			anomalies++
		}
	}
	anomalies += len(noisePattern.FindAllString(text, -1))
	if total == 0 {
		return 50
	}
	ratio := float64(anomalies) / float64(total)
	return clamp(100 * (1 - 4*ratio))
}

func keywordSignal(text string) float64 {
	lower := strings.ToLower(text)
	hits := 0
	for _, kw := range requiredKeywords {
		if strings.Contains(lower, kw) {
			hits++
		}
	}
	return float64(hits) / float64(len(requiredKeywords)) * 100
}

// marksSignal verifies that any percentage-looking figures stay in a sane
// range. No marks on the page is neutral, not suspicious.
func marksSignal(text string) float64 {
	matches := marksPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return 70
	}
	for _, m := range matches {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil || v > 100 {
			return 0
		}
	}
	return 100
}

// rowSignal scores baseline regularity from the row ink projection. Text on
// a consistent baseline grid keeps the spread of row ink sums in a moderate
// band relative to their mean; pasted fragments push it out of band.
func rowSignal(in *Input) float64 {
	if in.Page == nil {
		return 50
	}
	g := toGray(in.Page)
	mask := g.inkMask(inkThreshold)

	var rows []float64
	for y := 0; y < g.h; y++ {
		sum := 0.0
		for x := 0; x < g.w; x++ {
			if mask[y*g.w+x] {
				sum++
			}
		}
		if sum > 0 {
			rows = append(rows, sum)
		}
	}
	if len(rows) == 0 {
		return 50
	}
	m := mean(rows)
	if m == 0 {
		return 50
	}
	cv := stddev(rows) / m
	switch {
	case cv >= 0.3 && cv <= 2.0:
		return 100
	case cv >= 0.1 && cv <= 3.0:
		return 60
	default:
		return 30
	}
}
