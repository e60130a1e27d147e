package checks

import (
	"bytes"
	"context"

	"certverify/internal/pdfutil"
)

var trustedGenerators = []string{
	"adobe", "skia", "ghostscript", "fpdf", "weasyprint",
	"tcpdf", "wkhtmltopdf", "nptel", "coursera",
}

var suspiciousGenerators = []string{
	"microsoft word", "wps", "libreoffice", "openoffice", "canva",
	"ilovepdf", "smallpdf", "sejda", "pdfescape", "pdfsam",
	"foxit", "nitro pdf", "pdf editor", "pdf xchange", "pdf24",
}

// StructureCheck scores the raw PDF skeleton: incremental updates, object
// count sanity, digital-signature markers and generator keywords. It works
// on the bytes directly so that damaged files still get a score.
type StructureCheck struct{}

func NewStructureCheck() *StructureCheck { return &StructureCheck{} }

func (c *StructureCheck) Name() string { return CheckStructure }

func (c *StructureCheck) WeightHint() float64 { return 0 }

func (c *StructureCheck) Run(_ context.Context, in *Input) (Result, error) {
	if !in.File.IsPDF() {
		return Result{
			"verdict": VerdictNotApplicable,
			"score":   50,
			"reasons": []string{"Not a PDF, structural analysis does not apply."},
		}, nil
	}

	raw := in.File.Raw()
	info := pdfutil.ScanStructure(raw)
	lower := bytes.ToLower(raw)

	score := 50.0
	var reasons []string

	if info.HasSignature {
		score += 30
		reasons = append(reasons, "Digital signature markers present.")
	}

	incremental := info.HasPrev || info.XRefTables > 1 || info.StartXRefs > 1
	if incremental {
		score -= 15
		reasons = append(reasons, "Incremental update markers found (file was re-saved).")
	}

	if info.Objects < 5 {
		score -= 5
		reasons = append(reasons, "Unusually few PDF objects.")
	} else if info.Objects > 5000 {
		score -= 10
		reasons = append(reasons, "Unusually many PDF objects.")
	}

	for _, kw := range trustedGenerators {
		if bytes.Contains(lower, []byte(kw)) {
			score += 10
			reasons = append(reasons, "Trusted generator keyword: "+kw)
			break
		}
	}
	for _, kw := range suspiciousGenerators {
		if bytes.Contains(lower, []byte(kw)) {
			score -= 20
			reasons = append(reasons, "Suspicious editor keyword: "+kw)
			break
		}
	}

	score = clamp(score)
	verdict := VerdictLikelyTampered
	switch {
	case score >= 75:
		verdict = VerdictLikelyOriginal
	case score >= 45:
		verdict = VerdictUncertain
	}

	return Result{
		"verdict":        verdict,
		"score":          score,
		"object_count":   info.Objects,
		"has_signature":  info.HasSignature,
		"incremental":    incremental,
		"xref_tables":    info.XRefTables,
		"startxref_hits": info.StartXRefs,
		"reasons":        reasons,
	}, nil
}
