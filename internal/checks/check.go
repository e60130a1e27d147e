// Package checks holds the forensic check suite and the orchestration that
// turns individual check results into a single verdict.
package checks

import (
	"context"
	"image"

	"certverify/internal/pdfutil"
)

// Result is one check's raw output. Checks report heterogeneous shapes
// (score, confidence, verdict plus free-form detail keys) and the normalizer
// resolves them to a single numeric score later.
type Result map[string]any

// Input is the shared material prepared once per document and handed to
// every check. Checks must treat it as read-only.
type Input struct {
	File *pdfutil.File
	// Text is the embedded text layer of the document, empty for scans.
	Text string
	// Page is the first page rendered at the standard DPI.
	Page image.Image
	// Reference is an optional known-good document to fingerprint against.
	Reference *pdfutil.File
}

// Check is one stateless forensic analysis. Run must not mutate Input and
// must be safe to call concurrently with other checks on the same Input.
// WeightHint is the fixed share of the total weight the check claims for
// itself; zero claims an equal split of whatever the fixed shares leave.
type Check interface {
	Name() string
	WeightHint() float64
	Run(ctx context.Context, in *Input) (Result, error)
}

// Check names, used for weighting, metrics labels and result keys.
const (
	CheckColor          = "color_check"
	CheckELA            = "ela_check"
	CheckMetadata       = "metadata_check"
	CheckStructure      = "structure_check"
	CheckSignatureImage = "signature_check"
	CheckPHash          = "phash_check"
	CheckTextField      = "text_check"
	CheckFingerprint    = "fingerprint_check"
)

// Common verdict values shared across checks.
const (
	VerdictExactMatch     = "EXACT_MATCH"
	VerdictOriginal       = "ORIGINAL"
	VerdictLikelyOriginal = "LIKELY_ORIGINAL"
	VerdictPossibleMatch  = "POSSIBLE_MATCH"
	VerdictSameTemplate   = "LIKELY_SAME_TEMPLATE"
	VerdictSuspicious     = "SUSPICIOUS"
	VerdictUncertain      = "UNCERTAIN"
	VerdictNoMatch        = "NO_MATCH"
	VerdictLikelyTampered = "LIKELY_TAMPERED"
	VerdictFake           = "FAKE"
	VerdictGenuine        = "GENUINE"
	VerdictNoDB           = "NO_DB"
	VerdictNotApplicable  = "NOT_APPLICABLE"
	VerdictNoSignature    = "NO_SIGNATURE"
	VerdictUnknown        = "UNKNOWN"
)
