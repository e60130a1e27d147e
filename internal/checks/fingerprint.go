package checks

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/bits"

	"github.com/corona10/goimagehash"

	"certverify/internal/common/errors"
	"certverify/internal/pdfutil"
)

const canonicalWidth = 2480

// Fingerprint is the canonical identity of one document: the raw byte hash,
// the hash of a deterministic first-page render and its perceptual hash.
type Fingerprint struct {
	BinaryHash    string
	CanonicalHash string
	PHash         uint64
}

// FingerprintCheck fingerprints the document and, when a reference document
// is supplied, classifies how closely the two match. Without a reference it
// still emits the fingerprint so callers can store it for later comparison.
type FingerprintCheck struct{}

func NewFingerprintCheck() *FingerprintCheck { return &FingerprintCheck{} }

func (c *FingerprintCheck) Name() string { return CheckFingerprint }

func (c *FingerprintCheck) WeightHint() float64 { return 0 }

func (c *FingerprintCheck) Run(_ context.Context, in *Input) (Result, error) {
	fp, err := ComputeFingerprint(in.File)
	if err != nil {
		return nil, errors.NewCheckFailedError(CheckFingerprint, err)
	}

	result := Result{
		"binary_hash":    fp.BinaryHash,
		"canonical_hash": fp.CanonicalHash,
		"phash":          fp.PHash,
	}

	if in.Reference == nil {
		result["verdict"] = VerdictNoDB
		result["reason"] = "No reference document supplied for comparison."
		return result, nil
	}

	refFP, err := ComputeFingerprint(in.Reference)
	if err != nil {
		return nil, errors.NewCheckFailedError(CheckFingerprint, err)
	}

	distance := bits.OnesCount64(fp.PHash ^ refFP.PHash)
	similarity := 100 * (1 - float64(distance)/64)

	var verdict string
	var reason string
	switch {
	case fp.BinaryHash == refFP.BinaryHash && fp.CanonicalHash == refFP.CanonicalHash:
		verdict = VerdictExactMatch
		reason = "Binary and canonical hashes are identical (bit-perfect match)."
	case similarity >= 90:
		verdict = VerdictSameTemplate
		reason = fmt.Sprintf("High visual similarity (pHash similarity %.1f%%). Layout likely same.", similarity)
	case similarity >= 70:
		verdict = "POSSIBLY_SAME_TEMPLATE"
		reason = fmt.Sprintf("Moderate visual similarity (pHash similarity %.1f%%).", similarity)
	default:
		verdict = VerdictLikelyTampered
		reason = fmt.Sprintf("Low visual similarity (pHash similarity %.1f%%). Layout or content changed.", similarity)
	}

	result["verdict"] = verdict
	result["phash_distance"] = distance
	result["phash_similarity_percent"] = similarity
	result["reason"] = reason
	return result, nil
}

// ComputeFingerprint hashes the raw bytes and a canonical render of the
// first page.
func ComputeFingerprint(f *pdfutil.File) (*Fingerprint, error) {
	binHash := sha256.Sum256(f.Raw())

	img, err := f.CanonicalRender(canonicalWidth)
	if err != nil {
		return nil, fmt.Errorf("canonical render: %w", err)
	}

	g := toGray(img)
	canHash := sha256.Sum256(g.pix)

	ph, err := goimagehash.PerceptionHash(img)
	if err != nil {
		return nil, fmt.Errorf("perceptual hash: %w", err)
	}

	return &Fingerprint{
		BinaryHash:    hex.EncodeToString(binHash[:]),
		CanonicalHash: hex.EncodeToString(canHash[:]),
		PHash:         ph.GetHash(),
	}, nil
}
