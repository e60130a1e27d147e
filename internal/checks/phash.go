package checks

import (
	"context"
	"fmt"

	"github.com/corona10/goimagehash"

	"certverify/internal/common/errors"
)

// ReferenceHashes supplies the perceptual hashes of known-good certificates.
type ReferenceHashes interface {
	ReferenceHashes(ctx context.Context) ([]uint64, error)
}

// PHashCheck hashes the canonically rendered first page and Hamming-compares
// it against a reference corpus. No corpus means no signal: the check
// reports NO_DB, which normalizes to neutral.
type PHashCheck struct {
	refs ReferenceHashes
}

func NewPHashCheck(refs ReferenceHashes) *PHashCheck { return &PHashCheck{refs: refs} }

func (c *PHashCheck) Name() string { return CheckPHash }

func (c *PHashCheck) WeightHint() float64 { return 0 }

func (c *PHashCheck) Run(ctx context.Context, in *Input) (Result, error) {
	if in.Page == nil {
		return nil, errors.NewCheckFailedError(CheckPHash, fmt.Errorf("no rendered page available"))
	}

	hash, err := goimagehash.PerceptionHash(in.Page)
	if err != nil {
		return nil, errors.NewCheckFailedError(CheckPHash, err)
	}

	var corpus []uint64
	if c.refs != nil {
		corpus, err = c.refs.ReferenceHashes(ctx)
		if err != nil {
			return nil, errors.NewCheckFailedError(CheckPHash, err)
		}
	}
	if len(corpus) == 0 {
		return Result{
			"verdict": VerdictNoDB,
			"reason":  "No reference corpus available for perceptual comparison.",
		}, nil
	}

	best := 65
	for _, ref := range corpus {
		other := goimagehash.NewImageHash(ref, goimagehash.PHash)
		d, err := hash.Distance(other)
		if err != nil {
			continue
		}
		if d < best {
			best = d
		}
	}

	verdict := VerdictNoMatch
	switch {
	case best <= 5:
		verdict = VerdictOriginal
	case best <= 12:
		verdict = VerdictPossibleMatch
	}

	return Result{
		"verdict":       verdict,
		"best_distance": best,
		"corpus_size":   len(corpus),
		"phash":         hash.GetHash(),
	}, nil
}
