package checks

import (
	"sort"
	"strings"
)

// verdictScores maps the verdict lexicon used across the check suite to a
// numeric score when a check reports no explicit number.
var verdictScores = map[string]float64{
	VerdictExactMatch:     100,
	VerdictOriginal:       100,
	VerdictLikelyOriginal: 100,
	VerdictPossibleMatch:  70,
	VerdictSameTemplate:   70,
	"POSSIBLE":            70,
	VerdictNoMatch:        0,
	VerdictLikelyTampered: 0,
	VerdictFake:           0,
	VerdictNoDB:           50,
	VerdictUnknown:        50,
	"":                    50,
}

// Normalize resolves a raw check result to a score in [0,100] and a label.
// Resolution order is fixed: an error key wins, then explicit numeric scores,
// then confidence, then the verdict lexicon, then a neutral 50. A nested
// "result" map is resolved one level deep so wrapped payloads still score.
func Normalize(r Result) (float64, string) {
	return normalize(r, true)
}

func normalize(r Result, recurse bool) (float64, string) {
	if len(r) == 0 {
		return 50, VerdictUnknown
	}

	label := VerdictUnknown
	for _, key := range []string{"final_verdict", "verdict", "status"} {
		if v, ok := stringValue(r, key); ok {
			label = strings.ToUpper(strings.TrimSpace(v))
			break
		}
	}

	if errVal, ok := r["error"]; ok && errVal != nil {
		if s, isStr := errVal.(string); !isStr || s != "" {
			return 0, "ERROR"
		}
	}

	// Key lookup folds case and underscores so final_score, finalScore and
	// FINALSCORE all resolve to the same slot.
	for _, key := range []string{"final_score", "score"} {
		if n, ok := numericValueFold(r, key); ok {
			return clamp(n), label
		}
	}

	if n, ok := numericValueFold(r, "confidence"); ok {
		if n <= 1 {
			n *= 100
		}
		return clamp(n), label
	}

	if score, ok := verdictScores[label]; ok {
		return score, label
	}

	if recurse {
		// Recurse one level into the first nested mapping, scanning keys in
		// sorted order so resolution stays deterministic.
		keys := make([]string, 0, len(r))
		for k := range r {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if nested, ok := r[k].(map[string]any); ok {
				return normalize(Result(nested), false)
			}
		}
	}

	return 50, label
}

func clamp(n float64) float64 {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

func stringValue(r Result, key string) (string, bool) {
	v, ok := r[key].(string)
	return v, ok
}

// numericValueFold looks the key up ignoring case and underscores, scanning
// candidate keys in sorted order so resolution stays deterministic when a
// result carries more than one spelling.
func numericValueFold(r Result, key string) (float64, bool) {
	if n, ok := numericValue(r, key); ok {
		return n, true
	}
	want := foldKey(key)
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if foldKey(k) != want {
			continue
		}
		if n, ok := numericValue(r, k); ok {
			return n, true
		}
	}
	return 0, false
}

func foldKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(k), "_", "")
}

func numericValue(r Result, key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
