package external

import (
	"fmt"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// Matching thresholds per field.
const (
	courseSimilarityMin = 0.90
	nameSimilarityMin   = 0.80
	// Below this the two names are clearly different people and the
	// comparison is forced to fail regardless of other fields.
	nameSimilarityFloor = 0.30
	// IDs shorter than this are too generic for containment matching.
	minIDLengthForContainment = 4
)

// criticalFields drive the verified decision.
var criticalFields = []string{"issuer", "course", "certificate_id", "name"}

// Compare reconciles the two extracted field sets with deterministic rules:
// issuer exact (case-insensitive), course >= 90% similar, name >= 80%
// similar, certificate ID exact or contained. Verified requires a strict
// majority of all four critical fields to match; a field missing on either
// side counts as unsatisfied, so a page that yields a single extractable
// field can never verify on its own.
func Compare(doc, site FieldSet) Comparison {
	sim := metrics.NewJaroWinkler()

	matches := make(map[string]bool)
	evaluated := 0
	matched := 0

	evaluate := func(field string, docVal, siteVal string, rule func(a, b string) bool) {
		if strings.TrimSpace(docVal) == "" || strings.TrimSpace(siteVal) == "" {
			return
		}
		evaluated++
		ok := rule(docVal, siteVal)
		matches[field] = ok
		if ok {
			matched++
		}
	}

	evaluate("issuer", doc.Issuer, site.Issuer, func(a, b string) bool {
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	})
	evaluate("course", doc.Course, site.Course, func(a, b string) bool {
		return strutil.Similarity(normalize(a), normalize(b), sim) >= courseSimilarityMin
	})
	evaluate("certificate_id", doc.CertificateID, site.CertificateID, certificateIDMatch)
	evaluate("name", doc.Name, site.Name, func(a, b string) bool {
		return strutil.Similarity(normalize(a), normalize(b), sim) >= nameSimilarityMin
	})

	result := Comparison{
		Attempted:      true,
		DocumentFields: doc,
		SiteFields:     site,
		FieldMatches:   matches,
	}

	if evaluated == 0 {
		result.Reason = "No overlapping fields could be extracted from the document and the verification source."
		return result
	}

	result.Score = float64(matched) / float64(evaluated)
	result.Verified = 2*matched > len(criticalFields)

	// Clearly different people override everything else, including the
	// score the other fields earned.
	if doc.Name != "" && site.Name != "" {
		nameSim := strutil.Similarity(normalize(doc.Name), normalize(site.Name), sim)
		if clearlyDifferentPeople(doc.Name, site.Name, nameSim) {
			result.Verified = false
			result.Score = 0
			result.Reason = fmt.Sprintf(
				"Names %q and %q are completely different people (similarity %.2f).",
				doc.Name, site.Name, nameSim)
			return result
		}
	}

	result.Reason = summarizeMatches(result.Verified, matches)
	return result
}

// certificateIDMatch accepts an exact match or containment in either
// direction. Containment covers truncated IDs and the issuer pattern where
// the website extends the PDF's ID with extra digits (NPTEL does this), so
// a longer site ID that contains the full PDF ID counts as a match.
func certificateIDMatch(docID, siteID string) bool {
	a := strings.ToUpper(strings.TrimSpace(docID))
	b := strings.ToUpper(strings.TrimSpace(siteID))
	if a == b {
		return true
	}
	if len(a) < minIDLengthForContainment || len(b) < minIDLengthForContainment {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// clearlyDifferentPeople catches name pairs that belong to two distinct
// persons rather than being variations of one name. Edit-distance metrics
// never reach zero on ordinary names, so "near zero" is defined as failing
// the similarity threshold while sharing no name token at all ("ANVESH
// REDDY" vs "NAGA RUTHVIK"); initials and small typos always share a token.
func clearlyDifferentPeople(a, b string, similarity float64) bool {
	if similarity < nameSimilarityFloor {
		return true
	}
	if similarity >= nameSimilarityMin {
		return false
	}
	aTokens := strings.Fields(normalize(a))
	for _, ta := range aTokens {
		if len(ta) < 2 {
			continue
		}
		for _, tb := range strings.Fields(normalize(b)) {
			if ta == tb {
				return false
			}
		}
	}
	return true
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func summarizeMatches(verified bool, matches map[string]bool) string {
	var hit, miss []string
	for _, f := range criticalFields {
		ok, present := matches[f]
		if !present {
			continue
		}
		if ok {
			hit = append(hit, f)
		} else {
			miss = append(miss, f)
		}
	}

	var sb strings.Builder
	if verified {
		sb.WriteString("Verified: ")
	} else {
		sb.WriteString("Not verified: ")
	}
	if len(hit) > 0 {
		sb.WriteString("matched " + strings.Join(hit, ", "))
	} else {
		sb.WriteString("no fields matched")
	}
	if len(miss) > 0 {
		sb.WriteString("; mismatched " + strings.Join(miss, ", "))
	}
	sb.WriteString(".")
	return sb.String()
}
