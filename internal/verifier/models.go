// Package verifier is the top-level dispatcher: it routes a document
// through the forensic suite and, when a verification URL exists, the
// external cross-check, then merges both into the unified output the
// collaborator persists.
package verifier

import (
	"certverify/internal/checks"
	"certverify/internal/external"
)

// Status values of a completed verification.
const (
	StatusVerified = "verified"
	StatusRejected = "rejected"
)

// UnifiedOutput is the externally visible result. Key names are a stable
// contract with the persistence collaborator.
type UnifiedOutput struct {
	Title               string   `json:"title"`
	IssuingOrganization string   `json:"issuing_organization"`
	VerificationURL     string   `json:"verification_url,omitempty"`
	Category            string   `json:"category"`
	Level               string   `json:"level"`
	Rank                string   `json:"rank"`
	DateOfEvent         string   `json:"date_of_event,omitempty"`
	AcademicYear        string   `json:"academic_year,omitempty"`
	AISummary           string   `json:"ai_summary"`
	Status              string   `json:"status"`
	RejectionReason     string   `json:"rejection_reason,omitempty"`
	Reason              string   `json:"reason,omitempty"`
	Skills              []string `json:"skills"`
}

// Report carries the unified output together with the raw evidence from
// both verification tracks.
type Report struct {
	Unified  UnifiedOutput            `json:"unified_output"`
	Forensic *checks.AggregateReport  `json:"forensic,omitempty"`
	External *external.Comparison     `json:"external,omitempty"`
	Cached   bool                     `json:"cached,omitempty"`
}

// Classification is the secondary LLM categorization of the achievement.
type Classification struct {
	Category string   `json:"category"`
	Level    string   `json:"level"`
	Rank     string   `json:"rank"`
	Skills   []string `json:"skills"`
	Summary  string   `json:"summary"`
}

// DefaultClassification returns the fixed fallback structure; model output
// is merged over it so required fields are never absent.
func DefaultClassification() Classification {
	return Classification{
		Category: "OTHER",
		Level:    "COLLEGE",
		Rank:     "PARTICIPATION",
		Skills:   []string{},
		Summary:  "Certificate verification completed",
	}
}
