// Package external implements the cross-verification track: it finds a
// verification URL on the certificate, scrapes the issuer's site, extracts
// structured fields from both sides with a language model and reconciles
// them with deterministic matching rules.
package external

// FieldSet is the fixed field schema extracted from one source. Empty
// string means the field was absent in that source, never inferred.
type FieldSet struct {
	Name          string `json:"name"`
	Course        string `json:"course"`
	Issuer        string `json:"issuer"`
	Date          string `json:"date"`
	CertificateID string `json:"certificate_id"`
}

// Source is one scraped text block, either the rendered page or a
// downloaded PDF.
type Source struct {
	URL         string
	ContentType string // "html" or "pdf"
	Text        string
}

// Comparison is the outcome of the external track. Score is on a 0..1
// scale, unlike the forensic aggregate.
type Comparison struct {
	Attempted       bool            `json:"attempted"`
	VerificationURL string          `json:"verification_url,omitempty"`
	Verified        bool            `json:"verified"`
	Score           float64         `json:"score"`
	Reason          string          `json:"reason"`
	DocumentFields  FieldSet        `json:"parsed_pdf_data"`
	SiteFields      FieldSet        `json:"parsed_site_data"`
	FieldMatches    map[string]bool `json:"field_matches,omitempty"`
}
