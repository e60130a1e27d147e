package certificateverify

import "certverify/internal/verifier"

type Input struct {
	DocumentURL  string `json:"documentUrl"`
	DocumentPath string `json:"documentPath"`
	ReferenceURL string `json:"referenceUrl"`
}

// Ref returns whichever document reference the process supplied. A URL
// takes precedence over a worker-local path.
func (in *Input) Ref() string {
	if in.DocumentURL != "" {
		return in.DocumentURL
	}
	return in.DocumentPath
}

type Output struct {
	Title               string   `json:"title"`
	IssuingOrganization string   `json:"issuingOrganization"`
	VerificationURL     string   `json:"verificationUrl,omitempty"`
	Category            string   `json:"category"`
	Level               string   `json:"level"`
	Rank                string   `json:"rank"`
	DateOfEvent         string   `json:"dateOfEvent,omitempty"`
	AcademicYear        string   `json:"academicYear,omitempty"`
	AISummary           string   `json:"aiSummary"`
	Status              string   `json:"status"`
	RejectionReason     string   `json:"rejectionReason,omitempty"`
	Reason              string   `json:"reason,omitempty"`
	Skills              []string `json:"skills"`
	ForensicScore       float64  `json:"forensicScore"`
	ForensicVerdict     string   `json:"forensicVerdict"`
	ExternalScore       *float64 `json:"externalScore,omitempty"`
	Cached              bool     `json:"cached,omitempty"`
}

func outputFromReport(report *verifier.Report) *Output {
	u := report.Unified
	out := &Output{
		Title:               u.Title,
		IssuingOrganization: u.IssuingOrganization,
		VerificationURL:     u.VerificationURL,
		Category:            u.Category,
		Level:               u.Level,
		Rank:                u.Rank,
		DateOfEvent:         u.DateOfEvent,
		AcademicYear:        u.AcademicYear,
		AISummary:           u.AISummary,
		Status:              u.Status,
		RejectionReason:     u.RejectionReason,
		Reason:              u.Reason,
		Skills:              u.Skills,
		Cached:              report.Cached,
	}
	if report.Forensic != nil {
		out.ForensicScore = report.Forensic.FinalScore
		out.ForensicVerdict = report.Forensic.FinalVerdict
	}
	if report.External != nil && report.External.Attempted {
		score := report.External.Score
		out.ExternalScore = &score
	}
	return out
}
