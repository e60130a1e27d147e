package verifier

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certverify/internal/checks"
	"certverify/internal/common/logger"
	"certverify/internal/external"
)

func newTestVerifier(t *testing.T) *Verifier {
	t.Helper()
	return &Verifier{
		thresholds: Thresholds{ExternalScore: 0.7, ForensicScore: 70},
		log:        logger.NewNoOpLogger(),
	}
}

func forensicReport(score float64, verdict string) *checks.AggregateReport {
	return &checks.AggregateReport{
		FinalScore:    score,
		FinalVerdict:  verdict,
		OverallReason: "All checks passed.",
	}
}

func TestDecideExternalRoute(t *testing.T) {
	v := newTestVerifier(t)

	tests := []struct {
		name          string
		externalScore float64
		verified      bool
		forensicScore float64
		wantStatus    string
		wantRejection string
	}{
		{
			name:          "both gates pass",
			externalScore: 0.75,
			verified:      true,
			forensicScore: 82,
			wantStatus:    StatusVerified,
		},
		{
			name:          "external at threshold is not enough",
			externalScore: 0.7,
			verified:      true,
			forensicScore: 82,
			wantStatus:    StatusRejected,
			wantRejection: "External verification failed",
		},
		{
			name:          "forensic at threshold is not enough",
			externalScore: 0.8,
			verified:      true,
			forensicScore: 70,
			wantStatus:    StatusRejected,
			wantRejection: "Forensic analysis failed",
		},
		{
			name:          "both gates fail",
			externalScore: 0.5,
			forensicScore: 40,
			wantStatus:    StatusRejected,
			wantRejection: "Both external verification",
		},
		{
			name:          "comparator veto beats a passing score",
			externalScore: 0.75,
			verified:      false,
			forensicScore: 82,
			wantStatus:    StatusRejected,
			wantRejection: "External verification failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comparison := &external.Comparison{
				Attempted: true,
				Score:     tt.externalScore,
				Verified:  tt.verified,
				Reason:    "field comparison",
			}
			status, rejection := v.decide(forensicReport(tt.forensicScore, checks.VerdictOriginal), comparison)
			assert.Equal(t, tt.wantStatus, status)
			if tt.wantRejection == "" {
				assert.Empty(t, rejection)
			} else {
				assert.Contains(t, rejection, tt.wantRejection)
			}
		})
	}
}

func TestDecideRejectsImpostorDespiteMatchingFields(t *testing.T) {
	v := newTestVerifier(t)

	// Issuer, course and certificate ID all match the genuine page; only
	// the holder's name belongs to somebody else. The comparison must sink
	// the decision even with a clean forensic report.
	doc := external.FieldSet{
		Name:          "ANVESH REDDY",
		Course:        "Programming in Python",
		Issuer:        "NPTEL",
		CertificateID: "NPTEL24CS78S436801880",
	}
	site := external.FieldSet{
		Name:          "NAGA RUTHVIK",
		Course:        "Programming in Python",
		Issuer:        "NPTEL",
		CertificateID: "NPTEL24CS78S436801880",
	}
	comparison := external.Compare(doc, site)

	status, rejection := v.decide(forensicReport(85, checks.VerdictOriginal), &comparison)
	assert.Equal(t, StatusRejected, status)
	assert.Contains(t, rejection, "External verification failed")
	assert.Contains(t, rejection, "different people")
}

func TestDecideForensicOnlyRoute(t *testing.T) {
	v := newTestVerifier(t)

	status, rejection := v.decide(forensicReport(88, checks.VerdictOriginal), nil)
	assert.Equal(t, StatusVerified, status)
	assert.Empty(t, rejection)

	status, rejection = v.decide(forensicReport(60, checks.VerdictSuspicious), nil)
	assert.Equal(t, StatusRejected, status)
	assert.Contains(t, rejection, checks.VerdictSuspicious)
	assert.Contains(t, rejection, "60.0/100")
}

func TestBuildReportVerified(t *testing.T) {
	v := newTestVerifier(t)

	comparison := &external.Comparison{
		Attempted: true,
		Score:     0.8,
		Verified:  true,
		Reason:    "3/4 fields matched",
		DocumentFields: external.FieldSet{
			Name:   "Jordan Lee",
			Course: "Data Structures in Go",
			Issuer: "NPTEL",
			Date:   "July 2024",
		},
	}
	classification := Classification{
		Category: "MOOC",
		Level:    "NATIONAL",
		Rank:     "PARTICIPATION",
		Skills:   []string{"go", "algorithms"},
		Summary:  "Completed an online course.",
	}

	report := v.buildReport(forensicReport(85, checks.VerdictOriginal), comparison, classification, "https://example.org/verify/1")
	assert.Equal(t, StatusVerified, report.Unified.Status)
	assert.Equal(t, "Data Structures in Go", report.Unified.Title)
	assert.Equal(t, "NPTEL", report.Unified.IssuingOrganization)
	assert.Equal(t, "2024-2025", report.Unified.AcademicYear)
	assert.Equal(t, "https://example.org/verify/1", report.Unified.VerificationURL)
	assert.Equal(t, "MOOC", report.Unified.Category)
	assert.Empty(t, report.Unified.RejectionReason)
	assert.Equal(t, "3/4 fields matched", report.Unified.Reason)
	require.NotNil(t, report.External)
	require.NotNil(t, report.Forensic)
}

func TestBuildReportFallbacksWithoutExtraction(t *testing.T) {
	v := newTestVerifier(t)

	report := v.buildReport(forensicReport(88, checks.VerdictOriginal), nil, DefaultClassification(), "")
	assert.Equal(t, StatusVerified, report.Unified.Status)
	assert.Equal(t, "Unknown Certificate", report.Unified.Title)
	assert.Equal(t, "Unknown", report.Unified.IssuingOrganization)
	assert.Empty(t, report.Unified.AcademicYear)
	assert.Equal(t, "All checks passed.", report.Unified.Reason)
	assert.Nil(t, report.External)
}

func TestBuildReportRejectionReasonWins(t *testing.T) {
	v := newTestVerifier(t)

	comparison := &external.Comparison{
		Attempted: true,
		Score:     0.25,
		Reason:    "names belong to different people",
	}
	report := v.buildReport(forensicReport(90, checks.VerdictOriginal), comparison, DefaultClassification(), "https://example.org/v")
	assert.Equal(t, StatusRejected, report.Unified.Status)
	assert.NotEmpty(t, report.Unified.RejectionReason)
	assert.Equal(t, report.Unified.RejectionReason, report.Unified.Reason)
}

type stubGenerator struct {
	reply string
	err   error
}

func (s *stubGenerator) Generate(_ context.Context, _ string) (string, error) {
	return s.reply, s.err
}

func TestClassifyMergesOverDefaults(t *testing.T) {
	gen := &stubGenerator{reply: `{"category": "TECHNICAL", "skills": ["python", "ml"]}`}
	c := NewClassifier(gen, logger.NewNoOpLogger())

	result := c.Classify(context.Background(), "Certificate of achievement in the Smart India Hackathon")
	assert.Equal(t, "TECHNICAL", result.Category)
	assert.Equal(t, []string{"python", "ml"}, result.Skills)
	// Fields the model omitted keep their defaults.
	assert.Equal(t, "COLLEGE", result.Level)
	assert.Equal(t, "PARTICIPATION", result.Rank)
	assert.Equal(t, "Certificate verification completed", result.Summary)
}

func TestClassifyFailuresFallBackToDefaults(t *testing.T) {
	c := NewClassifier(&stubGenerator{err: assert.AnError}, logger.NewNoOpLogger())
	result := c.Classify(context.Background(), "some text")
	assert.Equal(t, DefaultClassification(), result)

	c = NewClassifier(&stubGenerator{reply: "ok"}, logger.NewNoOpLogger())
	result = c.Classify(context.Background(), "")
	assert.Equal(t, DefaultClassification(), result)
}
