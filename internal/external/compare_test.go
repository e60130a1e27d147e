package external

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCertificateIDMatch(t *testing.T) {
	tests := []struct {
		name   string
		docID  string
		siteID string
		want   bool
	}{
		{"exact", "NPTEL24CS78S436801880", "NPTEL24CS78S436801880", true},
		{"case insensitive", "abc1234", "ABC1234", true},
		{"site extends pdf id", "NPTEL24CS78S43680188", "NPTEL24CS78S4368018802689171", true},
		{"pdf contains truncated site id", "CERT-2024-00123", "2024-00123", true},
		{"unrelated ids", "NPTEL24CS78S436801880", "COURSERA-XK42", false},
		{"too short for containment", "12", "129", false},
		{"empty", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, certificateIDMatch(tt.docID, tt.siteID))
		})
	}
}

func TestCompareAllFieldsMatch(t *testing.T) {
	doc := FieldSet{
		Name:          "Naga Ruthvik",
		Course:        "Programming in Python",
		Issuer:        "NPTEL",
		CertificateID: "NPTEL24CS78S436801880",
	}
	site := FieldSet{
		Name:          "NAGA RUTHVIK",
		Course:        "Programming In Python",
		Issuer:        "nptel",
		CertificateID: "NPTEL24CS78S43680188002689171",
	}

	result := Compare(doc, site)
	assert.True(t, result.Verified)
	assert.Equal(t, 1.0, result.Score)
	assert.True(t, result.FieldMatches["issuer"])
	assert.True(t, result.FieldMatches["course"])
	assert.True(t, result.FieldMatches["name"])
	assert.True(t, result.FieldMatches["certificate_id"])
}

func TestCompareDifferentPeopleForcesFalse(t *testing.T) {
	doc := FieldSet{
		Name:          "ANVESH REDDY",
		Course:        "Programming in Python",
		Issuer:        "NPTEL",
		CertificateID: "NPTEL24CS78S436801880",
	}
	site := FieldSet{
		Name:          "NAGA RUTHVIK",
		Course:        "Programming in Python",
		Issuer:        "NPTEL",
		CertificateID: "NPTEL24CS78S436801880",
	}

	result := Compare(doc, site)
	assert.False(t, result.Verified, "completely different names must force rejection")
	assert.Zero(t, result.Score, "the matched fields must not leave a passing score behind")
	assert.Contains(t, result.Reason, "different people")
}

func TestCompareMajorityRule(t *testing.T) {
	t.Run("three of four match", func(t *testing.T) {
		doc := FieldSet{Name: "John Doe", Course: "Data Structures", Issuer: "Coursera", CertificateID: "ABCD123"}
		site := FieldSet{Name: "John Doe", Course: "Data Structures", Issuer: "Coursera", CertificateID: "ZZZZ999"}

		result := Compare(doc, site)
		assert.True(t, result.Verified)
		assert.InDelta(t, 0.75, result.Score, 1e-9)
	})

	t.Run("two of four is not a majority", func(t *testing.T) {
		doc := FieldSet{Name: "John Doe", Course: "Data Structures", Issuer: "Coursera", CertificateID: "ABCD123"}
		site := FieldSet{Name: "John Doe", Course: "Completely Other Topic", Issuer: "Udemy", CertificateID: "ABCD123"}

		result := Compare(doc, site)
		assert.False(t, result.Verified)
		assert.InDelta(t, 0.5, result.Score, 1e-9)
	})

	t.Run("three matches with the fourth field missing", func(t *testing.T) {
		doc := FieldSet{Name: "John Doe", Course: "Data Structures", Issuer: "Coursera"}
		site := FieldSet{Name: "John Doe", Course: "Data Structures", Issuer: "Coursera", CertificateID: "ABCD123"}

		result := Compare(doc, site)
		assert.True(t, result.Verified)
		assert.InDelta(t, 1.0, result.Score, 1e-9)
	})
}

func TestCompareSingleFieldCannotVerify(t *testing.T) {
	doc := FieldSet{Name: "John Doe", Issuer: "Coursera"}
	site := FieldSet{Name: "John Doe"}

	result := Compare(doc, site)
	// Only the name is present on both sides. It matches, but a missing
	// field counts against the majority, so one match out of four critical
	// fields never verifies.
	assert.False(t, result.Verified)
	assert.InDelta(t, 1.0, result.Score, 1e-9)
	assert.NotContains(t, result.FieldMatches, "issuer")
	assert.NotContains(t, result.FieldMatches, "course")
}

func TestCompareNothingExtracted(t *testing.T) {
	result := Compare(FieldSet{}, FieldSet{})
	assert.False(t, result.Verified)
	assert.Zero(t, result.Score)
	assert.NotEmpty(t, result.Reason)
}

func TestCompareNameSmallVariationStillMatches(t *testing.T) {
	doc := FieldSet{Name: "John A Doe", Issuer: "NPTEL"}
	site := FieldSet{Name: "John Doe", Issuer: "NPTEL"}

	result := Compare(doc, site)
	assert.True(t, result.FieldMatches["name"], "initials should stay above the name threshold")
}
