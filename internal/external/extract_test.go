package external

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"certverify/internal/common/httpclient"
	"certverify/internal/common/logger"
)

type stubGenerator struct {
	reply string
	err   error
	seen  string
}

func (s *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	s.seen = prompt
	return s.reply, s.err
}

func TestExtractParsesBothSides(t *testing.T) {
	gen := &stubGenerator{reply: "```json\n" + `{
		"parsed_pdf_data": {"name": "NAGA RUTHVIK", "course": "Programming in Python", "issuer": "NPTEL", "date": null, "certificate_id": "NPTEL24CS78S436801880"},
		"parsed_site_data": {"name": "NAGA RUTHVIK", "course": "Programming in Python", "issuer": "NPTEL", "date": "null", "certificate_id": "NPTEL24CS78S43680188002689171"}
	}` + "\n```"}

	doc, site, err := NewExtractor(gen).Extract(context.Background(), "pdf text", []Source{
		{URL: "https://nptel.ac.in/verify", ContentType: "html", Text: "site text"},
	})
	require.NoError(t, err)

	assert.Equal(t, "NAGA RUTHVIK", doc.Name)
	assert.Equal(t, "NPTEL24CS78S436801880", doc.CertificateID)
	assert.Empty(t, doc.Date)
	assert.Empty(t, site.Date, "literal null strings are dropped")
	assert.Equal(t, "NPTEL24CS78S43680188002689171", site.CertificateID)

	assert.Contains(t, gen.seen, "pdf text")
	assert.Contains(t, gen.seen, "site text")
	assert.Contains(t, gen.seen, "INDEPENDENTLY")
}

func TestExtractUnparseableReply(t *testing.T) {
	gen := &stubGenerator{reply: "I cannot help with that."}

	_, _, err := NewExtractor(gen).Extract(context.Background(), "text", nil)
	assert.Error(t, err)
}

func TestDetectURLFromText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"plain url", "Verify at https://nptel.ac.in/noc/Ecertificate?q=NPTEL24 for details", "https://nptel.ac.in/noc/Ecertificate?q=NPTEL24"},
		{"http url", "see http://verify.example.com/abc", "http://verify.example.com/abc"},
		{"no url", "no links here", ""},
		{"first url wins", "https://first.example https://second.example", "https://first.example"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, urlPattern.FindString(tt.text))
		})
	}
}

func TestHTMLToText(t *testing.T) {
	html := `<html><head><script>var x = 1;</script><style>body{}</style></head>
	<body><nav>menu</nav><main><h1>Certificate of Completion</h1>
	<p>Awarded   to    NAGA RUTHVIK</p></main><footer>footer junk</footer></body></html>`

	text := htmlToText(html)
	assert.Contains(t, text, "Certificate of Completion")
	assert.Contains(t, text, "Awarded to NAGA RUTHVIK")
	assert.NotContains(t, text, "var x")
	assert.NotContains(t, text, "menu")
	assert.NotContains(t, text, "footer junk")
}

func TestFindPDFLinks(t *testing.T) {
	s := NewScraper(nil, httpclient.NewClient(time.Second, 1), nil, 5, 200, logger.NewNoOpLogger())

	html := `<html><body>
	<a href="/docs/certificate.pdf">Certificate</a>
	<a href="https://cdn.example.com/statement.PDF?sig=abc">Statement</a>
	<a href="/docs/certificate.pdf">duplicate</a>
	<a href="/about">About us</a>
	<iframe src="/embed/scorecard.pdf"></iframe>
	<embed src="javascript:alert(1)">
	</body></html>`

	links := s.findPDFLinks(context.Background(), html, "https://nptel.ac.in/verify/page")
	assert.Equal(t, []string{
		"https://nptel.ac.in/docs/certificate.pdf",
		"https://cdn.example.com/statement.PDF?sig=abc",
		"https://nptel.ac.in/embed/scorecard.pdf",
	}, links)
}
