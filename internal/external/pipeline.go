package external

import (
	"context"
	"strings"

	"certverify/internal/common/logger"
	"certverify/internal/pdfutil"
)

// Pipeline runs the full external verification track. Every failure mode
// degrades to an unverified Comparison with a reason; the pipeline never
// propagates an error to the dispatcher.
type Pipeline struct {
	scraper   *Scraper
	extractor *Extractor
	log       logger.Logger
}

func NewPipeline(scraper *Scraper, extractor *Extractor, log logger.Logger) *Pipeline {
	return &Pipeline{scraper: scraper, extractor: extractor, log: log}
}

// Verify cross-checks the document against its verification URL. The URL is
// detected by the caller (the dispatcher also needs it for routing) and
// passed in; workDir receives downloaded PDFs and is owned by the caller.
func (p *Pipeline) Verify(ctx context.Context, file *pdfutil.File, docText, verificationURL, workDir string) Comparison {
	if verificationURL == "" {
		return Comparison{Reason: "No verification URL found on the certificate."}
	}

	sources, err := p.scraper.Fetch(ctx, verificationURL, workDir)
	if err != nil {
		p.log.WithError(err).WithFields(map[string]interface{}{"url": verificationURL}).Warn("scrape failed")
		return Comparison{
			Attempted:       true,
			VerificationURL: verificationURL,
			Reason:          "Verification source could not be fetched: " + err.Error(),
		}
	}
	if totalText(sources) == 0 {
		return Comparison{
			Attempted:       true,
			VerificationURL: verificationURL,
			Reason:          "Verification source contained no readable text.",
		}
	}

	docFields, siteFields, err := p.extractor.Extract(ctx, docText, sources)
	if err != nil {
		p.log.WithError(err).Warn("field extraction failed")
		return Comparison{
			Attempted:       true,
			VerificationURL: verificationURL,
			Reason:          "Field extraction failed: " + err.Error(),
		}
	}

	result := Compare(docFields, siteFields)
	result.VerificationURL = verificationURL
	return result
}

func totalText(sources []Source) int {
	n := 0
	for _, s := range sources {
		n += len(strings.TrimSpace(s.Text))
	}
	return n
}
