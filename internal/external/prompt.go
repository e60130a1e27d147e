package external

import (
	"fmt"
	"strings"
)

const sourceTextLimit = 5000

// buildExtractionPrompt asks the model to parse the uploaded document and
// the scraped sources into the fixed field schema, each side strictly from
// its own text. Matching is NOT delegated to the model; the comparator in
// this package applies the rules deterministically.
func buildExtractionPrompt(docText string, sources []Source) string {
	var blocks strings.Builder
	for _, src := range sources {
		text := src.Text
		if len(text) > sourceTextLimit {
			text = text[:sourceTextLimit]
		}
		fmt.Fprintf(&blocks, "=== SOURCE: %s (%s) ===\n%s\n\n", src.URL, src.ContentType, text)
	}

	if len(docText) > sourceTextLimit {
		docText = docText[:sourceTextLimit]
	}

	return fmt.Sprintf(`You are a strict certificate data extractor.

You will be given two pieces of text:
1. Text extracted from an uploaded certificate (PDF).
2. Text scraped from the official verification URL (possibly several sources).

Your job:
- Parse EACH text INDEPENDENTLY into structured fields: {"name", "course", "issuer", "date", "certificate_id"}
- CRITICAL: Do NOT copy values from the PDF to the Website or vice versa. Extract each field ONLY from its respective source.
- If a field is missing in a source, set it to null. DO NOT fill it with data from the other source.
- If you cannot find a name in the website text, return null for the website name. DO NOT use the PDF name.
- NPTEL website pages are messy: the name is usually a standalone line of UPPERCASE text near the score or roll number.
- Do NOT judge whether the fields match. Only extract.

Output ONLY this JSON:

{
    "parsed_pdf_data": {"name": ..., "course": ..., "issuer": ..., "date": ..., "certificate_id": ...},
    "parsed_site_data": {"name": ..., "course": ..., "issuer": ..., "date": ..., "certificate_id": ...}
}

PDF Extracted Text:
<<<%s>>>

Scraped Website Text:
<<<%s>>>`, docText, blocks.String())
}
