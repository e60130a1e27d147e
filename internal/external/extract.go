package external

import (
	"context"
	"strings"

	"certverify/internal/common/errors"
	"certverify/internal/llm"
)

// Extractor turns raw document and site text into FieldSets through the
// text-generation endpoint.
type Extractor struct {
	gen llm.TextGenerator
}

func NewExtractor(gen llm.TextGenerator) *Extractor {
	return &Extractor{gen: gen}
}

// Extract parses both sides independently. The model never sees the
// comparison rules; it only fills the schema per source.
func (e *Extractor) Extract(ctx context.Context, docText string, sources []Source) (doc FieldSet, site FieldSet, err error) {
	prompt := buildExtractionPrompt(docText, sources)
	reply, err := e.gen.Generate(ctx, prompt)
	if err != nil {
		return doc, site, err
	}

	obj := llm.ParseObject(reply)
	if _, raw := obj["_raw_text"]; raw {
		return doc, site, errors.NewLLMParsingFailedError(reply)
	}

	doc = fieldSetFrom(obj, "parsed_pdf_data")
	site = fieldSetFrom(obj, "parsed_site_data")
	return doc, site, nil
}

func fieldSetFrom(obj map[string]any, key string) FieldSet {
	nested, ok := obj[key].(map[string]any)
	if !ok {
		return FieldSet{}
	}
	return FieldSet{
		Name:          cleanField(llm.StringField(nested, "name")),
		Course:        cleanField(llm.StringField(nested, "course")),
		Issuer:        cleanField(llm.StringField(nested, "issuer")),
		Date:          cleanField(llm.StringField(nested, "date")),
		CertificateID: cleanField(llm.StringField(nested, "certificate_id")),
	}
}

// cleanField drops the literal null spellings models emit instead of JSON
// null.
func cleanField(s string) string {
	switch strings.ToLower(s) {
	case "null", "none", "n/a":
		return ""
	}
	return s
}
