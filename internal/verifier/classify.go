package verifier

import (
	"context"
	"fmt"

	"certverify/internal/common/logger"
	"certverify/internal/llm"
)

const classifyTextLimit = 3000

// Classifier asks the model to categorize the achievement. Any failure or
// partial answer is absorbed by merging over the fixed defaults, so the
// output always carries every field.
type Classifier struct {
	gen llm.TextGenerator
	log logger.Logger
}

func NewClassifier(gen llm.TextGenerator, log logger.Logger) *Classifier {
	return &Classifier{gen: gen, log: log}
}

func (c *Classifier) Classify(ctx context.Context, text string) Classification {
	result := DefaultClassification()
	if c.gen == nil || text == "" {
		return result
	}

	reply, err := c.gen.Generate(ctx, classificationPrompt(text))
	if err != nil {
		c.log.WithError(err).Warn("classification call failed, using defaults")
		return result
	}

	obj := llm.ParseObject(reply)
	if v := llm.StringField(obj, "category"); v != "" {
		result.Category = v
	}
	if v := llm.StringField(obj, "level"); v != "" {
		result.Level = v
	}
	if v := llm.StringField(obj, "rank"); v != "" {
		result.Rank = v
	}
	if v := llm.StringSlice(obj, "skills"); len(v) > 0 {
		result.Skills = v
	}
	if v := llm.StringField(obj, "summary"); v != "" {
		result.Summary = v
	}
	return result
}

func classificationPrompt(text string) string {
	if len(text) > classifyTextLimit {
		text = text[:classifyTextLimit]
	}
	return fmt.Sprintf(`Extract the following information from this certificate text.

CERTIFICATE TEXT:
%s

Extract and classify:

1. "category": ONE of SPORTS, CULTURAL, EXTENSION, MOOC, INTERNSHIP, PROJECT, TECHNICAL, RESEARCH, OTHER
   (MOOC for online courses from NPTEL/Coursera/edX/Udemy, TECHNICAL for hackathons and coding competitions,
   EXTENSION for NSS/NCC/social service, RESEARCH for papers/patents/publications)
2. "level": ONE of COLLEGE, STATE, NATIONAL, INTERNATIONAL
3. "rank": ONE of PARTICIPATION, FIRST, SECOND, THIRD, WINNER
4. "skills": 3-5 relevant technical or domain skills as a JSON list
5. "summary": a 1-2 sentence summary of the achievement

Return ONLY a JSON object:
{"category": "...", "level": "...", "rank": "...", "skills": ["..."], "summary": "..."}`, text)
}
