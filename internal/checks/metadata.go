package checks

import (
	"context"
	"fmt"
	"strings"
)

// editing tools whose fingerprints in the producer field mark a re-saved,
// and therefore very likely edited, certificate.
var suspiciousProducers = []string{"canva", "photoshop", "gimp", "word", "ppt", "illustrator"}

// MetadataCheck scores the producer and creator strings of the document
// information dictionary. It is binary on purpose: either the file carries a
// clean generator fingerprint or it does not.
type MetadataCheck struct{}

func NewMetadataCheck() *MetadataCheck { return &MetadataCheck{} }

func (c *MetadataCheck) Name() string { return CheckMetadata }

func (c *MetadataCheck) WeightHint() float64 { return metadataWeight }

func (c *MetadataCheck) Run(_ context.Context, in *Input) (Result, error) {
	meta := in.File.Metadata()
	producer := strings.ToLower(meta["producer"])
	creator := strings.ToLower(meta["creator"])

	score, verdict, reason := scoreMetadata(producer)
	return Result{
		"verdict":     verdict,
		"final_score": score,
		"producer":    producer,
		"creator":     creator,
		"reasons":     []string{reason},
	}, nil
}

func scoreMetadata(producer string) (float64, string, string) {
	for _, tool := range suspiciousProducers {
		if strings.Contains(producer, tool) {
			return 0, VerdictFake, fmt.Sprintf("Suspicious editing software detected: %s", producer)
		}
	}
	if strings.TrimSpace(producer) == "" {
		return 0, VerdictFake, "Producer metadata missing (often in edited files)."
	}
	return 100, VerdictGenuine, "Metadata clean. No editing indicators."
}
