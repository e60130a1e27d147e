package verifier

import (
	"context"
	"fmt"
	"time"

	"certverify/internal/checks"
	"certverify/internal/common/logger"
	"certverify/internal/common/metrics"
	"certverify/internal/document"
	"certverify/internal/external"
	"certverify/internal/pdfutil"
)

// Thresholds for the combined decision on the external route. The external
// comparator scores on 0..1, the forensic aggregate on 0..100; both gates
// must pass. The exact cut points are inherited calibration, kept
// configurable.
type Thresholds struct {
	ExternalScore float64
	ForensicScore float64
}

// FingerprintSaver records fingerprints of verified certificates into the
// reference corpus.
type FingerprintSaver interface {
	Save(ctx context.Context, binaryHash, canonicalHash string, phash uint64) error
}

// Verifier is the top-level dispatcher.
type Verifier struct {
	acquirer     *document.Acquirer
	orchestrator *checks.Orchestrator
	pipeline     *external.Pipeline
	classifier   *Classifier
	cache        *ResultCache
	refs         FingerprintSaver
	thresholds   Thresholds
	log          logger.Logger
}

func New(acquirer *document.Acquirer, orchestrator *checks.Orchestrator, pipeline *external.Pipeline,
	classifier *Classifier, cache *ResultCache, refs FingerprintSaver, thresholds Thresholds,
	log logger.Logger) *Verifier {
	return &Verifier{
		acquirer:     acquirer,
		orchestrator: orchestrator,
		pipeline:     pipeline,
		classifier:   classifier,
		cache:        cache,
		refs:         refs,
		thresholds:   thresholds,
		log:          log,
	}
}

// Verify runs one full verification. The document reference may be a local
// path or URL; referenceRef optionally names a known-good document to
// fingerprint against. The temp files acquired for the call are destroyed
// on every exit path. Only input errors (missing or unreadable document)
// surface as errors; everything downstream degrades into the report.
func (v *Verifier) Verify(ctx context.Context, ref, referenceRef string) (*Report, error) {
	start := time.Now()

	doc, err := v.acquirer.FromRef(ctx, ref)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	file, err := pdfutil.Open(doc.Path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	cacheKey := ""
	if v.cache != nil {
		cacheKey = v.cache.Key(file.Raw())
		if cached := v.cache.Lookup(ctx, cacheKey); cached != nil {
			v.log.WithFields(map[string]interface{}{"ref": ref}).Info("serving cached verification")
			return cached, nil
		}
	}

	reference, refCleanup := v.openReference(ctx, referenceRef)
	defer refCleanup()

	text, err := file.Text()
	if err != nil {
		v.log.WithError(err).Warn("text extraction failed")
	}

	verificationURL := external.DetectURL(file, text)
	route := "forensic"
	if verificationURL != "" {
		route = "external"
	}

	forensic := v.orchestrator.RunAll(ctx, file, reference)

	var comparison *external.Comparison
	if verificationURL != "" && v.pipeline != nil {
		result := v.pipeline.Verify(ctx, file, text, verificationURL, doc.WorkDir)
		comparison = &result
	}

	classification := v.classifier.Classify(ctx, text)
	report := v.buildReport(forensic, comparison, classification, verificationURL)

	if report.Unified.Status == StatusVerified {
		v.saveFingerprint(ctx, file)
	}

	metrics.VerificationsTotal.WithLabelValues(report.Unified.Status, route).Inc()
	metrics.VerificationDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())

	if v.cache != nil {
		v.cache.Store(ctx, cacheKey, report)
	}

	v.log.WithFields(map[string]interface{}{
		"ref":      ref,
		"status":   report.Unified.Status,
		"route":    route,
		"score":    forensic.FinalScore,
		"duration": time.Since(start).String(),
	}).Info("verification completed")
	return report, nil
}

// openReference best-effort materializes the optional reference document.
// A broken reference only disables the fingerprint comparison.
func (v *Verifier) openReference(ctx context.Context, referenceRef string) (*pdfutil.File, func()) {
	noop := func() {}
	if referenceRef == "" {
		return nil, noop
	}
	refDoc, err := v.acquirer.FromRef(ctx, referenceRef)
	if err != nil {
		v.log.WithError(err).Warn("reference document unavailable")
		return nil, noop
	}
	file, err := pdfutil.Open(refDoc.Path)
	if err != nil {
		refDoc.Close()
		v.log.WithError(err).Warn("reference document unreadable")
		return nil, noop
	}
	return file, func() {
		file.Close()
		refDoc.Close()
	}
}

// buildReport applies the decision rule and assembles the unified output.
func (v *Verifier) buildReport(forensic *checks.AggregateReport, comparison *external.Comparison,
	classification Classification, verificationURL string) *Report {

	status, rejection := v.decide(forensic, comparison)

	var docFields external.FieldSet
	reason := rejection
	if comparison != nil {
		docFields = comparison.DocumentFields
		if reason == "" {
			reason = comparison.Reason
		}
	}
	if reason == "" {
		reason = forensic.OverallReason
	}

	title := docFields.Course
	if title == "" {
		title = "Unknown Certificate"
	}
	issuer := docFields.Issuer
	if issuer == "" {
		issuer = "Unknown"
	}

	return &Report{
		Unified: UnifiedOutput{
			Title:               title,
			IssuingOrganization: issuer,
			VerificationURL:     verificationURL,
			Category:            classification.Category,
			Level:               classification.Level,
			Rank:                classification.Rank,
			DateOfEvent:         docFields.Date,
			AcademicYear:        AcademicYear(docFields.Date),
			AISummary:           classification.Summary,
			Status:              status,
			RejectionReason:     rejection,
			Reason:              reason,
			Skills:              classification.Skills,
		},
		Forensic: forensic,
		External: comparison,
	}
}

// decide merges the two tracks into a status. With an external comparison
// both gates must pass; without one the forensic verdict is adopted
// directly.
func (v *Verifier) decide(forensic *checks.AggregateReport, comparison *external.Comparison) (status, rejection string) {
	if comparison == nil {
		if forensic.FinalVerdict == checks.VerdictOriginal {
			return StatusVerified, ""
		}
		return StatusRejected, fmt.Sprintf(
			"Forensic analysis verdict %s (score: %.1f/100). %s",
			forensic.FinalVerdict, forensic.FinalScore, forensic.OverallReason)
	}

	// Verified carries the comparator's overrides (clearly different
	// names fail whatever the other fields matched), so it gates
	// alongside the score.
	extOK := comparison.Verified && comparison.Score > v.thresholds.ExternalScore
	forOK := forensic.FinalScore > v.thresholds.ForensicScore
	if extOK && forOK {
		return StatusVerified, ""
	}

	switch {
	case !extOK && !forOK:
		rejection = fmt.Sprintf(
			"Both external verification (score: %.2f/1.0) and forensic analysis (score: %.1f/100) failed to meet thresholds.",
			comparison.Score, forensic.FinalScore)
	case !extOK:
		rejection = fmt.Sprintf(
			"External verification failed (score: %.2f/1.0, threshold: %.1f). %s",
			comparison.Score, v.thresholds.ExternalScore, comparison.Reason)
	default:
		rejection = fmt.Sprintf(
			"Forensic analysis failed (score: %.1f/100, threshold: %.1f). %s",
			forensic.FinalScore, v.thresholds.ForensicScore, forensic.OverallReason)
	}
	return StatusRejected, rejection
}

func (v *Verifier) saveFingerprint(ctx context.Context, file *pdfutil.File) {
	if v.refs == nil {
		return
	}
	fp, err := checks.ComputeFingerprint(file)
	if err != nil {
		v.log.WithError(err).Warn("fingerprint of verified document failed")
		return
	}
	if err := v.refs.Save(ctx, fp.BinaryHash, fp.CanonicalHash, fp.PHash); err != nil {
		v.log.WithError(err).Warn("fingerprint save failed")
	}
}
