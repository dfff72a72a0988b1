package blurb

import (
	"context"
	"fmt"
	"strings"

	"github.com/lueurxax/perf-review-sync/internal/core/domain"
)

// Semantic labels offered to the classifier. The first two are accepted.
const (
	LabelPerformanceReview = "employee performance review"
	LabelDevelopment       = "professional development feedback"
	LabelUnrelated         = "random unrelated text"
	LabelGibberish         = "gibberish or nonsense"
	LabelNews              = "news article or website content"
)

// SemanticLabels is the fixed label set in classifier order.
var SemanticLabels = []string{
	LabelPerformanceReview,
	LabelDevelopment,
	LabelUnrelated,
	LabelGibberish,
	LabelNews,
}

// Classification is the top label and its confidence.
type Classification = domain.Classification

// Classifier assigns one of labels to text.
type Classifier interface {
	Classify(ctx context.Context, text string, labels []string) (Classification, error)
}

// SemanticCheck asks c whether text reads like review feedback. A nil
// classifier or a classifier error skips the check and accepts; the
// returned error reports why it was skipped.
func SemanticCheck(ctx context.Context, c Classifier, text string, minConfidence float64) (Verdict, float64, error) {
	if c == nil {
		return Verdict{OK: true, Reason: "semantic check skipped: no classifier"}, 0, nil
	}

	res, err := c.Classify(ctx, text, SemanticLabels)
	if err != nil {
		return Verdict{OK: true, Reason: "semantic check skipped: classifier error"}, 0, fmt.Errorf("classifying blurb: %w", err)
	}

	if !isPerformanceLabel(res.Label) {
		return reject("classified as %q (%.2f)", res.Label, res.Score), res.Score, nil
	}

	if res.Score < minConfidence {
		return reject("confidence %.2f below %.2f for %q", res.Score, minConfidence, res.Label), res.Score, nil
	}

	return pass(), res.Score, nil
}

func isPerformanceLabel(label string) bool {
	return strings.EqualFold(label, LabelPerformanceReview) || strings.EqualFold(label, LabelDevelopment)
}
