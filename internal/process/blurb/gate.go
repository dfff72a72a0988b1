// Package blurb decides whether a generated manager blurb is fit to publish.
//
// A candidate passes through a rule check and an optional semantic check.
// When the model output fails, a sentence-extraction fallback gets one
// attempt; when that fails too the fixed manual-review sentinel is used, so
// the gate never yields an empty string.
package blurb

import (
	"context"

	"github.com/rs/zerolog"
)

// State is a step of the per-blurb state machine.
type State string

const (
	StateGenerated         State = "generated"
	StateRuleChecked       State = "rule_checked"
	StateSemanticChecked   State = "semantic_checked"
	StateFallbackAttempted State = "fallback_attempted"
	StateAccepted          State = "accepted"
	StateManualReview      State = "manual_review"
)

// Source tells which text the gate settled on.
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
	SourceSentinel Source = "sentinel"
)

// Stage names used in rejection records.
const (
	StageRules    = "rules"
	StageSemantic = "semantic"
)

// Rejection records why a candidate failed.
type Rejection struct {
	Source Source
	Stage  string
	Reason string
}

// Outcome is the detailed result of Evaluate.
type Outcome struct {
	Text       string
	Source     Source
	State      State
	Trail      []State
	Rejections []Rejection
	// SemanticSkipped is set when the classifier was missing or failed.
	SemanticSkipped bool
	Confidence      float64
}

// Gate combines the rule check, the semantic check and the fallback policy.
type Gate struct {
	th         Thresholds
	rules      *RuleChecker
	classifier Classifier
	logger     *zerolog.Logger
}

// NewGate builds a gate. classifier may be nil for rule-only operation.
func NewGate(th Thresholds, classifier Classifier, logger *zerolog.Logger) *Gate {
	th = th.withDefaults()

	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Gate{
		th:         th,
		rules:      NewRuleChecker(th),
		classifier: classifier,
		logger:     logger,
	}
}

// Thresholds returns the effective thresholds.
func (g *Gate) Thresholds() Thresholds {
	return g.th
}

// RuleCheck runs the rule stage alone.
func (g *Gate) RuleCheck(text string) Verdict {
	return g.rules.Check(text)
}

// Accept returns raw, the fallback text or ManualReviewSentinel.
func (g *Gate) Accept(ctx context.Context, raw string, fallback func() string) string {
	return g.Evaluate(ctx, raw, fallback).Text
}

// Evaluate runs the full policy and records how the decision was reached.
func (g *Gate) Evaluate(ctx context.Context, raw string, fallback func() string) Outcome {
	out := Outcome{Trail: []State{StateGenerated}}

	if g.check(ctx, &out, SourceModel, raw) {
		return out.accept(raw, SourceModel)
	}

	out.Trail = append(out.Trail, StateFallbackAttempted)

	candidate := ManualReviewSentinel
	if fallback != nil {
		candidate = fallback()
	}

	if candidate == ManualReviewSentinel || candidate == "" {
		return out.manualReview()
	}

	if g.check(ctx, &out, SourceFallback, candidate) {
		return out.accept(candidate, SourceFallback)
	}

	return out.manualReview()
}

func (g *Gate) check(ctx context.Context, out *Outcome, src Source, text string) bool {
	verdict := g.rules.Check(text)
	out.Trail = append(out.Trail, StateRuleChecked)

	if !verdict.OK {
		out.Rejections = append(out.Rejections, Rejection{Source: src, Stage: StageRules, Reason: verdict.Reason})
		return false
	}

	if g.classifier == nil {
		out.SemanticSkipped = true
		return true
	}

	verdict, confidence, err := SemanticCheck(ctx, g.classifier, text, g.th.SemanticMinConfidence)
	out.Trail = append(out.Trail, StateSemanticChecked)
	out.Confidence = confidence

	if err != nil {
		out.SemanticSkipped = true

		g.logger.Warn().Err(err).Str("source", string(src)).Msg("semantic check unavailable, accepting on rules only")

		return true
	}

	if !verdict.OK {
		out.Rejections = append(out.Rejections, Rejection{Source: src, Stage: StageSemantic, Reason: verdict.Reason})
		return false
	}

	return true
}

func (o Outcome) accept(text string, src Source) Outcome {
	o.Text = text
	o.Source = src
	o.State = StateAccepted
	o.Trail = append(o.Trail, StateAccepted)

	return o
}

func (o Outcome) manualReview() Outcome {
	o.Text = ManualReviewSentinel
	o.Source = SourceSentinel
	o.State = StateManualReview
	o.Trail = append(o.Trail, StateManualReview)

	return o
}
