package classify

import (
	"context"
	"fmt"

	"github.com/hyperjump/keiyaku/internal/models"
)

// topAttributions is how many ranked attribution terms feed a justification.
const topAttributions = 5

// RiskScorer assigns a clause a qualitative risk level (phase 3) and derives
// a justification from feature attribution. A nil scorer means the risk model
// is not loaded; a nil explainer means explainability is not available.
type RiskScorer struct {
	scorer    Scorer
	explainer Explainer
	labels    []string
	lexicon   Lexicon
}

// NewRiskScorer wraps scorer and explainer with the risk label table and the
// term-explanation lexicon. Both scorer and explainer may be nil.
func NewRiskScorer(scorer Scorer, explainer Explainer, labels []string, lexicon Lexicon) *RiskScorer {
	if lexicon == nil {
		lexicon = DefaultLexicon
	}
	return &RiskScorer{scorer: scorer, explainer: explainer, labels: labels, lexicon: lexicon}
}

// Assess returns the risk level, confidence, and justification for a clause.
// Every failure mode degrades to a sentinel value in the returned assessment;
// Assess never returns an error.
func (r *RiskScorer) Assess(ctx context.Context, clauseText string) models.RiskAssessment {
	if r == nil || r.scorer == nil {
		return models.RiskAssessment{RiskLevel: "Unknown", Confidence: 0.0, Justification: "Risk model unavailable"}
	}

	classID, confidence, err := r.scorer.Predict(ctx, clauseText)
	if err != nil {
		return models.RiskAssessment{
			RiskLevel:     "Error",
			Confidence:    0.0,
			Justification: fmt.Sprintf("Risk analysis failed: %v", err),
		}
	}

	level := "Unknown"
	if classID >= 0 && classID < len(r.labels) {
		level = r.labels[classID]
	}

	return models.RiskAssessment{
		RiskLevel:     level,
		Confidence:    confidence,
		Justification: r.justify(ctx, clauseText),
	}
}

// justify runs the explainer over the clause and renders the top attributions
// through the lexicon. Explainer errors are captured into the justification
// text rather than propagated.
func (r *RiskScorer) justify(ctx context.Context, clauseText string) string {
	if r.explainer == nil {
		return "Explainability not available"
	}
	attrs, err := r.explainer.Explain(ctx, clauseText)
	if err != nil {
		return fmt.Sprintf("Explainability error: %v", err)
	}
	if len(attrs) > topAttributions {
		attrs = attrs[:topAttributions]
	}
	return r.lexicon.Justify(attrs)
}
