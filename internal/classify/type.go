package classify

import (
	"context"

	"github.com/hyperjump/keiyaku/internal/models"
	"go.uber.org/zap"
)

// TypeClassifier assigns a clause to a semantic category (phase 1). A nil
// scorer means the type model is not loaded; classification then degrades to
// the "N/A" sentinel instead of failing the pipeline.
type TypeClassifier struct {
	scorer Scorer
	labels []string
	logger *zap.Logger
}

// NewTypeClassifier wraps scorer with the class-id to label table.
// scorer may be nil when the model is unavailable.
func NewTypeClassifier(scorer Scorer, labels []string, logger *zap.Logger) *TypeClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TypeClassifier{scorer: scorer, labels: labels, logger: logger}
}

// Classify returns the predicted clause type with confidence. Scoring failures
// are isolated: they degrade this clause to "N/A" and never propagate.
func (c *TypeClassifier) Classify(ctx context.Context, clauseText string) models.TypePrediction {
	if c == nil || c.scorer == nil {
		return models.TypePrediction{PredictedClauseType: "N/A", Confidence: 0.0}
	}
	classID, confidence, err := c.scorer.Predict(ctx, clauseText)
	if err != nil {
		c.logger.Warn("type classification failed", zap.Error(err))
		return models.TypePrediction{PredictedClauseType: "N/A", Confidence: 0.0}
	}
	if classID < 0 || classID >= len(c.labels) {
		return models.TypePrediction{PredictedClauseType: "Unknown", Confidence: confidence}
	}
	return models.TypePrediction{PredictedClauseType: c.labels[classID], Confidence: confidence}
}
