package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
)

// CoefExplainer attributes risk predictions using per-term coefficients
// exported alongside the trained risk model. A term's contribution is its
// occurrence count times its coefficient, so the explanation reflects what
// the linear model actually weighed.
type CoefExplainer struct {
	weights map[string]float64
}

// NewCoefExplainer loads a JSON file mapping terms to signed coefficients.
func NewCoefExplainer(path string) (*CoefExplainer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open risk weights: %w", err)
	}
	var weights map[string]float64
	if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("parse risk weights: %w", err)
	}
	return &CoefExplainer{weights: weights}, nil
}

// Explain returns attributions for every weighted term present in text,
// ranked by absolute contribution (largest first).
func (e *CoefExplainer) Explain(ctx context.Context, text string) ([]Attribution, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var attrs []Attribution
	for term, count := range TermCounts(text) {
		w, ok := e.weights[term]
		if !ok || w == 0 {
			continue
		}
		attrs = append(attrs, Attribution{Term: term, Contribution: float64(count) * w})
	}
	sort.Slice(attrs, func(i, j int) bool {
		ai, aj := math.Abs(attrs[i].Contribution), math.Abs(attrs[j].Contribution)
		if ai != aj {
			return ai > aj
		}
		return attrs[i].Term < attrs[j].Term
	})
	return attrs, nil
}
