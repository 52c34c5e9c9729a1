package classify

import (
	"context"
	"strings"
)

// MockScorer is a deterministic scorer for tests. It picks the class whose
// keyword appears in the text, falling back to Default when none match.
type MockScorer struct {
	// Rules maps a lowercase keyword to the class id predicted when the
	// keyword occurs in the clause text. First matching rule in Order wins.
	Rules      map[string]int
	Order      []string
	Default    int
	Confidence float64
	Err        error
}

// Predict returns the rule-matched class, or Default when nothing matches.
func (m *MockScorer) Predict(_ context.Context, text string) (int, float64, error) {
	if m.Err != nil {
		return 0, 0, m.Err
	}
	conf := m.Confidence
	if conf == 0 {
		conf = 0.9
	}
	lower := strings.ToLower(text)
	for _, kw := range m.Order {
		if strings.Contains(lower, kw) {
			return m.Rules[kw], conf, nil
		}
	}
	return m.Default, conf, nil
}

// Close is a no-op for MockScorer.
func (m *MockScorer) Close() error { return nil }

// MockExplainer returns fixed attributions, or a fixed error.
type MockExplainer struct {
	Attrs []Attribution
	Err   error
}

// Explain returns the configured attributions.
func (m *MockExplainer) Explain(_ context.Context, _ string) ([]Attribution, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Attrs, nil
}
