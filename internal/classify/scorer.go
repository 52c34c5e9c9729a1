// Package classify wraps the external clause-type and risk classifiers and
// synthesizes human-readable risk justifications from feature attribution.
package classify

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

// Scorer is the capability interface over a trained classifier. Predict
// returns the winning class id and its probability for the given clause text.
// Implementations must be safe for concurrent use.
type Scorer interface {
	Predict(ctx context.Context, text string) (classID int, confidence float64, err error)
	Close() error
}

// Attribution is one term's signed contribution to a risk prediction.
type Attribution struct {
	Term         string
	Contribution float64
}

// Explainer produces per-term attributions for a clause, ranked by absolute
// contribution magnitude (largest first).
type Explainer interface {
	Explain(ctx context.Context, text string) ([]Attribution, error)
}

// LoadLabels reads a label table: one label per line, line number = class id.
func LoadLabels(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open labels: %w", err)
	}
	defer f.Close()

	var labels []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			labels = append(labels, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	return labels, nil
}
