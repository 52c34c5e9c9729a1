package classify

import (
	"fmt"
	"strings"
)

// DefaultLexicon maps risk-indicator terms to plain-language explanations.
// Terms outside the lexicon are reported verbatim, quoted, with their
// contribution direction.
var DefaultLexicon = map[string]string{
	"assignment":   "allows unrestricted rights transfer",
	"ten":          "contains ambiguous numeric thresholds",
	"business":     "affects business-wide clauses",
	"party":        "unclear responsibility wording",
	"confidential": "incomplete confidentiality terms",
}

// Lexicon renders attributions as a human-readable justification.
type Lexicon map[string]string

// Justify renders the given attributions, in order, as one justification
// string. Positive contributions read "increases risk", negative "reduces
// risk". An empty attribution list yields the fixed no-signal message.
func (l Lexicon) Justify(attrs []Attribution) string {
	if len(attrs) == 0 {
		return "No strong risk indicators found."
	}
	parts := make([]string, 0, len(attrs))
	for _, a := range attrs {
		direction := "increases risk"
		if a.Contribution <= 0 {
			direction = "reduces risk"
		}
		if explanation, ok := l[strings.ToLower(a.Term)]; ok {
			parts = append(parts, fmt.Sprintf("%s (%s)", explanation, direction))
		} else {
			parts = append(parts, fmt.Sprintf("'%s' (%s)", a.Term, direction))
		}
	}
	return strings.Join(parts, " ")
}
