// Package compliance detects required clauses absent from a contract and
// synthesizes amendment text to fill the gaps.
package compliance

import (
	"fmt"

	"github.com/hyperjump/keiyaku/internal/models"
)

// missingReason is the fixed reason attached to every missing-clause finding.
const missingReason = "Required clause not present"

// Policy is an ordered set of clause-type labels that must be present in a
// compliant contract. Labels are unique by construction.
type Policy struct {
	required []string
}

// NewPolicy builds a policy from the given labels, preserving order.
// Duplicate labels are rejected.
func NewPolicy(labels []string) (*Policy, error) {
	seen := make(map[string]bool, len(labels))
	for _, label := range labels {
		if seen[label] {
			return nil, fmt.Errorf("duplicate policy label %q", label)
		}
		seen[label] = true
	}
	return &Policy{required: append([]string(nil), labels...)}, nil
}

// Labels returns the policy labels in order.
func (p *Policy) Labels() []string {
	return append([]string(nil), p.required...)
}

// FindMissing returns one finding per policy label absent from the set of
// predicted types observed across analyses, in policy order. Matching is
// exact label equality: a clause classified under a near-synonym label still
// registers as missing. Deterministic for the same analyses and policy.
func (p *Policy) FindMissing(analyses []*models.ClauseAnalysis) []models.MissingClauseFinding {
	present := make(map[string]bool, len(analyses))
	for _, a := range analyses {
		present[a.Phase1.PredictedClauseType] = true
	}
	findings := []models.MissingClauseFinding{}
	for _, label := range p.required {
		if !present[label] {
			findings = append(findings, models.MissingClauseFinding{Label: label, Reason: missingReason})
		}
	}
	return findings
}
