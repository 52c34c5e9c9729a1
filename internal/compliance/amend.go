package compliance

import (
	"fmt"
	"strings"

	"github.com/hyperjump/keiyaku/internal/models"
)

// SeparatorBanner divides the original contract text from appended clauses.
const SeparatorBanner = "\n\n--- ADDED MISSING CLAUSES ---\n\n"

// Generator synthesizes amended contract text from missing-clause findings
// using a clause-type to template table.
type Generator struct {
	templates map[string]string
}

// NewGenerator returns a generator over the given template table. The table
// is pure data so it can be swapped from configuration.
func NewGenerator(templates map[string]string) *Generator {
	return &Generator{templates: templates}
}

// Generate returns the amended contract: the original text, the separator
// banner, then one resolved template per finding in finding order, joined by
// blank lines. Returns "" when findings is empty (no amendment needed).
// Labels without a template get a generic placeholder.
func (g *Generator) Generate(originalText string, findings []models.MissingClauseFinding) string {
	if len(findings) == 0 {
		return ""
	}
	appended := make([]string, 0, len(findings))
	for _, f := range findings {
		if tmpl, ok := g.templates[f.Label]; ok {
			appended = append(appended, tmpl)
		} else {
			appended = append(appended, fmt.Sprintf("%s: [Please add clause text here]", f.Label))
		}
	}
	return originalText + SeparatorBanner + strings.Join(appended, "\n\n")
}
