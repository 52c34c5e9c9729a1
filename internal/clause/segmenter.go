// Package clause splits extracted contract text into discrete clauses.
package clause

import (
	"regexp"
	"strings"
)

// headingBoundary matches a line break followed by a one- or two-digit
// clause number, a period, and a space ("\n12. "). The separator stays
// attached to the clause that follows it.
var headingBoundary = regexp.MustCompile(`\n\d{1,2}\. `)

// Segmenter splits contract text into an ordered sequence of clause strings.
type Segmenter struct {
	titleMarkers []string
	minLength    int
}

// NewSegmenter returns a segmenter. titleMarkers are document-title lines that
// get a synthetic "0. " heading so the title is treated as clause zero.
// Clauses whose trimmed length is at most minLength are dropped (filters cover
// pages and boilerplate headers).
func NewSegmenter(titleMarkers []string, minLength int) *Segmenter {
	if minLength <= 0 {
		minLength = 20
	}
	return &Segmenter{titleMarkers: titleMarkers, minLength: minLength}
}

// Segment splits text into clauses in document order. Clauses produced by the
// numbered-heading strategy keep their numeric heading prefix. When the text
// contains no numbered headings, blank-line-delimited paragraphs are used
// instead. A document with neither structure nor substantive text yields an
// empty slice; callers must treat that as "no analyzable content".
func (s *Segmenter) Segment(text string) []string {
	text = s.normalizeTitle(text)

	var clauses []string
	locs := headingBoundary.FindAllStringIndex(text, -1)
	start := len(text)
	if len(locs) > 0 {
		start = locs[0][0]
	}
	if pre := strings.TrimSpace(text[:start]); len(pre) > s.minLength {
		clauses = append(clauses, pre)
	}
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		if c := strings.TrimSpace(text[loc[0]:end]); len(c) > s.minLength {
			clauses = append(clauses, c)
		}
	}
	if len(clauses) > 0 {
		return clauses
	}

	// No numbered headings survived: fall back to blank-line paragraphs.
	for _, p := range strings.Split(text, "\n\n") {
		if trimmed := strings.TrimSpace(p); len(trimmed) > s.minLength {
			clauses = append(clauses, trimmed)
		}
	}
	return clauses
}

// normalizeTitle prefixes the first occurrence of a known title marker with a
// synthetic "0. " heading, unless it already carries one.
func (s *Segmenter) normalizeTitle(text string) string {
	for _, marker := range s.titleMarkers {
		idx := strings.Index(text, marker)
		if idx < 0 {
			continue
		}
		if idx >= 3 && text[idx-3:idx] == "0. " {
			continue
		}
		return text[:idx] + "0. " + text[idx:]
	}
	return text
}
