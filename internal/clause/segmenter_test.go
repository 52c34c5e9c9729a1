package clause

import (
	"strings"
	"testing"
)

func TestSegment_numberedHeadings(t *testing.T) {
	s := NewSegmenter(nil, 20)
	text := "\n1. Foo agrees to deliver the goods on time every month." +
		"\n2. Bar agrees to pay the invoice within thirty days."
	clauses := s.Segment(text)
	if len(clauses) != 2 {
		t.Fatalf("expected 2 clauses, got %d: %v", len(clauses), clauses)
	}
	if !strings.HasPrefix(clauses[0], "1. Foo") {
		t.Errorf("clause 0 lost its heading prefix: %q", clauses[0])
	}
	if !strings.HasPrefix(clauses[1], "2. Bar") {
		t.Errorf("clause 1 lost its heading prefix: %q", clauses[1])
	}
}

func TestSegment_preambleKeptWhenLongEnough(t *testing.T) {
	s := NewSegmenter(nil, 20)
	text := "This preamble introduces the parties to the agreement.\n1. Confidentiality shall be maintained by both parties."
	clauses := s.Segment(text)
	if len(clauses) != 2 {
		t.Fatalf("expected preamble + 1 clause, got %d: %v", len(clauses), clauses)
	}
	if !strings.HasPrefix(clauses[0], "This preamble") {
		t.Errorf("preamble missing: %q", clauses[0])
	}
}

func TestSegment_shortPreambleFiltered(t *testing.T) {
	s := NewSegmenter(nil, 20)
	text := "COVER PAGE\n1. Confidentiality shall be maintained by both parties at all times."
	clauses := s.Segment(text)
	if len(clauses) != 1 {
		t.Fatalf("expected short preamble to be dropped, got %v", clauses)
	}
}

func TestSegment_titleMarkerBecomesClauseZero(t *testing.T) {
	s := NewSegmenter([]string{"WEBSITE DESIGN AGREEMENT"}, 20)
	text := "Intro text long enough to survive the filter.\nWEBSITE DESIGN AGREEMENT between the parties below.\n1. Confidentiality shall be maintained by both parties."
	clauses := s.Segment(text)
	found := false
	for _, c := range clauses {
		if strings.Contains(c, "0. WEBSITE DESIGN AGREEMENT") {
			found = true
		}
	}
	if !found {
		t.Errorf("title marker not normalized to clause zero: %v", clauses)
	}
}

func TestSegment_titleMarkerAlreadyNormalized(t *testing.T) {
	s := NewSegmenter([]string{"WEBSITE DESIGN AGREEMENT"}, 20)
	text := "0. WEBSITE DESIGN AGREEMENT\n1. Confidentiality shall be maintained by both parties."
	clauses := s.Segment(text)
	for _, c := range clauses {
		if strings.Contains(c, "0. 0.") {
			t.Errorf("double-normalized title: %q", c)
		}
	}
}

func TestSegment_paragraphFallback(t *testing.T) {
	s := NewSegmenter(nil, 20)
	text := "short\n\nThe first paragraph of the contract without numbering.\n\nThe second paragraph of the contract without numbering."
	clauses := s.Segment(text)
	if len(clauses) != 2 {
		t.Fatalf("expected 2 paragraph clauses, got %d: %v", len(clauses), clauses)
	}
}

func TestSegment_noStructureNoContent(t *testing.T) {
	s := NewSegmenter(nil, 20)
	// No numbered headings, no blank-line breaks, nothing above the length filter.
	if clauses := s.Segment("TABLE OF CONTENTS"); len(clauses) != 0 {
		t.Errorf("expected empty sequence, got %v", clauses)
	}
	if clauses := s.Segment("   \n  \n "); len(clauses) != 0 {
		t.Errorf("expected empty sequence for whitespace, got %v", clauses)
	}
}

func TestSegment_twoDigitHeadings(t *testing.T) {
	s := NewSegmenter(nil, 20)
	text := "\n9. The ninth clause of this agreement binds both parties." +
		"\n10. The tenth clause of this agreement binds both parties." +
		"\n11. The eleventh clause of this agreement binds both parties."
	clauses := s.Segment(text)
	if len(clauses) != 3 {
		t.Fatalf("expected 3 clauses, got %d", len(clauses))
	}
	if !strings.HasPrefix(clauses[2], "11. ") {
		t.Errorf("two-digit heading mishandled: %q", clauses[2])
	}
}

func TestSegment_orderPreserved(t *testing.T) {
	s := NewSegmenter(nil, 20)
	text := "\n1. Alpha clause text that is definitely long enough." +
		"\n2. Beta clause text that is definitely long enough." +
		"\n3. Gamma clause text that is definitely long enough."
	clauses := s.Segment(text)
	want := []string{"1. Alpha", "2. Beta", "3. Gamma"}
	if len(clauses) != len(want) {
		t.Fatalf("expected %d clauses, got %d", len(want), len(clauses))
	}
	for i, prefix := range want {
		if !strings.HasPrefix(clauses[i], prefix) {
			t.Errorf("clause %d = %q, want prefix %q", i, clauses[i], prefix)
		}
	}
}
