package analysis

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/keiyaku/internal/clause"
	"github.com/hyperjump/keiyaku/internal/classify"
	"github.com/hyperjump/keiyaku/internal/compliance"
	"github.com/hyperjump/keiyaku/internal/config"
	"github.com/hyperjump/keiyaku/internal/extract"
	"github.com/hyperjump/keiyaku/internal/notify"
	"github.com/hyperjump/keiyaku/internal/storage"
	"go.uber.org/zap"
)

const sampleContract = `0. WEBSITE DESIGN AGREEMENT

This agreement is entered into between the parties for the design and
delivery of a company website.

1. Confidentiality. Both parties shall keep all exchanged materials,
designs, and business information strictly confidential for the term of
this agreement and five years thereafter.

2. Termination. Either party may terminate this agreement with thirty
days written notice if the other party materially breaches its
obligations and fails to cure within that period.
`

func newTestAnalyzer(t *testing.T, dispatcher *notify.Dispatcher) *Analyzer {
	t.Helper()
	return newTestAnalyzerWithSlot(t, dispatcher, storage.NewAmendedSlot(t.TempDir()))
}

func newTestAnalyzerWithSlot(t *testing.T, dispatcher *notify.Dispatcher, slot *storage.AmendedSlot) *Analyzer {
	t.Helper()

	typeLabels := []string{"Confidentiality", "Termination", "Indemnity", "Data privacy protection", "Other"}
	typeScorer := &classify.MockScorer{
		Rules:   map[string]int{"confidential": 0, "terminat": 1, "indemn": 2, "privacy": 3},
		Order:   []string{"confidential", "terminat", "indemn", "privacy"},
		Default: 4,
	}
	riskScorer := &classify.MockScorer{Default: 1, Confidence: 0.8}

	policy, err := compliance.NewPolicy(config.DefaultRequiredClauses)
	if err != nil {
		t.Fatalf("NewPolicy: %v", err)
	}

	return NewAnalyzer(
		extract.NewExtractor(),
		clause.NewSegmenter([]string{"WEBSITE DESIGN AGREEMENT"}, 20),
		classify.NewTypeClassifier(typeScorer, typeLabels, zap.NewNop()),
		classify.NewRiskScorer(riskScorer, nil, []string{"Low", "Medium", "High"}, nil),
		policy,
		compliance.NewGenerator(config.DefaultTemplates),
		slot,
		dispatcher,
		"http://localhost:8080",
		zap.NewNop(),
	)
}

func newTestDispatcher() *notify.Dispatcher {
	cfg := config.NotifyConfig{SlackChannel: "#general", Signature: "Compliance team", ChannelTimeoutMS: 2000}
	return notify.NewDispatcher(notify.NewStore(), nil, nil, nil, cfg, nil, zap.NewNop())
}

func TestAnalyzeDetectsMissingClauses(t *testing.T) {
	dispatcher := newTestDispatcher()
	a := newTestAnalyzer(t, dispatcher)

	resp, err := a.Analyze(context.Background(), Request{
		Filename:  "agreement.txt",
		Content:   []byte(sampleContract),
		Recipient: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if resp.TotalClauses != 3 {
		t.Errorf("TotalClauses = %d, want 3", resp.TotalClauses)
	}
	if len(resp.Clauses) != 3 || resp.Clauses[0].Label != "Clause 1" {
		t.Errorf("labeled clauses = %+v", resp.Clauses)
	}

	wantMissing := []string{"Data privacy protection", "Indemnity"}
	if len(resp.MissingClauses) != 2 {
		t.Fatalf("missing clauses = %+v, want 2 findings", resp.MissingClauses)
	}
	got := []string{resp.MissingClauses[0].Label, resp.MissingClauses[1].Label}
	for _, want := range wantMissing {
		found := false
		for _, g := range got {
			if g == want {
				found = true
			}
		}
		if !found {
			t.Errorf("missing clause %q not reported; got %v", want, got)
		}
	}
	for _, f := range resp.MissingClauses {
		if f.Reason != "Required clause not present" {
			t.Errorf("finding reason = %q", f.Reason)
		}
	}

	if !strings.Contains(resp.AmendedContract, "--- ADDED MISSING CLAUSES ---") {
		t.Error("amended contract missing separator banner")
	}
	if !strings.HasPrefix(resp.AmendedContract, "0. WEBSITE DESIGN AGREEMENT") {
		t.Error("amended contract does not start with the original text")
	}
	for _, label := range wantMissing {
		if !strings.Contains(resp.AmendedContract, config.DefaultTemplates[label]) {
			t.Errorf("amended contract missing template for %q", label)
		}
	}

	if len(resp.Notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(resp.Notifications))
	}
	rec := resp.Notifications[0]
	if rec.Recipient != "alice@example.com" {
		t.Errorf("notification recipient = %q", rec.Recipient)
	}
	if len(rec.Missing) != 2 {
		t.Errorf("notification missing labels = %v", rec.Missing)
	}
	if !rec.AmendedAvailable {
		t.Error("notification should report amendment available")
	}
	if dispatcher.Store().Len() != 1 {
		t.Errorf("store has %d records, want 1", dispatcher.Store().Len())
	}
}

func TestAnalyzeCompliantContract(t *testing.T) {
	dispatcher := newTestDispatcher()
	a := newTestAnalyzer(t, dispatcher)

	full := sampleContract + `
3. Indemnity. Each party shall indemnify and hold harmless the other
against third-party claims arising from its own negligence or breach.

4. Data privacy protection. Both parties shall process personal data in
accordance with applicable data protection laws and limit collection to
what the engagement requires.
`
	resp, err := a.Analyze(context.Background(), Request{
		Filename:  "agreement.txt",
		Content:   []byte(full),
		Recipient: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if len(resp.MissingClauses) != 0 {
		t.Errorf("missing clauses = %+v, want none", resp.MissingClauses)
	}
	if resp.AmendedContract != "" {
		t.Error("no amendment expected for a compliant contract")
	}
	if len(resp.Notifications) != 0 {
		t.Errorf("notifications = %d, want none", len(resp.Notifications))
	}
	if dispatcher.Store().Len() != 0 {
		t.Error("no record should be stored for a compliant contract")
	}
}

func TestAnalyzePersistFailureKeepsInlineAmendment(t *testing.T) {
	dispatcher := newTestDispatcher()
	// A regular file where the slot expects its directory makes Save fail.
	blocked := filepath.Join(t.TempDir(), "blocked")
	if err := os.WriteFile(blocked, []byte("x"), 0600); err != nil {
		t.Fatal(err)
	}
	slot := storage.NewAmendedSlot(filepath.Join(blocked, "amended"))
	a := newTestAnalyzerWithSlot(t, dispatcher, slot)

	resp, err := a.Analyze(context.Background(), Request{
		Filename:  "agreement.txt",
		Content:   []byte(sampleContract),
		Recipient: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if !strings.Contains(resp.AmendedContract, "--- ADDED MISSING CLAUSES ---") {
		t.Error("amended text should still be returned inline")
	}
	if len(resp.Notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(resp.Notifications))
	}
	rec := resp.Notifications[0]
	if rec.AmendedAvailable {
		t.Error("notification should not advertise a stored amendment")
	}
	if strings.Contains(rec.Message, "/api/v1/amended/latest") {
		t.Errorf("message should not carry a download link: %q", rec.Message)
	}
	if _, err := slot.Latest(); !errors.Is(err, storage.ErrNoAmended) {
		t.Errorf("slot should remain empty, Latest err = %v", err)
	}
}

func TestAnalyzeRequiresAuthOnlyWhenClausesMissing(t *testing.T) {
	dispatcher := newTestDispatcher()
	a := newTestAnalyzer(t, dispatcher)

	_, err := a.Analyze(context.Background(), Request{
		Filename: "agreement.txt",
		Content:  []byte(sampleContract),
	})
	if !errors.Is(err, notify.ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired for anonymous upload with findings, got %v", err)
	}
	if dispatcher.Store().Len() != 0 {
		t.Error("no record should be stored when dispatch is refused")
	}
}

func TestAnalyzeEmptyDocument(t *testing.T) {
	a := newTestAnalyzer(t, newTestDispatcher())

	_, err := a.Analyze(context.Background(), Request{
		Filename: "empty.txt",
		Content:  []byte("   \n\n  "),
	})
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("expected ErrNoContent, got %v", err)
	}
}

func TestAnalyzeNoClauses(t *testing.T) {
	a := newTestAnalyzer(t, newTestDispatcher())

	_, err := a.Analyze(context.Background(), Request{
		Filename: "toc.txt",
		Content:  []byte("TABLE OF CONTENTS"),
	})
	if !errors.Is(err, ErrNoClauses) {
		t.Fatalf("expected ErrNoClauses, got %v", err)
	}
}

func TestAnalyzeUnsupportedFormat(t *testing.T) {
	a := newTestAnalyzer(t, newTestDispatcher())

	_, err := a.Analyze(context.Background(), Request{
		Filename: "contract.xlsx",
		Content:  []byte("irrelevant"),
	})
	if err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestAnalyzeModelsUnavailable(t *testing.T) {
	dispatcher := newTestDispatcher()
	policy, _ := compliance.NewPolicy(config.DefaultRequiredClauses)
	a := NewAnalyzer(
		extract.NewExtractor(),
		clause.NewSegmenter(nil, 20),
		classify.NewTypeClassifier(nil, nil, zap.NewNop()),
		classify.NewRiskScorer(nil, nil, nil, nil),
		policy,
		compliance.NewGenerator(config.DefaultTemplates),
		storage.NewAmendedSlot(t.TempDir()),
		dispatcher,
		"http://localhost:8080",
		zap.NewNop(),
	)

	resp, err := a.Analyze(context.Background(), Request{
		Filename:  "agreement.txt",
		Content:   []byte(sampleContract),
		Recipient: "alice@example.com",
	})
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	for _, ca := range resp.Analysis {
		if ca.Phase1.PredictedClauseType != "N/A" {
			t.Errorf("clause %d type = %q, want N/A", ca.Clause.Index, ca.Phase1.PredictedClauseType)
		}
		if ca.Phase3.RiskLevel != "Unknown" || ca.Phase3.Justification != "Risk model unavailable" {
			t.Errorf("clause %d risk = %+v", ca.Clause.Index, ca.Phase3)
		}
	}
	// With every clause typed N/A, all required clauses register as missing.
	if len(resp.MissingClauses) != len(config.DefaultRequiredClauses) {
		t.Errorf("missing clauses = %d, want all %d", len(resp.MissingClauses), len(config.DefaultRequiredClauses))
	}
}
