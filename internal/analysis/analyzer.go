// Package analysis orchestrates the contract pipeline: extraction, clause
// segmentation, per-clause classification, missing-clause detection,
// amendment generation, and notification dispatch.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hyperjump/keiyaku/internal/clause"
	"github.com/hyperjump/keiyaku/internal/classify"
	"github.com/hyperjump/keiyaku/internal/compliance"
	"github.com/hyperjump/keiyaku/internal/extract"
	"github.com/hyperjump/keiyaku/internal/models"
	"github.com/hyperjump/keiyaku/internal/notify"
	"github.com/hyperjump/keiyaku/internal/storage"
	"go.uber.org/zap"
)

// ErrNoContent is returned when extraction yields no usable text.
var ErrNoContent = errors.New("no text content extracted from document")

// ErrNoClauses is returned when segmentation finds nothing analyzable.
var ErrNoClauses = errors.New("no clauses found in document")

// Request is one contract analysis job.
type Request struct {
	// Filename is the original upload name; its extension selects the
	// extraction strategy.
	Filename string
	// Content is the raw document bytes.
	Content []byte
	// Recipient is the authenticated user's email, or "" when anonymous.
	Recipient string
}

// Analyzer runs the full pipeline over one document.
type Analyzer struct {
	extractor  *extract.Extractor
	segmenter  *clause.Segmenter
	typeClf    *classify.TypeClassifier
	riskClf    *classify.RiskScorer
	policy     *compliance.Policy
	generator  *compliance.Generator
	amended    *storage.AmendedSlot
	dispatcher *notify.Dispatcher
	baseURL    string
	logger     *zap.Logger
}

// NewAnalyzer wires the pipeline. baseURL is the externally reachable prefix
// used to build amended-contract download links.
func NewAnalyzer(
	extractor *extract.Extractor,
	segmenter *clause.Segmenter,
	typeClf *classify.TypeClassifier,
	riskClf *classify.RiskScorer,
	policy *compliance.Policy,
	generator *compliance.Generator,
	amended *storage.AmendedSlot,
	dispatcher *notify.Dispatcher,
	baseURL string,
	logger *zap.Logger,
) *Analyzer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Analyzer{
		extractor:  extractor,
		segmenter:  segmenter,
		typeClf:    typeClf,
		riskClf:    riskClf,
		policy:     policy,
		generator:  generator,
		amended:    amended,
		dispatcher: dispatcher,
		baseURL:    baseURL,
		logger:     logger,
	}
}

// Analyze runs extraction through notification for one document. Dispatch
// happens only when required clauses are missing; notify.ErrAuthRequired
// propagates so callers can demand authentication, but persistence failures
// degrade the result (no download link) without failing the analysis.
func (a *Analyzer) Analyze(ctx context.Context, req Request) (*models.AnalysisResponse, error) {
	ext := extract.Ext(req.Filename)
	text, err := a.extractor.ExtractBytes(req.Content, ext)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", req.Filename, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrNoContent
	}

	segments := a.segmenter.Segment(text)
	if len(segments) == 0 {
		return nil, ErrNoClauses
	}

	analyses := make([]*models.ClauseAnalysis, 0, len(segments))
	labeled := make([]models.LabeledClause, 0, len(segments))
	for i, seg := range segments {
		analyses = append(analyses, &models.ClauseAnalysis{
			Clause: models.Clause{Index: i, Text: seg},
			Phase1: a.typeClf.Classify(ctx, seg),
			Phase3: a.riskClf.Assess(ctx, seg),
		})
		labeled = append(labeled, models.LabeledClause{
			Label: fmt.Sprintf("Clause %d", i+1),
			Text:  seg,
		})
	}

	findings := a.policy.FindMissing(analyses)

	resp := &models.AnalysisResponse{
		TotalClauses:   len(analyses),
		Analysis:       analyses,
		Clauses:        labeled,
		MissingClauses: findings,
		Notifications:  []*models.NotificationRecord{},
	}
	if len(findings) == 0 {
		return resp, nil
	}

	amendedText := a.generator.Generate(text, findings)
	resp.AmendedContract = amendedText

	var amendedPath, downloadURL string
	path, err := a.amended.Save(amendedText)
	if err != nil {
		a.logger.Warn("failed to persist amended contract", zap.Error(err))
	} else {
		amendedPath = path
		downloadURL = a.baseURL + "/api/v1/amended/latest"
	}

	rec, err := a.dispatcher.Dispatch(ctx, notify.DispatchRequest{
		Recipient:          req.Recipient,
		Filename:           req.Filename,
		Findings:           findings,
		AmendmentAvailable: amendedPath != "",
		DownloadURL:        downloadURL,
		AttachmentPath:     amendedPath,
	})
	if err != nil {
		return nil, err
	}
	resp.Notifications = append(resp.Notifications, rec)

	return resp, nil
}
