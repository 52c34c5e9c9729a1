// Package models defines core data structures for clauses, analyses, and notifications.
package models

// Clause is one logically numbered or paragraph-delimited unit of contract text.
// Clauses are produced once per document by the segmenter and are immutable;
// Index matches document order and is the sequence's natural key.
type Clause struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// TypePrediction is the phase-1 result: the semantic category assigned to a clause.
// PredictedClauseType is "N/A" when the type model is unavailable and "Unknown"
// when the model returns a class id outside the label table.
type TypePrediction struct {
	PredictedClauseType string  `json:"predicted_clause_type"`
	Confidence          float64 `json:"confidence"`
}

// RiskAssessment is the phase-3 result: a qualitative risk level with confidence
// and a natural-language justification derived from feature attribution.
type RiskAssessment struct {
	RiskLevel     string  `json:"risk_level"`
	Confidence    float64 `json:"confidence"`
	Justification string  `json:"justification"`
}

// ClauseAnalysis pairs a clause with its type and risk results. Ephemeral:
// it exists only for the duration of a single upload request.
type ClauseAnalysis struct {
	Clause Clause         `json:"clause"`
	Phase1 TypePrediction `json:"phase1"`
	Phase3 RiskAssessment `json:"phase3"`
}

// LabeledClause is the display form of a clause ("Clause 1", "Clause 2", ...).
type LabeledClause struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// MissingClauseFinding records a required clause category absent from the
// predicted types observed across a document.
type MissingClauseFinding struct {
	Label  string `json:"label"`
	Reason string `json:"reason"`
}

// NotificationType discriminates notification records.
type NotificationType string

const (
	NotificationMissingClauses NotificationType = "missing_clauses"
	NotificationSlackIncoming  NotificationType = "slack_incoming"
)

// NotificationRecord is one entry in the notification store. Channel outcome
// fields are pointers so that "not attempted" is distinguishable from "failed".
type NotificationRecord struct {
	Type             NotificationType `json:"type"`
	Message          string           `json:"message"`
	Timestamp        string           `json:"timestamp"`
	Recipient        string           `json:"recipient,omitempty"`
	Channel          string           `json:"channel,omitempty"`
	Missing          []string         `json:"missing,omitempty"`
	AmendedAvailable bool             `json:"amended_available,omitempty"`
	EmailSent        *bool            `json:"email_sent,omitempty"`
	SheetAppended    *bool            `json:"sheet_appended,omitempty"`
	SlackSent        *bool            `json:"slack_sent,omitempty"`
	Echoed           *bool            `json:"echoed,omitempty"`
}

// AnalysisResponse is the response of the contract analysis operation.
type AnalysisResponse struct {
	TotalClauses    int                    `json:"total_clauses"`
	Analysis        []*ClauseAnalysis      `json:"analysis"`
	Clauses         []LabeledClause        `json:"clauses"`
	MissingClauses  []MissingClauseFinding `json:"missing_clauses"`
	AmendedContract string                 `json:"amended_contract"`
	Notifications   []*NotificationRecord  `json:"notifications"`
}
