package config

// DefaultRequiredClauses is the required-clause policy applied when the config
// file does not define one. Order matters: missing findings are reported in
// policy order.
var DefaultRequiredClauses = []string{
	"Data privacy protection",
	"Confidentiality",
	"Indemnity",
	"Termination",
}

// DefaultTemplates maps clause types to the template text appended to a
// contract when that clause is missing.
var DefaultTemplates = map[string]string{
	"Data privacy protection": "Data Privacy Protection:\nThe parties agree to comply with applicable data protection laws and implement reasonable technical and organizational measures to protect personal data.",
	"Confidentiality":         "Confidentiality:\nEach party shall keep confidential all non-public information disclosed by the other party and shall not disclose such information to third parties without prior written consent.",
	"Indemnity":               "Indemnity:\nEach party agrees to indemnify and hold harmless the other party from and against any claims, liabilities, losses, and expenses arising out of its breach of this agreement.",
	"Termination":             "Termination:\nEither party may terminate this agreement upon thirty (30) days written notice if the other party materially breaches any obligation and fails to cure within the notice period.",
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = "http://localhost:8080"
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "devsecret"
	}
	if cfg.Auth.TokenTTLHours == 0 {
		cfg.Auth.TokenTTLHours = 10
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/keiyaku/data/keiyaku.db"
	}
	if cfg.Storage.AmendedDir == "" {
		cfg.Storage.AmendedDir = "/usr/local/var/keiyaku/data/amended"
	}
	if cfg.Storage.SheetPath == "" {
		cfg.Storage.SheetPath = "/usr/local/var/keiyaku/data/missing_clauses.xlsx"
	}
	if cfg.Models.TypeModelPath == "" {
		cfg.Models.TypeModelPath = "/usr/local/var/keiyaku/models/clause_type.onnx"
	}
	if cfg.Models.TypeLabelsPath == "" {
		cfg.Models.TypeLabelsPath = "/usr/local/var/keiyaku/models/clause_type_labels.txt"
	}
	if cfg.Models.RiskModelPath == "" {
		cfg.Models.RiskModelPath = "/usr/local/var/keiyaku/models/clause_risk.onnx"
	}
	if cfg.Models.RiskLabelsPath == "" {
		cfg.Models.RiskLabelsPath = "/usr/local/var/keiyaku/models/clause_risk_labels.txt"
	}
	if cfg.Models.VocabPath == "" {
		cfg.Models.VocabPath = "/usr/local/var/keiyaku/models/vocab.txt"
	}
	if cfg.Models.RiskWeightsPath == "" {
		cfg.Models.RiskWeightsPath = "/usr/local/var/keiyaku/models/risk_weights.json"
	}
	if cfg.Policy.RequiredClauses == nil {
		cfg.Policy.RequiredClauses = append([]string(nil), DefaultRequiredClauses...)
	}
	if cfg.Policy.Templates == nil {
		cfg.Policy.Templates = DefaultTemplates
	}
	if cfg.Policy.TitleMarkers == nil {
		cfg.Policy.TitleMarkers = []string{"WEBSITE DESIGN AGREEMENT"}
	}
	if cfg.Policy.MinClauseLength == 0 {
		cfg.Policy.MinClauseLength = 20
	}
	if cfg.Notify.SMTP.Host == "" {
		cfg.Notify.SMTP.Host = "smtp.gmail.com"
	}
	if cfg.Notify.SMTP.Port == 0 {
		cfg.Notify.SMTP.Port = 465
		cfg.Notify.SMTP.UseSSL = true
	}
	if cfg.Notify.SlackChannel == "" {
		cfg.Notify.SlackChannel = "#general"
	}
	if cfg.Notify.SheetName == "" {
		cfg.Notify.SheetName = "MissingClauses"
	}
	if cfg.Notify.Signature == "" {
		cfg.Notify.Signature = "Compliance team"
	}
	if cfg.Notify.ChannelTimeoutMS == 0 {
		cfg.Notify.ChannelTimeoutMS = 10000
	}
	if cfg.Intake.Extensions == nil {
		cfg.Intake.Extensions = []string{".pdf", ".docx", ".txt"}
	}
}
