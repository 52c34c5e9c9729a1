// Package config provides configuration loading and structs for the Keiyaku server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Server  ServerConfig  `yaml:"server"`
	Auth    AuthConfig    `yaml:"auth"`
	Storage StorageConfig `yaml:"storage"`
	Models  ModelsConfig  `yaml:"models"`
	Policy  PolicyConfig  `yaml:"policy"`
	Notify  NotifyConfig  `yaml:"notify"`
	Intake  IntakeConfig  `yaml:"intake"`
}

// ServerConfig holds HTTP server settings. BaseURL is used to build the
// amended-contract download link embedded in notification messages.
type ServerConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	BaseURL string `yaml:"base_url"`
}

// AuthConfig holds bearer-token settings and the admin allow-list.
type AuthConfig struct {
	JWTSecret     string   `yaml:"jwt_secret"`
	TokenTTLHours int      `yaml:"token_ttl_hours"`
	AdminEmails   []string `yaml:"admin_emails"`
}

// StorageConfig holds paths for the database, the amended-document directory,
// and the spreadsheet workbook the sheet channel appends to.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	AmendedDir   string `yaml:"amended_dir"`
	SheetPath    string `yaml:"sheet_path"`
}

// ModelsConfig holds paths for the ONNX classifiers and their sidecar files.
type ModelsConfig struct {
	TypeModelPath   string `yaml:"type_model_path"`
	TypeLabelsPath  string `yaml:"type_labels_path"`
	RiskModelPath   string `yaml:"risk_model_path"`
	RiskLabelsPath  string `yaml:"risk_labels_path"`
	VocabPath       string `yaml:"vocab_path"`
	RiskWeightsPath string `yaml:"risk_weights_path"`
}

// PolicyConfig holds the required-clause policy, the clause templates used to
// amend non-compliant contracts, and segmentation settings.
type PolicyConfig struct {
	RequiredClauses []string          `yaml:"required_clauses"`
	Templates       map[string]string `yaml:"templates"`
	TitleMarkers    []string          `yaml:"title_markers"`
	MinClauseLength int               `yaml:"min_clause_length"`
}

// SMTPConfig holds email delivery settings. Values stored through the admin
// config endpoint override these at dispatch time.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	UseSSL   bool   `yaml:"use_ssl"`
	Sender   string `yaml:"sender"`
	Password string `yaml:"password"`
}

// NotifyConfig holds notification channel settings.
type NotifyConfig struct {
	SMTP             SMTPConfig `yaml:"smtp"`
	SlackWebhookURL  string     `yaml:"slack_webhook_url"`
	SlackChannel     string     `yaml:"slack_channel"`
	SheetName        string     `yaml:"sheet_name"`
	Signature        string     `yaml:"signature"`
	ChannelTimeoutMS int        `yaml:"channel_timeout_ms"`
	DefaultRecipient string     `yaml:"default_recipient"`
}

// IntakeConfig holds the contract intake directory watch settings.
type IntakeConfig struct {
	Directories []string `yaml:"directories"`
	Extensions  []string `yaml:"extensions"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	cfg.Storage.AmendedDir = expandPath(cfg.Storage.AmendedDir, configDir)
	cfg.Storage.SheetPath = expandPath(cfg.Storage.SheetPath, configDir)
	cfg.Models.TypeModelPath = expandPath(cfg.Models.TypeModelPath, configDir)
	cfg.Models.TypeLabelsPath = expandPath(cfg.Models.TypeLabelsPath, configDir)
	cfg.Models.RiskModelPath = expandPath(cfg.Models.RiskModelPath, configDir)
	cfg.Models.RiskLabelsPath = expandPath(cfg.Models.RiskLabelsPath, configDir)
	cfg.Models.VocabPath = expandPath(cfg.Models.VocabPath, configDir)
	cfg.Models.RiskWeightsPath = expandPath(cfg.Models.RiskWeightsPath, configDir)
	for i := range cfg.Intake.Directories {
		cfg.Intake.Directories[i] = expandPath(cfg.Intake.Directories[i], configDir)
	}

	return &cfg, nil
}

// Save writes the config to path. Used for persisting intake directory add/remove.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
