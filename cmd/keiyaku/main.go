// Package main is the Keiyaku CLI entry point.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/hyperjump/keiyaku/internal/analysis"
	"github.com/hyperjump/keiyaku/internal/auth"
	"github.com/hyperjump/keiyaku/internal/clause"
	"github.com/hyperjump/keiyaku/internal/classify"
	"github.com/hyperjump/keiyaku/internal/compliance"
	"github.com/hyperjump/keiyaku/internal/config"
	"github.com/hyperjump/keiyaku/internal/extract"
	"github.com/hyperjump/keiyaku/internal/intake"
	"github.com/hyperjump/keiyaku/internal/models"
	"github.com/hyperjump/keiyaku/internal/notify"
	"github.com/hyperjump/keiyaku/internal/server"
	"github.com/hyperjump/keiyaku/internal/storage"
	"github.com/hyperjump/keiyaku/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/keiyaku/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used instead. Returns the config and the path actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "analyze":
		runAnalyze()
	case "notifications":
		runNotifications()
	case "intake":
		runIntake()
	case "version", "--version", "-v":
		fmt.Printf("keiyaku version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	intakeCtx, intakeCancel := context.WithCancel(context.Background())
	defer intakeCancel()
	if len(cfg.Intake.Directories) > 0 {
		analyzer := components.Analyzer
		recipient := cfg.Notify.DefaultRecipient
		watch := intake.NewWatcher(cfg.Intake.Directories, cfg.Intake.Extensions, func(path string) {
			content, err := os.ReadFile(path)
			if err != nil {
				logger.Warn("intake read failed", zap.String("path", path), zap.Error(err))
				return
			}
			_, err = analyzer.Analyze(context.Background(), analysis.Request{
				Filename:  filepath.Base(path),
				Content:   content,
				Recipient: recipient,
			})
			if err != nil {
				logger.Warn("intake analysis failed", zap.String("path", path), zap.Error(err))
			}
		}, logger)
		if err := watch.Start(intakeCtx); err != nil {
			logger.Fatal("Failed to start intake watcher", zap.Error(err))
		}
		defer watch.Stop()
	}

	srv := server.NewServer(
		components.Analyzer,
		components.Auth,
		components.Dispatcher,
		components.Storage,
		components.Amended,
		components.Email,
		&cfg.Server,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	intakeCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runAnalyze() {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	recipient := fs.String("recipient", "", "notification recipient email (required when clauses are missing)")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: keiyaku analyze [flags] <file>")
		os.Exit(1)
	}
	path := fs.Arg(0)

	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	content, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("Failed to read file: %v\n", err)
		os.Exit(1)
	}
	resp, err := components.Analyzer.Analyze(context.Background(), analysis.Request{
		Filename:  filepath.Base(path),
		Content:   content,
		Recipient: *recipient,
	})
	if err != nil {
		fmt.Printf("Analysis failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Clauses: %d\n", resp.TotalClauses)
	for _, ca := range resp.Analysis {
		fmt.Printf("  [%d] %s (%.2f) risk=%s (%.2f)\n",
			ca.Clause.Index,
			ca.Phase1.PredictedClauseType, ca.Phase1.Confidence,
			ca.Phase3.RiskLevel, ca.Phase3.Confidence)
		fmt.Printf("      %s\n", ca.Phase3.Justification)
	}
	if len(resp.MissingClauses) == 0 {
		fmt.Println("All required clauses present.")
		return
	}
	fmt.Printf("Missing clauses (%d):\n", len(resp.MissingClauses))
	for _, f := range resp.MissingClauses {
		fmt.Printf("  - %s: %s\n", f.Label, f.Reason)
	}
	for _, rec := range resp.Notifications {
		fmt.Printf("Notification stored at %s", rec.Timestamp)
		if rec.EmailSent != nil {
			fmt.Printf(" email_sent=%v", *rec.EmailSent)
		}
		if rec.SheetAppended != nil {
			fmt.Printf(" sheet_appended=%v", *rec.SheetAppended)
		}
		if rec.SlackSent != nil {
			fmt.Printf(" slack_sent=%v", *rec.SlackSent)
		}
		fmt.Println()
	}
}

func runNotifications() {
	fs := flag.NewFlagSet("notifications", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	n := fs.Int("n", 10, "number of notifications to fetch")
	_ = fs.Parse(os.Args[2:])

	url := fmt.Sprintf("%s/api/v1/notifications/latest?n=%d", *serverURL, *n)
	resp, err := http.Get(url)
	if err != nil {
		fmt.Printf("Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Server returned status %d\n", resp.StatusCode)
		os.Exit(1)
	}

	var out struct {
		Notifications []*models.NotificationRecord `json:"notifications"`
		Count         int                          `json:"count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Printf("Failed to decode response: %v\n", err)
		os.Exit(1)
	}
	if out.Count == 0 {
		fmt.Println("No notifications.")
		return
	}
	for _, rec := range out.Notifications {
		fmt.Printf("[%s] %s", rec.Timestamp, rec.Type)
		if rec.Recipient != "" {
			fmt.Printf(" to=%s", rec.Recipient)
		}
		if len(rec.Missing) > 0 {
			fmt.Printf(" missing=%v", rec.Missing)
		}
		fmt.Println()
	}
}

// Components holds the initialized service dependencies.
type Components struct {
	Storage    storage.Storage
	Amended    *storage.AmendedSlot
	Auth       *auth.Manager
	Dispatcher *notify.Dispatcher
	Analyzer   *analysis.Analyzer
	Email      notify.EmailSender

	typeScorer classify.Scorer
	riskScorer classify.Scorer
}

// Close releases component resources.
func (c *Components) Close() {
	if c.typeScorer != nil {
		_ = c.typeScorer.Close()
	}
	if c.riskScorer != nil {
		_ = c.riskScorer.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	authMgr := auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTLHours, cfg.Auth.AdminEmails, store)
	amended := storage.NewAmendedSlot(cfg.Storage.AmendedDir)

	emailSender := notify.NewSMTPSender(cfg.Notify.SMTP, store)
	var sheet notify.SheetAppender
	if cfg.Storage.SheetPath != "" {
		sheet = notify.NewExcelAppender(cfg.Storage.SheetPath, cfg.Notify.SheetName)
	}
	var slack notify.SlackSender
	if cfg.Notify.SlackWebhookURL != "" {
		slack = notify.NewWebhookSender(cfg.Notify.SlackWebhookURL)
	}
	dispatcher := notify.NewDispatcher(notify.NewStore(), emailSender, sheet, slack, cfg.Notify, store, logger)

	typeClf, riskClf, typeScorer, riskScorer := initializeClassifiers(cfg, logger)

	policy, err := compliance.NewPolicy(cfg.Policy.RequiredClauses)
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("invalid clause policy: %w", err)
	}

	analyzer := analysis.NewAnalyzer(
		extract.NewExtractor(),
		clause.NewSegmenter(cfg.Policy.TitleMarkers, cfg.Policy.MinClauseLength),
		typeClf,
		riskClf,
		policy,
		compliance.NewGenerator(cfg.Policy.Templates),
		amended,
		dispatcher,
		cfg.Server.BaseURL,
		logger,
	)

	return &Components{
		Storage:    store,
		Amended:    amended,
		Auth:       authMgr,
		Dispatcher: dispatcher,
		Analyzer:   analyzer,
		Email:      emailSender,
		typeScorer: typeScorer,
		riskScorer: riskScorer,
	}, nil
}

// initializeClassifiers loads the ONNX models and their sidecar files. Any
// load failure degrades the corresponding classifier to its unavailable mode
// instead of aborting startup.
func initializeClassifiers(cfg *config.Config, logger *zap.Logger) (*classify.TypeClassifier, *classify.RiskScorer, classify.Scorer, classify.Scorer) {
	var vectorizer *classify.Vectorizer
	if cfg.Models.VocabPath != "" {
		v, err := classify.NewVectorizer(cfg.Models.VocabPath)
		if err != nil {
			logger.Warn("vocabulary load failed", zap.String("path", cfg.Models.VocabPath), zap.Error(err))
		} else {
			vectorizer = v
		}
	}

	var typeScorer classify.Scorer
	var typeLabels []string
	if vectorizer != nil && cfg.Models.TypeModelPath != "" {
		labels, err := classify.LoadLabels(cfg.Models.TypeLabelsPath)
		if err != nil {
			logger.Warn("type labels load failed", zap.Error(err))
		} else if scorer, err := classify.NewONNXScorer(cfg.Models.TypeModelPath, vectorizer, len(labels)); err != nil {
			logger.Warn("type model load failed, clause typing unavailable", zap.Error(err))
		} else {
			typeScorer = scorer
			typeLabels = labels
		}
	}

	var riskScorer classify.Scorer
	var riskLabels []string
	if vectorizer != nil && cfg.Models.RiskModelPath != "" {
		labels, err := classify.LoadLabels(cfg.Models.RiskLabelsPath)
		if err != nil {
			logger.Warn("risk labels load failed", zap.Error(err))
		} else if scorer, err := classify.NewONNXScorer(cfg.Models.RiskModelPath, vectorizer, len(labels)); err != nil {
			logger.Warn("risk model load failed, risk analysis unavailable", zap.Error(err))
		} else {
			riskScorer = scorer
			riskLabels = labels
		}
	}

	var explainer classify.Explainer
	if cfg.Models.RiskWeightsPath != "" {
		e, err := classify.NewCoefExplainer(cfg.Models.RiskWeightsPath)
		if err != nil {
			logger.Warn("risk weights load failed, explainability unavailable", zap.Error(err))
		} else {
			explainer = e
		}
	}

	typeClf := classify.NewTypeClassifier(typeScorer, typeLabels, logger)
	riskClf := classify.NewRiskScorer(riskScorer, explainer, riskLabels, nil)
	return typeClf, riskClf, typeScorer, riskScorer
}

// runIntake adds or removes a watched intake directory and persists the
// change back to the config file.
func runIntake() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: keiyaku intake <add|remove> <directory> [flags]")
		os.Exit(1)
	}
	action := os.Args[2]
	dir := os.Args[3]

	fs := flag.NewFlagSet("intake", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[4:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		fmt.Printf("Invalid directory: %v\n", err)
		os.Exit(1)
	}

	switch action {
	case "add":
		for _, d := range cfg.Intake.Directories {
			if d == abs {
				fmt.Printf("Directory already watched: %s\n", abs)
				return
			}
		}
		cfg.Intake.Directories = append(cfg.Intake.Directories, abs)
	case "remove":
		kept := cfg.Intake.Directories[:0]
		removed := false
		for _, d := range cfg.Intake.Directories {
			if d == abs {
				removed = true
				continue
			}
			kept = append(kept, d)
		}
		if !removed {
			fmt.Printf("Directory not watched: %s\n", abs)
			os.Exit(1)
		}
		cfg.Intake.Directories = kept
	default:
		fmt.Printf("Unknown intake action: %s\n", action)
		os.Exit(1)
	}

	if err := config.Save(resolvedConfigPath, cfg); err != nil {
		fmt.Printf("Failed to save config: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Intake directories (%d) saved to %s\n", len(cfg.Intake.Directories), resolvedConfigPath)
}

func printUsage() {
	fmt.Println(`keiyaku - Contract clause analysis and compliance service

Usage:
  keiyaku server [flags]            Start the HTTP server
  keiyaku analyze [flags] <file>    Analyze a contract file locally
  keiyaku notifications [flags]     List recent notifications from a running server
  keiyaku intake <add|remove> <dir> Add or remove a watched intake directory
  keiyaku version                   Show version
  keiyaku help                      Show this help

Server Flags:
  --config string      Config file path (default: /usr/local/etc/keiyaku/config.yaml)
  --debug              Enable debug logging

Analyze Flags:
  --config string      Config file path
  --recipient string   Notification recipient email (required when clauses are missing)

Notifications Flags:
  --server string      Server URL (default: http://localhost:8080)
  --n int              Number of notifications to fetch (default: 10)`)
}
