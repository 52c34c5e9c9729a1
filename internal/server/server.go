// Package server provides the HTTP API for Keiyaku.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/keiyaku/internal/analysis"
	"github.com/hyperjump/keiyaku/internal/auth"
	"github.com/hyperjump/keiyaku/internal/config"
	"github.com/hyperjump/keiyaku/internal/notify"
	"github.com/hyperjump/keiyaku/internal/storage"
	"go.uber.org/zap"
)

// maxUploadBytes bounds contract uploads.
const maxUploadBytes = 32 << 20

// Server is the HTTP server for the Keiyaku API.
type Server struct {
	analyzer   *analysis.Analyzer
	auth       *auth.Manager
	dispatcher *notify.Dispatcher
	storage    storage.Storage
	amended    *storage.AmendedSlot
	email      notify.EmailSender
	config     *config.ServerConfig
	logger     *zap.Logger
	server     *http.Server
}

// NewServer creates a server with the given dependencies. email may be nil;
// the admin test-email endpoint then reports the channel as unconfigured.
func NewServer(
	analyzer *analysis.Analyzer,
	authMgr *auth.Manager,
	dispatcher *notify.Dispatcher,
	store storage.Storage,
	amended *storage.AmendedSlot,
	email notify.EmailSender,
	cfg *config.ServerConfig,
	logger *zap.Logger,
) *Server {
	return &Server{
		analyzer:   analyzer,
		auth:       authMgr,
		dispatcher: dispatcher,
		storage:    store,
		amended:    amended,
		email:      email,
		config:     cfg,
		logger:     logger,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	r.Post("/api/v1/auth/register", s.handleRegister)
	r.Post("/api/v1/auth/login", s.handleLogin)
	r.Get("/api/v1/auth/me", s.handleMe)

	r.Post("/api/v1/contracts/upload", s.handleUpload)
	r.Get("/api/v1/amended/latest", s.handleAmendedLatest)

	r.Get("/api/v1/notifications/latest", s.handleNotificationsLatest)
	r.Post("/api/v1/notifications/dismiss", s.handleNotificationDismiss)
	r.Post("/api/v1/slack/receive", s.handleSlackReceive)

	r.Get("/api/v1/admin/config", s.handleAdminConfigGet)
	r.Post("/api/v1/admin/config", s.handleAdminConfigSet)
	r.Post("/api/v1/admin/test-email", s.handleAdminTestEmail)

	r.Get("/health", s.handleHealth)

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
