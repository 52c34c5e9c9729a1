package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/hyperjump/keiyaku/internal/analysis"
	"github.com/hyperjump/keiyaku/internal/auth"
	"github.com/hyperjump/keiyaku/internal/notify"
	"github.com/hyperjump/keiyaku/internal/storage"
	"go.uber.org/zap"
)

// adminConfigKeys are the keys writable through the admin config endpoint.
var adminConfigKeys = map[string]bool{
	"SMTP_HOST":       true,
	"SMTP_PORT":       true,
	"SMTP_USE_SSL":    true,
	"EMAIL_SENDER":    true,
	"EMAIL_SMTP_PASS": true,
	"EMAIL_SIGNATURE": true,
	"admin_emails":    true,
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Password == "" {
		s.respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}
	hash, err := s.auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("password hashing failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	if err := s.storage.CreateUser(r.Context(), req.Email, hash); err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			s.respondError(w, http.StatusConflict, "user already exists")
			return
		}
		s.logger.Error("create user failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "registration failed")
		return
	}
	s.respondJSON(w, http.StatusCreated, map[string]string{"email": req.Email, "status": "registered"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := s.auth.Authenticate(r.Context(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.respondError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	if err != nil {
		s.logger.Error("login lookup failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	token, err := s.auth.IssueToken(user.Email)
	if err != nil {
		s.logger.Error("token issue failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "login failed")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"token": token, "email": user.Email})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	email := s.requesterEmail(r)
	if email == "" {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"email":    email,
		"is_admin": s.auth.IsAdmin(r.Context(), email),
	})
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to read upload")
		return
	}

	email := s.requesterEmail(r)
	s.logger.Debug("contract upload",
		zap.String("filename", header.Filename),
		zap.Int("bytes", len(content)),
		zap.String("recipient", email))

	resp, err := s.analyzer.Analyze(r.Context(), analysis.Request{
		Filename:  header.Filename,
		Content:   content,
		Recipient: email,
	})
	if err != nil {
		switch {
		case errors.Is(err, notify.ErrAuthRequired):
			s.respondError(w, http.StatusUnauthorized, err.Error())
		case errors.Is(err, analysis.ErrNoContent), errors.Is(err, analysis.ErrNoClauses):
			s.respondError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.Error("analysis failed", zap.Error(err))
			s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		}
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAmendedLatest(w http.ResponseWriter, r *http.Request) {
	path, err := s.amended.Latest()
	if err != nil {
		s.respondError(w, http.StatusNotFound, "no amended contract available")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="amended_contract.txt"`)
	http.ServeFile(w, r, path)
}

func (s *Server) handleNotificationsLatest(w http.ResponseWriter, r *http.Request) {
	n := 10
	if v := r.URL.Query().Get("n"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			s.respondError(w, http.StatusBadRequest, "n must be a positive integer")
			return
		}
		n = parsed
	}
	records := s.dispatcher.Store().List(n)
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": records,
		"count":         len(records),
	})
}

type dismissRequest struct {
	Timestamp string `json:"timestamp"`
}

func (s *Server) handleNotificationDismiss(w http.ResponseWriter, r *http.Request) {
	email := s.requesterEmail(r)
	if email == "" {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var req dismissRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Timestamp == "" {
		s.respondError(w, http.StatusBadRequest, "timestamp is required")
		return
	}
	removed := s.dispatcher.Store().Dismiss(req.Timestamp, email, s.auth.IsAdmin(r.Context(), email))
	s.respondJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

type slackReceiveRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

func (s *Server) handleSlackReceive(w http.ResponseWriter, r *http.Request) {
	var req slackReceiveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Text == "" {
		s.respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	rec := s.dispatcher.ReceiveSlack(r.Context(), req.Channel, req.Text)
	s.respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleAdminConfigGet(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	values, err := s.storage.GetConfig(r.Context())
	if err != nil {
		s.logger.Error("read admin config failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to read config")
		return
	}
	if _, ok := values["EMAIL_SMTP_PASS"]; ok {
		values["EMAIL_SMTP_PASS"] = "****"
	}
	s.respondJSON(w, http.StatusOK, values)
}

func (s *Server) handleAdminConfigSet(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}
	var items map[string]string
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	for key := range items {
		if !adminConfigKeys[key] {
			s.respondError(w, http.StatusBadRequest, "unknown config key: "+key)
			return
		}
	}
	if err := s.storage.SetConfig(r.Context(), items); err != nil {
		s.logger.Error("write admin config failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "failed to write config")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type testEmailRequest struct {
	To string `json:"to"`
}

func (s *Server) handleAdminTestEmail(w http.ResponseWriter, r *http.Request) {
	email := s.requesterEmail(r)
	if email == "" {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	if !s.auth.IsAdmin(r.Context(), email) {
		s.respondError(w, http.StatusForbidden, "admin privilege required")
		return
	}
	if s.email == nil {
		s.respondError(w, http.StatusNotImplemented, "email channel not configured")
		return
	}
	var req testEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	to := req.To
	if to == "" {
		to = email
	}
	if err := s.email.Send(r.Context(), to, "Keiyaku test email", "This is a test email from the contract analysis service.", ""); err != nil {
		s.logger.Warn("test email failed", zap.Error(err))
		s.respondJSON(w, http.StatusOK, map[string]interface{}{"sent": false, "error": err.Error()})
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"sent": true, "to": to})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requesterEmail resolves the Authorization header to a verified email, or ""
// for anonymous or invalid tokens.
func (s *Server) requesterEmail(r *http.Request) string {
	return s.auth.ResolveEmail(r.Header.Get("Authorization"))
}

// requireAdmin writes the error response and returns false unless the request
// carries a valid admin token.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	email := s.requesterEmail(r)
	if email == "" {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return false
	}
	if !s.auth.IsAdmin(r.Context(), email) {
		s.respondError(w, http.StatusForbidden, "admin privilege required")
		return false
	}
	return true
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
