package notify

import (
	"context"
	"errors"
	"strconv"

	"github.com/hyperjump/keiyaku/internal/config"
	"github.com/hyperjump/keiyaku/internal/storage"
	"gopkg.in/gomail.v2"
)

// SMTPSender implements EmailSender over SMTP. Connection settings come from
// the config file, with admin config-store values taking precedence so that
// SMTP credentials can be changed without a restart.
type SMTPSender struct {
	cfg   config.SMTPConfig
	store storage.Storage
}

// NewSMTPSender returns a sender. store may be nil (file config only).
func NewSMTPSender(cfg config.SMTPConfig, store storage.Storage) *SMTPSender {
	return &SMTPSender{cfg: cfg, store: store}
}

// Send delivers body to the given address, attaching the file at
// attachmentPath when non-empty.
func (s *SMTPSender) Send(ctx context.Context, to, subject, body, attachmentPath string) error {
	cfg := s.effectiveConfig(ctx)
	if cfg.Sender == "" {
		return errors.New("email sender not configured")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", cfg.Sender)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)
	if attachmentPath != "" {
		m.Attach(attachmentPath)
	}

	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Sender, cfg.Password)
	d.SSL = cfg.UseSSL
	return d.DialAndSend(m)
}

// effectiveConfig merges admin config-store overrides into the file config.
func (s *SMTPSender) effectiveConfig(ctx context.Context) config.SMTPConfig {
	cfg := s.cfg
	if s.store == nil {
		return cfg
	}
	overrides, err := s.store.GetConfig(ctx)
	if err != nil {
		return cfg
	}
	if v, ok := overrides["SMTP_HOST"]; ok && v != "" {
		cfg.Host = v
	}
	if v, ok := overrides["SMTP_PORT"]; ok && v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
		}
	}
	if v, ok := overrides["SMTP_USE_SSL"]; ok && v != "" {
		cfg.UseSSL = v != "0" && v != "false" && v != "False"
	}
	if v, ok := overrides["EMAIL_SENDER"]; ok && v != "" {
		cfg.Sender = v
	}
	if v, ok := overrides["EMAIL_SMTP_PASS"]; ok && v != "" {
		cfg.Password = v
	}
	return cfg
}
