package notify

import (
	"context"
	"testing"

	"github.com/hyperjump/keiyaku/internal/config"
	"github.com/hyperjump/keiyaku/internal/storage"
)

type stubConfigStore struct {
	values map[string]string
}

func (s *stubConfigStore) CreateUser(context.Context, string, string) error { return nil }
func (s *stubConfigStore) GetUser(context.Context, string) (*storage.User, error) {
	return nil, storage.ErrUserNotFound
}
func (s *stubConfigStore) GetConfig(context.Context) (map[string]string, error) {
	return s.values, nil
}
func (s *stubConfigStore) SetConfig(context.Context, map[string]string) error { return nil }
func (s *stubConfigStore) Close() error                                       { return nil }

func TestSMTPSenderEffectiveConfig(t *testing.T) {
	base := config.SMTPConfig{Host: "smtp.gmail.com", Port: 465, UseSSL: true, Sender: "file@example.com", Password: "filepass"}

	t.Run("no store uses file config", func(t *testing.T) {
		s := NewSMTPSender(base, nil)
		got := s.effectiveConfig(context.Background())
		if got != base {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("store overrides take precedence", func(t *testing.T) {
		store := &stubConfigStore{values: map[string]string{
			"SMTP_HOST":       "mail.corp.example.com",
			"SMTP_PORT":       "587",
			"SMTP_USE_SSL":    "false",
			"EMAIL_SENDER":    "override@example.com",
			"EMAIL_SMTP_PASS": "overridepass",
		}}
		s := NewSMTPSender(base, store)
		got := s.effectiveConfig(context.Background())
		if got.Host != "mail.corp.example.com" || got.Port != 587 || got.UseSSL ||
			got.Sender != "override@example.com" || got.Password != "overridepass" {
			t.Errorf("got %+v", got)
		}
	})

	t.Run("invalid port override is ignored", func(t *testing.T) {
		store := &stubConfigStore{values: map[string]string{"SMTP_PORT": "not-a-port"}}
		s := NewSMTPSender(base, store)
		if got := s.effectiveConfig(context.Background()); got.Port != 465 {
			t.Errorf("port = %d", got.Port)
		}
	})
}

func TestSMTPSenderRequiresSender(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{Host: "smtp.example.com", Port: 465}, nil)
	if err := s.Send(context.Background(), "to@example.com", "subj", "body", ""); err == nil {
		t.Fatal("expected error when sender is not configured")
	}
}
