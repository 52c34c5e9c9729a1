package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestCreateAndGetUser(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	if err := store.CreateUser(ctx, "alice@example.com", "hash123"); err != nil {
		t.Fatal(err)
	}
	u, err := store.GetUser(ctx, "alice@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if u.Email != "alice@example.com" || u.PasswordHash != "hash123" {
		t.Errorf("unexpected user: %+v", u)
	}
	if u.CreatedAt.IsZero() {
		t.Error("created_at not set")
	}
}

func TestCreateUser_duplicate(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	if err := store.CreateUser(ctx, "bob@example.com", "h1"); err != nil {
		t.Fatal(err)
	}
	if err := store.CreateUser(ctx, "bob@example.com", "h2"); !errors.Is(err, ErrUserExists) {
		t.Errorf("expected ErrUserExists, got %v", err)
	}
}

func TestGetUser_notFound(t *testing.T) {
	store := newTestStorage(t)
	if _, err := store.GetUser(context.Background(), "ghost@example.com"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestConfigRoundTrip(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()

	if err := store.SetConfig(ctx, map[string]string{"SMTP_HOST": "mail.example.com", "EMAIL_SIGNATURE": "Legal team"}); err != nil {
		t.Fatal(err)
	}
	// Upsert overwrites.
	if err := store.SetConfig(ctx, map[string]string{"SMTP_HOST": "mail2.example.com"}); err != nil {
		t.Fatal(err)
	}
	cfg, err := store.GetConfig(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if cfg["SMTP_HOST"] != "mail2.example.com" {
		t.Errorf("SMTP_HOST = %q", cfg["SMTP_HOST"])
	}
	if cfg["EMAIL_SIGNATURE"] != "Legal team" {
		t.Errorf("EMAIL_SIGNATURE = %q", cfg["EMAIL_SIGNATURE"])
	}
}
