// Package auth provides password hashing, bearer-token issue/verify, and
// admin allow-list resolution.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/hyperjump/keiyaku/internal/storage"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when a login attempt fails.
var ErrInvalidCredentials = errors.New("invalid credentials")

// adminEmailsKey is the admin config key overriding the configured allow-list.
const adminEmailsKey = "admin_emails"

// Manager issues and verifies HS256 bearer tokens carrying an email claim,
// and answers administrator checks against a configurable allow-list.
type Manager struct {
	secret      []byte
	ttl         time.Duration
	adminEmails []string
	store       storage.Storage
}

// NewManager returns a manager. adminEmails is the config-file allow-list;
// a comma-separated "admin_emails" value in the admin config store overrides
// it. store may be nil (file allow-list only).
func NewManager(secret string, ttlHours int, adminEmails []string, store storage.Storage) *Manager {
	if ttlHours <= 0 {
		ttlHours = 10
	}
	return &Manager{
		secret:      []byte(secret),
		ttl:         time.Duration(ttlHours) * time.Hour,
		adminEmails: adminEmails,
		store:       store,
	}
}

// HashPassword returns the bcrypt hash of password.
func (m *Manager) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored bcrypt hash.
func (m *Manager) VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// Authenticate checks email and password against the user store. Unknown
// users and wrong passwords both return ErrInvalidCredentials so callers
// cannot distinguish them; storage failures pass through unchanged.
func (m *Manager) Authenticate(ctx context.Context, email, password string) (*storage.User, error) {
	if m.store == nil {
		return nil, ErrInvalidCredentials
	}
	user, err := m.store.GetUser(ctx, email)
	if errors.Is(err, storage.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !m.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken returns a signed token for email, valid for the configured TTL.
func (m *Manager) IssueToken(email string) (string, error) {
	claims := jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(m.ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ResolveEmail verifies a bearer credential and returns the authenticated
// email, or "" when the token is missing, malformed, expired, or forged.
// A "Bearer " prefix is accepted and stripped.
func (m *Manager) ResolveEmail(token string) string {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return ""
	}
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return ""
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	email, _ := claims["email"].(string)
	return email
}

// IsAdmin reports whether email is on the admin allow-list. The admin config
// store takes precedence over the config file when it defines admin_emails.
func (m *Manager) IsAdmin(ctx context.Context, email string) bool {
	if email == "" {
		return false
	}
	allowed := m.adminEmails
	if m.store != nil {
		if cfg, err := m.store.GetConfig(ctx); err == nil {
			if raw, ok := cfg[adminEmailsKey]; ok && strings.TrimSpace(raw) != "" {
				allowed = nil
				for _, e := range strings.Split(raw, ",") {
					if e = strings.TrimSpace(e); e != "" {
						allowed = append(allowed, e)
					}
				}
			}
		}
	}
	for _, e := range allowed {
		if e == email {
			return true
		}
	}
	return false
}
