// Package storage defines persistence for users, admin config, and the
// amended-contract slot.
package storage

import (
	"context"
	"errors"
	"time"
)

// ErrUserExists is returned when registering an email that is already taken.
var ErrUserExists = errors.New("user already exists")

// ErrUserNotFound is returned when a user lookup misses.
var ErrUserNotFound = errors.New("user not found")

// User is a registered account.
type User struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Storage defines user and admin-config persistence operations. Config values
// stored here override the config file (SMTP settings, signature, admin list).
type Storage interface {
	CreateUser(ctx context.Context, email, passwordHash string) error
	GetUser(ctx context.Context, email string) (*User, error)

	GetConfig(ctx context.Context) (map[string]string, error)
	SetConfig(ctx context.Context, items map[string]string) error

	Close() error
}
