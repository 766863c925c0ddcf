// Package repository declares the persistence contracts of the domain layer.
// Implementations live under internal/infra.
package repository

import (
	"context"

	"studybuddy/internal/errors"
)

// Storage keys for the credential triple. The session manager and the token
// refresh coordinator are the only writers.
const (
	KeyAccessToken  = "token"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// ErrKeyNotFound is returned by Get when the key has no stored value.
// Callers treat it as "absent", never as a fatal condition.
var ErrKeyNotFound = errors.New("storage key not found")

// CredentialRepository is durable key-value storage with atomic per-key
// operations. No multi-key transaction is assumed anywhere; every caller
// must tolerate interleaving between individual calls.
type CredentialRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}
