// Package storage implements the domain repositories on top of plain files,
// one value per key, written atomically via rename.
package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"studybuddy/internal/domain/repository"

	"github.com/pkg/errors"
)

// FileStore is a durable key-value store keeping each value in its own file
// under a base directory. Get on a missing key returns
// repository.ErrKeyNotFound; callers treat that as "absent".
type FileStore struct {
	dir string
	mu  sync.Mutex
}

// NewFileStore creates the base directory if needed and returns a store
// rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(err, "failed to create storage directory")
	}

	return &FileStore{dir: dir}, nil
}

// NewCredentialRepository exposes the store under its domain contract.
func NewCredentialRepository(store *FileStore) repository.CredentialRepository {
	return store
}

// Get reads the value stored under key.
func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", repository.ErrKeyNotFound
		}

		return "", errors.Wrapf(err, "failed to read key %q", key)
	}

	return string(data), nil
}

// Set writes value under key. The write goes to a temporary file first and is
// moved into place so a crash never leaves a torn value behind.
func (s *FileStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := s.path(key)
	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "failed to stage key %q", key)
	}

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())

		return errors.Wrapf(err, "failed to write key %q", key)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())

		return errors.Wrapf(err, "failed to close staged key %q", key)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())

		return errors.Wrapf(err, "failed to commit key %q", key)
	}

	return nil
}

// Remove deletes the given keys. Missing keys are ignored.
func (s *FileStore) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range keys {
		if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
			return errors.Wrapf(err, "failed to remove key %q", key)
		}
	}

	return nil
}

func (s *FileStore) path(key string) string {
	// Keys are fixed identifiers chosen by this codebase, but keep the file
	// name safe regardless.
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, key)

	return filepath.Join(s.dir, safe)
}
