// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"syscall"
	"time"
)

var (
	// ErrLockTimeout is returned when the store lock cannot be acquired.
	ErrLockTimeout = errors.New("store: locked by another process")
)

const lockTimeout = 5 * time.Second

// keyPattern restricts key names to filesystem-safe identifiers.
var keyPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+$`)

// FileStore keeps one file per key under a directory. Writes are atomic
// (temp file + rename) and guarded by an flock'd lock file so concurrent CLI
// invocations cannot corrupt a value mid-write.
type FileStore struct {
	dir string
}

// OpenFile creates a file-backed store rooted at dir, creating dir if needed.
func OpenFile(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Get returns the value stored under name, or ErrNotFound.
func (s *FileStore) Get(name string) (string, error) {
	if err := validateKey(name); err != nil {
		return "", err
	}

	data, err := os.ReadFile(s.keyPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}

// Set stores value under name using an atomic rename while holding the
// store lock.
func (s *FileStore) Set(name, value string) error {
	if err := validateKey(name); err != nil {
		return err
	}

	return s.withLock(func() error {
		tempPath := s.keyPath(name) + ".tmp"
		if err := os.WriteFile(tempPath, []byte(value), 0600); err != nil {
			return fmt.Errorf("failed to write temporary file: %w", err)
		}
		if err := os.Rename(tempPath, s.keyPath(name)); err != nil {
			os.Remove(tempPath)
			return fmt.Errorf("failed to rename temporary file: %w", err)
		}
		return nil
	})
}

// Delete removes name. Absent keys are ignored.
func (s *FileStore) Delete(name string) error {
	if err := validateKey(name); err != nil {
		return err
	}

	return s.withLock(func() error {
		if err := os.Remove(s.keyPath(name)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete %s: %w", name, err)
		}
		return nil
	})
}

// Close is a no-op for the file backend.
func (s *FileStore) Close() error { return nil }

func (s *FileStore) keyPath(name string) string {
	return filepath.Join(s.dir, name)
}

// withLock runs fn while holding an exclusive flock on the store's lock
// file, waiting up to lockTimeout for other processes.
func (s *FileStore) withLock(fn func() error) error {
	lockPath := filepath.Join(s.dir, ".lock")

	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}
	defer lockFile.Close()

	deadline := time.Now().Add(lockTimeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			return ErrLockTimeout
		}
		<-ticker.C
	}
	defer syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)

	return fn()
}

func validateKey(name string) error {
	if !keyPattern.MatchString(name) {
		return fmt.Errorf("store: invalid key %q", name)
	}
	return nil
}
