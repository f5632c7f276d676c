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

// Package store provides the flat key-value persistence backing settings and
// the database directory. Values are opaque strings keyed by name; callers
// own serialization. Two backends exist: one file per key (default) and a
// single SQLite database.
package store

import (
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("store: key not found")

// Store is an opaque string get/set persistence keyed by name.
type Store interface {
	// Get returns the value stored under name, or ErrNotFound.
	Get(name string) (string, error)

	// Set stores value under name, replacing any previous value.
	Set(name, value string) error

	// Delete removes name. Deleting an absent key is not an error.
	Delete(name string) error

	// Close releases backend resources.
	Close() error
}

// Backend identifies a store implementation.
type Backend string

const (
	// BackendFile stores one file per key under the data directory.
	BackendFile Backend = "file"
	// BackendSQLite stores all keys in one SQLite database.
	BackendSQLite Backend = "sqlite"
)

// Open creates a store of the given backend rooted at dir.
func Open(backend Backend, dir string) (Store, error) {
	switch backend {
	case BackendSQLite:
		return OpenSQLite(dir)
	case BackendFile, "":
		return OpenFile(dir)
	default:
		return nil, errors.New("store: unknown backend " + string(backend))
	}
}
