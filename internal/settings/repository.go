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

package settings

import (
	"encoding/json"
	stderrors "errors"

	"github.com/tombee/eplog/internal/notion"
	"github.com/tombee/eplog/internal/store"
	"github.com/tombee/eplog/pkg/errors"
)

// Store keys of the two persisted documents.
const (
	settingsKey  = "settings"
	databasesKey = "databases"
)

// Repository reads and writes the settings document and the database
// directory through a key-value store.
type Repository struct {
	store  store.Store
	tokens TokenStore
}

// NewRepository creates a repository over s. Token resolution uses the
// system keyring for profiles that opt into it.
func NewRepository(s store.Store) *Repository {
	return &Repository{store: s, tokens: KeyringTokenStore{}}
}

// WithTokenStore substitutes the keyring token store. Used by tests.
func (r *Repository) WithTokenStore(ts TokenStore) *Repository {
	r.tokens = ts
	return r
}

// LoadSettings returns the persisted settings document, or an empty one
// when nothing has been saved yet.
func (r *Repository) LoadSettings() (*Settings, error) {
	raw, err := r.store.Get(settingsKey)
	if stderrors.Is(err, store.ErrNotFound) {
		return Empty(), nil
	}
	if err != nil {
		return nil, &errors.ConfigError{Key: settingsKey, Reason: "failed to load settings", Cause: err}
	}

	var s Settings
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, &errors.ConfigError{Key: settingsKey, Reason: "settings document is corrupt", Cause: err}
	}
	return &s, nil
}

// SaveSettings replaces the persisted settings document wholesale.
func (r *Repository) SaveSettings(s *Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return &errors.ConfigError{Key: settingsKey, Reason: "failed to encode settings", Cause: err}
	}
	if err := r.store.Set(settingsKey, string(data)); err != nil {
		return &errors.ConfigError{Key: settingsKey, Reason: "failed to save settings", Cause: err}
	}
	return nil
}

// LoadDatabases returns the cached database directory. An absent cache is an
// empty directory, not an error.
func (r *Repository) LoadDatabases() ([]notion.Database, error) {
	raw, err := r.store.Get(databasesKey)
	if stderrors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &errors.ConfigError{Key: databasesKey, Reason: "failed to load database directory", Cause: err}
	}

	var dbs []notion.Database
	if err := json.Unmarshal([]byte(raw), &dbs); err != nil {
		return nil, &errors.ConfigError{Key: databasesKey, Reason: "database directory is corrupt", Cause: err}
	}
	return dbs, nil
}

// SaveDatabases replaces the cached database directory wholesale.
func (r *Repository) SaveDatabases(dbs []notion.Database) error {
	data, err := json.Marshal(dbs)
	if err != nil {
		return &errors.ConfigError{Key: databasesKey, Reason: "failed to encode database directory", Cause: err}
	}
	if err := r.store.Set(databasesKey, string(data)); err != nil {
		return &errors.ConfigError{Key: databasesKey, Reason: "failed to save database directory", Cause: err}
	}
	return nil
}

// ResolveToken returns the integration token of the named profile,
// consulting the keyring when the profile stores its token there.
// Returns "" when no token is set.
func (r *Repository) ResolveToken(profileName string, p Profile) (string, error) {
	if p == nil {
		return "", nil
	}
	if p.TokenBackend() == TokenBackendKeyring {
		return r.tokens.Get(profileName)
	}
	return p.IntegrationToken(), nil
}

// StoreToken saves a freshly validated token for the named profile,
// honoring the profile's token backend. With the keyring backend the token
// never lands in the settings document.
func (r *Repository) StoreToken(profileName string, p Profile, token string) error {
	if p.TokenBackend() == TokenBackendKeyring {
		if err := r.tokens.Set(profileName, token); err != nil {
			return err
		}
		p.Delete(KeyIntegrationToken)
		return nil
	}
	p[KeyIntegrationToken] = token
	return nil
}
