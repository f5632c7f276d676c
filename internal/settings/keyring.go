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
	stderrors "errors"

	"github.com/zalando/go-keyring"

	"github.com/tombee/eplog/pkg/errors"
)

// TokenBackendKeyring marks a profile whose integration token lives in the
// system keyring instead of the settings document. Opt in with:
//
//	eplog settings set tokenBackend keyring
const TokenBackendKeyring = "keyring"

// keyringService is the service name for keyring entries. Tokens are keyed
// by profile name.
const keyringService = "eplog"

// TokenStore reads and writes integration tokens outside the settings
// document.
type TokenStore interface {
	// Get returns the token for the named profile, or "" when absent.
	Get(profileName string) (string, error)

	// Set stores the token for the named profile.
	Set(profileName, token string) error

	// Delete removes the named profile's token. Absent tokens are ignored.
	Delete(profileName string) error
}

// KeyringTokenStore stores tokens in the system keyring.
// Supported platforms:
//   - macOS: Keychain Access
//   - Linux: Secret Service API (GNOME Keyring, KWallet)
//   - Windows: Credential Manager
type KeyringTokenStore struct{}

// Get implements TokenStore.
func (KeyringTokenStore) Get(profileName string) (string, error) {
	token, err := keyring.Get(keyringService, profileName)
	if stderrors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", &errors.ConfigError{
			Key:    KeyTokenBackend,
			Reason: "system keyring unavailable",
			Cause:  err,
		}
	}
	return token, nil
}

// Set implements TokenStore.
func (KeyringTokenStore) Set(profileName, token string) error {
	if err := keyring.Set(keyringService, profileName, token); err != nil {
		return &errors.ConfigError{
			Key:    KeyTokenBackend,
			Reason: "system keyring unavailable",
			Cause:  err,
		}
	}
	return nil
}

// Delete implements TokenStore.
func (KeyringTokenStore) Delete(profileName string) error {
	err := keyring.Delete(keyringService, profileName)
	if err != nil && !stderrors.Is(err, keyring.ErrNotFound) {
		return &errors.ConfigError{
			Key:    KeyTokenBackend,
			Reason: "system keyring unavailable",
			Cause:  err,
		}
	}
	return nil
}
