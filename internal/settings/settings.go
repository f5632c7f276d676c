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

// Package settings defines the persisted settings document and the
// repository that loads and saves it through the key-value store.
//
// The document is a JSON object with an active profile name and a map of
// profiles. Profiles hold well-known keys (title, integrationToken,
// database, ...) plus arbitrary user-set pairs, so they are maps with typed
// accessors rather than fixed structs.
package settings

import (
	"fmt"
	"sort"

	"github.com/tombee/eplog/pkg/errors"
)

// Well-known profile keys.
const (
	KeyTitle            = "title"
	KeyIntegrationToken = "integrationToken"
	KeyDatabase         = "database"
	KeyDatabaseName     = "databaseName"
	KeyCompact          = "compact"
	KeyTokenBackend     = "tokenBackend"
)

// DefaultProfileName is the profile created when none exists yet.
const DefaultProfileName = "default"

// Settings is the whole persisted settings document.
type Settings struct {
	// Profile names the active profile.
	Profile string `json:"profile,omitempty"`

	// Profiles maps profile name to profile contents.
	Profiles map[string]Profile `json:"profiles,omitempty"`
}

// Profile is one named collection of settings. Beyond the well-known keys
// it holds whatever pairs the user sets.
type Profile map[string]any

// Empty returns a settings document with no profiles.
func Empty() *Settings {
	return &Settings{}
}

// ActiveProfile returns the active profile, or nil when initialization has
// not run yet.
func (s *Settings) ActiveProfile() Profile {
	if s.Profile == "" {
		return nil
	}
	return s.Profiles[s.Profile]
}

// EnsureProfile returns the active profile, creating the default one first
// when the document is empty.
func (s *Settings) EnsureProfile() Profile {
	if s.Profile == "" {
		s.Profile = DefaultProfileName
	}
	if s.Profiles == nil {
		s.Profiles = map[string]Profile{}
	}
	if _, ok := s.Profiles[s.Profile]; !ok {
		s.Profiles[s.Profile] = Profile{KeyTitle: "Default"}
	}
	return s.Profiles[s.Profile]
}

// SelectProfile switches the active profile, creating it when absent.
func (s *Settings) SelectProfile(name string) Profile {
	s.Profile = name
	return s.EnsureProfile()
}

func (p Profile) stringKey(key string) string {
	if v, ok := p[key].(string); ok {
		return v
	}
	return ""
}

// Title returns the profile's display title.
func (p Profile) Title() string { return p.stringKey(KeyTitle) }

// IntegrationToken returns the stored token, or "" when the token lives in
// the keyring or is unset.
func (p Profile) IntegrationToken() string { return p.stringKey(KeyIntegrationToken) }

// Database returns the id of the profile's default database.
func (p Profile) Database() string { return p.stringKey(KeyDatabase) }

// TokenBackend returns where the integration token is stored ("keyring" or
// "" for the settings document itself).
func (p Profile) TokenBackend() string { return p.stringKey(KeyTokenBackend) }

// Compact reports whether add output is reduced to the record id.
func (p Profile) Compact() bool {
	v, _ := p[KeyCompact].(bool)
	return v
}

// Get returns the raw value of a setting.
func (p Profile) Get(name string) (any, bool) {
	v, ok := p[name]
	return v, ok
}

// Set stores a setting from its command-line string form. The literals
// "true" and "false" coerce to booleans; everything else stays a string.
func (p Profile) Set(name, value string) {
	switch value {
	case "true":
		p[name] = true
	case "false":
		p[name] = false
	default:
		p[name] = value
	}
}

// Delete removes a setting. Absent names are ignored.
func (p Profile) Delete(name string) {
	delete(p, name)
}

// Keys returns the profile's setting names sorted, with the display title
// excluded to match the list output.
func (p Profile) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		if k == KeyTitle {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// DisplayValue renders a setting for terminal output. The integration token
// is partially masked so listings never leak the credential.
func DisplayValue(name string, value any) string {
	s, ok := value.(string)
	if !ok {
		return fmt.Sprintf("%v", value)
	}
	if name == KeyIntegrationToken {
		return errors.MaskToken(s)
	}
	return s
}
