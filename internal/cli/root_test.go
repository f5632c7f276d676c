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

package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/eplog/internal/settings"
	"github.com/tombee/eplog/internal/store"
)

func TestRootShowsHelpWithoutFlags(t *testing.T) {
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "eplog")
	assert.Contains(t, out.String(), "--init")
}

func TestRootFlags(t *testing.T) {
	cmd := NewRootCommand()

	assert.NotNil(t, cmd.PersistentFlags().Lookup("workspace"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))

	for _, name := range []string{"init", "reload", "list", "database"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "flag %s", name)
	}

	// --database without a value selects interactively.
	assert.Equal(t, "-", cmd.Flags().Lookup("database").NoOptDefVal)
}

func TestRootInitFlagForcesSetup(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("EPLOG_STORAGE_BACKEND", "")
	t.Setenv("EPLOG_NON_INTERACTIVE", "true")

	// Seed a fully configured profile; without force --init would be a no-op.
	dir, err := store.StorageDir()
	require.NoError(t, err)
	st, err := store.OpenFile(dir)
	require.NoError(t, err)
	doc := settings.Empty()
	p := doc.EnsureProfile()
	p[settings.KeyIntegrationToken] = "secret_token"
	p[settings.KeyDatabase] = "db-journal"
	require.NoError(t, settings.NewRepository(st).SaveSettings(doc))
	require.NoError(t, st.Close())

	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--init"})

	// Setup re-runs despite the resolvable credential, so the run reaches
	// the confirmation prompt and fails in the non-interactive environment.
	err = cmd.Execute()
	require.Error(t, err)
	assert.ErrorContains(t, err, "prompt")
}
