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
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/eplog/internal/pipelines"
	settingspkg "github.com/tombee/eplog/internal/settings"
	"github.com/tombee/eplog/internal/store"
	"github.com/tombee/eplog/pkg/errors"
	"github.com/tombee/eplog/pkg/pipeline"
)

func testDeps(t *testing.T) *pipelines.Deps {
	t.Helper()
	st, err := store.OpenFile(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	return &pipelines.Deps{
		Repo:   settingspkg.NewRepository(st),
		Logger: slog.Default(),
	}
}

func runSet(t *testing.T, deps *pipelines.Deps, name, value string) error {
	t.Helper()
	tasks := []pipeline.Task{
		pipelines.LoadSettingsTask(deps, ""),
		setSettingTask(deps, name, value),
		pipelines.SaveSettingsTask(deps),
	}
	return pipeline.New(tasks, pipeline.Options{}).
		Run(context.Background(), pipeline.NewContext())
}

func TestSetPersistsSetting(t *testing.T) {
	deps := testDeps(t)

	require.NoError(t, runSet(t, deps, "compact", "true"))

	doc, err := deps.Repo.LoadSettings()
	require.NoError(t, err)
	assert.True(t, doc.ActiveProfile().Compact())
}

func TestSetOverwritesSetting(t *testing.T) {
	deps := testDeps(t)

	require.NoError(t, runSet(t, deps, "databaseName", "Journal"))
	require.NoError(t, runSet(t, deps, "databaseName", "Projects"))

	doc, err := deps.Repo.LoadSettings()
	require.NoError(t, err)
	v, _ := doc.ActiveProfile().Get("databaseName")
	assert.Equal(t, "Projects", v)
}

func TestDeletePersistsRemoval(t *testing.T) {
	deps := testDeps(t)
	require.NoError(t, runSet(t, deps, "compact", "true"))

	tasks := []pipeline.Task{
		pipelines.LoadSettingsTask(deps, ""),
		deleteSettingTask("compact"),
		pipelines.SaveSettingsTask(deps),
	}
	err := pipeline.New(tasks, pipeline.Options{}).
		Run(context.Background(), pipeline.NewContext())
	require.NoError(t, err)

	doc, err := deps.Repo.LoadSettings()
	require.NoError(t, err)
	_, ok := doc.ActiveProfile().Get("compact")
	assert.False(t, ok)
}

func TestDeleteUnknownSetting(t *testing.T) {
	deps := testDeps(t)

	tasks := []pipeline.Task{
		pipelines.LoadSettingsTask(deps, ""),
		deleteSettingTask("nope"),
		pipelines.SaveSettingsTask(deps),
	}
	err := pipeline.New(tasks, pipeline.Options{}).
		Run(context.Background(), pipeline.NewContext())

	var validation *errors.ValidationError
	require.ErrorAs(t, err, &validation)
}
