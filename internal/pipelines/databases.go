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

package pipelines

import (
	"context"
	"strconv"
	"strings"

	"github.com/tombee/eplog/internal/notion"
	"github.com/tombee/eplog/internal/settings"
	"github.com/tombee/eplog/pkg/errors"
	"github.com/tombee/eplog/pkg/pipeline"
)

// LoadDirectoryTask loads the cached database directory into the run
// context. The cache may be stale; reload replaces it wholesale.
func LoadDirectoryTask(deps *Deps) pipeline.Task {
	return pipeline.Task{
		Skip: func(c *pipeline.Context) string {
			if Directory(c) != nil {
				return "directory already loaded"
			}
			return ""
		},
		Run: func(ctx context.Context, c *pipeline.Context, h *pipeline.Handle) error {
			dbs, err := deps.Repo.LoadDatabases()
			if err != nil {
				return err
			}
			if dbs != nil {
				c.Set(KeyDatabases, dbs)
			}
			return nil
		},
	}
}

// ReloadDatabasesTask fetches the full database listing from the service and
// replaces the cached directory wholesale, dropping databases that are no
// longer shared.
func ReloadDatabasesTask(deps *Deps) pipeline.Task {
	return pipeline.Task{
		Title: "Reload databases",
		Run: func(ctx context.Context, c *pipeline.Context, h *pipeline.Handle) error {
			dbs, err := Client(c).ListDatabases(ctx)
			if err != nil {
				return err
			}
			if len(dbs) == 0 {
				return &errors.NoSharedDatabasesError{}
			}

			if err := deps.Repo.SaveDatabases(dbs); err != nil {
				return err
			}
			c.Set(KeyDatabases, dbs)

			h.SetTitle("Reload databases: " + strconv.Itoa(len(dbs)) + " loaded")
			return nil
		},
	}
}

// ReloadTasks builds the directory refresh pipeline used by
// `eplog databases reload` and the root --reload flag.
func ReloadTasks(deps *Deps, workspace string) []pipeline.Task {
	return []pipeline.Task{
		LoadSettingsTask(deps, workspace),
		EnsureClientTask(deps),
		ReloadDatabasesTask(deps),
		SaveSettingsTask(deps),
	}
}

// SelectDatabaseTasks builds the default-database selection pipeline used by
// `eplog databases select` and the root --database flag. With a name the
// selection is non-interactive; otherwise the directory is offered as a
// choice prompt.
func SelectDatabaseTasks(deps *Deps, workspace, name string) []pipeline.Task {
	return []pipeline.Task{
		LoadSettingsTask(deps, workspace),
		LoadDirectoryTask(deps),
		{
			Title: "Select default database",
			Run:   selectDatabaseBody(name),
		},
		SaveSettingsTask(deps),
	}
}

// selectDatabaseBody picks a database out of the loaded directory, writes it
// to the profile, and marks settings dirty. It is shared between the
// standalone selection pipeline and initialization.
func selectDatabaseBody(name string) func(context.Context, *pipeline.Context, *pipeline.Handle) error {
	return func(ctx context.Context, c *pipeline.Context, h *pipeline.Handle) error {
		directory := Directory(c)
		if len(directory) == 0 {
			return &errors.NoSharedDatabasesError{}
		}

		var selected *notion.Database
		if name != "" {
			selected = findByTitle(directory, name)
			if selected == nil {
				return &errors.ValidationError{
					Field:      "database",
					Message:    "no database titled " + strconv.Quote(name),
					Suggestion: "run 'eplog databases list' to see the loaded directory, or 'eplog --reload' to refresh it",
				}
			}
		} else {
			titles := make([]string, len(directory))
			for i, db := range directory {
				titles[i] = db.TitleText
			}
			choice, err := h.Select(ctx, "Select database", titles)
			if err != nil {
				return err
			}
			selected = findByTitle(directory, choice)
			if selected == nil {
				return &errors.ValidationError{Field: "database", Message: "selection did not match the directory"}
			}
		}

		profile := Doc(c).EnsureProfile()
		c.Set(KeyProfile, profile)
		profile[settings.KeyDatabase] = selected.ID
		profile[settings.KeyDatabaseName] = selected.TitleText
		c.Set(KeyDatabase, selected)
		MarkSettingsDirty(c)

		h.SetTitle("Database selected: " + selected.TitleText + " (id: " + selected.ID + ")")
		return nil
	}
}

// ResolveTargetTask resolves the database an add or list run operates on:
// the explicit name when given, the profile default otherwise.
func ResolveTargetTask(name string) pipeline.Task {
	return pipeline.Task{
		Run: func(ctx context.Context, c *pipeline.Context, h *pipeline.Handle) error {
			directory := Directory(c)

			if name != "" {
				if db := findByTitle(directory, name); db != nil {
					c.Set(KeyDatabase, db)
					return nil
				}
				return &errors.ValidationError{
					Field:      "database",
					Message:    "no database titled " + strconv.Quote(name),
					Suggestion: "run 'eplog databases list' to see the loaded directory, or 'eplog --reload' to refresh it",
				}
			}

			profile := ActiveProfile(c)
			if id := profile.Database(); id != "" {
				for i := range directory {
					if directory[i].ID == id {
						c.Set(KeyDatabase, &directory[i])
						return nil
					}
				}
			}

			return &errors.ValidationError{
				Field:      "database",
				Message:    "no default database configured",
				Suggestion: "run 'eplog databases select' or pass --database",
			}
		},
	}
}

// findByTitle matches a database by flattened title, case-insensitively.
func findByTitle(directory []notion.Database, title string) *notion.Database {
	for i := range directory {
		if strings.EqualFold(directory[i].TitleText, title) {
			return &directory[i]
		}
	}
	return nil
}
