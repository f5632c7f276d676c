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

	"github.com/tombee/eplog/internal/log"
	"github.com/tombee/eplog/pkg/errors"
	"github.com/tombee/eplog/pkg/pipeline"
)

const tokenPromptMessage = "Your integration token: https://www.notion.so/my-integrations\nEnter Integration Token"

// LoadSettingsTask loads the settings document and the active profile into
// the run context. A non-empty workspace selects that profile instead of the
// document's active one, creating it on first use.
func LoadSettingsTask(deps *Deps, workspace string) pipeline.Task {
	return pipeline.Task{
		Title: "Load settings",
		Run: func(ctx context.Context, c *pipeline.Context, h *pipeline.Handle) error {
			doc, err := deps.Repo.LoadSettings()
			if err != nil {
				return err
			}

			if workspace != "" && workspace != doc.Profile {
				doc.SelectProfile(workspace)
				MarkSettingsDirty(c)
			}

			c.Set(KeySettings, doc)
			if p := doc.ActiveProfile(); p != nil {
				c.Set(KeyProfile, p)
			}
			return nil
		},
	}
}

// SaveSettingsTask persists the settings document. It is the trailing task
// of every mutating pipeline and runs only when a task before it marked the
// document dirty; an aborted run never reaches it.
func SaveSettingsTask(deps *Deps) pipeline.Task {
	return pipeline.Task{
		Title:   "Save settings",
		Enabled: func(c *pipeline.Context) bool { return c.Bool(KeyUpdateSettings) },
		Run: func(ctx context.Context, c *pipeline.Context, h *pipeline.Handle) error {
			return deps.Repo.SaveSettings(Doc(c))
		},
	}
}

// EnsureClientTask resolves the active profile's token into a validated
// client. Pipelines that talk to the service run it right after settings
// load.
func EnsureClientTask(deps *Deps) pipeline.Task {
	return pipeline.Task{
		Skip: func(c *pipeline.Context) string {
			if Client(c) != nil {
				return "client already connected"
			}
			return ""
		},
		Run: func(ctx context.Context, c *pipeline.Context, h *pipeline.Handle) error {
			doc := Doc(c)
			profile := ActiveProfile(c)

			token, err := deps.Repo.ResolveToken(doc.Profile, profile)
			if err != nil {
				return err
			}
			if token == "" {
				return &errors.MissingTokenError{}
			}
			deps.logger().Debug("token resolved",
				"profile", doc.Profile,
				"token", log.SanitizeAPIKey(token))

			api, err := deps.NewClient(token)
			if err != nil {
				return err
			}
			c.Set(KeyClient, api)
			return nil
		},
	}
}

// InitializeTasks builds the first-run pipeline: confirm setup, collect and
// validate the integration token, load the database directory, pick a
// default database, and finally persist settings if anything changed.
//
// With force true the setup steps run even when a token already exists,
// re-prompting for a fresh credential.
func InitializeTasks(deps *Deps, workspace string, force bool) []pipeline.Task {
	needsToken := func(c *pipeline.Context) bool {
		if force {
			return true
		}
		profile := ActiveProfile(c)
		if profile == nil {
			return true
		}
		token, err := deps.Repo.ResolveToken(Doc(c).Profile, profile)
		return err != nil || token == ""
	}

	return []pipeline.Task{
		LoadSettingsTask(deps, workspace),
		{
			Title:   "Initialize eplog",
			Enabled: needsToken,
			Run: func(ctx context.Context, c *pipeline.Context, h *pipeline.Handle) error {
				return h.Subtasks(ctx, c, pipeline.Options{},
					pipeline.Task{
						Title: "Notion API",
						Run: func(ctx context.Context, c *pipeline.Context, h *pipeline.Handle) error {
							ok, err := h.Confirm(ctx,
								"You do not have an API key (integration token) set up - would you like to set one up right now?",
								true)
							if err != nil {
								return err
							}
							if !ok {
								return &errors.UserCanceledError{Prompt: "integration token setup"}
							}
							c.Set(KeyRequestSetup, true)
							return nil
						},
					},
					EnterTokenTask(deps),
					pipeline.Task{
						Title:   "Select default database",
						Enabled: func(c *pipeline.Context) bool { return c.Bool(KeyRequestSetup) },
						Skip: func(c *pipeline.Context) string {
							if !force && ActiveProfile(c).Database() != "" {
								return "default database already set"
							}
							return ""
						},
						Run: selectDatabaseBody(""),
					},
				)
			},
		},
		SaveSettingsTask(deps),
	}
}

// EnterTokenTask prompts for an integration token and validates it with a
// live listing call before anything is persisted. A rejected credential
// leaves the stored settings untouched.
func EnterTokenTask(deps *Deps) pipeline.Task {
	return pipeline.Task{
		Title: "Enter API key",
		Run: func(ctx context.Context, c *pipeline.Context, h *pipeline.Handle) error {
			doc := Doc(c)
			profile := doc.EnsureProfile()
			c.Set(KeyProfile, profile)

			token, err := h.Secret(ctx, tokenPromptMessage)
			if err != nil {
				return err
			}

			api, err := deps.NewClient(token)
			if err != nil {
				return err
			}

			// The listing doubles as credential validation.
			dbs, err := api.ListDatabases(ctx)
			if err != nil {
				return err
			}
			if len(dbs) == 0 {
				return &errors.NoSharedDatabasesError{}
			}

			if err := deps.Repo.StoreToken(doc.Profile, profile, token); err != nil {
				return err
			}
			if err := deps.Repo.SaveDatabases(dbs); err != nil {
				return err
			}

			c.Set(KeyClient, api)
			c.Set(KeyDatabases, dbs)
			MarkSettingsDirty(c)

			h.SetTitle("Enter API key: validated (" + strconv.Itoa(len(dbs)) + " databases shared)")
			return nil
		},
	}
}
