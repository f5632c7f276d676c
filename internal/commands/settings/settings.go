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

// Package settings implements the settings command group: list, get, set and
// delete profile settings.
package settings

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/eplog/internal/commands/shared"
	"github.com/tombee/eplog/internal/pipelines"
	"github.com/tombee/eplog/internal/settings"
	"github.com/tombee/eplog/pkg/errors"
	"github.com/tombee/eplog/pkg/pipeline"
)

// NewSettingsCommand creates the settings command group.
func NewSettingsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Manage profile settings",
		Long: `Inspect and change the active profile's settings. The integration token
is always shown masked. The literals "true" and "false" are stored as
booleans, everything else as strings.`,
		Example: `  eplog settings list
  eplog settings get database
  eplog settings set compact true
  eplog settings delete compact`,
	}

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newGetCommand())
	cmd.AddCommand(newSetCommand())
	cmd.AddCommand(newDeleteCommand())

	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the active profile's settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, closeStore, err := shared.BuildDeps()
			if err != nil {
				return err
			}
			defer closeStore()

			p, err := loadProfile(cmd.Context(), deps)
			if err != nil {
				return err
			}

			keys := p.Keys()
			if len(keys) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), shared.RenderLabel("No settings stored."))
				return nil
			}

			rows := make([][2]string, len(keys))
			for i, key := range keys {
				value, _ := p.Get(key)
				rows[i] = [2]string{key, settings.DisplayValue(key, value)}
			}
			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderKVTable(rows))
			return nil
		},
	}
}

func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, closeStore, err := shared.BuildDeps()
			if err != nil {
				return err
			}
			defer closeStore()

			p, err := loadProfile(cmd.Context(), deps)
			if err != nil {
				return err
			}

			value, ok := p.Get(args[0])
			if !ok {
				return &errors.ValidationError{
					Field:      args[0],
					Message:    fmt.Sprintf("no setting named %q", args[0]),
					Suggestion: "run 'eplog settings list' to see stored settings",
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), settings.DisplayValue(args[0], value))
			return nil
		},
	}
}

func newSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Store one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, closeStore, err := shared.BuildDeps()
			if err != nil {
				return err
			}
			defer closeStore()

			tasks := []pipeline.Task{
				pipelines.LoadSettingsTask(deps, shared.GetWorkspace()),
				setSettingTask(deps, args[0], args[1]),
				pipelines.SaveSettingsTask(deps),
			}
			_, err = shared.RunTasks(cmd.Context(), tasks)
			return err
		},
	}
}

func newDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, closeStore, err := shared.BuildDeps()
			if err != nil {
				return err
			}
			defer closeStore()

			tasks := []pipeline.Task{
				pipelines.LoadSettingsTask(deps, shared.GetWorkspace()),
				deleteSettingTask(args[0]),
				pipelines.SaveSettingsTask(deps),
			}
			_, err = shared.RunTasks(cmd.Context(), tasks)
			return err
		},
	}
}

// loadProfile reads the settings document outside a pipeline run, honoring
// the --workspace flag.
func loadProfile(ctx context.Context, deps *pipelines.Deps) (settings.Profile, error) {
	c := pipeline.NewContext()
	tasks := []pipeline.Task{pipelines.LoadSettingsTask(deps, shared.GetWorkspace())}
	if err := pipeline.New(tasks, pipeline.Options{}).Run(ctx, c); err != nil {
		return nil, err
	}
	return pipelines.Doc(c).EnsureProfile(), nil
}

func setSettingTask(deps *pipelines.Deps, name, value string) pipeline.Task {
	return pipeline.Task{
		Title: "Update setting",
		Run: func(ctx context.Context, c *pipeline.Context, h *pipeline.Handle) error {
			doc := pipelines.Doc(c)
			p := doc.EnsureProfile()

			// The token honors the configured backend instead of landing in
			// the document verbatim.
			if name == settings.KeyIntegrationToken {
				if err := deps.Repo.StoreToken(doc.Profile, p, value); err != nil {
					return err
				}
				h.SetTitle("Update setting: " + name)
				pipelines.MarkSettingsDirty(c)
				return nil
			}

			previous, had := p.Get(name)
			p.Set(name, value)
			if had {
				h.SetTitle(fmt.Sprintf("Update setting: %s (was %s)",
					name, settings.DisplayValue(name, previous)))
			} else {
				h.SetTitle("Update setting: " + name)
			}
			pipelines.MarkSettingsDirty(c)
			return nil
		},
	}
}

func deleteSettingTask(name string) pipeline.Task {
	return pipeline.Task{
		Title: "Delete setting",
		Run: func(ctx context.Context, c *pipeline.Context, h *pipeline.Handle) error {
			p := pipelines.Doc(c).EnsureProfile()
			if _, ok := p.Get(name); !ok {
				return &errors.ValidationError{
					Field:      name,
					Message:    fmt.Sprintf("no setting named %q", name),
					Suggestion: "run 'eplog settings list' to see stored settings",
				}
			}
			p.Delete(name)
			h.SetTitle("Delete setting: " + name)
			pipelines.MarkSettingsDirty(c)
			return nil
		},
	}
}
