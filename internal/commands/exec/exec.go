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

// Package exec implements the exec command: run expr scripts against the
// journal, with named scripts and variables from the .eplogrc file.
package exec

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tombee/eplog/internal/commands/shared"
	"github.com/tombee/eplog/internal/notion"
	"github.com/tombee/eplog/internal/pipelines"
	"github.com/tombee/eplog/internal/script"
	"github.com/tombee/eplog/internal/store"
	"github.com/tombee/eplog/pkg/pipeline"
)

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <script> [args...]",
		Short: "Run an expr script against the journal",
		Long: `Evaluate an expr expression (expr-lang.org) with access to the active
profile, the database directory and the add/query record operations.
The script argument is a name from the scripts section of ` + script.RCFileName + `
(looked up in the working directory, then the config directory) or a
file path. Remaining arguments are exposed to the script as args.

The result is printed as JSON.`,
		Example: `  eplog exec standup.expr
  eplog exec weekly-report 2026-08-24
  eplog exec 'len(query("standup"))'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, closeStore, err := shared.BuildDeps()
			if err != nil {
				return err
			}
			defer closeStore()

			rc, err := loadRC()
			if err != nil {
				return err
			}

			source, err := rc.Resolve(args[0])
			if err != nil {
				// Short inline expressions can be passed directly.
				source = args[0]
			}

			fm, body, err := script.SplitFrontMatter(source)
			if err != nil {
				return err
			}

			// Front-matter profile entries overlay the active profile for
			// this run only; nothing is persisted. The overlay merges
			// before the client connects, so it can supply the token.
			tasks := pipelines.ExecTasks(deps, shared.GetWorkspace(), fm.Profile)
			c, err := shared.RunTasks(cmd.Context(), tasks)
			if err != nil {
				return err
			}

			env := script.Env{
				Vars:      rc.Vars,
				Args:      args[1:],
				Profile:   pipelines.ActiveProfile(c),
				Directory: pipelines.Directory(c),
				Target:    defaultTarget(c),
				Client:    pipelines.Client(c),
			}

			var spin *shared.Spinner
			if !shared.IsNonInteractive() {
				spin = shared.NewSpinner()
				spin.Start("Running script")
			}
			out, err := script.Run(cmd.Context(), body, env)
			if spin != nil {
				spin.Stop()
			}
			if err != nil {
				return err
			}

			encoded, err := json.MarshalIndent(out, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(encoded))
			return nil
		},
	}

	return cmd
}

func loadRC() (*script.RC, error) {
	dirs := []string{}
	if cwd, err := os.Getwd(); err == nil {
		dirs = append(dirs, cwd)
	}
	if configDir, err := store.ConfigDir(); err == nil {
		dirs = append(dirs, configDir)
	}
	return script.LoadRC(dirs...)
}

// defaultTarget looks the merged profile's default database up in the
// cached directory. Scripts that never call add or query run fine without
// one.
func defaultTarget(c *pipeline.Context) *notion.Database {
	id := pipelines.ActiveProfile(c).Database()
	if id == "" {
		return nil
	}
	directory := pipelines.Directory(c)
	for i := range directory {
		if directory[i].ID == id {
			return &directory[i]
		}
	}
	return nil
}
