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

// Package initialize implements the init command: guided first-run setup of
// the integration token and the default database.
package initialize

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/eplog/internal/commands/shared"
	"github.com/tombee/eplog/internal/pipelines"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Set up the integration token and default database",
		Long: `Walk through first-run setup: store the Notion integration token,
validate it against the API, cache the shared databases and pick the
default database. A profile that already has a token is left alone
unless --force is given.`,
		Example: `  eplog init
  eplog init --force
  eplog -w work init`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, closeStore, err := shared.BuildDeps()
			if err != nil {
				return err
			}
			defer closeStore()

			tasks := pipelines.InitializeTasks(deps, shared.GetWorkspace(), force)
			if _, err := shared.RunTasks(cmd.Context(), tasks); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderOK("eplog is ready. Try 'eplog add \"my first entry\"'."))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "redo setup even when a token is already stored")

	return cmd
}
