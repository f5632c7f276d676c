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

// Package databases implements the databases command group: list the cached
// database directory, reload it from the remote workspace and select the
// profile's default database.
package databases

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/eplog/internal/commands/shared"
	"github.com/tombee/eplog/internal/pipelines"
	"github.com/tombee/eplog/pkg/errors"
)

// NewDatabasesCommand creates the databases command group.
func NewDatabasesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "databases",
		Short: "Manage the database directory",
		Long: `The database directory is a local cache of every database shared with
the integration. Commands resolve database names against this cache, so
reload it after sharing new databases in Notion.`,
		Example: `  eplog databases list
  eplog databases reload
  eplog databases select Journal`,
	}

	cmd.AddCommand(newListCommand())
	cmd.AddCommand(newReloadCommand())
	cmd.AddCommand(newSelectCommand())

	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, closeStore, err := shared.BuildDeps()
			if err != nil {
				return err
			}
			defer closeStore()

			directory, err := deps.Repo.LoadDatabases()
			if err != nil {
				return err
			}
			if len(directory) == 0 {
				return &errors.NoSharedDatabasesError{}
			}

			doc, err := deps.Repo.LoadSettings()
			if err != nil {
				return err
			}
			defaultID := doc.ActiveProfile().Database()

			rows := make([][]string, len(directory))
			for i, db := range directory {
				marker := ""
				if db.ID == defaultID {
					marker = "default"
				}
				rows[i] = []string{db.TitleText, db.ID, marker}
			}
			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderTable([]string{"Title", "ID", ""}, rows))
			return nil
		},
	}
}

func newReloadCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reload",
		Short: "Reload the directory from Notion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, closeStore, err := shared.BuildDeps()
			if err != nil {
				return err
			}
			defer closeStore()

			_, err = shared.RunTasks(cmd.Context(),
				pipelines.ReloadTasks(deps, shared.GetWorkspace()))
			return err
		},
	}
}

func newSelectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "select [name]",
		Short: "Choose the profile's default database",
		Long: `Set the database new records go to. With a name the matching cached
database is selected directly; without one a choice prompt lists the
directory.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deps, closeStore, err := shared.BuildDeps()
			if err != nil {
				return err
			}
			defer closeStore()

			name := ""
			if len(args) == 1 {
				name = args[0]
			}

			_, err = shared.RunTasks(cmd.Context(),
				pipelines.SelectDatabaseTasks(deps, shared.GetWorkspace(), name))
			return err
		},
	}
}
