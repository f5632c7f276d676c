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

// Package cli provides the root command for the eplog CLI.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tombee/eplog/internal/commands/shared"
	"github.com/tombee/eplog/internal/pipelines"
)

// NewRootCommand creates the root command for eplog.
//
// The root-level flags mirror the guided workflow: --init runs first-time
// setup, --reload refreshes the database directory, --database switches the
// default database and --list prints recent records. Flags combine and run
// in that order.
func NewRootCommand() *cobra.Command {
	var (
		initFlag   bool
		reloadFlag bool
		listFlag   bool
		database   string
	)

	cmd := &cobra.Command{
		Use:   "eplog",
		Short: "Journal into Notion databases from the command line",
		Long: `eplog is a journaling CLI for Notion. Share databases with an
integration, pick a default database, then append records with a single
command. Run 'eplog init' (or plain 'eplog' the first time) to set up.`,
		Example: `  eplog --init
  eplog add "wrote the quarterly report"
  eplog --reload
  eplog --database=Journal
  eplog -u
  eplog -l`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			databaseChanged := cmd.Flags().Changed("database")
			if !initFlag && !reloadFlag && !listFlag && !databaseChanged {
				return cmd.Help()
			}

			deps, closeStore, err := shared.BuildDeps()
			if err != nil {
				return err
			}
			defer closeStore()

			ctx := cmd.Context()
			workspace := shared.GetWorkspace()

			if initFlag {
				// The flag re-runs setup even when a credential already
				// resolves, same as 'eplog init --force'.
				if _, err := shared.RunTasks(ctx,
					pipelines.InitializeTasks(deps, workspace, true)); err != nil {
					return err
				}
			}
			if reloadFlag {
				if _, err := shared.RunTasks(ctx,
					pipelines.ReloadTasks(deps, workspace)); err != nil {
					return err
				}
			}
			if databaseChanged {
				name := database
				if name == "-" {
					name = ""
				}
				if _, err := shared.RunTasks(ctx,
					pipelines.SelectDatabaseTasks(deps, workspace, name)); err != nil {
					return err
				}
			}
			if listFlag {
				c, err := shared.RunTasks(ctx,
					pipelines.ListTasks(deps, pipelines.ListOptions{Workspace: workspace}))
				if err != nil {
					return err
				}
				records := pipelines.Records(c)
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), shared.RenderLabel("No records found."))
					return nil
				}
				rows := make([][]string, len(records))
				for i, page := range records {
					rows[i] = []string{page.CreatedTime, page.TitleText()}
				}
				fmt.Fprintln(cmd.OutOrStdout(), shared.RenderTable([]string{"Created", "Title"}, rows))
			}
			return nil
		},
	}

	// Register persistent flags with pointers to shared package variables
	verbose, workspace := shared.RegisterFlagPointers()
	cmd.PersistentFlags().BoolVarP(verbose, "verbose", "v", false, "verbose task output")
	cmd.PersistentFlags().StringVarP(workspace, "workspace", "w", "", "profile to operate on")

	flags := cmd.Flags()
	flags.BoolVar(&initFlag, "init", false, "run first-time setup")
	flags.BoolVarP(&reloadFlag, "reload", "r", false, "reload the database directory")
	flags.BoolVarP(&listFlag, "list", "l", false, "list recent records")
	flags.StringVarP(&database, "database", "u", "-", "switch the default database, '-' prompts")
	flags.Lookup("database").NoOptDefVal = "-"

	return cmd
}

// SetVersion sets the version information for the CLI
func SetVersion(version, commit, buildDate string) {
	shared.SetVersion(version, commit, buildDate)
}

// HandleExitError processes errors and exits with appropriate codes
func HandleExitError(err error) {
	shared.HandleExitError(err)
}
