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

// Package list implements the list command: query records of the target
// database by title, one confirmed page at a time.
package list

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tombee/eplog/internal/commands/shared"
	"github.com/tombee/eplog/internal/jq"
	"github.com/tombee/eplog/internal/pipelines"
)

// NewListCommand creates the list command.
func NewListCommand() *cobra.Command {
	var (
		database string
		jqExpr   string
		amount   int
	)

	cmd := &cobra.Command{
		Use:   "list [terms...]",
		Short: "List records from the default database",
		Long: `List records whose title contains the given terms, newest page first.
Without terms every record is listed. When more results remain, a prompt
asks before fetching the next page.`,
		Example: `  eplog list
  eplog list standup
  eplog list -d Projects --amount 25 apollo
  eplog list --jq '.[].id' standup`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jqExpr != "" {
				if err := jq.NewExecutor(jq.DefaultTimeout).Validate(jqExpr); err != nil {
					return shared.NewInvalidInputError("invalid --jq expression", err)
				}
			}

			deps, closeStore, err := shared.BuildDeps()
			if err != nil {
				return err
			}
			defer closeStore()

			opts := pipelines.ListOptions{
				Workspace: shared.GetWorkspace(),
				Terms:     strings.Join(args, " "),
				Database:  database,
				Amount:    amount,
			}

			c, err := shared.RunTasks(cmd.Context(), pipelines.ListTasks(deps, opts))
			if err != nil {
				return err
			}

			records := pipelines.Records(c)
			if jqExpr != "" {
				return shared.PrintFiltered(cmd.Context(), cmd.OutOrStdout(), jqExpr, records)
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), shared.RenderLabel("No records found."))
				return nil
			}

			rows := make([][]string, len(records))
			for i, page := range records {
				rows[i] = []string{page.CreatedTime, page.TitleText()}
			}
			fmt.Fprintln(cmd.OutOrStdout(), shared.RenderTable([]string{"Created", "Title"}, rows))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&database, "database", "d", "", "database name overriding the profile default")
	flags.IntVarP(&amount, "amount", "a", pipelines.DefaultListAmount, "records per page")
	flags.StringVar(&jqExpr, "jq", "", "jq expression applied to the listed records")

	return cmd
}
