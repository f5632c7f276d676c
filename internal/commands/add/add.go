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

// Package add implements the add command: create a record in the target
// database, resolving relation fields interactively where needed.
package add

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/tombee/eplog/internal/browser"
	"github.com/tombee/eplog/internal/commands/shared"
	"github.com/tombee/eplog/internal/jq"
	"github.com/tombee/eplog/internal/notion"
	"github.com/tombee/eplog/internal/pipelines"
	"github.com/tombee/eplog/internal/settings"
	"github.com/tombee/eplog/pkg/errors"
)

// NewAddCommand creates the add command.
//
// Besides the static flags, the command grows one flag per writable property
// of the default database's schema, so `eplog add --tags work "did a thing"`
// works once the database directory is cached. --field name=value covers
// databases the schema flags were not generated for.
func NewAddCommand() *cobra.Command {
	var (
		database   string
		jqExpr     string
		compact    bool
		openRecord bool
		rawFields  []string
	)
	textFlags := map[string]*string{}
	listFlags := map[string]*[]string{}

	cmd := &cobra.Command{
		Use:   "add <title>...",
		Short: "Create a record in the default database",
		Long: `Create a record in the profile's default database. All arguments are
joined into the record title. Schema fields are set with the generated
property flags or with repeated --field name=value pairs.

Relation fields take the title of the referenced record: an exact match
resolves directly, several candidates raise a choice prompt, and a missing
record can be created inline.`,
		Example: `  eplog add "wrote the quarterly report"
  eplog add --tags work --tags writing "wrote the quarterly report"
  eplog add --project Apollo "kickoff notes"
  eplog add -d Projects --field notes="scope draft" "Apollo"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Validate before anything is created remotely.
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

			opts := pipelines.AddOptions{
				Workspace:  shared.GetWorkspace(),
				Title:      strings.Join(args, " "),
				Database:   database,
				TextFields: map[string]string{},
				ListFields: map[string][]string{},
			}
			for name, value := range textFlags {
				if cmd.Flags().Changed(name) {
					opts.TextFields[name] = *value
				}
			}
			for name, values := range listFlags {
				if cmd.Flags().Changed(name) {
					opts.ListFields[name] = *values
				}
			}
			if err := mergeRawFields(&opts, rawFields); err != nil {
				return err
			}

			c, err := shared.RunTasks(cmd.Context(), pipelines.AddTasks(deps, opts))
			if err != nil {
				return err
			}

			result := pipelines.Result(c)
			if result == nil {
				return fmt.Errorf("no record was created")
			}

			if jqExpr != "" {
				return shared.PrintFiltered(cmd.Context(), cmd.OutOrStdout(), jqExpr, result)
			}

			doc := pipelines.Doc(c)
			if compact || (doc != nil && doc.ActiveProfile().Compact()) {
				fmt.Fprintln(cmd.OutOrStdout(), "id:", result.ID)
			} else {
				printRecord(cmd, result)
			}

			if openRecord && result.URL != "" {
				if err := browser.Open(result.URL); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), shared.RenderWarn("could not open browser: "+err.Error()))
				}
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&database, "database", "d", "", "database name overriding the profile default")
	flags.BoolVar(&openRecord, "open", false, "open the created record in the browser")
	flags.BoolVar(&compact, "compact", false, "print only the record id")
	flags.StringVar(&jqExpr, "jq", "", "jq expression applied to the created record")
	flags.StringArrayVar(&rawFields, "field", nil, "schema field as name=value (repeatable)")

	attachSchemaFlags(flags, textFlags, listFlags)

	return cmd
}

// attachSchemaFlags generates one flag per writable property of the default
// database. Best effort: without cached settings or directory the command
// falls back to --field.
func attachSchemaFlags(flags *pflag.FlagSet, textFlags map[string]*string, listFlags map[string]*[]string) {
	deps, closeStore, err := shared.BuildDeps()
	if err != nil {
		return
	}
	defer closeStore()

	doc, err := deps.Repo.LoadSettings()
	if err != nil {
		return
	}
	directory, err := deps.Repo.LoadDatabases()
	if err != nil {
		return
	}

	target := defaultDatabase(doc, directory)
	if target == nil {
		return
	}

	// Sorted so generated help output is stable.
	names := make([]string, 0, len(target.Properties))
	for name := range target.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		flagName := notion.NormalizePropertyName(name)
		if flagName == "" || flags.Lookup(flagName) != nil {
			continue
		}
		switch target.Properties[name].Type {
		case "rich_text":
			textFlags[flagName] = flags.String(flagName, "", "set the "+name+" property")
		case "multi_select":
			listFlags[flagName] = flags.StringArray(flagName, nil, "add a "+name+" option (repeatable)")
		case "relation":
			listFlags[flagName] = flags.StringArray(flagName, nil, "link a "+name+" record by title (repeatable)")
		}
	}
}

func defaultDatabase(doc *settings.Settings, directory []notion.Database) *notion.Database {
	id := doc.ActiveProfile().Database()
	if id == "" {
		return nil
	}
	for i := range directory {
		if directory[i].ID == id {
			return &directory[i]
		}
	}
	return nil
}

// mergeRawFields folds --field name=value pairs into opts. A repeated name
// becomes a list value.
func mergeRawFields(opts *pipelines.AddOptions, rawFields []string) error {
	collected := map[string][]string{}
	for _, raw := range rawFields {
		name, value, ok := strings.Cut(raw, "=")
		name = notion.NormalizePropertyName(name)
		if !ok || name == "" {
			return &errors.ValidationError{
				Field:      "field",
				Message:    fmt.Sprintf("invalid field %q", raw),
				Suggestion: "use --field name=value",
			}
		}
		collected[name] = append(collected[name], value)
	}

	// List form covers every property type: multi_select and relation
	// consume lists directly, rich_text joins the values.
	for name, values := range collected {
		opts.ListFields[name] = values
	}
	return nil
}

func printRecord(cmd *cobra.Command, page *notion.Page) {
	rows := [][2]string{
		{"id", page.ID},
		{"created_time", page.CreatedTime},
	}
	if page.URL != "" {
		rows = append(rows, [2]string{"url", page.URL})
	}

	names := make([]string, 0, len(page.Properties))
	for name := range page.Properties {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value := page.Properties[name]
		rows = append(rows, [2]string{name, value.Text()})
	}

	fmt.Fprintln(cmd.OutOrStdout(), shared.RenderKVTable(rows))
}
