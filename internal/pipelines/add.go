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
	"fmt"
	"strconv"
	"strings"

	"github.com/tombee/eplog/internal/notion"
	"github.com/tombee/eplog/pkg/errors"
	"github.com/tombee/eplog/pkg/pipeline"
)

// AddOptions carries the inputs of one add run.
type AddOptions struct {
	// Workspace selects a profile other than the active one.
	Workspace string

	// Title is the new record's title text.
	Title string

	// Database overrides the profile's default database by name.
	Database string

	// TextFields maps normalized property names to rich_text values.
	TextFields map[string]string

	// ListFields maps normalized property names to multi_select option
	// names or relation search terms.
	ListFields map[string][]string
}

// AddTasks builds the record-creation pipeline: resolve the target database,
// resolve relation references into page IDs, build the payload, create the
// record.
func AddTasks(deps *Deps, opts AddOptions) []pipeline.Task {
	return []pipeline.Task{
		LoadSettingsTask(deps, opts.Workspace),
		LoadDirectoryTask(deps),
		EnsureClientTask(deps),
		ResolveTargetTask(opts.Database),
		resolveRelationsTask(opts),
		createRecordTask(opts),
		SaveSettingsTask(deps),
	}
}

// resolvedFields assembles the field values BuildPage consumes, with
// relation terms replaced by page IDs.
func resolvedFields(c *pipeline.Context, opts AddOptions) map[string]notion.FieldValue {
	fields := make(map[string]notion.FieldValue, len(opts.TextFields)+len(opts.ListFields))
	for name, text := range opts.TextFields {
		fields[name] = notion.FieldValue{Text: text}
	}
	for name, list := range opts.ListFields {
		fields[name] = notion.FieldValue{List: list}
	}

	resolved, ok := pipeline.Value[map[string][]string](c, keyResolvedRelations)
	if ok {
		for name, ids := range resolved {
			fields[name] = notion.FieldValue{List: ids}
		}
	}
	return fields
}

// keyResolvedRelations holds map[string][]string of relation field names to
// resolved page IDs, private to the add pipeline.
const keyResolvedRelations = "resolvedRelations"

// relationFieldNames returns the normalized names of target's relation
// properties that appear in opts.ListFields.
func relationFieldNames(target *notion.Database, opts AddOptions) []string {
	var names []string
	for schemaName, prop := range target.Properties {
		if prop.Type != "relation" {
			continue
		}
		normalized := notion.NormalizePropertyName(schemaName)
		if _, ok := opts.ListFields[normalized]; ok {
			names = append(names, normalized)
		}
	}
	return names
}

func resolveRelationsTask(opts AddOptions) pipeline.Task {
	return pipeline.Task{
		Skip: func(c *pipeline.Context) string {
			if target := Target(c); target != nil && len(relationFieldNames(target, opts)) == 0 {
				return "no relation fields"
			}
			return ""
		},
		Run: func(ctx context.Context, c *pipeline.Context, h *pipeline.Handle) error {
			target := Target(c)
			resolved := map[string][]string{}

			for _, field := range relationFieldNames(target, opts) {
				related, err := notion.RelationTarget(target, field, Directory(c))
				if err != nil {
					return err
				}

				var ids []string
				for _, term := range opts.ListFields[field] {
					termIDs, err := resolveRelationTerm(ctx, c, h, related, term)
					if err != nil {
						return err
					}
					ids = append(ids, termIDs...)
				}
				resolved[field] = ids
			}

			c.Set(keyResolvedRelations, resolved)
			return nil
		},
	}
}

// resolveRelationTerm turns one relation search term into page IDs in the
// related database:
//
//   - a match whose title equals the term exactly (case-sensitive first,
//     then ignoring case) resolves to that single id without prompting
//   - any inexact match set is disambiguated with a multi-select over the
//     candidates, preselecting a lone candidate; every picked record links
//   - no match offers to create the referenced record inline; declining
//     cancels the run
func resolveRelationTerm(ctx context.Context, c *pipeline.Context, h *pipeline.Handle, related *notion.Database, term string) ([]string, error) {
	titleProp, _, _ := related.TitleProperty()
	result, err := Client(c).QueryDatabase(ctx, related.ID, notion.Query{
		TitleContains: term,
		TitleProperty: titleProp,
	})
	if err != nil {
		return nil, err
	}

	matches := result.Results
	for i := range matches {
		if matches[i].TitleText() == term {
			return []string{matches[i].ID}, nil
		}
	}
	for i := range matches {
		if strings.EqualFold(matches[i].TitleText(), term) {
			return []string{matches[i].ID}, nil
		}
	}

	if len(matches) == 0 {
		ok, err := h.Confirm(ctx,
			fmt.Sprintf("No %q found in %s - create it?", term, related.TitleText), true)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, &errors.UserCanceledError{Prompt: "create related record " + strconv.Quote(term)}
		}

		req, err := notion.BuildPage(related, term, nil)
		if err != nil {
			return nil, err
		}
		page, err := Client(c).CreatePage(ctx, req)
		if err != nil {
			return nil, err
		}
		h.Output("created %q in %s (id: %s)", term, related.TitleText, page.ID)
		return []string{page.ID}, nil
	}

	titles := make([]string, len(matches))
	for i := range matches {
		titles[i] = matches[i].TitleText()
	}
	var preselected []string
	if len(matches) == 1 {
		preselected = titles
	}
	chosen, err := h.MultiSelect(ctx,
		fmt.Sprintf("Matches for %q in %s", term, related.TitleText), titles, preselected)
	if err != nil {
		return nil, err
	}
	if len(chosen) == 0 {
		return nil, &errors.UserCanceledError{Prompt: "link related record " + strconv.Quote(term)}
	}

	var ids []string
	for _, choice := range chosen {
		found := false
		for i := range matches {
			if matches[i].TitleText() == choice {
				ids = append(ids, matches[i].ID)
				found = true
				break
			}
		}
		if !found {
			return nil, &errors.ValidationError{Field: "relation", Message: "selection did not match any candidate"}
		}
	}
	return ids, nil
}

func createRecordTask(opts AddOptions) pipeline.Task {
	return pipeline.Task{
		Title: "Save record",
		Run: func(ctx context.Context, c *pipeline.Context, h *pipeline.Handle) error {
			target := Target(c)
			h.SetTitle(fmt.Sprintf("Save %q to %s", opts.Title, target.TitleText))

			req, err := notion.BuildPage(target, opts.Title, resolvedFields(c, opts))
			if err != nil {
				return err
			}

			page, err := Client(c).CreatePage(ctx, req)
			if err != nil {
				return err
			}

			c.Set(KeyResult, page)
			return nil
		},
	}
}
