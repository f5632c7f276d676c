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

	"github.com/tombee/eplog/internal/notion"
	"github.com/tombee/eplog/pkg/pipeline"
)

// DefaultListAmount is how many records one listing page fetches unless
// overridden with --amount.
const DefaultListAmount = 12

// ListOptions carries the inputs of one list run.
type ListOptions struct {
	// Workspace selects a profile other than the active one.
	Workspace string

	// Terms filters records whose title contains this text. Empty lists
	// everything.
	Terms string

	// Database overrides the profile's default database by name.
	Database string

	// Amount is the page size. Zero means DefaultListAmount.
	Amount int
}

// ListTasks builds the record-listing pipeline. Records accumulate in the
// run context page by page; between pages the user confirms whether to keep
// going, and declining simply stops the listing.
func ListTasks(deps *Deps, opts ListOptions) []pipeline.Task {
	return []pipeline.Task{
		LoadSettingsTask(deps, opts.Workspace),
		LoadDirectoryTask(deps),
		EnsureClientTask(deps),
		ResolveTargetTask(opts.Database),
		listRecordsTask(opts),
	}
}

func listRecordsTask(opts ListOptions) pipeline.Task {
	amount := opts.Amount
	if amount <= 0 {
		amount = DefaultListAmount
	}

	return pipeline.Task{
		Title: "List records",
		Run: func(ctx context.Context, c *pipeline.Context, h *pipeline.Handle) error {
			target := Target(c)
			titleProp, _, _ := target.TitleProperty()

			var (
				records []notion.Page
				cursor  string
			)
			for {
				result, err := Client(c).QueryDatabase(ctx, target.ID, notion.Query{
					TitleContains: opts.Terms,
					TitleProperty: titleProp,
					PageSize:      amount,
					StartCursor:   cursor,
				})
				if err != nil {
					return err
				}

				records = append(records, result.Results...)
				c.Set(KeyRecords, records)

				for _, page := range result.Results {
					h.Output("%s  %s", page.CreatedTime, page.TitleText())
				}

				if !result.HasMore || result.NextCursor == "" {
					break
				}

				more, err := h.Confirm(ctx, "Load more results?", true)
				if err != nil {
					return err
				}
				if !more {
					break
				}
				cursor = result.NextCursor
			}

			h.SetTitle("List records: " + strconv.Itoa(len(records)) + " found")
			return nil
		},
	}
}
