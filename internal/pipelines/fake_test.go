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
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tombee/eplog/internal/notion"
	"github.com/tombee/eplog/internal/settings"
	"github.com/tombee/eplog/internal/store"
	"github.com/tombee/eplog/pkg/errors"
)

// fakeAPI is a scripted notion.API. Query results are keyed by database ID
// and filter term; created pages are recorded for assertions.
type fakeAPI struct {
	mu sync.Mutex

	databases []notion.Database
	listErr   error

	queryResults map[string][]notion.Page
	queryPaged   map[string][]notion.QueryResult
	queryErr     error

	created    []*notion.PageRequest
	createErr  error
	nextPageID int
}

func (f *fakeAPI) ListDatabases(ctx context.Context) ([]notion.Database, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.databases, nil
}

func queryKey(databaseID, term string) string { return databaseID + "|" + term }

func (f *fakeAPI) QueryDatabase(ctx context.Context, databaseID string, q notion.Query) (*notion.QueryResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.queryErr != nil {
		return nil, f.queryErr
	}

	key := queryKey(databaseID, q.TitleContains)
	if paged, ok := f.queryPaged[key]; ok && len(paged) > 0 {
		page := paged[0]
		f.queryPaged[key] = paged[1:]
		return &page, nil
	}
	return &notion.QueryResult{Results: f.queryResults[key]}, nil
}

func (f *fakeAPI) CreatePage(ctx context.Context, req *notion.PageRequest) (*notion.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return nil, f.createErr
	}

	f.created = append(f.created, req)
	f.nextPageID++
	return &notion.Page{
		ID:          "page-" + strconv.Itoa(f.nextPageID),
		CreatedTime: "2026-08-30T10:00:00Z",
		Properties:  req.Properties,
	}, nil
}

func (f *fakeAPI) RetrievePage(ctx context.Context, pageID string) (*notion.Page, error) {
	return &notion.Page{ID: pageID}, nil
}

func (f *fakeAPI) ListBlockChildren(ctx context.Context, blockID, cursor string, pageSize int) (*notion.BlockChildren, error) {
	return &notion.BlockChildren{}, nil
}

func (f *fakeAPI) AppendBlockChildren(ctx context.Context, blockID string, blocks []notion.Block) error {
	return nil
}

func (f *fakeAPI) DeleteBlock(ctx context.Context, blockID string) error {
	return nil
}

// journalDB and projectsDB form the directory used across pipeline tests.
func journalDB() notion.Database {
	return notion.Database{
		ID:        "db-journal",
		TitleText: "Journal",
		Properties: map[string]notion.PropertySchema{
			"Name":  {Type: "title"},
			"Notes": {Type: "rich_text"},
			"Tags": {Type: "multi_select", MultiSelect: &notion.MultiSelectSchema{
				Options: []notion.SelectOption{{Name: "work"}, {Name: "home"}},
			}},
			"Project": {Type: "relation", Relation: &notion.RelationSchema{DatabaseID: "db-projects"}},
		},
	}
}

func projectsDB() notion.Database {
	return notion.Database{
		ID:        "db-projects",
		TitleText: "Projects",
		Properties: map[string]notion.PropertySchema{
			"Name": {Type: "title"},
		},
	}
}

func titledPage(id, title string) notion.Page {
	return notion.Page{
		ID: id,
		Properties: map[string]notion.PropertyValue{
			"Name": {Type: "title", Title: notion.NewRichText(title)},
		},
	}
}

// testDeps wires a Deps over a temp store with the fake API.
func testDeps(t *testing.T, api *fakeAPI) (*Deps, *settings.Repository) {
	t.Helper()

	s, err := store.OpenFile(t.TempDir())
	require.NoError(t, err)

	repo := settings.NewRepository(s)
	deps := &Deps{
		Repo: repo,
		NewClient: func(token string) (notion.API, error) {
			if token == "bad-token" {
				return nil, &errors.InvalidCredentialError{MaskedToken: "[REDACTED]"}
			}
			return api, nil
		},
	}
	return deps, repo
}

// seedSettings persists a ready-to-use profile with token and default
// database.
func seedSettings(t *testing.T, repo *settings.Repository, databaseID string) {
	t.Helper()

	doc := settings.Empty()
	p := doc.EnsureProfile()
	p[settings.KeyIntegrationToken] = "secret_token"
	if databaseID != "" {
		p[settings.KeyDatabase] = databaseID
	}
	require.NoError(t, repo.SaveSettings(doc))
}
