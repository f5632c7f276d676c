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

package script

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/eplog/internal/notion"
	"github.com/tombee/eplog/internal/settings"
	pkgerrors "github.com/tombee/eplog/pkg/errors"
)

type fakeAPI struct {
	queryResults []notion.Page
	created      []*notion.PageRequest
}

func (f *fakeAPI) ListDatabases(ctx context.Context) ([]notion.Database, error) {
	return nil, nil
}

func (f *fakeAPI) QueryDatabase(ctx context.Context, databaseID string, q notion.Query) (*notion.QueryResult, error) {
	return &notion.QueryResult{Results: f.queryResults}, nil
}

func (f *fakeAPI) CreatePage(ctx context.Context, req *notion.PageRequest) (*notion.Page, error) {
	f.created = append(f.created, req)
	return &notion.Page{ID: "page-1", Properties: req.Properties}, nil
}

func (f *fakeAPI) RetrievePage(ctx context.Context, pageID string) (*notion.Page, error) {
	return nil, nil
}

func (f *fakeAPI) ListBlockChildren(ctx context.Context, blockID, cursor string, pageSize int) (*notion.BlockChildren, error) {
	return nil, nil
}

func (f *fakeAPI) AppendBlockChildren(ctx context.Context, blockID string, blocks []notion.Block) error {
	return nil
}

func (f *fakeAPI) DeleteBlock(ctx context.Context, blockID string) error {
	return nil
}

func journalDB() notion.Database {
	return notion.Database{
		ID:        "db-journal",
		TitleText: "Journal",
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

func writeRC(t *testing.T, dir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, RCFileName), []byte(content), 0600))
}

func TestLoadRCMergesWithPrecedence(t *testing.T) {
	local := t.TempDir()
	global := t.TempDir()

	writeRC(t, global, "vars:\n  who: global\n  only: here\nscripts:\n  hello: '\"hi\"'\n")
	writeRC(t, local, "vars:\n  who: local\n")

	rc, err := LoadRC(local, global)
	require.NoError(t, err)

	assert.Equal(t, "local", rc.Vars["who"])
	assert.Equal(t, "here", rc.Vars["only"])
	assert.Equal(t, `"hi"`, rc.Scripts["hello"])
}

func TestLoadRCMissingFiles(t *testing.T) {
	rc, err := LoadRC(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, rc.Vars)
	assert.Empty(t, rc.Scripts)
}

func TestLoadRCInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	writeRC(t, dir, "vars: [not: a map\n")

	_, err := LoadRC(dir)

	var configErr *pkgerrors.ConfigError
	require.ErrorAs(t, err, &configErr)
}

func TestResolveNamedScriptWinsOverFile(t *testing.T) {
	rc := &RC{Scripts: map[string]string{"count": `len(args)`}}

	src, err := rc.Resolve("count")
	require.NoError(t, err)
	assert.Equal(t, `len(args)`, src)
}

func TestResolveFilePath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.expr")
	require.NoError(t, os.WriteFile(path, []byte(`vars.who`), 0600))

	rc := &RC{}
	src, err := rc.Resolve(path)
	require.NoError(t, err)
	assert.Equal(t, `vars.who`, src)
}

func TestResolveUnknown(t *testing.T) {
	rc := &RC{}
	_, err := rc.Resolve("nope")

	var validation *pkgerrors.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestSplitFrontMatter(t *testing.T) {
	fm, body, err := SplitFrontMatter("---\nprofile:\n  compact: true\n---\nargs[0]")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"compact": true}, fm.Profile)
	assert.Equal(t, "args[0]", body)
}

func TestSplitFrontMatterAbsent(t *testing.T) {
	fm, body, err := SplitFrontMatter(`vars.who`)
	require.NoError(t, err)
	assert.Empty(t, fm.Profile)
	assert.Equal(t, `vars.who`, body)
}

func TestSplitFrontMatterUnterminated(t *testing.T) {
	_, _, err := SplitFrontMatter("---\nprofile:\n  compact: true\n")

	var validation *pkgerrors.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestRunExposesVarsAndArgs(t *testing.T) {
	env := Env{
		Vars: map[string]any{"who": "world"},
		Args: []string{"a", "b"},
	}

	out, err := Run(context.Background(), `vars.who + " " + args[0]`, env)
	require.NoError(t, err)
	assert.Equal(t, "world a", out)
}

func TestRunMasksTokenInProfile(t *testing.T) {
	env := Env{
		Profile: settings.Profile{
			settings.KeyIntegrationToken: "secret_0123456789abcdef0123",
		},
	}

	out, err := Run(context.Background(), `profile.integrationToken`, env)
	require.NoError(t, err)
	assert.NotContains(t, out, "89abcdef")
}

func TestRunQuery(t *testing.T) {
	api := &fakeAPI{queryResults: []notion.Page{titledPage("page-1", "standup notes")}}
	db := journalDB()
	env := Env{
		Directory: []notion.Database{db},
		Target:    &db,
		Client:    api,
	}

	out, err := Run(context.Background(), `map(query("standup"), .title)`, env)
	require.NoError(t, err)
	assert.Equal(t, []any{"standup notes"}, out)
}

func TestRunAdd(t *testing.T) {
	api := &fakeAPI{}
	db := journalDB()
	env := Env{
		Directory: []notion.Database{db},
		Target:    &db,
		Client:    api,
	}

	out, err := Run(context.Background(), `add("from a script").id`, env)
	require.NoError(t, err)
	assert.Equal(t, "page-1", out)

	require.Len(t, api.created, 1)
	assert.Equal(t, "db-journal", api.created[0].Parent.DatabaseID)
}

func TestRunAddWithoutTarget(t *testing.T) {
	_, err := Run(context.Background(), `add("entry")`, Env{})

	var validation *pkgerrors.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestRunCompileError(t *testing.T) {
	_, err := Run(context.Background(), `1 +`, Env{})

	var validation *pkgerrors.ValidationError
	require.ErrorAs(t, err, &validation)
}
