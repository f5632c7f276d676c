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

package add

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tombee/eplog/internal/notion"
	"github.com/tombee/eplog/internal/pipelines"
	"github.com/tombee/eplog/internal/settings"
	"github.com/tombee/eplog/pkg/errors"
)

func emptyOptions() pipelines.AddOptions {
	return pipelines.AddOptions{
		TextFields: map[string]string{},
		ListFields: map[string][]string{},
	}
}

func TestMergeRawFields(t *testing.T) {
	opts := emptyOptions()

	err := mergeRawFields(&opts, []string{
		"notes=draft one",
		"tags=work",
		"tags=writing",
		"Assignée=sam",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"draft one"}, opts.ListFields["notes"])
	assert.Equal(t, []string{"work", "writing"}, opts.ListFields["tags"])
	assert.Equal(t, []string{"sam"}, opts.ListFields["assignee"])
}

func TestMergeRawFieldsInvalid(t *testing.T) {
	for _, raw := range []string{"notes", "=value", "###=value"} {
		opts := emptyOptions()
		err := mergeRawFields(&opts, []string{raw})

		var validation *errors.ValidationError
		require.ErrorAs(t, err, &validation, "input %q", raw)
	}
}

func TestMergeRawFieldsKeepsValueEquals(t *testing.T) {
	opts := emptyOptions()

	require.NoError(t, mergeRawFields(&opts, []string{"notes=a=b"}))
	assert.Equal(t, []string{"a=b"}, opts.ListFields["notes"])
}

func TestDefaultDatabase(t *testing.T) {
	directory := []notion.Database{
		{ID: "db-1", TitleText: "Journal"},
		{ID: "db-2", TitleText: "Projects"},
	}

	doc := settings.Empty()
	assert.Nil(t, defaultDatabase(doc, directory))

	doc.EnsureProfile().Set(settings.KeyDatabase, "db-2")
	db := defaultDatabase(doc, directory)
	require.NotNil(t, db)
	assert.Equal(t, "Projects", db.TitleText)

	doc.EnsureProfile().Set(settings.KeyDatabase, "db-gone")
	assert.Nil(t, defaultDatabase(doc, directory))
}
