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

// Package pipelines assembles the CLI's task pipelines: initialization,
// database directory management, record creation and record listing. Tasks
// communicate through well-known context keys; the typed accessors below
// keep key usage consistent across pipelines.
package pipelines

import (
	"github.com/tombee/eplog/internal/notion"
	"github.com/tombee/eplog/internal/settings"
	"github.com/tombee/eplog/pkg/pipeline"
)

// Context keys shared between pipeline tasks.
const (
	// KeySettings holds *settings.Settings, the loaded document.
	KeySettings = "settings"
	// KeyProfile holds settings.Profile, the active profile.
	KeyProfile = "profile"
	// KeyClient holds notion.API once a credential has been resolved.
	KeyClient = "client"
	// KeyDatabases holds []notion.Database, the database directory.
	KeyDatabases = "databases"
	// KeyDatabase holds *notion.Database, the resolved target database.
	KeyDatabase = "database"
	// KeyUpdateSettings marks the settings document dirty. The trailing
	// save task persists only when this is set.
	KeyUpdateSettings = "updateSettings"
	// KeyRequestSetup marks that the user agreed to run initialization.
	KeyRequestSetup = "requestSetup"
	// KeyResult holds *notion.Page, the record created by an add run.
	KeyResult = "result"
	// KeyRecords holds []notion.Page accumulated by a list run.
	KeyRecords = "records"
)

// Doc returns the settings document from the run context.
func Doc(c *pipeline.Context) *settings.Settings {
	doc, _ := pipeline.Value[*settings.Settings](c, KeySettings)
	return doc
}

// ActiveProfile returns the active profile from the run context.
func ActiveProfile(c *pipeline.Context) settings.Profile {
	p, _ := pipeline.Value[settings.Profile](c, KeyProfile)
	return p
}

// Client returns the remote API client from the run context.
func Client(c *pipeline.Context) notion.API {
	api, _ := pipeline.Value[notion.API](c, KeyClient)
	return api
}

// Directory returns the database directory from the run context.
func Directory(c *pipeline.Context) []notion.Database {
	dbs, _ := pipeline.Value[[]notion.Database](c, KeyDatabases)
	return dbs
}

// Target returns the resolved target database from the run context.
func Target(c *pipeline.Context) *notion.Database {
	db, _ := pipeline.Value[*notion.Database](c, KeyDatabase)
	return db
}

// Result returns the created record from the run context.
func Result(c *pipeline.Context) *notion.Page {
	page, _ := pipeline.Value[*notion.Page](c, KeyResult)
	return page
}

// Records returns the listed records from the run context.
func Records(c *pipeline.Context) []notion.Page {
	pages, _ := pipeline.Value[[]notion.Page](c, KeyRecords)
	return pages
}

// MarkSettingsDirty flags the settings document for the trailing save task.
func MarkSettingsDirty(c *pipeline.Context) {
	c.Set(KeyUpdateSettings, true)
}
