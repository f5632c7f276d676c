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
	"maps"

	"github.com/tombee/eplog/pkg/pipeline"
)

// ExecTasks builds the environment for script execution: settings with the
// overlay applied, the database directory and an authenticated client.
// Script evaluation itself happens outside the pipeline.
//
// The overlay (front-matter plus .eplogrc values) merges into a copy of the
// active profile before the client connects, so an overlay-supplied token
// satisfies the credential requirement. Nothing is persisted.
func ExecTasks(deps *Deps, workspace string, overlay map[string]any) []pipeline.Task {
	return []pipeline.Task{
		LoadSettingsTask(deps, workspace),
		overlayProfileTask(overlay),
		LoadDirectoryTask(deps),
		EnsureClientTask(deps),
	}
}

// overlayProfileTask replaces the run's active profile with a copy carrying
// the overlay entries. The settings document is left untouched and the dirty
// mark is never set, so the overlay lives for this run only.
func overlayProfileTask(overlay map[string]any) pipeline.Task {
	return pipeline.Task{
		Run: func(ctx context.Context, c *pipeline.Context, h *pipeline.Handle) error {
			profile := maps.Clone(Doc(c).EnsureProfile())
			for k, v := range overlay {
				profile[k] = v
			}
			c.Set(KeyProfile, profile)
			return nil
		},
	}
}
