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

package shared

import (
	"context"
	"log/slog"
	"os"

	"github.com/tombee/eplog/internal/cli/prompt"
	"github.com/tombee/eplog/internal/log"
	"github.com/tombee/eplog/internal/pipelines"
	"github.com/tombee/eplog/internal/settings"
	"github.com/tombee/eplog/internal/store"
	"github.com/tombee/eplog/pkg/pipeline"
)

// BuildDeps opens the key-value store and assembles the pipeline
// dependencies. The returned cleanup closes the store.
//
// EPLOG_STORAGE_BACKEND selects the store backend ("file" or "sqlite").
func BuildDeps() (*pipelines.Deps, func(), error) {
	logger := log.New(log.FromEnv())
	slog.SetDefault(logger)

	dir, err := store.StorageDir()
	if err != nil {
		return nil, nil, NewConfigError("cannot resolve the storage directory", err)
	}

	backend := store.Backend(os.Getenv("EPLOG_STORAGE_BACKEND"))
	st, err := store.Open(backend, dir)
	if err != nil {
		return nil, nil, NewConfigError("cannot open the local store", err)
	}

	deps := pipelines.NewDeps(settings.NewRepository(st), logger)
	return deps, func() { st.Close() }, nil
}

// RunTasks executes a sequential task pipeline with the interactive
// prompter and the task-list renderer, returning the run context.
func RunTasks(ctx context.Context, tasks []pipeline.Task) (*pipeline.Context, error) {
	c := pipeline.NewContext()

	runner := pipeline.New(tasks, pipeline.Options{})
	err := runner.
		WithPrompter(prompt.NewSurveyPrompter(!IsNonInteractive())).
		WithObserver(NewTaskRenderer().WithVerbose(GetVerbose())).
		WithLogger(log.WithRunContext(slog.Default(), runner.RunID(), "cli")).
		Run(ctx, c)

	return c, err
}
