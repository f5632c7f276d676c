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

package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Runner executes one ordered group of sibling tasks against a shared
// Context. Nested groups created through task handles share the runner's
// prompter, observer, report and prompt serialization.
type Runner struct {
	tasks []Task
	opts  Options

	prompter Prompter
	observer Observer
	logger   *slog.Logger

	runID string

	// promptMu serializes prompt presentation across all tasks of a run,
	// including concurrent siblings and nested groups. Task bodies may run
	// concurrently; prompts never interleave.
	promptMu *sync.Mutex

	report *Report
}

// New creates a runner for the given task group.
func New(tasks []Task, opts Options) *Runner {
	return &Runner{
		tasks:    tasks,
		opts:     opts,
		observer: nopObserver{},
		logger:   slog.Default(),
		runID:    uuid.NewString(),
		promptMu: &sync.Mutex{},
		report:   &Report{},
	}
}

// WithPrompter sets the interactive prompter for the run.
func (r *Runner) WithPrompter(p Prompter) *Runner {
	r.prompter = p
	return r
}

// WithObserver sets the observer notified of task lifecycle events.
func (r *Runner) WithObserver(o Observer) *Runner {
	if o != nil {
		r.observer = o
	}
	return r
}

// WithLogger sets a custom logger for the run.
func (r *Runner) WithLogger(logger *slog.Logger) *Runner {
	if logger != nil {
		r.logger = logger
	}
	return r
}

// RunID returns the run's unique identifier, shared with nested groups.
func (r *Runner) RunID() string {
	return r.runID
}

// Report returns the run's report. Safe to inspect after Run returns; in
// tolerant groups it is the only place individual failures surface.
func (r *Runner) Report() *Report {
	return r.report
}

// Run executes the group against the given Context. The same mutated Context
// is available to the caller afterwards; Run's error is the first task error
// for fail-fast groups and nil for tolerant groups.
func (r *Runner) Run(ctx context.Context, c *Context) error {
	if c == nil {
		c = NewContext()
	}

	r.logger.Debug("pipeline run started",
		"run_id", r.runID,
		"tasks", len(r.tasks),
		"concurrent", r.opts.Mode == Concurrent,
	)

	var err error
	switch r.opts.Mode {
	case Concurrent:
		err = r.runConcurrent(ctx, c)
	default:
		err = r.runSequential(ctx, c)
	}

	r.logger.Debug("pipeline run finished",
		"run_id", r.runID,
		"failed", len(r.report.Failed()),
		"error", err,
	)
	return err
}

// child creates a runner for a nested group sharing this run's context
// plumbing. Used by Handle.Subtasks.
func (r *Runner) child(tasks []Task, opts Options) *Runner {
	return &Runner{
		tasks:    tasks,
		opts:     opts,
		prompter: r.prompter,
		observer: r.observer,
		logger:   r.logger,
		runID:    r.runID,
		promptMu: r.promptMu,
		report:   r.report,
	}
}

func (r *Runner) runSequential(ctx context.Context, c *Context) error {
	for i := range r.tasks {
		task := &r.tasks[i]

		if !r.admit(task, c) {
			continue
		}

		if err := r.execute(ctx, task, c); err != nil {
			if r.opts.ContinueOnError {
				continue
			}
			return err
		}

		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) runConcurrent(ctx context.Context, c *Context) error {
	limit := r.opts.MaxConcurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	sem := make(chan struct{}, limit)

	runCtx := ctx
	var cancel context.CancelFunc
	if !r.opts.ContinueOnError {
		runCtx, cancel = context.WithCancel(ctx)
		defer cancel()
	}

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)

	for i := range r.tasks {
		task := &r.tasks[i]

		if !r.admit(task, c) {
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if err := r.execute(runCtx, task, c); err != nil {
				errMu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				errMu.Unlock()
				if cancel != nil {
					cancel()
				}
			}
		}()
	}

	wg.Wait()

	if r.opts.ContinueOnError {
		return nil
	}
	return firstErr
}

// admit evaluates the enabled and skip predicates. It returns true when the
// task body should execute; disabled and skipped tasks are recorded without
// touching the Context.
func (r *Runner) admit(task *Task, c *Context) bool {
	if task.Enabled != nil && !task.Enabled(c) {
		r.report.add(TaskResult{Title: task.Title, Status: StatusDisabled})
		return false
	}

	if task.Skip != nil {
		if reason := task.Skip(c); reason != "" {
			res := TaskResult{Title: task.Title, Status: StatusSkipped, SkipReason: reason}
			r.report.add(res)
			r.observer.TaskFinished(res)
			r.logger.Debug("task skipped",
				"run_id", r.runID,
				"task", task.Title,
				"reason", reason,
			)
			return false
		}
	}

	return task.Run != nil
}

func (r *Runner) execute(ctx context.Context, task *Task, c *Context) error {
	handle := &Handle{runner: r, title: task.Title}

	r.observer.TaskStarted(task.Title)
	started := time.Now()

	err := task.Run(ctx, c, handle)

	res := TaskResult{
		Title:     handle.Title(),
		StartedAt: started,
		Duration:  time.Since(started),
	}
	if err != nil {
		res.Status = StatusFailed
		res.Err = err
	} else {
		res.Status = StatusSuccess
	}
	r.report.add(res)
	r.observer.TaskFinished(res)

	// The error is returned unwrapped so callers keep its identity; the
	// failing task's title is recorded in the report.
	if err != nil {
		r.logger.Debug("task failed",
			"run_id", r.runID,
			"task", handle.Title(),
			"error", err,
		)
	}
	return err
}
