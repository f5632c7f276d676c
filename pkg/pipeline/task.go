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
	"sync"
	"time"
)

// TaskStatus represents the execution status of a pipeline task.
type TaskStatus string

const (
	// StatusSuccess indicates the task body completed without error.
	StatusSuccess TaskStatus = "success"
	// StatusFailed indicates the task body returned an error.
	StatusFailed TaskStatus = "failed"
	// StatusSkipped indicates the skip predicate returned a reason and the
	// task body never ran.
	StatusSkipped TaskStatus = "skipped"
	// StatusDisabled indicates the enabled predicate returned false; the
	// task was omitted entirely. Distinguished from skipped only in
	// reporting, not in effect.
	StatusDisabled TaskStatus = "disabled"
)

// Task is a declarative unit of work. The zero predicates mean
// "always enabled, never skipped".
type Task struct {
	// Title is the human-visible task name. Tasks may update it during
	// execution via their Handle.
	Title string

	// Enabled, when non-nil and returning false, omits the task entirely.
	Enabled func(c *Context) bool

	// Skip, when non-nil and returning a non-empty reason, records the task
	// as skipped without executing it.
	Skip func(c *Context) string

	// Run is the task body. It receives the shared Context and a Handle for
	// title updates, progress output, prompts and nested sub-pipelines.
	Run func(ctx context.Context, c *Context, h *Handle) error
}

// TaskResult records the outcome of one task in a run.
type TaskResult struct {
	// Title is the task title at completion time.
	Title string

	// Status is the final status.
	Status TaskStatus

	// SkipReason carries the reason returned by the skip predicate.
	SkipReason string

	// Err is the task body's error, if any.
	Err error

	// StartedAt and Duration cover the task body only; skipped and disabled
	// tasks record zero duration.
	StartedAt time.Time
	Duration  time.Duration
}

// Report collects task results across a run, including tasks of nested
// sub-pipelines, in completion order.
type Report struct {
	mu      sync.Mutex
	results []TaskResult
}

func (r *Report) add(res TaskResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

// Results returns a copy of the recorded task results.
func (r *Report) Results() []TaskResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TaskResult, len(r.results))
	copy(out, r.results)
	return out
}

// Failed returns the results of tasks that failed.
func (r *Report) Failed() []TaskResult {
	var failed []TaskResult
	for _, res := range r.Results() {
		if res.Status == StatusFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

// Mode selects how sibling tasks of one group execute.
type Mode int

const (
	// Sequential executes tasks in list order, one at a time.
	Sequential Mode = iota
	// Concurrent executes tasks with overlapping I/O wait. Completion of the
	// group waits for all siblings; no ordering is guaranteed between them.
	Concurrent
)

// DefaultConcurrency limits how many concurrent siblings run at once unless
// overridden per group.
const DefaultConcurrency = 4

// Options configures one task group.
type Options struct {
	// Mode selects sequential or concurrent sibling execution.
	Mode Mode

	// ContinueOnError makes the group tolerate individual task failures:
	// every sibling still runs to completion and only the failed tasks are
	// reported as failed. Used for independent parallel loads.
	ContinueOnError bool

	// MaxConcurrency bounds concurrent siblings. Zero means DefaultConcurrency.
	MaxConcurrency int
}
