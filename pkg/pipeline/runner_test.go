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
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// appendLog appends a marker to the "log" slice in the Context. Tasks use it
// to record execution order.
func appendLog(c *Context, name string) {
	logged, _ := Value[[]string](c, "log")
	c.Set("log", append(logged, name))
}

func logTask(name string) Task {
	return Task{
		Title: name,
		Run: func(ctx context.Context, c *Context, h *Handle) error {
			appendLog(c, name)
			return nil
		},
	}
}

func TestSequentialOrdering(t *testing.T) {
	c := NewContext()

	// B suspends mid-body; order must still be A, B, C.
	tasks := []Task{
		logTask("A"),
		{
			Title: "B",
			Run: func(ctx context.Context, c *Context, h *Handle) error {
				time.Sleep(10 * time.Millisecond)
				appendLog(c, "B")
				return nil
			},
		},
		logTask("C"),
	}

	if err := New(tasks, Options{Mode: Sequential}).Run(context.Background(), c); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	logged, _ := Value[[]string](c, "log")
	want := []string{"A", "B", "C"}
	if len(logged) != len(want) {
		t.Fatalf("log = %v, want %v", logged, want)
	}
	for i := range want {
		if logged[i] != want[i] {
			t.Fatalf("log = %v, want %v", logged, want)
		}
	}
}

func TestSkipPredicate(t *testing.T) {
	c := NewContext()
	c.Set("configured", true)

	executed := false
	tasks := []Task{
		{
			Title: "configure",
			Skip: func(c *Context) string {
				if c.Bool("configured") {
					return "already configured"
				}
				return ""
			},
			Run: func(ctx context.Context, c *Context, h *Handle) error {
				executed = true
				c.Set("mutated", true)
				return nil
			},
		},
	}

	runner := New(tasks, Options{})
	if err := runner.Run(context.Background(), c); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if executed {
		t.Error("skipped task body executed")
	}
	if c.Has("mutated") {
		t.Error("skipped task mutated the context")
	}

	results := runner.Report().Results()
	if len(results) != 1 || results[0].Status != StatusSkipped {
		t.Fatalf("unexpected report: %+v", results)
	}
	if results[0].SkipReason != "already configured" {
		t.Errorf("skip reason = %q", results[0].SkipReason)
	}
}

func TestEnabledPredicate(t *testing.T) {
	c := NewContext()

	executed := false
	tasks := []Task{
		{
			Title:   "save settings",
			Enabled: func(c *Context) bool { return c.Bool("updateSettings") },
			Run: func(ctx context.Context, c *Context, h *Handle) error {
				executed = true
				return nil
			},
		},
	}

	runner := New(tasks, Options{})
	if err := runner.Run(context.Background(), c); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if executed {
		t.Error("disabled task body executed")
	}

	results := runner.Report().Results()
	if len(results) != 1 || results[0].Status != StatusDisabled {
		t.Fatalf("unexpected report: %+v", results)
	}
}

func TestAbortPropagates(t *testing.T) {
	c := NewContext()
	boom := errors.New("boom")

	tasks := []Task{
		logTask("A"),
		{
			Title: "B",
			Run: func(ctx context.Context, c *Context, h *Handle) error {
				return boom
			},
		},
		logTask("C"),
	}

	err := New(tasks, Options{Mode: Sequential}).Run(context.Background(), c)
	if !errors.Is(err, boom) {
		t.Fatalf("run error = %v, want boom", err)
	}

	logged, _ := Value[[]string](c, "log")
	if len(logged) != 1 || logged[0] != "A" {
		t.Fatalf("log = %v, want [A]", logged)
	}
}

func TestTolerantConcurrentGroup(t *testing.T) {
	c := NewContext()
	boom := errors.New("boom")

	tasks := []Task{
		{
			Title: "load settings",
			Run: func(ctx context.Context, c *Context, h *Handle) error {
				c.Set("settings", "loaded")
				return nil
			},
		},
		{
			Title: "load databases",
			Run: func(ctx context.Context, c *Context, h *Handle) error {
				return boom
			},
		},
		{
			Title: "load directory",
			Run: func(ctx context.Context, c *Context, h *Handle) error {
				time.Sleep(5 * time.Millisecond)
				c.Set("directory", "loaded")
				return nil
			},
		},
	}

	runner := New(tasks, Options{Mode: Concurrent, ContinueOnError: true})
	if err := runner.Run(context.Background(), c); err != nil {
		t.Fatalf("tolerant group returned error: %v", err)
	}

	if c.String("settings") != "loaded" || c.String("directory") != "loaded" {
		t.Error("successful sibling mutations not visible after tolerated failure")
	}

	failed := runner.Report().Failed()
	if len(failed) != 1 || failed[0].Title != "load databases" {
		t.Fatalf("unexpected failed tasks: %+v", failed)
	}
}

func TestConcurrentWaitsForAll(t *testing.T) {
	c := NewContext()
	var running int32
	var peak int32

	var tasks []Task
	for i := 0; i < 8; i++ {
		tasks = append(tasks, Task{
			Title: "worker",
			Run: func(ctx context.Context, c *Context, h *Handle) error {
				n := atomic.AddInt32(&running, 1)
				for {
					p := atomic.LoadInt32(&peak)
					if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
						break
					}
				}
				time.Sleep(2 * time.Millisecond)
				atomic.AddInt32(&running, -1)
				return nil
			},
		})
	}

	runner := New(tasks, Options{Mode: Concurrent, MaxConcurrency: 2})
	if err := runner.Run(context.Background(), c); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if atomic.LoadInt32(&running) != 0 {
		t.Error("run returned before all siblings completed")
	}
	if p := atomic.LoadInt32(&peak); p > 2 {
		t.Errorf("concurrency limit exceeded: peak %d", p)
	}
	if got := len(runner.Report().Results()); got != 8 {
		t.Errorf("report has %d results, want 8", got)
	}
}

func TestNestedSubtasksShareContext(t *testing.T) {
	c := NewContext()

	tasks := []Task{
		{
			Title: "outer",
			Run: func(ctx context.Context, c *Context, h *Handle) error {
				appendLog(c, "outer")
				return h.Subtasks(ctx, c, Options{Mode: Sequential},
					logTask("inner-1"),
					logTask("inner-2"),
				)
			},
		},
		logTask("after"),
	}

	runner := New(tasks, Options{Mode: Sequential})
	if err := runner.Run(context.Background(), c); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	logged, _ := Value[[]string](c, "log")
	want := []string{"outer", "inner-1", "inner-2", "after"}
	for i := range want {
		if i >= len(logged) || logged[i] != want[i] {
			t.Fatalf("log = %v, want %v", logged, want)
		}
	}

	// Nested results land in the same report.
	if got := len(runner.Report().Results()); got != 4 {
		t.Errorf("report has %d results, want 4", got)
	}
}

func TestNestedFailureAborts(t *testing.T) {
	c := NewContext()
	boom := errors.New("nested boom")

	tasks := []Task{
		{
			Title: "outer",
			Run: func(ctx context.Context, c *Context, h *Handle) error {
				return h.Subtasks(ctx, c, Options{},
					Task{Title: "inner", Run: func(ctx context.Context, c *Context, h *Handle) error {
						return boom
					}},
				)
			},
		},
		logTask("after"),
	}

	err := New(tasks, Options{Mode: Sequential}).Run(context.Background(), c)
	if !errors.Is(err, boom) {
		t.Fatalf("run error = %v, want nested boom", err)
	}
	if logged, _ := Value[[]string](c, "log"); len(logged) != 0 {
		t.Errorf("tasks after failed nested group executed: %v", logged)
	}
}

// countingPrompter tracks overlapping Ask calls to verify serialization.
type countingPrompter struct {
	active  int32
	overlap int32
	answers int32
}

func (p *countingPrompter) Ask(ctx context.Context, prompt Prompt) (any, error) {
	if atomic.AddInt32(&p.active, 1) > 1 {
		atomic.StoreInt32(&p.overlap, 1)
	}
	time.Sleep(2 * time.Millisecond)
	atomic.AddInt32(&p.active, -1)
	atomic.AddInt32(&p.answers, 1)

	switch prompt.(type) {
	case Confirm:
		return true, nil
	case MultiSelect:
		return []string{}, nil
	default:
		return "answer", nil
	}
}

func (p *countingPrompter) IsInteractive() bool { return true }

func TestConcurrentPromptsSerialized(t *testing.T) {
	c := NewContext()
	prompter := &countingPrompter{}

	var tasks []Task
	for i := 0; i < 4; i++ {
		tasks = append(tasks, Task{
			Title: "asker",
			Run: func(ctx context.Context, c *Context, h *Handle) error {
				_, err := h.Confirm(ctx, "proceed?", false)
				return err
			},
		})
	}

	runner := New(tasks, Options{Mode: Concurrent}).WithPrompter(prompter)
	if err := runner.Run(context.Background(), c); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if atomic.LoadInt32(&prompter.overlap) != 0 {
		t.Error("prompts from concurrent siblings interleaved")
	}
	if got := atomic.LoadInt32(&prompter.answers); got != 4 {
		t.Errorf("answered %d prompts, want 4", got)
	}
}

func TestPromptWithoutPrompter(t *testing.T) {
	c := NewContext()
	tasks := []Task{{
		Title: "asker",
		Run: func(ctx context.Context, c *Context, h *Handle) error {
			_, err := h.Confirm(ctx, "proceed?", false)
			return err
		},
	}}

	if err := New(tasks, Options{}).Run(context.Background(), c); err == nil {
		t.Fatal("expected error when prompting without a prompter")
	}
}

func TestTitleUpdateVisibleInReport(t *testing.T) {
	c := NewContext()
	var events []string
	var mu sync.Mutex

	obs := &recordingObserver{events: &events, mu: &mu}
	tasks := []Task{{
		Title: "selecting",
		Run: func(ctx context.Context, c *Context, h *Handle) error {
			h.SetTitle("Database selected: Notes")
			h.Output("id: %s", "abc123")
			return nil
		},
	}}

	runner := New(tasks, Options{}).WithObserver(obs)
	if err := runner.Run(context.Background(), c); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	results := runner.Report().Results()
	if results[0].Title != "Database selected: Notes" {
		t.Errorf("report title = %q", results[0].Title)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(events) == 0 {
		t.Error("observer saw no events")
	}
}

type recordingObserver struct {
	mu     *sync.Mutex
	events *[]string
}

func (o *recordingObserver) TaskStarted(title string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	*o.events = append(*o.events, "started:"+title)
}

func (o *recordingObserver) TaskTitle(old, new string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	*o.events = append(*o.events, "title:"+new)
}

func (o *recordingObserver) TaskOutput(title, line string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	*o.events = append(*o.events, "output:"+line)
}

func (o *recordingObserver) TaskFinished(res TaskResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	*o.events = append(*o.events, "finished:"+string(res.Status))
}
