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
	"fmt"
	"sync"
)

// Handle is passed to each executing task body. It exposes title updates,
// incremental progress output, prompt suspension points and nested
// sub-pipeline construction, all bound to the running pipeline.
type Handle struct {
	runner *Runner

	mu    sync.Mutex
	title string
}

// Title returns the task's current visible title.
func (h *Handle) Title() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.title
}

// SetTitle changes the task's visible title during execution.
func (h *Handle) SetTitle(title string) {
	h.mu.Lock()
	old := h.title
	h.title = title
	h.mu.Unlock()
	h.runner.observer.TaskTitle(old, title)
}

// Output emits a line of incremental progress output for the task.
func (h *Handle) Output(format string, args ...any) {
	h.runner.observer.TaskOutput(h.Title(), fmt.Sprintf(format, args...))
}

// Subtasks runs a nested group of tasks inline, sharing the pipeline's
// Context, prompter and report. It returns when the whole nested group has
// finished. This is the only composition mechanism between groups.
func (h *Handle) Subtasks(ctx context.Context, c *Context, opts Options, tasks ...Task) error {
	return h.runner.child(tasks, opts).Run(ctx, c)
}

// Prompt suspends the task on an interactive prompt and resumes with the
// typed answer. Prompt presentation is serialized across the whole run:
// concurrent sibling bodies may overlap, their prompts never do.
func (h *Handle) Prompt(ctx context.Context, p Prompt) (any, error) {
	if h.runner.prompter == nil {
		return nil, errNoPrompter
	}

	h.runner.promptMu.Lock()
	defer h.runner.promptMu.Unlock()

	return h.runner.prompter.Ask(ctx, p)
}

// Confirm presents a yes/no prompt and returns the answer.
func (h *Handle) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	answer, err := h.Prompt(ctx, Confirm{Message: message, Default: def})
	if err != nil {
		return false, err
	}
	b, ok := answer.(bool)
	if !ok {
		return false, fmt.Errorf("pipeline: confirm prompt returned %T", answer)
	}
	return b, nil
}

// Input presents a free-text prompt and returns the entered line.
func (h *Handle) Input(ctx context.Context, message, def string) (string, error) {
	answer, err := h.Prompt(ctx, Input{Message: message, Default: def})
	if err != nil {
		return "", err
	}
	return answerString(answer)
}

// Secret presents a no-echo prompt for credentials.
func (h *Handle) Secret(ctx context.Context, message string) (string, error) {
	answer, err := h.Prompt(ctx, Secret{Message: message})
	if err != nil {
		return "", err
	}
	return answerString(answer)
}

// Select presents a single-choice prompt over options.
func (h *Handle) Select(ctx context.Context, message string, options []string) (string, error) {
	answer, err := h.Prompt(ctx, Select{Message: message, Options: options})
	if err != nil {
		return "", err
	}
	return answerString(answer)
}

// MultiSelect presents a multiple-choice prompt over options with an
// optional preselected subset.
func (h *Handle) MultiSelect(ctx context.Context, message string, options, preselected []string) ([]string, error) {
	answer, err := h.Prompt(ctx, MultiSelect{Message: message, Options: options, Preselected: preselected})
	if err != nil {
		return nil, err
	}
	selected, ok := answer.([]string)
	if !ok {
		return nil, fmt.Errorf("pipeline: multi-select prompt returned %T", answer)
	}
	return selected, nil
}

func answerString(answer any) (string, error) {
	s, ok := answer.(string)
	if !ok {
		return "", fmt.Errorf("pipeline: prompt returned %T, expected string", answer)
	}
	return s, nil
}
