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
)

// Prompt is the tagged request variant handed to a Prompter. Exactly one of
// the concrete types below is passed per Ask call.
type Prompt interface {
	promptMessage() string
}

// Confirm requests a yes/no answer.
type Confirm struct {
	Message string
	Default bool
}

// Input requests a line of text.
type Input struct {
	Message string
	Default string
}

// Secret requests a line of text without echo, for credentials.
type Secret struct {
	Message string
}

// Select requests a single choice from Options.
type Select struct {
	Message string
	Options []string
	Default string
}

// MultiSelect requests zero or more choices from Options, with an optional
// preselected subset.
type MultiSelect struct {
	Message     string
	Options     []string
	Preselected []string
}

func (p Confirm) promptMessage() string     { return p.Message }
func (p Input) promptMessage() string       { return p.Message }
func (p Secret) promptMessage() string      { return p.Message }
func (p Select) promptMessage() string      { return p.Message }
func (p MultiSelect) promptMessage() string { return p.Message }

// Prompter renders prompts and collects answers. Implementations live
// outside the runner: a survey-backed prompter for production and a scripted
// mock for tests.
//
// Ask returns bool for Confirm, string for Input/Secret/Select and []string
// for MultiSelect.
type Prompter interface {
	Ask(ctx context.Context, p Prompt) (any, error)

	// IsInteractive reports whether prompts can be displayed at all.
	IsInteractive() bool
}

// errNoPrompter is returned when a task prompts on a runner that has no
// prompter configured.
var errNoPrompter = fmt.Errorf("pipeline: no prompter configured")
