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

// Package prompt implements the pipeline prompter on interactive terminals.
// It renders the tagged prompt variants with the survey library and ships a
// scripted mock for tests.
package prompt

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"

	"github.com/tombee/eplog/pkg/errors"
	"github.com/tombee/eplog/pkg/pipeline"
)

// SurveyPrompter implements pipeline.Prompter using the survey library.
type SurveyPrompter struct {
	interactive bool
}

// NewSurveyPrompter creates a survey-backed prompter. When interactive is
// false every Ask fails, which keeps pipelines honest in CI environments.
func NewSurveyPrompter(interactive bool) *SurveyPrompter {
	return &SurveyPrompter{interactive: interactive}
}

// Ask renders the prompt and blocks until the user answers. A terminal
// interrupt (ctrl-c) is translated into a user cancellation.
func (sp *SurveyPrompter) Ask(ctx context.Context, p pipeline.Prompt) (any, error) {
	if !sp.interactive {
		return nil, fmt.Errorf("cannot prompt in non-interactive mode")
	}

	var (
		answer any
		err    error
	)

	switch q := p.(type) {
	case pipeline.Confirm:
		var result bool
		err = survey.AskOne(&survey.Confirm{Message: q.Message, Default: q.Default}, &result)
		answer = result

	case pipeline.Input:
		var result string
		err = survey.AskOne(&survey.Input{Message: q.Message, Default: q.Default}, &result)
		answer = result

	case pipeline.Secret:
		var result string
		err = survey.AskOne(&survey.Password{Message: q.Message}, &result)
		answer = result

	case pipeline.Select:
		var result string
		err = survey.AskOne(&survey.Select{Message: q.Message, Options: q.Options, Default: defaultOrNil(q.Default)}, &result)
		answer = result

	case pipeline.MultiSelect:
		var result []string
		err = survey.AskOne(&survey.MultiSelect{Message: q.Message, Options: q.Options, Default: q.Preselected}, &result)
		answer = result

	default:
		return nil, fmt.Errorf("unsupported prompt type %T", p)
	}

	if err != nil {
		if err == terminal.InterruptErr {
			return nil, &errors.UserCanceledError{Prompt: promptMessage(p)}
		}
		return nil, err
	}
	return answer, nil
}

// IsInteractive reports whether prompts can be displayed.
func (sp *SurveyPrompter) IsInteractive() bool {
	return sp.interactive
}

// defaultOrNil keeps survey from preselecting the empty string.
func defaultOrNil(def string) any {
	if def == "" {
		return nil
	}
	return def
}

func promptMessage(p pipeline.Prompt) string {
	switch q := p.(type) {
	case pipeline.Confirm:
		return q.Message
	case pipeline.Input:
		return q.Message
	case pipeline.Secret:
		return q.Message
	case pipeline.Select:
		return q.Message
	case pipeline.MultiSelect:
		return q.Message
	}
	return ""
}
