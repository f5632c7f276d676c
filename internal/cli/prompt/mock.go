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

package prompt

import (
	"context"
	"fmt"
	"sync"

	"github.com/tombee/eplog/pkg/pipeline"
)

// MockPrompter implements pipeline.Prompter with scripted responses.
// Tests use it to simulate user input without a terminal.
type MockPrompter struct {
	mu        sync.Mutex
	responses []any
	index     int
	callLog   []string
}

// NewMockPrompter creates a mock prompter answering prompts in order from
// the given responses. Responses must be bool for Confirm, string for
// Input/Secret/Select and []string for MultiSelect.
func NewMockPrompter(responses ...any) *MockPrompter {
	return &MockPrompter{responses: responses}
}

// Ask returns the next scripted response after checking its type against
// the prompt variant.
func (mp *MockPrompter) Ask(ctx context.Context, p pipeline.Prompt) (any, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.callLog = append(mp.callLog, fmt.Sprintf("%T(%s)", p, promptMessage(p)))

	if mp.index >= len(mp.responses) {
		return nil, fmt.Errorf("mock prompter exhausted after %d responses", len(mp.responses))
	}
	resp := mp.responses[mp.index]
	mp.index++

	if err, ok := resp.(error); ok {
		return nil, err
	}

	switch p.(type) {
	case pipeline.Confirm:
		if b, ok := resp.(bool); ok {
			return b, nil
		}
	case pipeline.Input, pipeline.Secret, pipeline.Select:
		if s, ok := resp.(string); ok {
			return s, nil
		}
	case pipeline.MultiSelect:
		if list, ok := resp.([]string); ok {
			return list, nil
		}
	}
	return nil, fmt.Errorf("mock response %T does not match prompt %T", resp, p)
}

// IsInteractive always reports true for the mock.
func (mp *MockPrompter) IsInteractive() bool { return true }

// CallLog returns the prompts asked so far, in order.
func (mp *MockPrompter) CallLog() []string {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	out := make([]string, len(mp.callLog))
	copy(out, mp.callLog)
	return out
}

// Exhausted reports whether every scripted response was consumed.
func (mp *MockPrompter) Exhausted() bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return mp.index == len(mp.responses)
}
