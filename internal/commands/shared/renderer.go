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
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/tombee/eplog/pkg/pipeline"
)

// TaskRenderer renders pipeline task lifecycle events as an indented task
// list: a start marker per task, persistent output lines, and a status
// symbol with elapsed time on completion. It implements pipeline.Observer
// and tolerates concurrent events from concurrent groups.
type TaskRenderer struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool
}

// NewTaskRenderer creates a renderer writing to stdout.
func NewTaskRenderer() *TaskRenderer {
	return &TaskRenderer{out: os.Stdout}
}

// WithOutput redirects rendering, used by tests.
func (r *TaskRenderer) WithOutput(w io.Writer) *TaskRenderer {
	r.out = w
	return r
}

// WithVerbose enables rendering of skipped and disabled tasks.
func (r *TaskRenderer) WithVerbose(v bool) *TaskRenderer {
	r.verbose = v
	return r
}

// TaskStarted implements pipeline.Observer.
func (r *TaskRenderer) TaskStarted(title string) {
	if title == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s %s\n", StatusInfo.Render(SymbolInfo), title)
}

// TaskTitle implements pipeline.Observer.
func (r *TaskRenderer) TaskTitle(old, new string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s %s\n", StatusInfo.Render(SymbolInfo), new)
}

// TaskOutput implements pipeline.Observer. Output lines persist under the
// task they belong to.
func (r *TaskRenderer) TaskOutput(title, line string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range strings.Split(line, "\n") {
		fmt.Fprintf(r.out, "  %s\n", l)
	}
}

// TaskFinished implements pipeline.Observer.
func (r *TaskRenderer) TaskFinished(res pipeline.TaskResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch res.Status {
	case pipeline.StatusSuccess:
		if res.Title == "" {
			return
		}
		fmt.Fprintf(r.out, "%s %s %s\n",
			StatusOK.Render(SymbolOK), res.Title,
			Muted.Render("("+formatElapsed(res.Duration)+")"))
	case pipeline.StatusFailed:
		title := res.Title
		if title == "" {
			title = "task"
		}
		fmt.Fprintf(r.out, "%s %s: %v\n",
			StatusError.Render(SymbolError), title, res.Err)
	case pipeline.StatusSkipped:
		if !r.verbose {
			return
		}
		fmt.Fprintf(r.out, "%s %s %s\n",
			StatusWarn.Render(SymbolSkip), res.Title,
			Muted.Render("[skipped: "+res.SkipReason+"]"))
	case pipeline.StatusDisabled:
		if !r.verbose {
			return
		}
		fmt.Fprintf(r.out, "%s %s %s\n",
			Muted.Render(SymbolSkip), res.Title, Muted.Render("[disabled]"))
	}
}
