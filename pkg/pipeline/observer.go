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

// Observer receives task lifecycle events for rendering. Implementations
// must tolerate concurrent calls when the group runs concurrently.
type Observer interface {
	// TaskStarted fires when a task body begins executing.
	TaskStarted(title string)

	// TaskTitle fires when a task changes its visible title.
	TaskTitle(old, new string)

	// TaskOutput fires for each line of incremental task output.
	TaskOutput(title, line string)

	// TaskFinished fires once per admitted or skipped task with its result.
	TaskFinished(res TaskResult)
}

type nopObserver struct{}

func (nopObserver) TaskStarted(string)        {}
func (nopObserver) TaskTitle(string, string)  {}
func (nopObserver) TaskOutput(string, string) {}
func (nopObserver) TaskFinished(TaskResult)   {}
