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

// Package pipeline implements a dependency-aware task runner for interactive
// command-line flows. A pipeline is an ordered list of sibling tasks executed
// against one shared Context, either sequentially or concurrently. Tasks can
// declare enable and skip predicates evaluated against the live Context,
// suspend on interactive prompts, and spawn nested sub-pipelines bound to the
// same Context through their task handle.
//
// Tasks form a tree of sequential or concurrent sibling groups, not an
// arbitrary dependency graph. Execution history is not persisted; each Run
// produces an in-memory Report.
package pipeline
