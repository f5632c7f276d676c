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

package pipelines

import (
	"log/slog"

	"github.com/tombee/eplog/internal/notion"
	"github.com/tombee/eplog/internal/settings"
)

// Deps carries the collaborators pipeline builders close over. Commands
// construct one Deps per invocation; tests substitute fakes.
type Deps struct {
	// Repo persists settings and the database directory.
	Repo *settings.Repository

	// NewClient builds a remote client for a token. Swapped in tests.
	NewClient func(token string) (notion.API, error)

	// Logger receives pipeline debug logging.
	Logger *slog.Logger
}

// NewDeps creates Deps with the production client constructor.
func NewDeps(repo *settings.Repository, logger *slog.Logger) *Deps {
	if logger == nil {
		logger = slog.Default()
	}
	return &Deps{
		Repo: repo,
		NewClient: func(token string) (notion.API, error) {
			return notion.NewClient(token)
		},
		Logger: logger,
	}
}

// logger is nil-safe so Deps literals in tests need not set one.
func (d *Deps) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}
