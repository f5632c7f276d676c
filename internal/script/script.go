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

// Package script evaluates user expressions against the journal. Scripts
// are expr programs (expr-lang.org) with access to the active profile, the
// database directory, variables from the runcontrol file and record
// operations.
package script

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/expr-lang/expr"
	"gopkg.in/yaml.v3"

	"github.com/tombee/eplog/internal/notion"
	"github.com/tombee/eplog/internal/settings"
	pkgerrors "github.com/tombee/eplog/pkg/errors"
)

// RCFileName is the runcontrol file looked up in the working directory and
// the config directory. The working directory wins.
const RCFileName = ".eplogrc"

// RC is the parsed runcontrol file: named scripts plus variables exposed to
// every script as `vars`.
type RC struct {
	Vars    map[string]any    `yaml:"vars"`
	Scripts map[string]string `yaml:"scripts"`
}

// LoadRC reads and merges the runcontrol files from the given directories.
// Earlier directories win for colliding names. Missing files are fine; a
// file that fails to parse is a configuration error.
func LoadRC(dirs ...string) (*RC, error) {
	merged := &RC{
		Vars:    map[string]any{},
		Scripts: map[string]string{},
	}

	// Walk in reverse so earlier directories overwrite later ones.
	for i := len(dirs) - 1; i >= 0; i-- {
		path := filepath.Join(dirs[i], RCFileName)
		raw, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return nil, err
		}

		var rc RC
		if err := yaml.Unmarshal(raw, &rc); err != nil {
			return nil, &pkgerrors.ConfigError{
				Key:    path,
				Reason: "invalid runcontrol file: " + err.Error(),
			}
		}
		for k, v := range rc.Vars {
			merged.Vars[k] = v
		}
		for k, v := range rc.Scripts {
			merged.Scripts[k] = v
		}
	}

	return merged, nil
}

// Resolve returns the script source for name: a named script from the
// runcontrol file, or the contents of name as a file path.
func (rc *RC) Resolve(name string) (string, error) {
	if src, ok := rc.Scripts[name]; ok {
		return src, nil
	}

	raw, err := os.ReadFile(name)
	if err != nil {
		return "", &pkgerrors.ValidationError{
			Field:      "script",
			Message:    fmt.Sprintf("%q is neither a named script nor a readable file", name),
			Suggestion: "define it under scripts: in " + RCFileName + " or pass a file path",
		}
	}
	return string(raw), nil
}

// FrontMatter is the optional YAML block at the top of a script, delimited
// by "---" lines. Its profile mapping overlays the active profile for the
// duration of the run.
type FrontMatter struct {
	Profile map[string]any `yaml:"profile"`
}

// SplitFrontMatter separates a script's front matter from its body. Scripts
// without a front-matter block come back unchanged.
func SplitFrontMatter(source string) (*FrontMatter, string, error) {
	rest, ok := strings.CutPrefix(source, "---\n")
	if !ok {
		return &FrontMatter{}, source, nil
	}
	block, body, ok := strings.Cut(rest, "\n---\n")
	if !ok {
		return nil, "", &pkgerrors.ValidationError{
			Field:   "script",
			Message: "unterminated front-matter block",
		}
	}

	var fm FrontMatter
	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return nil, "", &pkgerrors.ValidationError{
			Field:   "script",
			Message: "invalid front matter: " + err.Error(),
		}
	}
	return &fm, body, nil
}

// Env is everything a script can reach.
type Env struct {
	// Vars are the runcontrol file variables.
	Vars map[string]any

	// Args are the positional arguments after the script name.
	Args []string

	// Profile is the active profile.
	Profile settings.Profile

	// Directory is the cached database directory.
	Directory []notion.Database

	// Target is the profile's default database, nil when unset.
	Target *notion.Database

	// Client performs record operations.
	Client notion.API
}

// Run compiles and evaluates one script source against env.
func Run(ctx context.Context, source string, env Env) (any, error) {
	program, err := expr.Compile(source, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, &pkgerrors.ValidationError{
			Field:   "script",
			Message: "script does not compile: " + err.Error(),
		}
	}

	out, err := expr.Run(program, env.runtime(ctx))
	if err != nil {
		return nil, fmt.Errorf("script failed: %w", err)
	}
	return out, nil
}

// runtime builds the value map the script evaluates against.
func (env Env) runtime(ctx context.Context) map[string]any {
	databases := make([]map[string]any, len(env.Directory))
	for i, db := range env.Directory {
		databases[i] = map[string]any{
			"id":    db.ID,
			"title": db.TitleText,
		}
	}

	profile := map[string]any{}
	for k, v := range env.Profile {
		profile[k] = settings.DisplayValue(k, v)
	}

	return map[string]any{
		"vars":      env.Vars,
		"args":      env.Args,
		"profile":   profile,
		"databases": databases,
		"add":       func(title string) (map[string]any, error) { return env.add(ctx, title) },
		"query":     func(terms string) ([]map[string]any, error) { return env.query(ctx, terms) },
	}
}

func (env Env) add(ctx context.Context, title string) (map[string]any, error) {
	if env.Target == nil {
		return nil, &pkgerrors.ValidationError{
			Field:      "database",
			Message:    "no default database configured",
			Suggestion: "run 'eplog databases select' first",
		}
	}

	req, err := notion.BuildPage(env.Target, title, nil)
	if err != nil {
		return nil, err
	}
	page, err := env.Client.CreatePage(ctx, req)
	if err != nil {
		return nil, err
	}
	return pageValue(*page), nil
}

func (env Env) query(ctx context.Context, terms string) ([]map[string]any, error) {
	if env.Target == nil {
		return nil, &pkgerrors.ValidationError{
			Field:      "database",
			Message:    "no default database configured",
			Suggestion: "run 'eplog databases select' first",
		}
	}

	titleProp, _, _ := env.Target.TitleProperty()
	result, err := env.Client.QueryDatabase(ctx, env.Target.ID, notion.Query{
		TitleContains: terms,
		TitleProperty: titleProp,
	})
	if err != nil {
		return nil, err
	}

	pages := make([]map[string]any, len(result.Results))
	for i, page := range result.Results {
		pages[i] = pageValue(page)
	}
	return pages, nil
}

func pageValue(page notion.Page) map[string]any {
	return map[string]any{
		"id":      page.ID,
		"title":   page.TitleText(),
		"url":     page.URL,
		"created": page.CreatedTime,
	}
}
