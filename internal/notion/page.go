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

package notion

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tombee/eplog/pkg/errors"
)

// Parent locates the database a new page is created in.
type Parent struct {
	DatabaseID string `json:"database_id"`
}

// PageRequest is the payload for creating a page.
type PageRequest struct {
	Parent     Parent                   `json:"parent"`
	Properties map[string]PropertyValue `json:"properties"`
}

// FieldValue carries one user-supplied schema field value. Text is used for
// rich_text properties, List for multi_select option names and relation
// page IDs.
type FieldValue struct {
	Text string
	List []string
}

// NormalizePropertyName reduces a property name to a flag-safe identifier:
// diacritics are stripped, everything outside ASCII letters and digits is
// removed, and the result is lowercased. "Assignée" and "assignee" collapse
// to the same name.
func NormalizePropertyName(name string) string {
	stripped, _, err := transform.String(
		transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC),
		name)
	if err != nil {
		stripped = name
	}

	out := make([]rune, 0, len(stripped))
	for _, r := range stripped {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, unicode.ToLower(r))
		}
	}
	return string(out)
}

// BuildPage assembles a create-page payload for database from a title and
// user-supplied field values keyed by normalized property name.
//
// Fields that do not match any schema property are ignored, as are
// properties of types with no payload mapping. The title property always
// comes from title; a field targeting it is ignored.
func BuildPage(database *Database, title string, fields map[string]FieldValue) (*PageRequest, error) {
	titleName, _, ok := database.TitleProperty()
	if !ok {
		return nil, fmt.Errorf("database %s has no title property", database.ID)
	}

	// Normalized name -> schema name, so user flags match schema fields.
	byNormalized := make(map[string]string, len(database.Properties))
	for name := range database.Properties {
		byNormalized[NormalizePropertyName(name)] = name
	}

	properties := map[string]PropertyValue{
		titleName: {Title: NewRichText(title)},
	}

	for name, value := range fields {
		schemaName, ok := byNormalized[NormalizePropertyName(name)]
		if !ok || schemaName == titleName {
			continue
		}

		switch database.Properties[schemaName].Type {
		case "rich_text":
			text := value.Text
			if text == "" && len(value.List) > 0 {
				text = strings.Join(value.List, " ")
			}
			properties[schemaName] = PropertyValue{RichText: NewRichText(text)}
		case "multi_select":
			opts := make([]SelectOption, len(value.List))
			for i, opt := range value.List {
				opts[i] = SelectOption{Name: opt}
			}
			properties[schemaName] = PropertyValue{MultiSelect: opts}
		case "relation":
			refs := make([]RelationRef, len(value.List))
			for i, id := range value.List {
				refs[i] = RelationRef{ID: id}
			}
			properties[schemaName] = PropertyValue{Relation: refs}
		}
	}

	return &PageRequest{
		Parent:     Parent{DatabaseID: database.ID},
		Properties: properties,
	}, nil
}

// RelationTarget resolves which database a relation field of database points
// at, looking the target up in the cached directory. A relation whose target
// is not in directory yields RelationNotLoadedError.
func RelationTarget(database *Database, field string, directory []Database) (*Database, error) {
	normalized := NormalizePropertyName(field)

	for name, prop := range database.Properties {
		if prop.Type != "relation" || NormalizePropertyName(name) != normalized {
			continue
		}
		if prop.Relation == nil {
			break
		}
		for i := range directory {
			if directory[i].ID == prop.Relation.DatabaseID {
				return &directory[i], nil
			}
		}
		return nil, &errors.RelationNotLoadedError{
			Field:      name,
			DatabaseID: prop.Relation.DatabaseID,
		}
	}

	return nil, fmt.Errorf("no relation property matches %q", field)
}
