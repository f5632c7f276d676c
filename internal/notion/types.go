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

import "strings"

// RichText is one fragment of Notion rich text.
type RichText struct {
	Type      string       `json:"type,omitempty"`
	Text      *TextContent `json:"text,omitempty"`
	PlainText string       `json:"plain_text,omitempty"`
}

// TextContent is the literal content of a text fragment.
type TextContent struct {
	Content string `json:"content"`
	Link    *Link  `json:"link,omitempty"`
}

// Link is an inline URL attached to a text fragment.
type Link struct {
	URL string `json:"url"`
}

// NewRichText wraps plain text in the single-fragment form the API accepts
// on writes.
func NewRichText(content string) []RichText {
	return []RichText{{Text: &TextContent{Content: content}}}
}

// FlattenTitle joins the plain text of all title fragments with spaces.
func FlattenTitle(fragments []RichText) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		if f.PlainText != "" {
			parts = append(parts, f.PlainText)
		}
	}
	return strings.Join(parts, " ")
}

// SelectOption is one choice of a select or multi_select property.
type SelectOption struct {
	ID    string `json:"id,omitempty"`
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// PropertySchema describes one property of a database schema.
type PropertySchema struct {
	ID          string             `json:"id,omitempty"`
	Type        string             `json:"type"`
	MultiSelect *MultiSelectSchema `json:"multi_select,omitempty"`
	Relation    *RelationSchema    `json:"relation,omitempty"`
}

// MultiSelectSchema lists the configured options of a multi_select property.
type MultiSelectSchema struct {
	Options []SelectOption `json:"options,omitempty"`
}

// RelationSchema names the database a relation property points at.
type RelationSchema struct {
	DatabaseID string `json:"database_id"`
}

// Database is a database descriptor. TitleText is not part of the wire
// format: it is the flattened title computed locally so databases can be
// referenced by a plain string, and it persists in the cached directory.
type Database struct {
	ID         string                    `json:"id"`
	Title      []RichText                `json:"title,omitempty"`
	TitleText  string                    `json:"title_text"`
	URL        string                    `json:"url,omitempty"`
	Properties map[string]PropertySchema `json:"properties,omitempty"`
}

// TitleProperty returns the name and schema of the database's title
// property. Every database has exactly one.
func (d *Database) TitleProperty() (string, PropertySchema, bool) {
	for name, prop := range d.Properties {
		if prop.Type == "title" {
			return name, prop, true
		}
	}
	return "", PropertySchema{}, false
}

// RelationRef points at a related page.
type RelationRef struct {
	ID string `json:"id"`
}

// PropertyValue is a property value on a page. Exactly one of the typed
// fields is set, named by Type.
type PropertyValue struct {
	ID             string         `json:"id,omitempty"`
	Type           string         `json:"type,omitempty"`
	Title          []RichText     `json:"title,omitempty"`
	RichText       []RichText     `json:"rich_text,omitempty"`
	MultiSelect    []SelectOption `json:"multi_select,omitempty"`
	Relation       []RelationRef  `json:"relation,omitempty"`
	CreatedTime    string         `json:"created_time,omitempty"`
	LastEditedTime string         `json:"last_edited_time,omitempty"`
}

// Text renders a property value as display text. Unsupported types
// render as a marker naming the type rather than failing the whole row.
func (p *PropertyValue) Text() string {
	switch p.Type {
	case "title":
		return flattenContent(p.Title)
	case "rich_text", "text":
		return flattenContent(p.RichText)
	case "created_time":
		return p.CreatedTime
	case "last_edited_time":
		return p.LastEditedTime
	case "relation":
		ids := make([]string, len(p.Relation))
		for i, ref := range p.Relation {
			ids[i] = ref.ID
		}
		return strings.Join(ids, ", ")
	case "multi_select":
		names := make([]string, len(p.MultiSelect))
		for i, opt := range p.MultiSelect {
			names[i] = opt.Name
		}
		return strings.Join(names, ", ")
	default:
		return "Unsupported prop type: " + p.Type
	}
}

// flattenContent joins fragment text contents with spaces, falling back to
// plain_text when the content form is absent.
func flattenContent(fragments []RichText) string {
	parts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		switch {
		case f.Text != nil && f.Text.Content != "":
			parts = append(parts, f.Text.Content)
		case f.PlainText != "":
			parts = append(parts, f.PlainText)
		}
	}
	return strings.Join(parts, " ")
}

// Page is a database record.
type Page struct {
	ID          string                   `json:"id"`
	URL         string                   `json:"url,omitempty"`
	CreatedTime string                   `json:"created_time,omitempty"`
	Properties  map[string]PropertyValue `json:"properties,omitempty"`
}

// TitleText returns the flattened title of the page, or "" when the page has
// no title property.
func (p *Page) TitleText() string {
	for _, prop := range p.Properties {
		if prop.Type == "title" {
			return flattenContent(prop.Title)
		}
	}
	return ""
}
