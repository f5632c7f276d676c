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
	"sync"
)

// Context is the shared mutable state threaded through one pipeline run.
// It is exclusively owned by that run: every task, including tasks of nested
// sub-pipelines, sees the same Context by reference.
//
// Access is guarded so that concurrent sibling groups can safely read and
// write disjoint keys. Two concurrent siblings mutating the same key is the
// pipeline author's responsibility, not the runner's.
type Context struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewContext creates an empty Context.
func NewContext() *Context {
	return &Context{values: make(map[string]any)}
}

// Set stores a value under the given key.
func (c *Context) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = value
}

// Get returns the value stored under key, or nil.
func (c *Context) Get(key string) any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.values[key]
}

// Lookup returns the value stored under key and whether it was present.
func (c *Context) Lookup(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return v, ok
}

// Has reports whether a non-nil value is stored under key.
func (c *Context) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.values[key]
	return ok && v != nil
}

// Delete removes the value stored under key.
func (c *Context) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.values, key)
}

// Bool returns the value under key as a bool, or false if absent or not a bool.
func (c *Context) Bool(key string) bool {
	b, _ := c.Get(key).(bool)
	return b
}

// String returns the value under key as a string, or "" if absent or not a string.
func (c *Context) String(key string) string {
	s, _ := c.Get(key).(string)
	return s
}

// Snapshot returns a shallow copy of the current key space. Intended for
// observability and tests, not for mutation.
func (c *Context) Snapshot() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]any, len(c.values))
	for k, v := range c.values {
		out[k] = v
	}
	return out
}

// Value returns the typed value stored under key. The zero value of T and
// false are returned when the key is absent or holds a different type.
func Value[T any](c *Context, key string) (T, bool) {
	v, ok := c.Lookup(key)
	if !ok {
		var zero T
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}
