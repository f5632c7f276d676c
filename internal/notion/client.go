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

// Package notion is a minimal client for the Notion REST API, covering the
// database, page, and block endpoints the CLI uses. Requests are sent at
// most once; failures surface to the caller instead of being retried.
package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/time/rate"

	"github.com/tombee/eplog/pkg/errors"
	"github.com/tombee/eplog/pkg/httpclient"
)

const (
	defaultBaseURL = "https://api.notion.com"

	// apiVersion pins the Notion-Version header. Payload shapes in this
	// package match this version.
	apiVersion = "2022-06-28"

	// listPageSize is the page size used when walking the full database
	// listing.
	listPageSize = 100
)

// API is the surface of the remote service the pipelines depend on. The
// concrete Client implements it; tests substitute fakes.
type API interface {
	// ListDatabases returns every database shared with the integration,
	// walking pagination to the end. Titles come back flattened.
	ListDatabases(ctx context.Context) ([]Database, error)

	// QueryDatabase returns one page of records matching the query.
	QueryDatabase(ctx context.Context, databaseID string, q Query) (*QueryResult, error)

	// CreatePage creates a record and returns it as stored remotely.
	CreatePage(ctx context.Context, req *PageRequest) (*Page, error)

	// RetrievePage fetches a single record by id.
	RetrievePage(ctx context.Context, pageID string) (*Page, error)

	// ListBlockChildren returns one page of a block's (or page's) children.
	ListBlockChildren(ctx context.Context, blockID, cursor string, pageSize int) (*BlockChildren, error)

	// AppendBlockChildren appends content blocks to a page or block.
	AppendBlockChildren(ctx context.Context, blockID string, blocks []Block) error

	// DeleteBlock archives a block or page.
	DeleteBlock(ctx context.Context, blockID string) error
}

// Query selects and pages records of one database.
type Query struct {
	// TitleContains filters records whose title contains the term.
	// Empty means no filter.
	TitleContains string

	// TitleProperty is the schema name of the title property the filter
	// targets. Defaults to "title".
	TitleProperty string

	// PageSize caps the number of records returned. Zero lets the
	// service pick its default.
	PageSize int

	// StartCursor resumes a previous query.
	StartCursor string
}

// QueryResult is one page of query matches.
type QueryResult struct {
	Results    []Page `json:"results"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor"`
}

// Block is a content block. The CLI treats block internals as opaque JSON.
type Block map[string]any

// BlockChildren is one page of a block's children.
type BlockChildren struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor string  `json:"next_cursor"`
}

// Client talks to the Notion REST API with bearer auth and client-side
// rate limiting.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	limiter *rate.Limiter
}

// Option adjusts a Client.
type Option func(*Client)

// WithBaseURL points the client at an alternate endpoint. Used by tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a client authenticated with token. The limiter keeps
// request throughput inside the service's documented 3 req/s average.
func NewClient(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, &errors.MissingTokenError{}
	}

	c := &Client{
		baseURL: defaultBaseURL,
		token:   token,
		limiter: rate.NewLimiter(rate.Limit(3), 3),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		cfg := httpclient.DefaultConfig()
		cfg.UserAgent = "eplog/1.0"
		h, err := httpclient.New(cfg)
		if err != nil {
			return nil, err
		}
		c.http = h
	}

	return c, nil
}

// ListDatabases implements API.
func (c *Client) ListDatabases(ctx context.Context) ([]Database, error) {
	var all []Database
	cursor := ""

	for {
		params := url.Values{"page_size": {strconv.Itoa(listPageSize)}}
		if cursor != "" {
			params.Set("start_cursor", cursor)
		}

		var page struct {
			Results    []Database `json:"results"`
			HasMore    bool       `json:"has_more"`
			NextCursor string     `json:"next_cursor"`
		}
		if err := c.do(ctx, http.MethodGet, "/v1/databases?"+params.Encode(), nil, &page); err != nil {
			return nil, err
		}

		for _, db := range page.Results {
			db.TitleText = FlattenTitle(db.Title)
			all = append(all, db)
		}

		if !page.HasMore || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}

	return all, nil
}

// QueryDatabase implements API.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, q Query) (*QueryResult, error) {
	body := map[string]any{}
	if q.TitleContains != "" {
		prop := q.TitleProperty
		if prop == "" {
			prop = "title"
		}
		body["filter"] = map[string]any{
			"property": prop,
			"title":    map[string]any{"contains": q.TitleContains},
		}
	}
	if q.PageSize > 0 {
		body["page_size"] = q.PageSize
	}
	if q.StartCursor != "" {
		body["start_cursor"] = q.StartCursor
	}

	var result QueryResult
	path := fmt.Sprintf("/v1/databases/%s/query", databaseID)
	if err := c.do(ctx, http.MethodPost, path, body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreatePage implements API.
func (c *Client) CreatePage(ctx context.Context, req *PageRequest) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodPost, "/v1/pages", req, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// RetrievePage implements API.
func (c *Client) RetrievePage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := c.do(ctx, http.MethodGet, "/v1/pages/"+pageID, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListBlockChildren implements API.
func (c *Client) ListBlockChildren(ctx context.Context, blockID, cursor string, pageSize int) (*BlockChildren, error) {
	params := url.Values{}
	if cursor != "" {
		params.Set("start_cursor", cursor)
	}
	if pageSize > 0 {
		params.Set("page_size", strconv.Itoa(pageSize))
	}

	path := "/v1/blocks/" + blockID + "/children"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var children BlockChildren
	if err := c.do(ctx, http.MethodGet, path, nil, &children); err != nil {
		return nil, err
	}
	return &children, nil
}

// AppendBlockChildren implements API.
func (c *Client) AppendBlockChildren(ctx context.Context, blockID string, blocks []Block) error {
	body := map[string]any{"children": blocks}
	return c.do(ctx, http.MethodPatch, "/v1/blocks/"+blockID+"/children", body, nil)
}

// DeleteBlock implements API.
func (c *Client) DeleteBlock(ctx context.Context, blockID string) error {
	return c.do(ctx, http.MethodDelete, "/v1/blocks/"+blockID, nil, nil)
}

// do sends one request and decodes the response into out (when non-nil).
// Service rejections map onto the error taxonomy.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", apiVersion)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.apiError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}
	return nil
}

// apiError converts an error response into a taxonomy error.
func (c *Client) apiError(resp *http.Response) error {
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	json.Unmarshal(data, &payload)

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &errors.InvalidCredentialError{
			MaskedToken: errors.MaskToken(c.token),
			Cause:       fmt.Errorf("%s: %s", payload.Code, payload.Message),
		}
	case payload.Code == "validation_error":
		return &errors.RemoteValidationError{
			Code:       payload.Code,
			Message:    payload.Message,
			StatusCode: resp.StatusCode,
		}
	default:
		if payload.Message != "" {
			return fmt.Errorf("service error %d (%s): %s", resp.StatusCode, payload.Code, payload.Message)
		}
		return fmt.Errorf("service error %d", resp.StatusCode)
	}
}
