/*
Copyright 2026 Frontloop, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package tracker is a minimal client for the Shortcut (formerly Clubhouse)
// REST API, covering the calls story synchronization needs: fetch a story,
// fetch workflows, and update a story's description and workflow state.
//
// The client performs no retries; transport and non-2xx failures surface to
// the caller unchanged, with 404s distinguishable via IsNotFound.
package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.app.shortcut.com/api/v3"

// StatusError is a non-2xx response from the tracker API.
type StatusError struct {
	StatusCode int
	Method     string
	Path       string
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tracker: %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

// IsNotFound reports whether err is a tracker 404. Story lookups treat this
// as "drop the story and continue"; everything else is fatal to the run.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// HTTPClient implements Client against the Shortcut v3 API.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithBaseURL overrides the API base URL, mainly for tests against a local
// httptest server.
func WithBaseURL(u string) Option {
	return func(c *HTTPClient) {
		c.baseURL = u
	}
}

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) {
		c.http = h
	}
}

// NewClient returns a Shortcut API client authenticating with token.
func NewClient(token string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: defaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetStory fetches a story by numeric ID.
func (c *HTTPClient) GetStory(ctx context.Context, id int) (*Story, error) {
	story := new(Story)
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/stories/%d", id), nil, story); err != nil {
		return nil, err
	}
	return story, nil
}

// GetWorkflow fetches a single workflow by ID.
func (c *HTTPClient) GetWorkflow(ctx context.Context, id int) (*Workflow, error) {
	wf := new(Workflow)
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/workflows/%d", id), nil, wf); err != nil {
		return nil, err
	}
	return wf, nil
}

// ListWorkflows fetches every workflow in the workspace.
func (c *HTTPClient) ListWorkflows(ctx context.Context) ([]Workflow, error) {
	var wfs []Workflow
	if err := c.doJSON(ctx, http.MethodGet, "/workflows", nil, &wfs); err != nil {
		return nil, err
	}
	return wfs, nil
}

// UpdateStory writes the story's description and workflow state and returns
// the story as the API reports it after the write. Callers verify the
// returned state; a 200 alone does not guarantee the transition applied.
func (c *HTTPClient) UpdateStory(ctx context.Context, id int, update StoryUpdate) (*Story, error) {
	story := new(Story)
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/stories/%d", id), update, story); err != nil {
		return nil, err
	}
	return story, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("tracker: encoding %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("tracker: building %s %s: %w", method, path, err)
	}
	req.Header.Set("Shortcut-Token", c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("tracker: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return &StatusError{
			StatusCode: resp.StatusCode,
			Method:     method,
			Path:       path,
			Body:       string(bytes.TrimSpace(snippet)),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("tracker: decoding %s %s response: %w", method, path, err)
	}
	return nil
}
