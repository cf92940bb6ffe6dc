/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"topodraw/internal/domain"
	"topodraw/internal/storage"
)

// Client talks to a topodraw server and satisfies storage.Store, so callers
// can switch between the local library and the shared one.
type Client struct {
	BaseURL string
	client  *http.Client
}

var _ storage.Store = (*Client)(nil)

// NewClient creates a backend client. A trailing slash on baseURL is ignored.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.client = hc
	return c
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return err
	}
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&eb)
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("server %s %s: %w", method, u.Path, ErrNotFound)
		}
		if eb.Error != "" {
			return fmt.Errorf("server %s %s: %s: %s", method, u.Path, resp.Status, eb.Error)
		}
		return fmt.Errorf("server %s %s: %s", method, u.Path, resp.Status)
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func designPath(id string) string { return DesignsPath + "/" + url.PathEscape(id) }

// List returns the shared designs, newest first.
func (c *Client) List(ctx context.Context) ([]domain.Summary, error) {
	var list []domain.Summary
	if err := c.do(ctx, http.MethodGet, DesignsPath, nil, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// Get fetches one design.
func (c *Client) Get(ctx context.Context, id string) (domain.Design, error) {
	var d domain.Design
	if err := c.do(ctx, http.MethodGet, designPath(id), nil, &d); err != nil {
		return domain.Design{}, err
	}
	return d.Normalize(), nil
}

// Create makes an empty design on the server.
func (c *Client) Create(ctx context.Context, title string) (domain.Design, error) {
	var d domain.Design
	if err := c.do(ctx, http.MethodPost, DesignsPath, titleRequest{Title: title}, &d); err != nil {
		return domain.Design{}, err
	}
	return d.Normalize(), nil
}

// Save uploads d. A design without id is created first and then saved
// under the new id.
func (c *Client) Save(ctx context.Context, d domain.Design) (domain.Design, error) {
	if d.ID == "" {
		created, err := c.Create(ctx, d.Title)
		if err != nil {
			return domain.Design{}, err
		}
		d.ID = created.ID
	}
	var out domain.Design
	if err := c.do(ctx, http.MethodPut, designPath(d.ID), d.Normalize(), &out); err != nil {
		return domain.Design{}, err
	}
	return out.Normalize(), nil
}

// Rename changes the title of a shared design.
func (c *Client) Rename(ctx context.Context, id, title string) error {
	return c.do(ctx, http.MethodPatch, designPath(id)+"/title", titleRequest{Title: title}, nil)
}

// Delete removes a shared design.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, designPath(id), nil, nil)
}

// Health checks the server liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+HealthPath, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health: %s", resp.Status)
	}
	return nil
}
