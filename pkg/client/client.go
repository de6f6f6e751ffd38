// Package client is a typed consumer of the directory API: an HTTP client for
// the listing endpoints plus a per-filter page cache with derived facet views,
// the state container a UI sits on top of.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"smartaitools/internal/models"
)

// ErrStale marks a response from a fetch that was superseded by a newer one
// before it resolved. Callers drop it; the newer fetch's result wins.
var ErrStale = errors.New("stale response discarded")

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// SetToken attaches a bearer token to subsequent requests. An empty token
// reverts to anonymous calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) get(ctx context.Context, path string, q Query, out interface{}) error {
	u := c.baseURL + path
	if params := q.Values().Encode(); params != "" {
		u += "?" + params
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&apiErr); decodeErr == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		log.Error().Err(err).Str("path", path).Msg("Failed to decode API response")
		return err
	}
	return nil
}

// ListPrompts fetches one page of prompts for the given query.
func (c *Client) ListPrompts(ctx context.Context, q Query) (*models.PromptPage, error) {
	var page models.PromptPage
	if err := c.get(ctx, "/api/prompts", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListTools fetches one page of tools for the given query.
func (c *Client) ListTools(ctx context.Context, q Query) (*models.ToolPage, error) {
	var page models.ToolPage
	if err := c.get(ctx, "/api/tools", q, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
