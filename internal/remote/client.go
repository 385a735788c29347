// Copyright (c) 2025-2026, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

// Package remote drives a mediasweep server over its HTTP API.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/autobrr/mediasweep/internal/api/handlers"
	"github.com/autobrr/mediasweep/internal/api/middleware"
	"github.com/autobrr/mediasweep/internal/buildinfo"
	"github.com/autobrr/mediasweep/internal/services/orphanscan"
	"github.com/autobrr/mediasweep/pkg/httphelpers"
	"github.com/autobrr/mediasweep/pkg/redact"
)

var (
	ErrUnauthorized        = errors.New("remote rejected the API key")
	ErrRegistryUnavailable = errors.New("remote registry unavailable")
)

const (
	requestTimeout      = 5 * time.Minute
	maxErrorBodyBytes   = 64 * 1024
	truncatedBodySuffix = " (truncated)"
)

type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("mediasweep api error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("mediasweep api error (status %d): %s", e.StatusCode, e.Message)
}

// Client implements orphanscan.BatchDeleter against a remote server.
type Client struct {
	origin     string
	basePath   string
	proxyUser  *url.Userinfo
	apiKey     string
	userAgent  string
	httpClient *http.Client
}

var _ orphanscan.BatchDeleter = (*Client)(nil)

type OptFunc func(*Client)

func WithAPIKey(apiKey string) OptFunc {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

func WithUserAgent(userAgent string) OptFunc {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

func WithHTTPClient(httpClient *http.Client) OptFunc {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// NewClient targets baseURL, e.g. http://127.0.0.1:7478 or
// https://example.com/mediasweep behind a proxy.
func NewClient(baseURL string, opts ...OptFunc) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("remote: invalid base URL: %w", redact.URLError(err))
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("remote: base URL must be http(s)://host[:port][/path], got %q", redact.URL(baseURL))
	}

	c := &Client{
		origin:    u.Scheme + "://" + u.Host,
		basePath:  httphelpers.NormalizeBasePath(u.Path),
		proxyUser: u.User,
		userAgent: buildinfo.UserAgent,
		httpClient: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        4,
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     30 * time.Second,
			},
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// BaseURL returns the normalized server URL without credentials.
func (c *Client) BaseURL() string {
	return c.origin + c.basePath
}

// Scan runs a scan on the server.
func (c *Client) Scan(ctx context.Context) (*handlers.ScanResponse, error) {
	var resp handlers.ScanResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/orphans/scan", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ScanOrphans runs a scan on the server and asks for the orphan list only.
func (c *Client) ScanOrphans(ctx context.Context) (*handlers.ScanResponse, error) {
	var resp handlers.ScanResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/orphans/scan", handlers.ScanRequest{OrphansOnly: true}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteBatch submits one chunk. Any transport, status or decoding failure is
// an error, which RunBatches counts as the whole chunk failing.
func (c *Client) DeleteBatch(ctx context.Context, paths []string) (orphanscan.BatchResult, error) {
	var resp handlers.DeleteResponse
	if err := c.doRequest(ctx, http.MethodPost, "/api/orphans/delete", handlers.DeleteRequest{Paths: paths}, &resp); err != nil {
		return orphanscan.BatchResult{}, err
	}
	if resp.Deleted+resp.Failed != len(paths) {
		return orphanscan.BatchResult{}, fmt.Errorf("remote: server accounted for %d of %d paths", resp.Deleted+resp.Failed, len(paths))
	}
	return resp.BatchResult, nil
}

// Version fetches the server build and extension list revision.
func (c *Client) Version(ctx context.Context) (*handlers.VersionResponse, error) {
	var resp handlers.VersionResponse
	if err := c.doRequest(ctx, http.MethodGet, "/api/version", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) doRequest(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	var body io.Reader
	if requestBody != nil {
		payload, err := json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.origin+httphelpers.JoinBasePath(c.basePath, path), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set(middleware.APIKeyHeader, c.apiKey)
	}
	// Credentials in the base URL are for a reverse proxy in front of the server.
	if c.proxyUser != nil {
		password, _ := c.proxyUser.Password()
		req.SetBasicAuth(c.proxyUser.Username(), password)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return redact.URLError(err)
	}
	defer httphelpers.DrainAndClose(resp)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(responseBody); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func parseError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes+1))
	truncated := len(body) > maxErrorBodyBytes
	if truncated {
		body = body[:maxErrorBodyBytes]
	}

	message := strings.TrimSpace(string(body))

	var payload handlers.ErrorResponse
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		message = payload.Error
	}

	if truncated {
		message += truncatedBodySuffix
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return wrapError(ErrUnauthorized, message)
	case http.StatusServiceUnavailable:
		return wrapError(ErrRegistryUnavailable, message)
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}

func wrapError(base error, message string) error {
	if message == "" {
		return base
	}
	return fmt.Errorf("%w: %s", base, message)
}
