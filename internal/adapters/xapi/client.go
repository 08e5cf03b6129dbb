// Package xapi is the HTTP gateway to the platform's internal GraphQL API,
// using the endpoints and bearer credential produced by discovery and the
// session's cookie material.
package xapi

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

	"tweetsweep/internal/domain"
	"tweetsweep/internal/ports"
)

const maxResponseBytes = 8 << 20

const (
	headerAuthorization = "authorization"
	headerCSRF          = "x-csrf-token"
	headerActiveUser    = "x-twitter-active-user"
)

var ErrSessionExpired = errors.New("session expired or rejected")

// Config carries everything the client needs besides the discovered registry:
// where the platform lives, the session cookie header, and the opaque
// feature/toggle blobs the list query must echo.
type Config struct {
	BaseURL      string
	CookieHeader string
	Features     string
	FieldToggles string

	// ListOperation and DeleteOperation name the registry entries used for
	// the read-collection and destructive-remove calls.
	ListOperation   string
	DeleteOperation string
}

type Client struct {
	httpClient *http.Client
	cfg        Config
	creds      domain.Credentials
	registry   *domain.Registry
}

var _ ports.PlatformGateway = (*Client)(nil)

func NewClient(httpClient *http.Client, cfg Config, creds domain.Credentials, registry *domain.Registry) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if cfg.Features == "" {
		cfg.Features = DefaultFeatures
	}
	if cfg.FieldToggles == "" {
		cfg.FieldToggles = DefaultFieldToggles
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Client{
		httpClient: httpClient,
		cfg:        cfg,
		creds:      creds,
		registry:   registry,
	}
}

// UserTimeline performs the read-collection query for one page of the user's
// posts and returns the raw response document.
func (c *Client) UserTimeline(ctx context.Context, userID string, count int) ([]byte, error) {
	endpoint, ok := c.registry.Lookup(c.cfg.ListOperation)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrEndpointNotFound, c.cfg.ListOperation)
	}

	variables, err := json.Marshal(map[string]any{
		"userId":                                 userID,
		"count":                                  count,
		"includePromotedContent":                 true,
		"withQuickPromoteEligibilityTweetFields": true,
		"withVoice":                              true,
	})
	if err != nil {
		return nil, fmt.Errorf("encode query variables: %w", err)
	}

	query := url.Values{}
	query.Set("variables", string(variables))
	query.Set("features", c.cfg.Features)
	query.Set("fieldToggles", c.cfg.FieldToggles)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+endpoint.Path+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create list request: %w", err)
	}
	c.setSessionHeaders(req)
	req.Header.Set(headerActiveUser, "yes")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("perform list request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read list response: %w", err)
	}
	if err := statusError(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// DeletePost performs the destructive-remove mutation for one post. A 2xx
// status is success; the response body is not assumed to carry anything.
func (c *Client) DeletePost(ctx context.Context, id domain.PostID) error {
	endpoint, ok := c.registry.Lookup(c.cfg.DeleteOperation)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrEndpointNotFound, c.cfg.DeleteOperation)
	}

	payload, err := json.Marshal(map[string]any{
		"variables": map[string]any{
			"tweet_id":     id,
			"dark_request": false,
		},
		"queryId": endpoint.OperationID,
	})
	if err != nil {
		return fmt.Errorf("encode delete payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+endpoint.Path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create delete request: %w", err)
	}
	c.setSessionHeaders(req)
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("perform delete request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read delete response: %w", err)
	}

	return statusError(resp.StatusCode, body)
}

func (c *Client) setSessionHeaders(req *http.Request) {
	req.Header.Set(headerAuthorization, c.creds.Bearer)
	req.Header.Set(headerCSRF, c.creds.CSRF)
	if c.cfg.CookieHeader != "" {
		req.Header.Set("Cookie", c.cfg.CookieHeader)
	}
}

func statusError(status int, body []byte) error {
	if status >= 200 && status <= 299 {
		return nil
	}

	detail := strings.TrimSpace(string(body))
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return fmt.Errorf("%w: status %d: %s", ErrSessionExpired, status, detail)
	}

	return fmt.Errorf("status %d: %s", status, detail)
}
