// Package client wraps the Kaleido backend REST API. Each backend resource
// gets a small struct with a fixed base path over one shared HTTP core; the
// core attaches the bearer token and classifies failures so callers can tell
// "refine your search" apart from transport errors.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// StatusTokenExpired is the backend's signal that the bearer token is no
// longer valid and the user must log in again.
const StatusTokenExpired = 498

// ErrTokenExpired is returned for any request rejected with StatusTokenExpired.
var ErrTokenExpired = errors.New("client: access token expired")

// APIError is any non-2xx response that is not a token expiry.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("client: api error %d", e.Status)
	}
	return fmt.Sprintf("client: api error %d: %s", e.Status, body)
}

// IsValidation reports whether err is the backend rejecting the request as
// insufficiently specified (the "search needs refinement" class), as opposed
// to a transport or server failure.
func IsValidation(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusBadRequest || apiErr.Status == http.StatusUnprocessableEntity
}

// TokenSource supplies the bearer token attached to every request. An empty
// token sends the request unauthenticated.
type TokenSource interface {
	Token() string
}

// Client aggregates one sub-client per backend resource.
type Client struct {
	Auth      *AuthClient
	Users     *UsersClient
	Threads   *ThreadsClient
	Bookmarks *BookmarksClient
	Products  *ProductsClient

	core *core
}

// New builds a client for the backend at baseURL (scheme://host:port, with an
// optional root path, no trailing slash).
func New(baseURL string, tokens TokenSource) *Client {
	c := &core{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	return &Client{
		Auth:      &AuthClient{core: c, base: "/auth"},
		Users:     &UsersClient{core: c, base: "/users"},
		Threads:   &ThreadsClient{core: c, base: "/me/threads"},
		Bookmarks: &BookmarksClient{core: c, base: "/me/bookmarks"},
		Products:  &ProductsClient{core: c, base: "/products"},
		core:      c,
	}
}

type core struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

// do issues one JSON request. A nil out discards the response body.
func (c *core) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("client: encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("client: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("client: read %s %s: %w", method, path, err)
	}

	switch {
	case resp.StatusCode == StatusTokenExpired:
		return ErrTokenExpired
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &APIError{Status: resp.StatusCode, Body: string(raw)}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("client: decode %s %s: %w", method, path, err)
	}
	return nil
}
