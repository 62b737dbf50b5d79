// Package rtdb talks to the hierarchical key-value store over its REST
// surface: JSON documents addressed by slash paths, null for missing
// values, ETag headers for compare-and-set writes.
package rtdb

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

	"attendgate.com/attendgate/core"
)

const defaultTimeout = 10 * time.Second

// TokenSource supplies bearer tokens for store access. A nil source
// means the database accepts unauthenticated access (dev instances).
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// Client implements core.Store against a database base URL such as
// https://example-rtdb.firebasedatabase.app.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
}

func New(baseURL string, tokens TokenSource, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: timeout},
		Tokens:     tokens,
	}
}

// buildURL maps a store path onto the REST convention: each path gets a
// .json suffix; the empty path addresses the root document.
func (c *Client) buildURL(ctx context.Context, path string) (string, error) {
	path = strings.Trim(path, "/")
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	full := c.BaseURL + "/" + strings.Join(segments, "/") + ".json"
	if path == "" {
		full = c.BaseURL + "/.json"
	}

	if c.Tokens != nil {
		token, err := c.Tokens.Token(ctx)
		if err != nil {
			return "", fmt.Errorf("%w: token: %v", core.ErrStoreUnavailable, err)
		}
		full += "?access_token=" + url.QueryEscape(token)
	}
	return full, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, header http.Header) (*http.Response, error) {
	full, err := c.buildURL(ctx, path)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode body: %w", method, path, err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, full, reader)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", core.ErrStoreUnavailable, method, path, err)
	}
	return resp, nil
}

func (c *Client) Get(ctx context.Context, path string, out any) (bool, error) {
	found, _, err := c.get(ctx, path, out, false)
	return found, err
}

func (c *Client) GetWithETag(ctx context.Context, path string, out any) (bool, string, error) {
	return c.get(ctx, path, out, true)
}

func (c *Client) get(ctx context.Context, path string, out any, withETag bool) (bool, string, error) {
	header := http.Header{}
	if withETag {
		header.Set("X-Firebase-ETag", "true")
	}
	resp, err := c.do(ctx, http.MethodGet, path, nil, header)
	if err != nil {
		return false, "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, "", fmt.Errorf("%w: GET %s: %v", core.ErrStoreUnavailable, path, err)
	}
	if resp.StatusCode >= 300 {
		return false, "", fmt.Errorf("%w: GET %s: status %d: %s", core.ErrStoreUnavailable, path, resp.StatusCode, string(raw))
	}

	etag := resp.Header.Get("ETag")
	if string(bytes.TrimSpace(raw)) == "null" {
		return false, etag, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, "", fmt.Errorf("GET %s: decode: %w", path, err)
	}
	return true, etag, nil
}

func (c *Client) Set(ctx context.Context, path string, value any) error {
	return c.write(ctx, http.MethodPut, path, value, "")
}

func (c *Client) SetIfMatch(ctx context.Context, path string, value any, etag string) error {
	return c.write(ctx, http.MethodPut, path, value, etag)
}

func (c *Client) Update(ctx context.Context, path string, fields map[string]any) error {
	return c.write(ctx, http.MethodPatch, path, fields, "")
}

func (c *Client) write(ctx context.Context, method, path string, value any, etag string) error {
	header := http.Header{}
	if etag != "" {
		header.Set("if-match", etag)
	}
	resp, err := c.do(ctx, method, path, value, header)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusPreconditionFailed {
		return fmt.Errorf("%s %s: %w", method, path, core.ErrConflict)
	}
	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: %s %s: status %d: %s", core.ErrStoreUnavailable, method, path, resp.StatusCode, string(b))
	}
	return nil
}
