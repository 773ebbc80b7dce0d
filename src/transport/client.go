// Package transport issues authenticated requests against a CI provider API.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"ci-reaper/src/logger"
)

// DefaultUserAgent identifies the reaper to provider APIs.
const DefaultUserAgent = "ci-reaper/1.0"

// Options configures a Client.
type Options struct {
	// Provider labels log lines (e.g. "Travis").
	Provider string
	// BaseURL is prefixed to every request path.
	BaseURL string
	// Authorization is the full Authorization header value.
	Authorization string
	// Accept selects the provider API version/format.
	Accept    string
	UserAgent string
	// HTTPClient is shared by all concurrent requests. If nil, one with a 30s timeout is used.
	HTTPClient *http.Client
	Logger     logger.Logger
}

// Client is safe for concurrent use; it holds no mutable state.
type Client struct {
	provider      string
	baseURL       string
	authorization string
	accept        string
	userAgent     string
	httpClient    *http.Client
	logger        logger.Logger
}

// NewClient creates a provider transport.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	log := opts.Logger
	if log == nil {
		log = logger.NewSilentLogger()
	}
	return &Client{
		provider:      opts.Provider,
		baseURL:       strings.TrimRight(opts.BaseURL, "/"),
		authorization: opts.Authorization,
		accept:        opts.Accept,
		userAgent:     userAgent,
		httpClient:    httpClient,
		logger:        log,
	}
}

// BaseURL returns the URL every request path is joined to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Do issues method against path and returns the response body.
// Only 200 and 204 count as success.
func (c *Client) Do(ctx context.Context, method, path string) ([]byte, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Authorization", c.authorization)
	req.Header.Set("Accept", c.accept)

	c.logger.Info("[%s] %s %s", c.provider, method, url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &RequestError{Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Method: method, URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return nil, &StatusError{
			Method: method,
			URL:    url,
			Code:   resp.StatusCode,
			Body:   strings.ToValidUTF8(string(body), "�"),
		}
	}

	return body, nil
}

// GetJSON fetches path and decodes the JSON body into target.
func (c *Client) GetJSON(ctx context.Context, path string, target interface{}) error {
	body, err := c.Do(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}
	return decode(c.baseURL+path, body, target)
}

// Post issues a body-less POST and discards the response.
func (c *Client) Post(ctx context.Context, path string) error {
	_, err := c.Do(ctx, http.MethodPost, path)
	return err
}

// Delete issues a DELETE and discards the response.
func (c *Client) Delete(ctx context.Context, path string) error {
	_, err := c.Do(ctx, http.MethodDelete, path)
	return err
}

func decode(url string, body []byte, target interface{}) error {
	if !utf8.Valid(body) {
		return &DecodeError{URL: url, RawBody: body, Err: ErrNotUTF8}
	}
	if err := json.Unmarshal(body, target); err != nil {
		return &DecodeError{URL: url, RawBody: body, Err: err}
	}
	return nil
}
