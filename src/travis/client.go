// Package travis cancels stale and failing builds on Travis CI.
package travis

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"ci-reaper/src/logger"
	"ci-reaper/src/provider"
	"ci-reaper/src/transport"
)

const (
	// DefaultBaseURL is the base URL for the Travis API.
	DefaultBaseURL = "https://api.travis-ci.org"

	acceptHeader = "application/vnd.travis-ci.2+json"
)

// Client is a Travis API (v2) client.
type Client struct {
	http *transport.Client
}

// NewClient creates a Travis client. baseURL is used for testing; pass empty string
// to use the real Travis API. httpClient may be nil.
func NewClient(token, baseURL string, httpClient *http.Client, log logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http: transport.NewClient(transport.Options{
			Provider:      "Travis",
			BaseURL:       baseURL,
			Authorization: "token " + token,
			Accept:        acceptHeader,
			HTTPClient:    httpClient,
			Logger:        log,
		}),
	}
}

// BaseURL returns the Travis API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.http.BaseURL()
}

// ListBuilds fetches the recent builds of a repository together with their commits.
func (c *Client) ListBuilds(ctx context.Context, repo provider.Repository) (*BuildList, error) {
	path := fmt.Sprintf("/repos/%s/%s/builds", url.PathEscape(repo.Owner), url.PathEscape(repo.Name))
	var list BuildList
	if err := c.http.GetJSON(ctx, path, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetBuild fetches a build with its jobs.
func (c *Client) GetBuild(ctx context.Context, id int64) (*BuildDetail, error) {
	var detail BuildDetail
	if err := c.http.GetJSON(ctx, fmt.Sprintf("/builds/%d", id), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// CancelBuild cancels a build and all of its jobs.
func (c *Client) CancelBuild(ctx context.Context, id int64) error {
	return c.http.Post(ctx, fmt.Sprintf("/builds/%d/cancel", id))
}
