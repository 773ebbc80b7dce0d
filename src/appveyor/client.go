// Package appveyor cancels stale and failing builds on AppVeyor.
package appveyor

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"ci-reaper/src/logger"
	"ci-reaper/src/transport"
)

const (
	// DefaultBaseURL is the base URL for the AppVeyor API.
	DefaultBaseURL = "https://ci.appveyor.com/api"

	// HistoryRecords is how many branch builds the history check inspects.
	HistoryRecords = 10
)

// Client is an AppVeyor API client.
type Client struct {
	http *transport.Client
}

// NewClient creates an AppVeyor client. baseURL is used for testing and
// self-hosted servers; pass empty string to use ci.appveyor.com. httpClient may be nil.
func NewClient(token, baseURL string, httpClient *http.Client, log logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http: transport.NewClient(transport.Options{
			Provider:      "AppVeyor",
			BaseURL:       baseURL,
			Authorization: "Bearer " + token,
			Accept:        "application/json",
			HTTPClient:    httpClient,
			Logger:        log,
		}),
	}
}

func projectPath(account, project string) string {
	return fmt.Sprintf("/projects/%s/%s", url.PathEscape(account), url.PathEscape(project))
}

// BaseURL returns the AppVeyor API root requests are sent to.
func (c *Client) BaseURL() string {
	return c.http.BaseURL()
}

// History fetches the most recent builds of a project on one branch.
func (c *Client) History(ctx context.Context, account, project, branch string, records int) (*History, error) {
	query := url.Values{}
	query.Set("recordsNumber", strconv.Itoa(records))
	query.Set("branch", branch)

	var history History
	if err := c.http.GetJSON(ctx, projectPath(account, project)+"/history?"+query.Encode(), &history); err != nil {
		return nil, err
	}
	return &history, nil
}

// LastBuild fetches the latest build of a project on one branch, including its jobs.
func (c *Client) LastBuild(ctx context.Context, account, project, branch string) (*LastBuild, error) {
	var last LastBuild
	if err := c.http.GetJSON(ctx, projectPath(account, project)+"/branch/"+url.PathEscape(branch), &last); err != nil {
		return nil, err
	}
	return &last, nil
}

// CancelBuild cancels the build identified by its version string.
func (c *Client) CancelBuild(ctx context.Context, account, project, version string) error {
	path := fmt.Sprintf("/builds/%s/%s/%s", url.PathEscape(account), url.PathEscape(project), url.PathEscape(version))
	return c.http.Delete(ctx, path)
}
