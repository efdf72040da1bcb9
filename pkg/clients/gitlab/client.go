package gitlab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/intelorca/openlauncher/pkg/common"
)

const DefaultBaseURL = "https://gitlab.com/api/v4"

func NewClient(client *http.Client) *Client {
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		client:  client,
		baseURL: DefaultBaseURL,
	}
}

type Client struct {
	client  *http.Client
	baseURL string
	token   string
}

func (c *Client) SetToken(token string) {
	c.token = token
}

// SetBaseURL points the client at a self-hosted instance, e.g. https://gitlab.example.com/api/v4
func (c *Client) SetBaseURL(baseURL string) {
	if baseURL != "" {
		c.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// ErrorResponse is returned for every non-2xx response
type ErrorResponse struct {
	StatusCode int
	Message    string
}

func (e *ErrorResponse) Error() string {
	return fmt.Sprintf("gitlab: %d %s", e.StatusCode, e.Message)
}

// ListReleases returns one page of releases of a project, newest first. The returned page is
// zero when there are no further pages.
func (c *Client) ListReleases(ctx context.Context, slug string, page int) ([]*Release, int, error) {
	releaseURL := fmt.Sprintf("%s/projects/%s/releases?per_page=100&page=%d", c.baseURL, url.QueryEscape(slug), page)

	var releases []*Release
	resp, err := c.get(ctx, releaseURL, &releases)
	if err != nil {
		return nil, 0, err
	}

	next := 0
	if v := resp.Header.Get("X-Next-Page"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &next); err != nil {
			next = 0
		}
	}

	return releases, next, nil
}

func (c *Client) GetRelease(ctx context.Context, slug, version string) (*Release, error) {
	releaseURL := fmt.Sprintf("%s/projects/%s/releases/%s", c.baseURL, url.QueryEscape(slug), url.PathEscape(version))

	var release *Release
	if _, err := c.get(ctx, releaseURL, &release); err != nil {
		return nil, err
	}

	return release, nil
}

func (c *Client) get(ctx context.Context, u string, v interface{}) (*http.Response, error) {
	logrus.Tracef("GET %s", u)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, err
	}

	req.Header.Add("User-Agent", common.AppVersion.UserAgent())

	if c.token != "" {
		req.Header.Set("PRIVATE-TOKEN", c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return resp, &ErrorResponse{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return resp, err
	}

	return resp, nil
}
