// Package github is a minimal client for the GitHub REST API surface the
// fork syncer needs: listing a user's repositories and resolving a
// repository's parent.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	// DefaultBaseURL is the public GitHub API endpoint.
	DefaultBaseURL = "https://api.github.com"
	// DefaultPageSize bounds repository listing pages.
	DefaultPageSize = 100
)

// Repo is the subset of the repository payload the syncer consumes.
type Repo struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Fork          bool   `json:"fork"`
	Archived      bool   `json:"archived"`
	Disabled      bool   `json:"disabled"`
	DefaultBranch string `json:"default_branch"`
	Parent        *Repo  `json:"parent,omitempty"`
}

// APIError is a non-2xx response from the API, carrying the error payload's
// message field when present.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("github api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("github api: status %d: %s", e.StatusCode, e.Message)
}

// Client talks to the GitHub REST API with token authentication.
type Client struct {
	// BaseURL overrides the API endpoint (tests, GitHub Enterprise).
	BaseURL string
	// Token is sent as a bearer credential on every request.
	Token string
	// HTTPClient overrides the underlying HTTP client.
	HTTPClient *http.Client
	// PageSize bounds listing pages. Defaults to DefaultPageSize.
	PageSize int
}

// NewClient builds a Client for the given token.
func NewClient(token string) *Client {
	return &Client{Token: token}
}

func (c *Client) baseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return DefaultBaseURL
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}

func (c *Client) pageSize() int {
	if c.PageSize > 0 {
		return c.PageSize
	}
	return DefaultPageSize
}

// ListUserRepos returns all repositories owned by the account, following
// pagination until a short page.
func (c *Client) ListUserRepos(ctx context.Context, account string) ([]Repo, error) {
	perPage := c.pageSize()
	var all []Repo
	for page := 1; ; page++ {
		path := "/users/" + account + "/repos?per_page=" + strconv.Itoa(perPage) + "&page=" + strconv.Itoa(page)
		var repos []Repo
		if err := c.getJSON(ctx, path, &repos); err != nil {
			return nil, fmt.Errorf("list repos for %s: %w", account, err)
		}
		all = append(all, repos...)
		if len(repos) < perPage {
			return all, nil
		}
	}
}

// GetRepo fetches full repository detail, including the parent relationship
// the listing payload omits.
func (c *Client) GetRepo(ctx context.Context, owner, name string) (*Repo, error) {
	var repo Repo
	if err := c.getJSON(ctx, "/repos/"+owner+"/"+name, &repo); err != nil {
		return nil, fmt.Errorf("get repo %s/%s: %w", owner, name, err)
	}
	return &repo, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL()+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return apiErrorFromResponse(resp)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func apiErrorFromResponse(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}
	var payload struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		apiErr.Message = payload.Message
	}
	return apiErr
}
