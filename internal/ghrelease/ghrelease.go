// Package ghrelease is the remote-release collaborator: it lists the
// assets of a repository's latest GitHub release and streams asset
// bytes. It knows nothing about control files or sync decisions.
package ghrelease

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/debstage/debstage/internal/syncplan"
)

const defaultAPIBase = "https://api.github.com"

// ErrNoRelease reports that the repository has no published release.
var ErrNoRelease = errors.New("no published release found")

// Release is the latest release of a repository.
type Release struct {
	Tag    string
	Assets []syncplan.Asset
}

// Client talks to the GitHub REST API, optionally authenticated.
type Client struct {
	httpClient *http.Client
	apiBase    string
	token      string
}

// Option adjusts a Client.
type Option func(*Client)

// WithAPIBase points the client at a different API endpoint, used by
// tests and GitHub Enterprise deployments.
func WithAPIBase(base string) Option {
	return func(c *Client) { c.apiBase = strings.TrimSuffix(base, "/") }
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient builds a client. An empty token means unauthenticated
// requests, which GitHub rate-limits aggressively.
func NewClient(token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		apiBase:    defaultAPIBase,
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseRepoID splits an "owner/repo" identifier.
func ParseRepoID(id string) (owner, repo string, err error) {
	owner, repo, found := strings.Cut(id, "/")
	if !found || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("malformed repository identifier %q, expected owner/repo", id)
	}
	return owner, repo, nil
}

type assetPayload struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Digest             string `json:"digest"`
}

type releasePayload struct {
	TagName string         `json:"tag_name"`
	Assets  []assetPayload `json:"assets"`
}

// LatestRelease fetches the latest release and its assets. The digest
// field is passed through as reported ("sha256:<hex>" when present).
func (c *Client) LatestRelease(ctx context.Context, owner, repo string) (Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.apiBase, owner, repo)

	resp, err := c.get(ctx, url, "application/vnd.github+json")
	if err != nil {
		return Release{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return Release{}, fmt.Errorf("%s/%s: %w", owner, repo, ErrNoRelease)
	}
	if resp.StatusCode != http.StatusOK {
		return Release{}, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}

	var payload releasePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Release{}, fmt.Errorf("decoding release for %s/%s: %w", owner, repo, err)
	}

	release := Release{Tag: payload.TagName}
	for _, a := range payload.Assets {
		release.Assets = append(release.Assets, syncplan.Asset{
			Name:   a.Name,
			URL:    a.BrowserDownloadURL,
			Digest: a.Digest,
		})
	}
	return release, nil
}

// FetchBytes streams the bytes behind an asset URL. The caller owns
// the returned reader.
func (c *Client) FetchBytes(ctx context.Context, url string) (io.ReadCloser, error) {
	resp, err := c.get(ctx, url, "application/octet-stream")
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %s", url, resp.Status)
	}
	return resp.Body, nil
}

func (c *Client) get(ctx context.Context, url, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", accept)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	return resp, nil
}
