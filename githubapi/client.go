// Package githubapi is a minimal GitHub REST client covering what
// ingestion needs: listing a repository tree at a ref and fetching raw
// file contents. Calls are rate limited client-side so a burst of
// webhook deliveries cannot exhaust the API quota.
package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/ontoforge/ontoforge/config"
	"github.com/ontoforge/ontoforge/errors"
	"github.com/ontoforge/ontoforge/logger"
)

// maxFileSize caps a single raw download. Ontology sources larger than
// this are rejected rather than buffered.
const maxFileSize = 32 << 20

// Client talks to the GitHub REST API and the raw content host.
type Client struct {
	apiBase    string
	rawBase    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// New builds a Client from configuration. An empty token means
// unauthenticated access, which GitHub rate limits aggressively.
func New(cfg config.GitHubConfig) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		apiBase:    cfg.APIBase,
		rawBase:    cfg.RawBase,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: cfg.Timeout()},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// TreeEntry is one entry of a repository tree listing.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	SHA  string `json:"sha"`
}

type treeResponse struct {
	SHA       string      `json:"sha"`
	Tree      []TreeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

// ListTree returns the top level file tree of owner/repo at ref. Only
// blob entries are returned.
func (c *Client) ListTree(ctx context.Context, owner, repo, ref string) ([]TreeEntry, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/%s/git/trees/%s",
		c.apiBase, url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(ref))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "listing tree %s/%s@%s", owner, repo, ref)
	}

	var tr treeResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decoding tree response"), errors.ErrUpstream)
	}
	if tr.Truncated {
		logger.Logger.Warnw("tree listing truncated", "owner", owner, "repo", repo, "ref", ref)
	}

	blobs := make([]TreeEntry, 0, len(tr.Tree))
	for _, e := range tr.Tree {
		if e.Type == "blob" {
			blobs = append(blobs, e)
		}
	}
	return blobs, nil
}

// FetchRaw downloads one file's contents at a ref via the raw content
// host.
func (c *Client) FetchRaw(ctx context.Context, owner, repo, ref, path string) ([]byte, error) {
	// Refs like refs/tags/v1 keep their slashes on the raw host.
	endpoint := fmt.Sprintf("%s/%s/%s/%s/%s",
		c.rawBase, url.PathEscape(owner), url.PathEscape(repo), escapePath(ref), escapePath(path))

	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, errors.Wrapf(err, "fetching %s at %s", path, ref)
	}
	return body, nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.Wrap(err, "building request")
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "ontoforge")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Mark(err, errors.ErrUpstream)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.Mark(errors.Newf("not found: %s", endpoint), errors.ErrNotFound)
	case resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return nil, errors.Mark(errors.New("API rate limit exhausted"), errors.ErrUpstream)
	case resp.StatusCode >= 300:
		return nil, errors.Mark(errors.Newf("unexpected status %d", resp.StatusCode), errors.ErrUpstream)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFileSize+1))
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "reading response"), errors.ErrUpstream)
	}
	if len(body) > maxFileSize {
		return nil, errors.Mark(errors.Newf("response exceeds %d bytes", maxFileSize), errors.ErrInvalidRequest)
	}

	logger.Logger.Debugw("github request", "url", endpoint, "status", resp.StatusCode, "duration", time.Since(start))
	return body, nil
}

// escapePath escapes each path segment while keeping the separators.
func escapePath(p string) string {
	u := &url.URL{Path: p}
	return u.EscapedPath()
}
