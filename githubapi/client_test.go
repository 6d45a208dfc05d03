package githubapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ontoforge/ontoforge/config"
	"github.com/ontoforge/ontoforge/errors"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return New(config.GitHubConfig{
		APIBase:           ts.URL,
		RawBase:           ts.URL,
		Token:             "test-token",
		TimeoutSeconds:    5,
		RequestsPerSecond: 100,
	})
}

func TestListTreeFiltersBlobs(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/acme/fibo/git/trees/v1.0.0", r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		io.WriteString(w, `{"sha":"abc","tree":[
			{"path":"ontology.ttl","type":"blob","size":10,"sha":"s1"},
			{"path":"docs","type":"tree","sha":"s2"},
			{"path":"docs/model.owl","type":"blob","size":20,"sha":"s3"}
		],"truncated":false}`)
	}))

	entries, err := c.ListTree(context.Background(), "acme", "fibo", "v1.0.0")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "ontology.ttl", entries[0].Path)
	assert.Equal(t, "docs/model.owl", entries[1].Path)
}

func TestListTreeNotFound(t *testing.T) {
	c := newTestClient(t, http.NotFoundHandler())
	_, err := c.ListTree(context.Background(), "acme", "gone", "HEAD")
	require.Error(t, err)
	assert.True(t, errors.IsNotFound(err))
}

func TestFetchRaw(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/acme/fibo/v1.0.0/dir/onto.ttl", r.URL.Path)
		io.WriteString(w, "@prefix ex: <http://example.org/> .")
	}))

	data, err := c.FetchRaw(context.Background(), "acme", "fibo", "v1.0.0", "dir/onto.ttl")
	require.NoError(t, err)
	assert.Contains(t, string(data), "@prefix ex:")
}

func TestFetchRawUpstreamError(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	_, err := c.FetchRaw(context.Background(), "acme", "fibo", "HEAD", "a.ttl")
	require.Error(t, err)
	assert.True(t, errors.IsUpstream(err))
}

func TestRateLimitExhaustion(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.WriteHeader(http.StatusForbidden)
	}))
	_, err := c.ListTree(context.Background(), "acme", "fibo", "HEAD")
	require.Error(t, err)
	assert.True(t, errors.IsUpstream(err))
}
