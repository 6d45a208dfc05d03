package ingest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/ontoforge/ontoforge/config"
	"github.com/ontoforge/ontoforge/githubapi"
	"github.com/ontoforge/ontoforge/queue"
	"github.com/ontoforge/ontoforge/store"
	"github.com/ontoforge/ontoforge/vocab"
)

const testTurtle = `@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix ex: <http://example.org/onto#> .
ex:Person a owl:Class .
ex:knows a owl:ObjectProperty .
`

// fakeStore records SPARQL updates and graph store writes. Updates
// containing rejectContaining are refused with a 500.
type fakeStore struct {
	mu               sync.Mutex
	updates          []string
	puts             map[string]string
	rejectContaining string
}

func (f *fakeStore) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/update", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		update := r.FormValue("update")
		f.mu.Lock()
		reject := f.rejectContaining != "" && strings.Contains(update, f.rejectContaining)
		if !reject {
			f.updates = append(f.updates, update)
		}
		f.mu.Unlock()
		if reject {
			http.Error(w, "store unavailable", http.StatusInternalServerError)
		}
	})
	mux.HandleFunc("/gsp", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		if f.puts == nil {
			f.puts = make(map[string]string)
		}
		f.puts[r.URL.Query().Get("graph")] = string(body)
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("/query", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/sparql-results+json")
		io.WriteString(w, `{"head":{"vars":[]},"results":{"bindings":[]}}`)
	})
	return mux
}

func (f *fakeStore) lastUpdate() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.updates) == 0 {
		return ""
	}
	return f.updates[len(f.updates)-1]
}

func newTestPipeline(t *testing.T, githubHandler http.Handler) (*Pipeline, *fakeStore) {
	t.Helper()

	fs := &fakeStore{}
	storeTS := httptest.NewServer(fs.handler())
	t.Cleanup(storeTS.Close)

	st, err := store.New(config.StoreConfig{
		QueryURL:       storeTS.URL + "/query",
		UpdateURL:      storeTS.URL + "/update",
		GraphStoreURL:  storeTS.URL + "/gsp",
		TimeoutSeconds: 5,
	})
	require.NoError(t, err)

	ghTS := httptest.NewServer(githubHandler)
	t.Cleanup(ghTS.Close)
	gh := githubapi.New(config.GitHubConfig{
		APIBase:           ghTS.URL,
		RawBase:           ghTS.URL,
		TimeoutSeconds:    5,
		RequestsPerSecond: 100,
	})

	return NewPipeline(gh, st, zaptest.NewLogger(t).Sugar()), fs
}

func githubFixture(files map[string]string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/", func(w http.ResponseWriter, r *http.Request) {
		var sb strings.Builder
		sb.WriteString(`{"sha":"abc","tree":[`)
		first := true
		for path := range files {
			if !first {
				sb.WriteString(",")
			}
			first = false
			sb.WriteString(`{"path":"` + path + `","type":"blob","size":1,"sha":"s"}`)
		}
		sb.WriteString(`],"truncated":false}`)
		io.WriteString(w, sb.String())
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// raw content path: /{owner}/{repo}/{ref}/{path}
		for path, content := range files {
			if strings.HasSuffix(r.URL.Path, "/"+path) {
				io.WriteString(w, content)
				return
			}
		}
		http.NotFound(w, r)
	})
	return mux
}

func TestPipelineSuccess(t *testing.T) {
	p, fs := newTestPipeline(t, githubFixture(map[string]string{
		"onto.ttl":  testTurtle,
		"readme.md": "not an ontology",
	}))

	run := Run{EventID: "ev-1", Owner: "acme", Repo: "fibo", GitRef: "refs/tags/v2.0.0"}
	require.NoError(t, p.Execute(context.Background(), run))

	graph := vocab.PartitionIRI("acme", "fibo", "v2.0.0")
	require.Contains(t, fs.puts, graph)
	assert.Contains(t, fs.puts[graph], "http://example.org/onto#Person")

	update := fs.lastUpdate()
	assert.Contains(t, update, vocab.StatusLoaded.IRI())
	assert.Contains(t, update, vocab.PropClassCount)
	assert.Contains(t, update, graph)
}

func TestPipelineLoadedWriteFailureMarksFailed(t *testing.T) {
	p, fs := newTestPipeline(t, githubFixture(map[string]string{
		"onto.ttl": testTurtle,
	}))
	fs.rejectContaining = vocab.StatusLoaded.IRI()

	run := Run{EventID: "ev-6", Owner: "acme", Repo: "fibo", GitRef: "refs/tags/v3.0.0"}
	err := p.Execute(context.Background(), run)
	require.Error(t, err)

	// The partition was published before the status write broke.
	graph := vocab.PartitionIRI("acme", "fibo", "v3.0.0")
	require.Contains(t, fs.puts, graph)

	// The entry still reaches a terminal state.
	update := fs.lastUpdate()
	assert.Contains(t, update, vocab.StatusFailed.IRI())
	assert.Contains(t, update, vocab.PropErrorMessage)
}

func TestPipelinePicksLexicographicFirst(t *testing.T) {
	p, fs := newTestPipeline(t, githubFixture(map[string]string{
		"z.ttl": "not valid turtle <<<",
		"a.ttl": testTurtle,
	}))

	run := Run{EventID: "ev-2", Owner: "acme", Repo: "fibo", GitRef: "v1"}
	require.NoError(t, p.Execute(context.Background(), run))
	assert.Contains(t, fs.lastUpdate(), vocab.StatusLoaded.IRI())
}

func TestPipelineParseFailureMarksFailed(t *testing.T) {
	p, fs := newTestPipeline(t, githubFixture(map[string]string{
		"onto.ttl": "this is not turtle <<<",
	}))

	run := Run{EventID: "ev-3", Owner: "acme", Repo: "fibo", GitRef: "v1"}
	err := p.Execute(context.Background(), run)
	require.Error(t, err)

	update := fs.lastUpdate()
	assert.Contains(t, update, vocab.StatusFailed.IRI())
	assert.Contains(t, update, vocab.PropErrorMessage)
}

func TestPipelineNoOntologyFiles(t *testing.T) {
	p, fs := newTestPipeline(t, githubFixture(map[string]string{
		"readme.md": "docs only",
	}))

	run := Run{EventID: "ev-4", Owner: "acme", Repo: "empty", GitRef: "v1"}
	err := p.Execute(context.Background(), run)
	require.Error(t, err)
	assert.Contains(t, fs.lastUpdate(), vocab.StatusFailed.IRI())
}

func TestPipelineValidationFailureMarksFailed(t *testing.T) {
	p, fs := newTestPipeline(t, githubFixture(map[string]string{
		"onto.ttl": `@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix ex: <http://example.org/onto#> .
ex:weird a owl:ObjectProperty, owl:DatatypeProperty .
`,
	}))

	run := Run{EventID: "ev-5", Owner: "acme", Repo: "fibo", GitRef: "v1"}
	err := p.Execute(context.Background(), run)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
	assert.Contains(t, fs.lastUpdate(), vocab.StatusFailed.IRI())
	// No graph write happens for an invalid document
	assert.Empty(t, fs.puts)
}

func TestVersionFromRef(t *testing.T) {
	cases := map[string]string{
		"refs/tags/v2.1.0": "v2.1.0",
		"refs/heads/main":  "main",
		"v1.0.0":           "v1.0.0",
		"HEAD":             "HEAD",
		"":                 "HEAD",
		"refs/tags/":       "HEAD",
	}
	for ref, want := range cases {
		assert.Equal(t, want, VersionFromRef(ref), "ref=%q", ref)
	}
}

func TestSelectOntologyFile(t *testing.T) {
	entries := []githubapi.TreeEntry{
		{Path: "src/z.ttl", Type: "blob"},
		{Path: "docs/readme.md", Type: "blob"},
		{Path: "a/model.owl", Type: "blob"},
	}
	path, err := selectOntologyFile(entries)
	require.NoError(t, err)
	assert.Equal(t, "a/model.owl", path)

	_, err = selectOntologyFile([]githubapi.TreeEntry{{Path: "x.md", Type: "blob"}})
	require.Error(t, err)
}

func TestHandlerRejectsBadPayload(t *testing.T) {
	h := NewHandler(nil)
	job, err := queue.NewJob(HandlerName, "x", []byte("{not json"))
	require.NoError(t, err)
	require.Error(t, h.Execute(context.Background(), job))

	job, err = queue.NewJob(HandlerName, "x", []byte(`{"owner":"acme"}`))
	require.NoError(t, err)
	require.Error(t, h.Execute(context.Background(), job))
}

func TestNewJobCarriesRun(t *testing.T) {
	run := Run{EventID: "ev-1", Owner: "acme", Repo: "fibo", GitRef: "v1"}
	job, err := NewJob(run)
	require.NoError(t, err)
	assert.Equal(t, HandlerName, job.HandlerName)
	assert.Equal(t, "acme/fibo", job.Source)
	assert.Contains(t, string(job.Payload), `"ev-1"`)
}

func TestRepoLockSerializes(t *testing.T) {
	locks := newRepoLock()
	var inCritical, maxInCritical int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.Lock("acme/fibo")
			defer unlock()
			mu.Lock()
			inCritical++
			if inCritical > maxInCritical {
				maxInCritical = inCritical
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inCritical--
			mu.Unlock()
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, maxInCritical)
}
