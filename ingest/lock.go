package ingest

import "sync"

// repoLock serializes pipeline runs per repository. Two deliveries for
// the same repo must not interleave their graph writes; deliveries for
// different repos run concurrently.
type repoLock struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newRepoLock() *repoLock {
	return &repoLock{locks: make(map[string]*sync.Mutex)}
}

func (r *repoLock) Lock(key string) func() {
	r.mu.Lock()
	m, ok := r.locks[key]
	if !ok {
		m = &sync.Mutex{}
		r.locks[key] = m
	}
	r.mu.Unlock()

	m.Lock()
	return m.Unlock
}
