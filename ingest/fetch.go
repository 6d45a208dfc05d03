package ingest

import (
	"context"
	"sort"
	"strings"

	"github.com/ontoforge/ontoforge/errors"
	"github.com/ontoforge/ontoforge/githubapi"
	"github.com/ontoforge/ontoforge/ontology"
)

// VersionFromRef maps a git ref to the version component of the dataset
// partition. Tag and branch prefixes are stripped; anything else (a
// bare tag name, a SHA, "HEAD") passes through unchanged.
func VersionFromRef(ref string) string {
	ref = strings.TrimPrefix(ref, "refs/tags/")
	ref = strings.TrimPrefix(ref, "refs/heads/")
	if ref == "" {
		return "HEAD"
	}
	return ref
}

// selectOntologyFile picks the document to ingest from a tree listing:
// the recognized ontology file first in lexicographic path order.
// Returns ErrNotFound when the tree has no ontology files.
func selectOntologyFile(entries []githubapi.TreeEntry) (string, error) {
	var candidates []string
	for _, e := range entries {
		if ontology.IsOntologyFile(e.Path) {
			candidates = append(candidates, e.Path)
		}
	}
	if len(candidates) == 0 {
		return "", errors.Mark(errors.New("repository contains no ontology files"), errors.ErrNotFound)
	}
	sort.Strings(candidates)
	return candidates[0], nil
}

// fetchDocument locates and downloads the ontology source for a ref.
func (p *Pipeline) fetchDocument(ctx context.Context, owner, repo, ref string) (path string, data []byte, err error) {
	entries, err := p.github.ListTree(ctx, owner, repo, ref)
	if err != nil {
		return "", nil, err
	}
	path, err = selectOntologyFile(entries)
	if err != nil {
		return "", nil, err
	}
	data, err = p.github.FetchRaw(ctx, owner, repo, ref, path)
	if err != nil {
		return "", nil, err
	}
	return path, data, nil
}
