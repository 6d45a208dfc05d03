// Package ontology parses, validates and summarizes ontology documents.
// Input bytes in any supported serialization are decoded into a flat
// triple set; downstream code only ever sees the parsed Document.
package ontology

import (
	"sort"
	"strings"

	"github.com/knakk/rdf"
)

// Document is a parsed ontology: its triples plus the namespace
// prefixes declared in the source text, mapped to the IRIs they bind.
// Prefixes are kept separately because most serializations lose them
// during decoding.
type Document struct {
	Triples  []rdf.Triple
	Prefixes map[string]string
}

// PrefixNames returns the declared prefix names, sorted.
func (d *Document) PrefixNames() []string {
	names := make([]string, 0, len(d.Prefixes))
	for n := range d.Prefixes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// PrefixSet deduplicates and sorts prefix names into the stored form.
func PrefixSet(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// NTriples serializes the document's triples in N-Triples form, the
// canonical payload for graph store writes.
func (d *Document) NTriples() string {
	var sb strings.Builder
	for _, t := range d.Triples {
		sb.WriteString(t.Serialize(rdf.NTriples))
	}
	return sb.String()
}
