package ontology

import (
	"path"
	"strings"
)

// Format identifies an ontology serialization.
type Format string

const (
	FormatTurtle   Format = "turtle"
	FormatRDFXML   Format = "rdfxml"
	FormatNTriples Format = "ntriples"
	FormatNQuads   Format = "nquads"
	FormatJSONLD   Format = "jsonld"
)

// formatByExtension maps recognized file extensions to the parser
// format used for them. N3 is handled by the Turtle parser (the
// documents we ingest use the Turtle-compatible subset) and TriG by the
// N-Quads parser with the graph component dropped. Only the
// N-Quads-compatible subset of TriG is accepted: a .trig file using
// @prefix directives or GRAPH {} blocks fails at parse rather than
// being partially ingested.
var formatByExtension = map[string]Format{
	".ttl":    FormatTurtle,
	".owl":    FormatRDFXML,
	".rdf":    FormatRDFXML,
	".n3":     FormatTurtle,
	".nt":     FormatNTriples,
	".nq":     FormatNQuads,
	".trig":   FormatNQuads,
	".jsonld": FormatJSONLD,
}

// Known reports whether f is one of the recognized format tags.
func (f Format) Known() bool {
	switch f {
	case FormatTurtle, FormatRDFXML, FormatNTriples, FormatNQuads, FormatJSONLD:
		return true
	}
	return false
}

// DetectFormat returns the parser format for a file path, or false if
// the extension is not a recognized ontology serialization.
func DetectFormat(p string) (Format, bool) {
	f, ok := formatByExtension[strings.ToLower(path.Ext(p))]
	return f, ok
}

// IsOntologyFile reports whether the path carries a recognized
// ontology extension.
func IsOntologyFile(p string) bool {
	_, ok := DetectFormat(p)
	return ok
}

// Extensions returns the recognized extensions, for diagnostics.
func Extensions() []string {
	out := make([]string, 0, len(formatByExtension))
	for ext := range formatByExtension {
		out = append(out, ext)
	}
	return out
}
