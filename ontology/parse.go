package ontology

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/knakk/rdf"
	"github.com/piprate/json-gold/ld"

	"github.com/ontoforge/ontoforge/errors"
)

// ParseError reports a syntactically invalid ontology document. It is a
// terminal, caller-attributable failure; the pipeline records it and
// does not retry.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parsing %s document: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse decodes data in the given format into a Document. An
// unrecognized format tag is parsed as Turtle. The returned document
// carries the prefixes declared in the source text; an empty triple
// set is returned without error and left to validation.
func Parse(data []byte, format Format) (*Document, error) {
	if !format.Known() {
		format = FormatTurtle
	}
	triples, err := decodeTriples(data, format)
	if err != nil {
		return nil, &ParseError{Format: format, Err: err}
	}
	return &Document{
		Triples:  triples,
		Prefixes: extractPrefixes(data, format),
	}, nil
}

// ParseFile decodes data using the format detected from the file path.
func ParseFile(path string, data []byte) (*Document, error) {
	format, ok := DetectFormat(path)
	if !ok {
		return nil, errors.Mark(errors.Newf("no ontology parser for %q", path), errors.ErrInvalidRequest)
	}
	return Parse(data, format)
}

func decodeTriples(data []byte, format Format) ([]rdf.Triple, error) {
	switch format {
	case FormatTurtle:
		return decodeAll(data, rdf.Turtle)
	case FormatRDFXML:
		return decodeAll(data, rdf.RDFXML)
	case FormatNTriples:
		return decodeAll(data, rdf.NTriples)
	case FormatNQuads:
		return decodeQuads(data)
	case FormatJSONLD:
		return decodeJSONLD(data)
	default:
		return decodeAll(data, rdf.Turtle)
	}
}

func decodeAll(data []byte, format rdf.Format) ([]rdf.Triple, error) {
	dec := rdf.NewTripleDecoder(bytes.NewReader(data), format)
	return dec.DecodeAll()
}

// decodeQuads flattens a quad stream into triples, dropping the graph
// component. Used for N-Quads and the TriG documents we accept.
func decodeQuads(data []byte) ([]rdf.Triple, error) {
	dec := rdf.NewQuadDecoder(bytes.NewReader(data), rdf.NQuads)
	quads, err := dec.DecodeAll()
	if err != nil {
		return nil, err
	}
	triples := make([]rdf.Triple, 0, len(quads))
	for _, q := range quads {
		triples = append(triples, q.Triple)
	}
	return triples, nil
}

// decodeJSONLD expands a JSON-LD document to N-Quads and decodes those.
func decodeJSONLD(data []byte) ([]rdf.Triple, error) {
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "invalid JSON")
	}
	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")
	opts.Format = "application/n-quads"
	out, err := proc.ToRDF(doc, opts)
	if err != nil {
		return nil, errors.Wrap(err, "JSON-LD to RDF")
	}
	nquads, ok := out.(string)
	if !ok {
		return nil, errors.Newf("unexpected JSON-LD serialization type %T", out)
	}
	if strings.TrimSpace(nquads) == "" {
		return nil, nil
	}
	return decodeQuads([]byte(nquads))
}
