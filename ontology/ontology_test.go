package ontology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const turtleDoc = `@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix ex: <http://example.org/onto#> .
ex:Person a owl:Class .
ex:Organization a owl:Class .
ex:knows a owl:ObjectProperty .
ex:name a owl:DatatypeProperty .
`

func TestDetectFormat(t *testing.T) {
	cases := map[string]Format{
		"onto.ttl":        FormatTurtle,
		"dir/schema.OWL":  FormatRDFXML,
		"model.rdf":       FormatRDFXML,
		"a.n3":            FormatTurtle,
		"a.nt":            FormatNTriples,
		"a.nq":            FormatNQuads,
		"a.trig":          FormatNQuads,
		"context.jsonld":  FormatJSONLD,
		"nested/deep.ttl": FormatTurtle,
	}
	for p, want := range cases {
		got, ok := DetectFormat(p)
		require.True(t, ok, p)
		assert.Equal(t, want, got, p)
	}

	for _, p := range []string{"readme.md", "onto.ttl.bak", "noext", "a.json"} {
		_, ok := DetectFormat(p)
		assert.False(t, ok, p)
	}
}

func TestParseTurtle(t *testing.T) {
	doc, err := Parse([]byte(turtleDoc), FormatTurtle)
	require.NoError(t, err)
	assert.Len(t, doc.Triples, 4)
	assert.Equal(t, map[string]string{
		"owl": "http://www.w3.org/2002/07/owl#",
		"ex":  "http://example.org/onto#",
	}, doc.Prefixes)
	assert.Equal(t, []string{"ex", "owl"}, doc.PrefixNames())
}

func TestParseTurtleSyntaxError(t *testing.T) {
	_, err := Parse([]byte("this is not turtle <<<"), FormatTurtle)
	require.Error(t, err)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, FormatTurtle, perr.Format)
}

func TestParseUnknownFormatFallsBackToTurtle(t *testing.T) {
	doc, err := Parse([]byte(turtleDoc), Format("application/octet-stream"))
	require.NoError(t, err)
	assert.Len(t, doc.Triples, 4)
	assert.Equal(t, []string{"ex", "owl"}, doc.PrefixNames())
}

func TestParseNTriples(t *testing.T) {
	doc, err := Parse([]byte(
		"<http://example.org/a> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> .\n",
	), FormatNTriples)
	require.NoError(t, err)
	assert.Len(t, doc.Triples, 1)
	assert.Empty(t, doc.Prefixes)
}

func TestParseTrigNQuadsSubset(t *testing.T) {
	data := []byte("<http://example.org/a> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Class> <http://example.org/g> .\n")
	doc, err := ParseFile("model.trig", data)
	require.NoError(t, err)
	require.Len(t, doc.Triples, 1)
	// The graph component is dropped on the way in.
	assert.Equal(t, "http://example.org/a", doc.Triples[0].Subj.String())
}

func TestParseTrigWithPrefixedSyntaxRejected(t *testing.T) {
	data := []byte(`@prefix ex: <http://example.org/> .
GRAPH ex:g { ex:a a ex:Thing . }
`)
	_, err := ParseFile("model.trig", data)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, FormatNQuads, perr.Format)
}

func TestParseJSONLD(t *testing.T) {
	data := []byte(`{
  "@context": {
    "owl": "http://www.w3.org/2002/07/owl#",
    "ex": "http://example.org/onto#"
  },
  "@id": "ex:Person",
  "@type": "owl:Class"
}`)
	doc, err := Parse(data, FormatJSONLD)
	require.NoError(t, err)
	require.Len(t, doc.Triples, 1)
	assert.Equal(t, map[string]string{
		"owl": "http://www.w3.org/2002/07/owl#",
		"ex":  "http://example.org/onto#",
	}, doc.Prefixes)
}

func TestParseJSONLDInvalidJSON(t *testing.T) {
	_, err := Parse([]byte("{not json"), FormatJSONLD)
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
}

func TestParseFileUnknownExtension(t *testing.T) {
	_, err := ParseFile("notes.txt", []byte("x"))
	require.Error(t, err)
}

func TestValidateAccepts(t *testing.T) {
	doc, err := Parse([]byte(turtleDoc), FormatTurtle)
	require.NoError(t, err)
	assert.NoError(t, Validate(doc))
}

func TestValidateEmptyGraph(t *testing.T) {
	err := Validate(&Document{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, RuleNonEmpty, verr.Violations[0].Rule)
}

func TestValidateDisjointPropertyKinds(t *testing.T) {
	src := `@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix ex: <http://example.org/onto#> .
ex:weird a owl:ObjectProperty, owl:DatatypeProperty .
`
	doc, err := Parse([]byte(src), FormatTurtle)
	require.NoError(t, err)
	verr := new(ValidationError)
	require.ErrorAs(t, Validate(doc), &verr)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, RuleDisjointProps, verr.Violations[0].Rule)
	assert.Equal(t, "http://example.org/onto#weird", verr.Violations[0].Subject)
}

func TestValidateClassAlsoProperty(t *testing.T) {
	src := `@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix ex: <http://example.org/onto#> .
ex:Thing a owl:Class, owl:ObjectProperty .
`
	doc, err := Parse([]byte(src), FormatTurtle)
	require.NoError(t, err)
	verr := new(ValidationError)
	require.ErrorAs(t, Validate(doc), &verr)
	require.Len(t, verr.Violations, 1)
	assert.Equal(t, RuleClassNotProp, verr.Violations[0].Rule)
}

func TestSummarize(t *testing.T) {
	doc, err := Parse([]byte(turtleDoc), FormatTurtle)
	require.NoError(t, err)
	m := Summarize(doc)
	assert.Equal(t, 2, m.ClassCount)
	assert.Equal(t, 2, m.PropertyCount)
	assert.Equal(t, []string{"ex", "owl"}, m.Prefixes)
}

func TestSummarizeCountsSubjectsOnce(t *testing.T) {
	src := `@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix ex: <http://example.org/onto#> .
ex:Person a owl:Class .
ex:Person a owl:Class .
ex:knows a owl:ObjectProperty .
`
	doc, err := Parse([]byte(src), FormatTurtle)
	require.NoError(t, err)
	m := Summarize(doc)
	assert.Equal(t, 1, m.ClassCount)
	assert.Equal(t, 1, m.PropertyCount)
}

func TestNTriplesRoundTrip(t *testing.T) {
	doc, err := Parse([]byte(turtleDoc), FormatTurtle)
	require.NoError(t, err)
	nt := doc.NTriples()
	again, err := Parse([]byte(nt), FormatNTriples)
	require.NoError(t, err)
	assert.Len(t, again.Triples, len(doc.Triples))
}

func TestIsAbsoluteIRI(t *testing.T) {
	assert.True(t, isAbsoluteIRI("https://example.org/x"))
	assert.True(t, isAbsoluteIRI("urn:onto:x"))
	assert.False(t, isAbsoluteIRI("relative/path"))
	assert.False(t, isAbsoluteIRI("#frag"))
	assert.False(t, isAbsoluteIRI(":noscheme"))
}
