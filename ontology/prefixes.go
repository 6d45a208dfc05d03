package ontology

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Prefix declarations are read from the source text rather than the
// decoded triples: decoders expand prefixed names and discard the
// declarations, but the discovery surface reports them as part of the
// ontology's footprint.
var (
	turtlePrefixRe = regexp.MustCompile(`(?mi)^\s*@?prefix\s+([A-Za-z][\w.-]*)?:\s*<([^>]*)>`)
	xmlnsPrefixRe  = regexp.MustCompile(`xmlns:([A-Za-z][\w.-]*)\s*=\s*["']([^"']*)["']`)
)

func extractPrefixes(data []byte, format Format) map[string]string {
	switch format {
	case FormatTurtle, FormatNTriples, FormatNQuads:
		return matchPrefixes(turtlePrefixRe, data)
	case FormatRDFXML:
		return matchPrefixes(xmlnsPrefixRe, data)
	case FormatJSONLD:
		return jsonldPrefixes(data)
	default:
		return nil
	}
}

func matchPrefixes(re *regexp.Regexp, data []byte) map[string]string {
	var prefixes map[string]string
	for _, m := range re.FindAllSubmatch(data, -1) {
		name := strings.TrimSpace(string(m[1]))
		if name == "" {
			continue
		}
		if prefixes == nil {
			prefixes = make(map[string]string)
		}
		prefixes[name] = string(m[2])
	}
	return prefixes
}

// jsonldPrefixes treats the top-level @context's string-valued keys as
// prefix declarations. Keyword entries and expanded term definitions
// are skipped.
func jsonldPrefixes(data []byte) map[string]string {
	var doc struct {
		Context map[string]json.RawMessage `json:"@context"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil
	}
	var prefixes map[string]string
	for key, raw := range doc.Context {
		if len(key) == 0 || key[0] == '@' {
			continue
		}
		var iri string
		if err := json.Unmarshal(raw, &iri); err != nil {
			continue
		}
		if prefixes == nil {
			prefixes = make(map[string]string)
		}
		prefixes[key] = iri
	}
	return prefixes
}
