package ontology

import "github.com/knakk/rdf"

// Metrics is the summary recorded on a successfully loaded ontology.
type Metrics struct {
	ClassCount    int      `json:"classCount"`
	PropertyCount int      `json:"propertyCount"`
	Prefixes      []string `json:"prefixes"`
}

// Summarize derives load metrics from a validated document. Counts are
// over distinct subjects; a subject typed as both kinds of property is
// counted once.
func Summarize(doc *Document) Metrics {
	classes := make(map[string]struct{})
	properties := make(map[string]struct{})
	for _, t := range doc.Triples {
		if t.Pred.String() != rdfType || t.Obj.Type() != rdf.TermIRI {
			continue
		}
		switch t.Obj.String() {
		case owlClass:
			classes[t.Subj.String()] = struct{}{}
		case owlObjectProperty, owlDatatypeProperty:
			properties[t.Subj.String()] = struct{}{}
		}
	}
	return Metrics{
		ClassCount:    len(classes),
		PropertyCount: len(properties),
		Prefixes:      doc.PrefixNames(),
	}
}
