package ontology

import (
	"fmt"
	"strings"

	"github.com/knakk/rdf"
)

// Violation is a single structural problem found in a document. Rule is
// a stable machine-readable identifier; Message is for humans.
type Violation struct {
	Rule    string `json:"rule"`
	Message string `json:"message"`
	Subject string `json:"subject,omitempty"`
}

// ValidationError reports a document that parsed but fails structural
// validation. All violations are collected before returning; order is
// deterministic (rule order, then document order).
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 1 {
		return "validation failed: " + e.Violations[0].Message
	}
	return fmt.Sprintf("validation failed with %d violations (first: %s)",
		len(e.Violations), e.Violations[0].Message)
}

const (
	RuleNonEmpty      = "non-empty-graph"
	RuleAbsoluteIRI   = "absolute-iri"
	RuleTypeIsIRI     = "type-object-is-iri"
	RuleDisjointProps = "disjoint-property-kinds"
	RuleClassNotProp  = "class-not-property"
)

// Validate checks the structural rules every ingested ontology must
// satisfy. A nil return means the document is admissible.
func Validate(doc *Document) error {
	var violations []Violation

	if len(doc.Triples) == 0 {
		violations = append(violations, Violation{
			Rule:    RuleNonEmpty,
			Message: "document contains no triples",
		})
		return &ValidationError{Violations: violations}
	}

	violations = append(violations, checkAbsoluteIRIs(doc.Triples)...)
	violations = append(violations, checkTypeObjects(doc.Triples)...)
	violations = append(violations, checkTermKinds(doc.Triples)...)

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

func checkAbsoluteIRIs(triples []rdf.Triple) []Violation {
	var out []Violation
	seen := make(map[string]struct{})
	report := func(iri string) {
		if _, ok := seen[iri]; ok {
			return
		}
		seen[iri] = struct{}{}
		out = append(out, Violation{
			Rule:    RuleAbsoluteIRI,
			Message: fmt.Sprintf("relative IRI %q", iri),
			Subject: iri,
		})
	}
	for _, t := range triples {
		for _, term := range []rdf.Term{t.Subj, t.Pred, t.Obj} {
			if term.Type() == rdf.TermIRI && !isAbsoluteIRI(term.String()) {
				report(term.String())
			}
		}
	}
	return out
}

func checkTypeObjects(triples []rdf.Triple) []Violation {
	var out []Violation
	for _, t := range triples {
		if t.Pred.String() == rdfType && t.Obj.Type() == rdf.TermLiteral {
			out = append(out, Violation{
				Rule:    RuleTypeIsIRI,
				Message: fmt.Sprintf("rdf:type of %s has literal object %q", t.Subj.String(), t.Obj.String()),
				Subject: t.Subj.String(),
			})
		}
	}
	return out
}

// checkTermKinds enforces that no term is typed as both an object and a
// datatype property, and that no class is also declared a property.
func checkTermKinds(triples []rdf.Triple) []Violation {
	classes := make(map[string]struct{})
	objProps := make(map[string]struct{})
	dataProps := make(map[string]struct{})
	var order []string
	mark := func(m map[string]struct{}, subj string) {
		if _, seenAnywhere := classes[subj]; !seenAnywhere {
			if _, ok := objProps[subj]; !ok {
				if _, ok := dataProps[subj]; !ok {
					order = append(order, subj)
				}
			}
		}
		m[subj] = struct{}{}
	}
	for _, t := range triples {
		if t.Pred.String() != rdfType || t.Obj.Type() != rdf.TermIRI {
			continue
		}
		subj := t.Subj.String()
		switch t.Obj.String() {
		case owlClass:
			mark(classes, subj)
		case owlObjectProperty:
			mark(objProps, subj)
		case owlDatatypeProperty:
			mark(dataProps, subj)
		}
	}

	var out []Violation
	for _, subj := range order {
		_, isObj := objProps[subj]
		_, isData := dataProps[subj]
		_, isClass := classes[subj]
		if isObj && isData {
			out = append(out, Violation{
				Rule:    RuleDisjointProps,
				Message: fmt.Sprintf("%s is declared both owl:ObjectProperty and owl:DatatypeProperty", subj),
				Subject: subj,
			})
		}
		if isClass && (isObj || isData) {
			out = append(out, Violation{
				Rule:    RuleClassNotProp,
				Message: fmt.Sprintf("%s is declared both owl:Class and a property", subj),
				Subject: subj,
			})
		}
	}
	return out
}

// isAbsoluteIRI reports whether s begins with a URI scheme.
func isAbsoluteIRI(s string) bool {
	i := strings.IndexByte(s, ':')
	if i < 1 {
		return false
	}
	for j, r := range s[:i] {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case j > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}
