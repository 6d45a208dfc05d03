package ontology

// Well-known RDF and OWL terms consulted during validation and
// summarization.
const (
	rdfType             = "http://www.w3.org/1999/02/22-rdf-syntax-ns#type"
	owlClass            = "http://www.w3.org/2002/07/owl#Class"
	owlObjectProperty   = "http://www.w3.org/2002/07/owl#ObjectProperty"
	owlDatatypeProperty = "http://www.w3.org/2002/07/owl#DatatypeProperty"
)
