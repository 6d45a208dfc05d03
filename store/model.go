// Package store is the persistence layer over the SPARQL endpoint. The
// registry graph holds repository registrations and the ingestion event
// ledger; ontology documents themselves live in per-version dataset
// partitions written through the graph store protocol.
package store

import (
	"time"

	"github.com/ontoforge/ontoforge/ontology"
	"github.com/ontoforge/ontoforge/vocab"
)

// Registration binds a source repository to the service. SecretEnc is
// the webhook secret encrypted at rest; it is never exposed through the
// API surface.
type Registration struct {
	IRI          string    `json:"iri"`
	Owner        string    `json:"owner"`
	Repo         string    `json:"repo"`
	RegisteredBy string    `json:"registeredBy,omitempty"`
	WebhookID    string    `json:"webhookId,omitempty"`
	SecretEnc    string    `json:"-"`
	Status       string    `json:"status"`
	Created      time.Time `json:"created"`
}

// IngestionEvent is one ledger entry: a webhook delivery accepted for
// processing and its eventual outcome. Metrics and NamedGraph are set
// only once the event reaches Loaded.
type IngestionEvent struct {
	ID           string                `json:"id"`
	Registration string                `json:"registration"`
	Owner        string                `json:"owner"`
	Repo         string                `json:"repo"`
	GitRef       string                `json:"gitRef"`
	Status       vocab.IngestionStatus `json:"status"`
	Error        string                `json:"error,omitempty"`
	Metrics      *ontology.Metrics     `json:"metrics,omitempty"`
	NamedGraph   string                `json:"namedGraph,omitempty"`
	Created      time.Time             `json:"created"`
}

// IRI returns the event's identifier in the registry graph.
func (e *IngestionEvent) IRI() string {
	return vocab.EventIRI(e.ID)
}
