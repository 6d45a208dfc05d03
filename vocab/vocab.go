// Package vocab defines the RDF vocabulary the ingestion core leaves
// behind in the shared store: the registry graph, the ontoforge
// predicates, the ingestion status enumeration, and the deterministic
// addressing of per-version dataset partitions (named graphs).
//
// The discovery service reads the same vocabulary; changing a term here
// is a wire-format change.
package vocab

import (
	"net/url"
	"strings"
)

// Namespace is the base IRI prefix for ontoforge vocabulary terms.
const Namespace = "https://ontoforge.io/vocab#"

// RegistryGraph is the fixed named graph holding Registration and
// IngestionEvent records.
const RegistryGraph = "urn:ontoforge:registry"

// Entity class IRIs.
const (
	ClassRegistration   = Namespace + "Registration"
	ClassIngestionEvent = Namespace + "IngestionEvent"
)

// Property IRIs on Registration records.
const (
	PropRegisteredBy     = Namespace + "registeredBy"
	PropRepo             = Namespace + "githubRepo"
	PropWebhookID        = Namespace + "webhookId"
	PropWebhookSecretEnc = Namespace + "webhookSecretEnc"
	PropStatus           = Namespace + "status"
)

// Property IRIs on IngestionEvent records.
const (
	PropRegistration  = Namespace + "registration"
	PropGitRef        = Namespace + "gitRef"
	PropClassCount    = Namespace + "classCount"
	PropPropertyCount = Namespace + "propertyCount"
	PropPrefix        = Namespace + "prefix"
	PropNamedGraph    = Namespace + "namedGraph"
	PropErrorMessage  = Namespace + "errorMessage"
)

// DcCreated is the Dublin Core created property, used for record
// timestamps.
const DcCreated = "http://purl.org/dc/terms/created"

// Registration status values.
const (
	StatusActive = Namespace + "Active"
)

// IngestionStatus is the persisted status of an ingestion event. Queued
// is the only non-terminal value; Loaded and Failed are terminal and
// never rewritten.
type IngestionStatus string

const (
	StatusQueued IngestionStatus = "Queued"
	StatusLoaded IngestionStatus = "Loaded"
	StatusFailed IngestionStatus = "Failed"
)

// IRI returns the vocabulary IRI for a status value.
func (s IngestionStatus) IRI() string {
	return Namespace + string(s)
}

// Terminal reports whether the status is final for its event.
func (s IngestionStatus) Terminal() bool {
	return s == StatusLoaded || s == StatusFailed
}

// IsValidStatus returns true if the string names a known status.
func IsValidStatus(s string) bool {
	switch IngestionStatus(s) {
	case StatusQueued, StatusLoaded, StatusFailed:
		return true
	default:
		return false
	}
}

// RegistrationIRI returns the identifier of a repository registration.
func RegistrationIRI(owner, repo string) string {
	return "urn:ontoforge:registration:" + pathComponent(owner) + ":" + pathComponent(repo)
}

// EventIRI returns the identifier of an ingestion event.
func EventIRI(id string) string {
	return "urn:ontoforge:event:" + pathComponent(id)
}

// PartitionIRI returns the deterministic address of the dataset
// partition holding one (owner, repo, version) document. The same
// inputs always map to the same partition; writes to it are wholesale
// replacements.
func PartitionIRI(owner, repo, version string) string {
	return "urn:ontoforge:" + pathComponent(owner) + ":" + pathComponent(repo) + ":" + pathComponent(version)
}

// pathComponent percent-encodes anything that could break the urn or be
// abused to smuggle query text. Owner and repo names are already
// restricted by the source host; version strings (tags) are not.
func pathComponent(s string) string {
	// PathEscape leaves ':' alone; the urn uses ':' as its separator.
	return strings.ReplaceAll(url.PathEscape(s), ":", "%3A")
}
