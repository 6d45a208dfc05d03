package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/knakk/rdf"

	"github.com/ontoforge/ontoforge/errors"
	"github.com/ontoforge/ontoforge/logger"
	"github.com/ontoforge/ontoforge/ontology"
	"github.com/ontoforge/ontoforge/vocab"
)

const xsdDateTime = "http://www.w3.org/2001/XMLSchema#dateTime"

// CreateRegistration writes a new repository registration to the
// registry graph.
func (s *Store) CreateRegistration(ctx context.Context, reg *Registration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if reg.IRI == "" {
		reg.IRI = vocab.RegistrationIRI(reg.Owner, reg.Repo)
	}
	if reg.Status == "" {
		reg.Status = vocab.StatusActive
	}
	if reg.Created.IsZero() {
		reg.Created = time.Now().UTC()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT DATA { GRAPH <%s> {\n", vocab.RegistryGraph)
	fmt.Fprintf(&sb, "<%s> a <%s> ;\n", reg.IRI, vocab.ClassRegistration)
	fmt.Fprintf(&sb, "  <%s> %s ;\n", vocab.PropRepo, literal(reg.Owner+"/"+reg.Repo))
	if reg.RegisteredBy != "" {
		fmt.Fprintf(&sb, "  <%s> %s ;\n", vocab.PropRegisteredBy, literal(reg.RegisteredBy))
	}
	if reg.WebhookID != "" {
		fmt.Fprintf(&sb, "  <%s> %s ;\n", vocab.PropWebhookID, literal(reg.WebhookID))
	}
	fmt.Fprintf(&sb, "  <%s> %s ;\n", vocab.PropWebhookSecretEnc, literal(reg.SecretEnc))
	fmt.Fprintf(&sb, "  <%s> <%s> ;\n", vocab.PropStatus, reg.Status)
	fmt.Fprintf(&sb, "  <%s> %s .\n", vocab.DcCreated, dateTime(reg.Created))
	sb.WriteString("} }")

	if err := s.update.Update(sb.String()); err != nil {
		return errors.Mark(errors.Wrap(err, "creating registration"), errors.ErrUpstream)
	}
	logger.Logger.Infow("registration created", "owner", reg.Owner, "repo", reg.Repo)
	return nil
}

// GetRegistration loads the active registration for a repository.
// Returns ErrNotFound when the repository has never been registered.
func (s *Store) GetRegistration(ctx context.Context, owner, repo string) (*Registration, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT ?reg ?registeredBy ?webhookId ?secretEnc ?created WHERE {
  GRAPH <%s> {
    ?reg a <%s> ;
      <%s> %s ;
      <%s> <%s> ;
      <%s> ?secretEnc .
    OPTIONAL { ?reg <%s> ?registeredBy }
    OPTIONAL { ?reg <%s> ?webhookId }
    OPTIONAL { ?reg <%s> ?created }
  }
} LIMIT 1`,
		vocab.RegistryGraph,
		vocab.ClassRegistration,
		vocab.PropRepo, literal(owner+"/"+repo),
		vocab.PropStatus, vocab.StatusActive,
		vocab.PropWebhookSecretEnc,
		vocab.PropRegisteredBy,
		vocab.PropWebhookID,
		vocab.DcCreated)

	res, err := s.query.Query(q)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "querying registration"), errors.ErrUpstream)
	}
	solutions := res.Solutions()
	if len(solutions) == 0 {
		return nil, errors.Mark(errors.Newf("no registration for %s/%s", owner, repo), errors.ErrNotFound)
	}
	sol := solutions[0]
	reg := &Registration{
		IRI:          termString(sol, "reg"),
		Owner:        owner,
		Repo:         repo,
		RegisteredBy: termString(sol, "registeredBy"),
		WebhookID:    termString(sol, "webhookId"),
		SecretEnc:    termString(sol, "secretEnc"),
		Status:       vocab.StatusActive,
		Created:      termTime(sol, "created"),
	}
	return reg, nil
}

// CreateIngestionEvent appends a Queued ledger entry. The write must
// succeed before the event is handed to the pipeline; an accepted
// delivery is never invisible.
func (s *Store) CreateIngestionEvent(ctx context.Context, ev *IngestionEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if ev.Created.IsZero() {
		ev.Created = time.Now().UTC()
	}
	ev.Status = vocab.StatusQueued

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT DATA { GRAPH <%s> {\n", vocab.RegistryGraph)
	fmt.Fprintf(&sb, "<%s> a <%s> ;\n", ev.IRI(), vocab.ClassIngestionEvent)
	fmt.Fprintf(&sb, "  <%s> <%s> ;\n", vocab.PropRegistration, ev.Registration)
	fmt.Fprintf(&sb, "  <%s> %s ;\n", vocab.PropRepo, literal(ev.Owner+"/"+ev.Repo))
	fmt.Fprintf(&sb, "  <%s> %s ;\n", vocab.PropGitRef, literal(ev.GitRef))
	fmt.Fprintf(&sb, "  <%s> <%s> ;\n", vocab.PropStatus, vocab.StatusQueued.IRI())
	fmt.Fprintf(&sb, "  <%s> %s .\n", vocab.DcCreated, dateTime(ev.Created))
	sb.WriteString("} }")

	if err := s.update.Update(sb.String()); err != nil {
		return errors.Mark(errors.Wrap(err, "recording ingestion event"), errors.ErrUpstream)
	}
	return nil
}

// MarkLoaded transitions an event from Queued to Loaded and records the
// load metrics and target partition. The transition is guarded on the
// current status: a terminal event is never rewritten, so a lost race
// is a no-op.
func (s *Store) MarkLoaded(ctx context.Context, eventID string, m ontology.Metrics, namedGraph string) error {
	var extra strings.Builder
	iri := vocab.EventIRI(eventID)
	fmt.Fprintf(&extra, "<%s> <%s> %d .\n", iri, vocab.PropClassCount, m.ClassCount)
	fmt.Fprintf(&extra, "<%s> <%s> %d .\n", iri, vocab.PropPropertyCount, m.PropertyCount)
	for _, p := range m.Prefixes {
		fmt.Fprintf(&extra, "<%s> <%s> %s .\n", iri, vocab.PropPrefix, literal(p))
	}
	if namedGraph != "" {
		fmt.Fprintf(&extra, "<%s> <%s> <%s> .\n", iri, vocab.PropNamedGraph, namedGraph)
	}
	return s.transition(ctx, eventID, vocab.StatusLoaded, extra.String())
}

// MarkFailed transitions an event from Queued to Failed, recording the
// failure message. Guarded the same way as MarkLoaded.
func (s *Store) MarkFailed(ctx context.Context, eventID, message string) error {
	extra := fmt.Sprintf("<%s> <%s> %s .\n",
		vocab.EventIRI(eventID), vocab.PropErrorMessage, literal(message))
	return s.transition(ctx, eventID, vocab.StatusFailed, extra)
}

func (s *Store) transition(ctx context.Context, eventID string, to vocab.IngestionStatus, extraTriples string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	iri := vocab.EventIRI(eventID)
	q := fmt.Sprintf(`DELETE { GRAPH <%[1]s> { <%[2]s> <%[3]s> <%[4]s> } }
INSERT { GRAPH <%[1]s> { <%[2]s> <%[3]s> <%[5]s> .
%[6]s } }
WHERE  { GRAPH <%[1]s> { <%[2]s> <%[3]s> <%[4]s> } }`,
		vocab.RegistryGraph, iri, vocab.PropStatus,
		vocab.StatusQueued.IRI(), to.IRI(), extraTriples)

	if err := s.update.Update(q); err != nil {
		return errors.Mark(errors.Wrapf(err, "transitioning event %s to %s", eventID, to), errors.ErrUpstream)
	}
	logger.Logger.Infow("ingestion event updated", "event_id", eventID, "status", to)
	return nil
}

// GetIngestionEvent loads one ledger entry by its identifier.
func (s *Store) GetIngestionEvent(ctx context.Context, eventID string) (*IngestionEvent, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	iri := vocab.EventIRI(eventID)
	q := fmt.Sprintf(`SELECT ?registration ?repo ?gitRef ?status ?error ?classCount ?propertyCount ?namedGraph ?created
  (GROUP_CONCAT(?prefix; separator=",") AS ?prefixes) WHERE {
  GRAPH <%s> {
    <%s> a <%s> ;
      <%s> ?registration ;
      <%s> ?repo ;
      <%s> ?gitRef ;
      <%s> ?status ;
      <%s> ?created .
    OPTIONAL { <%[2]s> <%[9]s> ?error }
    OPTIONAL { <%[2]s> <%[10]s> ?classCount }
    OPTIONAL { <%[2]s> <%[11]s> ?propertyCount }
    OPTIONAL { <%[2]s> <%[12]s> ?namedGraph }
    OPTIONAL { <%[2]s> <%[13]s> ?prefix }
  }
} GROUP BY ?registration ?repo ?gitRef ?status ?error ?classCount ?propertyCount ?namedGraph ?created`,
		vocab.RegistryGraph, iri, vocab.ClassIngestionEvent,
		vocab.PropRegistration, vocab.PropRepo, vocab.PropGitRef,
		vocab.PropStatus, vocab.DcCreated,
		vocab.PropErrorMessage, vocab.PropClassCount, vocab.PropPropertyCount,
		vocab.PropNamedGraph, vocab.PropPrefix)

	res, err := s.query.Query(q)
	if err != nil {
		return nil, errors.Mark(errors.Wrap(err, "querying ingestion event"), errors.ErrUpstream)
	}
	solutions := res.Solutions()
	if len(solutions) == 0 {
		return nil, errors.Mark(errors.Newf("no ingestion event %s", eventID), errors.ErrNotFound)
	}
	sol := solutions[0]

	owner, repo := splitRepo(termString(sol, "repo"))
	ev := &IngestionEvent{
		ID:           eventID,
		Registration: termString(sol, "registration"),
		Owner:        owner,
		Repo:         repo,
		GitRef:       termString(sol, "gitRef"),
		Status:       statusFromIRI(termString(sol, "status")),
		Error:        termString(sol, "error"),
		NamedGraph:   termString(sol, "namedGraph"),
		Created:      termTime(sol, "created"),
	}
	if ev.Status == vocab.StatusLoaded {
		m := &ontology.Metrics{
			ClassCount:    termInt(sol, "classCount"),
			PropertyCount: termInt(sol, "propertyCount"),
		}
		if joined := termString(sol, "prefixes"); joined != "" {
			m.Prefixes = ontology.PrefixSet(strings.Split(joined, ","))
		}
		ev.Metrics = m
	}
	return ev, nil
}

func literal(s string) string {
	return `"` + vocab.EscapeLiteral(s) + `"`
}

func dateTime(t time.Time) string {
	return fmt.Sprintf("%q^^<%s>", t.UTC().Format(time.RFC3339), xsdDateTime)
}

func termString(sol map[string]rdf.Term, key string) string {
	t, ok := sol[key]
	if !ok || t == nil {
		return ""
	}
	return t.String()
}

func termInt(sol map[string]rdf.Term, key string) int {
	n, err := strconv.Atoi(termString(sol, key))
	if err != nil {
		return 0
	}
	return n
}

func termTime(sol map[string]rdf.Term, key string) time.Time {
	t, err := time.Parse(time.RFC3339, termString(sol, key))
	if err != nil {
		return time.Time{}
	}
	return t
}

func statusFromIRI(iri string) vocab.IngestionStatus {
	s := vocab.IngestionStatus(strings.TrimPrefix(iri, vocab.Namespace))
	if !vocab.IsValidStatus(string(s)) {
		return ""
	}
	return s
}

func splitRepo(full string) (owner, repo string) {
	owner, repo, _ = strings.Cut(full, "/")
	return owner, repo
}
