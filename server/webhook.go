package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/ontoforge/ontoforge/auth"
	"github.com/ontoforge/ontoforge/errors"
	"github.com/ontoforge/ontoforge/ingest"
	"github.com/ontoforge/ontoforge/store"
)

// maxWebhookBody bounds how much of a delivery body is read.
const maxWebhookBody = 2 << 20

// webhookPayload is the subset of the delivery body the ingress needs.
type webhookPayload struct {
	Ref     string `json:"ref"`
	Release *struct {
		TagName string `json:"tag_name"`
	} `json:"release"`
}

// HandleWebhook is the ingress for push and release deliveries at
// POST /webhooks/{owner}/{repo}. Each gate is hard: the Queued ledger
// write must succeed before the job is enqueued, and the 202 never
// waits on pipeline work.
func (s *Server) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	owner := r.PathValue("owner")
	repo := r.PathValue("repo")

	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil || len(body) == 0 {
		writeError(w, http.StatusBadRequest, "missing request body")
		return
	}
	signature := r.Header.Get("X-Hub-Signature-256")
	if signature == "" {
		writeError(w, http.StatusBadRequest, "missing signature header")
		return
	}

	reg, err := s.store.GetRegistration(r.Context(), owner, repo)
	if err != nil {
		if errors.IsNotFound(err) {
			writeError(w, http.StatusNotFound, "repository is not registered")
			return
		}
		handleError(w, s.logger, err, "failed to load registration")
		return
	}

	secret, err := auth.Decrypt(reg.SecretEnc, s.cfg.Security.WebhookEncryptionKey)
	if err != nil {
		s.logger.Errorw("Failed to decrypt webhook secret", "owner", owner, "repo", repo, "error", err)
		writeError(w, http.StatusInternalServerError, "webhook secret unavailable")
		return
	}

	if !auth.VerifySignature(body, signature, secret) {
		s.logger.Warnw("Webhook signature mismatch",
			"owner", owner,
			"repo", repo,
			"event", r.Header.Get("X-GitHub-Event"),
			"remote", r.RemoteAddr)
		writeError(w, http.StatusUnauthorized, "signature verification failed")
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON payload")
		return
	}
	ref := payload.Ref
	if ref == "" && payload.Release != nil {
		ref = payload.Release.TagName
	}
	if ref == "" {
		ref = "HEAD"
	}

	event := &store.IngestionEvent{
		ID:           uuid.NewString(),
		Registration: reg.IRI,
		Owner:        owner,
		Repo:         repo,
		GitRef:       ref,
	}
	if err := s.store.CreateIngestionEvent(r.Context(), event); err != nil {
		handleError(w, s.logger, err, "failed to record ingestion event")
		return
	}

	job, err := ingest.NewJob(ingest.Run{
		EventID: event.ID,
		Owner:   owner,
		Repo:    repo,
		GitRef:  ref,
	})
	if err == nil {
		err = s.queue.Enqueue(job)
	}
	if err != nil {
		// The ledger entry exists; startup recovery cannot see it without
		// a job, so surface the enqueue failure to the sender for redelivery.
		handleError(w, s.logger, err, "failed to enqueue ingestion job")
		return
	}

	s.logger.Infow("Webhook accepted",
		"owner", owner,
		"repo", repo,
		"ref", ref,
		"event_id", event.ID,
		"job_id", job.ID)

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"accepted": true,
		"eventId":  event.ID,
	})
}
