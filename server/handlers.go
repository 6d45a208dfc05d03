package server

import (
	"net/http"
	"strconv"

	"github.com/ontoforge/ontoforge/internal/version"
	"github.com/ontoforge/ontoforge/queue"
)

const (
	defaultJobLimit = 50
	maxJobLimit     = 200
)

// HandleHealth serves the health probe with version info.
func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	info := version.Get()

	health := map[string]interface{}{
		"status":     "ok",
		"version":    info.Version,
		"commit":     info.CommitHash,
		"build_time": info.BuildTime,
	}
	if stats, err := s.queue.Stats(); err == nil {
		health["queue"] = stats
	}
	writeJSON(w, http.StatusOK, health)
}

// HandleEvent serves GET /api/events/{id}: one ledger entry.
func (s *Server) HandleEvent(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	parts := extractPathParts(r.URL.Path, "/api/events/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "Missing event ID")
		return
	}

	event, err := s.store.GetIngestionEvent(r.Context(), parts[0])
	if err != nil {
		handleError(w, s.logger, err, "failed to get ingestion event")
		return
	}
	writeJSON(w, http.StatusOK, event)
}

// HandleJobs serves GET /api/jobs: active plus recent terminal jobs.
func (s *Server) HandleJobs(w http.ResponseWriter, r *http.Request) {
	if !requireMethod(w, r, http.MethodGet) {
		return
	}
	limit := parseIntQueryParam(r, "limit", defaultJobLimit, 1, maxJobLimit)

	var allJobs []*queue.Job
	if active, err := s.queue.ListActiveJobs(limit); err != nil {
		s.logger.Warnw("Failed to list active jobs", "error", err)
	} else {
		allJobs = append(allJobs, active...)
	}
	for _, status := range []queue.JobStatus{queue.JobStatusCompleted, queue.JobStatusFailed} {
		st := status
		jobs, err := s.queue.ListJobs(&st, limit)
		if err != nil {
			s.logger.Warnw("Failed to list jobs", "status", st, "error", err)
			continue
		}
		allJobs = append(allJobs, jobs...)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs":  allJobs,
		"count": len(allJobs),
	})
}

// HandleJob serves /api/jobs/{id}: GET for details, DELETE to cancel
// and remove.
func (s *Server) HandleJob(w http.ResponseWriter, r *http.Request) {
	parts := extractPathParts(r.URL.Path, "/api/jobs/")
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, http.StatusBadRequest, "Missing job ID")
		return
	}
	jobID := parts[0]

	switch r.Method {
	case http.MethodGet:
		job, err := s.queue.GetJob(jobID)
		if err != nil {
			handleError(w, s.logger, err, "failed to get job")
			return
		}
		writeJSON(w, http.StatusOK, job)
	case http.MethodDelete:
		if err := s.queue.DeleteJob(jobID); err != nil {
			handleError(w, s.logger, err, "failed to delete job")
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"id": jobID, "status": "deleted"})
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func parseIntQueryParam(r *http.Request, name string, def, min, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < min {
		return def
	}
	if n > max {
		return max
	}
	return n
}
