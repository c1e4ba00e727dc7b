package api

import (
	"errors"
	"net/http"

	syncer "github.com/yymzk/calbridge/internal/app"
	"github.com/yymzk/calbridge/pkg/logger"
)

// handleHealth answers GET /healthz with a liveness acknowledgment.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleStatus answers GET /status with the current sync cycle state.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	writeJSON(w, http.StatusOK, s.tracker.State())
}

// handleSync answers POST /sync by running a cycle immediately and
// blocking until it finishes. A cycle already in flight yields 409; a
// cycle that ran but failed yields 502 so curl output tells the
// operator what happened.
func (s *Server) handleSync(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "")
		return
	}
	s.log.Info(r.Context(), "manual sync requested",
		logger.String("remote", r.RemoteAddr))

	err := s.trigger.TriggerNow(r.Context())
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, s.tracker.State())
	case errors.Is(err, syncer.ErrSyncInProgress):
		writeError(w, http.StatusConflict, "sync_in_progress", err.Error())
	case errors.Is(err, syncer.ErrConfiguration):
		writeError(w, http.StatusServiceUnavailable, "not_configured", err.Error())
	default:
		writeError(w, http.StatusBadGateway, "sync_failed", err.Error())
	}
}
