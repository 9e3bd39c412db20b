package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

// handleListHistory returns recent transitions across all devices, newest first.
//
// Query parameters:
//   - limit: maximum entries to return (repository clamps bounds)
func (s *Server) handleListHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeNotFound(w, "transition history is not enabled")
		return
	}

	entries, err := s.history.ListAll(r.Context(), parseLimit(r))
	if err != nil {
		s.logger.Error("listing transition history failed", "error", err)
		writeInternalError(w, "failed to list transition history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"transitions": entries,
		"count":       len(entries),
	})
}

// handleDeviceHistory returns recent transitions for one device, newest first.
func (s *Server) handleDeviceHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeNotFound(w, "transition history is not enabled")
		return
	}

	dev, ok := s.lookupDevice(w, r)
	if !ok {
		return
	}

	entries, err := s.history.List(r.Context(), dev.Name(), parseLimit(r))
	if err != nil {
		s.logger.Error("listing device history failed",
			"device", chi.URLParam(r, "name"),
			"error", err,
		)
		writeInternalError(w, "failed to list transition history")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"device":      dev.Name(),
		"transitions": entries,
		"count":       len(entries),
	})
}

// parseLimit reads the limit query parameter. Zero means repository default.
func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0
	}
	return limit
}
