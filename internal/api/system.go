package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/calegray/powercore/internal/pm"
)

// suspendRequest is the optional body for POST /system/suspend.
type suspendRequest struct {
	// Target overrides the configured bulk suspend state.
	Target string `json:"target"`
}

// handleSuspendAll suspends every managed device in dependency order.
//
// Busy or wakeup-enabled devices are skipped, whatever the target. A
// transition failure aborts the walk and is returned as-is; devices
// suspended before the failure stay recorded, so the client can roll
// back with POST /system/resume.
func (s *Server) handleSuspendAll(w http.ResponseWriter, r *http.Request) {
	target := s.suspendTarget

	var req suspendRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.Target != "" {
		target, err = pm.ParseState(req.Target)
		if err != nil {
			writeBadRequest(w, "unknown power state: "+req.Target)
			return
		}
	}

	s.logger.Info("bulk suspend requested", "target", target.String())

	if err := s.engine.SuspendAll(target); err != nil {
		writePowerError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "suspended",
		"target": target.String(),
	})
}

// handleResumeAll resumes every device suspended by the last bulk suspend.
//
// The resume is best effort; individual failures are logged by the
// engine and do not abort the walk.
func (s *Server) handleResumeAll(w http.ResponseWriter, _ *http.Request) {
	s.logger.Info("bulk resume requested")

	s.engine.ResumeAll()

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "resumed",
	})
}
