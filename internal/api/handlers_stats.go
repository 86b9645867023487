package api

import (
	"net/http"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"queue_depth": s.orchestrator.QueueDepth(),
		"window":      s.cfg.StatsWindow.String(),
		"extraction":  s.orchestrator.Stats().Snapshot(),
	})
}
