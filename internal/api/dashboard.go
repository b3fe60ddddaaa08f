package api

import "net/http"

// handleDashboardStats returns the aggregate counters for the dashboard
// landing page.
func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.apiary.Stats(r.Context())
	if err != nil {
		s.logger.Error("dashboard stats failed", "error", err)
		writeInternalError(w, "failed to aggregate stats")
		return
	}

	writeJSON(w, http.StatusOK, stats)
}
