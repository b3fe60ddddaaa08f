package api

import (
	"net/http"
	"strconv"
)

// handleListNodes returns the sensor node catalogue.
func (s *Server) handleListNodes(w http.ResponseWriter, r *http.Request) {
	nodes, err := s.apiary.ListNodes(r.Context())
	if err != nil {
		s.logger.Error("list nodes failed", "error", err)
		writeInternalError(w, "failed to list nodes")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"nodos": nodes,
		"count": len(nodes),
	})
}

// handleListNodeTypes returns all node types.
func (s *Server) handleListNodeTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.apiary.ListNodeTypes(r.Context())
	if err != nil {
		s.logger.Error("list node types failed", "error", err)
		writeInternalError(w, "failed to list node types")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"nodo_tipos": types,
		"count":      len(types),
	})
}

// handleRecentMessages returns telemetry from the last N hours.
// Query parameters: hours (default 24), limit (default 100, max 1000).
func (s *Server) handleRecentMessages(w http.ResponseWriter, r *http.Request) {
	hours := queryInt(r, "hours")
	limit := queryInt(r, "limit")

	messages, err := s.apiary.RecentMessages(r.Context(), hours, limit)
	if err != nil {
		s.logger.Error("recent messages failed", "error", err)
		writeInternalError(w, "failed to query telemetry")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mensajes": messages,
		"count":    len(messages),
	})
}

// handleLatestMessages returns the newest telemetry regardless of age.
// Query parameters: limit (default 100, max 1000).
func (s *Server) handleLatestMessages(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit")

	messages, err := s.apiary.LatestMessages(r.Context(), limit)
	if err != nil {
		s.logger.Error("latest messages failed", "error", err)
		writeInternalError(w, "failed to query telemetry")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"mensajes": messages,
		"count":    len(messages),
	})
}

// queryInt parses an integer query parameter, returning 0 when absent or
// malformed so the service applies its defaults.
func queryInt(r *http.Request, name string) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
