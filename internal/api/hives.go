package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartbee-iot/smartbee-core/internal/apiary"
)

// handleListHives returns all registered hives.
func (s *Server) handleListHives(w http.ResponseWriter, r *http.Request) {
	hives, err := s.apiary.ListHives(r.Context())
	if err != nil {
		s.logger.Error("list hives failed", "error", err)
		writeInternalError(w, "failed to list hives")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"colmenas": hives,
		"count":    len(hives),
	})
}

// handleCreateHive registers a new hive.
func (s *Server) handleCreateHive(w http.ResponseWriter, r *http.Request) {
	var req apiary.CreateHiveInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	hive, err := s.apiary.CreateHive(r.Context(), req)
	if err != nil {
		var verr *apiary.ValidationError
		if errors.As(err, &verr) {
			writeValidationError(w, verr.Message)
			return
		}
		s.logger.Error("create hive failed", "error", err)
		writeInternalError(w, "failed to create hive")
		return
	}

	writeJSON(w, http.StatusCreated, hive)
}

// handleGetHive returns a single hive by id.
func (s *Server) handleGetHive(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	hive, err := s.apiary.GetHive(r.Context(), id)
	if err != nil {
		if errors.Is(err, apiary.ErrHiveNotFound) {
			writeNotFound(w, "colmena no encontrada")
			return
		}
		s.logger.Error("get hive failed", "error", err)
		writeInternalError(w, "failed to get hive")
		return
	}

	writeJSON(w, http.StatusOK, hive)
}
