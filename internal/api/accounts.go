package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartbee-iot/smartbee-core/internal/auth"
)

// writeAccountError maps account service errors to HTTP responses.
// Internal detail is logged, never returned to the client.
func (s *Server) writeAccountError(w http.ResponseWriter, err error, op string) {
	var verr *auth.ValidationError
	var cerr *auth.ConflictError

	switch {
	case errors.As(err, &verr):
		writeValidationError(w, verr.Message)
	case errors.As(err, &cerr):
		writeConflict(w, cerr.Message)
	case errors.Is(err, auth.ErrAccountNotFound):
		writeNotFound(w, "usuario no encontrado")
	default:
		s.logger.Error(op+" failed", "error", err)
		writeInternalError(w, op+" failed")
	}
}

// handleListAccounts returns all active accounts.
func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts.List(r.Context())
	if err != nil {
		s.logger.Error("list accounts failed", "error", err)
		writeInternalError(w, "failed to list accounts")
		return
	}

	summaries := make([]auth.AccountSummary, 0, len(accounts))
	for i := range accounts {
		summaries = append(summaries, accounts[i].Summary())
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"usuarios": summaries,
		"count":    len(summaries),
	})
}

// handleCreateAccount provisions a new account.
func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var req auth.CreateAccountInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	account, err := s.accounts.Create(r.Context(), req)
	if err != nil {
		s.writeAccountError(w, err, "create account")
		return
	}

	writeJSON(w, http.StatusCreated, account.Summary())
}

// handleGetAccount returns a single active account by id.
func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	account, err := s.accounts.Get(r.Context(), id)
	if err != nil {
		s.writeAccountError(w, err, "get account")
		return
	}

	writeJSON(w, http.StatusOK, account.Summary())
}

// handleUpdateAccount modifies an account's mutable fields.
func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req auth.UpdateAccountInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	account, err := s.accounts.Update(r.Context(), id, req)
	if err != nil {
		s.writeAccountError(w, err, "update account")
		return
	}

	writeJSON(w, http.StatusOK, account.Summary())
}

// handleDeleteAccount marks an account inactive. Deactivation is terminal;
// the id is never reused.
func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := s.accounts.SoftDelete(r.Context(), id); err != nil {
		s.writeAccountError(w, err, "delete account")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "usuario desactivado",
		"id":      id,
	})
}

// handleListRoles returns all defined roles.
func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := s.accounts.Roles(r.Context())
	if err != nil {
		s.logger.Error("list roles failed", "error", err)
		writeInternalError(w, "failed to list roles")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"roles": roles,
		"count": len(roles),
	})
}
