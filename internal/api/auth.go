package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/smartbee-iot/smartbee-core/internal/auth"
)

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	Token   string              `json:"token"`
	Account auth.AccountSummary `json:"usuario"`
}

// handleLogin authenticates a caller by id or full name and returns a
// session token. Resolution misses and wrong passwords produce the same
// 401 so the response never reveals which factor failed.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	token, account, err := s.accounts.Login(r.Context(), req)
	if err != nil {
		var verr *auth.ValidationError
		switch {
		case errors.As(err, &verr):
			writeValidationError(w, verr.Message)
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeUnauthorized(w, "credenciales inválidas")
		default:
			s.logger.Error("login failed", "error", err)
			writeInternalError(w, "login failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token:   token,
		Account: account.Summary(),
	})
}
