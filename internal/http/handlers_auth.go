package http

import (
	"errors"
	"net/http"
	"sync/atomic"

	"ledger/internal/auth"
	"ledger/internal/log"
	"ledger/internal/services"
)

type authRequest struct {
	Mode auth.Mode `json:"mode"`
	services.Credentials
}

// handleAuth signs in or registers depending on the explicit mode field.
func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	var req authRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	req.Email = sanitizeInput(req.Email)
	req.Username = sanitizeInput(req.Username)

	session, err := s.accounts.Authenticate(r.Context(), req.Mode, req.Credentials)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			atomic.AddInt64(&s.appMetrics.authFailures, 1)
			log.FromContext(r.Context()).WithComponent(log.ComponentAuth).
				WarnContext(r.Context(), "Sign-in rejected", "mode", req.Mode.String())
		}
		s.writeError(w, r, err)
		return
	}

	status := http.StatusOK
	if req.Mode == auth.ModeRegister {
		status = http.StatusCreated
	}
	writeJSON(w, status, session)
}
