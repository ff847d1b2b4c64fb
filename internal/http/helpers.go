package http

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"ledger/internal/auth"
	"ledger/internal/core"
)

// sanitizeInput removes control characters (except tab and newlines) and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// pathID returns the {id} route variable.
func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

// currentUser returns the user set by the auth middleware. Routes that call it
// are always mounted behind that middleware.
func currentUser(r *http.Request) string {
	id, _ := auth.UserID(r.Context())
	return id
}

func (s *Server) today() core.Date {
	return core.DateOf(s.now())
}
