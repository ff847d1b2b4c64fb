package http

import (
	"net/http"

	"ledger/internal/core"
	"ledger/internal/services"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTransactionFilter(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.ledger.ListTransactions(r.Context(), currentUser(r), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []core.Transaction{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeTransactionInput(w, r)
	if !ok {
		return
	}
	t, err := s.ledger.CreateTransaction(r.Context(), currentUser(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.countTransactionWrite()
	writeJSON(w, http.StatusCreated, t)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, err := s.ledger.GetTransaction(r.Context(), currentUser(r), pathID(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeTransactionInput(w, r)
	if !ok {
		return
	}
	t, err := s.ledger.UpdateTransaction(r.Context(), currentUser(r), pathID(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.countTransactionWrite()
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteTransaction(r.Context(), currentUser(r), pathID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.countTransactionWrite()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decodeTransactionInput(w http.ResponseWriter, r *http.Request) (services.TransactionInput, bool) {
	var in services.TransactionInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return in, false
	}
	in.Category = sanitizeInput(in.Category)
	in.Item = sanitizeInput(in.Item)
	return in, true
}
