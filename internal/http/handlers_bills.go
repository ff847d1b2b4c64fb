package http

import (
	"net/http"

	"ledger/internal/core"
	"ledger/internal/services"
)

func (s *Server) handleListBills(w http.ResponseWriter, r *http.Request) {
	filter, err := parseBillFilter(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	bills, err := s.ledger.ListBills(r.Context(), currentUser(r), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if bills == nil {
		bills = []services.BillView{}
	}
	writeJSON(w, http.StatusOK, bills)
}

func (s *Server) handleCreateBill(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeBillInput(w, r)
	if !ok {
		return
	}
	b, err := s.ledger.CreateBill(r.Context(), currentUser(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.billView(b))
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeBillInput(w, r)
	if !ok {
		return
	}
	b, err := s.ledger.UpdateBill(r.Context(), currentUser(r), pathID(r), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.billView(b))
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteBill(r.Context(), currentUser(r), pathID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMarkBillPaid(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.MarkBillPaid(r.Context(), currentUser(r), pathID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decodeBillInput(w http.ResponseWriter, r *http.Request) (services.BillInput, bool) {
	var in services.BillInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return in, false
	}
	in.Name = sanitizeInput(in.Name)
	return in, true
}

func (s *Server) billView(b core.Bill) services.BillView {
	return services.BillView{Bill: b, Overdue: b.Overdue(s.today())}
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query(), defaultNotificationLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	list, err := s.ledger.ListNotifications(r.Context(), currentUser(r), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if list == nil {
		list = []core.Notification{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleDeleteNotification(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.DeleteNotification(r.Context(), currentUser(r), pathID(r)); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
