package http

import (
	"net/http"

	"ledger/internal/core"
	"ledger/internal/engine"
)

type setBudgetRequest struct {
	Period core.Period `json:"period"`
	Amount core.Money  `json:"amount"`
}

// handleGetBudget returns the period's status, with a null status when no budget is set.
func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	p, err := parsePeriodParam(r.URL.Query(), s.today())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	report, err := s.budgets.Status(r.Context(), currentUser(r), p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// handleSetBudget upserts the budget. The period comes from the body, then
// the query string, then the current month.
func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req setBudgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Period.IsZero() {
		p, err := parsePeriodParam(r.URL.Query(), s.today())
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		req.Period = p
	}

	b, err := s.budgets.SetBudget(r.Context(), currentUser(r), req.Period, req.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := s.dashboard.Dashboard(r.Context(), currentUser(r), s.today())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// calendarResponse adds month navigation to the grid.
type calendarResponse struct {
	engine.Calendar
	Prev core.Period `json:"prev"`
	Next core.Period `json:"next"`
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	today := s.today()
	p, err := parsePeriodParam(r.URL.Query(), today)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cal, err := s.dashboard.Calendar(r.Context(), currentUser(r), p, today)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, calendarResponse{Calendar: cal, Prev: p.Prev(), Next: p.Next()})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	totals, err := s.dashboard.Chart(r.Context(), currentUser(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}
