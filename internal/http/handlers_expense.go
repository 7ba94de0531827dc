package http

import (
	"net/http"

	"blocapp/internal/core"
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.expenses.ListExpenses(r.Context(), r.PathValue("id"), r.PathValue("month"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	out := make([]expenseJSON, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseJSON(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseJSON
	if !decodeJSON(w, r, &req) {
		return
	}

	e := req.toCore(r.PathValue("id"), r.PathValue("month"))
	if err := s.expenses.AddExpense(r.Context(), e); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toExpenseJSON(e))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.expenses.GetExpense(r.Context(), r.PathValue("id"), r.PathValue("month"), r.PathValue("name"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(e))
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseJSON
	if !decodeJSON(w, r, &req) {
		return
	}

	e := req.toCore(r.PathValue("id"), r.PathValue("month"))
	e.Name = r.PathValue("name")
	if err := s.expenses.UpdateExpense(r.Context(), e); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExpenseJSON(e))
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	err := s.expenses.DeleteExpense(r.Context(), r.PathValue("id"), r.PathValue("month"), r.PathValue("name"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExpenseTypes(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.maintenance.Catalog(r.Context(), r.PathValue("id"), r.PathValue("month"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	active := catalog.ActiveTypes()
	out := make([]expenseTypeJSON, 0, len(active))
	for _, t := range active {
		out = append(out, toExpenseTypeJSON(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAddCustomType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                string `json:"name"`
		DefaultDistribution string `json:"default_distribution"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	t := core.ExpenseType{
		Name:                req.Name,
		DefaultDistribution: core.Distribution(req.DefaultDistribution),
		Custom:              true,
	}
	if err := s.expenses.AddCustomType(r.Context(), r.PathValue("id"), t); err != nil {
		writeDomainError(w, r, err)
		return
	}
	t.DefaultDistribution = t.DefaultDistribution.Normalize()
	writeJSON(w, http.StatusCreated, toExpenseTypeJSON(t))
}

func (s *Server) handleDeleteCustomType(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.DeleteCustomType(r.Context(), r.PathValue("id"), r.PathValue("name")); err != nil {
		writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetExpenseConfig(w http.ResponseWriter, r *http.Request) {
	d, err := s.expenses.Distribution(r.Context(), r.PathValue("id"), r.PathValue("name"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"distribution": string(d)})
}

func (s *Server) handleSetExpenseConfig(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Distribution string `json:"distribution"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	d := core.Distribution(req.Distribution).Normalize()
	if err := s.expenses.SetDistribution(r.Context(), r.PathValue("id"), r.PathValue("name"), d); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"distribution": string(d)})
}

func (s *Server) handleGetParticipation(w http.ResponseWriter, r *http.Request) {
	p, err := s.expenses.Participation(r.Context(), r.PathValue("id"), r.PathValue("name"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toParticipationJSON(p))
}

func (s *Server) handleSetParticipation(w http.ResponseWriter, r *http.Request) {
	var req participationJSON
	if !decodeJSON(w, r, &req) {
		return
	}

	p := req.toCore()
	if err := s.expenses.SetParticipation(r.Context(), r.PathValue("id"), r.PathValue("name"), p); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toParticipationJSON(p))
}

func (s *Server) handleGetDisabledExpenses(w http.ResponseWriter, r *http.Request) {
	names, err := s.expenses.DisabledExpenses(r.Context(), r.PathValue("id"), r.PathValue("month"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"disabled": names})
}

func (s *Server) handleSetDisabledExpenses(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Disabled []string `json:"disabled"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	err := s.expenses.SetDisabledExpenses(r.Context(), r.PathValue("id"), r.PathValue("month"), req.Disabled)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"disabled": req.Disabled})
}
