package http

import (
	"net/http"

	"blocapp/internal/core"
)

func (s *Server) handleGetInitialBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := s.maintenance.InitialBalances(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceMapJSON(balances))
}

func (s *Server) handleSetInitialBalances(w http.ResponseWriter, r *http.Request) {
	var req map[string]balanceJSON
	if !decodeJSON(w, r, &req) {
		return
	}

	balances := make(map[string]core.Balance, len(req))
	for apartmentID, b := range req {
		balances[apartmentID] = b.toCore()
	}
	if err := s.maintenance.SetInitialBalances(r.Context(), r.PathValue("id"), balances); err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceMapJSON(balances))
}

func (s *Server) handleGetAdjustments(w http.ResponseWriter, r *http.Request) {
	balances, err := s.maintenance.Adjustments(r.Context(), r.PathValue("id"), r.PathValue("month"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceMapJSON(balances))
}

func (s *Server) handleSetAdjustments(w http.ResponseWriter, r *http.Request) {
	var req map[string]balanceJSON
	if !decodeJSON(w, r, &req) {
		return
	}

	balances := make(map[string]core.Balance, len(req))
	for apartmentID, b := range req {
		balances[apartmentID] = b.toCore()
	}
	err := s.maintenance.SetAdjustments(r.Context(), r.PathValue("id"), r.PathValue("month"), balances)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBalanceMapJSON(balances))
}
