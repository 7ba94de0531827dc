// Package http exposes the association management API.
package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"blocapp/internal/middleware/ratelimit"
	"blocapp/internal/middleware/security"
	"blocapp/internal/middleware/trace"
	"blocapp/internal/services"
)

// Server wraps the HTTP server with its middleware stack.
type Server struct {
	http.Server

	structure   *services.StructureService
	expenses    *services.ExpenseService
	maintenance *services.MaintenanceService
	months      *services.MonthService

	limiter *ratelimit.Limiter
}

// NewServer wires the API routes and middleware for the given services.
func NewServer(addr string, structure *services.StructureService, expenses *services.ExpenseService, maintenance *services.MaintenanceService, months *services.MonthService) *Server {
	s := &Server{
		structure:   structure,
		expenses:    expenses,
		maintenance: maintenance,
		months:      months,
		limiter:     ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: 120, CleanupInterval: 5 * time.Minute}),
	}

	mux := http.NewServeMux()
	s.routes(mux)

	traced := trace.NewMiddleware(clientIP)
	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limited := s.limiter.Middleware(clientIP, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "60")
		writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded")
	})

	s.Server = http.Server{
		Addr:         addr,
		Handler:      traced.Middleware(headers.Middleware(limited(mux))),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("POST /api/associations", s.handleCreateAssociation)
	mux.HandleFunc("GET /api/associations", s.handleListAssociations)
	mux.HandleFunc("GET /api/associations/{id}", s.handleGetAssociation)
	mux.HandleFunc("PUT /api/associations/{id}", s.handleRenameAssociation)
	mux.HandleFunc("DELETE /api/associations/{id}", s.handleDeleteAssociation)
	mux.HandleFunc("GET /api/associations/{id}/delete-impact", s.handleAssociationDeleteImpact)

	mux.HandleFunc("POST /api/associations/{id}/blocks", s.handleCreateBlock)
	mux.HandleFunc("GET /api/associations/{id}/blocks", s.handleListBlocks)
	mux.HandleFunc("DELETE /api/blocks/{id}", s.handleDeleteBlock)
	mux.HandleFunc("GET /api/blocks/{id}/delete-impact", s.handleBlockDeleteImpact)
	mux.HandleFunc("POST /api/blocks/{id}/stairs", s.handleCreateStair)
	mux.HandleFunc("GET /api/associations/{id}/stairs", s.handleListStairs)
	mux.HandleFunc("DELETE /api/stairs/{id}", s.handleDeleteStair)
	mux.HandleFunc("GET /api/stairs/{id}/delete-impact", s.handleStairDeleteImpact)

	mux.HandleFunc("POST /api/stairs/{id}/apartments", s.handleCreateApartment)
	mux.HandleFunc("GET /api/associations/{id}/apartments", s.handleListApartments)
	mux.HandleFunc("GET /api/apartments/{id}", s.handleGetApartment)
	mux.HandleFunc("PUT /api/apartments/{id}", s.handleUpdateApartment)
	mux.HandleFunc("DELETE /api/apartments/{id}", s.handleDeleteApartment)

	mux.HandleFunc("GET /api/associations/{id}/apartments/template.xlsx", s.handleApartmentTemplate)
	mux.HandleFunc("POST /api/stairs/{id}/apartments/import", s.handleImportApartments)

	mux.HandleFunc("GET /api/associations/{id}/months", s.handleMonths)
	mux.HandleFunc("GET /api/associations/{id}/months/{month}/expense-types", s.handleExpenseTypes)
	mux.HandleFunc("POST /api/associations/{id}/expense-types", s.handleAddCustomType)
	mux.HandleFunc("DELETE /api/associations/{id}/expense-types/{name}", s.handleDeleteCustomType)

	mux.HandleFunc("GET /api/associations/{id}/months/{month}/expenses", s.handleListExpenses)
	mux.HandleFunc("POST /api/associations/{id}/months/{month}/expenses", s.handleAddExpense)
	mux.HandleFunc("GET /api/associations/{id}/months/{month}/expenses/{name}", s.handleGetExpense)
	mux.HandleFunc("PUT /api/associations/{id}/months/{month}/expenses/{name}", s.handleUpdateExpense)
	mux.HandleFunc("DELETE /api/associations/{id}/months/{month}/expenses/{name}", s.handleDeleteExpense)

	mux.HandleFunc("GET /api/associations/{id}/expense-config/{name}", s.handleGetExpenseConfig)
	mux.HandleFunc("PUT /api/associations/{id}/expense-config/{name}", s.handleSetExpenseConfig)
	mux.HandleFunc("GET /api/apartments/{id}/participation/{name}", s.handleGetParticipation)
	mux.HandleFunc("PUT /api/apartments/{id}/participation/{name}", s.handleSetParticipation)
	mux.HandleFunc("GET /api/associations/{id}/months/{month}/disabled-expenses", s.handleGetDisabledExpenses)
	mux.HandleFunc("PUT /api/associations/{id}/months/{month}/disabled-expenses", s.handleSetDisabledExpenses)

	mux.HandleFunc("GET /api/associations/{id}/initial-balances", s.handleGetInitialBalances)
	mux.HandleFunc("PUT /api/associations/{id}/initial-balances", s.handleSetInitialBalances)
	mux.HandleFunc("GET /api/associations/{id}/months/{month}/adjustments", s.handleGetAdjustments)
	mux.HandleFunc("PUT /api/associations/{id}/months/{month}/adjustments", s.handleSetAdjustments)

	mux.HandleFunc("GET /api/associations/{id}/months/{month}/maintenance", s.handleMaintenanceTable)
	mux.HandleFunc("GET /api/associations/{id}/months/{month}/maintenance/export.xlsx", s.handleExportMaintenance)
	mux.HandleFunc("POST /api/associations/{id}/months/{month}/maintenance/payments/{apartmentId}/toggle", s.handleTogglePayment)
	mux.HandleFunc("POST /api/associations/{id}/months/{month}/publish", s.handlePublishMonth)
	mux.HandleFunc("POST /api/associations/{id}/months/{month}/close", s.handleCloseMonth)
}

// Shutdown stops the server and its rate limiter.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	err := s.Server.Shutdown(ctx)
	if err != nil {
		slog.Error("Server shutdown error", "error", err)
		return err
	}
	slog.Info("HTTP server stopped")
	return nil
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// clientIP prefers the first X-Forwarded-For hop, falling back to the
// connection address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
