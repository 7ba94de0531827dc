package http

import (
	"errors"
	"fmt"
	"net/http"

	"blocapp/internal/excel"
	"blocapp/internal/services"
)

func (s *Server) handleMonths(w http.ResponseWriter, r *http.Request) {
	overview, err := s.months.Months(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (s *Server) handleMaintenanceTable(w http.ResponseWriter, r *http.Request) {
	associationID, month := r.PathValue("id"), r.PathValue("month")
	result, err := s.maintenance.MaintenanceTable(r.Context(), associationID, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	status, err := s.months.Status(r.Context(), associationID, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := struct {
		Month  string `json:"month"`
		Status string `json:"status"`
		billingResultJSON
	}{Month: month, Status: string(status), billingResultJSON: toBillingResultJSON(result)}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleTogglePayment(w http.ResponseWriter, r *http.Request) {
	result, err := s.maintenance.TogglePayment(r.Context(),
		r.PathValue("id"), r.PathValue("month"), r.PathValue("apartmentId"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBillingResultJSON(result))
}

func (s *Server) handlePublishMonth(w http.ResponseWriter, r *http.Request) {
	associationID, month := r.PathValue("id"), r.PathValue("month")
	force := r.URL.Query().Get("force") == "true"

	result, report, err := s.months.Publish(r.Context(), associationID, month, force)
	if errors.Is(err, services.ErrIncompleteReadings) {
		writeJSON(w, http.StatusConflict, struct {
			Error string `json:"error"`
			services.PublishReport
		}{Error: err.Error(), PublishReport: report})
		return
	}
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Month string `json:"month"`
		services.PublishReport
		billingResultJSON
	}{Month: month, PublishReport: report, billingResultJSON: toBillingResultJSON(result)})
}

func (s *Server) handleCloseMonth(w http.ResponseWriter, r *http.Request) {
	nextMonth, err := s.months.Close(r.Context(), r.PathValue("id"), r.PathValue("month"))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"closed": r.PathValue("month"), "next_month": nextMonth})
}

func (s *Server) handleApartmentTemplate(w http.ResponseWriter, r *http.Request) {
	f, err := excel.BuildTemplate()
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="apartamente.xlsx"`)
	if err := f.Write(w); err != nil {
		// Headers are gone, the client sees a truncated download.
		return
	}
}

func (s *Server) handleImportApartments(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	result, err := excel.ImportApartments(file)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "unreadable workbook: "+err.Error())
		return
	}

	imported, err := s.structure.ImportApartments(r.Context(), r.PathValue("id"), result.Apartments)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := struct {
		Imported []apartmentJSON  `json:"imported"`
		Errors   []excel.RowError `json:"errors,omitempty"`
	}{Imported: make([]apartmentJSON, 0, len(imported)), Errors: result.Errors}
	for _, a := range imported {
		out.Imported = append(out.Imported, toApartmentJSON(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleExportMaintenance(w http.ResponseWriter, r *http.Request) {
	associationID, month := r.PathValue("id"), r.PathValue("month")
	result, err := s.maintenance.MaintenanceTable(r.Context(), associationID, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	expenses, err := s.expenses.ListExpenses(r.Context(), associationID, month)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	names := make([]string, 0, len(expenses))
	for _, e := range expenses {
		names = append(names, e.Name)
	}

	f, err := excel.ExportMaintenanceTable(month, result.Rows, names)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "intretinere "+month+".xlsx"))
	if err := f.Write(w); err != nil {
		return
	}
}
