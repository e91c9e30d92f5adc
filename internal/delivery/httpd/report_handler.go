package httpd

import (
	"fmt"
	"net/http"
)

func (h *Handler) GetReportSummary(w http.ResponseWriter, r *http.Request) {
	runID := runIDParam(r)
	if runID == "" {
		writeError(w, http.StatusBadRequest, "Run ID is required")
		return
	}

	ctx := r.Context()
	summary, err := h.reportService.Summarize(ctx, runID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, summary)
}

func (h *Handler) ExportReportCSV(w http.ResponseWriter, r *http.Request) {
	runID := runIDParam(r)
	if runID == "" {
		writeError(w, http.StatusBadRequest, "Run ID is required")
		return
	}

	ctx := r.Context()
	data, err := h.reportService.ExportCSV(ctx, runID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "flag_report_"+runID+".csv"))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) ExportReportExcel(w http.ResponseWriter, r *http.Request) {
	runID := runIDParam(r)
	if runID == "" {
		writeError(w, http.StatusBadRequest, "Run ID is required")
		return
	}

	ctx := r.Context()
	data, err := h.reportService.ExportExcel(ctx, runID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "flag_report_"+runID+".xlsx"))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
