package httpd

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/service"
)

type Handler struct {
	analysisService service.AnalysisService
	reportService   service.ReportService
	gradingService  service.GradingService
	logger          zerolog.Logger
}

func NewHandler(
	analysisService service.AnalysisService,
	reportService service.ReportService,
	gradingService service.GradingService,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		analysisService: analysisService,
		reportService:   reportService,
		gradingService:  gradingService,
		logger:          logger,
	}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	// Health check
	router.Get("/health", h.HealthCheck)

	// Versioned API
	router.Route("/api/v1", func(api chi.Router) {
		// Analysis endpoints
		api.Route("/analysis", func(r chi.Router) {
			r.Post("/", h.StartAnalysis)
			r.Get("/", h.ListAnalysisRuns)
			r.Get("/{run_id}", h.GetAnalysisRun)
			r.Post("/drafts", h.CompareDrafts)
		})

		// Report endpoints
		api.Route("/reports", func(r chi.Router) {
			r.Get("/{run_id}", h.GetReportSummary)
			r.Get("/{run_id}/csv", h.ExportReportCSV)
			r.Get("/{run_id}/excel", h.ExportReportExcel)
		})

		// Grading endpoints
		api.Route("/grading", func(r chi.Router) {
			r.Post("/assignment", h.GradeAssignment)
			r.Post("/course", h.GradeCourse)
			r.Post("/discussion", h.GradeDiscussion)
		})
	})
}

func getIntQueryParam(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error":   http.StatusText(status),
		"message": message,
	})
}

func writeSuccess(w http.ResponseWriter, data interface{}) {
	response := map[string]interface{}{
		"success": true,
		"data":    data,
	}
	writeJSON(w, http.StatusOK, response)
}

// handleServiceError maps the service layer's typed errors to HTTP statuses.
func (h *Handler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrRunNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrRunNotCompleted):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrInvalidCourseID),
		errors.Is(err, service.ErrNoAssignments),
		errors.Is(err, service.ErrNoStudents):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error().Err(err).Msg("Request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

func runIDParam(r *http.Request) string {
	return chi.URLParam(r, "run_id")
}
