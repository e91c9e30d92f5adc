package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/service"
)

// StartAnalysis queues a screening run. The run executes in the background;
// the response carries the run ID to poll.
func (h *Handler) StartAnalysis(w http.ResponseWriter, r *http.Request) {
	var req service.RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.CourseID <= 0 {
		writeError(w, http.StatusBadRequest, "course_id is required")
		return
	}

	ctx := r.Context()
	run, err := h.analysisService.StartRun(ctx, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	response := map[string]interface{}{
		"run_id":     run.ID,
		"status":     run.Status,
		"message":    "Analysis started",
		"status_url": "/api/v1/analysis/" + run.ID,
	}

	writeSuccess(w, response)
}

func (h *Handler) GetAnalysisRun(w http.ResponseWriter, r *http.Request) {
	runID := runIDParam(r)
	if runID == "" {
		writeError(w, http.StatusBadRequest, "Run ID is required")
		return
	}

	ctx := r.Context()
	run, err := h.analysisService.GetRun(ctx, runID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, run)
}

func (h *Handler) ListAnalysisRuns(w http.ResponseWriter, r *http.Request) {
	limit := getIntQueryParam(r, "limit", 20)

	ctx := r.Context()
	runs, err := h.analysisService.ListRuns(ctx, limit)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}

// CompareDrafts scores the revision between a rough and final draft
// assignment for every student who submitted both.
func (h *Handler) CompareDrafts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CourseID          int64 `json:"course_id"`
		RoughAssignmentID int64 `json:"rough_assignment_id"`
		FinalAssignmentID int64 `json:"final_assignment_id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.CourseID <= 0 || req.RoughAssignmentID <= 0 || req.FinalAssignmentID <= 0 {
		writeError(w, http.StatusBadRequest,
			"course_id, rough_assignment_id and final_assignment_id are required")
		return
	}

	ctx := r.Context()
	results, err := h.analysisService.CompareDraftAssignments(ctx,
		req.CourseID, req.RoughAssignmentID, req.FinalAssignmentID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"comparisons": results,
		"count":       len(results),
	})
}
