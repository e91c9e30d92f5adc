package httpd

import (
	"encoding/json"
	"net/http"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/service"
)

func (h *Handler) GradeAssignment(w http.ResponseWriter, r *http.Request) {
	var req service.GradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.CourseID <= 0 || req.AssignmentID <= 0 {
		writeError(w, http.StatusBadRequest, "course_id and assignment_id are required")
		return
	}

	ctx := r.Context()
	records, err := h.gradingService.GradeAssignment(ctx, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"grades":  records,
		"count":   len(records),
		"dry_run": req.DryRun,
	})
}

func (h *Handler) GradeCourse(w http.ResponseWriter, r *http.Request) {
	var req service.GradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.CourseID <= 0 {
		writeError(w, http.StatusBadRequest, "course_id is required")
		return
	}

	ctx := r.Context()
	results, err := h.gradingService.GradeCourse(ctx, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"assignments": results,
		"count":       len(results),
		"dry_run":     req.DryRun,
	})
}

func (h *Handler) GradeDiscussion(w http.ResponseWriter, r *http.Request) {
	var req service.DiscussionGradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.CourseID <= 0 || req.TopicID <= 0 {
		writeError(w, http.StatusBadRequest, "course_id and topic_id are required")
		return
	}

	ctx := r.Context()
	records, err := h.gradingService.GradeDiscussion(ctx, req)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeSuccess(w, map[string]interface{}{
		"grades":  records,
		"count":   len(records),
		"dry_run": req.DryRun,
	})
}
