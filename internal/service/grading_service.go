package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/grading"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/models"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/service/integration"
)

type GradingService interface {
	GradeAssignment(ctx context.Context, req GradeRequest) ([]models.GradeRecord, error)
	GradeCourse(ctx context.Context, req GradeRequest) (map[string][]models.GradeRecord, error)
	GradeDiscussion(ctx context.Context, req DiscussionGradeRequest) ([]models.GradeRecord, error)
}

// GradeRequest parameterizes one complete/incomplete grading pass. DryRun
// evaluates without posting grades back to Canvas.
type GradeRequest struct {
	CourseID     int64 `json:"course_id"`
	AssignmentID int64 `json:"assignment_id,omitempty"`
	MinWordCount int   `json:"min_word_count"`
	Regrade      bool  `json:"regrade"`
	DryRun       bool  `json:"dry_run"`
}

// DiscussionGradeRequest grades one discussion topic against tiered criteria.
type DiscussionGradeRequest struct {
	CourseID int64                       `json:"course_id"`
	TopicID  int64                       `json:"topic_id"`
	Criteria map[string]grading.Criteria `json:"criteria"`
	Regrade  bool                        `json:"regrade"`
	DryRun   bool                        `json:"dry_run"`
}

type gradingService struct {
	canvas integration.CanvasClient
	logger zerolog.Logger
}

func NewGradingService(canvas integration.CanvasClient, logger zerolog.Logger) GradingService {
	return &gradingService{
		canvas: canvas,
		logger: logger,
	}
}

// GradeAssignment grades every submission to one pass_fail assignment and
// returns the rationale for each grade.
func (s *gradingService) GradeAssignment(ctx context.Context, req GradeRequest) ([]models.GradeRecord, error) {
	assignment, err := s.canvas.GetAssignment(ctx, req.CourseID, req.AssignmentID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignment: %w", err)
	}
	if assignment.GradingType != "pass_fail" {
		return nil, fmt.Errorf("assignment %q is graded as %s, expected pass_fail",
			assignment.Name, assignment.GradingType)
	}
	return s.gradeOne(ctx, req, *assignment)
}

// GradeCourse grades every pass_fail assignment in the course, keyed by
// assignment name.
func (s *gradingService) GradeCourse(ctx context.Context, req GradeRequest) (map[string][]models.GradeRecord, error) {
	assignments, err := s.canvas.GetAssignments(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	results := make(map[string][]models.GradeRecord)
	for _, assignment := range assignments {
		if assignment.GradingType != "pass_fail" {
			continue
		}

		records, err := s.gradeOne(ctx, req, assignment)
		if err != nil {
			s.logger.Error().Err(err).
				Str("assignment", assignment.Name).
				Msg("Skipping assignment after grading failure")
			continue
		}
		results[assignment.Name] = records
	}

	if len(results) == 0 {
		return nil, ErrNoAssignments
	}
	return results, nil
}

func (s *gradingService) gradeOne(ctx context.Context, req GradeRequest, assignment models.Assignment) ([]models.GradeRecord, error) {
	submissions, err := s.canvas.GetSubmissions(ctx, req.CourseID, assignment.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch submissions: %w", err)
	}

	var records []models.GradeRecord
	grades := make(map[string]string)

	for _, sub := range submissions {
		name := sub.UserName()
		if name == "" {
			name = fmt.Sprintf("User %d", sub.UserID)
		}

		if !req.Regrade {
			if skip, reason := grading.ShouldSkipRegrade(&sub, assignment.GradingType); skip {
				records = append(records, models.GradeRecord{
					StudentName: name,
					UserID:      sub.UserID,
					Grade:       sub.Grade,
					Reason:      reason,
				})
				continue
			}
		}

		complete, flags := grading.EvaluateSubmission(sub, req.MinWordCount)

		grade := grading.GradeIncomplete
		reason := "No submission"
		switch {
		case complete && len(flags) == 0:
			grade = grading.GradeComplete
			reason = "Meets requirements"
		case complete:
			// Flags surface for instructor review but do not fail a submission.
			grade = grading.GradeComplete
			reason = strings.Join(flags, "; ")
		case len(flags) > 0:
			reason = strings.Join(flags, "; ")
		}

		grades[strconv.FormatInt(sub.UserID, 10)] = grade
		records = append(records, models.GradeRecord{
			StudentName: name,
			UserID:      sub.UserID,
			Grade:       grade,
			Reason:      reason,
		})
	}

	if err := s.postGrades(ctx, req.CourseID, assignment.ID, grades, req.DryRun); err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].StudentName < records[j].StudentName })

	s.logger.Info().
		Str("assignment", assignment.Name).
		Int("graded", len(grades)).
		Int("total", len(records)).
		Bool("dry_run", req.DryRun).
		Msg("Assignment grading pass finished")
	return records, nil
}

// GradeDiscussion grades one graded discussion topic. The topic must carry an
// assignment, Canvas only accepts grades through it.
func (s *gradingService) GradeDiscussion(ctx context.Context, req DiscussionGradeRequest) ([]models.GradeRecord, error) {
	topics, err := s.canvas.GetDiscussionTopics(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discussion topics: %w", err)
	}

	var topic *models.DiscussionTopic
	for i := range topics {
		if topics[i].ID == req.TopicID {
			topic = &topics[i]
			break
		}
	}
	if topic == nil {
		return nil, fmt.Errorf("discussion topic %d not found in course %d", req.TopicID, req.CourseID)
	}
	if topic.Assignment == nil {
		return nil, fmt.Errorf("discussion topic %q is not a graded discussion", topic.Title)
	}

	entries, err := s.canvas.GetDiscussionEntries(ctx, req.CourseID, req.TopicID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discussion entries: %w", err)
	}
	posts := grading.CollectPosts(entries)

	roster, err := s.canvas.GetActiveStudents(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster: %w", err)
	}

	existing := make(map[int64]models.Submission)
	if !req.Regrade {
		submissions, err := s.canvas.GetSubmissions(ctx, req.CourseID, topic.Assignment.ID)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Could not load existing grades, grading all students")
		}
		for _, sub := range submissions {
			existing[sub.UserID] = sub
		}
	}

	gradingType := topic.Assignment.GradingType
	var records []models.GradeRecord
	grades := make(map[string]string)

	for _, enrollment := range roster {
		name := enrollment.User.Name
		if name == "" {
			name = fmt.Sprintf("User %d", enrollment.UserID)
		}

		if sub, ok := existing[enrollment.UserID]; ok {
			if skip, reason := grading.ShouldSkipRegrade(&sub, gradingType); skip {
				records = append(records, models.GradeRecord{
					StudentName: name,
					UserID:      enrollment.UserID,
					Grade:       sub.Grade,
					Reason:      reason,
				})
				continue
			}
		}

		result := grading.EvaluateDiscussion(posts[enrollment.UserID], req.Criteria, gradingType)

		reason := fmt.Sprintf("%d posts, %d words total, %d avg",
			result.PostCount, result.TotalWords, result.AvgWords)
		if len(result.Flags) > 0 {
			reason = strings.Join(result.Flags, "; ")
		}

		grades[strconv.FormatInt(enrollment.UserID, 10)] = result.Grade
		records = append(records, models.GradeRecord{
			StudentName: name,
			UserID:      enrollment.UserID,
			Grade:       result.Grade,
			Reason:      reason,
		})
	}

	if err := s.postGrades(ctx, req.CourseID, topic.Assignment.ID, grades, req.DryRun); err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool { return records[i].StudentName < records[j].StudentName })

	s.logger.Info().
		Str("topic", topic.Title).
		Int("graded", len(grades)).
		Bool("dry_run", req.DryRun).
		Msg("Discussion grading pass finished")
	return records, nil
}

func (s *gradingService) postGrades(ctx context.Context, courseID, assignmentID int64, grades map[string]string, dryRun bool) error {
	if dryRun || len(grades) == 0 {
		return nil
	}
	if err := s.canvas.UpdateGrades(ctx, courseID, assignmentID, grades); err != nil {
		return fmt.Errorf("failed to post grades: %w", err)
	}
	return nil
}
