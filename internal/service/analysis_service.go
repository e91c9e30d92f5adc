package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/analyzer"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/corpus"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/grading"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/heuristics"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/models"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/profile"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/repository"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/service/integration"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/textmetrics"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/worker"
)

type AnalysisService interface {
	StartRun(ctx context.Context, req RunRequest) (*models.AnalysisRun, error)
	RunAnalysis(ctx context.Context, req RunRequest) (*models.AnalysisRun, error)
	GetRun(ctx context.Context, runID string) (*models.AnalysisRun, error)
	ListRuns(ctx context.Context, limit int) ([]models.AnalysisRun, error)
	CompareDraftAssignments(ctx context.Context, courseID, roughID, finalID int64) ([]DraftResult, error)
}

// RunRequest selects what one screening pass covers.
type RunRequest struct {
	CourseID           int64    `json:"course_id"`
	ProfileKey         string   `json:"profile"`
	AssignmentIDs      []int64  `json:"assignment_ids,omitempty"`
	IncludeDiscussions bool     `json:"include_discussions"`
	WhiteTextKeywords  []string `json:"white_text_keywords,omitempty"`
}

// DraftResult pairs one student with their rough-to-final comparison.
type DraftResult struct {
	StudentName string                 `json:"student_name"`
	UserID      int64                  `json:"user_id"`
	Comparison  corpus.DraftComparison `json:"comparison"`
}

type AnalysisConfig struct {
	RunTimeout time.Duration
	MaxWorkers int
}

type analysisService struct {
	runRepo  repository.RunRepository
	canvas   integration.CanvasClient
	analyzer *analyzer.Analyzer
	pool     *worker.WorkerPool
	logger   zerolog.Logger
	config   AnalysisConfig
}

func NewAnalysisService(
	runRepo repository.RunRepository,
	canvas integration.CanvasClient,
	an *analyzer.Analyzer,
	pool *worker.WorkerPool,
	logger zerolog.Logger,
	config AnalysisConfig,
) AnalysisService {
	if config.RunTimeout == 0 {
		config.RunTimeout = 30 * time.Minute
	}
	if config.MaxWorkers < 1 {
		config.MaxWorkers = 5
	}
	return &analysisService{
		runRepo:  runRepo,
		canvas:   canvas,
		analyzer: an,
		pool:     pool,
		logger:   logger,
		config:   config,
	}
}

// StartRun records a pending run and executes it on the worker pool. The
// run outlives the request context; callers poll GetRun for completion.
func (s *analysisService) StartRun(ctx context.Context, req RunRequest) (*models.AnalysisRun, error) {
	if req.CourseID <= 0 {
		return nil, ErrInvalidCourseID
	}

	run := &models.AnalysisRun{
		ID:         uuid.New().String(),
		CourseID:   req.CourseID,
		ProfileKey: req.ProfileKey,
		Status:     models.RunStatusPending,
		StartedAt:  time.Now(),
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	if err := s.pool.Submit(func() {
		runCtx, cancel := context.WithTimeout(context.Background(), s.config.RunTimeout)
		defer cancel()

		if err := s.execute(runCtx, run, req); err != nil {
			s.logger.Error().Err(err).Str("run_id", run.ID).Msg("Analysis run failed")
			if updateErr := s.runRepo.UpdateStatus(runCtx, run.ID, models.RunStatusFailed, err.Error()); updateErr != nil {
				s.logger.Error().Err(updateErr).Msg("Failed to mark run as failed")
			}
		}
	}); err != nil {
		if updateErr := s.runRepo.UpdateStatus(ctx, run.ID, models.RunStatusFailed, err.Error()); updateErr != nil {
			s.logger.Error().Err(updateErr).Msg("Failed to mark run as failed")
		}
		return nil, fmt.Errorf("failed to queue analysis run: %w", err)
	}

	s.logger.Info().
		Str("run_id", run.ID).
		Int64("course_id", req.CourseID).
		Str("profile", req.ProfileKey).
		Msg("Analysis run queued")
	return run, nil
}

// RunAnalysis executes a run synchronously and returns the completed record.
func (s *analysisService) RunAnalysis(ctx context.Context, req RunRequest) (*models.AnalysisRun, error) {
	if req.CourseID <= 0 {
		return nil, ErrInvalidCourseID
	}

	run := &models.AnalysisRun{
		ID:         uuid.New().String(),
		CourseID:   req.CourseID,
		ProfileKey: req.ProfileKey,
		Status:     models.RunStatusPending,
		StartedAt:  time.Now(),
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	if err := s.execute(ctx, run, req); err != nil {
		if updateErr := s.runRepo.UpdateStatus(ctx, run.ID, models.RunStatusFailed, err.Error()); updateErr != nil {
			s.logger.Error().Err(updateErr).Msg("Failed to mark run as failed")
		}
		return nil, err
	}
	return s.GetRun(ctx, run.ID)
}

func (s *analysisService) execute(ctx context.Context, run *models.AnalysisRun, req RunRequest) error {
	startTime := time.Now()

	if err := s.runRepo.UpdateStatus(ctx, run.ID, models.RunStatusRunning, ""); err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}

	course, err := s.canvas.GetCourse(ctx, req.CourseID)
	if err != nil {
		return fmt.Errorf("failed to verify course access: %w", err)
	}
	run.CourseName = course.Name

	roster, err := s.fetchRoster(ctx, req.CourseID)
	if err != nil {
		return err
	}

	assignments, err := s.selectAssignments(ctx, req)
	if err != nil {
		return err
	}

	actx := profile.NewContext(profile.Get(req.ProfileKey, s.logger), s.logger)

	var flags []models.FlagRecord
	var corpusEntries []corpus.Entry

	for _, assignment := range assignments {
		assignmentFlags, entries, err := s.analyzeAssignment(ctx, actx, req, assignment, roster)
		if err != nil {
			s.logger.Error().Err(err).
				Int64("assignment_id", assignment.ID).
				Msg("Skipping assignment after fetch failure")
			continue
		}
		flags = append(flags, assignmentFlags...)
		corpusEntries = append(corpusEntries, entries...)
	}

	if req.IncludeDiscussions {
		discussionFlags, err := s.analyzeDiscussions(ctx, actx, req.CourseID, roster)
		if err != nil {
			s.logger.Error().Err(err).Msg("Discussion analysis failed, continuing with assignments only")
		} else {
			flags = append(flags, discussionFlags...)
		}
	}

	flags = append(flags, s.crossCorpusFlags(corpusEntries, roster)...)

	if err := s.runRepo.SaveFlags(ctx, run.ID, flags); err != nil {
		return fmt.Errorf("failed to save flags: %w", err)
	}

	students := make(map[int64]bool)
	for _, f := range flags {
		students[f.UserID] = true
	}
	run.StudentCount = len(roster)
	run.FlagCount = len(flags)

	if err := s.runRepo.Complete(ctx, run); err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}

	s.logger.Info().
		Str("run_id", run.ID).
		Int("assignments", len(assignments)).
		Int("flags", len(flags)).
		Int("flagged_students", len(students)).
		Dur("duration", time.Since(startTime)).
		Msg("Analysis run completed")
	return nil
}

func (s *analysisService) fetchRoster(ctx context.Context, courseID int64) (map[int64]string, error) {
	enrollments, err := s.canvas.GetActiveStudents(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch roster: %w", err)
	}
	if len(enrollments) == 0 {
		return nil, ErrNoStudents
	}

	roster := make(map[int64]string, len(enrollments))
	for _, e := range enrollments {
		roster[e.UserID] = e.User.Name
	}
	return roster, nil
}

func (s *analysisService) selectAssignments(ctx context.Context, req RunRequest) ([]models.Assignment, error) {
	assignments, err := s.canvas.GetAssignments(ctx, req.CourseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch assignments: %w", err)
	}

	if len(req.AssignmentIDs) > 0 {
		wanted := make(map[int64]bool, len(req.AssignmentIDs))
		for _, id := range req.AssignmentIDs {
			wanted[id] = true
		}
		filtered := assignments[:0]
		for _, a := range assignments {
			if wanted[a.ID] {
				filtered = append(filtered, a)
			}
		}
		assignments = filtered
	}

	if len(assignments) == 0 {
		return nil, ErrNoAssignments
	}
	return assignments, nil
}

// analyzeAssignment fans the heuristic pass out over its own bounded set of
// goroutines and reassembles results in submission order so report output
// stays stable. The pool carries run-level tasks only: a run executing on a
// pool worker must never wait on tasks queued behind it.
func (s *analysisService) analyzeAssignment(
	ctx context.Context,
	actx profile.Context,
	req RunRequest,
	assignment models.Assignment,
	roster map[int64]string,
) ([]models.FlagRecord, []corpus.Entry, error) {
	submissions, err := s.canvas.GetSubmissions(ctx, req.CourseID, assignment.ID)
	if err != nil {
		return nil, nil, err
	}

	analyzed := make([]models.Submission, 0, len(submissions))
	for _, sub := range submissions {
		if sub.WorkflowState == "unsubmitted" {
			continue
		}
		if _, enrolled := roster[sub.UserID]; !enrolled {
			continue
		}
		sub.Body = textmetrics.StripHTML(sub.Body)
		if sub.Body == "" {
			sub.Body = s.attachmentText(ctx, sub)
		}
		analyzed = append(analyzed, sub)
	}

	results := make([][]models.Flag, len(analyzed))
	var wg sync.WaitGroup
	sem := make(chan struct{}, s.config.MaxWorkers)
	for i := range analyzed {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = s.analyzer.Analyze(ctx, actx, analyzed[i], analyzed)
		}(i)
	}
	wg.Wait()

	var records []models.FlagRecord
	var entries []corpus.Entry
	for i, sub := range analyzed {
		name := roster[sub.UserID]
		if name == "" {
			name = fmt.Sprintf("User %d", sub.UserID)
		}

		subFlags := results[i]
		if len(req.WhiteTextKeywords) > 0 {
			report := heuristics.CheckWhiteTextKeywords(sub.Body, req.WhiteTextKeywords)
			for _, f := range report.Flags {
				subFlags = append(subFlags, models.Flag{Check: "white_text", Message: f})
			}
		}

		for _, f := range subFlags {
			records = append(records, models.FlagRecord{
				ItemType:    "Assignment",
				StudentName: name,
				UserID:      sub.UserID,
				ItemName:    assignment.Name,
				ItemID:      assignment.ID,
				Flag:        f.Message,
				Check:       f.Check,
				Evidence:    f.Evidence,
			})
		}

		if sub.Body != "" {
			entries = append(entries, corpus.Entry{
				UserID:       sub.UserID,
				AssignmentID: assignment.ID,
				Assignment:   assignment.Name,
				StudentName:  name,
				Text:         sub.Body,
			})
		}
	}

	records = append(records, s.phraseFlags(assignment, analyzed, roster)...)

	return records, entries, nil
}

// phraseFlags runs the shared-phrasing scan across all students on one
// assignment.
func (s *analysisService) phraseFlags(assignment models.Assignment, subs []models.Submission, roster map[int64]string) []models.FlagRecord {
	texts := make(map[int64]string, len(subs))
	names := make(map[int64]string, len(subs))
	for _, sub := range subs {
		if sub.Body == "" {
			continue
		}
		texts[sub.UserID] = sub.Body
		names[sub.UserID] = roster[sub.UserID]
	}

	var records []models.FlagRecord
	for _, m := range corpus.PhraseOverlap(texts, names, corpus.PhraseSimilarityThreshold) {
		if m.TotalMatches == 0 {
			continue
		}
		msg1 := fmt.Sprintf("Shared phrasing with %s (%d exact, %d reordered, %d similar phrases)",
			m.Student2, len(m.ExactMatches), len(m.Reordered), m.SimilarPhrases)
		msg2 := fmt.Sprintf("Shared phrasing with %s (%d exact, %d reordered, %d similar phrases)",
			m.Student1, len(m.ExactMatches), len(m.Reordered), m.SimilarPhrases)

		records = append(records,
			models.FlagRecord{
				ItemType: "Assignment", StudentName: m.Student1, UserID: m.Student1ID,
				ItemName: assignment.Name, ItemID: assignment.ID,
				Flag: msg1, Check: "phrase_overlap", Evidence: float64(m.TotalMatches),
			},
			models.FlagRecord{
				ItemType: "Assignment", StudentName: m.Student2, UserID: m.Student2ID,
				ItemName: assignment.Name, ItemID: assignment.ID,
				Flag: msg2, Check: "phrase_overlap", Evidence: float64(m.TotalMatches),
			})
	}
	return records
}

// attachmentText pulls text out of the first readable attachment when a
// submission has no inline body. Extraction failures degrade to analyzing the
// attachment metadata only.
func (s *analysisService) attachmentText(ctx context.Context, sub models.Submission) string {
	for _, file := range sub.Attachments {
		if file.URL == "" {
			continue
		}

		content, err := s.canvas.DownloadAttachment(ctx, file.URL)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("filename", file.Filename).
				Int64("user_id", sub.UserID).
				Msg("Could not download attachment, analyzing metadata only")
			continue
		}

		text, err := integration.ExtractAttachmentText(file, content)
		if err != nil {
			s.logger.Warn().Err(err).
				Str("filename", file.Filename).
				Int64("user_id", sub.UserID).
				Msg("Could not extract attachment text, analyzing metadata only")
			continue
		}
		if text != "" {
			return text
		}
	}
	return ""
}

func (s *analysisService) analyzeDiscussions(
	ctx context.Context,
	actx profile.Context,
	courseID int64,
	roster map[int64]string,
) ([]models.FlagRecord, error) {
	topics, err := s.canvas.GetDiscussionTopics(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch discussion topics: %w", err)
	}

	var records []models.FlagRecord
	for _, topic := range topics {
		entries, err := s.canvas.GetDiscussionEntries(ctx, courseID, topic.ID)
		if err != nil {
			s.logger.Warn().Err(err).Int64("topic_id", topic.ID).Msg("Skipping discussion topic")
			continue
		}

		posts := grading.CollectPosts(entries)

		// Each student's combined posts are analyzed as one pseudo-submission
		// so the cross-submission check also catches copied discussion posts.
		userIDs := make([]int64, 0, len(posts))
		for userID := range posts {
			if _, enrolled := roster[userID]; enrolled {
				userIDs = append(userIDs, userID)
			}
		}
		sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

		combined := make([]models.Submission, 0, len(userIDs))
		for _, userID := range userIDs {
			combined = append(combined, models.Submission{
				UserID: userID,
				User:   &models.User{ID: userID, Name: roster[userID]},
				Body:   textmetrics.StripHTML(strings.Join(posts[userID], "\n\n")),
			})
		}

		for _, sub := range combined {
			for _, f := range s.analyzer.Analyze(ctx, actx, sub, combined) {
				records = append(records, models.FlagRecord{
					ItemType:    "Discussion",
					StudentName: roster[sub.UserID],
					UserID:      sub.UserID,
					ItemName:    topic.Title,
					ItemID:      topic.ID,
					Flag:        f.Message,
					Check:       f.Check,
					Evidence:    f.Evidence,
				})
			}
		}
	}

	return records, nil
}

// crossCorpusFlags converts the course-wide reuse scan into flag records
// attached to the assignment where the reuse surfaced.
func (s *analysisService) crossCorpusFlags(entries []corpus.Entry, roster map[int64]string) []models.FlagRecord {
	result := corpus.Analyze(entries)

	var userIDs []int64
	for userID := range result.SelfPlagiarism {
		userIDs = append(userIDs, userID)
	}
	sort.Slice(userIDs, func(i, j int) bool { return userIDs[i] < userIDs[j] })

	var records []models.FlagRecord
	for _, userID := range userIDs {
		name := roster[userID]
		if name == "" {
			name = fmt.Sprintf("User %d", userID)
		}
		for _, m := range result.SelfPlagiarism[userID] {
			records = append(records, models.FlagRecord{
				ItemType:    "Assignment",
				StudentName: name,
				UserID:      userID,
				ItemName:    m.Assignment2,
				ItemID:      m.Assignment2ID,
				Flag:        fmt.Sprintf("Self-plagiarism: %d%% similar to their '%s' submission", int(m.Similarity*100), m.Assignment1),
				Check:       "self_plagiarism",
				Evidence:    m.Similarity,
			})
		}
	}

	for _, m := range result.CrossStudent {
		records = append(records, models.FlagRecord{
			ItemType:    "Assignment",
			StudentName: m.Student1,
			UserID:      m.Student1ID,
			ItemName:    m.Assignment1,
			ItemID:      m.Assignment1ID,
			Flag:        fmt.Sprintf("Cross-student match: %d%% similar to %s's '%s' submission", int(m.Similarity*100), m.Student2, m.Assignment2),
			Check:       "cross_student",
			Evidence:    m.Similarity,
		})
		records = append(records, models.FlagRecord{
			ItemType:    "Assignment",
			StudentName: m.Student2,
			UserID:      m.Student2ID,
			ItemName:    m.Assignment2,
			ItemID:      m.Assignment2ID,
			Flag:        fmt.Sprintf("Cross-student match: %d%% similar to %s's '%s' submission", int(m.Similarity*100), m.Student1, m.Assignment1),
			Check:       "cross_student",
			Evidence:    m.Similarity,
		})
	}

	return records
}

func (s *analysisService) GetRun(ctx context.Context, runID string) (*models.AnalysisRun, error) {
	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return nil, ErrRunNotFound
	}

	flags, err := s.runRepo.GetFlags(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run flags: %w", err)
	}
	run.Flags = flags
	return run, nil
}

func (s *analysisService) ListRuns(ctx context.Context, limit int) ([]models.AnalysisRun, error) {
	if limit <= 0 {
		limit = 20
	}
	runs, err := s.runRepo.GetRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// CompareDraftAssignments pairs each student's submissions to the rough and
// final assignments and scores the revision between them.
func (s *analysisService) CompareDraftAssignments(ctx context.Context, courseID, roughID, finalID int64) ([]DraftResult, error) {
	roughSubs, err := s.canvas.GetSubmissions(ctx, courseID, roughID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch rough drafts: %w", err)
	}
	finalSubs, err := s.canvas.GetSubmissions(ctx, courseID, finalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch final drafts: %w", err)
	}

	finals := make(map[int64]models.Submission, len(finalSubs))
	for _, sub := range finalSubs {
		finals[sub.UserID] = sub
	}

	var results []DraftResult
	for _, rough := range roughSubs {
		final, ok := finals[rough.UserID]
		if !ok || rough.Body == "" || final.Body == "" {
			continue
		}

		name := rough.UserName()
		if name == "" {
			name = fmt.Sprintf("User %d", rough.UserID)
		}
		results = append(results, DraftResult{
			StudentName: name,
			UserID:      rough.UserID,
			Comparison: corpus.CompareDrafts(
				textmetrics.StripHTML(rough.Body),
				textmetrics.StripHTML(final.Body),
			),
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].UserID < results[j].UserID })
	return results, nil
}
