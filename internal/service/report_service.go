package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/models"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/repository"
)

type ReportService interface {
	Summarize(ctx context.Context, runID string) (*RunSummary, error)
	ExportCSV(ctx context.Context, runID string) ([]byte, error)
	ExportExcel(ctx context.Context, runID string) ([]byte, error)
	ExportGradeRationale(records []models.GradeRecord) []byte
}

// RunSummary is the aggregated view of one run, ranked by how much attention
// each student needs.
type RunSummary struct {
	Run      *models.AnalysisRun `json:"run"`
	Students []StudentRank       `json:"students"`
}

type StudentRank struct {
	Rank            int      `json:"rank"`
	StudentName     string   `json:"student_name"`
	UserID          int64    `json:"user_id"`
	TotalFlags      int      `json:"total_flags"`
	ItemsFlagged    int      `json:"items_flagged"`
	AvgFlagsPerItem float64  `json:"avg_flags_per_item"`
	Priority        string   `json:"priority"`
	TopFlagTypes    []string `json:"top_flag_types"`
}

type reportService struct {
	runRepo repository.RunRepository
	logger  zerolog.Logger
}

func NewReportService(runRepo repository.RunRepository, logger zerolog.Logger) ReportService {
	return &reportService{
		runRepo: runRepo,
		logger:  logger,
	}
}

func (s *reportService) completedRun(ctx context.Context, runID string) (*models.AnalysisRun, error) {
	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if run == nil {
		return nil, ErrRunNotFound
	}
	if run.Status != models.RunStatusCompleted {
		return nil, ErrRunNotCompleted
	}

	flags, err := s.runRepo.GetFlags(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run flags: %w", err)
	}
	run.Flags = flags
	return run, nil
}

type studentAgg struct {
	name      string
	userID    int64
	total     int
	items     map[int64]bool
	flagTypes map[string]int
}

func aggregateStudents(flags []models.FlagRecord) []*studentAgg {
	byUser := make(map[int64]*studentAgg)
	var order []int64
	for _, f := range flags {
		agg, ok := byUser[f.UserID]
		if !ok {
			agg = &studentAgg{
				name:      f.StudentName,
				userID:    f.UserID,
				items:     make(map[int64]bool),
				flagTypes: make(map[string]int),
			}
			byUser[f.UserID] = agg
			order = append(order, f.UserID)
		}
		agg.total++
		agg.items[f.ItemID] = true
		agg.flagTypes[models.FlagType(f.Flag)]++
	}

	aggs := make([]*studentAgg, 0, len(order))
	for _, userID := range order {
		aggs = append(aggs, byUser[userID])
	}
	sort.SliceStable(aggs, func(i, j int) bool {
		if aggs[i].total != aggs[j].total {
			return aggs[i].total > aggs[j].total
		}
		return aggs[i].name < aggs[j].name
	})
	return aggs
}

// topFlagTypes returns the student's most frequent flag categories,
// most common first, at most n.
func (a *studentAgg) topFlagTypes(n int) []string {
	types := make([]string, 0, len(a.flagTypes))
	for t := range a.flagTypes {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if a.flagTypes[types[i]] != a.flagTypes[types[j]] {
			return a.flagTypes[types[i]] > a.flagTypes[types[j]]
		}
		return types[i] < types[j]
	})
	if len(types) > n {
		types = types[:n]
	}
	return types
}

func (s *reportService) Summarize(ctx context.Context, runID string) (*RunSummary, error) {
	run, err := s.completedRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	aggs := aggregateStudents(run.Flags)
	students := make([]StudentRank, 0, len(aggs))
	for i, agg := range aggs {
		avg := float64(agg.total) / float64(len(agg.items))
		students = append(students, StudentRank{
			Rank:            i + 1,
			StudentName:     agg.name,
			UserID:          agg.userID,
			TotalFlags:      agg.total,
			ItemsFlagged:    len(agg.items),
			AvgFlagsPerItem: avg,
			Priority:        models.PriorityForFlagCount(agg.total),
			TopFlagTypes:    agg.topFlagTypes(3),
		})
	}

	return &RunSummary{Run: run, Students: students}, nil
}

func (s *reportService) ExportCSV(ctx context.Context, runID string) ([]byte, error) {
	run, err := s.completedRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString("Type, Student Name, User ID, Item, Item ID, Flag\n")

	w := csv.NewWriter(&buf)
	for _, f := range run.Flags {
		record := []string{
			f.ItemType,
			f.StudentName,
			strconv.FormatInt(f.UserID, 10),
			f.ItemName,
			strconv.FormatInt(f.ItemID, 10),
			f.Flag,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportGradeRationale renders the grade audit trail written alongside a
// grading pass.
func (s *reportService) ExportGradeRationale(records []models.GradeRecord) []byte {
	var buf bytes.Buffer
	buf.WriteString("Student Name, User ID, Grade, Reason\n")

	w := csv.NewWriter(&buf)
	for _, r := range records {
		w.Write([]string{
			r.StudentName,
			strconv.FormatInt(r.UserID, 10),
			r.Grade,
			r.Reason,
		})
	}
	w.Flush()

	return buf.Bytes()
}

func (s *reportService) ExportExcel(ctx context.Context, runID string) ([]byte, error) {
	run, err := s.completedRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := s.writeExecutiveSummary(f, run); err != nil {
		return nil, err
	}
	if err := s.writeStudentDetails(f, run); err != nil {
		return nil, err
	}
	if err := s.writeFlagAnalysis(f, run); err != nil {
		return nil, err
	}
	if err := s.writeAssignmentOverview(f, run); err != nil {
		return nil, err
	}
	if err := s.writeSettings(f, run); err != nil {
		return nil, err
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, name string, header []interface{}, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", name, err)
	}
	if err := f.SetSheetRow(name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header for %s: %w", name, err)
	}
	for i, row := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row for %s: %w", name, err)
		}
	}
	return nil
}

func (s *reportService) writeExecutiveSummary(f *excelize.File, run *models.AnalysisRun) error {
	header := []interface{}{
		"Rank", "Student Name", "User ID", "Total Flags", "Assignments Flagged",
		"Avg Flags/Assignment", "Priority Level", "Top Flag Types",
	}

	aggs := aggregateStudents(run.Flags)
	rows := make([][]interface{}, 0, len(aggs))
	for i, agg := range aggs {
		avg := float64(agg.total) / float64(len(agg.items))
		rows = append(rows, []interface{}{
			i + 1,
			agg.name,
			agg.userID,
			agg.total,
			len(agg.items),
			fmt.Sprintf("%.1f", avg),
			models.PriorityForFlagCount(agg.total),
			strings.Join(agg.topFlagTypes(3), ", "),
		})
	}

	return writeSheet(f, "Executive Summary", header, rows)
}

func (s *reportService) writeStudentDetails(f *excelize.File, run *models.AnalysisRun) error {
	header := []interface{}{
		"Student Name", "User ID", "Assignment", "Assignment ID", "Flag Count", "Flags",
	}

	type itemKey struct {
		userID int64
		itemID int64
	}
	type itemAgg struct {
		name     string
		userID   int64
		item     string
		itemID   int64
		messages []string
	}

	byItem := make(map[itemKey]*itemAgg)
	var order []itemKey
	for _, flag := range run.Flags {
		key := itemKey{flag.UserID, flag.ItemID}
		agg, ok := byItem[key]
		if !ok {
			agg = &itemAgg{
				name:   flag.StudentName,
				userID: flag.UserID,
				item:   flag.ItemName,
				itemID: flag.ItemID,
			}
			byItem[key] = agg
			order = append(order, key)
		}
		agg.messages = append(agg.messages, flag.Flag)
	}

	sort.SliceStable(order, func(i, j int) bool {
		a, b := byItem[order[i]], byItem[order[j]]
		if a.name != b.name {
			return a.name < b.name
		}
		return a.item < b.item
	})

	rows := make([][]interface{}, 0, len(order))
	for _, key := range order {
		agg := byItem[key]
		rows = append(rows, []interface{}{
			agg.name,
			agg.userID,
			agg.item,
			agg.itemID,
			len(agg.messages),
			strings.Join(agg.messages, "; "),
		})
	}

	return writeSheet(f, "Student Details", header, rows)
}

func (s *reportService) writeFlagAnalysis(f *excelize.File, run *models.AnalysisRun) error {
	header := []interface{}{
		"Flag Type", "Total Occurrences", "Unique Students", "Assignments Affected",
	}

	type typeAgg struct {
		count    int
		students map[int64]bool
		items    map[int64]bool
	}

	byType := make(map[string]*typeAgg)
	for _, flag := range run.Flags {
		t := models.FlagType(flag.Flag)
		agg, ok := byType[t]
		if !ok {
			agg = &typeAgg{students: make(map[int64]bool), items: make(map[int64]bool)}
			byType[t] = agg
		}
		agg.count++
		agg.students[flag.UserID] = true
		agg.items[flag.ItemID] = true
	}

	types := make([]string, 0, len(byType))
	for t := range byType {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		if byType[types[i]].count != byType[types[j]].count {
			return byType[types[i]].count > byType[types[j]].count
		}
		return types[i] < types[j]
	})

	rows := make([][]interface{}, 0, len(types))
	for _, t := range types {
		agg := byType[t]
		rows = append(rows, []interface{}{t, agg.count, len(agg.students), len(agg.items)})
	}

	return writeSheet(f, "Flag Analysis", header, rows)
}

func (s *reportService) writeAssignmentOverview(f *excelize.File, run *models.AnalysisRun) error {
	header := []interface{}{
		"Assignment Name", "Assignment ID", "Students Flagged", "Total Flags", "Most Common Flag",
	}

	type assignAgg struct {
		name     string
		itemID   int64
		count    int
		students map[int64]bool
		types    map[string]int
	}

	byItem := make(map[int64]*assignAgg)
	var order []int64
	for _, flag := range run.Flags {
		agg, ok := byItem[flag.ItemID]
		if !ok {
			agg = &assignAgg{
				name:     flag.ItemName,
				itemID:   flag.ItemID,
				students: make(map[int64]bool),
				types:    make(map[string]int),
			}
			byItem[flag.ItemID] = agg
			order = append(order, flag.ItemID)
		}
		agg.count++
		agg.students[flag.UserID] = true
		agg.types[models.FlagType(flag.Flag)]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return byItem[order[i]].count > byItem[order[j]].count
	})

	rows := make([][]interface{}, 0, len(order))
	for _, itemID := range order {
		agg := byItem[itemID]

		common := ""
		best := 0
		for t, n := range agg.types {
			if n > best || (n == best && t < common) {
				common, best = t, n
			}
		}

		rows = append(rows, []interface{}{agg.name, agg.itemID, len(agg.students), agg.count, common})
	}

	return writeSheet(f, "Assignment Overview", header, rows)
}

func (s *reportService) writeSettings(f *excelize.File, run *models.AnalysisRun) error {
	header := []interface{}{"Setting", "Value"}

	students := make(map[int64]bool)
	items := make(map[int64]bool)
	for _, flag := range run.Flags {
		students[flag.UserID] = true
		items[flag.ItemID] = true
	}

	completed := ""
	if run.CompletedAt != nil {
		completed = run.CompletedAt.Format(time.RFC3339)
	}

	rows := [][]interface{}{
		{"Analysis Profile", run.ProfileKey},
		{"Course", run.CourseName},
		{"Course ID", run.CourseID},
		{"Run ID", run.ID},
		{"Started At", run.StartedAt.Format(time.RFC3339)},
		{"Completed At", completed},
		{"Students Enrolled", run.StudentCount},
		{"Students Flagged", len(students)},
		{"Items Flagged", len(items)},
		{"Total Flags", run.FlagCount},
	}

	return writeSheet(f, "Analysis Settings", header, rows)
}
