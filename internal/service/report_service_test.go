package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/models"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/repository"
)

func seedRun(t *testing.T) (ReportService, string) {
	t.Helper()

	db, err := repository.Open(":memory:", zerolog.Nop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := repository.NewRunRepository(db, zerolog.Nop())
	ctx := context.Background()

	run := &models.AnalysisRun{
		ID:         "run-1",
		CourseID:   42,
		CourseName: "Intro Psych",
		ProfileKey: "reflection",
		Status:     models.RunStatusPending,
		StartedAt:  time.Now().UTC(),
	}
	if err := repo.Create(ctx, run); err != nil {
		t.Fatalf("create run: %v", err)
	}

	flags := []models.FlagRecord{
		{ItemType: "Assignment", StudentName: "Ann Ames", UserID: 1, ItemName: "Essay 1", ItemID: 100,
			Flag: "AI-style transitions (4 found)", Check: "ai_transitions"},
		{ItemType: "Assignment", StudentName: "Ann Ames", UserID: 1, ItemName: "Essay 1", ItemID: 100,
			Flag: "Excessive hedging language (3 found)", Check: "hedging"},
		{ItemType: "Assignment", StudentName: "Ann Ames", UserID: 1, ItemName: "Essay 2", ItemID: 101,
			Flag: "AI-style transitions (5 found)", Check: "ai_transitions"},
		{ItemType: "Assignment", StudentName: "Bob Burns", UserID: 2, ItemName: "Essay 1", ItemID: 100,
			Flag: "Short submission: 12 words", Check: "short_text"},
	}
	if err := repo.SaveFlags(ctx, run.ID, flags); err != nil {
		t.Fatalf("save flags: %v", err)
	}

	run.StudentCount = 10
	run.FlagCount = len(flags)
	if err := repo.Complete(ctx, run); err != nil {
		t.Fatalf("complete run: %v", err)
	}

	return NewReportService(repo, zerolog.Nop()), run.ID
}

func TestSummarizeRanksByFlagCount(t *testing.T) {
	svc, runID := seedRun(t)

	summary, err := svc.Summarize(context.Background(), runID)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}

	if len(summary.Students) != 2 {
		t.Fatalf("students = %d, want 2", len(summary.Students))
	}

	first := summary.Students[0]
	if first.StudentName != "Ann Ames" || first.Rank != 1 {
		t.Errorf("top student = %q rank %d, want Ann Ames rank 1", first.StudentName, first.Rank)
	}
	if first.TotalFlags != 3 || first.ItemsFlagged != 2 {
		t.Errorf("totals = %d flags / %d items, want 3/2", first.TotalFlags, first.ItemsFlagged)
	}
	if first.Priority != models.PriorityLow {
		t.Errorf("priority = %q, want %q", first.Priority, models.PriorityLow)
	}
	if len(first.TopFlagTypes) == 0 || first.TopFlagTypes[0] != "AI-style transitions" {
		t.Errorf("top flag types = %v, want AI-style transitions first", first.TopFlagTypes)
	}
}

func TestExportCSVHeaderAndRows(t *testing.T) {
	svc, runID := seedRun(t)

	data, err := svc.ExportCSV(context.Background(), runID)
	if err != nil {
		t.Fatalf("export csv: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "Type, Student Name, User ID, Item, Item ID, Flag" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 5 {
		t.Fatalf("lines = %d, want header + 4 rows", len(lines))
	}
	if !strings.Contains(lines[1], "Ann Ames") || !strings.Contains(lines[1], "AI-style transitions (4 found)") {
		t.Errorf("first row = %q", lines[1])
	}
}

func TestExportRequiresCompletedRun(t *testing.T) {
	db, err := repository.Open(":memory:", zerolog.Nop())
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := repository.NewRunRepository(db, zerolog.Nop())
	ctx := context.Background()

	run := &models.AnalysisRun{
		ID:        "run-pending",
		CourseID:  42,
		Status:    models.RunStatusPending,
		StartedAt: time.Now().UTC(),
	}
	if err := repo.Create(ctx, run); err != nil {
		t.Fatalf("create run: %v", err)
	}

	svc := NewReportService(repo, zerolog.Nop())

	if _, err := svc.ExportCSV(ctx, run.ID); !errors.Is(err, ErrRunNotCompleted) {
		t.Errorf("pending run error = %v, want ErrRunNotCompleted", err)
	}
	if _, err := svc.ExportCSV(ctx, "missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("missing run error = %v, want ErrRunNotFound", err)
	}
}

func TestExportExcelProducesWorkbook(t *testing.T) {
	svc, runID := seedRun(t)

	data, err := svc.ExportExcel(context.Background(), runID)
	if err != nil {
		t.Fatalf("export excel: %v", err)
	}
	// XLSX is a zip container.
	if len(data) < 4 || data[0] != 'P' || data[1] != 'K' {
		t.Errorf("output does not look like an xlsx file (%d bytes)", len(data))
	}
}

func TestExportGradeRationale(t *testing.T) {
	svc, _ := seedRun(t)

	records := []models.GradeRecord{
		{StudentName: "Ann Ames", UserID: 1, Grade: "complete", Reason: "Meets requirements"},
		{StudentName: "Bob Burns", UserID: 2, Grade: "incomplete", Reason: "No submission"},
	}

	data := svc.ExportGradeRationale(records)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if lines[0] != "Student Name, User ID, Grade, Reason" {
		t.Errorf("header = %q", lines[0])
	}
	if len(lines) != 3 {
		t.Fatalf("lines = %d, want header + 2 rows", len(lines))
	}
	if !strings.Contains(lines[2], "incomplete") || !strings.Contains(lines[2], "No submission") {
		t.Errorf("second row = %q", lines[2])
	}
}
