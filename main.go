package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/app"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/config"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/corpus"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/models"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/repository"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/service"
	"github.com/grouchyseafowl/Autograder4Canvas/pkg/logger"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "analyze":
			runAnalyze(os.Args[2:])
			return
		case "grade":
			runGrade(os.Args[2:])
			return
		case "drafts":
			runDrafts(os.Args[2:])
			return
		case "serve":
			// Fall through to the server below.
		}
	}

	runServe()
}

func buildApp() (*app.App, *config.Config) {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log = logger.NewWithConfig(cfg.Logging.Level, cfg.Logging.Pretty, cfg.Logging.NoColor)

	db, err := repository.Open(cfg.Database.Path, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}

	application, err := app.New(cfg, log, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create application")
	}

	return application, cfg
}

func runServe() {
	log := logger.New()
	application, cfg := buildApp()

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	go func() {
		if err := application.Run(); err != nil {
			log.Fatal().Err(err).Msg("Failed to run application")
		}
	}()

	log.Info().Msgf("Autograder started on %s", cfg.Server.Address)

	<-ctx.Done()
	log.Info().Msg("Shutting down autograder...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to shutdown gracefully")
	}
}

func runAnalyze(args []string) {
	fs := flag.NewFlagSet("analyze", flag.ExitOnError)
	courseID := fs.Int64("course", 0, "Canvas course ID")
	profileKey := fs.String("profile", "", "analysis profile (defaults to config)")
	assignments := fs.String("assignments", "", "comma-separated assignment IDs (default all)")
	discussions := fs.Bool("discussions", false, "also analyze discussion posts")
	csvPath := fs.String("csv", "", "write the flag report CSV to this path")
	excelPath := fs.String("excel", "", "write the Excel workbook to this path")
	fs.Parse(args)

	log := logger.New()
	if *courseID <= 0 {
		log.Fatal().Msg("-course is required")
	}

	application, cfg := buildApp()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Analysis.RunTimeout)
	defer cancel()

	if err := application.StartPool(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to start worker pool")
	}

	req := service.RunRequest{
		CourseID:           *courseID,
		ProfileKey:         cfg.Analysis.Profile,
		IncludeDiscussions: *discussions,
		WhiteTextKeywords:  cfg.Analysis.WhiteTextKeywords,
	}
	if *profileKey != "" {
		req.ProfileKey = *profileKey
	}
	if *assignments != "" {
		for _, part := range strings.Split(*assignments, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				log.Fatal().Str("value", part).Msg("Invalid assignment ID")
			}
			req.AssignmentIDs = append(req.AssignmentIDs, id)
		}
	}

	run, err := application.AnalysisService.RunAnalysis(ctx, req)
	if err != nil {
		log.Fatal().Err(err).Msg("Analysis failed")
	}

	summary, err := application.ReportService.Summarize(ctx, run.ID)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to summarize run")
	}

	fmt.Printf("Course: %s\n", run.CourseName)
	fmt.Printf("Flags: %d across %d students\n", run.FlagCount, len(summary.Students))
	for _, s := range summary.Students {
		fmt.Printf("%3d. %-30s %3d flags  [%s]  %s\n",
			s.Rank, s.StudentName, s.TotalFlags, s.Priority, strings.Join(s.TopFlagTypes, ", "))
	}

	if *csvPath != "" {
		writeReport(log, *csvPath, func() ([]byte, error) {
			return application.ReportService.ExportCSV(ctx, run.ID)
		})
	}
	if *excelPath != "" {
		writeReport(log, *excelPath, func() ([]byte, error) {
			return application.ReportService.ExportExcel(ctx, run.ID)
		})
	}
}

func runGrade(args []string) {
	fs := flag.NewFlagSet("grade", flag.ExitOnError)
	courseID := fs.Int64("course", 0, "Canvas course ID")
	assignmentID := fs.Int64("assignment", 0, "assignment ID (default: all pass/fail assignments)")
	minWords := fs.Int("min-words", 0, "minimum word count for text submissions")
	regrade := fs.Bool("regrade", false, "regrade submissions that already have a grade")
	dryRun := fs.Bool("dry-run", false, "evaluate without posting grades to Canvas")
	rationale := fs.String("rationale", "", "write the grade rationale CSV to this path")
	fs.Parse(args)

	log := logger.New()
	if *courseID <= 0 {
		log.Fatal().Msg("-course is required")
	}

	application, cfg := buildApp()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	req := service.GradeRequest{
		CourseID:     *courseID,
		AssignmentID: *assignmentID,
		MinWordCount: *minWords,
		Regrade:      *regrade,
		DryRun:       *dryRun || cfg.Grading.DryRun,
	}
	if req.MinWordCount == 0 {
		req.MinWordCount = cfg.Grading.MinWordCount
	}

	type gradeBatch struct {
		name    string
		records []models.GradeRecord
	}

	var batches []gradeBatch
	if *assignmentID > 0 {
		records, err := application.GradingService.GradeAssignment(ctx, req)
		if err != nil {
			log.Fatal().Err(err).Msg("Grading failed")
		}
		batches = append(batches, gradeBatch{records: records})
	} else {
		results, err := application.GradingService.GradeCourse(ctx, req)
		if err != nil {
			log.Fatal().Err(err).Msg("Grading failed")
		}
		names := make([]string, 0, len(results))
		for name := range results {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			batches = append(batches, gradeBatch{name: name, records: results[name]})
		}
	}

	for _, batch := range batches {
		if batch.name != "" {
			fmt.Printf("\n%s\n", batch.name)
		}
		for _, r := range batch.records {
			fmt.Printf("  %-30s %-12s %s\n", r.StudentName, r.Grade, r.Reason)
		}
	}

	if *rationale != "" {
		var flat []byte
		for _, batch := range batches {
			flat = append(flat, application.ReportService.ExportGradeRationale(batch.records)...)
		}
		if err := os.WriteFile(*rationale, flat, 0o644); err != nil {
			log.Fatal().Err(err).Str("path", *rationale).Msg("Failed to write rationale CSV")
		}
		log.Info().Str("path", *rationale).Msg("Rationale CSV written")
	}
}

func runDrafts(args []string) {
	fs := flag.NewFlagSet("drafts", flag.ExitOnError)
	courseID := fs.Int64("course", 0, "Canvas course ID")
	roughID := fs.Int64("rough", 0, "rough draft assignment ID")
	finalID := fs.Int64("final", 0, "final draft assignment ID")
	fs.Parse(args)

	log := logger.New()
	if *courseID <= 0 || *roughID <= 0 || *finalID <= 0 {
		log.Fatal().Msg("-course, -rough and -final are required")
	}

	application, _ := buildApp()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	results, err := application.AnalysisService.CompareDraftAssignments(ctx, *courseID, *roughID, *finalID)
	if err != nil {
		log.Fatal().Err(err).Msg("Draft comparison failed")
	}

	for _, r := range results {
		fmt.Println(corpus.DraftReportLine(r.StudentName, r.Comparison))
		for _, f := range r.Comparison.Flags {
			fmt.Printf("    - %s\n", f)
		}
	}
}

func writeReport(log zerolog.Logger, path string, export func() ([]byte, error)) {
	data, err := export()
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to export report")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to write report")
	}
	fmt.Printf("Report written to %s\n", path)
}
