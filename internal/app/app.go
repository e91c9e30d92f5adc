package app

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/analyzer"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/config"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/delivery/httpd"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/heuristics"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/repository"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/service"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/service/integration"
	"github.com/grouchyseafowl/Autograder4Canvas/internal/worker"
)

type App struct {
	server *http.Server
	logger zerolog.Logger
	config *config.Config
	db     *sql.DB
	pool   *worker.WorkerPool

	AnalysisService service.AnalysisService
	ReportService   service.ReportService
	GradingService  service.GradingService
}

func New(cfg *config.Config, log zerolog.Logger, db *sql.DB) (*App, error) {
	runRepo := repository.NewRunRepository(db, log)

	canvasClient := integration.NewCanvasClient(
		cfg.Canvas.BaseURL,
		cfg.Canvas.Token,
		cfg.Canvas.Timeout,
		cfg.Canvas.RetryCount,
		cfg.Canvas.RetryDelay,
		log,
	)

	var verifier heuristics.CitationVerifier
	if cfg.Citations.Enabled {
		verifier = integration.NewCitationClient(
			cfg.Citations.Timeout,
			cfg.Citations.RequestsPerSecond,
			log,
		)
	}

	submissionAnalyzer := analyzer.New(verifier, log)

	workerPool := worker.NewWorkerPool(cfg.Analysis.MaxWorkers, log)

	analysisService := service.NewAnalysisService(
		runRepo,
		canvasClient,
		submissionAnalyzer,
		workerPool,
		log,
		service.AnalysisConfig{
			RunTimeout: cfg.Analysis.RunTimeout,
			MaxWorkers: cfg.Analysis.MaxWorkers,
		},
	)

	reportService := service.NewReportService(runRepo, log)

	gradingService := service.NewGradingService(canvasClient, log)

	handler := httpd.NewHandler(
		analysisService,
		reportService,
		gradingService,
		log,
	)

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(60 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORS.AllowedOrigins,
		AllowedMethods:   cfg.CORS.AllowedMethods,
		AllowedHeaders:   cfg.CORS.AllowedHeaders,
		ExposedHeaders:   cfg.CORS.ExposedHeaders,
		AllowCredentials: cfg.CORS.AllowCredentials,
		MaxAge:           cfg.CORS.MaxAge,
	}))

	handler.RegisterRoutes(router)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &App{
		server:          server,
		logger:          log,
		config:          cfg,
		db:              db,
		pool:            workerPool,
		AnalysisService: analysisService,
		ReportService:   reportService,
		GradingService:  gradingService,
	}, nil
}

func (a *App) Run() error {
	if err := a.pool.Start(context.Background()); err != nil {
		a.logger.Error().Err(err).Msg("Failed to start worker pool")
		return err
	}

	a.logger.Info().Msgf("Starting autograder on %s", a.config.Server.Address)
	return a.server.ListenAndServe()
}

// StartPool starts only the worker pool, for CLI runs without the HTTP server.
func (a *App) StartPool(ctx context.Context) error {
	return a.pool.Start(ctx)
}

func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info().Msg("Shutting down autograder...")

	if err := a.pool.Stop(); err != nil {
		a.logger.Error().Err(err).Msg("Failed to stop worker pool")
	}

	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error().Err(err).Msg("Failed to shutdown HTTP server")
		return err
	}

	a.logger.Info().Msg("Autograder stopped")
	return nil
}
