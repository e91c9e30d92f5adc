package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog"

	"github.com/grouchyseafowl/Autograder4Canvas/internal/models"
)

type RunRepository interface {
	Create(ctx context.Context, run *models.AnalysisRun) error
	GetByID(ctx context.Context, id string) (*models.AnalysisRun, error)
	GetRecent(ctx context.Context, limit int) ([]models.AnalysisRun, error)
	UpdateStatus(ctx context.Context, id string, status models.RunStatus, errMsg string) error
	Complete(ctx context.Context, run *models.AnalysisRun) error
	SaveFlags(ctx context.Context, runID string, flags []models.FlagRecord) error
	GetFlags(ctx context.Context, runID string) ([]models.FlagRecord, error)
	Ping(ctx context.Context) error
}

type runRepository struct {
	*SQLiteRepository
}

func NewRunRepository(db *sql.DB, logger zerolog.Logger) RunRepository {
	return &runRepository{
		SQLiteRepository: NewSQLiteRepository(db, logger),
	}
}

func (r *runRepository) Create(ctx context.Context, run *models.AnalysisRun) error {
	query := `
		INSERT INTO analysis_runs (
			id, course_id, course_name, profile_key, status, error,
			student_count, flag_count, started_at, completed_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		run.ID,
		run.CourseID,
		run.CourseName,
		run.ProfileKey,
		string(run.Status),
		run.Error,
		run.StudentCount,
		run.FlagCount,
		run.StartedAt,
		run.CompletedAt,
	)

	return err
}

func (r *runRepository) GetByID(ctx context.Context, id string) (*models.AnalysisRun, error) {
	query := `
		SELECT id, course_id, course_name, profile_key, status, error,
			student_count, flag_count, started_at, completed_at
		FROM analysis_runs
		WHERE id = ?
	`

	run := &models.AnalysisRun{}
	var status string
	var completedAt sql.NullTime

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID,
		&run.CourseID,
		&run.CourseName,
		&run.ProfileKey,
		&status,
		&run.Error,
		&run.StudentCount,
		&run.FlagCount,
		&run.StartedAt,
		&completedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	run.Status = models.RunStatus(status)
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}

	return run, nil
}

func (r *runRepository) GetRecent(ctx context.Context, limit int) ([]models.AnalysisRun, error) {
	query := `
		SELECT id, course_id, course_name, profile_key, status, error,
			student_count, flag_count, started_at, completed_at
		FROM analysis_runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.AnalysisRun
	for rows.Next() {
		var run models.AnalysisRun
		var status string
		var completedAt sql.NullTime

		if err := rows.Scan(
			&run.ID,
			&run.CourseID,
			&run.CourseName,
			&run.ProfileKey,
			&status,
			&run.Error,
			&run.StudentCount,
			&run.FlagCount,
			&run.StartedAt,
			&completedAt,
		); err != nil {
			return nil, err
		}

		run.Status = models.RunStatus(status)
		if completedAt.Valid {
			run.CompletedAt = &completedAt.Time
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

func (r *runRepository) UpdateStatus(ctx context.Context, id string, status models.RunStatus, errMsg string) error {
	query := `UPDATE analysis_runs SET status = ?, error = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query, string(status), errMsg, id)
	return err
}

func (r *runRepository) Complete(ctx context.Context, run *models.AnalysisRun) error {
	now := time.Now()
	run.CompletedAt = &now
	run.Status = models.RunStatusCompleted

	// course_name is resolved during the run, after Create.
	query := `
		UPDATE analysis_runs
		SET status = ?, course_name = ?, student_count = ?, flag_count = ?, completed_at = ?
		WHERE id = ?
	`
	_, err := r.db.ExecContext(ctx, query,
		string(run.Status),
		run.CourseName,
		run.StudentCount,
		run.FlagCount,
		run.CompletedAt,
		run.ID,
	)
	return err
}

func (r *runRepository) SaveFlags(ctx context.Context, runID string, flags []models.FlagRecord) error {
	if len(flags) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO run_flags (
			run_id, item_type, student_name, user_id, item_name, item_id,
			flag, check_name, evidence
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range flags {
		if _, err := stmt.ExecContext(ctx,
			runID,
			f.ItemType,
			f.StudentName,
			f.UserID,
			f.ItemName,
			f.ItemID,
			f.Flag,
			f.Check,
			f.Evidence,
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *runRepository) GetFlags(ctx context.Context, runID string) ([]models.FlagRecord, error) {
	query := `
		SELECT item_type, student_name, user_id, item_name, item_id,
			flag, check_name, evidence
		FROM run_flags
		WHERE run_id = ?
		ORDER BY id
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flags []models.FlagRecord
	for rows.Next() {
		var f models.FlagRecord
		if err := rows.Scan(
			&f.ItemType,
			&f.StudentName,
			&f.UserID,
			&f.ItemName,
			&f.ItemID,
			&f.Flag,
			&f.Check,
			&f.Evidence,
		); err != nil {
			return nil, err
		}
		flags = append(flags, f)
	}

	return flags, rows.Err()
}
