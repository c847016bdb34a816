package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/qst-do/qstreport/internal/models"
)

func newReportRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestReportRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()

	repo := NewReportRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO report_jobs")).
		WithArgs(sqlmock.AnyArg(), "weekly", sqlmock.AnyArg(), "QUEUED", 0, "", sqlmock.AnyArg(), nil, "user-1", sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	anchor := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	job := &models.ReportJob{
		Kind:      models.ReportKindWeekly,
		Params:    models.ReportJobParams{Kind: models.ReportKindWeekly, Anchor: anchor, Format: models.ReportFormatXLSX},
		CreatedBy: "user-1",
	}
	require.NoError(t, repo.Create(context.Background(), job))

	rows := sqlmock.NewRows([]string{"id", "kind", "params", "status", "progress", "message", "warnings", "result_url", "created_by", "created_at", "finished_at", "error_message"}).
		AddRow(job.ID, "weekly", `{"kind":"weekly","anchor":"2024-03-14T00:00:00Z","format":"xlsx"}`, "QUEUED", 0, "", "[]", nil, "user-1", time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, params, status, progress, message, warnings, result_url, created_by, created_at, finished_at, error_message FROM report_jobs WHERE id = $1")).
		WithArgs(job.ID).
		WillReturnRows(rows)

	fetched, err := repo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	require.Equal(t, job.ID, fetched.ID)
	require.Equal(t, models.ReportKindWeekly, fetched.Kind)
	require.Equal(t, models.ReportFormatXLSX, fetched.Params.Format)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryUpdate(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	now := time.Now()
	status := models.ReportStatusFinished
	progress := 100
	message := "collecte terminée"
	warnings := models.StringList{"siam-legacy indisponible"}
	result := "/api/v1/export/token"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE report_jobs SET status = $1, progress = $2, message = $3, warnings = $4, result_url = $5, finished_at = $6 WHERE id = $7")).
		WithArgs(status, progress, message, warnings, result, now, "job-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), "job-1", UpdateReportJobParams{
		Status:     &status,
		Progress:   &progress,
		Message:    &message,
		Warnings:   &warnings,
		ResultURL:  &result,
		FinishedAt: &now,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryListQueued(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{"id", "kind", "params", "status", "progress", "message", "warnings", "result_url", "created_by", "created_at", "finished_at", "error_message"}).
		AddRow("job-1", "committee", `{"kind":"committee","anchor":"2024-03-14T00:00:00Z","format":"pdf"}`, "QUEUED", 0, "", "[]", nil, "user-1", time.Now(), nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, params, status, progress, message, warnings, result_url, created_by, created_at, finished_at, error_message FROM report_jobs WHERE status = 'QUEUED' ORDER BY created_at ASC LIMIT $1")).
		WithArgs(20).
		WillReturnRows(rows)

	jobs, err := repo.ListQueued(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.Equal(t, models.ReportKindCommittee, jobs[0].Kind)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepositoryListFinishedBefore(t *testing.T) {
	db, mock, cleanup := newReportRepoMock(t)
	defer cleanup()
	repo := NewReportRepository(db)

	rows := sqlmock.NewRows([]string{"id", "kind", "params", "status", "progress", "message", "warnings", "result_url", "created_by", "created_at", "finished_at", "error_message"}).
		AddRow("job-1", "weekly", `{"kind":"weekly","anchor":"2024-03-14T00:00:00Z","format":"xlsx"}`, "FINISHED", 100, "collecte terminée", "[]", "/api/v1/export/token", "user-1", time.Now().Add(-48*time.Hour), time.Now().Add(-25*time.Hour), nil)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, kind, params, status, progress, message, warnings, result_url, created_by, created_at, finished_at, error_message FROM report_jobs WHERE status = 'FINISHED' AND finished_at IS NOT NULL AND finished_at < $1 ORDER BY finished_at ASC LIMIT $2")).
		WithArgs(sqlmock.AnyArg(), 50).
		WillReturnRows(rows)

	jobs, err := repo.ListFinishedBefore(context.Background(), time.Now(), 0)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
