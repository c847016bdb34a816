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
	"github.com/qst-do/qstreport/pkg/timeutil"
)

func newArchiveRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestArchiveRepositoryCreateAndGet(t *testing.T) {
	db, mock, cleanup := newArchiveRepoMock(t)
	defer cleanup()

	repo := NewArchiveRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO archived_work_orders")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	start := time.Date(2024, 3, 5, 8, 0, 0, 0, time.UTC)
	end := start.Add(4 * time.Hour)
	item := &models.ArchivedWorkOrder{
		JobID:             "job-1",
		SourceName:        "siam",
		InternalReference: "TVX-rnv-24-042",
		PublicID:          "4217",
		Title:             "Maintenance VOR",
		Pole:              models.PoleCNS,
		Entity:            models.EntityRadionavigation,
		Kind:              models.KindSimple,
		PeriodStart:       start,
		PeriodEnd:         end,
		Payload: models.WorkOrderPayload{WorkOrder: models.WorkOrder{
			InternalReference: "TVX-rnv-24-042",
			Title:             "Maintenance VOR",
			WorkPeriods:       timeutil.PeriodCollection{{Start: start, End: end}},
		}},
	}
	require.NoError(t, repo.Create(context.Background(), item))
	require.NotEmpty(t, item.ID)

	rows := sqlmock.NewRows([]string{"id", "job_id", "source_name", "internal_reference", "public_id", "title", "pole", "entity", "kind", "is_cancelled", "period_start", "period_end", "payload", "acquired_at"}).
		AddRow(item.ID, "job-1", "siam", "TVX-rnv-24-042", "4217", "Maintenance VOR", int(models.PoleCNS), int(models.EntityRadionavigation), int(models.KindSimple), false, start, end,
			`{"InternalReference":"TVX-rnv-24-042","Title":"Maintenance VOR"}`, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, job_id, source_name, internal_reference")).
		WithArgs(item.ID).
		WillReturnRows(rows)

	found, err := repo.GetByID(context.Background(), item.ID)
	require.NoError(t, err)
	require.Equal(t, "TVX-rnv-24-042", found.InternalReference)
	require.Equal(t, "TVX-rnv-24-042", found.Payload.WorkOrder.InternalReference)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newArchiveRepoMock(t)
	defer cleanup()

	repo := NewArchiveRepository(db)
	pole := models.PoleCNS
	from := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "job_id", "source_name", "internal_reference", "public_id", "title", "pole", "entity", "kind", "is_cancelled", "period_start", "period_end", "payload", "acquired_at"}).
		AddRow("arch-1", "job-1", "siam", "TVX-rnv-24-042", "4217", "Maintenance VOR", int(pole), int(models.EntityRadionavigation), 0, false, from, from.Add(time.Hour), `{}`, time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, job_id, source_name, internal_reference")).
		WithArgs("job-1", int64(pole), from).
		WillReturnRows(rows)

	items, err := repo.List(context.Background(), models.ArchiveFilter{
		JobID: "job-1",
		Pole:  &pole,
		From:  &from,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "arch-1", items[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestArchiveRepositoryDeleteOlderThan(t *testing.T) {
	db, mock, cleanup := newArchiveRepoMock(t)
	defer cleanup()

	repo := NewArchiveRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM archived_work_orders WHERE acquired_at < $1")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.DeleteOlderThan(context.Background(), time.Now().AddDate(0, -6, 0))
	require.NoError(t, err)
	require.EqualValues(t, 3, deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}
