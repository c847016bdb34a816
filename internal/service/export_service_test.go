package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qst-do/qstreport/internal/acquisition"
	"github.com/qst-do/qstreport/internal/models"
	"github.com/qst-do/qstreport/pkg/storage"
	"github.com/qst-do/qstreport/pkg/timeutil"
)

type collectorStub struct {
	calls int
	err   error
}

func (c *collectorStub) Collect(ctx context.Context, kind models.ReportKind, anchor time.Time, progress acquisition.ProgressFunc) (*models.ReportData, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	if progress != nil {
		progress(100, "collecte terminée")
	}
	report, past, current := models.ReportWindows(kind, anchor)
	return &models.ReportData{
		Kind:              kind,
		ReportPeriod:      report,
		PastDataPeriod:    past,
		CurrentDataPeriod: current,
		WorkOrders: []*models.WorkOrder{
			{
				InternalReference: "TVX-rnv-24-042",
				PublicID:          "4217",
				Title:             "Maintenance VOR BGW",
				Source:            "siam",
				Pole:              models.PoleCNS,
				Entity:            models.EntityRadionavigation,
				WorkPeriods: timeutil.PeriodCollection{
					{Start: current.Start.Add(8 * time.Hour), End: current.Start.Add(11 * time.Hour)},
				},
			},
		},
	}, nil
}

type archiveWriterStub struct {
	batches [][]models.ArchivedWorkOrder
	err     error
}

func (a *archiveWriterStub) CreateBatch(ctx context.Context, items []models.ArchivedWorkOrder) error {
	if a.err != nil {
		return a.err
	}
	a.batches = append(a.batches, items)
	return nil
}

func newExportServiceForTest(t *testing.T, collector *collectorStub, archive *archiveWriterStub) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewDownloadSigner("secret", time.Hour)
	cfg := ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}
	svc := NewExportService(collector, store, archive, signer, nil, cfg, zap.NewNop())
	return svc, store
}

func weeklyJob(format models.ReportFormat) *models.ReportJob {
	anchor := time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC)
	return &models.ReportJob{
		ID:        "job-1",
		Kind:      models.ReportKindWeekly,
		Params:    models.ReportJobParams{Kind: models.ReportKindWeekly, Anchor: anchor, Format: format},
		CreatedBy: "rco",
	}
}

func TestExportServiceGenerateXLSX(t *testing.T) {
	collector := &collectorStub{}
	archive := &archiveWriterStub{}
	svc, store := newExportServiceForTest(t, collector, archive)

	result, err := svc.Generate(context.Background(), weeklyJob(models.ReportFormatXLSX), nil)
	require.NoError(t, err)
	require.NotEmpty(t, result.RelativePath)
	require.Contains(t, result.URL, "/export/")
	require.Contains(t, result.RelativePath, "weekly_s11_")

	path := store.Path(result.RelativePath)
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))

	require.Len(t, archive.batches, 1)
	require.Len(t, archive.batches[0], 1)
	row := archive.batches[0][0]
	require.Equal(t, "job-1", row.JobID)
	require.Equal(t, "TVX-rnv-24-042", row.InternalReference)
	require.Equal(t, "siam", row.SourceName)
	require.Equal(t, "Maintenance VOR BGW", row.Payload.Title)
}

func TestExportServiceGeneratePDF(t *testing.T) {
	collector := &collectorStub{}
	svc, store := newExportServiceForTest(t, collector, &archiveWriterStub{})

	result, err := svc.Generate(context.Background(), weeklyJob(models.ReportFormatPDF), nil)
	require.NoError(t, err)

	path := store.Path(result.RelativePath)
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestExportServiceArchiveFailureIsNotFatal(t *testing.T) {
	collector := &collectorStub{}
	archive := &archiveWriterStub{err: os.ErrPermission}
	svc, _ := newExportServiceForTest(t, collector, archive)

	_, err := svc.Generate(context.Background(), weeklyJob(models.ReportFormatXLSX), nil)
	require.NoError(t, err)
}

func TestExportServiceTokenRoundtrip(t *testing.T) {
	collector := &collectorStub{}
	svc, _ := newExportServiceForTest(t, collector, &archiveWriterStub{})

	result, err := svc.Generate(context.Background(), weeklyJob(models.ReportFormatXLSX), nil)
	require.NoError(t, err)

	jobID, relPath, _, err := svc.ParseToken(result.Token, false)
	require.NoError(t, err)
	require.Equal(t, "job-1", jobID)
	require.Equal(t, result.RelativePath, relPath)

	file, err := svc.Open(relPath)
	require.NoError(t, err)
	require.NoError(t, file.Close())
}
