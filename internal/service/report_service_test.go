package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qst-do/qstreport/internal/acquisition"
	"github.com/qst-do/qstreport/internal/dto"
	"github.com/qst-do/qstreport/internal/models"
	"github.com/qst-do/qstreport/internal/repository"
	"github.com/qst-do/qstreport/pkg/jobs"
)

type reportRepoStub struct {
	jobs map[string]*models.ReportJob
}

func newReportRepoStub() *reportRepoStub {
	return &reportRepoStub{jobs: map[string]*models.ReportJob{}}
}

func (r *reportRepoStub) Create(ctx context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	r.jobs[job.ID] = job
	return nil
}

func (r *reportRepoStub) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	job, ok := r.jobs[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return job, nil
}

func (r *reportRepoStub) Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error {
	job, ok := r.jobs[id]
	if !ok {
		return errors.New("not found")
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.Progress != nil {
		job.Progress = *params.Progress
	}
	if params.Message != nil {
		job.Message = *params.Message
	}
	if params.Warnings != nil {
		job.Warnings = *params.Warnings
	}
	if params.ResultURL != nil {
		job.ResultURL = params.ResultURL
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

func (r *reportRepoStub) ListQueued(ctx context.Context, limit int) ([]models.ReportJob, error) {
	var out []models.ReportJob
	for _, job := range r.jobs {
		if job.Status == models.ReportStatusQueued {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (r *reportRepoStub) ListFinishedBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.ReportJob, error) {
	return nil, nil
}

type queueStub struct {
	enqueued []jobs.Job
	err      error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.enqueued = append(q.enqueued, job)
	return nil
}

type generatorStub struct {
	result *ExportResult
	err    error
}

func (g *generatorStub) Generate(ctx context.Context, job *models.ReportJob, onProgress acquisition.ProgressFunc) (*ExportResult, error) {
	if g.err != nil {
		return nil, g.err
	}
	if onProgress != nil {
		onProgress(50, "collecte siam")
	}
	return g.result, nil
}

func newReportServiceForTest(repo *reportRepoStub, queue *queueStub) *ReportService {
	return NewReportService(repo, queue, nil, validator.New(), zap.NewNop(), ReportServiceConfig{ResultTTL: time.Hour})
}

func TestCreateJobEnqueues(t *testing.T) {
	repo := newReportRepoStub()
	queue := &queueStub{}
	svc := newReportServiceForTest(repo, queue)

	resp, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		Kind:   "weekly",
		Anchor: "2024-03-14",
		Format: models.ReportFormatXLSX,
	}, "rco")
	require.NoError(t, err)
	require.NotEmpty(t, resp.ID)
	require.Equal(t, models.ReportStatusQueued, resp.Status)
	require.Len(t, queue.enqueued, 1)

	job := repo.jobs[resp.ID]
	require.Equal(t, models.ReportKindWeekly, job.Kind)
	require.Equal(t, time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC), job.Params.Anchor)
}

func TestCreateJobDefaultsAnchorToToday(t *testing.T) {
	repo := newReportRepoStub()
	svc := newReportServiceForTest(repo, &queueStub{})

	resp, err := svc.CreateJob(context.Background(), dto.ReportRequest{
		Kind:   "committee",
		Format: models.ReportFormatPDF,
	}, "gsst")
	require.NoError(t, err)

	job := repo.jobs[resp.ID]
	require.WithinDuration(t, time.Now().UTC(), job.Params.Anchor, time.Minute)
}

func TestCreateJobValidation(t *testing.T) {
	svc := newReportServiceForTest(newReportRepoStub(), &queueStub{})

	_, err := svc.CreateJob(context.Background(), dto.ReportRequest{Kind: "monthly", Format: models.ReportFormatXLSX}, "rco")
	require.Error(t, err)

	_, err = svc.CreateJob(context.Background(), dto.ReportRequest{Kind: "weekly", Format: "docx"}, "rco")
	require.Error(t, err)

	_, err = svc.CreateJob(context.Background(), dto.ReportRequest{Kind: "weekly", Anchor: "14/03/2024", Format: models.ReportFormatXLSX}, "rco")
	require.Error(t, err)
}

func TestCreateJobEnqueueFailureMarksJobFailed(t *testing.T) {
	repo := newReportRepoStub()
	queue := &queueStub{err: errors.New("queue closed")}
	svc := newReportServiceForTest(repo, queue)

	_, err := svc.CreateJob(context.Background(), dto.ReportRequest{Kind: "weekly", Format: models.ReportFormatXLSX}, "rco")
	require.Error(t, err)

	require.Len(t, repo.jobs, 1)
	for _, job := range repo.jobs {
		require.Equal(t, models.ReportStatusFailed, job.Status)
	}
}

func TestGetStatusExposesWarnings(t *testing.T) {
	repo := newReportRepoStub()
	url := "/api/v1/export/token"
	repo.jobs["job-1"] = &models.ReportJob{
		ID:        "job-1",
		Kind:      models.ReportKindWeekly,
		Status:    models.ReportStatusFinished,
		Progress:  100,
		Message:   "rapport disponible",
		Warnings:  models.StringList{"siam-legacy: indisponible"},
		ResultURL: &url,
	}
	svc := newReportServiceForTest(repo, &queueStub{})

	resp, err := svc.GetStatus(context.Background(), "job-1")
	require.NoError(t, err)
	require.Equal(t, models.ReportStatusFinished, resp.Status)
	require.Equal(t, "rapport disponible", resp.Message)
	require.Equal(t, models.StringList{"siam-legacy: indisponible"}, resp.Warnings)
	require.Equal(t, &url, resp.ResultURL)
}

func TestRecoverPendingJobs(t *testing.T) {
	repo := newReportRepoStub()
	repo.jobs["job-1"] = &models.ReportJob{ID: "job-1", Kind: models.ReportKindWeekly, Status: models.ReportStatusQueued}
	repo.jobs["job-2"] = &models.ReportJob{ID: "job-2", Kind: models.ReportKindWeekly, Status: models.ReportStatusFinished}
	queue := &queueStub{}
	svc := newReportServiceForTest(repo, queue)

	svc.RecoverPendingJobs(context.Background())
	require.Len(t, queue.enqueued, 1)
	require.Equal(t, "job-1", queue.enqueued[0].ID)
}

func TestReportWorkerFinishesJob(t *testing.T) {
	repo := newReportRepoStub()
	repo.jobs["job-1"] = &models.ReportJob{
		ID:     "job-1",
		Kind:   models.ReportKindWeekly,
		Status: models.ReportStatusQueued,
		Params: models.ReportJobParams{Kind: models.ReportKindWeekly, Anchor: time.Now(), Format: models.ReportFormatXLSX},
	}
	gen := &generatorStub{result: &ExportResult{
		URL:      "/api/v1/export/token",
		Warnings: []string{"epeires: timeout"},
	}}
	worker := NewReportWorker(repo, gen, nil, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1"})
	require.NoError(t, err)

	job := repo.jobs["job-1"]
	require.Equal(t, models.ReportStatusFinished, job.Status)
	require.Equal(t, 100, job.Progress)
	require.Equal(t, models.StringList{"epeires: timeout"}, job.Warnings)
	require.NotNil(t, job.ResultURL)
	require.NotNil(t, job.FinishedAt)
}

func TestReportWorkerFailsWithoutRetry(t *testing.T) {
	repo := newReportRepoStub()
	repo.jobs["job-1"] = &models.ReportJob{
		ID:     "job-1",
		Kind:   models.ReportKindWeekly,
		Status: models.ReportStatusQueued,
	}
	gen := &generatorStub{err: errors.New("all sources failed")}
	worker := NewReportWorker(repo, gen, nil, zap.NewNop())

	err := worker.Handle(context.Background(), jobs.Job{ID: "job-1"})
	require.Error(t, err)

	job := repo.jobs["job-1"]
	require.Equal(t, models.ReportStatusFailed, job.Status)
	require.Equal(t, 100, job.Progress)
	require.NotNil(t, job.ErrorMessage)
	require.Equal(t, "all sources failed", *job.ErrorMessage)
}
