package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qst-do/qstreport/internal/acquisition"
	"github.com/qst-do/qstreport/internal/models"
	"github.com/qst-do/qstreport/pkg/export"
	"github.com/qst-do/qstreport/pkg/storage"
	"github.com/qst-do/qstreport/pkg/timeutil"
)

type reportCollector interface {
	Collect(ctx context.Context, kind models.ReportKind, anchor time.Time, progress acquisition.ProgressFunc) (*models.ReportData, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type archiveWriter interface {
	CreateBatch(ctx context.Context, items []models.ArchivedWorkOrder) error
}

type xlsxRenderer interface {
	Render(data *models.ReportData) ([]byte, error)
}

type pdfRenderer interface {
	Render(data *models.ReportData, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	// CacheTTL bounds the reuse of collected portal data between runs.
	CacheTTL time.Duration
}

// ExportResult captures successful generation metadata.
type ExportResult struct {
	RelativePath string
	Token        string
	URL          string
	Format       models.ReportFormat
	ExpiresAt    time.Time
	// Warnings lists the sources that failed during acquisition.
	Warnings []string
}

// ExportService runs the acquisition, archives the collected work orders
// and persists the rendered report file.
type ExportService struct {
	collector reportCollector
	storage   fileStorage
	archive   archiveWriter
	xlsx      xlsxRenderer
	pdf       pdfRenderer
	signer    *storage.DownloadSigner
	cache     *CacheService
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(collector reportCollector, fileStore fileStorage, archive archiveWriter, signer *storage.DownloadSigner, cache *CacheService, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		collector: collector,
		storage:   fileStore,
		archive:   archive,
		xlsx:      export.NewXLSXExporter(),
		pdf:       export.NewPDFExporter(),
		signer:    signer,
		cache:     cache,
		logger:    logger,
		cfg:       cfg,
	}
}

// Generate runs the full pipeline for one job: collect, archive, render,
// store, sign. Progress updates are forwarded to onProgress.
func (s *ExportService) Generate(ctx context.Context, job *models.ReportJob, onProgress acquisition.ProgressFunc) (*ExportResult, error) {
	if job == nil {
		return nil, fmt.Errorf("job nil")
	}
	if onProgress == nil {
		onProgress = func(int, string) {}
	}

	data, err := s.collectData(ctx, job, onProgress)
	if err != nil {
		return nil, err
	}

	s.archiveWorkOrders(ctx, job, data)

	var payload []byte
	switch job.Params.Format {
	case models.ReportFormatXLSX:
		payload, err = s.xlsx.Render(data)
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(data, reportTitle(job.Kind, data.ReportPeriod))
	default:
		err = fmt.Errorf("unsupported format %s", job.Params.Format)
	}
	if err != nil {
		return nil, err
	}

	filename := s.buildFilename(job)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return nil, err
	}

	token, expiresAt, err := s.signer.Sign(job.ID, relPath)
	if err != nil {
		return nil, err
	}
	signedURL := strings.TrimRight(s.cfg.APIPrefix, "/")
	if signedURL == "" {
		signedURL = "/api/v1"
	}
	signedURL = fmt.Sprintf("%s/export/%s", signedURL, token)

	return &ExportResult{
		RelativePath: relPath,
		Token:        token,
		URL:          signedURL,
		Format:       job.Params.Format,
		ExpiresAt:    expiresAt,
		Warnings:     data.Warnings,
	}, nil
}

// collectData runs the acquisition, reusing a recent collection for the
// same kind and week when one is cached.
func (s *ExportService) collectData(ctx context.Context, job *models.ReportJob, onProgress acquisition.ProgressFunc) (*models.ReportData, error) {
	key := collectionCacheKey(job.Kind, job.Params.Anchor)

	if s.cache.Enabled() && s.cfg.CacheTTL > 0 {
		var cached models.ReportData
		hit, err := s.cache.Get(ctx, key, &cached)
		if err == nil && hit {
			s.logger.Info("acquisition skipped, cached data reused", zap.String("key", key))
			onProgress(100, "données réutilisées")
			return &cached, nil
		}
	}

	data, err := s.collector.Collect(ctx, job.Kind, job.Params.Anchor, onProgress)
	if err != nil {
		return nil, err
	}

	// Partial collections are not cached: the caller may relaunch to
	// pick up a recovered source.
	if s.cache.Enabled() && s.cfg.CacheTTL > 0 && len(data.Warnings) == 0 {
		if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("cache store failed", zap.String("key", key), zap.Error(err))
		}
	}
	return data, nil
}

// archiveWorkOrders persists the run's work orders. Archive failures
// degrade to a log entry, the report itself is unaffected.
func (s *ExportService) archiveWorkOrders(ctx context.Context, job *models.ReportJob, data *models.ReportData) {
	if s.archive == nil || len(data.WorkOrders) == 0 {
		return
	}
	now := time.Now().UTC()
	items := make([]models.ArchivedWorkOrder, 0, len(data.WorkOrders))
	for _, w := range data.WorkOrders {
		period := w.GlobalPeriod()
		items = append(items, models.ArchivedWorkOrder{
			ID:                uuid.NewString(),
			JobID:             job.ID,
			SourceName:        w.Source,
			InternalReference: w.InternalReference,
			PublicID:          w.PublicID,
			Title:             w.Title,
			Pole:              w.Pole,
			Entity:            w.Entity,
			Kind:              w.Kind,
			IsCancelled:       w.IsCancelled,
			PeriodStart:       period.Start,
			PeriodEnd:         period.End,
			Payload:           models.WorkOrderPayload{WorkOrder: *w},
			AcquiredAt:        now,
		})
	}
	if err := s.archive.CreateBatch(ctx, items); err != nil {
		s.logger.Warn("work order archiving failed",
			zap.String("job_id", job.ID),
			zap.Int("count", len(items)),
			zap.Error(err))
		return
	}
	s.logger.Info("work orders archived", zap.String("job_id", job.ID), zap.Int("count", len(items)))
}

// ParseToken validates download token metadata.
func (s *ExportService) ParseToken(token string, allowExpired bool) (jobID, relPath string, expiresAt time.Time, err error) {
	return s.signer.Verify(token, allowExpired)
}

// Open returns a handle to the stored file.
func (s *ExportService) Open(relPath string) (*os.File, error) {
	return s.storage.Open(relPath)
}

// Delete removes a stored report file.
func (s *ExportService) Delete(relPath string) error {
	return s.storage.Delete(relPath)
}

// Cleanup removes files older than ttl (defaults to configured ResultTTL when ttl <= 0).
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func (s *ExportService) buildFilename(job *models.ReportJob) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	week := timeutil.WeekOf(job.Params.Anchor)
	return fmt.Sprintf("%s_s%02d_%s.%s", string(job.Kind), week.Number, timestamp, job.Params.Format)
}

func collectionCacheKey(kind models.ReportKind, anchor time.Time) string {
	week := timeutil.WeekOf(anchor)
	return fmt.Sprintf("report:data:%s:%s", kind, week.Start.Format("2006-01-02"))
}

func reportTitle(kind models.ReportKind, period timeutil.TimePeriod) string {
	switch kind {
	case models.ReportKindCommittee:
		return "Rapport GSST"
	default:
		return fmt.Sprintf("Rapport RCO semaine n°%d", timeutil.ISOWeekNumber(period.End))
	}
}
