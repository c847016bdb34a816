package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/qst-do/qstreport/internal/dto"
	"github.com/qst-do/qstreport/internal/models"
	appErrors "github.com/qst-do/qstreport/pkg/errors"
)

type archiveStore interface {
	GetByID(ctx context.Context, id string) (*models.ArchivedWorkOrder, error)
	List(ctx context.Context, filter models.ArchiveFilter) ([]models.ArchivedWorkOrder, error)
	Count(ctx context.Context, filter models.ArchiveFilter) (int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// ArchiveServiceConfig governs listing bounds and retention.
type ArchiveServiceConfig struct {
	DefaultPageSize int
	MaxPageSize     int
	// Retention bounds how long archived work orders are kept. Zero
	// disables pruning.
	Retention       time.Duration
	CleanupInterval time.Duration
}

// ArchiveService exposes the work orders captured by past report runs.
type ArchiveService struct {
	repo    archiveStore
	metrics *MetricsService
	logger  *zap.Logger
	cfg     ArchiveServiceConfig
}

// NewArchiveService constructs the service with defaults.
func NewArchiveService(repo archiveStore, metrics *MetricsService, logger *zap.Logger, cfg ArchiveServiceConfig) *ArchiveService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 50
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 200
	}
	return &ArchiveService{repo: repo, metrics: metrics, logger: logger, cfg: cfg}
}

// List returns a page of archived work orders matching the query.
func (s *ArchiveService) List(ctx context.Context, query dto.ArchiveQuery) ([]models.ArchivedWorkOrder, *models.Pagination, error) {
	filter, page, pageSize, err := s.buildFilter(query)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count archived work orders")
	}
	items, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list archived work orders")
	}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("archive_list", time.Since(start))
	}

	pagination := &models.Pagination{Page: page, PageSize: pageSize, TotalCount: total}
	return items, pagination, nil
}

// Get returns a single archived work order by id.
func (s *ArchiveService) Get(ctx context.Context, id string) (*models.ArchivedWorkOrder, error) {
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load archived work order")
	}
	return item, nil
}

// StartCleanup boots a goroutine that prunes rows past retention.
func (s *ArchiveService) StartCleanup(ctx context.Context) {
	if s.cfg.Retention <= 0 || s.cfg.CleanupInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.CleanupInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				cutoff := time.Now().Add(-s.cfg.Retention)
				deleted, err := s.repo.DeleteOlderThan(ctx, cutoff)
				if err != nil {
					s.logger.Sugar().Warnw("archive cleanup failed", "error", err)
					continue
				}
				if deleted > 0 {
					s.logger.Info("archive pruned", zap.Int64("deleted", deleted))
				}
			}
		}
	}()
}

func (s *ArchiveService) buildFilter(query dto.ArchiveQuery) (models.ArchiveFilter, int, int, error) {
	page := query.Page
	if page <= 0 {
		page = 1
	}
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = s.cfg.DefaultPageSize
	}
	if pageSize > s.cfg.MaxPageSize {
		pageSize = s.cfg.MaxPageSize
	}

	filter := models.ArchiveFilter{
		JobID:     query.JobID,
		Reference: query.Reference,
		Limit:     pageSize,
		Offset:    (page - 1) * pageSize,
	}

	if query.Pole != "" {
		pole, ok := models.PoleByName(query.Pole)
		if !ok {
			return filter, 0, 0, appErrors.Clone(appErrors.ErrValidation, "unknown pole")
		}
		filter.Pole = &pole
	}
	if query.Entity != "" {
		entity, ok := models.EntityByName(query.Entity)
		if !ok {
			return filter, 0, 0, appErrors.Clone(appErrors.ErrValidation, "unknown entity")
		}
		filter.Entity = &entity
	}
	if query.From != "" {
		from, err := time.Parse("2006-01-02", query.From)
		if err != nil {
			return filter, 0, 0, appErrors.Clone(appErrors.ErrValidation, "from must be formatted YYYY-MM-DD")
		}
		filter.From = &from
	}
	if query.To != "" {
		to, err := time.Parse("2006-01-02", query.To)
		if err != nil {
			return filter, 0, 0, appErrors.Clone(appErrors.ErrValidation, "to must be formatted YYYY-MM-DD")
		}
		filter.To = &to
	}
	return filter, page, pageSize, nil
}
