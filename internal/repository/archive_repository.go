package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/qst-do/qstreport/internal/models"
)

// ArchiveRepository persists work orders captured during report runs.
type ArchiveRepository struct {
	db *sqlx.DB
}

// NewArchiveRepository constructs the repository.
func NewArchiveRepository(db *sqlx.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

const archiveColumns = `id, job_id, source_name, internal_reference, public_id, title, pole, entity, kind, is_cancelled, period_start, period_end, payload, acquired_at`

// Create stores one archived work order row.
func (r *ArchiveRepository) Create(ctx context.Context, item *models.ArchivedWorkOrder) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	if item.AcquiredAt.IsZero() {
		item.AcquiredAt = time.Now().UTC()
	}
	const query = `INSERT INTO archived_work_orders
	(id, job_id, source_name, internal_reference, public_id, title, pole, entity, kind, is_cancelled, period_start, period_end, payload, acquired_at)
	VALUES (:id, :job_id, :source_name, :internal_reference, :public_id, :title, :pole, :entity, :kind, :is_cancelled, :period_start, :period_end, :payload, :acquired_at)`
	if _, err := r.db.NamedExecContext(ctx, query, item); err != nil {
		return fmt.Errorf("create archived work order: %w", err)
	}
	return nil
}

// CreateBatch stores all rows for a run, stopping on the first failure.
func (r *ArchiveRepository) CreateBatch(ctx context.Context, items []models.ArchivedWorkOrder) error {
	for i := range items {
		if err := r.Create(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves one archived row.
func (r *ArchiveRepository) GetByID(ctx context.Context, id string) (*models.ArchivedWorkOrder, error) {
	query := fmt.Sprintf(`SELECT %s FROM archived_work_orders WHERE id = $1`, archiveColumns)
	var item models.ArchivedWorkOrder
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns archived work orders applying filters, newest first.
func (r *ArchiveRepository) List(ctx context.Context, filter models.ArchiveFilter) ([]models.ArchivedWorkOrder, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT ` + archiveColumns + ` FROM archived_work_orders`)
	args := make([]interface{}, 0, 6)
	conditions := make([]string, 0, 6)

	if filter.JobID != "" {
		args = append(args, filter.JobID)
		conditions = append(conditions, fmt.Sprintf("job_id = $%d", len(args)))
	}
	if filter.Reference != "" {
		args = append(args, filter.Reference)
		conditions = append(conditions, fmt.Sprintf("internal_reference = $%d", len(args)))
	}
	if filter.Pole != nil {
		args = append(args, *filter.Pole)
		conditions = append(conditions, fmt.Sprintf("pole = $%d", len(args)))
	}
	if filter.Entity != nil {
		args = append(args, *filter.Entity)
		conditions = append(conditions, fmt.Sprintf("entity = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("period_end >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("period_start <= $%d", len(args)))
	}

	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY acquired_at DESC, internal_reference ASC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var records []models.ArchivedWorkOrder
	if err := r.db.SelectContext(ctx, &records, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list archived work orders: %w", err)
	}
	return records, nil
}

// Count returns the number of rows matching the filter, ignoring paging.
func (r *ArchiveRepository) Count(ctx context.Context, filter models.ArchiveFilter) (int, error) {
	builder := strings.Builder{}
	builder.WriteString(`SELECT COUNT(*) FROM archived_work_orders`)
	args := make([]interface{}, 0, 6)
	conditions := make([]string, 0, 6)

	if filter.JobID != "" {
		args = append(args, filter.JobID)
		conditions = append(conditions, fmt.Sprintf("job_id = $%d", len(args)))
	}
	if filter.Reference != "" {
		args = append(args, filter.Reference)
		conditions = append(conditions, fmt.Sprintf("internal_reference = $%d", len(args)))
	}
	if filter.Pole != nil {
		args = append(args, *filter.Pole)
		conditions = append(conditions, fmt.Sprintf("pole = $%d", len(args)))
	}
	if filter.Entity != nil {
		args = append(args, *filter.Entity)
		conditions = append(conditions, fmt.Sprintf("entity = $%d", len(args)))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		conditions = append(conditions, fmt.Sprintf("period_end >= $%d", len(args)))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		conditions = append(conditions, fmt.Sprintf("period_start <= $%d", len(args)))
	}

	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}

	var total int
	if err := r.db.GetContext(ctx, &total, builder.String(), args...); err != nil {
		return 0, fmt.Errorf("count archived work orders: %w", err)
	}
	return total, nil
}

// DeleteOlderThan removes rows acquired before the cutoff.
func (r *ArchiveRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM archived_work_orders WHERE acquired_at < $1`
	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete archived work orders: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("check archive delete rows: %w", err)
	}
	return affected, nil
}
