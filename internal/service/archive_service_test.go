package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qst-do/qstreport/internal/dto"
	"github.com/qst-do/qstreport/internal/models"
	appErrors "github.com/qst-do/qstreport/pkg/errors"
)

type archiveStoreStub struct {
	items      []models.ArchivedWorkOrder
	lastFilter models.ArchiveFilter
}

func (s *archiveStoreStub) GetByID(ctx context.Context, id string) (*models.ArchivedWorkOrder, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i], nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *archiveStoreStub) List(ctx context.Context, filter models.ArchiveFilter) ([]models.ArchivedWorkOrder, error) {
	s.lastFilter = filter
	return s.items, nil
}

func (s *archiveStoreStub) Count(ctx context.Context, filter models.ArchiveFilter) (int, error) {
	return len(s.items), nil
}

func (s *archiveStoreStub) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func TestArchiveListPagination(t *testing.T) {
	store := &archiveStoreStub{items: []models.ArchivedWorkOrder{
		{ID: "a-1", InternalReference: "TVX-rnv-24-042"},
		{ID: "a-2", InternalReference: "TVX-str-24-007"},
	}}
	svc := NewArchiveService(store, nil, zap.NewNop(), ArchiveServiceConfig{})

	items, pagination, err := svc.List(context.Background(), dto.ArchiveQuery{Page: 2, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, 2, pagination.Page)
	require.Equal(t, 10, pagination.PageSize)
	require.Equal(t, 2, pagination.TotalCount)
	require.Equal(t, 10, store.lastFilter.Limit)
	require.Equal(t, 10, store.lastFilter.Offset)
}

func TestArchiveListFilterResolution(t *testing.T) {
	store := &archiveStoreStub{}
	svc := NewArchiveService(store, nil, zap.NewNop(), ArchiveServiceConfig{})

	_, _, err := svc.List(context.Background(), dto.ArchiveQuery{
		JobID:  "job-1",
		Pole:   "CNS",
		Entity: "RNAV",
		From:   "2024-03-01",
		To:     "2024-03-31",
	})
	require.NoError(t, err)
	require.Equal(t, "job-1", store.lastFilter.JobID)
	require.NotNil(t, store.lastFilter.Pole)
	require.Equal(t, models.PoleCNS, *store.lastFilter.Pole)
	require.NotNil(t, store.lastFilter.Entity)
	require.Equal(t, models.EntityRadionavigation, *store.lastFilter.Entity)
	require.NotNil(t, store.lastFilter.From)
	require.NotNil(t, store.lastFilter.To)
}

func TestArchiveListRejectsUnknownLabels(t *testing.T) {
	svc := NewArchiveService(&archiveStoreStub{}, nil, zap.NewNop(), ArchiveServiceConfig{})

	_, _, err := svc.List(context.Background(), dto.ArchiveQuery{Pole: "XYZ"})
	require.Error(t, err)

	_, _, err = svc.List(context.Background(), dto.ArchiveQuery{From: "01/03/2024"})
	require.Error(t, err)
}

func TestArchiveGetNotFound(t *testing.T) {
	svc := NewArchiveService(&archiveStoreStub{}, nil, zap.NewNop(), ArchiveServiceConfig{})

	_, err := svc.Get(context.Background(), "missing")
	require.ErrorIs(t, err, appErrors.ErrNotFound)
}
