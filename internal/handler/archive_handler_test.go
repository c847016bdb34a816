package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/qst-do/qstreport/internal/dto"
	"github.com/qst-do/qstreport/internal/models"
	appErrors "github.com/qst-do/qstreport/pkg/errors"
)

type archiveServiceMock struct {
	items     []models.ArchivedWorkOrder
	item      *models.ArchivedWorkOrder
	err       error
	lastQuery dto.ArchiveQuery
}

func (m *archiveServiceMock) List(ctx context.Context, query dto.ArchiveQuery) ([]models.ArchivedWorkOrder, *models.Pagination, error) {
	m.lastQuery = query
	if m.err != nil {
		return nil, nil, m.err
	}
	return m.items, &models.Pagination{Page: 1, PageSize: 50, TotalCount: len(m.items)}, nil
}

func (m *archiveServiceMock) Get(ctx context.Context, id string) (*models.ArchivedWorkOrder, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.item, nil
}

func TestArchiveHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &archiveServiceMock{items: []models.ArchivedWorkOrder{
		{ID: "a-1", InternalReference: "TVX-rnv-24-042"},
	}}
	handler := NewArchiveHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/archive/workorders?pole=CNS&page=2", nil)
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "TVX-rnv-24-042")
	require.Equal(t, "CNS", mockSvc.lastQuery.Pole)
	require.Equal(t, 2, mockSvc.lastQuery.Page)
}

func TestArchiveHandlerListValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewArchiveHandler(&archiveServiceMock{err: appErrors.Clone(appErrors.ErrValidation, "unknown pole")})

	c, w := newGinContext(http.MethodGet, "/archive/workorders?pole=XYZ", nil)
	handler.List(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestArchiveHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewArchiveHandler(&archiveServiceMock{item: &models.ArchivedWorkOrder{ID: "a-1"}})

	c, w := newGinContext(http.MethodGet, "/archive/workorders/a-1", nil)
	c.Params = gin.Params{{Key: "id", Value: "a-1"}}
	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)
}
