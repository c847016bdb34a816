package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qst-do/qstreport/internal/dto"
	"github.com/qst-do/qstreport/internal/models"
	appErrors "github.com/qst-do/qstreport/pkg/errors"
	"github.com/qst-do/qstreport/pkg/response"
)

type archiveService interface {
	List(ctx context.Context, query dto.ArchiveQuery) ([]models.ArchivedWorkOrder, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.ArchivedWorkOrder, error)
}

// ArchiveHandler exposes the work orders captured by past report runs.
type ArchiveHandler struct {
	service archiveService
}

// NewArchiveHandler constructs the handler.
func NewArchiveHandler(service archiveService) *ArchiveHandler {
	return &ArchiveHandler{service: service}
}

// List godoc
// @Summary List archived work orders
// @Tags Archive
// @Produce json
// @Param jobId query string false "Report job filter"
// @Param reference query string false "Work order reference filter"
// @Param pole query string false "Pole short label"
// @Param entity query string false "Entity short label"
// @Param from query string false "Period start (YYYY-MM-DD)"
// @Param to query string false "Period end (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /archive/workorders [get]
func (h *ArchiveHandler) List(c *gin.Context) {
	var query dto.ArchiveQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid archive query"))
		return
	}
	items, pagination, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Get godoc
// @Summary Get one archived work order
// @Tags Archive
// @Produce json
// @Param id path string true "Archive row ID"
// @Success 200 {object} response.Envelope
// @Router /archive/workorders/{id} [get]
func (h *ArchiveHandler) Get(c *gin.Context) {
	item, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, item, nil)
}
