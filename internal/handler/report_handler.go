package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/qst-do/qstreport/internal/dto"
	"github.com/qst-do/qstreport/internal/models"
	"github.com/qst-do/qstreport/internal/service"
	appErrors "github.com/qst-do/qstreport/pkg/errors"
	"github.com/qst-do/qstreport/pkg/response"
)

type reportService interface {
	CreateJob(ctx context.Context, req dto.ReportRequest, actorID string) (*dto.ReportJobResponse, error)
	GetStatus(ctx context.Context, id string) (*dto.ReportStatusResponse, error)
	ResolveDownload(ctx context.Context, token string) (*service.ReportDownload, error)
}

// ReportHandler exposes report generation endpoints.
type ReportHandler struct {
	service reportService
}

// NewReportHandler constructs the handler.
func NewReportHandler(service reportService) *ReportHandler {
	return &ReportHandler{service: service}
}

// Generate godoc
// @Summary Launch a report generation
// @Tags Reports
// @Accept json
// @Produce json
// @Param request body dto.ReportRequest true "Report parameters"
// @Success 202 {object} response.Envelope
// @Router /reports/generate [post]
func (h *ReportHandler) Generate(c *gin.Context) {
	var req dto.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid report payload"))
		return
	}
	actorID := "anonymous"
	if claims := claimsFromContext(c); claims != nil {
		actorID = claims.UserID
	}
	resp, err := h.service.CreateJob(c.Request.Context(), req, actorID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, resp, nil)
}

// Status godoc
// @Summary Report job status
// @Tags Reports
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /reports/status/{id} [get]
func (h *ReportHandler) Status(c *gin.Context) {
	resp, err := h.service.GetStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}

// Download godoc
// @Summary Download a generated report via signed token
// @Tags Reports
// @Produce octet-stream
// @Param token path string true "Signed token"
// @Success 200 {file} binary
// @Router /export/{token} [get]
func (h *ReportHandler) Download(c *gin.Context) {
	result, err := h.service.ResolveDownload(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer result.File.Close() //nolint:errcheck

	info, err := result.File.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat report file"))
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", result.Filename))
	c.Header("Cache-Control", "no-store")
	c.DataFromReader(http.StatusOK, info.Size(), contentType(result.Format), result.File, nil)
}

func contentType(format models.ReportFormat) string {
	switch format {
	case models.ReportFormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case models.ReportFormatPDF:
		return "application/pdf"
	default:
		return "application/octet-stream"
	}
}
