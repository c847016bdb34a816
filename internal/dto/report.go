package dto

import "github.com/qst-do/qstreport/internal/models"

// ReportRequest captures POST /reports/generate payload. Anchor selects
// the week the report is computed from, today when omitted.
type ReportRequest struct {
	Kind   string              `json:"kind" validate:"required"`
	Anchor string              `json:"anchor,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Format models.ReportFormat `json:"format" validate:"required"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Kind      models.ReportKind   `json:"kind"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	Message   string              `json:"message,omitempty"`
	Warnings  models.StringList   `json:"warnings,omitempty"`
	ResultURL *string             `json:"resultUrl,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
