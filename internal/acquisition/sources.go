package acquisition

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/qst-do/qstreport/internal/epeires"
	"github.com/qst-do/qstreport/internal/models"
	"github.com/qst-do/qstreport/internal/session"
	"github.com/qst-do/qstreport/internal/siamv4"
	"github.com/qst-do/qstreport/internal/siamv5"
)

// PortalConfig carries what it takes to open a session on one portal.
type PortalConfig struct {
	BaseURL  string
	Username string
	Password string
	Timeout  time.Duration
}

// WorkOrderSource is a portal serving work orders and technical events.
type WorkOrderSource interface {
	Name() string
	Open(ctx context.Context) error
	Close(ctx context.Context) error
	WorkOrders(ctx context.Context, start, end time.Time) ([]*models.WorkOrder, error)
	TechnicalEvents(ctx context.Context, start, end time.Time) ([]*models.TechnicalEvent, error)
}

// ExploitationSource is a portal serving operational events.
type ExploitationSource interface {
	Name() string
	Open(ctx context.Context) error
	Close(ctx context.Context) error
	Events(ctx context.Context, start, end time.Time) ([]*models.ExploitationEvent, error)
}

// LegacySource serves the legacy SIAM portal.
type LegacySource struct {
	cfg  PortalConfig
	repo *siamv4.Repository
}

// NewLegacySource builds a legacy portal source.
func NewLegacySource(cfg PortalConfig, log *zap.Logger) (*LegacySource, error) {
	sess, err := session.New(cfg.BaseURL, cfg.Timeout, log)
	if err != nil {
		return nil, err
	}
	return &LegacySource{cfg: cfg, repo: siamv4.NewRepository(sess, log)}, nil
}

func (s *LegacySource) Name() string { return "siam-legacy" }

func (s *LegacySource) Open(ctx context.Context) error {
	return s.repo.Login(ctx, s.cfg.Username, s.cfg.Password)
}

func (s *LegacySource) Close(ctx context.Context) error {
	return s.repo.Logout(ctx)
}

func (s *LegacySource) WorkOrders(ctx context.Context, start, end time.Time) ([]*models.WorkOrder, error) {
	return s.repo.WorkOrders(ctx, start, end)
}

func (s *LegacySource) TechnicalEvents(ctx context.Context, start, end time.Time) ([]*models.TechnicalEvent, error) {
	return s.repo.TechnicalEvents(ctx, start, end)
}

// CurrentSource serves the current SIAM portal.
type CurrentSource struct {
	cfg  PortalConfig
	repo *siamv5.Repository
}

// NewCurrentSource builds a current portal source.
func NewCurrentSource(cfg PortalConfig, log *zap.Logger) (*CurrentSource, error) {
	sess, err := session.New(cfg.BaseURL, cfg.Timeout, log)
	if err != nil {
		return nil, err
	}
	return &CurrentSource{cfg: cfg, repo: siamv5.NewRepository(sess, log)}, nil
}

func (s *CurrentSource) Name() string { return "siam" }

func (s *CurrentSource) Open(ctx context.Context) error {
	return s.repo.Login(ctx, s.cfg.Username, s.cfg.Password)
}

func (s *CurrentSource) Close(ctx context.Context) error {
	return s.repo.Logout(ctx)
}

func (s *CurrentSource) WorkOrders(ctx context.Context, start, end time.Time) ([]*models.WorkOrder, error) {
	return s.repo.WorkOrders(ctx, start, end)
}

func (s *CurrentSource) TechnicalEvents(ctx context.Context, start, end time.Time) ([]*models.TechnicalEvent, error) {
	return s.repo.TechnicalEvents(ctx, start, end)
}

// EpeiresSource serves the EPEIRES portal.
type EpeiresSource struct {
	cfg  PortalConfig
	repo *epeires.Repository
}

// NewEpeiresSource builds an EPEIRES source.
func NewEpeiresSource(cfg PortalConfig, log *zap.Logger) (*EpeiresSource, error) {
	sess, err := session.New(cfg.BaseURL, cfg.Timeout, log)
	if err != nil {
		return nil, err
	}
	return &EpeiresSource{cfg: cfg, repo: epeires.NewRepository(sess, log)}, nil
}

func (s *EpeiresSource) Name() string { return "epeires" }

func (s *EpeiresSource) Open(ctx context.Context) error {
	return s.repo.Login(ctx, s.cfg.Username, s.cfg.Password)
}

func (s *EpeiresSource) Close(ctx context.Context) error {
	return s.repo.Logout(ctx)
}

func (s *EpeiresSource) Events(ctx context.Context, start, end time.Time) ([]*models.ExploitationEvent, error) {
	return s.repo.Events(ctx, start, end)
}
