// Package acquisition drives a full report data collection run across
// the upstream portals.
package acquisition

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/qst-do/qstreport/internal/models"
)

// ProgressFunc receives coarse progress updates during a run.
type ProgressFunc func(percent int, message string)

// SourceObserver receives per-source acquisition outcomes.
type SourceObserver interface {
	ObserveSourceRun(source string, success bool, duration time.Duration)
}

// Collector gathers a report's data from the configured sources. A
// failing source degrades the report to a partial one instead of
// aborting the run; the failure is recorded as a warning.
type Collector struct {
	workOrderSources []WorkOrderSource
	exploitSources   []ExploitationSource
	observer         SourceObserver
	log              *zap.Logger
}

// NewCollector creates a collector over the given sources. Source order
// matters: when two portals list the same work order, the first source
// wins.
func NewCollector(workOrders []WorkOrderSource, exploit []ExploitationSource, log *zap.Logger) *Collector {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collector{workOrderSources: workOrders, exploitSources: exploit, log: log}
}

// WithObserver attaches a per-source outcome observer.
func (c *Collector) WithObserver(obs SourceObserver) *Collector {
	c.observer = obs
	return c
}

func (c *Collector) observe(source string, success bool, started time.Time) {
	if c.observer != nil {
		c.observer.ObserveSourceRun(source, success, time.Since(started))
	}
}

// Collect runs a full acquisition for the report kind anchored on the
// given date. It returns an error only when every source failed.
func (c *Collector) Collect(ctx context.Context, kind models.ReportKind, anchor time.Time, progress ProgressFunc) (*models.ReportData, error) {
	if progress == nil {
		progress = func(int, string) {}
	}

	report, past, current := models.ReportWindows(kind, anchor)
	data := &models.ReportData{
		Kind:              kind,
		ReportPeriod:      report,
		PastDataPeriod:    past,
		CurrentDataPeriod: current,
	}

	c.log.Info("acquisition started",
		zap.String("kind", string(kind)),
		zap.Time("from", report.Start),
		zap.Time("to", report.End))

	total := len(c.workOrderSources) + len(c.exploitSources)
	failed := 0
	step := 0
	advance := func(msg string) {
		step++
		if total > 0 {
			progress(step*100/(total+1), msg)
		}
	}

	seenOrders := make(map[string]struct{})
	seenEvents := make(map[string]struct{})

	for _, src := range c.workOrderSources {
		advance(fmt.Sprintf("collecte %s", src.Name()))

		started := time.Now()
		orders, events, err := c.collectWorkOrders(ctx, src, data)
		c.observe(src.Name(), err == nil, started)
		if err != nil {
			failed++
			data.Warnings = append(data.Warnings, fmt.Sprintf("%s: %v", src.Name(), err))
			c.log.Warn("source failed", zap.String("source", src.Name()), zap.Error(err))
			continue
		}

		for _, o := range orders {
			if _, dup := seenOrders[o.InternalReference]; dup {
				continue
			}
			seenOrders[o.InternalReference] = struct{}{}
			if o.Source == "" {
				o.Source = src.Name()
			}
			data.WorkOrders = append(data.WorkOrders, o)
		}
		for _, e := range events {
			if _, dup := seenEvents[e.Reference]; dup {
				continue
			}
			seenEvents[e.Reference] = struct{}{}
			data.TechnicalEvents = append(data.TechnicalEvents, e)
		}
	}

	for _, src := range c.exploitSources {
		advance(fmt.Sprintf("collecte %s", src.Name()))

		started := time.Now()
		events, err := c.collectExploitation(ctx, src, data)
		c.observe(src.Name(), err == nil, started)
		if err != nil {
			failed++
			data.Warnings = append(data.Warnings, fmt.Sprintf("%s: %v", src.Name(), err))
			c.log.Warn("source failed", zap.String("source", src.Name()), zap.Error(err))
			continue
		}
		data.ExploitationEvents = append(data.ExploitationEvents, events...)
	}

	if total > 0 && failed == total {
		return nil, fmt.Errorf("all sources failed: %v", data.Warnings)
	}

	progress(100, "collecte terminée")
	c.log.Info("acquisition finished",
		zap.Int("work_orders", len(data.WorkOrders)),
		zap.Int("technical_events", len(data.TechnicalEvents)),
		zap.Int("exploitation_events", len(data.ExploitationEvents)),
		zap.Strings("warnings", data.Warnings))

	return data, nil
}

// collectWorkOrders runs one portal end to end. Work orders are fetched
// over the full report window, incidents only over the elapsed part.
func (c *Collector) collectWorkOrders(ctx context.Context, src WorkOrderSource, data *models.ReportData) ([]*models.WorkOrder, []*models.TechnicalEvent, error) {
	if err := src.Open(ctx); err != nil {
		return nil, nil, err
	}
	defer func() {
		if err := src.Close(ctx); err != nil {
			c.log.Warn("source logout failed", zap.String("source", src.Name()), zap.Error(err))
		}
	}()

	orders, err := src.WorkOrders(ctx, data.ReportPeriod.Start, data.ReportPeriod.End)
	if err != nil {
		return nil, nil, err
	}

	events, err := src.TechnicalEvents(ctx, data.PastDataPeriod.Start, data.PastDataPeriod.End)
	if err != nil {
		return nil, nil, err
	}

	return orders, events, nil
}

func (c *Collector) collectExploitation(ctx context.Context, src ExploitationSource, data *models.ReportData) ([]*models.ExploitationEvent, error) {
	if err := src.Open(ctx); err != nil {
		return nil, err
	}
	defer func() {
		if err := src.Close(ctx); err != nil {
			c.log.Warn("source logout failed", zap.String("source", src.Name()), zap.Error(err))
		}
	}()

	return src.Events(ctx, data.PastDataPeriod.Start, data.PastDataPeriod.End)
}
