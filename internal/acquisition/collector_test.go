package acquisition

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qst-do/qstreport/internal/models"
	"github.com/qst-do/qstreport/pkg/timeutil"
)

type stubWorkOrderSource struct {
	name      string
	openErr   error
	orders    []*models.WorkOrder
	events    []*models.TechnicalEvent
	ordersErr error

	opened, closed       bool
	orderedFrom          time.Time
	orderedTo            time.Time
	eventsFrom, eventsTo time.Time
}

func (s *stubWorkOrderSource) Name() string { return s.name }

func (s *stubWorkOrderSource) Open(context.Context) error {
	s.opened = true
	return s.openErr
}

func (s *stubWorkOrderSource) Close(context.Context) error {
	s.closed = true
	return nil
}

func (s *stubWorkOrderSource) WorkOrders(_ context.Context, start, end time.Time) ([]*models.WorkOrder, error) {
	s.orderedFrom, s.orderedTo = start, end
	return s.orders, s.ordersErr
}

func (s *stubWorkOrderSource) TechnicalEvents(_ context.Context, start, end time.Time) ([]*models.TechnicalEvent, error) {
	s.eventsFrom, s.eventsTo = start, end
	return s.events, nil
}

type stubExploitationSource struct {
	name   string
	events []*models.ExploitationEvent
	err    error
	opened bool
}

func (s *stubExploitationSource) Name() string                { return s.name }
func (s *stubExploitationSource) Open(context.Context) error  { s.opened = true; return nil }
func (s *stubExploitationSource) Close(context.Context) error { return nil }

func (s *stubExploitationSource) Events(context.Context, time.Time, time.Time) ([]*models.ExploitationEvent, error) {
	return s.events, s.err
}

func order(ref string) *models.WorkOrder {
	return &models.WorkOrder{
		InternalReference: ref,
		WorkPeriods: timeutil.PeriodCollection{timeutil.NewTimePeriod(
			time.Date(2024, time.March, 12, 8, 0, 0, 0, time.UTC),
			time.Date(2024, time.March, 12, 17, 0, 0, 0, time.UTC),
		)},
	}
}

func techEvent(ref string) *models.TechnicalEvent {
	return &models.TechnicalEvent{Reference: ref, StartDate: time.Date(2024, time.March, 8, 6, 0, 0, 0, time.UTC)}
}

// anchor is a Thursday; its week runs 2024-03-11 to 2024-03-17.
var anchor = time.Date(2024, time.March, 14, 10, 0, 0, 0, time.UTC)

func TestCollectWeeklyWindows(t *testing.T) {
	src := &stubWorkOrderSource{name: "siam", orders: []*models.WorkOrder{order("TVX-rnv-24-042")}}
	exploit := &stubExploitationSource{name: "epeires"}

	c := NewCollector([]WorkOrderSource{src}, []ExploitationSource{exploit}, nil)

	data, err := c.Collect(context.Background(), models.ReportKindWeekly, anchor, nil)
	require.NoError(t, err)

	// report window covers the previous and the current week
	assert.Equal(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), data.ReportPeriod.Start)
	assert.Equal(t, time.Date(2024, time.March, 17, 23, 59, 59, 0, time.UTC), data.ReportPeriod.End)

	// the elapsed part stops the day before the current week
	assert.Equal(t, time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), data.PastDataPeriod.Start)
	assert.Equal(t, time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC).Day(), data.PastDataPeriod.End.Day())

	assert.Equal(t, time.Date(2024, time.March, 11, 0, 0, 0, 0, time.UTC), data.CurrentDataPeriod.Start)

	// work orders over the full window, incidents over the elapsed part
	assert.Equal(t, data.ReportPeriod.Start, src.orderedFrom)
	assert.Equal(t, data.ReportPeriod.End, src.orderedTo)
	assert.Equal(t, data.PastDataPeriod.Start, src.eventsFrom)
	assert.Equal(t, data.PastDataPeriod.End, src.eventsTo)

	assert.True(t, src.opened)
	assert.True(t, src.closed)
	assert.True(t, exploit.opened)
	assert.Empty(t, data.Warnings)
}

func TestCollectCommitteeWindowStartsTwoWeeksBack(t *testing.T) {
	c := NewCollector(nil, nil, nil)

	data, err := c.Collect(context.Background(), models.ReportKindCommittee, anchor, nil)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2024, time.February, 26, 0, 0, 0, 0, time.UTC), data.ReportPeriod.Start)
	assert.Equal(t, time.Date(2024, time.March, 17, 23, 59, 59, 0, time.UTC), data.ReportPeriod.End)
}

func TestCollectDeduplicatesAcrossSources(t *testing.T) {
	current := &stubWorkOrderSource{
		name:   "siam",
		orders: []*models.WorkOrder{order("TVX-rnv-24-042"), order("TVX-str-24-007")},
		events: []*models.TechnicalEvent{techEvent("CDG-str-24-118")},
	}
	legacy := &stubWorkOrderSource{
		name:   "siam-legacy",
		orders: []*models.WorkOrder{order("TVX-rnv-24-042"), order("TVX-ene-24-011")},
		events: []*models.TechnicalEvent{techEvent("CDG-str-24-118"), techEvent("CDG-ene-24-119")},
	}

	c := NewCollector([]WorkOrderSource{current, legacy}, nil, nil)

	data, err := c.Collect(context.Background(), models.ReportKindWeekly, anchor, nil)
	require.NoError(t, err)

	refs := make([]string, 0, len(data.WorkOrders))
	for _, o := range data.WorkOrders {
		refs = append(refs, o.InternalReference)
	}
	assert.Equal(t, []string{"TVX-rnv-24-042", "TVX-str-24-007", "TVX-ene-24-011"}, refs)

	require.Len(t, data.TechnicalEvents, 2)
}

func TestCollectDegradesToPartialReport(t *testing.T) {
	broken := &stubWorkOrderSource{name: "siam-legacy", openErr: errors.New("connection refused")}
	working := &stubWorkOrderSource{name: "siam", orders: []*models.WorkOrder{order("TVX-rnv-24-042")}}

	var messages []string
	progress := func(_ int, msg string) { messages = append(messages, msg) }

	c := NewCollector([]WorkOrderSource{broken, working}, nil, nil)

	data, err := c.Collect(context.Background(), models.ReportKindWeekly, anchor, progress)
	require.NoError(t, err)

	require.Len(t, data.Warnings, 1)
	assert.Contains(t, data.Warnings[0], "siam-legacy")
	assert.Len(t, data.WorkOrders, 1)
	assert.NotEmpty(t, messages)
}

func TestCollectFailsWhenAllSourcesFail(t *testing.T) {
	broken := &stubWorkOrderSource{name: "siam", openErr: errors.New("down")}
	brokenExploit := &stubExploitationSource{name: "epeires", err: errors.New("down")}

	c := NewCollector([]WorkOrderSource{broken}, []ExploitationSource{brokenExploit}, nil)

	_, err := c.Collect(context.Background(), models.ReportKindWeekly, anchor, nil)
	assert.Error(t, err)
}
