package siamv5

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/qst-do/qstreport/internal/models"
	"github.com/qst-do/qstreport/internal/scrape"
	"github.com/qst-do/qstreport/internal/session"
	apperrors "github.com/qst-do/qstreport/pkg/errors"
)

// Repository fetches work orders and technical events from the current
// portal.
type Repository struct {
	session *session.Client
	log     *zap.Logger
}

// NewRepository creates a portal repository on an existing session.
func NewRepository(sess *session.Client, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{session: sess, log: log}
}

// Login authenticates the session. The auth endpoint only accepts a
// multipart body with its fields in the exact order the frontend sends
// them.
func (r *Repository) Login(ctx context.Context, username, password string) error {
	r.session.SetReferer(r.session.BaseURL() + "/actuel/")

	fields := []session.Field{
		{Name: "form_button", Value: "submitBtn"},
		{Name: "source", Value: "ACC"},
		{Name: "mode", Value: "search"},
		{Name: "uri", Value: "//actuel//"},
		{Name: "action", Value: "authenticate"},
		{Name: "pseudo", Value: username},
		{Name: "mot_de_passe", Value: password},
	}

	if _, err := r.session.PostMultipart(ctx, connectPath, fields); err != nil {
		return apperrors.Wrap(err, apperrors.ErrAuthentication.Code, apperrors.ErrAuthentication.Status,
			"portal login failed")
	}

	r.session.SetReferer(r.session.BaseURL() + "/actuel/appli/planner/")
	r.log.Info("portal session opened", zap.String("user", username))
	return nil
}

// Logout closes the portal session.
func (r *Repository) Logout(ctx context.Context) error {
	r.session.SetReferer(r.session.BaseURL() + "/actuel/lib/core/auth/?action=logout")

	fields := []session.Field{
		{Name: "form_button", Value: "submitBtn"},
		{Name: "source", Value: "ATH"},
		{Name: "mode", Value: "search"},
		{Name: "action", Value: "doLogout"},
	}

	if _, err := r.session.PostMultipart(ctx, connectPath, fields); err != nil {
		return err
	}

	r.log.Info("portal session closed")
	return nil
}

// WorkOrders fetches every work order with an occurrence between start
// and end. The planner returns one item per occurrence, so items are
// collapsed by event before the detail pages are fetched.
func (r *Repository) WorkOrders(ctx context.Context, start, end time.Time) ([]*models.WorkOrder, error) {
	items, err := searchItems[plannerItem](ctx, r, plannerPath, start, end, sourcePlanner)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(items))
	var orders []*models.WorkOrder

	for _, item := range items {
		if _, dup := seen[item.EventID]; dup {
			continue
		}
		seen[item.EventID] = struct{}{}

		order, err := r.workOrder(ctx, item)
		if err != nil {
			// a malformed popup loses that order only
			if apperrors.FromError(err).Code == apperrors.ErrParse.Code {
				r.log.Warn("work order dropped", zap.String("occurrence", item.OccurrenceID), zap.Error(err))
				continue
			}
			return nil, err
		}
		if order == nil {
			continue
		}
		orders = append(orders, order)
	}

	r.log.Info("work orders fetched", zap.Int("occurrences", len(items)), zap.Int("count", len(orders)))
	return orders, nil
}

func (r *Repository) workOrder(ctx context.Context, item plannerItem) (*models.WorkOrder, error) {
	body, err := r.session.Get(ctx, detailPath+item.OccurrenceID)
	if err != nil {
		return nil, err
	}

	doc, err := scrape.NewDocument(bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrParse.Code, apperrors.ErrParse.Status, "parse occurrence popup")
	}

	order, err := parseWorkOrder(doc)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrParse.Code, apperrors.ErrParse.Status,
			fmt.Sprintf("occurrence %s", item.OccurrenceID))
	}
	if order != nil {
		order.InternalReference = item.ID
	}
	return order, nil
}

// TechnicalEvents fetches the incidents reported between start and end.
// Amendment rows are dropped, they duplicate an event already reported.
func (r *Repository) TechnicalEvents(ctx context.Context, start, end time.Time) ([]*models.TechnicalEvent, error) {
	items, err := searchItems[daybookItem](ctx, r, daybookPath, start, end, sourceDaybook)
	if err != nil {
		return nil, err
	}

	events := make([]*models.TechnicalEvent, 0, len(items))
	for _, item := range items {
		ev, err := parseDaybookEvent(item)
		if err != nil {
			// a truncated row loses that event only
			r.log.Warn("daybook item dropped", zap.Error(err))
			continue
		}
		if ev.IsAmendment {
			continue
		}
		events = append(events, ev)
	}

	r.log.Info("technical events fetched", zap.Int("count", len(events)))
	return events, nil
}

func searchItems[T any](ctx context.Context, r *Repository, path string, start, end time.Time, source string) ([]T, error) {
	body := fmt.Sprintf(searchBodyFormat, start.Format("02/01/2006"), end.Format("02/01/2006"), source)

	resp, err := r.session.PostForm(ctx, path, body)
	if err != nil {
		return nil, err
	}

	var result searchResult[T]
	if err := json.Unmarshal(resp, &result); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrParse.Code, apperrors.ErrParse.Status, "decode search result")
	}

	return result.Success.Items, nil
}
