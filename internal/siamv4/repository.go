package siamv4

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/qst-do/qstreport/internal/models"
	"github.com/qst-do/qstreport/internal/scrape"
	"github.com/qst-do/qstreport/internal/session"
	apperrors "github.com/qst-do/qstreport/pkg/errors"
	"github.com/qst-do/qstreport/pkg/timeutil"
)

// Repository fetches work orders and technical events from the legacy
// portal. Callers must Login before fetching and Logout when done.
type Repository struct {
	session *session.Client
	log     *zap.Logger
}

// NewRepository creates a legacy portal repository on an existing
// session.
func NewRepository(sess *session.Client, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{session: sess, log: log}
}

// Login authenticates the session. The portal sets its session cookie
// on the login response and redirects, which the session client does
// not follow.
func (r *Repository) Login(ctx context.Context, username, password string) error {
	body := fmt.Sprintf("requete=%%2Factuel%%2F&erreurOK=1&pseudo=%s&mot_de_passe=%s&submitBtn=",
		url.QueryEscape(username), url.QueryEscape(password))

	if _, err := r.session.PostForm(ctx, connectPath, body); err != nil {
		return apperrors.Wrap(err, apperrors.ErrAuthentication.Code, apperrors.ErrAuthentication.Status,
			"legacy portal login failed")
	}

	r.log.Info("legacy portal session opened", zap.String("user", username))
	return nil
}

// Logout closes the portal session. The portal asks for a confirmation
// post after the logout page.
func (r *Repository) Logout(ctx context.Context) error {
	if _, err := r.session.Get(ctx, disconnectPath); err != nil {
		return err
	}

	body := fmt.Sprintf("id_utilisateur=%d&confirmer=&deconnexion=1", portalUserID)
	if _, err := r.session.PostForm(ctx, disconnectPath, body); err != nil {
		return err
	}

	r.log.Info("legacy portal session closed")
	return nil
}

// WorkOrders fetches every work order listed between start and end.
// Orders spanning several weeks appear on several agenda pages and are
// fetched once, keeping the first listing seen.
func (r *Repository) WorkOrders(ctx context.Context, start, end time.Time) ([]*models.WorkOrder, error) {
	ids, err := r.workOrderIDs(ctx, start, end)
	if err != nil {
		return nil, err
	}

	orders := make([]*models.WorkOrder, 0, len(ids))
	for _, id := range ids {
		order, err := r.workOrder(ctx, id)
		if err != nil {
			// a malformed detail page loses that order only
			if apperrors.FromError(err).Code == apperrors.ErrParse.Code {
				r.log.Warn("work order dropped", zap.Int("id", id), zap.Error(err))
				continue
			}
			return nil, err
		}
		orders = append(orders, order)
	}

	r.log.Info("legacy work orders fetched", zap.Int("count", len(orders)))
	return orders, nil
}

func (r *Repository) workOrderIDs(ctx context.Context, start, end time.Time) ([]int, error) {
	var (
		ids  []int
		seen = make(map[string]struct{})
		err  error
	)

	timeutil.EachWeek(start, end, func(week timeutil.Week) bool {
		path := fmt.Sprintf("%s&select=%s&mode=semaine", agendaPath, week.Start.Format("02-01-2006"))

		var body []byte
		body, err = r.session.Get(ctx, path)
		if err != nil {
			return false
		}

		doc, derr := scrape.NewDocument(bytes.NewReader(body))
		if derr != nil {
			// an unreadable agenda page loses that week only
			r.log.Warn("agenda page dropped", zap.Time("week", week.Start), zap.Error(derr))
			return true
		}

		for _, entry := range parseAgendaEntries(doc) {
			if _, dup := seen[entry.PublicID]; dup {
				continue
			}
			seen[entry.PublicID] = struct{}{}
			ids = append(ids, entry.ID)
		}
		return true
	})

	return ids, err
}

func (r *Repository) workOrder(ctx context.Context, id int) (*models.WorkOrder, error) {
	body, err := r.session.Get(ctx, fmt.Sprintf("%s%d", detailPath, id))
	if err != nil {
		return nil, err
	}

	doc, err := scrape.NewDocument(bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrParse.Code, apperrors.ErrParse.Status, "parse work order page")
	}

	order, err := parseWorkOrder(doc)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrParse.Code, apperrors.ErrParse.Status,
			fmt.Sprintf("work order %d", id))
	}
	return order, nil
}

// TechnicalEvents fetches the incidents reported on each day of the
// window. Days without a daybook table are skipped. Amendment rows are
// dropped, they duplicate an event already reported.
func (r *Repository) TechnicalEvents(ctx context.Context, start, end time.Time) ([]*models.TechnicalEvent, error) {
	var (
		events []*models.TechnicalEvent
		err    error
	)

	timeutil.EachDay(start, end, func(day time.Time) bool {
		path := fmt.Sprintf("%s&select=%s", daybookPath, day.Format("02-01-2006"))

		var body []byte
		body, err = r.session.Get(ctx, path)
		if err != nil {
			return false
		}

		doc, derr := scrape.NewDocument(bytes.NewReader(body))
		if derr != nil {
			// an unreadable daybook page loses that day only
			r.log.Warn("daybook page dropped", zap.Time("day", day), zap.Error(derr))
			return true
		}

		for _, ev := range parseTechnicalEvents(doc, day) {
			if ev.IsAmendment {
				continue
			}
			events = append(events, ev)
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	r.log.Info("legacy technical events fetched", zap.Int("count", len(events)))
	return events, nil
}
