// Package epeires talks to the EPEIRES operational event portal over
// its JSON calendar feed.
package epeires

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/qst-do/qstreport/internal/models"
	"github.com/qst-do/qstreport/internal/session"
	apperrors "github.com/qst-do/qstreport/pkg/errors"
)

const (
	loginPath  = "/user/login?redirect=application"
	logoutPath = "/user/logout?redirect=/"
	eventsPath = "/events/geteventsFC"

	// soft deleted events keep flowing through the feed with this status
	statusDeleted = 5
)

// Sites the report covers, keyed by the feed's root category id.
var siteCategories = map[int]string{
	9:   "CDG",
	83:  "BRIA",
	111: "LBG",
}

// Repository fetches operational events from the EPEIRES portal.
type Repository struct {
	session *session.Client
	log     *zap.Logger
}

// NewRepository creates an EPEIRES repository on an existing session.
func NewRepository(sess *session.Client, log *zap.Logger) *Repository {
	if log == nil {
		log = zap.NewNop()
	}
	return &Repository{session: sess, log: log}
}

// Login authenticates the session.
func (r *Repository) Login(ctx context.Context, username, password string) error {
	body := fmt.Sprintf("identity=%s&credential=%s&redirect=application&submit=",
		url.QueryEscape(username), url.QueryEscape(password))

	if _, err := r.session.PostForm(ctx, loginPath, body); err != nil {
		return apperrors.Wrap(err, apperrors.ErrAuthentication.Code, apperrors.ErrAuthentication.Status,
			"epeires login failed")
	}

	r.log.Info("epeires session opened", zap.String("user", username))
	return nil
}

// Logout closes the portal session.
func (r *Repository) Logout(ctx context.Context) error {
	if _, err := r.session.Get(ctx, logoutPath); err != nil {
		return err
	}
	r.log.Info("epeires session closed")
	return nil
}

// Events fetches the operational events published between start and
// end, dropping deleted events and the sites the report does not cover.
func (r *Repository) Events(ctx context.Context, start, end time.Time) ([]*models.ExploitationEvent, error) {
	path := fmt.Sprintf("%s?start=%s&end=%s", eventsPath, start.Format("2006-01-02"), end.Format("2006-01-02"))

	body, err := r.session.GetAjax(ctx, path)
	if err != nil {
		return nil, err
	}

	var raw []rawEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrParse.Code, apperrors.ErrParse.Status, "decode events feed")
	}

	events := make([]*models.ExploitationEvent, 0, len(raw))
	for _, ev := range raw {
		if ev.StatusID == statusDeleted {
			continue
		}
		location, covered := siteCategories[ev.CategoryRootID]
		if !covered {
			continue
		}

		out := &models.ExploitationEvent{
			StartDate:   ev.StartDate.Time,
			Title:       ev.Title,
			Description: ev.Fields.Description(),
			Location:    location,
		}
		if ev.EndDate != nil {
			out.EndDate = ev.EndDate.Time
		}
		events = append(events, out)
	}

	r.log.Info("exploitation events fetched", zap.Int("total", len(raw)), zap.Int("count", len(events)))
	return events, nil
}
