package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ajenda/ajenda/internal/client/client"
	"github.com/ajenda/ajenda/internal/client/models"
	"github.com/ajenda/ajenda/internal/common"
	"github.com/ajenda/ajenda/internal/logging"
)

// EventService exposes calendar operations to the CLI.
//
// Reads take a client.Scope; ScopeAll is only attempted for users holding
// the ADMIN role. Writes validate the event locally, fill in default colours
// and stamp it with the signed-in user's id.
type EventService interface {
	List(ctx context.Context, scope client.Scope) ([]*models.Event, error)
	Get(ctx context.Context, id int64) (*models.Event, error)
	Create(ctx context.Context, e *models.Event) (*models.Event, error)
	Update(ctx context.Context, id int64, e *models.Event) (*models.Event, error)
	Delete(ctx context.Context, id int64) error
	InRange(ctx context.Context, scope client.Scope, from, to time.Time) ([]*models.Event, error)
	Search(ctx context.Context, scope client.Scope, keyword string) ([]*models.Event, error)
}

// Session is what EventService needs to know about the signed-in user.
type Session interface {
	CurrentUser() *models.Profile
	HasRole(role string) bool
}

type eventService struct {
	client  client.Client
	session Session
	log     logging.Logger
}

func NewEventService(c client.Client, s Session, log logging.Logger) EventService {
	return &eventService{client: c, session: s, log: log.With("component", "events")}
}

func (s *eventService) checkScope(scope client.Scope) error {
	if scope == client.ScopeAll && !s.session.HasRole(common.RoleAdmin) {
		return fmt.Errorf("%w: listing all events requires the %s role", common.ErrForbidden, common.RoleAdmin)
	}
	return nil
}

func (s *eventService) List(ctx context.Context, scope client.Scope) ([]*models.Event, error) {
	if err := s.checkScope(scope); err != nil {
		return nil, err
	}
	return s.client.ListEvents(ctx, scope)
}

func (s *eventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	return s.client.GetEvent(ctx, id)
}

func (s *eventService) Create(ctx context.Context, e *models.Event) (*models.Event, error) {
	if err := s.prepare(e); err != nil {
		return nil, err
	}
	e.ID = nil
	created, err := s.client.CreateEvent(ctx, e)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "event created", "id", created.IDString(), "title", created.Title)
	return created, nil
}

func (s *eventService) Update(ctx context.Context, id int64, e *models.Event) (*models.Event, error) {
	if err := s.prepare(e); err != nil {
		return nil, err
	}
	e.ID = &id
	updated, err := s.client.UpdateEvent(ctx, id, e)
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "event updated", "id", id)
	return updated, nil
}

func (s *eventService) Delete(ctx context.Context, id int64) error {
	if err := s.client.DeleteEvent(ctx, id); err != nil {
		return err
	}
	s.log.Info(ctx, "event deleted", "id", id)
	return nil
}

func (s *eventService) InRange(ctx context.Context, scope client.Scope, from, to time.Time) ([]*models.Event, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end is before its start", common.ErrorValidation)
	}
	if err := s.checkScope(scope); err != nil {
		return nil, err
	}
	return s.client.EventsInRange(ctx, scope, from, to)
}

func (s *eventService) Search(ctx context.Context, scope client.Scope, keyword string) ([]*models.Event, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%w: keyword is required", common.ErrorValidation)
	}
	if err := s.checkScope(scope); err != nil {
		return nil, err
	}
	return s.client.SearchEvents(ctx, scope, keyword)
}

// prepare validates e, applies defaults and assigns it to the current user.
func (s *eventService) prepare(e *models.Event) error {
	if e == nil {
		return fmt.Errorf("%w: no event", common.ErrorValidation)
	}
	if err := e.Validate(); err != nil {
		return err
	}
	e.ApplyDefaults()

	user := s.session.CurrentUser()
	if user == nil {
		return common.ErrNotLoggedIn
	}
	uid := user.ID
	e.UserID = &uid
	return nil
}
