package services

import (
	"context"
	"time"

	"github.com/ajenda/ajenda/internal/client/client"
	"github.com/ajenda/ajenda/internal/client/models"
)

// fakeClient implements client.Client for service tests.
type fakeClient struct {
	CloseErr error

	SignInRet *models.JwtResponse
	SignInErr error
	SignUpRet *models.MessageResponse
	SignUpErr error

	Events    []*models.Event
	EventsErr error
	WriteErr  error

	LastLogin   models.LoginRequest
	LastSignup  models.SignupRequest
	LastScope   client.Scope
	LastFrom    time.Time
	LastTo      time.Time
	LastKeyword string
	LastWritten *models.Event
	LastID      int64
	Calls       int
}

var _ client.Client = (*fakeClient)(nil)

func (f *fakeClient) Close() error { return f.CloseErr }

func (f *fakeClient) SignIn(_ context.Context, req models.LoginRequest) (*models.JwtResponse, error) {
	f.Calls++
	f.LastLogin = req
	return f.SignInRet, f.SignInErr
}

func (f *fakeClient) SignUp(_ context.Context, req models.SignupRequest) (*models.MessageResponse, error) {
	f.Calls++
	f.LastSignup = req
	return f.SignUpRet, f.SignUpErr
}

func (f *fakeClient) ListEvents(_ context.Context, scope client.Scope) ([]*models.Event, error) {
	f.Calls++
	f.LastScope = scope
	return f.Events, f.EventsErr
}

func (f *fakeClient) GetEvent(_ context.Context, id int64) (*models.Event, error) {
	f.Calls++
	f.LastID = id
	if f.EventsErr != nil {
		return nil, f.EventsErr
	}
	for _, e := range f.Events {
		if e.ID != nil && *e.ID == id {
			return e, nil
		}
	}
	return nil, &client.APIError{StatusCode: 404, Message: "not found"}
}

func (f *fakeClient) CreateEvent(_ context.Context, e *models.Event) (*models.Event, error) {
	f.Calls++
	f.LastWritten = e
	if f.WriteErr != nil {
		return nil, f.WriteErr
	}
	created := *e
	id := int64(100)
	created.ID = &id
	return &created, nil
}

func (f *fakeClient) UpdateEvent(_ context.Context, id int64, e *models.Event) (*models.Event, error) {
	f.Calls++
	f.LastID = id
	f.LastWritten = e
	if f.WriteErr != nil {
		return nil, f.WriteErr
	}
	updated := *e
	return &updated, nil
}

func (f *fakeClient) DeleteEvent(_ context.Context, id int64) error {
	f.Calls++
	f.LastID = id
	return f.WriteErr
}

func (f *fakeClient) EventsInRange(_ context.Context, scope client.Scope, from, to time.Time) ([]*models.Event, error) {
	f.Calls++
	f.LastScope, f.LastFrom, f.LastTo = scope, from, to
	return f.Events, f.EventsErr
}

func (f *fakeClient) SearchEvents(_ context.Context, scope client.Scope, keyword string) ([]*models.Event, error) {
	f.Calls++
	f.LastScope, f.LastKeyword = scope, keyword
	return f.Events, f.EventsErr
}

// fakeSession implements Session.
type fakeSession struct {
	user *models.Profile
}

func (s *fakeSession) CurrentUser() *models.Profile { return s.user.Clone() }

func (s *fakeSession) HasRole(role string) bool { return s.user.HasRole(role) }
