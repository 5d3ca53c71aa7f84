package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/ajenda/ajenda/internal/client/client"
	"github.com/ajenda/ajenda/internal/client/config"
	"github.com/ajenda/ajenda/internal/client/models"
	"github.com/ajenda/ajenda/internal/client/services"
	"github.com/ajenda/ajenda/internal/logging"
)

type fakeAuth struct {
	user *models.Profile

	loginUser string
	loginPass []byte
	loginErr  error

	regUser, regEmail string
	regPass           []byte
	regMsg            string
	regErr            error

	logoutCalled bool
	logoutErr    error
}

func (f *fakeAuth) Login(_ context.Context, user string, pass []byte) (*models.Profile, error) {
	f.loginUser, f.loginPass = user, append([]byte(nil), pass...)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	f.user = &models.Profile{ID: 1, Username: user}
	return f.user, nil
}

func (f *fakeAuth) Register(_ context.Context, user, email string, pass []byte) (string, error) {
	f.regUser, f.regEmail, f.regPass = user, email, append([]byte(nil), pass...)
	return f.regMsg, f.regErr
}

func (f *fakeAuth) Logout(context.Context) error {
	f.logoutCalled = true
	f.user = nil
	return f.logoutErr
}

func (f *fakeAuth) CurrentUser() *models.Profile                     { return f.user.Clone() }
func (f *fakeAuth) IsLoggedIn() bool                                 { return f.user != nil }
func (f *fakeAuth) HasRole(role string) bool                         { return f.user.HasRole(role) }
func (f *fakeAuth) WatchExpiry(ctx context.Context, _ time.Duration) { <-ctx.Done() }
func (f *fakeAuth) Close(context.Context) error                      { return nil }

type fakeEvents struct {
	events []*models.Event
	err    error

	scope   client.Scope
	from    time.Time
	to      time.Time
	keyword string
	written *models.Event
	id      int64
}

func (f *fakeEvents) List(_ context.Context, scope client.Scope) ([]*models.Event, error) {
	f.scope = scope
	return f.events, f.err
}

func (f *fakeEvents) Get(_ context.Context, id int64) (*models.Event, error) {
	f.id = id
	if f.err != nil {
		return nil, f.err
	}
	for _, e := range f.events {
		if e.ID != nil && *e.ID == id {
			c := *e
			return &c, nil
		}
	}
	return nil, &client.APIError{StatusCode: 404}
}

func (f *fakeEvents) Create(_ context.Context, e *models.Event) (*models.Event, error) {
	f.written = e
	if f.err != nil {
		return nil, f.err
	}
	c := *e
	id := int64(42)
	c.ID = &id
	return &c, nil
}

func (f *fakeEvents) Update(_ context.Context, id int64, e *models.Event) (*models.Event, error) {
	f.id, f.written = id, e
	return e, f.err
}

func (f *fakeEvents) Delete(_ context.Context, id int64) error {
	f.id = id
	return f.err
}

func (f *fakeEvents) InRange(_ context.Context, scope client.Scope, from, to time.Time) ([]*models.Event, error) {
	f.scope, f.from, f.to = scope, from, to
	return f.events, f.err
}

func (f *fakeEvents) Search(_ context.Context, scope client.Scope, keyword string) ([]*models.Event, error) {
	f.scope, f.keyword = scope, keyword
	return f.events, f.err
}

type fakePublish struct {
	scope client.Scope
	link  *services.Link
	err   error
}

func (f *fakePublish) Export(_ context.Context, scope client.Scope, w io.Writer) (int, error) {
	f.scope = scope
	if f.err != nil {
		return 0, f.err
	}
	_, err := fmt.Fprint(w, "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n")
	return 2, err
}

func (f *fakePublish) Publish(_ context.Context, scope client.Scope) (*services.Link, error) {
	f.scope = scope
	return f.link, f.err
}

type appDeps struct {
	auth    *fakeAuth
	events  *fakeEvents
	publish *fakePublish
}

func testApp(t *testing.T, auth *fakeAuth) (*App, *bytes.Buffer) {
	t.Helper()
	a, _, out := testAppWith(t, appDeps{auth: auth})
	return a, out
}

func testAppWith(t *testing.T, d appDeps) (*App, appDeps, *bytes.Buffer) {
	t.Helper()
	if d.auth == nil {
		d.auth = &fakeAuth{}
	}
	if d.events == nil {
		d.events = &fakeEvents{}
	}
	if d.publish == nil {
		d.publish = &fakePublish{}
	}
	cfg := &config.Config{}
	cfg.LoadDefaults()

	out := &bytes.Buffer{}
	a := newApp(cfg, logging.NewNop(), d.auth, d.events, d.publish, nil, &bytes.Buffer{}, out)
	return a, d, out
}

// stubText answers getSimpleText and getMultiline prompts in order.
func stubText(t *testing.T, answers ...string) {
	t.Helper()
	origText, origMulti := getSimpleText, getMultiline
	next := func() (string, error) {
		if len(answers) == 0 {
			t.Fatalf("unexpected prompt")
		}
		v := answers[0]
		answers = answers[1:]
		return v, nil
	}
	getSimpleText = func(_ *bufio.Reader, prompt string, w io.Writer) (string, error) {
		fmt.Fprintln(w, prompt)
		return next()
	}
	getMultiline = func(_ *bufio.Reader, prompt string, w io.Writer) (string, error) {
		fmt.Fprintln(w, prompt)
		return next()
	}
	t.Cleanup(func() { getSimpleText, getMultiline = origText, origMulti })
}

func stubPassword(t *testing.T, pw string) {
	t.Helper()
	orig := getPassword
	getPassword = func(io.Writer) ([]byte, error) { return []byte(pw), nil }
	t.Cleanup(func() { getPassword = orig })
}
