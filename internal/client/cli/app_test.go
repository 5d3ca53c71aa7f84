package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ajenda/ajenda/internal/client/authstate"
	"github.com/ajenda/ajenda/internal/client/client"
	"github.com/ajenda/ajenda/internal/client/models"
	"github.com/ajenda/ajenda/internal/client/services"
	"github.com/ajenda/ajenda/internal/client/session"
	"github.com/ajenda/ajenda/internal/client/token"
	"github.com/ajenda/ajenda/internal/common"
	"github.com/ajenda/ajenda/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	alice = &models.Profile{ID: 1, Username: "alice", Email: "alice@example.org", Roles: []string{"ROLE_USER"}}
	root  = &models.Profile{ID: 2, Username: "root", Roles: []string{"ROLE_ADMIN"}}
)

func storedEvent(t *testing.T, id int64, title string) *models.Event {
	t.Helper()
	start, err := models.ParseLocalTime("2025-06-02T09:00")
	require.NoError(t, err)
	end, err := models.ParseLocalTime("2025-06-02T10:30")
	require.NoError(t, err)
	return &models.Event{
		ID: &id, Title: title, Start: start, End: end, Location: "Room 4",
		BackgroundColor: models.DefaultBackgroundColor, TextColor: models.DefaultTextColor,
	}
}

func TestLogin(t *testing.T) {
	a, d, out := testAppWith(t, appDeps{})
	stubText(t, "alice")
	stubPassword(t, "secret")

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, "alice", d.auth.loginUser)
	assert.Equal(t, []byte("secret"), d.auth.loginPass)
	assert.Contains(t, out.String(), "Welcome, alice!")
	assert.Equal(t, "(alice)", a.getStatus())
}

func TestLogin_ErrorReturned(t *testing.T) {
	a, _, _ := testAppWith(t, appDeps{auth: &fakeAuth{loginErr: &client.APIError{StatusCode: 401, Message: "Bad credentials"}}})
	stubText(t, "alice")
	stubPassword(t, "wrong")

	err := a.Login(context.Background())
	require.ErrorIs(t, err, client.ErrUnauthorized)
	assert.Equal(t, "(guest)", a.getStatus())
}

func TestRegister(t *testing.T) {
	a, d, out := testAppWith(t, appDeps{auth: &fakeAuth{regMsg: "User registered successfully!"}})
	stubText(t, "bob", "bob@example.org")
	stubPassword(t, "pw")

	require.NoError(t, a.Register(context.Background()))
	assert.Equal(t, "bob", d.auth.regUser)
	assert.Equal(t, "bob@example.org", d.auth.regEmail)
	assert.Equal(t, []byte("pw"), d.auth.regPass)
	assert.Contains(t, out.String(), "User registered successfully! You can now log in.")
}

func TestLogoutAndWhoAmI(t *testing.T) {
	a, d, out := testAppWith(t, appDeps{auth: &fakeAuth{user: alice.Clone()}})

	require.NoError(t, a.WhoAmI(context.Background()))
	assert.Contains(t, out.String(), "alice <alice@example.org>  roles: ROLE_USER")

	require.NoError(t, a.Logout(context.Background()))
	assert.True(t, d.auth.logoutCalled)
	assert.True(t, a.quietLogout.Load())

	out.Reset()
	require.NoError(t, a.WhoAmI(context.Background()))
	assert.Equal(t, "Not logged in.\n", out.String())
}

func TestScopeArg(t *testing.T) {
	user, _ := testApp(t, &fakeAuth{user: alice.Clone()})
	admin, _ := testApp(t, &fakeAuth{user: root.Clone()})

	scope, rest, err := user.scopeArg([]string{"team"})
	require.NoError(t, err)
	assert.Equal(t, client.ScopeMine, scope)
	assert.Equal(t, []string{"team"}, rest)

	_, _, err = user.scopeArg([]string{"team", "all"})
	require.ErrorIs(t, err, common.ErrForbidden)

	scope, rest, err = admin.scopeArg([]string{"team", "all"})
	require.NoError(t, err)
	assert.Equal(t, client.ScopeAll, scope)
	assert.Equal(t, []string{"team"}, rest)
}

func TestList(t *testing.T) {
	events := &fakeEvents{events: []*models.Event{storedEvent(t, 7, "Standup")}}
	a, d, out := testAppWith(t, appDeps{auth: &fakeAuth{user: root.Clone()}, events: events})

	require.NoError(t, a.List(context.Background(), []string{"all"}))
	assert.Equal(t, client.ScopeAll, d.events.scope)
	assert.Contains(t, out.String(), "ID")
	assert.Contains(t, out.String(), "Standup")
	assert.Contains(t, out.String(), "2025-06-02 09:00 to 2025-06-02 10:30")

	var usage usageError
	require.ErrorAs(t, a.List(context.Background(), []string{"extra"}), &usage)

	events.events = nil
	out.Reset()
	require.NoError(t, a.List(context.Background(), nil))
	assert.Equal(t, "No events.\n", out.String())
}

func TestListAll_RefusedWithoutAdmin(t *testing.T) {
	a, d, _ := testAppWith(t, appDeps{auth: &fakeAuth{user: alice.Clone()}})

	require.ErrorIs(t, a.List(context.Background(), []string{"all"}), common.ErrForbidden)
	require.ErrorIs(t, a.Publish(context.Background(), []string{"all"}), common.ErrForbidden)
	assert.Zero(t, d.events.scope)
}

func TestShow(t *testing.T) {
	e := storedEvent(t, 7, "Standup")
	e.Description = "daily"
	a, _, out := testAppWith(t, appDeps{auth: &fakeAuth{user: alice.Clone()}, events: &fakeEvents{events: []*models.Event{e}}})

	require.NoError(t, a.Show(context.Background(), []string{"7"}))
	for _, want := range []string{"Standup", "Room 4", "daily", "#FFFFFF on #4F46E5"} {
		assert.Contains(t, out.String(), want)
	}

	require.ErrorIs(t, a.Show(context.Background(), []string{"8"}), client.ErrNotFound)
	for _, args := range [][]string{nil, {"x"}, {"0"}, {"1", "2"}} {
		var usage usageError
		require.ErrorAs(t, a.Show(context.Background(), args), &usage, "%v", args)
	}
}

func TestAdd_TimedEvent(t *testing.T) {
	a, d, out := testAppWith(t, appDeps{auth: &fakeAuth{user: alice.Clone()}})
	stubText(t,
		"Review", "n", "2025-06-03 14:00", "2025-06-03 15:00", "Room 2",
		"Quarterly numbers", "", "",
	)

	require.NoError(t, a.Add(context.Background()))

	got := d.events.written
	require.NotNil(t, got)
	assert.Equal(t, "Review", got.Title)
	assert.False(t, got.AllDay)
	assert.Equal(t, "2025-06-03T14:00:00", got.Start.String())
	assert.Equal(t, "2025-06-03T15:00:00", got.End.String())
	assert.Equal(t, "Room 2", got.Location)
	assert.Equal(t, "Quarterly numbers", got.Description)
	assert.Contains(t, out.String(), "Created event 42.")
}

func TestAdd_AllDaySingleDay(t *testing.T) {
	a, d, _ := testAppWith(t, appDeps{auth: &fakeAuth{user: alice.Clone()}})
	stubText(t, "Holiday", "y", "2025-07-14", "", "", "", "", "")

	require.NoError(t, a.Add(context.Background()))

	got := d.events.written
	assert.True(t, got.AllDay)
	assert.Equal(t, "2025-07-14T00:00:00", got.Start.String())
	assert.Equal(t, got.Start, got.End)
}

func TestAdd_BadDate(t *testing.T) {
	a, d, _ := testAppWith(t, appDeps{auth: &fakeAuth{user: alice.Clone()}})
	stubText(t, "Review", "n", "tomorrow")

	require.ErrorIs(t, a.Add(context.Background()), common.ErrorValidation)
	assert.Nil(t, d.events.written)
}

func TestEdit_KeepsDefaults(t *testing.T) {
	e := storedEvent(t, 7, "Standup")
	e.Description = "daily"
	a, d, _ := testAppWith(t, appDeps{auth: &fakeAuth{user: alice.Clone()}, events: &fakeEvents{events: []*models.Event{e}}})
	stubText(t, "Standup v2", "", "", "2025-06-02 09:45", "-", "", "", "#000000")

	require.NoError(t, a.Edit(context.Background(), []string{"7"}))

	got := d.events.written
	assert.Equal(t, int64(7), d.events.id)
	assert.Equal(t, "Standup v2", got.Title)
	assert.Equal(t, "2025-06-02T09:00:00", got.Start.String())
	assert.Equal(t, "2025-06-02T09:45:00", got.End.String())
	assert.Empty(t, got.Location)
	assert.Equal(t, "daily", got.Description)
	assert.Equal(t, models.DefaultBackgroundColor, got.BackgroundColor)
	assert.Equal(t, "#000000", got.TextColor)
}

func TestDelete(t *testing.T) {
	a, d, out := testAppWith(t, appDeps{auth: &fakeAuth{user: alice.Clone()}})

	stubText(t, "n")
	require.NoError(t, a.Delete(context.Background(), []string{"9"}))
	assert.Zero(t, d.events.id)
	assert.Contains(t, out.String(), "Nothing deleted.")

	stubText(t, "yes")
	require.NoError(t, a.Delete(context.Background(), []string{"9"}))
	assert.Equal(t, int64(9), d.events.id)
	assert.Contains(t, out.String(), "Deleted event 9.")
}

func TestRangeAndSearch(t *testing.T) {
	a, d, _ := testAppWith(t, appDeps{auth: &fakeAuth{user: alice.Clone()}})

	require.NoError(t, a.Range(context.Background(), []string{"2025-06-01", "2025-06-30T23:59"}))
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.Local), d.events.from)
	assert.Equal(t, time.Date(2025, 6, 30, 23, 59, 0, 0, time.Local), d.events.to)

	var usage usageError
	require.ErrorAs(t, a.Range(context.Background(), []string{"2025-06-01"}), &usage)
	require.ErrorIs(t, a.Range(context.Background(), []string{"june", "july"}), common.ErrorValidation)

	require.NoError(t, a.Search(context.Background(), []string{"team", "sync"}))
	assert.Equal(t, "team sync", d.events.keyword)
	require.ErrorAs(t, a.Search(context.Background(), nil), &usage)
}

func TestExport(t *testing.T) {
	a, d, out := testAppWith(t, appDeps{auth: &fakeAuth{user: root.Clone()}})
	path := filepath.Join(t.TempDir(), "cal.ics")

	require.NoError(t, a.Export(context.Background(), []string{path, "all"}))
	assert.Equal(t, client.ScopeAll, d.publish.scope)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "BEGIN:VCALENDAR"))
	assert.Contains(t, out.String(), "Exported 2 events to "+path)

	out.Reset()
	require.NoError(t, a.Export(context.Background(), []string{"-"}))
	assert.Contains(t, out.String(), "END:VCALENDAR")
}

func TestExport_FailureRemovesFile(t *testing.T) {
	a, _, _ := testAppWith(t, appDeps{
		auth:    &fakeAuth{user: alice.Clone()},
		publish: &fakePublish{err: client.ErrAuthRequired},
	})
	path := filepath.Join(t.TempDir(), "cal.ics")

	require.ErrorIs(t, a.Export(context.Background(), []string{path}), client.ErrAuthRequired)
	_, err := os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestPublish(t *testing.T) {
	link := &services.Link{
		Key:       "calendars/alice.ics",
		URL:       "https://storage.example/calendars/alice.ics?sig=1",
		ExpiresAt: time.Now().Add(24 * time.Hour),
		Events:    3,
	}
	a, _, out := testAppWith(t, appDeps{auth: &fakeAuth{user: alice.Clone()}, publish: &fakePublish{link: link}})

	require.NoError(t, a.Publish(context.Background(), nil))
	assert.Contains(t, out.String(), "Published 3 events.")
	assert.Contains(t, out.String(), link.URL)
}

func TestWatchSession_NoticeOnlyForUnrequestedLogout(t *testing.T) {
	store := session.NewMemoryStore()
	state := authstate.New(context.Background(), store, token.NewValidator(), logging.NewNop())
	t.Cleanup(state.Close)

	seen := make(chan bool)
	orig := onSessionChange
	onSessionChange = func(in bool) { seen <- in }
	t.Cleanup(func() { onSessionChange = orig })

	out := &bytes.Buffer{}
	a := newApp(nil, logging.NewNop(), &fakeAuth{}, &fakeEvents{}, &fakePublish{}, state, &bytes.Buffer{}, out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.watchSession(ctx)
		close(done)
	}()
	require.False(t, <-seen)

	state.Login(alice.Clone())
	require.True(t, <-seen)
	a.quietLogout.Store(true)
	state.Logout()
	require.False(t, <-seen)
	assert.NotContains(t, out.String(), "Session ended")

	state.Login(alice.Clone())
	require.True(t, <-seen)
	state.Logout()
	require.False(t, <-seen)
	assert.Equal(t, 1, strings.Count(out.String(), "Session ended. Please log in again."))

	cancel()
	<-done
}

func TestLogout_SessionAlreadyEndedKeepsNextNoticeVisible(t *testing.T) {
	store := session.NewMemoryStore()
	state := authstate.New(context.Background(), store, token.NewValidator(), logging.NewNop())
	t.Cleanup(state.Close)

	seen := make(chan bool)
	orig := onSessionChange
	onSessionChange = func(in bool) { seen <- in }
	t.Cleanup(func() { onSessionChange = orig })

	auth := &fakeAuth{}
	out := &bytes.Buffer{}
	a := newApp(nil, logging.NewNop(), auth, &fakeEvents{}, &fakePublish{}, state, &bytes.Buffer{}, out)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		a.watchSession(ctx)
		close(done)
	}()
	require.False(t, <-seen)

	state.Login(alice.Clone())
	require.True(t, <-seen)

	// the session ends on its own before the typed logout reaches the service
	state.Logout()
	require.False(t, <-seen)
	require.NoError(t, a.Logout(context.Background()))
	assert.False(t, a.quietLogout.Load())

	state.Login(alice.Clone())
	require.True(t, <-seen)
	state.Logout()
	require.False(t, <-seen)
	assert.Equal(t, 2, strings.Count(out.String(), "Session ended. Please log in again."))

	cancel()
	<-done
}

func TestLogin_ClearsStaleQuietFlag(t *testing.T) {
	a, _ := testApp(t, &fakeAuth{})
	a.quietLogout.Store(true)
	stubText(t, "alice")
	stubPassword(t, "pw")

	require.NoError(t, a.Login(context.Background()))
	assert.False(t, a.quietLogout.Load())
}
