// Package authstate holds the client's view of whether a user is signed in
// and broadcasts every change to interested components.
//
// A State is built once per process. Each subscriber receives the current
// value on subscription and afterwards only the most recent unread value, so
// a slow reader never blocks a publisher and never observes a stale login
// after a logout has been published.
package authstate

import (
	"context"
	"sync"

	"github.com/ajenda/ajenda/internal/client/models"
	"github.com/ajenda/ajenda/internal/client/session"
	"github.com/ajenda/ajenda/internal/client/token"
	"github.com/ajenda/ajenda/internal/logging"
	"github.com/google/uuid"
)

// Snapshot is one consistent view of the session.
// Authenticated is true exactly when User is non-nil.
type Snapshot struct {
	Authenticated bool
	User          *models.Profile
}

// State is the broadcaster. The zero value is not usable; call New.
type State struct {
	mu     sync.Mutex
	cur    Snapshot
	sinks  map[uuid.UUID]sink
	closed bool
	log    logging.Logger
}

type sink interface {
	deliver(Snapshot)
	close()
}

// feed is a cap-1 channel of projected snapshots.
type feed[T any] struct {
	ch   chan T
	fn   func(Snapshot) T
	done chan struct{}
}

func (f *feed[T]) deliver(v Snapshot) {
	m := f.fn(v)
	select {
	case f.ch <- m:
		return
	default:
	}
	select {
	case <-f.ch:
	default:
	}
	f.ch <- m
}

func (f *feed[T]) close() {
	close(f.done)
	close(f.ch)
}

// New restores the state from store. The session counts as signed in only
// when both a token and a user are stored and the token validates; in every
// other case the store is cleared and the state starts signed out.
func New(ctx context.Context, store session.Store, validator *token.Validator, log logging.Logger) *State {
	s := &State{
		sinks: make(map[uuid.UUID]sink),
		log:   log,
	}

	tok, err := store.Token(ctx)
	if err != nil {
		log.Warn(ctx, "read stored token", "error", err)
	}
	user, err := store.User(ctx)
	if err != nil {
		log.Warn(ctx, "read stored user", "error", err)
	}

	if tok != "" && user != nil {
		verr := validator.Check(tok)
		if verr == nil {
			s.cur = Snapshot{Authenticated: true, User: user.Clone()}
			log.Info(ctx, "session restored", "username", user.Username)
			return s
		}
		log.Info(ctx, "stored token rejected", "reason", verr)
	}

	if err := store.Clear(ctx); err != nil {
		log.Warn(ctx, "clear session store", "error", err)
	}
	return s
}

// Login publishes a signed-in snapshot for user. A nil user is a logout.
func (s *State) Login(user *models.Profile) {
	if user == nil {
		s.Logout()
		return
	}
	s.publish(Snapshot{Authenticated: true, User: user.Clone()})
}

// Logout publishes the signed-out snapshot.
func (s *State) Logout() {
	s.publish(Snapshot{})
}

func (s *State) publish(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.cur = snap
	for _, k := range s.sinks {
		k.deliver(snap)
	}
	s.log.Debug(context.Background(), "auth state published", "authenticated", snap.Authenticated, "subscribers", len(s.sinks))
}

// Snapshot returns the current value.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Authenticated: s.cur.Authenticated, User: s.cur.User.Clone()}
}

func (s *State) IsLoggedIn() bool {
	return s.Snapshot().Authenticated
}

// User returns a copy of the signed-in profile, or nil.
func (s *State) User() *models.Profile {
	return s.Snapshot().User
}

// HasRole reports whether the signed-in user holds role. The ROLE_ prefix is
// optional on both sides.
func (s *State) HasRole(role string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur.User.HasRole(role)
}

// Subscribe returns a channel that yields the current snapshot immediately
// and then the latest one after each change. It is closed when ctx ends or
// the State is closed.
func (s *State) Subscribe(ctx context.Context) <-chan Snapshot {
	return subscribe(ctx, s, func(v Snapshot) Snapshot {
		return Snapshot{Authenticated: v.Authenticated, User: v.User.Clone()}
	})
}

// LoggedIn is Subscribe narrowed to the Authenticated flag.
func (s *State) LoggedIn(ctx context.Context) <-chan bool {
	return subscribe(ctx, s, func(v Snapshot) bool { return v.Authenticated })
}

// CurrentUser is Subscribe narrowed to the profile; nil means signed out.
func (s *State) CurrentUser(ctx context.Context) <-chan *models.Profile {
	return subscribe(ctx, s, func(v Snapshot) *models.Profile { return v.User.Clone() })
}

func subscribe[T any](ctx context.Context, s *State, fn func(Snapshot) T) <-chan T {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := &feed[T]{ch: make(chan T, 1), fn: fn, done: make(chan struct{})}
	if s.closed {
		close(f.ch)
		return f.ch
	}

	id := uuid.New()
	f.deliver(s.cur)
	s.sinks[id] = f

	go func() {
		select {
		case <-ctx.Done():
			s.unsubscribe(id)
		case <-f.done:
		}
	}()
	return f.ch
}

func (s *State) unsubscribe(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if k, ok := s.sinks[id]; ok {
		delete(s.sinks, id)
		k.close()
	}
}

// Close ends every subscription. Later publishes are ignored.
func (s *State) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, k := range s.sinks {
		delete(s.sinks, id)
		k.close()
	}
}
