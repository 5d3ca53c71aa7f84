package client

import (
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ajenda/ajenda/internal/client/models"
	"github.com/ajenda/ajenda/internal/client/session"
	"github.com/ajenda/ajenda/internal/client/token"
	"github.com/ajenda/ajenda/internal/logging"
	"github.com/stretchr/testify/require"
)

// countingStore records how often the token is read.
type countingStore struct {
	session.MemoryStore
	tokenReads atomic.Int32
	clears     atomic.Int32
}

func (s *countingStore) Token(ctx context.Context) (string, error) {
	s.tokenReads.Add(1)
	return s.MemoryStore.Token(ctx)
}

func (s *countingStore) Clear(ctx context.Context) error {
	s.clears.Add(1)
	return s.MemoryStore.Clear(ctx)
}

func newStore(t *testing.T, tok string) *countingStore {
	t.Helper()
	s := &countingStore{}
	ctx := context.Background()
	require.NoError(t, s.MemoryStore.SaveToken(ctx, tok))
	if tok != "" {
		require.NoError(t, s.MemoryStore.SaveUser(ctx, newProfile()))
	}
	return s
}

type fakeEnder struct {
	logouts atomic.Int32
}

func (f *fakeEnder) Logout() { f.logouts.Add(1) }

// recordingTransport answers with a canned status and remembers requests.
type recordingTransport struct {
	mu       sync.Mutex
	requests []*http.Request
	status   int
	err      error
}

func (r *recordingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r.mu.Lock()
	r.requests = append(r.requests, req)
	r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	status := r.status
	if status == 0 {
		status = http.StatusOK
	}
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{},
		Body:       io.NopCloser(strings.NewReader(`{}`)),
		Request:    req,
	}, nil
}

func (r *recordingTransport) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.requests)
}

// trackingBody reports whether Close was called.
type trackingBody struct {
	io.Reader
	closed bool
}

func (b *trackingBody) Close() error {
	b.closed = true
	return nil
}

func newAuthorizer(next http.RoundTripper, store session.Store, ender SessionEnder) *Authorizer {
	return NewAuthorizer(next, store, ender, token.NewValidator(), logging.NewNop())
}

func newProfile() *models.Profile {
	return &models.Profile{ID: 1, Username: "alice", Email: "alice@example.com", Roles: []string{"ROLE_USER"}}
}
