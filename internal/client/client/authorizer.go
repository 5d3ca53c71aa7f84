package client

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ajenda/ajenda/internal/client/session"
	"github.com/ajenda/ajenda/internal/client/token"
	"github.com/ajenda/ajenda/internal/common"
	"github.com/ajenda/ajenda/internal/logging"
)

// SessionEnder is notified when the Authorizer ends the session.
type SessionEnder interface {
	Logout()
}

// Authorizer attaches the session token to outgoing requests.
//
// Requests to the authentication endpoints pass through untouched. Any other
// request is refused locally when no token is stored or when the token is
// malformed or expired; in the latter case the session is ended first. A 401
// from the backend also ends the session, and the response is handed back
// unchanged so the caller sees the server's error.
type Authorizer struct {
	next      http.RoundTripper
	store     session.Store
	state     SessionEnder
	validator *token.Validator
	log       logging.Logger
}

var _ http.RoundTripper = (*Authorizer)(nil)

// NewAuthorizer wraps next, which defaults to http.DefaultTransport.
func NewAuthorizer(next http.RoundTripper, store session.Store, state SessionEnder, validator *token.Validator, log logging.Logger) *Authorizer {
	if next == nil {
		next = http.DefaultTransport
	}
	return &Authorizer{
		next:      next,
		store:     store,
		state:     state,
		validator: validator,
		log:       log.With("component", "authorizer"),
	}
}

func (a *Authorizer) RoundTrip(req *http.Request) (*http.Response, error) {
	if isAuthEndpoint(req) {
		return a.next.RoundTrip(req)
	}

	ctx := req.Context()

	tok, err := a.store.Token(ctx)
	if err != nil {
		a.log.Warn(ctx, "read session token", "error", err)
		tok = ""
	}
	if tok == "" {
		closeBody(req)
		a.log.Debug(ctx, "request refused, no session", "method", req.Method, "path", req.URL.Path)
		return nil, ErrAuthRequired
	}

	if err := a.validator.Check(tok); err != nil {
		closeBody(req)
		a.endSession(ctx, "token rejected locally", err)
		if errors.Is(err, token.ErrExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}

	out := req.Clone(ctx)
	out.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+tok)
	a.log.Debug(ctx, "request authorized", "method", req.Method, "path", req.URL.Path, "token_len", len(tok))

	resp, err := a.next.RoundTrip(out)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		a.endSession(ctx, "server rejected token", ErrUnauthorized)
	}
	return resp, nil
}

// CloseIdleConnections forwards to the wrapped transport.
func (a *Authorizer) CloseIdleConnections() {
	if c, ok := a.next.(interface{ CloseIdleConnections() }); ok {
		c.CloseIdleConnections()
	}
}

// endSession clears the store even if the request's context is already done.
func (a *Authorizer) endSession(ctx context.Context, reason string, cause error) {
	ctx = context.WithoutCancel(ctx)
	if err := a.store.Clear(ctx); err != nil {
		a.log.Warn(ctx, "clear session store", "error", err)
	}
	a.state.Logout()
	a.log.Info(ctx, "session ended", "reason", reason, "cause", cause)
}

func isAuthEndpoint(req *http.Request) bool {
	return req.URL != nil && strings.Contains(req.URL.Path, common.AuthPathMarker)
}

func closeBody(req *http.Request) {
	if req.Body != nil {
		_ = req.Body.Close()
	}
}
