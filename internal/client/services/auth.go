// Package services contains application services for the ajenda client.
// This file defines the authentication service: sign-in, sign-up, logout
// and the background watcher that ends sessions whose token has expired.
package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ajenda/ajenda/internal/client/authstate"
	"github.com/ajenda/ajenda/internal/client/client"
	"github.com/ajenda/ajenda/internal/client/models"
	"github.com/ajenda/ajenda/internal/client/session"
	"github.com/ajenda/ajenda/internal/client/token"
	"github.com/ajenda/ajenda/internal/common"
	"github.com/ajenda/ajenda/internal/logging"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate against the server, keep the token and profile in
//     the session store and publish the signed-in state.
//   - Register: create a new account; it does not sign in.
//   - Logout: clear the session store and publish the signed-out state.
//   - WatchExpiry: end the session as soon as the stored token expires.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, username string, password []byte) (*models.Profile, error)
	Register(ctx context.Context, username, email string, password []byte) (string, error)
	Logout(ctx context.Context) error
	CurrentUser() *models.Profile
	IsLoggedIn() bool
	HasRole(role string) bool
	WatchExpiry(ctx context.Context, interval time.Duration)
	Close(ctx context.Context) error
}

type authService struct {
	client    client.Client
	store     session.Store
	state     *authstate.State
	validator *token.Validator
	log       logging.Logger
}

// NewAuthService wires the service to the API client and the session.
func NewAuthService(c client.Client, store session.Store, state *authstate.State, validator *token.Validator, log logging.Logger) AuthService {
	return &authService{
		client:    c,
		store:     store,
		state:     state,
		validator: validator,
		log:       log.With("component", "auth"),
	}
}

// Login signs in and starts a session. A token the client itself would
// refuse to send is rejected here, before anything is stored.
func (a *authService) Login(ctx context.Context, username string, password []byte) (*models.Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" || len(password) == 0 {
		return nil, fmt.Errorf("%w: username and password are required", common.ErrorValidation)
	}

	resp, err := a.client.SignIn(ctx, models.LoginRequest{Username: username, Password: string(password)})
	if err != nil {
		return nil, fmt.Errorf("sign in: %w", err)
	}
	if err := a.validator.Check(resp.Token); err != nil {
		return nil, fmt.Errorf("server issued an unusable token: %w", err)
	}

	if err := a.store.SaveToken(ctx, resp.Token); err != nil {
		return nil, fmt.Errorf("store session token: %w", err)
	}
	profile := resp.Profile()
	if err := a.store.SaveUser(ctx, profile); err != nil {
		a.log.Warn(ctx, "store session user", "error", err)
	}

	a.state.Login(profile)
	a.log.Info(ctx, "signed in", "username", profile.Username, "roles", profile.Roles, "token_len", len(resp.Token))
	return profile.Clone(), nil
}

// Register creates an account and returns the server's message.
func (a *authService) Register(ctx context.Context, username, email string, password []byte) (string, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || len(password) == 0 {
		return "", fmt.Errorf("%w: username, email and password are required", common.ErrorValidation)
	}

	resp, err := a.client.SignUp(ctx, models.SignupRequest{
		Username: username,
		Email:    email,
		Password: string(password),
	})
	if err != nil {
		return "", fmt.Errorf("sign up: %w", err)
	}
	a.log.Info(ctx, "account registered", "username", username)
	return resp.Message, nil
}

// Logout always ends the in-memory session; a store failure is returned
// after the state has been published.
func (a *authService) Logout(ctx context.Context) error {
	err := a.store.Clear(ctx)
	a.state.Logout()
	if err != nil {
		a.log.Warn(ctx, "clear session store", "error", err)
		return fmt.Errorf("clear session: %w", err)
	}
	a.log.Info(ctx, "signed out")
	return nil
}

func (a *authService) CurrentUser() *models.Profile {
	return a.state.User()
}

func (a *authService) IsLoggedIn() bool {
	return a.state.IsLoggedIn()
}

func (a *authService) HasRole(role string) bool {
	return a.state.HasRole(role)
}

// WatchExpiry checks the stored token every interval and ends the session
// once it no longer validates. It returns when ctx is done, or at once for a
// non-positive interval.
func (a *authService) WatchExpiry(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		a.log.Warn(ctx, "expiry watcher disabled", "interval", interval)
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkExpiry(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *authService) checkExpiry(ctx context.Context) {
	if !a.state.IsLoggedIn() {
		return
	}
	tok, err := a.store.Token(ctx)
	if err != nil {
		a.log.Warn(ctx, "read session token", "error", err)
		return
	}
	if verr := a.validator.Check(tok); verr != nil {
		a.log.Info(ctx, "session expired", "reason", verr)
		_ = a.Logout(ctx)
	}
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
