package client

import (
	"context"
	"time"

	"github.com/ajenda/ajenda/internal/client/models"
)

// Scope selects whose events an operation reads.
type Scope int

const (
	// ScopeMine limits results to the signed-in user's events.
	ScopeMine Scope = iota
	// ScopeAll returns every user's events. The backend allows it for
	// administrators only.
	ScopeAll
)

func (s Scope) String() string {
	if s == ScopeAll {
		return "all"
	}
	return "mine"
}

type Client interface {
	Close() error
	SignIn(ctx context.Context, req models.LoginRequest) (*models.JwtResponse, error)
	SignUp(ctx context.Context, req models.SignupRequest) (*models.MessageResponse, error)
	ListEvents(ctx context.Context, scope Scope) ([]*models.Event, error)
	GetEvent(ctx context.Context, id int64) (*models.Event, error)
	CreateEvent(ctx context.Context, e *models.Event) (*models.Event, error)
	UpdateEvent(ctx context.Context, id int64, e *models.Event) (*models.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	EventsInRange(ctx context.Context, scope Scope, from, to time.Time) ([]*models.Event, error)
	SearchEvents(ctx context.Context, scope Scope, keyword string) ([]*models.Event, error)
}
