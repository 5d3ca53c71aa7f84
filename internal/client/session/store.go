// Package session keeps the bearer token and the signed-in user's profile
// for the lifetime of one client process.
//
// Nothing stored here survives a restart: the default backing is an
// in-memory database, and file-backed databases hold values sealed under a
// key that exists only in the memory of the process that wrote them.
package session

import (
	"context"

	"github.com/ajenda/ajenda/internal/client/models"
)

// Store is the session-scoped holder of credentials.
//
// Token returns "" and User returns nil when nothing is stored. Saving
// replaces the previous value. Clear removes both entries together.
type Store interface {
	SaveToken(ctx context.Context, token string) error
	Token(ctx context.Context) (string, error)
	SaveUser(ctx context.Context, user *models.Profile) error
	User(ctx context.Context) (*models.Profile, error)
	Clear(ctx context.Context) error
}
