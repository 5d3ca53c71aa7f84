package cli

import (
	"context"
	"errors"

	"github.com/ajenda/ajenda/internal/client/client"
	"github.com/ajenda/ajenda/internal/client/publish"
	"github.com/ajenda/ajenda/internal/common"
)

// usageError is returned for malformed command arguments.
type usageError string

func (u usageError) Error() string {
	return "usage: " + string(u)
}

// describe turns an error into the line shown to the user.
func describe(err error) string {
	var usage usageError
	switch {
	case errors.As(err, &usage):
		return usage.Error()
	case errors.Is(err, client.ErrTokenExpired):
		return "your session has expired, please log in again"
	case errors.Is(err, client.ErrTokenInvalid):
		return "your session is no longer valid, please log in again"
	case errors.Is(err, client.ErrAuthRequired), errors.Is(err, common.ErrNotLoggedIn):
		return "you are not logged in"
	case errors.Is(err, common.ErrForbidden):
		return "this needs the " + common.RoleAdmin + " role"
	case errors.Is(err, client.ErrUnavailable):
		return "server unavailable, try again later"
	case errors.Is(err, publish.ErrNotConfigured):
		return "publishing is not configured (set publish.bucket in the config file)"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "request timed out"
	}
	return err.Error()
}
