package cli

import (
	"context"
	"strings"

	"github.com/ajenda/ajenda/internal/common"
)

// Register prompts for a username, an email and a password and creates the
// account. It does not sign in.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	msg, err := a.authService.Register(ctx, username, email, password)
	if err != nil {
		return err
	}

	if msg == "" {
		msg = "Account created."
	}
	a.println(msg, "You can now log in.")
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	a.quietLogout.Store(false)
	user, err := a.authService.Login(ctx, username, password)
	if err != nil {
		return err
	}

	a.printf("Welcome, %s!\n", user.Username)
	return nil
}

// Logout ends the session. The local session is gone even when clearing
// the store reports an error. The watcher is only silenced when there is a
// session left to end; a stale flag is dropped at the next login.
func (a *App) Logout(ctx context.Context) error {
	if a.authService.IsLoggedIn() {
		a.quietLogout.Store(true)
	}
	err := a.authService.Logout(ctx)
	a.println("Logged out.")
	return err
}

// WhoAmI prints the signed-in user.
func (a *App) WhoAmI(context.Context) error {
	u := a.authService.CurrentUser()
	if u == nil {
		a.println("Not logged in.")
		return nil
	}

	line := u.Username
	if u.Email != "" {
		line += " <" + u.Email + ">"
	}
	if len(u.Roles) > 0 {
		line += "  roles: " + strings.Join(u.Roles, ", ")
	}
	a.println(line)
	return nil
}
