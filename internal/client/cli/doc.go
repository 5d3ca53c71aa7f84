// Package cli provides the interactive ajenda command-line client.
//
// NewApp wires configuration, the session store, the auth state, the
// authorizing HTTP transport and the services; App.Run then starts two
// background watchers and the REPL:
//   - the expiry watcher ends the session once the stored token expires,
//   - the session watcher prints a notice whenever the state drops to
//     logged out without the user asking for it.
//
// Commands that need a session are refused while logged out. Listing
// commands accept a trailing "all" for users holding the ADMIN role.
package cli
