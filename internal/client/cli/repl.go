package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// execIface defines the command surface the REPL dispatches to.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	List(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Range(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Export(ctx context.Context, args []string) error
	Publish(ctx context.Context, args []string) error
}

// protectedCommands only run with a live session.
var protectedCommands = map[string]bool{
	"logout":  true,
	"list":    true,
	"l":       true,
	"show":    true,
	"add":     true,
	"edit":    true,
	"delete":  true,
	"range":   true,
	"search":  true,
	"export":  true,
	"publish": true,
}

const (
	guestHelp = "Available commands: register, login, whoami, help, exit"
	userHelp  = "Available commands: (l)ist [all], show <id>, add, edit <id>, delete <id>,\n" +
		"  range <from> <to> [all], search <keyword> [all], export <file|-> [all],\n" +
		"  publish [all], whoami, logout, help, exit"
)

// runREPL reads commands from in until EOF, "exit"/"quit" or ctx is done.
// Prompts and replies go to out, which the session watcher shares.
//
// Commands listed in protectedCommands are refused while logged out. Every
// command runs with its own context, cancelled as soon as it returns, and
// any error it reports is printed in a user-friendly form.
func runREPL(ctx context.Context, a execIface, statusFn func() string, in *bufio.Reader, out io.Writer) {
	for ctx.Err() == nil {
		fmt.Fprintf(out, "ajenda %s> ", statusFn())

		line, readErr := in.ReadString('\n')
		if readErr != nil && line == "" {
			fmt.Fprintln(out)
			return
		}

		parts := strings.Fields(line)
		if len(parts) > 0 {
			cmd, args := parts[0], parts[1:]
			if cmd == "exit" || cmd == "quit" {
				fmt.Fprintln(out, "Bye!")
				return
			}
			runCommand(ctx, a, out, cmd, args)
		}

		if readErr != nil {
			return
		}
	}
}

func runCommand(ctx context.Context, a execIface, out io.Writer, cmd string, args []string) {
	if protectedCommands[cmd] && !a.isLoggedIn() {
		fmt.Fprintln(out, "You are not logged in. Use 'login' or 'register' first.")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var err error
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			fmt.Fprintln(out, userHelp)
		} else {
			fmt.Fprintln(out, guestHelp)
		}

	case "register":
		err = a.Register(ctx)

	case "login":
		err = a.Login(ctx)

	case "logout":
		err = a.Logout(ctx)

	case "whoami":
		err = a.WhoAmI(ctx)

	case "l", "list":
		err = a.List(ctx, args)

	case "show":
		err = a.Show(ctx, args)

	case "add":
		err = a.Add(ctx)

	case "edit":
		err = a.Edit(ctx, args)

	case "delete":
		err = a.Delete(ctx, args)

	case "range":
		err = a.Range(ctx, args)

	case "search":
		err = a.Search(ctx, args)

	case "export":
		err = a.Export(ctx, args)

	case "publish":
		err = a.Publish(ctx, args)

	default:
		fmt.Fprintln(out, "Unknown command:", cmd)
	}

	if err != nil {
		fmt.Fprintln(out, "Error:", describe(err))
	}
}
