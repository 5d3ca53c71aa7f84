package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ajenda/ajenda/internal/client/client"
	"github.com/ajenda/ajenda/internal/client/models"
	"github.com/ajenda/ajenda/internal/common"
	"github.com/ajenda/ajenda/internal/filex"
)

const displayLayout = "2006-01-02 15:04"

// scopeArg strips a trailing "all" from args. Asking for every user's
// events without the ADMIN role is refused before anything is sent.
func (a *App) scopeArg(args []string) (client.Scope, []string, error) {
	if len(args) == 0 || args[len(args)-1] != "all" {
		return client.ScopeMine, args, nil
	}
	if !a.authService.HasRole(common.RoleAdmin) {
		return client.ScopeMine, nil, common.ErrForbidden
	}
	return client.ScopeAll, args[:len(args)-1], nil
}

func parseID(args []string, usage string) (int64, error) {
	if len(args) != 1 {
		return 0, usageError(usage)
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, usageError(usage)
	}
	return id, nil
}

// List prints the user's events, or everybody's with "all".
func (a *App) List(ctx context.Context, args []string) error {
	scope, rest, err := a.scopeArg(args)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return usageError("list [all]")
	}

	events, err := a.eventService.List(ctx, scope)
	if err != nil {
		return err
	}
	a.printEvents(events)
	return nil
}

// Range prints events overlapping [from, to].
func (a *App) Range(ctx context.Context, args []string) error {
	const usage = "range <from> <to> [all]   (dates as YYYY-MM-DD or YYYY-MM-DDTHH:MM)"

	scope, rest, err := a.scopeArg(args)
	if err != nil {
		return err
	}
	if len(rest) != 2 {
		return usageError(usage)
	}
	from, err := models.ParseLocalTime(rest[0])
	if err != nil {
		return err
	}
	to, err := models.ParseLocalTime(rest[1])
	if err != nil {
		return err
	}

	events, err := a.eventService.InRange(ctx, scope, from.Time, to.Time)
	if err != nil {
		return err
	}
	a.printEvents(events)
	return nil
}

// Search prints events whose title or description matches the keyword.
func (a *App) Search(ctx context.Context, args []string) error {
	scope, rest, err := a.scopeArg(args)
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return usageError("search <keyword> [all]")
	}

	events, err := a.eventService.Search(ctx, scope, strings.Join(rest, " "))
	if err != nil {
		return err
	}
	a.printEvents(events)
	return nil
}

// Show prints one event in full.
func (a *App) Show(ctx context.Context, args []string) error {
	id, err := parseID(args, "show <id>")
	if err != nil {
		return err
	}

	e, err := a.eventService.Get(ctx, id)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", e.IDString())
	fmt.Fprintf(tw, "Title:\t%s\n", e.Title)
	fmt.Fprintf(tw, "When:\t%s\n", when(e))
	if e.Location != "" {
		fmt.Fprintf(tw, "Location:\t%s\n", e.Location)
	}
	if e.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", e.Description)
	}
	fmt.Fprintf(tw, "Colours:\t%s on %s\n", e.TextColor, e.BackgroundColor)
	return tw.Flush()
}

// Add prompts for a new event and creates it.
func (a *App) Add(ctx context.Context) error {
	e, err := a.readEvent(&models.Event{})
	if err != nil {
		return err
	}

	created, err := a.eventService.Create(ctx, e)
	if err != nil {
		return err
	}
	a.printf("Created event %s.\n", created.IDString())
	return nil
}

// Edit loads an event, prompts for changes with the current values as
// defaults and saves it.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := parseID(args, "edit <id>")
	if err != nil {
		return err
	}

	current, err := a.eventService.Get(ctx, id)
	if err != nil {
		return err
	}
	a.println("Press Enter to keep a value, '-' to clear it.")

	e, err := a.readEvent(current)
	if err != nil {
		return err
	}

	if _, err := a.eventService.Update(ctx, id, e); err != nil {
		return err
	}
	a.printf("Updated event %d.\n", id)
	return nil
}

// Delete removes an event after confirmation.
func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := parseID(args, "delete <id>")
	if err != nil {
		return err
	}

	ok, err := a.confirm(fmt.Sprintf("Delete event %d?", id))
	if err != nil {
		return err
	}
	if !ok {
		a.println("Nothing deleted.")
		return nil
	}

	if err := a.eventService.Delete(ctx, id); err != nil {
		return err
	}
	a.printf("Deleted event %d.\n", id)
	return nil
}

// readEvent runs the event form, starting from base.
func (a *App) readEvent(base *models.Event) (*models.Event, error) {
	e := *base

	var err error
	if e.Title, err = a.promptDefault("Title", e.Title); err != nil {
		return nil, err
	}

	allDay, err := a.promptDefault("All day? (y/n)", yesNo(e.AllDay))
	if err != nil {
		return nil, err
	}
	e.AllDay = parseYes(allDay)

	startLabel, endLabel := "Start (YYYY-MM-DD HH:MM)", "End (YYYY-MM-DD HH:MM)"
	if e.AllDay {
		startLabel, endLabel = "First day (YYYY-MM-DD)", "Last day (YYYY-MM-DD, empty for a single day)"
	}
	if e.Start, err = a.promptTime(startLabel, e.Start); err != nil {
		return nil, err
	}
	if e.End, err = a.promptTime(endLabel, e.End); err != nil {
		return nil, err
	}
	if e.AllDay {
		e.Start.Time = startOfDay(e.Start.Time)
		if e.End.IsZero() {
			e.End = e.Start
		}
		e.End.Time = startOfDay(e.End.Time)
	}

	if e.Location, err = a.promptDefault("Location", e.Location); err != nil {
		return nil, err
	}
	if base.Description == "" {
		if e.Description, err = getMultiline(a.reader, "Description", a.out); err != nil {
			return nil, err
		}
	} else if e.Description, err = a.promptDefault("Description", e.Description); err != nil {
		return nil, err
	}
	if e.BackgroundColor, err = a.promptDefault("Background colour", e.BackgroundColor); err != nil {
		return nil, err
	}
	if e.TextColor, err = a.promptDefault("Text colour", e.TextColor); err != nil {
		return nil, err
	}

	return &e, nil
}

func (a *App) promptTime(label string, current models.LocalTime) (models.LocalTime, error) {
	cur := ""
	if !current.IsZero() {
		cur = current.Format(displayLayout)
	}
	v, err := a.promptDefault(label, cur)
	if err != nil || v == "" {
		return models.LocalTime{}, err
	}
	return models.ParseLocalTime(v)
}

func (a *App) printEvents(events []*models.Event) {
	if len(events) == 0 {
		a.println("No events.")
		return
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tWHEN\tLOCATION")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.IDString(), e.Title, when(e), e.Location)
	}
	_ = tw.Flush()
}

func when(e *models.Event) string {
	if e.AllDay {
		first, last := e.Start.Format(time.DateOnly), e.End.Format(time.DateOnly)
		if e.End.IsZero() || first == last {
			return first + " (all day)"
		}
		return first + " to " + last + " (all day)"
	}
	return e.Start.Format(displayLayout) + " to " + e.End.Format(displayLayout)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func yesNo(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

// Export writes the feed to a file, or to the terminal when the file is "-".
func (a *App) Export(ctx context.Context, args []string) error {
	scope, rest, err := a.scopeArg(args)
	if err != nil {
		return err
	}
	if len(rest) != 1 {
		return usageError("export <file|-> [all]")
	}

	if rest[0] == "-" {
		_, err := a.publishService.Export(ctx, scope, a.out)
		return err
	}

	f, err := filex.CreateAtomic(rest[0])
	if err != nil {
		return err
	}
	n, err := a.publishService.Export(ctx, scope, f)
	if err != nil {
		_ = f.Abort()
		return err
	}
	if err := f.Commit(); err != nil {
		return err
	}

	a.printf("Exported %d events to %s.\n", n, rest[0])
	return nil
}

// Publish uploads the feed to object storage and prints the share link.
func (a *App) Publish(ctx context.Context, args []string) error {
	scope, rest, err := a.scopeArg(args)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return usageError("publish [all]")
	}

	link, err := a.publishService.Publish(ctx, scope)
	if err != nil {
		return err
	}

	a.printf("Published %d events.\n%s\n(link valid until %s)\n",
		link.Events, link.URL, link.ExpiresAt.Local().Format(displayLayout))
	return nil
}
