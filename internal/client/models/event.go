// Package models defines the client-side view of the backend's resources:
// calendar events and the authentication payloads.
package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ajenda/ajenda/internal/common"
)

const (
	DefaultBackgroundColor = "#4F46E5"
	DefaultTextColor       = "#FFFFFF"
)

// LocalTimeLayout is the wire format of event timestamps: a date-time without
// zone, interpreted in the local zone.
const LocalTimeLayout = "2006-01-02T15:04:05"

var localTimeLayouts = []string{
	LocalTimeLayout,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// LocalTime is a wall-clock timestamp as exchanged with the backend.
type LocalTime struct {
	time.Time
}

// ParseLocalTime accepts the zone-less forms above as well as RFC 3339.
func ParseLocalTime(s string) (LocalTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range localTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return LocalTime{Time: t}, nil
		}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return LocalTime{Time: t.Local()}, nil
	}
	return LocalTime{}, fmt.Errorf("%w: unrecognised date-time %q", common.ErrorValidation, s)
}

func (t LocalTime) String() string {
	if t.IsZero() {
		return ""
	}
	return t.Format(LocalTimeLayout)
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format(LocalTimeLayout) + `"`), nil
}

func (t *LocalTime) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		t.Time = time.Time{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("%w: date-time must be a string", common.ErrorValidation)
	}
	parsed, err := ParseLocalTime(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Event is a calendar entry. ID is nil until the backend has stored it.
type Event struct {
	ID              *int64    `json:"id,omitempty"`
	Title           string    `json:"titre"`
	Description     string    `json:"description,omitempty"`
	Start           LocalTime `json:"dateDebut"`
	End             LocalTime `json:"dateFin"`
	BackgroundColor string    `json:"couleurFond,omitempty"`
	TextColor       string    `json:"couleurTexte,omitempty"`
	Location        string    `json:"lieu,omitempty"`
	AllDay          bool      `json:"estJourneeEntiere"`
	UserID          *int64    `json:"userId,omitempty"`
}

var (
	ErrTitleRequired  = errors.New("title is required")
	ErrStartRequired  = errors.New("start is required")
	ErrEndRequired    = errors.New("end is required")
	ErrEndBeforeStart = errors.New("end is before start")
)

// Validate mirrors the backend's constraints so obviously bad events are
// rejected before any request is made.
func (e *Event) Validate() error {
	var errs []error
	if strings.TrimSpace(e.Title) == "" {
		errs = append(errs, ErrTitleRequired)
	}
	if e.Start.IsZero() {
		errs = append(errs, ErrStartRequired)
	}
	if e.End.IsZero() {
		errs = append(errs, ErrEndRequired)
	}
	if !e.Start.IsZero() && !e.End.IsZero() && e.End.Before(e.Start.Time) {
		errs = append(errs, ErrEndBeforeStart)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", common.ErrorValidation, errors.Join(errs...))
}

// ApplyDefaults fills the colours the backend would otherwise default.
func (e *Event) ApplyDefaults() {
	if e.BackgroundColor == "" {
		e.BackgroundColor = DefaultBackgroundColor
	}
	if e.TextColor == "" {
		e.TextColor = DefaultTextColor
	}
}

// IDString renders the id for display; unsaved events show "-".
func (e *Event) IDString() string {
	if e.ID == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *e.ID)
}

func (e Event) String() string {
	when := e.Start.String() + " → " + e.End.String()
	if e.AllDay {
		when = e.Start.Format("2006-01-02") + " (all day)"
	}
	s := fmt.Sprintf("[%s] %s  %s", e.IDString(), e.Title, when)
	if e.Location != "" {
		s += "  @ " + e.Location
	}
	return s
}
