// Package ics renders calendar events as an iCalendar (RFC 5545) feed.
package ics

import (
	"bytes"
	"fmt"
	"io"
	"time"

	"github.com/ajenda/ajenda/internal/client/models"
	"github.com/ajenda/ajenda/internal/common"
	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
)

const (
	ContentType = "text/calendar; charset=utf-8"

	defaultProductID = "-//Ajenda//Ajenda Calendar//FR"
	defaultDomain    = "ajenda.local"
)

// Options control feed-level properties.
type Options struct {
	// ProductID is the PRODID of the feed.
	ProductID string
	// Domain is the right-hand side of event UIDs.
	Domain string
	// Name is published as X-WR-CALNAME when set.
	Name string
	// Now stamps DTSTAMP; defaults to time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.ProductID == "" {
		o.ProductID = defaultProductID
	}
	if o.Domain == "" {
		o.Domain = defaultDomain
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// UID returns the stable identifier of a stored event, or a random one for
// an event that has no id yet.
func UID(e *models.Event, domain string) string {
	if e.ID == nil {
		return uuid.NewString() + "@" + domain
	}
	return fmt.Sprintf("event-%d@%s", *e.ID, domain)
}

// Write serializes events to w. Events without a start are rejected.
func Write(w io.Writer, events []*models.Event, opts Options) error {
	opts = opts.withDefaults()

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(opts.ProductID)
	if opts.Name != "" {
		cal.SetXWRCalName(opts.Name)
	}

	stamp := opts.Now().UTC()
	for _, e := range events {
		if e.Start.IsZero() {
			return fmt.Errorf("%w: event %q has no start", common.ErrorValidation, e.Title)
		}

		ve := cal.AddEvent(UID(e, opts.Domain))
		ve.SetDtStampTime(stamp)
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		if e.BackgroundColor != "" {
			ve.SetProperty(ical.ComponentPropertyColor, e.BackgroundColor)
		}

		if e.AllDay {
			setAllDay(ve, e)
			continue
		}
		ve.SetStartAt(e.Start.Time)
		if !e.End.IsZero() {
			ve.SetEndAt(e.End.Time)
		}
	}

	return cal.SerializeTo(w)
}

// setAllDay writes DATE values. DTEND is exclusive, so it lands on the day
// after the last day of the event.
func setAllDay(ve *ical.VEvent, e *models.Event) {
	start := dateOnly(e.Start.Time)
	end := start
	if !e.End.IsZero() && dateOnly(e.End.Time).After(start) {
		end = dateOnly(e.End.Time)
	}
	ve.SetAllDayStartAt(start)
	ve.SetAllDayEndAt(end.AddDate(0, 0, 1))
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Encode is Write into a byte slice.
func Encode(events []*models.Event, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, events, opts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
