package ics

import (
	"errors"
	"fmt"
	"io"
	"time"

	ical "github.com/arran4/golang-ical"

	"sessionics/internal/venuetime"
)

const productID = "-//sessionics//Conference Sessions//EN"

// ErrInvalidEvent marks an event that cannot be serialized. It points at a
// bug in event construction, not at bad input data.
var ErrInvalidEvent = errors.New("ics: invalid event")

// Build assembles a VCALENDAR holding events in order. stamp is used as
// DTSTAMP for every event.
func Build(name string, events []Event, stamp time.Time) (*ical.Calendar, error) {
	cal := ical.NewCalendar()
	cal.SetProductId(productID)
	cal.SetMethod(ical.MethodPublish)
	if name != "" {
		cal.SetXWRCalName(name)
	}

	for i, ev := range events {
		if ev.UID == "" {
			return nil, fmt.Errorf("%w: event %d has no UID", ErrInvalidEvent, i)
		}
		if ev.Start.IsZero() {
			return nil, fmt.Errorf("%w: event %q has no start", ErrInvalidEvent, ev.Summary)
		}

		ve := cal.AddEvent(ev.UID)
		ve.SetDtStampTime(stamp.UTC())
		ve.SetStartAt(ev.Start.UTC())
		if ev.Length > 0 {
			ve.SetProperty(ical.ComponentProperty("DURATION"), venuetime.Split(ev.Length).ICS())
		} else {
			ve.SetEndAt(ev.End.UTC())
		}
		ve.SetSummary(ev.Summary)
		if ev.Location != "" {
			ve.SetLocation(ev.Location)
		}
		if ev.Description != "" {
			ve.SetDescription(ev.Description)
		}
	}
	return cal, nil
}

// Encode writes events as an ICS document to w.
func Encode(w io.Writer, name string, events []Event, stamp time.Time) error {
	cal, err := Build(name, events, stamp)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, cal.Serialize())
	return err
}
