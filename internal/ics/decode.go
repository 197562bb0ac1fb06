package ics

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	appLog "sessionics/internal/log"
)

// Decode reads back a calendar written by Encode. Events that cannot be
// interpreted are logged and skipped.
func Decode(r io.Reader) ([]Event, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("parse calendar: %w", err)
	}

	events := make([]Event, 0)
	for _, ve := range cal.Events() {
		ev, err := decodeEvent(ve)
		if err != nil {
			appLog.Warn("skipping vevent", "reason", err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

func decodeEvent(ve *ical.VEvent) (Event, error) {
	var out Event

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uid.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		out.Description = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		out.Location = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return out, fmt.Errorf("event %s: %w", out.UID, err)
	}
	out.Start = start.UTC()

	if p := ve.GetProperty(ical.ComponentProperty("DURATION")); p != nil {
		d, err := parseDuration(p.Value)
		if err != nil {
			return out, fmt.Errorf("event %s: %w", out.UID, err)
		}
		out.Length = d
		out.End = out.Start.Add(d)
		return out, nil
	}

	end, err := ve.GetEndAt()
	if err != nil {
		return out, fmt.Errorf("event %s: %w", out.UID, err)
	}
	out.End = end.UTC()
	return out, nil
}

// parseDuration accepts the time-only durations Encode emits, e.g. PT1H30M.
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	rest, ok := strings.CutPrefix(strings.ToUpper(v), "PT")
	if !ok || rest == "" {
		return 0, fmt.Errorf("unsupported duration %q", v)
	}
	d, err := time.ParseDuration(strings.ToLower(rest))
	if err != nil {
		return 0, fmt.Errorf("unsupported duration %q", v)
	}
	return d, nil
}
