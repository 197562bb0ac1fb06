package venuetime

import (
	"fmt"
	"strings"
	"time"

	// The venue zone must resolve on hosts without a system zoneinfo database.
	_ "time/tzdata"
)

// Zone is the venue's fixed IANA time zone.
type Zone struct {
	loc *time.Location
}

// LoadZone resolves an IANA zone name such as "America/Los_Angeles".
func LoadZone(name string) (Zone, error) {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return Zone{}, fmt.Errorf("venuetime: load zone %q: %w", name, err)
	}
	return Zone{loc: loc}, nil
}

// NewZone wraps an already resolved location. A nil loc means UTC.
func NewZone(loc *time.Location) Zone {
	if loc == nil {
		loc = time.UTC
	}
	return Zone{loc: loc}
}

func (z Zone) Location() *time.Location {
	if z.loc == nil {
		return time.UTC
	}
	return z.loc
}

// Instant converts venue wall-clock time to a UTC instant, using the offset
// in effect in the zone on that date.
func (z Zone) Instant(w WallClock) (time.Time, error) {
	if err := w.validate(); err != nil {
		return time.Time{}, err
	}
	local := time.Date(w.Year, w.Month, w.Day, w.Hour24(), w.Minute, 0, 0, z.Location())
	return local.UTC(), nil
}

// DayClock projects t into venue time as a short weekday and 24-hour clock,
// e.g. ("Tue", "09:00").
func (z Zone) DayClock(t time.Time) (day, clock string) {
	lt := t.In(z.Location())
	return lt.Format("Mon"), lt.Format("15:04")
}

// Span is a parsed start/end pair in UTC. Length is non-zero when the end
// was derived from a start plus a length.
type Span struct {
	Start  time.Time
	End    time.Time
	Length time.Duration
}

// SlotSpan reads the UTC start/end stamps of an API time slot.
func (z Zone) SlotSpan(start, end string) (Span, error) {
	s, err := ParseUTCStamp(start)
	if err != nil {
		return Span{}, err
	}
	e, err := ParseUTCStamp(end)
	if err != nil {
		return Span{}, err
	}
	return Span{Start: s, End: e}, nil
}

// LengthSpan reads a venue-local date and clock and adds minutes.
func (z Zone) LengthSpan(date, clock string, minutes int) (Span, error) {
	w, err := ParseLocal(date, clock)
	if err != nil {
		return Span{}, err
	}
	start, err := z.Instant(w)
	if err != nil {
		return Span{}, &ParseError{Format: FormatLocal, Input: date + " " + clock, Err: err}
	}
	length := time.Duration(minutes) * time.Minute
	return Span{Start: start, End: start.Add(length), Length: length}, nil
}

// RangeSpan reads a free-text day and clock range.
func (z Zone) RangeSpan(text string, year int) (Span, error) {
	sw, ew, err := ParseRange(text, year)
	if err != nil {
		return Span{}, err
	}
	start, err := z.Instant(sw)
	if err != nil {
		return Span{}, err
	}
	end, err := z.Instant(ew)
	if err != nil {
		return Span{}, err
	}
	return Span{Start: start, End: end}, nil
}

// Parse detects the format of text and dispatches to the matching parser.
// Single-instant formats produce a Span whose End equals Start.
func (z Zone) Parse(text string, year int) (Span, error) {
	text = strings.TrimSpace(text)
	switch Detect(text) {
	case FormatUTCStamp:
		t, err := ParseUTCStamp(text)
		if err != nil {
			return Span{}, err
		}
		return Span{Start: t, End: t}, nil
	case FormatLocal:
		m := localRe.FindStringSubmatch(text)
		return z.LengthSpan(m[1], m[2], 0)
	case FormatRange:
		return z.RangeSpan(text, year)
	default:
		return Span{}, &ParseError{Format: FormatUnknown, Input: text, Err: ErrUnknownFormat}
	}
}
