// Package agenda reads session records from the supported agenda sources
// and turns them into canonical model.Session values.
//
// Every adapter (API JSON, catalog JSON, saved HTML page) first produces a
// schema-neutral Record. Parser classifies the Record by its Shape and only
// then extracts fields, so the extraction code never probes raw input.
package agenda

import (
	"fmt"
	"strconv"
	"strings"

	"sessionics/internal/model"
)

// Kind is the classification of a raw record.
type Kind int

const (
	KindUnknown Kind = iota
	KindConference
	KindPersonal
)

func (k Kind) String() string {
	switch k {
	case KindConference:
		return "conference"
	case KindPersonal:
		return "personal"
	default:
		return "unknown"
	}
}

// Shape holds the structural signals used for classification.
type Shape struct {
	// Code is the raw session code, e.g. "DEV 301".
	Code string
	// CalendarItem is set when the source flags the record as a personal
	// calendar block.
	CalendarItem bool
	// TypeTag is an explicit item-type tag, when the source has one.
	TypeTag string
}

// Classify decides what kind of record the shape describes. A personal flag
// wins over a code; a record with neither is unknown.
func Classify(s Shape) Kind {
	tag := strings.ToLower(strings.TrimSpace(s.TypeTag))
	switch {
	case s.CalendarItem, tag == "calendaritem", tag == "calendar_item", tag == "personal":
		return KindPersonal
	case strings.TrimSpace(s.Code) != "":
		return KindConference
	default:
		return KindUnknown
	}
}

// Slot is one scheduled occurrence of a record. Exactly one of the time
// encodings is expected to be filled.
type Slot struct {
	// Location is the combined "venue | room" text.
	Location string
	Capacity int

	// UTCStart / UTCEnd use the "yyyy/MM/dd HH:mm:ss" UTC layout.
	UTCStart string
	UTCEnd   string

	// Date / Clock are venue-local "yyyy-MM-dd" and "HH:mm", with Minutes
	// giving the length.
	Date    string
	Clock   string
	Minutes int

	// Text is free-form date/time text, format detected at parse time.
	Text string
}

func (s Slot) hasTimes() bool {
	return s.UTCStart != "" || s.UTCEnd != "" || s.Date != "" || s.Clock != "" || s.Text != ""
}

// Record is the schema-neutral view of one raw agenda entry.
type Record struct {
	Shape Shape

	// ID identifies the record in warnings when it has no title.
	ID    string
	Title string

	Abstract string
	// TypeLabel is the raw, usually plural, session type.
	TypeLabel string
	Speakers  []model.Speaker
	Topics    []string
	Areas     []string

	// Slots lists the scheduled times; only the first is exported.
	Slots []Slot

	// Location is the free-text location of a personal block.
	Location string
}

// Label names the record for humans: its title, else its id, else a
// generic placeholder.
func (r Record) Label() string {
	if t := strings.TrimSpace(r.Title); t != "" {
		return t
	}
	if id := strings.TrimSpace(r.ID); id != "" {
		return "#" + id
	}
	return "unnamed record"
}

// RecordError is the warning attached to a record that cannot be exported.
type RecordError struct {
	Label  string
	Kind   Kind
	Reason string
	Err    error
}

func (e *RecordError) Error() string {
	msg := fmt.Sprintf("%s record %q: %s", e.Kind, e.Label, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RecordError) Unwrap() error { return e.Err }

// lenientMinutes reads an integer length, returning 0 for anything that is
// not a number. Fractions are truncated.
func lenientMinutes(raw string) int {
	raw = strings.Trim(strings.TrimSpace(raw), `"`)
	if n, err := strconv.Atoi(raw); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return int(f)
	}
	return 0
}
