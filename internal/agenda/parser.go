package agenda

import (
	"errors"
	"strings"
	"unicode"

	"sessionics/internal/inflect"
	appLog "sessionics/internal/log"
	"sessionics/internal/model"
	"sessionics/internal/venuetime"
)

// Placeholders for fields a record may leave blank.
const (
	PersonalTitle   = "Personal Time"
	PersonalCode    = "PERSONAL"
	PersonalType    = "Personal Time"
	UntitledSession = "Untitled Session"
	UnknownCode     = "UNKNOWN"
	OtherType       = "Other"
)

const venueRoomSep = " | "

var (
	errNoSlot  = errors.New("no time slot")
	errNoTimes = errors.New("time slot has no start or end time")
)

// Parser turns Records into Sessions. Zone is the venue zone used for all
// venue-local times; Year is assumed for free-text dates without a year.
type Parser struct {
	Zone venuetime.Zone
	Year int
}

// Parse classifies rec and extracts a Session. Records that cannot be
// exported come back as a *RecordError.
func (p *Parser) Parse(rec Record) (model.Session, error) {
	kind := Classify(rec.Shape)
	switch kind {
	case KindConference:
		return p.conference(rec)
	case KindPersonal:
		return p.personal(rec)
	default:
		return model.Session{}, &RecordError{
			Label:  rec.Label(),
			Kind:   kind,
			Reason: "record is neither a session nor a personal calendar item",
		}
	}
}

// ParseAll parses every record, logging a warning for each one dropped.
// The order of the surviving sessions follows recs.
func (p *Parser) ParseAll(recs []Record) []model.Session {
	out := make([]model.Session, 0, len(recs))
	for _, rec := range recs {
		s, err := p.Parse(rec)
		if err != nil {
			appLog.Warn("skipping record", "record", rec.Label(), "reason", err.Error())
			continue
		}
		out = append(out, s)
	}
	return out
}

func (p *Parser) conference(rec Record) (model.Session, error) {
	fail := func(reason string, err error) (model.Session, error) {
		return model.Session{}, &RecordError{Label: rec.Label(), Kind: KindConference, Reason: reason, Err: err}
	}

	if len(rec.Slots) == 0 {
		return fail("not exportable", errNoSlot)
	}
	// Repeated sessions list several slots; only the first becomes an event.
	slot := rec.Slots[0]
	if !slot.hasTimes() {
		return fail("not exportable", errNoTimes)
	}
	span, err := p.span(slot)
	if err != nil {
		return fail("invalid date/time", err)
	}

	venue, room := SplitLocation(slot.Location)

	s := model.Session{
		Code:            SanitizeCode(rec.Shape.Code),
		Title:           strings.TrimSpace(rec.Title),
		SessionType:     inflect.SessionType(rec.TypeLabel),
		Abstract:        rec.Abstract,
		Speakers:        rec.Speakers,
		Topics:          nonNil(rec.Topics),
		AreasOfInterest: nonNil(rec.Areas),
		Venue:           venue,
		Room:            room,
		Capacity:        max(slot.Capacity, 0),
		Start:           span.Start,
		End:             span.End,
		Length:          span.Length,
	}
	if s.Code == "" {
		s.Code = UnknownCode
	}
	if s.Title == "" {
		s.Title = UntitledSession
	}
	if s.SessionType == "" {
		s.SessionType = OtherType
	}
	return s, nil
}

func (p *Parser) personal(rec Record) (model.Session, error) {
	fail := func(reason string, err error) (model.Session, error) {
		return model.Session{}, &RecordError{Label: rec.Label(), Kind: KindPersonal, Reason: reason, Err: err}
	}

	if len(rec.Slots) == 0 || !rec.Slots[0].hasTimes() {
		return fail("invalid date/time", errNoTimes)
	}
	span, err := p.span(rec.Slots[0])
	if err != nil {
		return fail("invalid date/time", err)
	}

	title := strings.TrimSpace(rec.Title)
	if title == "" {
		title = PersonalTitle
	}
	location := strings.TrimSpace(rec.Location)
	if location == "" {
		location = strings.TrimSpace(rec.Slots[0].Location)
	}

	return model.Session{
		Code:            PersonalCode,
		Title:           title,
		SessionType:     PersonalType,
		Abstract:        rec.Abstract,
		Topics:          []string{},
		AreasOfInterest: []string{},
		Venue:           location,
		Start:           span.Start,
		End:             span.End,
		Length:          span.Length,
	}, nil
}

// span picks the time encoding the slot carries.
func (p *Parser) span(s Slot) (venuetime.Span, error) {
	switch {
	case s.UTCStart != "" || s.UTCEnd != "":
		return p.Zone.SlotSpan(s.UTCStart, s.UTCEnd)
	case s.Date != "" || s.Clock != "":
		return p.Zone.LengthSpan(s.Date, s.Clock, s.Minutes)
	default:
		return p.Zone.Parse(s.Text, p.Year)
	}
}

// SanitizeCode strips all whitespace from a session code: "ABC 123" becomes
// "ABC123".
func SanitizeCode(code string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, code)
}

// SplitLocation splits "venue | room" on the first delimiter. Everything
// after it stays in room, delimiters included. " - " is accepted when the
// text has no " | ".
func SplitLocation(loc string) (venue, room string) {
	loc = strings.TrimSpace(loc)
	for _, sep := range []string{venueRoomSep, " - "} {
		if v, r, ok := strings.Cut(loc, sep); ok {
			return strings.TrimSpace(v), strings.TrimSpace(r)
		}
	}
	return loc, ""
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
