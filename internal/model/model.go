package model

import (
	"slices"
	"strings"
	"time"
)

// Speaker is one presenter of a session, in listing order.
type Speaker struct {
	Name     string
	Company  string
	JobTitle string
}

// Session is the canonical form of one agenda entry, whatever source it was
// read from. It is built once by the agenda parsers and never mutated.
type Session struct {
	Code        string
	Title       string
	SessionType string
	Abstract    string
	Speakers    []Speaker

	Topics          []string
	AreasOfInterest []string

	Venue    string
	Room     string
	Capacity int

	// Start / End are UTC instants. End >= Start is not enforced.
	Start time.Time
	End   time.Time

	// Length is set when the source supplied a start and a length instead
	// of an end time.
	Length time.Duration
}

// Location joins the non-empty venue and room with sep.
func (s Session) Location(sep string) string {
	parts := make([]string, 0, 2)
	if s.Venue != "" {
		parts = append(parts, s.Venue)
	}
	if s.Room != "" {
		parts = append(parts, s.Room)
	}
	return strings.Join(parts, sep)
}

// TopicList renders Topics sorted and comma-joined.
func (s Session) TopicList() string {
	return sortedList(s.Topics)
}

// AreaList renders AreasOfInterest sorted and comma-joined.
func (s Session) AreaList() string {
	return sortedList(s.AreasOfInterest)
}

func sortedList(in []string) string {
	out := slices.Clone(in)
	slices.Sort(out)
	return strings.Join(out, ", ")
}
