package ics

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"sessionics/internal/model"
)

// uidNamespace scopes the name-based UUIDs of exported events.
var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/sessionics"))

// Event is the calendar-ready description of one session.
type Event struct {
	UID         string
	Summary     string
	Location    string
	Description string

	// Start and End are UTC instants.
	Start time.Time
	End   time.Time

	// Length, when non-zero, is written as DURATION instead of DTEND.
	Length time.Duration
}

// FromSession renders s as an Event. The UID depends only on the session's
// code, title and start, so re-running an export produces the same UIDs.
func FromSession(s model.Session) Event {
	return Event{
		UID:         sessionUID(s),
		Summary:     s.Code + " - " + s.Title,
		Location:    s.Location(" | "),
		Description: description(s),
		Start:       s.Start.UTC(),
		End:         s.End.UTC(),
		Length:      s.Length,
	}
}

// FromSessions renders every session, preserving order.
func FromSessions(sessions []model.Session) []Event {
	out := make([]Event, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, FromSession(s))
	}
	return out
}

func sessionUID(s model.Session) string {
	key := s.Code + "|" + s.Title + "|" + s.Start.UTC().Format(time.RFC3339)
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@sessionics"
}

// description lays out the body as blank-line separated sections: type and
// capacity, topics, areas of interest, abstract, one line per speaker.
func description(s model.Session) string {
	header := s.SessionType
	if s.Capacity > 0 {
		header += "\nCapacity: " + strconv.Itoa(s.Capacity)
	}

	sections := []string{
		header,
		withPrefix("Topics: ", s.TopicList()),
		withPrefix("Areas of Interest: ", s.AreaList()),
		strings.TrimSpace(s.Abstract),
		speakerLines(s.Speakers),
	}

	out := sections[:0]
	for _, sec := range sections {
		if sec != "" {
			out = append(out, sec)
		}
	}
	return strings.Join(out, "\n\n")
}

func speakerLines(speakers []model.Speaker) string {
	lines := make([]string, 0, len(speakers))
	for _, sp := range speakers {
		lines = append(lines, sp.Name+withPrefix(" - ", sp.JobTitle)+withPrefix(" - ", sp.Company))
	}
	return strings.Join(lines, "\n")
}

func withPrefix(prefix, s string) string {
	if s == "" {
		return ""
	}
	return prefix + s
}
