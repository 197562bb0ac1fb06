package agenda

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	appLog "sessionics/internal/log"
	"sessionics/internal/model"
)

// ErrNotLoggedIn means the API answered without the loggedInUser marker,
// which is how it reports stale or wrong credentials.
var ErrNotLoggedIn = errors.New("agenda: response has no loggedInUser; check credentials")

// MyData is the body of the agenda API's myData response.
type MyData struct {
	MySchedule       []*APISession `json:"mySchedule"`
	SessionInterests []*APISession `json:"sessionInterests"`
}

// APISession is one entry of mySchedule / sessionInterests.
type APISession struct {
	SessionID       json.RawMessage  `json:"sessionID"`
	Code            string           `json:"code"`
	Title           string           `json:"title"`
	Abstract        string           `json:"abstract"`
	Type            string           `json:"type"`
	IsCalendarItem  bool             `json:"isCalendarItem"`
	Times           []APITime        `json:"times"`
	Participants    []APIParticipant `json:"participants"`
	AttributeValues Attributes       `json:"attributevalues"`

	// Personal calendar items carry a local date/time and a length instead
	// of times.
	Date     string          `json:"date"`
	Time     string          `json:"time"`
	Length   json.RawMessage `json:"length"`
	Location string          `json:"location"`
}

// APITime is one scheduled slot of an APISession.
type APITime struct {
	Room         string `json:"room"`
	Capacity     int    `json:"capacity"`
	UTCStartTime string `json:"utcStartTime"`
	UTCEndTime   string `json:"utcEndTime"`
}

// APIParticipant is a speaker as listed by the API.
type APIParticipant struct {
	FullName    string `json:"fullName"`
	CompanyName string `json:"companyName"`
	JobTitle    string `json:"jobTitle"`
}

// ParseMyData decodes a myData response. A body without the loggedInUser key
// yields ErrNotLoggedIn. Each list entry is decoded on its own; entries that
// do not fit APISession are logged and dropped.
func ParseMyData(body []byte) (*MyData, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("agenda: response is not valid JSON")
	}
	if !gjson.GetBytes(body, "loggedInUser").Exists() {
		return nil, ErrNotLoggedIn
	}
	return &MyData{
		MySchedule:       apiSessions(body, "mySchedule"),
		SessionInterests: apiSessions(body, "sessionInterests"),
	}, nil
}

func apiSessions(body []byte, list string) []*APISession {
	v := gjson.GetBytes(body, list)
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	if !v.IsArray() {
		appLog.Warn("ignoring agenda list", "list", list, "reason", "not an array")
		return nil
	}

	var out []*APISession
	v.ForEach(func(_, item gjson.Result) bool {
		if item.Type == gjson.Null {
			return true
		}
		var s APISession
		if err := json.Unmarshal([]byte(item.Raw), &s); err != nil {
			appLog.Warn("skipping record", "list", list, "record", apiLabel(item), "reason", fmt.Sprintf("decode: %v", err))
			return true
		}
		out = append(out, &s)
		return true
	})
	return out
}

func apiLabel(v gjson.Result) string {
	return Record{Title: stringField(v, "title"), ID: idField(v, "sessionID")}.Label()
}

// Reserved returns the reserved sessions as Records, null entries removed.
func (md *MyData) Reserved() []Record {
	return apiRecords(md.MySchedule)
}

// Interests returns the sessions of interest as Records, null entries removed.
func (md *MyData) Interests() []Record {
	return apiRecords(md.SessionInterests)
}

func apiRecords(in []*APISession) []Record {
	out := make([]Record, 0, len(in))
	for _, s := range in {
		if s == nil {
			continue
		}
		out = append(out, s.Record())
	}
	return out
}

// Record converts the API entry into the schema-neutral form.
func (s *APISession) Record() Record {
	rec := Record{
		Shape: Shape{
			Code:         s.Code,
			CalendarItem: s.IsCalendarItem,
			TypeTag:      s.Type,
		},
		Title:     s.Title,
		Abstract:  s.Abstract,
		TypeLabel: s.AttributeValues.First(AttrSessionType),
		Topics:    s.AttributeValues.Values(AttrTopic),
		Areas:     s.AttributeValues.Values(AttrAreaOfInterest),
		Location:  s.Location,
	}
	if id := strings.Trim(string(s.SessionID), `"`); id != "null" {
		rec.ID = id
	}
	for _, p := range s.Participants {
		rec.Speakers = append(rec.Speakers, model.Speaker{
			Name:     p.FullName,
			Company:  p.CompanyName,
			JobTitle: p.JobTitle,
		})
	}
	for _, t := range s.Times {
		rec.Slots = append(rec.Slots, Slot{
			Location: t.Room,
			Capacity: t.Capacity,
			UTCStart: t.UTCStartTime,
			UTCEnd:   t.UTCEndTime,
		})
	}
	if s.Date != "" || s.Time != "" {
		rec.Slots = append(rec.Slots, Slot{
			Location: s.Location,
			Date:     s.Date,
			Clock:    s.Time,
			Minutes:  lenientMinutes(string(s.Length)),
		})
	}
	return rec
}
