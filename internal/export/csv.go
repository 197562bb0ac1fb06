package export

import (
	"io"
	"strconv"
	"strings"

	"sessionics/internal/model"
	"sessionics/internal/venuetime"
)

type row struct {
	s                  model.Session
	startDay, startHHM string
	endDay, endHHM     string
}

type column struct {
	heading string
	quoted  bool
	rich    bool
	value   func(r row) string
}

// Text columns are wrapped in double quotes as-is; embedded quotes and
// commas are not escaped.
var columns = []column{
	{heading: "Start Day", value: func(r row) string { return r.startDay }},
	{heading: "Start Time", value: func(r row) string { return r.startHHM }},
	{heading: "End Day", value: func(r row) string { return r.endDay }},
	{heading: "End Time", value: func(r row) string { return r.endHHM }},
	{heading: "Venue", quoted: true, value: func(r row) string { return r.s.Venue }},
	{heading: "Room", quoted: true, value: func(r row) string { return r.s.Room }},
	{heading: "Capacity", rich: true, value: func(r row) string { return strconv.Itoa(r.s.Capacity) }},
	{heading: "Session Type", value: func(r row) string { return r.s.SessionType }},
	{heading: "Session ID", quoted: true, value: func(r row) string { return r.s.Code }},
	{heading: "Title", quoted: true, value: func(r row) string { return r.s.Title }},
	{heading: "Topic", quoted: true, rich: true, value: func(r row) string { return r.s.TopicList() }},
	{heading: "Area of Interest", quoted: true, rich: true, value: func(r row) string { return r.s.AreaList() }},
}

func activeColumns(cols Columns) []column {
	out := make([]column, 0, len(columns))
	for _, c := range columns {
		if c.rich && cols != ColumnsRich {
			continue
		}
		out = append(out, c)
	}
	return out
}

func joinFields(cols []column, field func(c column) string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		v := field(c)
		if c.quoted {
			v = `"` + v + `"`
		}
		parts[i] = v
	}
	return strings.Join(parts, ",")
}

// Header renders the heading line for the column set.
func Header(cols Columns) string {
	return joinFields(activeColumns(cols), func(c column) string { return c.heading })
}

// Row renders one session with day and clock in the venue zone.
func Row(s model.Session, zone venuetime.Zone, cols Columns) string {
	r := row{s: s}
	r.startDay, r.startHHM = zone.DayClock(s.Start)
	r.endDay, r.endHHM = zone.DayClock(s.End)
	return joinFields(activeColumns(cols), func(c column) string { return c.value(r) })
}

// WriteCSV writes the header and one line per session, newline separated.
func WriteCSV(w io.Writer, sessions []model.Session, zone venuetime.Zone, cols Columns) error {
	lines := make([]string, 0, len(sessions)+1)
	lines = append(lines, Header(cols))
	for _, s := range sessions {
		lines = append(lines, Row(s, zone, cols))
	}
	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}
