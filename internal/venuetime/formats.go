package venuetime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Format identifies one of the textual date/time layouts seen in agenda data.
type Format int

const (
	FormatUnknown Format = iota
	// FormatUTCStamp is "2024/12/03 17:00:00", already in UTC.
	FormatUTCStamp
	// FormatLocal is "2024-12-03 09:00" in venue time, paired with a length.
	FormatLocal
	// FormatRange is "Tuesday, Dec 3, 9:00 AM - 10:30 AM" in venue time.
	FormatRange
)

func (f Format) String() string {
	switch f {
	case FormatUTCStamp:
		return "utc-stamp"
	case FormatLocal:
		return "local"
	case FormatRange:
		return "range"
	default:
		return "unknown"
	}
}

const (
	utcStampLayout = "2006/01/02 15:04:05"
	localDate      = "2006-01-02"
	localClock     = "15:04"
)

var (
	utcStampRe = regexp.MustCompile(`^\d{4}/\d{1,2}/\d{1,2} \d{1,2}:\d{2}:\d{2}$`)
	localRe    = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2})[ T](\d{1,2}:\d{2})$`)
	rangeRe    = regexp.MustCompile(`(?i)^(?:(?:mon|tue|wed|thu|fri|sat|sun)[a-z]*\.?,?\s+)?` +
		`([a-z]{3,9})\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(?:(\d{4}),?\s+)?` +
		`(\d{1,2}):(\d{2})\s*([ap]\.?m\.?)\s*[-–—]+\s*` +
		`(\d{1,2}):(\d{2})\s*([ap]\.?m\.?)$`)
)

var months = []time.Month{
	time.January, time.February, time.March, time.April, time.May, time.June,
	time.July, time.August, time.September, time.October, time.November, time.December,
}

// Detect picks the parser for text.
func Detect(text string) Format {
	text = strings.TrimSpace(text)
	switch {
	case utcStampRe.MatchString(text):
		return FormatUTCStamp
	case localRe.MatchString(text):
		return FormatLocal
	case rangeRe.MatchString(text):
		return FormatRange
	default:
		return FormatUnknown
	}
}

// ParseUTCStamp reads a "yyyy/MM/dd HH:mm:ss" value that is already UTC.
func ParseUTCStamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.ParseInLocation(utcStampLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, &ParseError{Format: FormatUTCStamp, Input: s, Err: err}
	}
	return t, nil
}

// ParseLocal reads a "yyyy-MM-dd" date and "HH:mm" clock in venue time.
func ParseLocal(date, clock string) (WallClock, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	input := date + " " + clock

	d, err := time.Parse(localDate, date)
	if err != nil {
		return WallClock{}, &ParseError{Format: FormatLocal, Input: input, Err: err}
	}
	c, err := time.Parse(localClock, padClock(clock))
	if err != nil {
		return WallClock{}, &ParseError{Format: FormatLocal, Input: input, Err: err}
	}
	return WallClock{
		Year:   d.Year(),
		Month:  d.Month(),
		Day:    d.Day(),
		Hour:   c.Hour(),
		Minute: c.Minute(),
	}, nil
}

// padClock turns "9:00" into "09:00" so the fixed layout accepts it.
func padClock(s string) string {
	if i := strings.IndexByte(s, ':'); i == 1 {
		return "0" + s
	}
	return s
}

// ParseRange reads "Weekday, Month Day[, Year], H:MM AM - H:MM PM". year is
// used when the text carries none. The weekday is informational and not
// checked against the date.
func ParseRange(text string, year int) (start, end WallClock, err error) {
	text = strings.TrimSpace(text)
	m := rangeRe.FindStringSubmatch(text)
	if m == nil {
		return start, end, &ParseError{Format: FormatRange, Input: text, Err: ErrUnknownFormat}
	}
	fail := func(e error) (WallClock, WallClock, error) {
		return WallClock{}, WallClock{}, &ParseError{Format: FormatRange, Input: text, Err: e}
	}

	month, ok := parseMonth(m[1])
	if !ok {
		return fail(fmt.Errorf("unknown month %q", m[1]))
	}
	day, _ := strconv.Atoi(m[2])
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
	}

	start, err = clockPart(year, month, day, m[4], m[5], m[6])
	if err != nil {
		return fail(err)
	}
	end, err = clockPart(year, month, day, m[7], m[8], m[9])
	if err != nil {
		return fail(err)
	}
	return start, end, nil
}

func clockPart(year int, month time.Month, day int, hour, minute, meridiem string) (WallClock, error) {
	h, _ := strconv.Atoi(hour)
	mi, _ := strconv.Atoi(minute)
	mer, ok := ParseMeridiem(meridiem)
	if !ok {
		return WallClock{}, fmt.Errorf("bad meridiem %q", meridiem)
	}
	w := WallClock{Year: year, Month: month, Day: day, Hour: h, Minute: mi, Meridiem: mer}
	if err := w.validate(); err != nil {
		return WallClock{}, err
	}
	return w, nil
}

func parseMonth(name string) (time.Month, bool) {
	name = strings.ToLower(name)
	for _, m := range months {
		full := strings.ToLower(m.String())
		if len(name) >= 3 && strings.HasPrefix(full, name) {
			return m, true
		}
	}
	return 0, false
}
