// Package venuetime turns the agenda's textual dates and times into UTC
// instants. Every wall-clock value is read in the venue's IANA zone, so the
// offset used is the one in effect on that date.
package venuetime

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Meridiem is the AM/PM marker of a 12-hour clock value.
type Meridiem int

const (
	// MeridiemNone marks a 24-hour clock value.
	MeridiemNone Meridiem = iota
	AM
	PM
)

func (m Meridiem) String() string {
	switch m {
	case AM:
		return "AM"
	case PM:
		return "PM"
	default:
		return ""
	}
}

// ParseMeridiem accepts "am", "PM", "p.m." and similar.
func ParseMeridiem(s string) (Meridiem, bool) {
	s = strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), ".", ""))
	switch s {
	case "am", "a":
		return AM, true
	case "pm", "p":
		return PM, true
	}
	return MeridiemNone, false
}

// To24 converts a 12-hour clock hour to 24-hour form: 12 AM is 0, 12 PM is
// 12, 7 PM is 19. Hours without a meridiem are returned unchanged.
func To24(hour int, m Meridiem) int {
	switch m {
	case AM:
		return hour % 12
	case PM:
		return hour%12 + 12
	default:
		return hour
	}
}

// WallClock is a venue-local date and time as read from the source text.
type WallClock struct {
	Year     int
	Month    time.Month
	Day      int
	Hour     int
	Minute   int
	Meridiem Meridiem
}

// Hour24 returns Hour on a 24-hour clock.
func (w WallClock) Hour24() int {
	return To24(w.Hour, w.Meridiem)
}

func (w WallClock) validate() error {
	if w.Meridiem != MeridiemNone && (w.Hour < 1 || w.Hour > 12) {
		return fmt.Errorf("hour %d out of range for %s", w.Hour, w.Meridiem)
	}
	if h := w.Hour24(); h < 0 || h > 23 {
		return fmt.Errorf("hour %d out of range", h)
	}
	if w.Minute < 0 || w.Minute > 59 {
		return fmt.Errorf("minute %d out of range", w.Minute)
	}
	if w.Year < 1 || w.Month < time.January || w.Month > time.December {
		return fmt.Errorf("invalid date %04d-%02d", w.Year, w.Month)
	}
	// time.Date normalizes Feb 30 into March; reject instead.
	d := time.Date(w.Year, w.Month, w.Day, 0, 0, 0, 0, time.UTC)
	if w.Day < 1 || d.Month() != w.Month {
		return fmt.Errorf("invalid day %d for %s %d", w.Day, w.Month, w.Year)
	}
	return nil
}

// Length is a duration decomposed into whole hours and remaining minutes.
type Length struct {
	Hours   int
	Minutes int
}

// Split decomposes d. Negative durations yield a zero Length.
func Split(d time.Duration) Length {
	total := int(d / time.Minute)
	if total < 0 {
		total = 0
	}
	return Length{Hours: total / 60, Minutes: total % 60}
}

// ICS renders the length as an RFC 5545 duration value, e.g. PT1H30M.
func (l Length) ICS() string {
	return fmt.Sprintf("PT%dH%dM", l.Hours, l.Minutes)
}

func (l Length) Duration() time.Duration {
	return time.Duration(l.Hours)*time.Hour + time.Duration(l.Minutes)*time.Minute
}

// ErrUnknownFormat is returned when no parser recognizes the text.
var ErrUnknownFormat = errors.New("venuetime: unrecognized date/time format")

// ParseError reports a value that matched a format but could not be read.
type ParseError struct {
	Format Format
	Input  string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("venuetime: parse %s %q: %v", e.Format, e.Input, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
