package ics

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"sessionics/internal/model"
)

var stamp = time.Date(2024, 11, 1, 12, 0, 0, 0, time.UTC)

func breakout() model.Session {
	start := time.Date(2024, 12, 3, 17, 0, 0, 0, time.UTC)
	return model.Session{
		Code:        "ABC123",
		Title:       "Intro to queues",
		SessionType: "Breakout Session",
		Abstract:    "  Learn the basics.  ",
		Speakers: []model.Speaker{
			{Name: "Sam Rivera", Company: "Example Corp", JobTitle: "Engineer"},
			{Name: "Alex Kim"},
		},
		Topics:          []string{"Serverless", "Architecture"},
		AreasOfInterest: []string{"Messaging"},
		Venue:           "Venetian",
		Room:            "Level 2 | Titian 2201",
		Capacity:        120,
		Start:           start,
		End:             start.Add(90 * time.Minute),
	}
}

func TestFromSession(t *testing.T) {
	ev := FromSession(breakout())

	if ev.Summary != "ABC123 - Intro to queues" {
		t.Errorf("Summary = %q", ev.Summary)
	}
	if ev.Location != "Venetian | Level 2 | Titian 2201" {
		t.Errorf("Location = %q", ev.Location)
	}
	want := strings.Join([]string{
		"Breakout Session\nCapacity: 120",
		"Topics: Architecture, Serverless",
		"Areas of Interest: Messaging",
		"Learn the basics.",
		"Sam Rivera - Engineer - Example Corp\nAlex Kim",
	}, "\n\n")
	if diff := cmp.Diff(want, ev.Description); diff != "" {
		t.Errorf("Description mismatch (-want +got):\n%s", diff)
	}
}

func TestFromSessionOmitsEmptySections(t *testing.T) {
	s := model.Session{
		Code:        "PERSONAL",
		Title:       "Personal Time",
		SessionType: "Personal Time",
		Venue:       "Hotel lobby",
		Start:       time.Date(2024, 12, 3, 20, 0, 0, 0, time.UTC),
		Length:      45 * time.Minute,
	}
	ev := FromSession(s)
	if ev.Description != "Personal Time" {
		t.Errorf("Description = %q", ev.Description)
	}
	if ev.Location != "Hotel lobby" {
		t.Errorf("Location = %q", ev.Location)
	}
}

func TestUIDIsStable(t *testing.T) {
	a, b := FromSession(breakout()), FromSession(breakout())
	if a.UID != b.UID || !strings.HasSuffix(a.UID, "@sessionics") {
		t.Errorf("UIDs = %q, %q", a.UID, b.UID)
	}

	moved := breakout()
	moved.Start = moved.Start.Add(time.Hour)
	if FromSession(moved).UID == a.UID {
		t.Error("a different start should give a different UID")
	}
}

func TestEncodeDecode(t *testing.T) {
	personal := model.Session{
		Code:        "PERSONAL",
		Title:       "Personal Time",
		SessionType: "Personal Time",
		Start:       time.Date(2024, 12, 3, 20, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 12, 3, 20, 45, 0, 0, time.UTC),
		Length:      45 * time.Minute,
	}
	withLength := breakout()
	withLength.Length = 90 * time.Minute

	events := FromSessions([]model.Session{breakout(), personal, withLength})

	var buf bytes.Buffer
	if err := Encode(&buf, "sessions", events, stamp); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"BEGIN:VCALENDAR", "DTSTART:20241203T170000Z", "DTEND:20241203T183000Z", "DURATION:PT0H45M", "DURATION:PT1H30M"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "BEGIN:VEVENT"); n != 3 {
		t.Errorf("VEVENT count = %d, want 3", n)
	}

	got, err := Decode(strings.NewReader(out))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("decoded %d events, want 3", len(got))
	}
	for i := range got {
		if got[i].UID != events[i].UID || !got[i].Start.Equal(events[i].Start) {
			t.Errorf("event %d = %+v, want UID %s start %v", i, got[i], events[i].UID, events[i].Start)
		}
	}
	if !got[0].End.Equal(events[0].End) || got[0].Length != 0 {
		t.Errorf("DTEND event decoded as %v / %v", got[0].End, got[0].Length)
	}
	if got[1].Length != 45*time.Minute || !got[1].End.Equal(personal.End) {
		t.Errorf("DURATION event decoded as %v / %v", got[1].End, got[1].Length)
	}
}

func TestEncodeRejectsInvalidEvents(t *testing.T) {
	tests := map[string]Event{
		"no uid":   {Summary: "x", Start: stamp},
		"no start": {UID: "a@sessionics", Summary: "x"},
	}
	for name, ev := range tests {
		t.Run(name, func(t *testing.T) {
			err := Encode(&bytes.Buffer{}, "", []Event{ev}, stamp)
			if !errors.Is(err, ErrInvalidEvent) {
				t.Errorf("err = %v, want ErrInvalidEvent", err)
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	for in, want := range map[string]time.Duration{"PT1H30M": 90 * time.Minute, "PT0H45M": 45 * time.Minute, "pt2h0m": 2 * time.Hour} {
		got, err := parseDuration(in)
		if err != nil || got != want {
			t.Errorf("parseDuration(%q) = %v, %v", in, got, err)
		}
	}
	for _, bad := range []string{"P1D", "PT", "1H"} {
		if _, err := parseDuration(bad); err == nil {
			t.Errorf("parseDuration(%q) should fail", bad)
		}
	}
}
