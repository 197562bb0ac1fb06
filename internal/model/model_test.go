package model

import "testing"

func TestLocationOmitsEmptyParts(t *testing.T) {
	tests := []struct {
		venue, room, want string
	}{
		{"Venetian", "Level 2 | Titian 2201", "Venetian | Level 2 | Titian 2201"},
		{"Venetian", "", "Venetian"},
		{"", "Room 1", "Room 1"},
		{"", "", ""},
	}
	for _, tt := range tests {
		s := Session{Venue: tt.venue, Room: tt.room}
		if got := s.Location(" | "); got != tt.want {
			t.Errorf("Location(%q, %q) = %q, want %q", tt.venue, tt.room, got, tt.want)
		}
	}
}

func TestTopicListSortsWithoutMutating(t *testing.T) {
	s := Session{Topics: []string{"Serverless", "Analytics", "Databases"}}
	if got, want := s.TopicList(), "Analytics, Databases, Serverless"; got != want {
		t.Errorf("TopicList = %q, want %q", got, want)
	}
	if s.Topics[0] != "Serverless" {
		t.Errorf("TopicList reordered the session's topics: %v", s.Topics)
	}
	if got := (Session{}).AreaList(); got != "" {
		t.Errorf("empty AreaList = %q", got)
	}
}
