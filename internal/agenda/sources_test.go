package agenda

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"sessionics/internal/model"
)

func readFixture(t *testing.T, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}

func codes(sessions []model.Session) []string {
	out := make([]string, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Code)
	}
	return out
}

func TestParseMyData(t *testing.T) {
	buf := captureLog(t)
	md, err := ParseMyData(readFixture(t, "mydata.json"))
	if err != nil {
		t.Fatalf("ParseMyData: %v", err)
	}
	p := testParser(t)

	reserved := p.ParseAll(md.Reserved())
	if len(reserved) != 1 {
		t.Fatalf("reserved = %d sessions, want 1 (null entry dropped)", len(reserved))
	}
	dev := reserved[0]
	want := model.Session{
		Code:        "DEV301",
		Title:       "Building event-driven systems",
		SessionType: "Breakout Session",
		Abstract:    "Patterns for decoupled services.",
		Speakers: []model.Speaker{
			{Name: "Sam Rivera", Company: "Example Corp", JobTitle: "Principal Engineer"},
			{Name: "Alex Kim", JobTitle: "Solutions Architect"},
		},
		Topics:          []string{"Serverless", "Architecture"},
		AreasOfInterest: []string{"Event-driven architecture"},
		Venue:           "Venetian",
		Room:            "Level 3 | Murano 3201",
		Capacity:        120,
		Start:           time.Date(2024, 12, 3, 17, 0, 0, 0, time.UTC),
		End:             time.Date(2024, 12, 3, 18, 0, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, dev); diff != "" {
		t.Errorf("reserved session mismatch (-want +got):\n%s", diff)
	}

	interests := p.ParseAll(md.Interests())
	if diff := cmp.Diff([]string{"ABC123", "WKS201", PersonalCode}, codes(interests)); diff != "" {
		t.Errorf("interest codes mismatch (-want +got):\n%s", diff)
	}
	personal := interests[2]
	if personal.Title != PersonalTitle || personal.Venue != "Hotel lobby" || personal.Length != 45*time.Minute {
		t.Errorf("personal block = %+v", personal)
	}
	if !personal.Start.Equal(time.Date(2024, 12, 3, 20, 0, 0, 0, time.UTC)) {
		t.Errorf("personal start = %v", personal.Start)
	}

	out := buf.String()
	for _, want := range []string{`record="No times yet"`, `record="Mystery entry"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %s:\n%s", want, out)
		}
	}
}

func TestParseMyDataRequiresLoggedInUser(t *testing.T) {
	tests := map[string]string{
		"absent":     `{"mySchedule": []}`,
		"empty body": `{}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := ParseMyData([]byte(body)); !errors.Is(err, ErrNotLoggedIn) {
				t.Errorf("err = %v, want ErrNotLoggedIn", err)
			}
		})
	}

	md, err := ParseMyData([]byte(`{"loggedInUser": null}`))
	if err != nil {
		t.Fatalf("null marker is still present: %v", err)
	}
	if len(md.Reserved()) != 0 || len(md.Interests()) != 0 {
		t.Errorf("missing lists should be empty")
	}

	if _, err := ParseMyData([]byte("<html>")); err == nil || errors.Is(err, ErrNotLoggedIn) {
		t.Errorf("invalid JSON should be a decode error, got %v", err)
	}
}

// A mistyped field drops only its own record.
func TestParseMyDataSkipsMistypedRecord(t *testing.T) {
	buf := captureLog(t)
	body := `{
		"loggedInUser": {},
		"sessionInterests": [
			{"code": "ABC 123", "title": "Good one", "times": [{"room": "Venetian | Level 2", "capacity": 120,
				"utcStartTime": "2024/12/03 17:00:00", "utcEndTime": "2024/12/03 18:00:00"}]},
			{"code": "BAD 1", "title": "Bad one", "times": [{"room": "Wynn", "capacity": "120",
				"utcStartTime": "2024/12/03 17:00:00", "utcEndTime": "2024/12/03 18:00:00"}]},
			{"code": 7, "sessionID": 42}
		],
		"mySchedule": {"unexpected": true}
	}`
	md, err := ParseMyData([]byte(body))
	if err != nil {
		t.Fatalf("ParseMyData: %v", err)
	}
	if len(md.Reserved()) != 0 {
		t.Errorf("non-array mySchedule should give no reservations")
	}

	sessions := testParser(t).ParseAll(md.Interests())
	if diff := cmp.Diff([]string{"ABC123"}, codes(sessions)); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
	if sessions[0].Capacity != 120 {
		t.Errorf("capacity = %d", sessions[0].Capacity)
	}

	out := buf.String()
	for _, want := range []string{`record="Bad one"`, "record=#42", "list=mySchedule"} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %s:\n%s", want, out)
		}
	}
}

func TestCatalogResolve(t *testing.T) {
	buf := captureLog(t)
	cat, err := LoadCatalog(readFixture(t, "catalog.json"))
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if cat.Len() != 5 {
		t.Errorf("Len = %d, want 5", cat.Len())
	}
	in, err := ParseInterests(readFixture(t, "interests.json"))
	if err != nil {
		t.Fatalf("ParseInterests: %v", err)
	}

	p := testParser(t)
	interests := p.ParseAll(cat.Resolve("interests", in.Interested))
	reserved := p.ParseAll(cat.Resolve("reserved", in.Reserved))

	if diff := cmp.Diff([]string{"ABC123", "WKS201", "OTH1", PersonalCode}, codes(interests)); diff != "" {
		t.Errorf("interest codes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"WKS201"}, codes(reserved)); diff != "" {
		t.Errorf("reserved codes mismatch (-want +got):\n%s", diff)
	}

	abc := interests[0]
	if abc.SessionType != "Breakout Session" || abc.Venue != "Venetian" || abc.Room != "Level 2 | Titian 2201" {
		t.Errorf("ABC123 = %+v", abc)
	}
	if abc.End.Sub(abc.Start) != 90*time.Minute || !abc.Start.Equal(time.Date(2024, 12, 3, 17, 0, 0, 0, time.UTC)) {
		t.Errorf("ABC123 span = %v - %v", abc.Start, abc.End)
	}
	if wks := interests[1]; wks.End.Sub(wks.Start) != 2*time.Hour || wks.Venue != "Wynn" || wks.Room != "Lafite 4" {
		t.Errorf("WKS201 = %+v", wks)
	}
	if interests[2].SessionType != OtherType {
		t.Errorf("non-string type should fall back, got %q", interests[2].SessionType)
	}
	if interests[3].Venue != "Coffee with the team" || interests[3].Title != PersonalTitle {
		t.Errorf("personal block = %+v", interests[3])
	}

	out := buf.String()
	for _, want := range []string{"scheduleUid=missing-1", "scheduleUid=missing-2", `record="Broken block"`} {
		if !strings.Contains(out, want) {
			t.Errorf("log missing %s:\n%s", want, out)
		}
	}
}

// Dropping an unknown reference must not disturb the others.
func TestCatalogResolveUnknownRefKeepsOrder(t *testing.T) {
	captureLog(t)
	cat, err := LoadCatalog(readFixture(t, "catalog.json"))
	if err != nil {
		t.Fatal(err)
	}
	with := cat.Resolve("interests", []string{"u-2", "nope", "u-1"})
	without := cat.Resolve("interests", []string{"u-2", "u-1"})
	if diff := cmp.Diff(without, with); diff != "" {
		t.Errorf("unresolved ref changed the result (-want +got):\n%s", diff)
	}
}

func TestLoadCatalogShapes(t *testing.T) {
	cat, err := LoadCatalog([]byte(`[{"scheduleUid": "a", "code": "A 1"}]`))
	if err != nil || cat.Len() != 1 {
		t.Fatalf("top-level array: %v, %v", cat, err)
	}
	if _, err := LoadCatalog([]byte(`{"items": []}`)); err == nil {
		t.Error("object without session list should fail")
	}
	if _, err := LoadCatalog([]byte(`not json`)); err == nil {
		t.Error("invalid JSON should fail")
	}
	if _, err := ParseInterests([]byte(`["a"]`)); err == nil {
		t.Error("interests must be an object")
	}
}

func TestParseHTML(t *testing.T) {
	buf := captureLog(t)
	f, err := os.Open(filepath.Join("testdata", "agenda.html"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	page, err := ParseHTML(f)
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	if len(page.Sessions) != 4 || len(page.Reserved) != 2 {
		t.Fatalf("found %d sessions / %d reserved", len(page.Sessions), len(page.Reserved))
	}

	p := testParser(t)
	sessions := p.ParseAll(page.Sessions)
	if diff := cmp.Diff([]string{"ABC123", "WKS201", PersonalCode}, codes(sessions)); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}

	abc := sessions[0]
	if abc.Abstract != "An introduction." || abc.SessionType != "Breakout Session" {
		t.Errorf("ABC123 = %+v", abc)
	}
	if diff := cmp.Diff([]model.Speaker{{Name: "Sam Rivera", Company: "Example Corp", JobTitle: "Engineer"}}, abc.Speakers); diff != "" {
		t.Errorf("speakers mismatch (-want +got):\n%s", diff)
	}
	if !abc.Start.Equal(time.Date(2024, 12, 3, 17, 0, 0, 0, time.UTC)) || !abc.End.Equal(time.Date(2024, 12, 3, 18, 30, 0, 0, time.UTC)) {
		t.Errorf("ABC123 span = %v - %v", abc.Start, abc.End)
	}

	lunch := sessions[2]
	if lunch.Title != "Lunch" || lunch.Venue != "Food hall" || lunch.End.Sub(lunch.Start) != 45*time.Minute {
		t.Errorf("lunch = %+v", lunch)
	}

	if !strings.Contains(buf.String(), `record="Time TBD"`) {
		t.Errorf("unparsable time should be logged:\n%s", buf.String())
	}
}
