package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sessionics/internal/agenda"
	"sessionics/internal/config"
	"sessionics/internal/export"
)

const agendaTestdata = "../../internal/agenda/testdata"

func TestLoadAgendaCatalog(t *testing.T) {
	flags := flagConfig{args: []string{
		filepath.Join(agendaTestdata, "catalog.json"),
		filepath.Join(agendaTestdata, "interests.json"),
	}}
	src, err := loadAgenda(context.Background(), config.DefaultConfig(), flags)
	if err != nil {
		t.Fatalf("loadAgenda: %v", err)
	}
	if len(src.interests) != 5 || len(src.reserved) != 1 {
		t.Errorf("resolved %d interests / %d reserved", len(src.interests), len(src.reserved))
	}
	if src.columns != export.ColumnsBasic {
		t.Errorf("catalog input should use the basic columns")
	}
}

func TestLoadAgendaHTML(t *testing.T) {
	flags := flagConfig{htmlPage: filepath.Join(agendaTestdata, "agenda.html")}
	src, err := loadAgenda(context.Background(), config.DefaultConfig(), flags)
	if err != nil {
		t.Fatalf("loadAgenda: %v", err)
	}
	if len(src.interests) != 4 || len(src.reserved) != 2 {
		t.Errorf("found %d sessions / %d reserved", len(src.interests), len(src.reserved))
	}
}

func TestLoadAgendaAPIRequiresCredentials(t *testing.T) {
	_, err := loadAgenda(context.Background(), config.DefaultConfig(), flagConfig{})
	if !errors.Is(err, config.ErrMissingCredentials) {
		t.Errorf("err = %v, want ErrMissingCredentials", err)
	}
}

func TestSaveAgendaIndents(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sessions")
	if err := saveAgenda(dir, []byte(`{"loggedInUser":{},"mySchedule":[]}`)); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "agenda.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "\n  \"mySchedule\"") {
		t.Errorf("agenda.json not indented:\n%s", data)
	}
	if _, err := agenda.ParseMyData(data); err != nil {
		t.Errorf("saved agenda no longer parses: %v", err)
	}
}

func TestCredentialHelp(t *testing.T) {
	const preamble = "Unable to download schedule."

	help, ok := credentialHelp(config.ErrMissingCredentials, "sessionics.yaml")
	if !ok || strings.Contains(help, preamble) || !strings.Contains(help, "sessionics.yaml") {
		t.Errorf("missing credentials help = %q, %v", help, ok)
	}

	help, ok = credentialHelp(fmt.Errorf("fetch: %w", agenda.ErrNotLoggedIn), "sessionics.yaml")
	if !ok || !strings.HasPrefix(help, preamble) {
		t.Errorf("not logged in help = %q, %v", help, ok)
	}

	if _, ok := credentialHelp(errors.New("boom"), "sessionics.yaml"); ok {
		t.Error("unrelated errors should not print setup help")
	}
}
