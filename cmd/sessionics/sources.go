package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/tidwall/pretty"

	"sessionics/internal/agenda"
	"sessionics/internal/capture"
	"sessionics/internal/config"
	"sessionics/internal/export"
	appLog "sessionics/internal/log"
)

const fetchTimeout = 30 * time.Second

// agendaSource is the raw input of one run, before parsing.
type agendaSource struct {
	reserved  []agenda.Record
	interests []agenda.Record
	columns   export.Columns
}

// loadAgenda picks the input variant from the flags: -html, two positional
// files, or the agenda API.
func loadAgenda(ctx context.Context, conf *config.Config, flags flagConfig) (agendaSource, error) {
	switch {
	case flags.htmlPage != "":
		return fromHTML(ctx, conf, flags)
	case len(flags.args) == 2:
		return fromCatalog(flags.args[0], flags.args[1])
	case len(flags.args) == 0:
		return fromAPI(ctx, conf, flags.saveAgenda)
	default:
		flag.Usage()
		return agendaSource{}, fmt.Errorf("expected 0 or 2 arguments, got %d", len(flags.args))
	}
}

func fromAPI(ctx context.Context, conf *config.Config, save bool) (agendaSource, error) {
	if err := conf.Validate(); err != nil {
		return agendaSource{}, err
	}

	client := agenda.NewClient(conf, &http.Client{Timeout: fetchTimeout})
	body, err := client.FetchMyData(ctx)
	if err != nil {
		return agendaSource{}, err
	}

	if save {
		if err := saveAgenda(conf.OutputDir, body); err != nil {
			return agendaSource{}, err
		}
	}

	md, err := agenda.ParseMyData(body)
	if err != nil {
		return agendaSource{}, err
	}
	return agendaSource{
		reserved:  md.Reserved(),
		interests: md.Interests(),
		columns:   export.ColumnsRich,
	}, nil
}

// saveAgenda stores the raw response, indented, before it is checked.
func saveAgenda(dir string, body []byte) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, "agenda.json")
	appLog.Info("saving raw agenda", "path", path)
	if err := os.WriteFile(path, pretty.Pretty(body), 0o644); err != nil {
		return fmt.Errorf("save agenda: %w", err)
	}
	return nil
}

func fromCatalog(catalogPath, interestsPath string) (agendaSource, error) {
	data, err := os.ReadFile(catalogPath)
	if err != nil {
		return agendaSource{}, err
	}
	cat, err := agenda.LoadCatalog(data)
	if err != nil {
		return agendaSource{}, fmt.Errorf("%s: %w", catalogPath, err)
	}

	data, err = os.ReadFile(interestsPath)
	if err != nil {
		return agendaSource{}, err
	}
	in, err := agenda.ParseInterests(data)
	if err != nil {
		return agendaSource{}, fmt.Errorf("%s: %w", interestsPath, err)
	}

	appLog.Info("loaded catalog", "sessions", cat.Len(), "interests", len(in.Interested), "reserved", len(in.Reserved))
	return agendaSource{
		reserved:  cat.Resolve("reserved", in.Reserved),
		interests: cat.Resolve("interests", in.Interested),
		columns:   export.ColumnsBasic,
	}, nil
}

func fromHTML(ctx context.Context, conf *config.Config, flags flagConfig) (agendaSource, error) {
	var r io.Reader
	if flags.render {
		opts := capture.RenderOptions{Page: flags.htmlPage}
		if flags.debug {
			if err := os.MkdirAll(conf.OutputDir, 0o755); err == nil {
				opts.OutputPath = filepath.Join(conf.OutputDir, "rendered.html")
			}
		}
		html, err := capture.RenderHTML(ctx, opts)
		if err != nil {
			return agendaSource{}, err
		}
		r = bytes.NewReader(html)
	} else {
		f, err := os.Open(flags.htmlPage)
		if err != nil {
			return agendaSource{}, err
		}
		defer f.Close()
		r = f
	}

	page, err := agenda.ParseHTML(r)
	if err != nil {
		return agendaSource{}, fmt.Errorf("%s: %w", flags.htmlPage, err)
	}
	return agendaSource{
		reserved:  page.Reserved,
		interests: page.Sessions,
		columns:   export.ColumnsBasic,
	}, nil
}
