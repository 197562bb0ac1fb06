package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"sessionics/internal/agenda"
	"sessionics/internal/config"
	"sessionics/internal/export"
	appLog "sessionics/internal/log"
	"sessionics/internal/venuetime"
	"sessionics/internal/web"
)

const version = "2024.0.0"

type flagConfig struct {
	configPath   string
	outputDir    string
	reservedOnly bool
	saveAgenda   bool
	htmlPage     string
	render       bool
	year         int
	serve        string
	debug        bool
	args         []string
}

func main() {
	flags := parseFlags()
	if flags.debug {
		appLog.SetLevel(appLog.LevelDebug)
	}
	appLog.Debug("sessionics starting", "version", version)

	conf, err := config.Load(flags.configPath)
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flags.configPath)
		os.Exit(1)
	}

	// CLI flags override the config file.
	if flags.outputDir != "" {
		conf.OutputDir = flags.outputDir
	}
	if flags.year > 0 {
		conf.EventYear = flags.year
	}

	loc, err := conf.Location()
	if err != nil {
		appLog.Error("invalid timezone", err)
		os.Exit(1)
	}
	zone := venuetime.NewZone(loc)

	appLog.Debug("effective config",
		"endpoint", conf.Endpoint,
		"timezone", conf.Timezone,
		"event_year", conf.Year(loc),
		"output_dir", conf.OutputDir,
		"reserved_only", flags.reservedOnly,
		"html", flags.htmlPage,
		"render", flags.render,
		"serve", flags.serve,
	)

	// Root context with cancellation on SIGINT/SIGTERM.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		appLog.Info("signal received, shutting down", "signal", sig.String())
		cancel()
	}()

	src, err := loadAgenda(ctx, conf, flags)
	if err != nil {
		if help, ok := credentialHelp(err, flags.configPath); ok {
			fmt.Fprint(os.Stderr, help)
			os.Exit(1)
		}
		appLog.Error("failed to load agenda", err)
		os.Exit(1)
	}

	parser := &agenda.Parser{Zone: zone, Year: conf.Year(loc)}
	reserved := parser.ParseAll(src.reserved)
	interests := parser.ParseAll(src.interests)
	fmt.Fprintf(os.Stderr, "found %d reservations and %d interests\n", len(reserved), len(interests))

	jobs := export.Plan(interests, reserved, export.Options{
		ReservedOnly: flags.reservedOnly,
		Columns:      src.columns,
	})

	w := export.NewWriter(conf.OutputDir, zone)
	if _, err := w.WriteAll(jobs); err != nil {
		appLog.Error("failed to write output", err, "output_dir", conf.OutputDir)
		os.Exit(1)
	}

	if flags.serve == "" {
		return
	}

	srv := web.NewServer(conf, w)
	srv.Publish(jobs)
	if err := web.StartServer(ctx, flags.serve, srv); err != nil {
		appLog.Error("http server failed", err, "listen", flags.serve)
		os.Exit(1)
	}
	appLog.Info("sessionics exiting")
}

// credentialHelp returns the setup instructions for credential failures.
// Only a rejected login gets the "unable to download" preamble; an empty
// config just needs filling in.
func credentialHelp(err error, configPath string) (string, bool) {
	switch {
	case errors.Is(err, agenda.ErrNotLoggedIn):
		return "Unable to download schedule. Please check credentials and try again.\n\n" + config.SetupHelp(configPath), true
	case errors.Is(err, config.ErrMissingCredentials):
		return config.SetupHelp(configPath), true
	default:
		return "", false
	}
}

func parseFlags() flagConfig {
	var cfg flagConfig

	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage: sessionics [flags] [catalog.json interests.json]\n\n")
		fmt.Fprintf(out, "Without arguments the agenda is downloaded using the credentials in the config file.\n")
		fmt.Fprintf(out, "With -html a saved agenda page is read instead; with two arguments a session\n")
		fmt.Fprintf(out, "catalog is cross-referenced against an interests file.\n\n")
		flag.PrintDefaults()
	}

	flag.StringVar(&cfg.configPath, "config", config.DefaultPath, "Path to config file")
	flag.StringVar(&cfg.outputDir, "output-dir", "", "The output directory (overrides config if set)")
	flag.StringVar(&cfg.outputDir, "o", "", "Shorthand for -output-dir")
	flag.BoolVar(&cfg.reservedOnly, "reserved-only", false, "Only output reserved sessions")
	flag.BoolVar(&cfg.reservedOnly, "r", false, "Shorthand for -reserved-only")
	flag.BoolVar(&cfg.saveAgenda, "save-agenda", false, "Save the raw agenda JSON to <dir>/agenda.json")
	flag.BoolVar(&cfg.saveAgenda, "a", false, "Shorthand for -save-agenda")
	flag.StringVar(&cfg.htmlPage, "html", "", "Read sessions from a saved agenda HTML page")
	flag.BoolVar(&cfg.render, "render", false, "Render the -html page in headless Chromium before parsing")
	flag.IntVar(&cfg.year, "year", 0, "Year assumed for dates without one (overrides config if set)")
	flag.StringVar(&cfg.serve, "serve", "", "After exporting, serve the calendars on this address, e.g. 127.0.0.1:8080")
	flag.BoolVar(&cfg.debug, "debug", false, "Enable debug logging")

	flag.Parse()
	cfg.args = flag.Args()

	return cfg
}
