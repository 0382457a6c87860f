package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/subosito/gotenv"

	"github.com/elonfeng/newsrelay/internal/config"
	"github.com/elonfeng/newsrelay/internal/logging"
	"github.com/elonfeng/newsrelay/internal/scheduler"
	"github.com/elonfeng/newsrelay/internal/state"
	"github.com/elonfeng/newsrelay/internal/store"
	"github.com/elonfeng/newsrelay/pkg/alert"
	"github.com/elonfeng/newsrelay/pkg/server"
	"github.com/elonfeng/newsrelay/pkg/source"
)

// loadConfig reads .env (if present) into the environment, then the config
// file. validate is false for commands that never deliver anything.
func loadConfig(validate bool) (*config.Config, error) {
	// Existing environment variables win over .env entries.
	_ = gotenv.Load()

	path := cfgFile
	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}
	if validate {
		return config.Load(path)
	}
	return config.Read(path)
}

func buildLogger(cfg *config.Config) zerolog.Logger {
	return logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
}

func buildTargets(cfg *config.Config) []scheduler.Target {
	var targets []scheduler.Target

	if cfg.Feed.Enabled() {
		targets = append(targets, scheduler.Target{
			Source:     source.NewFeed(cfg.Feed.URL),
			WebhookURL: cfg.Feed.WebhookURL,
		})
	}
	if cfg.HackerNews.Enabled() {
		targets = append(targets, scheduler.Target{
			Source: source.NewHackerNews(source.HackerNewsOptions{
				BaseURL:   cfg.HackerNews.BaseURL,
				Limit:     cfg.HackerNews.Limit,
				MinScore:  cfg.HackerNews.MinScoreComments,
				RateLimit: cfg.HackerNews.RateLimit,
			}),
			WebhookURL: cfg.HackerNews.WebhookURL,
		})
	}

	return targets
}

// openJournal returns a nil Store when the journal is disabled or cannot be
// opened; delivery works without it.
func openJournal(cfg *config.Config, log zerolog.Logger) store.Store {
	if !cfg.Journal.Enabled {
		return nil
	}
	db, err := store.New(cfg.JournalPath())
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.JournalPath()).Msg("delivery journal unavailable")
		return nil
	}
	return db
}

func newScheduler(cfg *config.Config, log zerolog.Logger, journal store.Store) (*scheduler.Scheduler, []scheduler.Target) {
	states := state.NewStore(cfg.DataDir, log)
	targets := buildTargets(cfg)
	sched := scheduler.New(
		states,
		states.Load(),
		targets,
		alert.NewMattermost(cfg.Username),
		journal,
		cfg.PollInterval(),
		log,
	)
	return sched, targets
}

func runDaemon(port int) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := buildLogger(cfg)

	journal := openJournal(cfg, log)
	if journal != nil {
		defer journal.Close()
	}

	sched, targets := newScheduler(cfg, log, journal)

	var names []string
	sources := make([]source.Source, len(targets))
	for i, t := range targets {
		names = append(names, string(t.Source.Name()))
		sources[i] = t.Source
	}
	log.Info().
		Dur("interval", cfg.PollInterval()).
		Strs("sources", names).
		Str("data_dir", cfg.DataDir).
		Msg("newsrelay starting")

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if port == 0 {
		port = cfg.Server.Port
	}
	if port > 0 {
		srv := server.New(journal, sources, port, log)
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				log.Error().Err(err).Msg("status server stopped")
			}
		}()
	}

	if err := sched.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	fmt.Fprintln(os.Stderr, "\nshutting down...")
	return nil
}

func runPoll(jsonOutput bool) error {
	cfg, err := loadConfig(true)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := buildLogger(cfg)

	journal := openJournal(cfg, log)
	if journal != nil {
		defer journal.Close()
	}

	sched, _ := newScheduler(cfg, log, journal)
	report, err := sched.PollOnce(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SOURCE\tFETCHED\tNEW\tBOOTSTRAPPED\tDELIVERED\tSKIPPED\tSUPPRESSED\tFAILED")
	for _, s := range report.Sources {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\t%d\n",
			s.Source, s.Fetched, s.New, s.Bootstrapped, s.Delivered, s.Skipped, s.Suppressed, s.Failed)
	}
	return w.Flush()
}

func runState() error {
	cfg, err := loadConfig(false)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	states := state.NewStore(cfg.DataDir, buildLogger(cfg))
	st := states.Load()
	if len(st) == 0 {
		fmt.Printf("no state recorded yet (%s)\n", states.Path())
		return nil
	}

	keys := make([]string, 0, len(st))
	for k := range st {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tSEEN\tNEWEST")
	for _, k := range keys {
		ids := st[k]
		newest := "-"
		if len(ids) > 0 {
			newest = ids[len(ids)-1]
		}
		fmt.Fprintf(w, "%s\t%d/%d\t%s\n", k, len(ids), state.MaxIDsPerSource, newest)
	}
	return w.Flush()
}

func runHistory(jsonOutput bool, src string, limit int) error {
	cfg, err := loadConfig(false)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	var srcType source.SourceType
	if src != "" {
		t, ok := source.ParseSourceType(src)
		if !ok {
			return fmt.Errorf("unknown source %q (known: %v)", src, source.AllSourceTypes())
		}
		srcType = t
	}

	if !cfg.Journal.Enabled {
		fmt.Println("delivery journal is disabled (journal.enabled: false)")
		return nil
	}

	db, err := store.New(cfg.JournalPath())
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer db.Close()

	deliveries, err := db.ListDeliveries(context.Background(), store.ListOpts{
		Source: srcType,
		Limit:  limit,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(deliveries)
	}

	if len(deliveries) == 0 {
		fmt.Println("no deliveries recorded yet (try: newsrelay poll)")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DELIVERED\tSOURCE\tITEM\tTITLE")
	for _, d := range deliveries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			d.DeliveredAt.Format(time.RFC3339), d.Source, d.ItemID, d.Title)
	}
	return w.Flush()
}
