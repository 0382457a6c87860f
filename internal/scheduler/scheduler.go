package scheduler

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/elonfeng/newsrelay/internal/state"
	"github.com/elonfeng/newsrelay/internal/store"
	"github.com/elonfeng/newsrelay/pkg/alert"
	"github.com/elonfeng/newsrelay/pkg/source"
)

// Target pairs a source with the webhook its items are delivered to.
type Target struct {
	Source     source.Source
	WebhookURL string
}

// StateSaver persists seen-state at the end of a cycle.
type StateSaver interface {
	Save(st state.SeenState) error
}

// Scheduler runs poll cycles over all targets on a fixed interval.
//
// It holds the only live reference to the seen-state and mutates it from a
// single goroutine; sources and items are processed sequentially.
type Scheduler struct {
	saver    StateSaver
	seen     state.SeenState
	targets  []Target
	sender   alert.Sender
	journal  store.Store
	interval time.Duration
	log      zerolog.Logger
}

// New creates a new scheduler. journal may be nil.
func New(
	saver StateSaver,
	seen state.SeenState,
	targets []Target,
	sender alert.Sender,
	journal store.Store,
	interval time.Duration,
	log zerolog.Logger,
) *Scheduler {
	if seen == nil {
		seen = state.SeenState{}
	}
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Scheduler{
		saver:    saver,
		seen:     seen,
		targets:  targets,
		sender:   sender,
		journal:  journal,
		interval: interval,
		log:      log,
	}
}

// Run polls immediately, then once per interval until ctx is cancelled.
// A cycle that has started always runs to completion; cancellation is only
// observed between cycles.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.log.Info().Dur("interval", s.interval).Int("sources", len(s.targets)).Msg("scheduler: running")
	s.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler: stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// runCycle never lets a failing or panicking cycle escape into the loop.
func (s *Scheduler) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().
				Str("panic", fmt.Sprint(r)).
				Str("stack", string(debug.Stack())).
				Msg("unexpected error during polling")
		}
	}()

	report, err := s.PollOnce(context.WithoutCancel(ctx))
	if err != nil {
		s.log.Error().Err(err).Str("cycle", report.CycleID).Msg("poll cycle failed")
	}
}

// PollOnce runs one cycle over every target and persists the seen-state
// exactly once at the end.
func (s *Scheduler) PollOnce(ctx context.Context) (Report, error) {
	report := Report{CycleID: uuid.NewString(), StartedAt: time.Now().UTC()}
	log := s.log.With().Str("cycle", report.CycleID).Logger()

	for _, t := range s.targets {
		report.Sources = append(report.Sources, s.pollSource(ctx, log, report.CycleID, t))
	}

	if err := s.saver.Save(s.seen); err != nil {
		return report, fmt.Errorf("save state: %w", err)
	}
	return report, nil
}

// Seen exposes the live seen-state. Only for use from the goroutine that
// drives PollOnce.
func (s *Scheduler) Seen() state.SeenState { return s.seen }

func (s *Scheduler) pollSource(ctx context.Context, log zerolog.Logger, cycleID string, t Target) SourceReport {
	src := t.Source
	key := src.StateKey()
	log = log.With().Str("source", string(src.Name())).Logger()
	rep := SourceReport{Source: src.Name(), StateKey: key}

	items, err := src.Fetch(ctx)
	if err != nil {
		log.Error().Err(err).Msg("fetch failed")
		rep.Err = err
		return rep
	}
	rep.Fetched = len(items)

	firstRun := !s.seen.Has(key)
	fresh := source.Unseen(items, s.seen.Set(key))
	rep.New = len(fresh)

	if len(fresh) == 0 {
		log.Info().Msg("no new entries")
		return rep
	}

	if firstRun {
		s.seen.Append(key, source.IDs(fresh)...)
		rep.Bootstrapped = len(fresh)
		log.Info().Int("count", len(fresh)).Msg("first run: marking entries as seen")
		return rep
	}

	log.Info().Int("count", len(fresh)).Msg("found new entries")

	// Oldest first so the channel reads chronologically.
	for _, item := range source.Reversed(fresh) {
		full, err := src.Hydrate(ctx, item)
		if err != nil {
			log.Error().Err(err).Str("item", item.ID).Msg("fetch item failed")
			rep.Failed++
			continue
		}

		if full.Gone() {
			s.seen.Append(key, full.ID)
			rep.Suppressed++
			continue
		}

		if !src.Relevant(full) {
			log.Debug().
				Str("item", full.ID).
				Int("score", full.Score).
				Int("comments", full.Comments).
				Msg("below threshold, skipped")
			rep.Skipped++
			continue
		}

		if err := s.sender.Send(ctx, t.WebhookURL, src.Format(full)); err != nil {
			log.Error().Err(err).Str("item", full.ID).Msg("delivery failed")
			rep.Failed++
			continue
		}

		s.seen.Append(key, full.ID)
		rep.Delivered++
		s.record(ctx, log, cycleID, key, full)
	}

	return rep
}

func (s *Scheduler) record(ctx context.Context, log zerolog.Logger, cycleID, key string, item source.Item) {
	if s.journal == nil {
		return
	}
	err := s.journal.RecordDelivery(ctx, &store.Delivery{
		CycleID:  cycleID,
		Source:   item.Source,
		StateKey: key,
		ItemID:   item.ID,
		Title:    item.Title,
		URL:      item.URL,
		Score:    item.Score,
		Comments: item.Comments,
	})
	if err != nil {
		log.Warn().Err(err).Str("item", item.ID).Msg("journal write failed")
	}
}
