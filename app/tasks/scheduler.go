package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/lysyi3m/duyuru/app/database"
	"github.com/lysyi3m/duyuru/app/feed"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

type SchedulerOptions struct {
	ListingURL string
	ChunkSize  int
	Interval   time.Duration
	MinSpacing time.Duration
}

// Scheduler runs the feed sync on a fixed interval, once at startup, and
// opportunistically when reads ask for it. At most one sync runs at a time.
type Scheduler struct {
	lister     Lister
	scraper    Scraper
	postRepo   database.PostRepository
	normalizer *feed.DateNormalizer
	opts       SchedulerOptions
	syncState  *SyncState
	cron       *cron.Cron

	mu      sync.Mutex
	stopped bool
	wg      sync.WaitGroup
}

func NewScheduler(lister Lister, scraper Scraper, postRepo database.PostRepository, normalizer *feed.DateNormalizer, opts SchedulerOptions) *Scheduler {
	return &Scheduler{
		lister:     lister,
		scraper:    scraper,
		postRepo:   postRepo,
		normalizer: normalizer,
		opts:       opts,
		syncState:  NewSyncState(),
		cron:       cron.New(),
	}
}

func (s *Scheduler) Start() {
	schedule := fmt.Sprintf("@every %s", s.opts.Interval)
	if _, err := s.cron.AddFunc(schedule, func() {
		if !s.startSync("interval") {
			slog.Debug("Sync already running, skipping interval run")
		}
	}); err != nil {
		slog.Error("Failed to schedule periodic sync", "schedule", schedule, "error", err)
	}
	s.cron.Start()

	s.startSync("startup")

	slog.Debug("Scheduler started", "interval", s.opts.Interval, "min_spacing", s.opts.MinSpacing)
}

// Stop prevents new runs and waits for an in-flight sync to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.wg.Wait()
}

// TriggerIfDue starts a sync in the background when none is running and
// the last completed run is older than the minimum spacing.
func (s *Scheduler) TriggerIfDue() bool {
	if s.syncState.IsRunning() || !s.syncState.DueSince(s.opts.MinSpacing) {
		return false
	}
	return s.startSync("opportunistic")
}

func (s *Scheduler) State() *SyncState {
	return s.syncState
}

func (s *Scheduler) startSync(trigger string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || !s.syncState.TryStart() {
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.runSync(trigger)
	}()

	return true
}

// runSync must only be called after a successful TryStart.
func (s *Scheduler) runSync(trigger string) {
	task := NewSyncFeedTask(s.opts.ListingURL, s.lister, s.scraper, s.postRepo, s.normalizer, s.opts.ChunkSize)

	completed := false
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Sync panicked", "trigger", trigger, "id", task.GetID(), "panic", r)
		}
		if completed {
			s.syncState.MarkComplete(task.Stats())
		} else {
			s.syncState.Release()
		}
	}()

	slog.Debug("Sync started", "trigger", trigger, "id", task.GetID())
	task.Start()

	if err := task.Execute(context.Background()); err != nil {
		slog.Error("Sync failed", "trigger", trigger, "id", task.GetID(), "error", err)
		return
	}

	completed = true
}
