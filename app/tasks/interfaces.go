package tasks

import (
	"context"

	"github.com/lysyi3m/duyuru/app/feed"
)

// Lister produces the current upstream listing. It never fails: an
// unreachable upstream yields an empty slice.
type Lister interface {
	List(ctx context.Context) []feed.ItemSummary
}

// Scraper fetches and rewrites a single post. A nil result without error
// means the upstream could not be read.
type Scraper interface {
	Scrape(ctx context.Context, postURL string) (*feed.ScrapeResult, error)
}

var (
	_ Lister  = (*feed.Lister)(nil)
	_ Scraper = (*feed.Scraper)(nil)
)

// TaskSchedulerInterface is the part of the scheduler used by the HTTP layer
// and the main application.
//
//	scheduler := NewScheduler(lister, scraper, postRepo, normalizer, opts)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.TriggerIfDue()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	TriggerIfDue() bool
	State() *SyncState
}
