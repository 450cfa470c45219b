package tasks

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lysyi3m/duyuru/app/database"
	"github.com/lysyi3m/duyuru/app/feed"
)

const DefaultChunkSize = 5

type SyncStats struct {
	Listed  int `json:"listed"`
	Skipped int `json:"skipped"`
	Created int `json:"created"`
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

type itemOutcome int

const (
	outcomeSkipped itemOutcome = iota
	outcomeCreated
	outcomeUpdated
	outcomeFailed
)

// SyncFeedTask mirrors the upstream listing into the cache store. Items are
// processed in sequential chunks; items within a chunk run concurrently and
// a failing item never affects its siblings.
type SyncFeedTask struct {
	Task
	lister     Lister
	scraper    Scraper
	postRepo   database.PostRepository
	normalizer *feed.DateNormalizer
	chunkSize  int

	mu    sync.Mutex
	stats SyncStats
}

func NewSyncFeedTask(listingURL string, lister Lister, scraper Scraper, postRepo database.PostRepository, normalizer *feed.DateNormalizer, chunkSize int) *SyncFeedTask {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	return &SyncFeedTask{
		Task:       NewTask(TaskTypeSyncFeed, listingURL),
		lister:     lister,
		scraper:    scraper,
		postRepo:   postRepo,
		normalizer: normalizer,
		chunkSize:  chunkSize,
	}
}

func (t *SyncFeedTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	var items []feed.ItemSummary
	for _, item := range t.lister.List(ctx) {
		if item.Link != "" {
			items = append(items, item)
		}
	}

	t.mu.Lock()
	t.stats = SyncStats{Listed: len(items)}
	t.mu.Unlock()

	if len(items) == 0 {
		slog.Debug("Listing returned no items", "url", t.Target)
	}

	for i, chunk := range chunkItems(items, t.chunkSize) {
		slog.Debug("Processing chunk", "chunk", i+1, "size", len(chunk))

		var g errgroup.Group
		for _, item := range chunk {
			g.Go(func() error {
				t.record(t.processItem(ctx, item))
				return nil
			})
		}
		g.Wait()
	}

	stats := t.Stats()
	slog.Info("Task completed",
		"type", "SyncFeed",
		"url", t.Target,
		"duration", t.GetDuration(),
		"listed", stats.Listed,
		"skipped", stats.Skipped,
		"created", stats.Created,
		"updated", stats.Updated,
		"failed", stats.Failed)

	return nil
}

func (t *SyncFeedTask) Stats() SyncStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

func (t *SyncFeedTask) record(outcome itemOutcome) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch outcome {
	case outcomeSkipped:
		t.stats.Skipped++
	case outcomeCreated:
		t.stats.Created++
	case outcomeUpdated:
		t.stats.Updated++
	case outcomeFailed:
		t.stats.Failed++
	}
}

func (t *SyncFeedTask) processItem(ctx context.Context, item feed.ItemSummary) (outcome itemOutcome) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic while syncing item", "url", item.Link, "panic", r)
			outcome = outcomeFailed
		}
	}()

	outcome, err := t.syncItem(ctx, item)
	if err != nil {
		slog.Warn("Failed to sync item", "url", item.Link, "error", err)
		return outcomeFailed
	}
	return outcome
}

func (t *SyncFeedTask) syncItem(ctx context.Context, item feed.ItemSummary) (itemOutcome, error) {
	existing, err := t.postRepo.GetPost(ctx, item.Link)
	if err != nil {
		return outcomeFailed, err
	}

	if existing != nil && !existing.IsStale() {
		return outcomeSkipped, nil
	}

	if existing == nil {
		_, err := t.postRepo.InsertPlaceholder(ctx, database.PostUpsert{
			SourceURL:   item.Link,
			Title:       item.Title,
			DateText:    item.DateText,
			Content:     item.Excerpt,
			ImageURL:    item.ImageURL,
			PublishedAt: publishedAt(t.normalizer, item.DateText),
		})
		if err != nil {
			return outcomeFailed, err
		}
	}

	result, err := t.scraper.Scrape(ctx, item.Link)
	if err != nil {
		return outcomeFailed, err
	}
	if !hasContent(result) {
		return outcomeFailed, fmt.Errorf("no content scraped")
	}

	dateText := cmp.Or(result.DateText, item.DateText)
	err = t.postRepo.UpsertPost(ctx, database.PostUpsert{
		SourceURL:      item.Link,
		Title:          cmp.Or(result.Title, item.Title),
		DateText:       dateText,
		Content:        result.ContentHTML,
		ImageURL:       item.ImageURL,
		HasFullContent: true,
		PublishedAt:    publishedAt(t.normalizer, dateText),
	})
	if err != nil {
		return outcomeFailed, err
	}

	if existing == nil {
		return outcomeCreated, nil
	}
	return outcomeUpdated, nil
}

// hasContent rejects empty scrapes so they never mark a row as fresh.
func hasContent(result *feed.ScrapeResult) bool {
	return result != nil && strings.TrimSpace(result.ContentHTML) != ""
}

// publishedAt is nil when there is no date text, so an update keeps the
// stored date instead of moving it to the current time.
func publishedAt(normalizer *feed.DateNormalizer, dateText string) *time.Time {
	if dateText == "" {
		return nil
	}
	t := normalizer.Normalize(dateText)
	return &t
}

func chunkItems(items []feed.ItemSummary, size int) [][]feed.ItemSummary {
	var chunks [][]feed.ItemSummary
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
