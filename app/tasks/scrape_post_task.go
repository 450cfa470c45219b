package tasks

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/duyuru/app/database"
	"github.com/lysyi3m/duyuru/app/feed"
)

// ScrapePostTask scrapes a single post on demand and writes it to the cache
// store. Result stays nil when the upstream could not be read.
type ScrapePostTask struct {
	Task
	scraper    Scraper
	postRepo   database.PostRepository
	normalizer *feed.DateNormalizer

	Result *feed.ScrapeResult
}

func NewScrapePostTask(postURL string, scraper Scraper, postRepo database.PostRepository, normalizer *feed.DateNormalizer) *ScrapePostTask {
	return &ScrapePostTask{
		Task:       NewTask(TaskTypeScrapePost, postURL),
		scraper:    scraper,
		postRepo:   postRepo,
		normalizer: normalizer,
	}
}

// Execute returns the scraper's policy error unchanged so callers can
// match it with errors.Is.
func (t *ScrapePostTask) Execute(ctx context.Context) error {
	result, err := t.scraper.Scrape(ctx, t.Target)
	if err != nil {
		return fmt.Errorf("failed to scrape post: %w", err)
	}
	if !hasContent(result) {
		slog.Debug("Scrape returned no result", "url", t.Target)
		return nil
	}

	t.Result = result

	err = t.postRepo.UpsertPost(ctx, database.PostUpsert{
		SourceURL:      t.Target,
		Title:          result.Title,
		DateText:       result.DateText,
		Content:        result.ContentHTML,
		HasFullContent: true,
		PublishedAt:    publishedAt(t.normalizer, result.DateText),
	})
	if err != nil {
		slog.Warn("Failed to cache scraped post", "url", t.Target, "error", err)
	}

	slog.Info("Task completed",
		"type", "ScrapePost",
		"url", t.Target,
		"duration", t.GetDuration())

	return nil
}
