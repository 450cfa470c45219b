package tasks

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lysyi3m/duyuru/app/database"
	"github.com/lysyi3m/duyuru/app/feed"
)

func TestSyncFeedTask_EndToEndWithStore(t *testing.T) {
	ctx := context.Background()

	db, err := database.NewConnection(filepath.Join(t.TempDir(), "sync.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if _, _, err := database.RunMigrations(db); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	repo := database.NewPostRepository(db)
	lister := &MockLister{items: []feed.ItemSummary{
		{Title: "Sınav Duyurusu", Link: "https://ydyo.ankaramedipol.edu.tr/p/1"},
	}}

	first := NewSyncFeedTask("", lister, &MockScraper{}, repo, feed.NewDateNormalizer(), 5)
	if err := first.Execute(ctx); err != nil {
		t.Fatalf("First run failed: %v", err)
	}

	post, err := repo.GetPost(ctx, "https://ydyo.ankaramedipol.edu.tr/p/1/")
	if err != nil || post == nil {
		t.Fatalf("Expected cached post, got %v / %v", post, err)
	}
	if !post.HasFullContent || post.Content == "" {
		t.Errorf("Expected full content after first run, got %+v", post)
	}
	if post.IsStale() {
		t.Error("Expected post to be fresh after first run")
	}
	if first.Stats().Created != 1 {
		t.Errorf("Expected created count 1, got %+v", first.Stats())
	}

	updatedAt := post.UpdatedAt
	time.Sleep(10 * time.Millisecond)

	scraper := &MockScraper{}
	second := NewSyncFeedTask("", lister, scraper, repo, feed.NewDateNormalizer(), 5)
	if err := second.Execute(ctx); err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if scraper.calls.Load() != 0 {
		t.Errorf("Expected no scrapes on second run, got %d", scraper.calls.Load())
	}
	if second.Stats().Skipped != 1 {
		t.Errorf("Expected skipped count 1, got %+v", second.Stats())
	}

	post, err = repo.GetPost(ctx, "https://ydyo.ankaramedipol.edu.tr/p/1")
	if err != nil || post == nil {
		t.Fatalf("Expected cached post, got %v / %v", post, err)
	}
	if !post.UpdatedAt.Equal(updatedAt) {
		t.Errorf("Expected no write on second run, updated_at moved from %v to %v", updatedAt, post.UpdatedAt)
	}

	count, err := repo.GetPostCount(ctx)
	if err != nil {
		t.Fatalf("GetPostCount failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected one row, got %d", count)
	}
}
