package tasks

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lysyi3m/duyuru/app/database"
	"github.com/lysyi3m/duyuru/app/feed"
)

// MockPostRepository is an in-memory PostRepository that counts writes
type MockPostRepository struct {
	mu           sync.Mutex
	posts        map[string]*database.CachedPost
	upserts      int
	placeholders int
	getErr       error
}

func NewMockPostRepository() *MockPostRepository {
	return &MockPostRepository{posts: make(map[string]*database.CachedPost)}
}

func (m *MockPostRepository) GetPost(ctx context.Context, sourceURL string) (*database.CachedPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.getErr != nil {
		return nil, m.getErr
	}
	post, ok := m.posts[database.NormalizeSourceURL(sourceURL)]
	if !ok {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (m *MockPostRepository) ListPosts(ctx context.Context, limit int) ([]database.CachedPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var posts []database.CachedPost
	for _, post := range m.posts {
		posts = append(posts, *post)
	}
	return posts, nil
}

func (m *MockPostRepository) GetPostCount(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.posts), nil
}

func (m *MockPostRepository) GetStaleCount(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, post := range m.posts {
		if post.IsStale() {
			count++
		}
	}
	return count, nil
}

func (m *MockPostRepository) UpsertPost(ctx context.Context, p database.PostUpsert) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.upserts++
	key := database.NormalizeSourceURL(p.SourceURL)
	post, ok := m.posts[key]
	if !ok {
		post = &database.CachedPost{ID: fmt.Sprintf("id-%d", len(m.posts)+1), SourceURL: key, CreatedAt: time.Now()}
		m.posts[key] = post
	}
	post.Title = p.Title
	post.DateText = p.DateText
	post.Content = p.Content
	post.HasFullContent = p.HasFullContent
	post.ContentSchemaVersion = 0
	if p.HasFullContent {
		post.ContentSchemaVersion = database.CurrentContentSchemaVersion
	}
	if p.PublishedAt != nil {
		post.PublishedAt = *p.PublishedAt
	}
	post.UpdatedAt = time.Now()
	return nil
}

func (m *MockPostRepository) InsertPlaceholder(ctx context.Context, p database.PostUpsert) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := database.NormalizeSourceURL(p.SourceURL)
	if _, ok := m.posts[key]; ok {
		return false, nil
	}
	m.placeholders++
	m.posts[key] = &database.CachedPost{
		ID:        fmt.Sprintf("id-%d", len(m.posts)+1),
		SourceURL: key,
		Title:     p.Title,
		Content:   p.Content,
	}
	return true, nil
}

func (m *MockPostRepository) writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upserts + m.placeholders
}

func (m *MockPostRepository) put(post database.CachedPost) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[database.NormalizeSourceURL(post.SourceURL)] = &post
}

type MockLister struct {
	items []feed.ItemSummary
}

func (m *MockLister) List(ctx context.Context) []feed.ItemSummary {
	return m.items
}

// MockScraper tracks concurrent calls and returns a result per URL unless
// the URL is listed in fail, empty or panics.
type MockScraper struct {
	delay  time.Duration
	fail   map[string]bool
	empty  map[string]bool
	panics map[string]bool
	err    error

	calls     atomic.Int32
	active    atomic.Int32
	maxActive atomic.Int32

	mu     sync.Mutex
	starts map[string]time.Time
	ends   map[string]time.Time
}

func (m *MockScraper) track(postURL string, into *map[string]time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if *into == nil {
		*into = make(map[string]time.Time)
	}
	(*into)[postURL] = time.Now()
}

func (m *MockScraper) Scrape(ctx context.Context, postURL string) (*feed.ScrapeResult, error) {
	m.calls.Add(1)
	m.track(postURL, &m.starts)
	current := m.active.Add(1)
	defer func() {
		m.active.Add(-1)
		m.track(postURL, &m.ends)
	}()

	for {
		observed := m.maxActive.Load()
		if current <= observed || m.maxActive.CompareAndSwap(observed, current) {
			break
		}
	}

	if m.delay > 0 {
		time.Sleep(m.delay)
	}

	if m.panics[postURL] {
		panic("scraper exploded")
	}
	if m.err != nil {
		return nil, m.err
	}
	if m.fail[postURL] {
		return nil, nil
	}
	if m.empty[postURL] {
		return &feed.ScrapeResult{Title: "Bakım", ContentHTML: "  "}, nil
	}

	return &feed.ScrapeResult{
		Title:       "Scraped " + postURL,
		DateText:    "12 Mart 2025",
		ContentHTML: "<p>full " + postURL + "</p>",
	}, nil
}

func listingItems(n int) []feed.ItemSummary {
	items := make([]feed.ItemSummary, n)
	for i := range items {
		items[i] = feed.ItemSummary{
			Title:   fmt.Sprintf("Duyuru %d", i+1),
			Link:    fmt.Sprintf("https://x.edu.tr/duyuru-%d/", i+1),
			Excerpt: "özet",
		}
	}
	return items
}
