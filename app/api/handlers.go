package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/duyuru/app/database"
	"github.com/lysyi3m/duyuru/app/feed"
	"github.com/lysyi3m/duyuru/app/tasks"
)

const feedItemLimit = 100

func NewHandler(postRepo database.PostRepository, announcementRepo database.AnnouncementRepository,
	lister tasks.Lister, scraper tasks.Scraper, allowlist *feed.Allowlist, fetcher *feed.Fetcher,
	normalizer *feed.DateNormalizer, scheduler tasks.TaskSchedulerInterface) *Handler {
	return &Handler{
		postRepo:         postRepo,
		announcementRepo: announcementRepo,
		lister:           lister,
		scraper:          scraper,
		allowlist:        allowlist,
		fetcher:          fetcher,
		normalizer:       normalizer,
		generator:        feed.NewGenerator(),
		scheduler:        scheduler,
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	h.scheduler.TriggerIfDue()

	items := h.lister.List(c.Request.Context())

	c.JSON(http.StatusOK, items)
}

func (h *Handler) GetAnnouncements(c *gin.Context) {
	h.scheduler.TriggerIfDue()

	ctx := c.Request.Context()

	announcements, err := h.announcementRepo.ListAnnouncements(ctx, 0)
	if err != nil {
		slog.Error("Database error", "operation", "list_announcements", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	posts, err := h.postRepo.ListPosts(ctx, 0)
	if err != nil {
		slog.Error("Database error", "operation", "list_posts", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	var listing []feed.ItemSummary
	if c.Query("merge") != "false" {
		listing = h.lister.List(ctx)
	}

	c.JSON(http.StatusOK, feed.Merge(announcements, posts, listing, h.normalizer))
}

func (h *Handler) GetPost(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing url parameter"})
		return
	}

	if _, err := h.allowlist.Check(rawURL); err != nil {
		respondPolicyError(c, err)
		return
	}

	ctx := c.Request.Context()

	cached, err := h.postRepo.GetPost(ctx, rawURL)
	if err != nil {
		slog.Error("Database error", "operation", "get_post", "url", rawURL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	if cached != nil && !cached.IsStale() {
		c.JSON(http.StatusOK, PostResponse{
			Title:       cached.Title,
			DateText:    cached.DateText,
			ContentHTML: cached.Content,
			Cached:      true,
		})
		return
	}

	task := tasks.NewScrapePostTask(rawURL, h.scraper, h.postRepo, h.normalizer)
	task.Start()

	if err := task.Execute(ctx); err != nil {
		if isPolicyError(err) {
			respondPolicyError(c, err)
			return
		}
		slog.Error("Failed to scrape post", "url", rawURL, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
		return
	}

	if task.Result == nil {
		// Upstream is unreachable: an older full copy is better than nothing
		if cached != nil && cached.HasFullContent {
			c.JSON(http.StatusOK, PostResponse{
				Title:       cached.Title,
				DateText:    cached.DateText,
				ContentHTML: cached.Content,
				Cached:      true,
				Stale:       true,
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "failed to fetch post"})
		return
	}

	c.JSON(http.StatusOK, PostResponse{
		Title:       task.Result.Title,
		DateText:    task.Result.DateText,
		ContentHTML: task.Result.ContentHTML,
	})
}

func (h *Handler) GetRSS(c *gin.Context) {
	ctx := c.Request.Context()

	announcements, err := h.announcementRepo.ListAnnouncements(ctx, feedItemLimit)
	if err != nil {
		slog.Error("Database error", "operation", "list_announcements", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	posts, err := h.postRepo.ListPosts(ctx, feedItemLimit)
	if err != nil {
		slog.Error("Database error", "operation", "list_posts", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	items := feed.Merge(announcements, posts, nil, h.normalizer)
	if len(items) > feedItemLimit {
		items = items[:feedItemLimit]
	}

	rss, err := h.generator.Run(items)
	if err != nil {
		slog.Error("RSS generation error", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(items)))
	if last := h.scheduler.State().LastCompleted(); !last.IsZero() {
		c.Header("X-Last-Updated", last.Format(time.RFC3339))
	}

	c.String(http.StatusOK, rss)
}

func (h *Handler) TriggerSync(c *gin.Context) {
	started := h.scheduler.TriggerIfDue()

	c.JSON(http.StatusAccepted, gin.H{"started": started})
}

func (h *Handler) GetHealth(c *gin.Context) {
	ctx := c.Request.Context()
	state := h.scheduler.State()

	health := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	}

	if count, err := h.postRepo.GetPostCount(ctx); err == nil {
		health["posts"] = count
	} else {
		slog.Warn("Failed to count posts", "error", err)
		health["status"] = "degraded"
	}

	if stale, err := h.postRepo.GetStaleCount(ctx); err == nil {
		health["stale_posts"] = stale
	}

	syncInfo := map[string]interface{}{
		"running": state.IsRunning(),
	}
	if last := state.LastCompleted(); !last.IsZero() {
		syncInfo["last_completed_at"] = last.In(time.Local).Format(time.RFC3339)
		syncInfo["last_stats"] = state.LastStats()
	}
	health["sync"] = syncInfo

	c.JSON(http.StatusOK, health)
}

func isPolicyError(err error) bool {
	return errors.Is(err, feed.ErrRedirectNotAllowed) ||
		errors.Is(err, feed.ErrInvalidURL) ||
		errors.Is(err, feed.ErrSchemeNotAllowed) ||
		errors.Is(err, feed.ErrDomainNotAllowed)
}

// respondPolicyError answers 422 for an unparsable URL and 403 for a URL,
// or a redirect hop, outside the allowlist. A missing URL is a plain 400.
func respondPolicyError(c *gin.Context, err error) {
	if errors.Is(err, feed.ErrRedirectNotAllowed) {
		c.JSON(http.StatusForbidden, gin.H{"error": "redirect not allowed"})
		return
	}
	if errors.Is(err, feed.ErrInvalidURL) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid url"})
		return
	}
	c.JSON(http.StatusForbidden, gin.H{"error": "domain not allowed"})
}
