package feed

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// DefaultRules match the WordPress theme the upstream site runs on.
func DefaultRules() *Rules {
	return &Rules{
		Listing: ListingRules{
			Container:     "#content, .site-content, main",
			Entry:         "article, .post, .blog-post, .type-post",
			FallbackEntry: "article, .post, .entry",
			Title:         ".entry-title, h2, h3, h1",
			Date:          "time, .entry-date, .posted-on, .date, .post-date",
			Excerpt:       ".entry-summary, .entry-content, .excerpt, p",
		},
		Post: PostRules{
			Title: "h1.entry-title, .entry-header h1, h1",
			Date:  "time, .entry-date, .posted-on, .post-date, .date",
			ContentRegions: []string{
				".entry-content",
				".post-content",
				"article .content",
				".single-post .content",
				"article",
			},
			MainContainers: []string{"#content", ".site-content", "main", "body"},
			Noise: []string{
				"script",
				"style",
				"noscript",
				"nav",
				".post-navigation",
				".nav-links",
				".sharedaddy",
				".share",
				".social-share",
				".addtoany_share_save_container",
				".jp-relatedposts",
				".related-posts",
				"#comments",
				".comments-area",
				".author-box",
				".author-info",
				".wp-caption-text",
			},
			FileBlocks:      ".wp-block-file, .pdfemb-viewer, .embed-file",
			FileEmbeds:      "object[data], embed[src], iframe[src]",
			SpreadsheetExts: []string{".xlsx", ".xls", ".csv"},
			MinEmbedHeight:  "600px",
		},
	}
}

// RulesCache holds the active scrape rules. A rules file only needs to
// name the fields it overrides.
type RulesCache struct {
	rulesFile string
	rules     *Rules
	mu        sync.RWMutex
}

func NewRulesCache(rulesFile string) *RulesCache {
	return &RulesCache{
		rulesFile: rulesFile,
		rules:     DefaultRules(),
	}
}

func (rc *RulesCache) Run() error {
	if rc.rulesFile == "" {
		slog.Debug("No rules file configured, using built-in scrape rules")
		return nil
	}

	if _, err := os.Stat(rc.rulesFile); os.IsNotExist(err) {
		slog.Warn("Rules file not found, using built-in scrape rules", "file", rc.rulesFile)
		return nil
	}

	_, err := rc.Load()
	return err
}

func (rc *RulesCache) Load() (*Rules, error) {
	rules, err := rc.parseRules(rc.rulesFile)
	if err != nil {
		return nil, err
	}

	if err := rc.validateRules(rules); err != nil {
		return nil, fmt.Errorf("invalid rules %s: %w", rc.rulesFile, err)
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.rules = rules

	slog.Debug("Scrape rules loaded", "file", rc.rulesFile, "content_regions", len(rules.Post.ContentRegions), "noise", len(rules.Post.Noise), "filters", len(rules.Filters))

	return rules, nil
}

func (rc *RulesCache) Get() *Rules {
	rc.mu.RLock()
	defer rc.mu.RUnlock()
	return rc.rules
}

func (rc *RulesCache) parseRules(rulesFile string) (*Rules, error) {
	data, err := os.ReadFile(rulesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	rules := DefaultRules()
	if err := yaml.Unmarshal(data, rules); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return rules, nil
}

func (rc *RulesCache) validateRules(rules *Rules) error {
	if rules == nil {
		return fmt.Errorf("rules are nil")
	}

	requiredSelectors := map[string]string{
		"listing entry":    rules.Listing.Entry,
		"listing title":    rules.Listing.Title,
		"post title":       rules.Post.Title,
		"post file blocks": rules.Post.FileBlocks,
		"post file embeds": rules.Post.FileEmbeds,
	}

	for fieldName, fieldValue := range requiredSelectors {
		if strings.TrimSpace(fieldValue) == "" {
			return fmt.Errorf("%s selector is required", fieldName)
		}
	}

	if len(rules.Post.ContentRegions) == 0 && len(rules.Post.MainContainers) == 0 {
		return fmt.Errorf("at least one content region or main container is required")
	}

	for i, ext := range rules.Post.SpreadsheetExts {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("spreadsheet extension at index %d must start with '.': %s", i, ext)
		}
	}

	validFields := map[string]bool{
		"title":   true,
		"excerpt": true,
		"link":    true,
	}

	for i, filter := range rules.Filters {
		if !validFields[filter.Field] {
			return fmt.Errorf("invalid filter field at index %d: %s", i, filter.Field)
		}
		if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
			return fmt.Errorf("filter at index %d must have at least one include or exclude rule", i)
		}
	}

	return nil
}
