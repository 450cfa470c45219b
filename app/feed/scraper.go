package feed

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Scraper fetches one upstream post and returns its rewritten content.
// A failed fetch or a page with no content is a soft failure: Scrape
// returns (nil, nil). The only errors it returns are allowlist rejections,
// of the URL itself or of a redirect hop.
type Scraper struct {
	allowlist        *Allowlist
	fetcher          *Fetcher
	rules            *RulesCache
	rewriter         *Rewriter
	contentExtractor *ContentExtractor
}

func NewScraper(allowlist *Allowlist, fetcher *Fetcher, rules *RulesCache, rewriter *Rewriter, contentExtractor *ContentExtractor) *Scraper {
	return &Scraper{
		allowlist:        allowlist,
		fetcher:          fetcher,
		rules:            rules,
		rewriter:         rewriter,
		contentExtractor: contentExtractor,
	}
}

func (s *Scraper) Scrape(ctx context.Context, postURL string) (*ScrapeResult, error) {
	if _, err := s.allowlist.Check(postURL); err != nil {
		return nil, err
	}

	start := time.Now()

	page, err := s.fetcher.FetchPage(ctx, postURL)
	if errors.Is(err, ErrRedirectNotAllowed) {
		return nil, err
	}
	if err != nil {
		slog.Warn("Failed to fetch post", "url", postURL, "error", err)
		return nil, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		slog.Warn("Failed to parse post HTML", "url", postURL, "error", err)
		return nil, nil
	}

	base, _ := url.Parse(page.URL)
	rules := s.rules.Get().Post

	result := &ScrapeResult{
		Title:    extractTitle(doc, rules),
		DateText: extractDate(doc, rules),
	}

	region := selectRegion(doc, rules)
	if region == nil {
		region = s.readabilityRegion(page.Body, base)
	}

	if region != nil {
		s.rewriter.Rewrite(region, base)
	}

	// Noise removal can leave a region with nothing worth keeping
	if hasContent(region) {
		contentHTML, err := region.Html()
		if err != nil {
			slog.Warn("Failed to render post content", "url", postURL, "error", err)
		}
		result.ContentHTML = strings.TrimSpace(contentHTML)
	}

	if result.ContentHTML == "" {
		slog.Warn("No content found in post", "url", postURL, "title", result.Title)
		return nil, nil
	}

	slog.Debug("Post scraped", "url", postURL, "title", result.Title, "content_length", len(result.ContentHTML), "duration", time.Since(start))

	return result, nil
}

func extractTitle(doc *goquery.Document, rules PostRules) string {
	if title := collapseSpace(doc.Find(rules.Title).First().Text()); title != "" {
		return title
	}
	if ogTitle, ok := doc.Find("meta[property='og:title']").Attr("content"); ok && strings.TrimSpace(ogTitle) != "" {
		return collapseSpace(ogTitle)
	}
	return collapseSpace(doc.Find("title").First().Text())
}

func extractDate(doc *goquery.Document, rules PostRules) string {
	if text := dateText(doc.Find(rules.Date).First()); text != "" {
		return text
	}
	if published, ok := doc.Find("meta[property='article:published_time']").Attr("content"); ok {
		return strings.TrimSpace(published)
	}
	return ""
}

// selectRegion walks the content selectors in order and then the main
// containers, returning the first non-empty match.
func selectRegion(doc *goquery.Document, rules PostRules) *goquery.Selection {
	for _, selectors := range [][]string{rules.ContentRegions, rules.MainContainers} {
		for _, selector := range selectors {
			sel := doc.Find(selector).First()
			if hasContent(sel) {
				return sel
			}
		}
	}
	return nil
}

func hasContent(sel *goquery.Selection) bool {
	if sel == nil || sel.Length() == 0 {
		return false
	}
	if strings.TrimSpace(sel.Text()) != "" {
		return true
	}
	return sel.Find("img, object, embed, iframe").Length() > 0
}

func (s *Scraper) readabilityRegion(data []byte, base *url.URL) *goquery.Selection {
	content, err := s.contentExtractor.Run(data, base)
	if err != nil {
		slog.Debug("Readability fallback found no content", "url", base, "error", err)
		return nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil
	}
	body := doc.Find("body").First()
	if !hasContent(body) {
		return nil
	}
	return body
}
