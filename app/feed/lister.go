package feed

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// Lister reads the upstream listing page. It never fails: transport and
// upstream errors are logged and yield an empty listing.
type Lister struct {
	listingURL string
	fetcher    *Fetcher
	rules      *RulesCache
	filterer   *Filterer
}

func NewLister(listingURL string, fetcher *Fetcher, rules *RulesCache, filterer *Filterer) *Lister {
	return &Lister{
		listingURL: listingURL,
		fetcher:    fetcher,
		rules:      rules,
		filterer:   filterer,
	}
}

func (l *Lister) ListingURL() string {
	return l.listingURL
}

func (l *Lister) List(ctx context.Context) []ItemSummary {
	start := time.Now()

	page, err := l.fetcher.FetchPage(ctx, l.listingURL)
	if err != nil {
		slog.Warn("Failed to fetch listing", "url", l.listingURL, "error", err)
		return []ItemSummary{}
	}

	var items []ItemSummary
	if isFeedDocument(page) {
		items = l.parseFeed(page)
	} else {
		items = l.parseHTML(page)
	}

	rules := l.rules.Get()
	items = l.filterer.Run(items, rules.Filters)

	slog.Debug("Listing fetched", "url", l.listingURL, "items", len(items), "duration", time.Since(start))

	return items
}

func (l *Lister) parseHTML(page *Page) []ItemSummary {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page.Body))
	if err != nil {
		slog.Warn("Failed to parse listing HTML", "url", page.URL, "error", err)
		return []ItemSummary{}
	}

	base, _ := url.Parse(page.URL)
	rules := l.rules.Get().Listing

	entries := doc.Find(rules.Container).First().Find(rules.Entry)
	if entries.Length() == 0 {
		entries = doc.Find(rules.FallbackEntry)
	}

	items := make([]ItemSummary, 0, entries.Length())
	seen := make(map[string]bool)

	entries.Each(func(_ int, entry *goquery.Selection) {
		item, ok := l.parseEntry(entry, base, rules)
		if !ok {
			return
		}
		// Entries without an anchor share the listing URL and are all kept
		if item.Link != l.listingURL {
			if seen[item.Link] {
				return
			}
			seen[item.Link] = true
		}
		items = append(items, item)
	})

	return items
}

func (l *Lister) parseEntry(entry *goquery.Selection, base *url.URL, rules ListingRules) (ItemSummary, bool) {
	titleSel := entry.Find(rules.Title).First()
	title := collapseSpace(titleSel.Text())
	if title == "" {
		return ItemSummary{}, false
	}

	href, ok := titleSel.Find("a[href]").First().Attr("href")
	if !ok {
		href, ok = titleSel.Closest("a[href]").Attr("href")
	}
	if !ok {
		href, _ = entry.Find("a[href]").First().Attr("href")
	}

	link := resolveURL(base, href)
	if link == "" {
		link = l.listingURL
	}

	item := ItemSummary{
		Title:    title,
		Link:     link,
		DateText: dateText(entry.Find(rules.Date).First()),
		Excerpt:  collapseSpace(entry.Find(rules.Excerpt).First().Text()),
	}

	if src := imageSource(entry.Find("img").First()); src != "" {
		item.ImageURL = resolveURL(base, src)
	}

	return item, true
}

func (l *Lister) parseFeed(page *Page) []ItemSummary {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(page.Body))
	if err != nil {
		slog.Warn("Failed to parse listing feed", "url", page.URL, "error", err)
		return []ItemSummary{}
	}

	base, _ := url.Parse(page.URL)
	items := make([]ItemSummary, 0, len(parsed.Items))

	for _, entry := range parsed.Items {
		title := collapseSpace(entry.Title)
		if title == "" {
			continue
		}

		item := ItemSummary{
			Title:    title,
			Link:     resolveURL(base, entry.Link),
			DateText: strings.TrimSpace(entry.Published),
			Excerpt:  htmlToText(entry.Description),
		}
		if item.Link == "" {
			item.Link = l.listingURL
		}

		if entry.Image != nil && entry.Image.URL != "" {
			item.ImageURL = resolveURL(base, entry.Image.URL)
		} else {
			for _, enclosure := range entry.Enclosures {
				if enclosure != nil && strings.HasPrefix(enclosure.Type, "image/") {
					item.ImageURL = resolveURL(base, enclosure.URL)
					break
				}
			}
		}

		items = append(items, item)
	}

	return items
}

func isFeedDocument(page *Page) bool {
	contentType := strings.ToLower(page.ContentType)
	if strings.Contains(contentType, "html") {
		return false
	}
	if strings.Contains(contentType, "xml") || strings.Contains(contentType, "rss") || strings.Contains(contentType, "atom") {
		return true
	}

	head := bytes.TrimSpace(page.Body)
	if len(head) > 512 {
		head = head[:512]
	}
	return bytes.HasPrefix(head, []byte("<?xml")) &&
		(bytes.Contains(head, []byte("<rss")) || bytes.Contains(head, []byte("<feed")))
}

func htmlToText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return collapseSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapseSpace(fragment)
	}
	return collapseSpace(doc.Text())
}
