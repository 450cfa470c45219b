package feed

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// resolveURL makes ref absolute against base. Unparsable references are
// returned unchanged.
func resolveURL(base *url.URL, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || base == nil {
		return ref
	}
	if strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "#") || strings.HasPrefix(ref, "mailto:") {
		return ref
	}

	parsed, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return base.ResolveReference(parsed).String()
}

// dateText prefers the visible text of sel and falls back to its
// machine-readable datetime attribute.
func dateText(sel *goquery.Selection) string {
	if sel.Length() == 0 {
		return ""
	}
	if text := collapseSpace(sel.Text()); text != "" {
		return text
	}
	if dt, ok := sel.Attr("datetime"); ok {
		return strings.TrimSpace(dt)
	}
	if dt, ok := sel.Find("[datetime]").First().Attr("datetime"); ok {
		return strings.TrimSpace(dt)
	}
	return ""
}

func imageSource(img *goquery.Selection) string {
	if src, ok := img.Attr("src"); ok && strings.TrimSpace(src) != "" && !strings.HasPrefix(src, "data:") {
		return src
	}
	for _, attr := range []string{"data-src", "data-lazy-src", "data-original"} {
		if src, ok := img.Attr(attr); ok && strings.TrimSpace(src) != "" {
			return src
		}
	}
	return ""
}
