package feed

import (
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Rewriter applies the embedding rules to a retained content region. The
// scheduler and the on-demand detail path share a single instance.
type Rewriter struct {
	rules     *RulesCache
	allowlist *Allowlist
	proxyBase string
	viewerURL string
}

// NewRewriter builds a rewriter. An empty proxyBase keeps file URLs
// absolute; otherwise allowlisted file URLs are routed through the proxy.
func NewRewriter(rules *RulesCache, allowlist *Allowlist, proxyBase, viewerURL string) *Rewriter {
	return &Rewriter{
		rules:     rules,
		allowlist: allowlist,
		proxyBase: proxyBase,
		viewerURL: viewerURL,
	}
}

// ProxyBase returns the proxy endpoint prefix for the given public base URL.
func ProxyBase(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/api/proxy?url="
}

func (r *Rewriter) Rewrite(region *goquery.Selection, base *url.URL) {
	rules := r.rules.Get().Post

	if len(rules.Noise) > 0 {
		region.Find(strings.Join(rules.Noise, ", ")).Remove()
	}

	r.rewriteAnchors(region, base)
	r.rewriteImages(region, base)
	r.rewriteEmbeds(region, base, rules)
	r.injectViewers(region, base, rules)
}

func (r *Rewriter) rewriteAnchors(region *goquery.Selection, base *url.URL) {
	region.Find("a").Each(func(_ int, a *goquery.Selection) {
		if href, ok := a.Attr("href"); ok {
			a.SetAttr("href", resolveURL(base, href))
		}
		a.SetAttr("target", "_blank")
		a.SetAttr("rel", "noopener noreferrer")
		a.SetAttr("referrerpolicy", "no-referrer")
	})
}

func (r *Rewriter) rewriteImages(region *goquery.Selection, base *url.URL) {
	region.Find("img").Each(func(_ int, img *goquery.Selection) {
		if src := imageSource(img); src != "" {
			img.SetAttr("src", resolveURL(base, src))
		}
		img.RemoveAttr("srcset")
		img.RemoveAttr("sizes")
		img.RemoveAttr("data-src")
		img.RemoveAttr("data-lazy-src")
	})
}

func (r *Rewriter) rewriteEmbeds(region *goquery.Selection, base *url.URL, rules PostRules) {
	region.Find(rules.FileEmbeds).Each(func(_ int, embed *goquery.Selection) {
		attr := "src"
		if _, ok := embed.Attr("data"); ok {
			attr = "data"
		}
		value, _ := embed.Attr(attr)
		absolute := resolveURL(base, value)

		// Only frames inside file blocks are file embeds; others (video players)
		// just get an absolute URL.
		if embed.Is("iframe") && embed.Closest(rules.FileBlocks).Length() == 0 {
			embed.SetAttr(attr, absolute)
			return
		}

		embed.SetAttr(attr, r.fileURL(absolute))
		embed.RemoveAttr("hidden")
		embed.RemoveAttr("aria-hidden")

		style := cleanStyle(embed.AttrOr("style", ""))
		if _, hasHeight := embed.Attr("height"); !hasHeight && !strings.Contains(style, "height") {
			style = appendDeclaration(style, "min-height:"+rules.MinEmbedHeight)
		}
		if style != "" {
			embed.SetAttr("style", style)
		} else {
			embed.RemoveAttr("style")
		}

		embed.ParentsFiltered(rules.FileBlocks).Each(func(_ int, block *goquery.Selection) {
			block.RemoveAttr("hidden")
			block.RemoveAttr("aria-hidden")
		})
	})
}

func (r *Rewriter) injectViewers(region *goquery.Selection, base *url.URL, rules PostRules) {
	region.Find(rules.FileBlocks).Each(func(_ int, block *goquery.Selection) {
		if block.Find(rules.FileEmbeds).Length() > 0 {
			return
		}

		injected := make(map[string]bool)
		block.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			absolute := resolveURL(base, a.AttrOr("href", ""))
			if !isSpreadsheet(absolute, rules.SpreadsheetExts) || injected[absolute] {
				return
			}
			injected[absolute] = true

			viewerSrc := r.viewerURL + url.QueryEscape(r.fileURL(absolute))
			a.AfterHtml(fmt.Sprintf(
				`<iframe class="file-viewer" src="%s" width="100%%" style="min-height:%s;border:0" loading="lazy" referrerpolicy="no-referrer"></iframe>`,
				escapeAttr(viewerSrc), escapeAttr(rules.MinEmbedHeight)))
		})
	})
}

func (r *Rewriter) fileURL(absolute string) string {
	if r.proxyBase == "" || !r.allowlist.Allowed(absolute) {
		return absolute
	}
	return r.proxyBase + url.QueryEscape(absolute)
}

func isSpreadsheet(rawURL string, exts []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	for _, candidate := range exts {
		if ext == strings.ToLower(candidate) {
			return true
		}
	}
	return false
}

// cleanStyle drops declarations that hide an element.
func cleanStyle(style string) string {
	var kept []string
	for _, decl := range strings.Split(style, ";") {
		decl = strings.TrimSpace(decl)
		if decl == "" {
			continue
		}
		normalized := strings.ReplaceAll(strings.ToLower(decl), " ", "")
		if normalized == "display:none" || normalized == "visibility:hidden" {
			continue
		}
		kept = append(kept, decl)
	}
	return strings.Join(kept, ";")
}

func appendDeclaration(style, decl string) string {
	if style == "" {
		return decl
	}
	return style + ";" + decl
}

var attrEscaper = strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")

func escapeAttr(s string) string {
	return attrEscaper.Replace(s)
}
