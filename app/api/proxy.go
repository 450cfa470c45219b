package api

import (
	"bufio"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"github.com/lysyi3m/duyuru/app/feed"
)

const (
	sniffLen           = 3072
	defaultContentType = "application/octet-stream"
)

var extensionTypes = map[string]string{
	".pdf":  "application/pdf",
	".xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	".xls":  "application/vnd.ms-excel",
	".csv":  "text/csv; charset=utf-8",
}

// Proxy streams an allowlisted upstream resource back to the caller
func (h *Handler) Proxy(c *gin.Context) {
	rawURL := c.Query("url")
	if rawURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing url parameter"})
		return
	}

	target, err := h.allowlist.Check(rawURL)
	if err != nil {
		respondPolicyError(c, err)
		return
	}

	resp, err := h.fetcher.Open(c.Request.Context(), target.String())
	if err != nil {
		if errors.Is(err, feed.ErrRedirectNotAllowed) {
			slog.Warn("Upstream redirected outside the allowlist", "url", target.String(), "error", err)
			respondPolicyError(c, err)
			return
		}
		if errors.Is(err, feed.ErrTooManyRedirects) {
			slog.Warn("Upstream redirected too many times", "url", target.String())
			c.JSON(http.StatusBadGateway, gin.H{"error": "too many redirects"})
			return
		}
		var statusErr *feed.UpstreamStatusError
		if errors.As(err, &statusErr) {
			slog.Warn("Upstream rejected proxy request", "url", target.String(), "status", statusErr.StatusCode)
			c.JSON(http.StatusBadGateway, gin.H{"error": fmt.Sprintf("upstream returned status %d", statusErr.StatusCode)})
			return
		}
		slog.Error("Failed to fetch proxied resource", "url", target.String(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch resource"})
		return
	}
	defer resp.Body.Close()

	body := bufio.NewReaderSize(resp.Body, sniffLen)
	head, _ := body.Peek(sniffLen)

	contentType := detectContentType(target, resp.Header.Get("Content-Type"), head)

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, attachmentName(target)))
	c.Header("Cache-Control", "public, max-age=3600")

	c.DataFromReader(http.StatusOK, resp.ContentLength, contentType, body, nil)
}

// detectContentType prefers the file extension, then the upstream header,
// then the sniffed bytes.
func detectContentType(target *url.URL, upstream string, head []byte) string {
	if contentType, ok := extensionTypes[strings.ToLower(path.Ext(target.Path))]; ok {
		return contentType
	}

	if upstream != "" && !strings.HasPrefix(upstream, defaultContentType) {
		return upstream
	}

	if len(head) > 0 {
		if detected := mimetype.Detect(head); !detected.Is(defaultContentType) {
			return detected.String()
		}
	}

	return defaultContentType
}

func attachmentName(target *url.URL) string {
	name := path.Base(target.Path)
	if name == "" || name == "." || name == "/" {
		return "download"
	}
	return strings.NewReplacer(`"`, "", "\r", "", "\n", "").Replace(name)
}
