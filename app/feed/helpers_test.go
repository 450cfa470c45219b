package feed

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// newUpstream serves fixed bodies keyed by path.
func newUpstream(t *testing.T, pages map[string]string, contentType string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func newTestFetcher(srv *httptest.Server) *Fetcher {
	return NewFetcher(srv.Client(), "Mozilla/5.0 Test", 5*time.Second)
}
