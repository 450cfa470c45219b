package feed

import (
	"errors"
	"net/http"
	"net/url"
	"testing"
)

func TestRedirectPolicy(t *testing.T) {
	policy := RedirectPolicy(NewAllowlist("ankaramedipol.edu.tr"), 2)

	request := func(raw string) *http.Request {
		u, _ := url.Parse(raw)
		return &http.Request{URL: u}
	}
	first := request("https://ydyo.ankaramedipol.edu.tr/p/1")

	if err := policy(request("https://www.ankaramedipol.edu.tr/p/1"), []*http.Request{first}); err != nil {
		t.Errorf("Expected allowlisted hop to pass, got %v", err)
	}

	err := policy(request("https://evil.example/x"), []*http.Request{first})
	if !errors.Is(err, ErrRedirectNotAllowed) || !errors.Is(err, ErrDomainNotAllowed) {
		t.Errorf("Expected foreign hop to be rejected by domain, got %v", err)
	}

	err = policy(request("file://ankaramedipol.edu.tr/etc/passwd"), []*http.Request{first})
	if !errors.Is(err, ErrRedirectNotAllowed) || !errors.Is(err, ErrSchemeNotAllowed) {
		t.Errorf("Expected non-http hop to be rejected by scheme, got %v", err)
	}

	err = policy(request("https://ydyo.ankaramedipol.edu.tr/p/3"), []*http.Request{first, first})
	if !errors.Is(err, ErrTooManyRedirects) {
		t.Errorf("Expected ErrTooManyRedirects, got %v", err)
	}
}
