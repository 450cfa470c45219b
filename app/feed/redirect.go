package feed

import (
	"errors"
	"fmt"
	"net/http"
)

const DefaultMaxRedirects = 5

var (
	// ErrRedirectNotAllowed wraps the allowlist error of a rejected hop.
	ErrRedirectNotAllowed = errors.New("redirect not allowed")
	ErrTooManyRedirects   = errors.New("too many redirects")
)

// RedirectPolicy returns a CheckRedirect function that runs every hop
// through the allowlist and stops after maxHops redirects.
func RedirectPolicy(allowlist *Allowlist, maxHops int) func(*http.Request, []*http.Request) error {
	if maxHops <= 0 {
		maxHops = DefaultMaxRedirects
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxHops {
			return ErrTooManyRedirects
		}
		if _, err := allowlist.Check(req.URL.String()); err != nil {
			return fmt.Errorf("%w to %s: %w", ErrRedirectNotAllowed, req.URL.Redacted(), err)
		}
		return nil
	}
}

// NewHTTPClient returns a client whose redirects stay inside the allowlist.
func NewHTTPClient(allowlist *Allowlist) *http.Client {
	return &http.Client{CheckRedirect: RedirectPolicy(allowlist, DefaultMaxRedirects)}
}
