package feed

import (
	"errors"
	"net/url"
	"strings"
)

var (
	ErrInvalidURL       = errors.New("invalid url")
	ErrSchemeNotAllowed = errors.New("scheme not allowed")
	ErrDomainNotAllowed = errors.New("domain not allowed")
)

// Allowlist gates every outbound fetch triggered by a caller-supplied URL.
type Allowlist struct {
	domain string
}

func NewAllowlist(domain string) *Allowlist {
	return &Allowlist{domain: strings.ToLower(strings.TrimSpace(domain))}
}

func (a *Allowlist) Domain() string {
	return a.domain
}

func (a *Allowlist) Allowed(rawURL string) bool {
	_, err := a.Check(rawURL)
	return err == nil
}

// Check parses rawURL and reports why it is rejected, if it is.
func (a *Allowlist) Check(rawURL string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		return nil, ErrInvalidURL
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, ErrSchemeNotAllowed
	}

	if a.domain == "" || !strings.Contains(strings.ToLower(u.Hostname()), a.domain) {
		return nil, ErrDomainNotAllowed
	}

	return u, nil
}
