package utils

import (
	"context"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/idna"
)

var urlRegex = regexp.MustCompile(`(?i)\S*?https?://[^\s<>]+|www\.[^\s<>]+`)

// ExtractURLs finds URL candidates in free text, including candidates glued
// to preceding characters ("b1http://x") and scheme-less "www." forms. Every
// returned string starts with http:// or https://.
func ExtractURLs(content string) []string {
	matches := urlRegex.FindAllString(content, -1)
	if len(matches) == 0 {
		return nil
	}
	urls := make([]string, 0, len(matches))
	for _, match := range matches {
		urls = append(urls, RepairScheme(match))
	}
	return urls
}

// RepairScheme trims anything glued before the first scheme occurrence and
// prepends http:// when no scheme is present, so resolution never fails on a
// missing scheme.
func RepairScheme(raw string) string {
	if idx := strings.Index(strings.ToLower(raw), "http"); idx > 0 {
		raw = raw[idx:]
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	return raw
}

// Hostname lowercases and punycodes the host of a URL, for logging and
// classification of internationalized domains.
func Hostname(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(parsed.Hostname())
	if ascii, err := idna.ToASCII(host); err == nil {
		host = ascii
	}
	return host
}

// Resolver follows redirect chains so that links hiding behind shorteners are
// classified by their final target.
type Resolver struct {
	client  *http.Client
	timeout time.Duration
}

func NewResolver(timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		client: &http.Client{
			// net/http stops after 10 redirects on its own; surface that as
			// an error so the caller falls back to the original URL.
			Timeout: timeout,
		},
		timeout: timeout,
	}
}

// Resolve issues a HEAD request following redirects and returns the final
// URL. On timeout, excessive redirects, or any transport failure it returns
// the original URL unchanged; a single bad URL must never abort the caller's
// pipeline.
func (r *Resolver) Resolve(ctx context.Context, raw string) string {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, raw, nil)
	if err != nil {
		return raw
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return raw
	}
	defer resp.Body.Close()

	if resp.Request != nil && resp.Request.URL != nil {
		return resp.Request.URL.String()
	}
	return raw
}
