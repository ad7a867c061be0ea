package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestExtractURLs(t *testing.T) {
	urls := ExtractURLs("visit:http://example.com and www.other.org/x too")
	if len(urls) != 2 {
		t.Fatalf("expected 2 urls, got %v", urls)
	}
	if urls[0] != "http://example.com" {
		t.Fatalf("glued prefix not repaired: %q", urls[0])
	}
	if urls[1] != "http://www.other.org/x" {
		t.Fatalf("missing scheme not prepended: %q", urls[1])
	}
}

func TestExtractURLsNone(t *testing.T) {
	if urls := ExtractURLs("no links here"); urls != nil {
		t.Fatalf("expected nil, got %v", urls)
	}
}

func TestRepairScheme(t *testing.T) {
	if got := RepairScheme("b1https://example.com"); got != "https://example.com" {
		t.Fatalf("unexpected repair: %q", got)
	}
	if got := RepairScheme("example.com"); got != "http://example.com" {
		t.Fatalf("unexpected repair: %q", got)
	}
}

func TestHostname(t *testing.T) {
	if got := Hostname("https://Example.COM/path"); got != "example.com" {
		t.Fatalf("unexpected hostname: %q", got)
	}
}

func TestResolveFollowsRedirects(t *testing.T) {
	var target *httptest.Server
	target = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer target.Close()

	hop := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target.URL+"/final", http.StatusFound)
	}))
	defer hop.Close()

	resolver := NewResolver(2 * time.Second)
	resolved := resolver.Resolve(context.Background(), hop.URL)
	if resolved != target.URL+"/final" {
		t.Fatalf("expected %q, got %q", target.URL+"/final", resolved)
	}
}

func TestResolveFallsBackOnTimeout(t *testing.T) {
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer slow.Close()

	resolver := NewResolver(50 * time.Millisecond)
	if resolved := resolver.Resolve(context.Background(), slow.URL); resolved != slow.URL {
		t.Fatalf("expected original url on timeout, got %q", resolved)
	}
}

func TestResolveFallsBackOnRedirectLoop(t *testing.T) {
	var loop *httptest.Server
	loop = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, loop.URL, http.StatusFound)
	}))
	defer loop.Close()

	resolver := NewResolver(2 * time.Second)
	if resolved := resolver.Resolve(context.Background(), loop.URL); resolved != loop.URL {
		t.Fatalf("expected original url on redirect loop, got %q", resolved)
	}
}
