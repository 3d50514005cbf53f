package util

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRobotsChecker_CanFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/robots.txt" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = fmt.Fprint(w, "User-agent: Originality\nDisallow: /search\nCrawl-delay: 2\n\nUser-agent: *\nAllow: /\n")
	}))
	defer server.Close()

	checker := NewRobotsChecker("Originality/0.1", 5*time.Second)

	allowed, delay, err := checker.CanFetch(context.Background(), server.URL+"/search?q=x")
	if err != nil {
		t.Fatalf("CanFetch failed: %v", err)
	}
	if allowed {
		t.Error("expected /search to be disallowed")
	}
	if delay != 2*time.Second {
		t.Errorf("expected crawl delay 2s, got %v", delay)
	}

	allowed, _, err = checker.CanFetch(context.Background(), server.URL+"/about")
	if err != nil {
		t.Fatalf("CanFetch failed: %v", err)
	}
	if !allowed {
		t.Error("expected /about to be allowed")
	}
}

func TestRobotsChecker_MissingRobots(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	checker := NewRobotsChecker("Originality/0.1", 5*time.Second)
	allowed, _, err := checker.CanFetch(context.Background(), server.URL+"/search")
	if err != nil {
		t.Fatalf("CanFetch failed: %v", err)
	}
	if !allowed {
		t.Error("expected missing robots.txt to allow everything")
	}
}

func TestRobotsChecker_Unreachable(t *testing.T) {
	checker := NewRobotsChecker("Originality/0.1", 200*time.Millisecond)
	allowed, _, err := checker.CanFetch(context.Background(), "http://127.0.0.1:1/search")
	if !errors.Is(err, ErrRobotsTemporary) {
		t.Fatalf("expected ErrRobotsTemporary, got %v", err)
	}
	if !allowed {
		t.Error("expected unreachable robots.txt to allow")
	}
}

func TestRobotsChecker_ServerErrorNotCached(t *testing.T) {
	var fail atomic.Bool
	fail.Store(true)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, "User-agent: *\nAllow: /\n")
	}))
	defer server.Close()

	checker := NewRobotsChecker("Originality/0.1", 5*time.Second)

	allowed, _, err := checker.CanFetch(context.Background(), server.URL+"/search")
	if !errors.Is(err, ErrRobotsTemporary) {
		t.Fatalf("expected ErrRobotsTemporary, got %v", err)
	}
	if allowed {
		t.Error("expected 5xx robots.txt to disallow for now")
	}

	fail.Store(false)
	allowed, _, err = checker.CanFetch(context.Background(), server.URL+"/search")
	if err != nil || !allowed {
		t.Errorf("expected recovery after 5xx, got allowed=%v err=%v", allowed, err)
	}
}

func TestNormalizeUserAgent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Originality/0.1", "Originality"},
		{"Mozilla/5.0 (compatible; Originality/0.1; +https://example.com)", "Originality"},
		{"curl/8.0 extra", "curl"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := NormalizeUserAgent(tt.in); got != tt.want {
			t.Errorf("NormalizeUserAgent(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewProxyFunc(t *testing.T) {
	fn := NewProxyFunc("http://proxy.internal:3128", "", "search.internal")

	req, _ := http.NewRequest(http.MethodGet, "https://www.bing.com/search", nil)
	proxy, err := fn(req)
	if err != nil {
		t.Fatalf("proxy func failed: %v", err)
	}
	if proxy == nil || proxy.Host != "proxy.internal:3128" {
		t.Errorf("expected https to fall back to the http proxy, got %v", proxy)
	}

	req, _ = http.NewRequest(http.MethodGet, "http://search.internal/q", nil)
	proxy, err = fn(req)
	if err != nil {
		t.Fatalf("proxy func failed: %v", err)
	}
	if proxy != nil {
		t.Errorf("expected NO_PROXY host to bypass the proxy, got %v", proxy)
	}
}
