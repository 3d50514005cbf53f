package util

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

// RobotsChecker checks robots.txt compliance for the search provider
type RobotsChecker struct {
	cache      map[string]*robotstxt.RobotsData
	mu         sync.RWMutex
	httpClient *http.Client
	userAgent  string
}

// NewRobotsChecker creates a new robots.txt checker
func NewRobotsChecker(userAgent string, timeout time.Duration) *RobotsChecker {
	return &RobotsChecker{
		cache: make(map[string]*robotstxt.RobotsData),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// ErrRobotsTemporary marks a robots.txt answer that must not be remembered: the file
// was unreachable, unparseable or answered 5xx. The allowed flag still applies to
// the current request.
var ErrRobotsTemporary = errors.New("robots.txt temporarily unavailable")

// CanFetch checks if the URL can be fetched according to robots.txt
// Returns (allowed, crawlDelay, error). An unreachable robots.txt allows the request
// and a 5xx disallows it, both with ErrRobotsTemporary.
func (r *RobotsChecker) CanFetch(ctx context.Context, rawURL string) (bool, time.Duration, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, 0, fmt.Errorf("parse URL: %w", err)
	}

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", parsed.Scheme, parsed.Host)

	data, cached, err := r.getRobotsData(ctx, parsed.Host, robotsURL)
	if err != nil {
		return true, 0, fmt.Errorf("%w: %w", ErrRobotsTemporary, err)
	}

	agent := NormalizeUserAgent(r.userAgent)
	allowed := data.TestAgent(parsed.Path, agent)

	crawlDelay := time.Duration(0)
	if group := data.FindGroup(agent); group != nil {
		crawlDelay = group.CrawlDelay
	}

	if !cached {
		return allowed, crawlDelay, fmt.Errorf("%w: server error", ErrRobotsTemporary)
	}
	return allowed, crawlDelay, nil
}

// getRobotsData fetches robots.txt and caches it unless the server answered 5xx
func (r *RobotsChecker) getRobotsData(ctx context.Context, host string, robotsURL string) (*robotstxt.RobotsData, bool, error) {
	r.mu.RLock()
	data, exists := r.cache[host]
	r.mu.RUnlock()

	if exists {
		return data, true, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, false, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err = robotstxt.FromResponse(resp)
	if err != nil {
		return nil, false, fmt.Errorf("parse robots.txt: %w", err)
	}

	if resp.StatusCode >= 500 {
		return data, false, nil
	}

	r.mu.Lock()
	r.cache[host] = data
	r.mu.Unlock()

	return data, true, nil
}

// NormalizeUserAgent extracts the product token used for robots.txt matching.
// Browser-style agents such as "Mozilla/5.0 (compatible; Originality/0.1; ...)"
// are matched by the product named inside the comment.
func NormalizeUserAgent(ua string) string {
	if open := strings.Index(ua, "("); open >= 0 {
		if end := strings.Index(ua[open:], ")"); end > 0 {
			for _, part := range strings.Split(ua[open+1:open+end], ";") {
				part = strings.TrimSpace(part)
				if part == "" || part == "compatible" || strings.HasPrefix(part, "+") {
					continue
				}
				return strings.Split(part, "/")[0]
			}
		}
	}

	parts := strings.Fields(ua)
	if len(parts) > 0 {
		return strings.Split(parts[0], "/")[0]
	}
	return ua
}
