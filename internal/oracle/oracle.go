// Package oracle decides whether a phrase already exists on the public web by
// querying a search provider for an exact-phrase match.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/ppiankov/originality/internal/model"
	"github.com/ppiankov/originality/internal/util"
	"github.com/ppiankov/originality/internal/worker"
)

// Oracle returns true when text appears to exist elsewhere (plagiarised)
type Oracle interface {
	Check(ctx context.Context, text string) (bool, error)
}

// Func adapts a plain function to the Oracle interface
type Func func(ctx context.Context, text string) (bool, error)

// Check calls f
func (f Func) Check(ctx context.Context, text string) (bool, error) {
	return f(ctx, text)
}

// SearchOracle queries a search provider and inspects the response for its
// "no results" marker
type SearchOracle struct {
	fetcher  *Fetcher
	provider model.ProviderConfig
	matcher  *Matcher
	limiter  *worker.Limiter
	robots   *util.RobotsChecker

	robotsMu   sync.Mutex
	robotsDone bool
	robotsErr  error
}

// Option configures a SearchOracle
type Option func(*SearchOracle)

// WithLimiter throttles provider requests
func WithLimiter(l *worker.Limiter) Option {
	return func(o *SearchOracle) { o.limiter = l }
}

// WithRobots consults the provider's robots.txt before the first query
func WithRobots(r *util.RobotsChecker) Option {
	return func(o *SearchOracle) { o.robots = r }
}

// NewSearchOracle creates an oracle for the configured provider
func NewSearchOracle(fetcher *Fetcher, provider model.ProviderConfig, opts ...Option) (*SearchOracle, error) {
	if _, err := BuildSearchURL(provider.Endpoint, provider.QueryParam, provider.QueryPrefix, "probe"); err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}

	matcher, err := NewMatcher(provider.MatchMode, provider.NoResultsMarker, provider.ResultsMarker)
	if err != nil {
		return nil, fmt.Errorf("provider: %w", err)
	}

	o := &SearchOracle{
		fetcher:  fetcher,
		provider: provider,
		matcher:  matcher,
	}
	for _, opt := range opts {
		opt(o)
	}

	return o, nil
}

// SearchURL returns the provider URL for an exact-phrase search of text
func (o *SearchOracle) SearchURL(text string) string {
	u, _ := BuildSearchURL(o.provider.Endpoint, o.provider.QueryParam, o.provider.QueryPrefix, text)
	return u
}

// Check queries the provider for text. Transport failures and non-2xx responses
// wrap model.ErrProviderUnavailable; unclassifiable bodies wrap
// model.ErrUnrecognizedResponse.
func (o *SearchOracle) Check(ctx context.Context, text string) (bool, error) {
	searchURL := o.SearchURL(text)

	if err := o.checkRobots(ctx, searchURL); err != nil {
		return false, err
	}

	if o.limiter != nil {
		if err := o.limiter.Wait(ctx, searchURL); err != nil {
			return false, fmt.Errorf("%w: rate limit wait: %w", model.ErrProviderUnavailable, err)
		}
	}

	result, err := o.fetcher.Fetch(ctx, searchURL)
	if err != nil {
		return false, fmt.Errorf("%w: %w", model.ErrProviderUnavailable, err)
	}

	return o.matcher.Classify(result.Body, text)
}

// checkRobots consults robots.txt until it gives a definite answer, then remembers
// it. A temporary failure only decides the current query.
func (o *SearchOracle) checkRobots(ctx context.Context, searchURL string) error {
	if o.robots == nil {
		return nil
	}

	o.robotsMu.Lock()
	defer o.robotsMu.Unlock()

	if o.robotsDone {
		return o.robotsErr
	}

	allowed, delay, err := o.robots.CanFetch(ctx, searchURL)
	temporary := errors.Is(err, util.ErrRobotsTemporary)
	if err != nil && !temporary {
		return fmt.Errorf("robots.txt: %w", err)
	}
	if !allowed {
		disallowed := fmt.Errorf("%w: %s", model.ErrProviderDisallowed, o.provider.Endpoint)
		if !temporary {
			o.robotsDone, o.robotsErr = true, disallowed
		}
		return disallowed
	}
	if temporary {
		return nil
	}

	if delay > 0 && o.limiter != nil {
		if u, err := url.Parse(searchURL); err == nil {
			o.limiter.SetCrawlDelay(u.Host, delay)
		}
	}
	o.robotsDone = true
	return nil
}

// IsProviderError reports whether err came from the provider rather than the caller
func IsProviderError(err error) bool {
	return errors.Is(err, model.ErrProviderUnavailable) ||
		errors.Is(err, model.ErrUnrecognizedResponse) ||
		errors.Is(err, model.ErrProviderDisallowed)
}
