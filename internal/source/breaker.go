package source

import (
	"context"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"

	"github.com/cruciblehq/pkgerd/internal/errctx"
)

// BreakingFetcher wraps a Fetcher with one circuit breaker per upstream
// host, so a dead mirror used by several recipes trips once instead of
// having every job in the build matrix independently exhaust its own
// retry budget against it. Adapted from git-pkgs-registries'
// fetch.CircuitBreakerFetcher.
type BreakingFetcher struct {
	fetcher  *Fetcher
	breakers map[string]*circuit.Breaker
	mu       sync.Mutex
}

// NewBreakingFetcher wraps f with per-host circuit breaking.
func NewBreakingFetcher(f *Fetcher) *BreakingFetcher {
	return &BreakingFetcher{fetcher: f, breakers: make(map[string]*circuit.Breaker)}
}

func (b *BreakingFetcher) breakerFor(host string) *circuit.Breaker {
	b.mu.Lock()
	defer b.mu.Unlock()

	if br, ok := b.breakers[host]; ok {
		return br
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 30 * time.Second
	expBackoff.MaxInterval = 5 * time.Minute
	expBackoff.Multiplier = 2.0
	expBackoff.Reset()

	br := circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    expBackoff,
		ShouldTrip: circuit.ThresholdTripFunc(5),
	})
	b.breakers[host] = br
	return br
}

// Fetch downloads rawURL, refusing to even attempt it while that host's
// breaker is tripped.
func (b *BreakingFetcher) Fetch(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	host := hostOf(rawURL)
	br := b.breakerFor(host)

	if !br.Ready() {
		return nil, errctx.Wrapf(ErrUnreachable, "circuit open for %s", host)
	}

	var body io.ReadCloser
	err := br.Call(func() error {
		var fetchErr error
		body, fetchErr = b.fetcher.Fetch(ctx, rawURL)
		return fetchErr
	}, 0)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}
