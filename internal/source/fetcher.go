package source

import (
	"context"
	"io"
	"math"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/rs/dnscache"

	"github.com/cruciblehq/pkgerd/internal/errctx"
)

// Fetcher downloads source and patch entries named by an http(s) URL.
// Adapted from git-pkgs-registries' fetch.Fetcher: a dnscache-backed
// dialer so repeated fetches against the same upstream (common across a
// build matrix's many image/target combinations) don't re-resolve DNS
// every time, plus bounded exponential-backoff retry on transient
// upstream failure.
type Fetcher struct {
	client     *http.Client
	userAgent  string
	maxRetries int
	baseDelay  time.Duration
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithMaxRetries overrides the default retry budget.
func WithMaxRetries(n int) FetcherOption {
	return func(f *Fetcher) { f.maxRetries = n }
}

// NewFetcher constructs a Fetcher with a DNS-caching transport.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	resolver := &dnscache.Resolver{}
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			resolver.Refresh(true)
		}
	}()

	dialer := &net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}

	f := &Fetcher{
		client: &http.Client{
			Timeout: 10 * time.Minute, // source archives can be large
			Transport: &http.Transport{
				DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
					host, port, err := net.SplitHostPort(addr)
					if err != nil {
						return nil, err
					}
					ips, err := resolver.LookupHost(ctx, host)
					if err != nil {
						return nil, err
					}
					var lastErr error
					for _, ip := range ips {
						conn, err := dialer.DialContext(ctx, network, net.JoinHostPort(ip, port))
						if err == nil {
							return conn, nil
						}
						lastErr = err
					}
					return nil, lastErr
				},
				MaxIdleConns:          100,
				MaxIdleConnsPerHost:   10,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   10 * time.Second,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		userAgent:  "pkger/1.0",
		maxRetries: 3,
		baseDelay:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads url, retrying transient failures with jittered
// exponential backoff. The caller must close the returned body.
func (f *Fetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			delay := f.baseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			jitter := time.Duration(float64(delay) * (rand.Float64() * 0.1))
			delay += jitter

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}

		body, retryable, err := f.doFetch(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, errctx.Wrap(ErrUnreachable, lastErr)
}

func (f *Fetcher) doFetch(ctx context.Context, url string) (io.ReadCloser, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, errctx.Wrap(ErrSource, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, errctx.Wrap(ErrSource, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		return resp.Body, false, nil
	case resp.StatusCode == http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, false, errctx.Wrapf(ErrSource, "%s: not found", url)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		_ = resp.Body.Close()
		return nil, true, errctx.Wrapf(ErrSource, "%s: upstream status %d", url, resp.StatusCode)
	default:
		_ = resp.Body.Close()
		return nil, false, errctx.Wrapf(ErrSource, "%s: unexpected status %d", url, resp.StatusCode)
	}
}
