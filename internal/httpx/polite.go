package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
	"golang.org/x/time/rate"
)

// ErrRobotsDisallowed is returned when robots.txt forbids fetching the page.
var ErrRobotsDisallowed = errors.New("blocked by robots.txt")

// PoliteClient is a net/http Fetcher that enforces per-host rate limits and robots.txt rules.
type PoliteClient struct {
	client      *http.Client
	opts        Options
	limiters    map[string]*rate.Limiter
	robotsCache map[string]*robotstxt.RobotsData
	mu          sync.Mutex
}

func NewPoliteClient(opts Options) *PoliteClient {
	opts = opts.withDefaults()
	return &PoliteClient{
		client:      &http.Client{Timeout: opts.Timeout},
		opts:        opts,
		limiters:    map[string]*rate.Limiter{},
		robotsCache: map[string]*robotstxt.RobotsData{},
	}
}

func (p *PoliteClient) limiterFor(host string) *rate.Limiter {
	p.mu.Lock()
	defer p.mu.Unlock()
	if l, ok := p.limiters[host]; ok {
		return l
	}
	l := rate.NewLimiter(p.opts.HostRate, p.opts.HostBurst)
	p.limiters[host] = l
	return l
}

// NewRequest builds an HTTP GET request with context and a safe URL defaulting to https.
func NewRequest(ctx context.Context, rawURL string) (*http.Request, error) {
	target, err := normalizeURL(rawURL)
	if err != nil {
		return nil, err
	}
	return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
}

func (p *PoliteClient) FetchPage(ctx context.Context, rawURL string) (Page, error) {
	req, err := NewRequest(ctx, rawURL)
	if err != nil {
		return Page{}, &FetchError{URL: rawURL, Err: err}
	}
	target := req.URL.String()

	resp, err := p.Do(ctx, req)
	if err != nil {
		return Page{}, &FetchError{URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, int64(p.opts.MaxBodySize)))
	if err != nil {
		return Page{}, &FetchError{URL: target, Status: resp.StatusCode, Err: err}
	}
	return Page{URL: resp.Request.URL.String(), Status: resp.StatusCode, Body: body}, nil
}

func (p *PoliteClient) robotsFor(ctx context.Context, u *url.URL) (*robotstxt.RobotsData, error) {
	host := u.Host
	p.mu.Lock()
	if data, ok := p.robotsCache[host]; ok {
		p.mu.Unlock()
		return data, nil
	}
	p.mu.Unlock()

	robotsURL := fmt.Sprintf("%s://%s/robots.txt", u.Scheme, u.Host)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, robotsURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", p.opts.UserAgent)

	if err := p.limiterFor(u.Hostname()).Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.robotsCache[host] = data
	p.mu.Unlock()
	return data, nil
}

// Do executes the request respecting robots.txt and rate limits. Responses with
// 429/503 are retried only when MaxAttempts allows it.
func (p *PoliteClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", p.opts.UserAgent)

	u := req.URL
	if ok := p.allowed(ctx, u, req.Method); !ok {
		return nil, fmt.Errorf("%w: %s", ErrRobotsDisallowed, u)
	}

	limiter := p.limiterFor(u.Hostname())

	var lastErr error
	for attempt := 0; attempt < p.opts.MaxAttempts; attempt++ {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}

		resp, err := p.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable
		if retryable && attempt < p.opts.MaxAttempts-1 {
			lastErr = fmt.Errorf("retryable status %d", resp.StatusCode)
			resp.Body.Close()
			backoff := time.Duration(500*(1<<attempt)) * time.Millisecond
			select {
			case <-time.After(backoff):
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		return resp, nil
	}

	if lastErr == nil {
		lastErr = errors.New("polite client: failed without error")
	}
	return nil, lastErr
}

func (p *PoliteClient) allowed(ctx context.Context, u *url.URL, method string) bool {
	if !strings.EqualFold(method, http.MethodGet) && !strings.EqualFold(method, http.MethodHead) {
		return false
	}
	data, err := p.robotsFor(ctx, u)
	if err != nil {
		return true // fail open
	}
	path := u.Path
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, p.opts.UserAgent)
}
