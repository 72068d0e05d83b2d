package httpx

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"
)

const (
	// DefaultUserAgent identifies the extractor to recipe sites.
	DefaultUserAgent = "Mozilla/5.0 (compatible; recipe-hunter/1.0)"
	// DefaultTimeout bounds a single page request.
	DefaultTimeout = 15 * time.Second
	// DefaultMaxBodySize caps the bytes read from one page (10MB).
	DefaultMaxBodySize = 10 * 1024 * 1024
)

// Page is the raw result of fetching one URL. Body is returned for every status code.
type Page struct {
	URL    string
	Status int
	Body   []byte
}

// Fetcher retrieves the raw bytes of a page.
type Fetcher interface {
	FetchPage(ctx context.Context, rawURL string) (Page, error)
}

// Options configures the fetchers. Zero fields take the defaults.
type Options struct {
	UserAgent   string
	Timeout     time.Duration
	MaxBodySize int
	// MaxAttempts is the number of tries for 429/5xx responses. Default 1, no retry.
	MaxAttempts int
	HostRate    rate.Limit
	HostBurst   int
}

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MaxBodySize <= 0 {
		o.MaxBodySize = DefaultMaxBodySize
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 1
	}
	if o.HostRate <= 0 {
		o.HostRate = rate.Every(time.Second)
	}
	if o.HostBurst <= 0 {
		o.HostBurst = 2
	}
	return o
}

// CollyFetcher wraps Colly for polite HTML fetching with per-host rate limits.
type CollyFetcher struct {
	opts  Options
	mu    sync.Mutex
	hosts map[string]*hostPolicy
}

type hostPolicy struct {
	limiter     *rate.Limiter
	nextAllowed time.Time
	mu          sync.Mutex
}

// FetchError is a transport failure: the page could not be retrieved at all,
// or every attempt ended in a retryable status.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("fetch %s failed (status %d)", e.URL, e.Status)
	}
	return fmt.Sprintf("fetch %s failed (status %d): %v", e.URL, e.Status, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func NewCollyFetcher(opts Options) *CollyFetcher {
	return &CollyFetcher{
		opts:  opts.withDefaults(),
		hosts: make(map[string]*hostPolicy),
	}
}

func (f *CollyFetcher) SetHostLimit(host string, per time.Duration, burst int) {
	if host == "" || per <= 0 || burst <= 0 {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	key := normalizeHost(host)
	policy := f.getOrCreatePolicyLocked(key)
	policy.mu.Lock()
	policy.limiter = rate.NewLimiter(rate.Every(per), burst)
	policy.mu.Unlock()
}

func (f *CollyFetcher) FetchPage(ctx context.Context, rawURL string) (Page, error) {
	target, err := normalizeURL(rawURL)
	if err != nil {
		return Page{}, &FetchError{URL: rawURL, Err: err}
	}
	host := hostKey(target)

	var (
		page    Page
		lastErr error
	)
	for attempt := 0; attempt < f.opts.MaxAttempts; attempt++ {
		if err := f.waitForHost(ctx, host); err != nil {
			return Page{}, &FetchError{URL: target, Err: err}
		}
		page, lastErr = f.fetchOnce(ctx, target)
		if lastErr != nil {
			return page, &FetchError{URL: target, Status: page.Status, Err: lastErr}
		}
		if !shouldBackoff(page.Status) || attempt == f.opts.MaxAttempts-1 {
			return page, nil
		}
		f.applyBackoff(host, attempt)
	}
	return page, nil
}

func (f *CollyFetcher) fetchOnce(ctx context.Context, target string) (Page, error) {
	c := f.newCollector()

	page := Page{URL: target}
	var reqErr error
	c.OnResponse(func(r *colly.Response) {
		page.Status = r.StatusCode
		page.Body = append([]byte(nil), r.Body...)
		if r.Request != nil && r.Request.URL != nil {
			page.URL = r.Request.URL.String()
		}
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			page.Status = r.StatusCode
		}
		reqErr = err
	})

	collyCtx := colly.NewContext()
	collyCtx.Put("ctx", ctx)

	if err := c.Request(http.MethodGet, target, nil, collyCtx, nil); err != nil {
		return page, err
	}
	if reqErr != nil {
		return page, reqErr
	}
	if ctx.Err() != nil {
		return page, ctx.Err()
	}
	return page, nil
}

func (f *CollyFetcher) newCollector() *colly.Collector {
	c := colly.NewCollector(
		colly.UserAgent(f.opts.UserAgent),
		colly.MaxBodySize(f.opts.MaxBodySize),
	)
	c.IgnoreRobotsTxt = false
	c.ParseHTTPErrorResponse = true
	c.SetRequestTimeout(f.opts.Timeout)

	c.OnRequest(func(r *colly.Request) {
		ctx := context.Background()
		if v := r.Ctx.GetAny("ctx"); v != nil {
			if reqCtx, ok := v.(context.Context); ok {
				ctx = reqCtx
			}
		}
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	return c
}

func (f *CollyFetcher) waitForHost(ctx context.Context, host string) error {
	policy := f.hostPolicy(host)
	if err := policy.waitBackoff(ctx); err != nil {
		return err
	}
	return policy.limiter.Wait(ctx)
}

func (f *CollyFetcher) hostPolicy(host string) *hostPolicy {
	key := normalizeHost(host)
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.getOrCreatePolicyLocked(key)
}

func (f *CollyFetcher) getOrCreatePolicyLocked(host string) *hostPolicy {
	if host == "" {
		host = "default"
	}
	if policy, ok := f.hosts[host]; ok {
		return policy
	}
	policy := &hostPolicy{
		limiter: rate.NewLimiter(f.opts.HostRate, f.opts.HostBurst),
	}
	f.hosts[host] = policy
	return policy
}

func (f *CollyFetcher) applyBackoff(host string, attempt int) {
	if attempt < 0 {
		attempt = 0
	}
	policy := f.hostPolicy(host)
	delay := time.Duration(500*(1<<attempt)) * time.Millisecond
	policy.mu.Lock()
	next := time.Now().Add(delay)
	if next.After(policy.nextAllowed) {
		policy.nextAllowed = next
	}
	policy.mu.Unlock()
}

func normalizeURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", errors.New("empty url")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" {
		u, err = url.Parse("https://" + rawURL)
		if err != nil {
			return "", err
		}
	}
	return u.String(), nil
}

func normalizeHost(host string) string {
	host = strings.ToLower(host)
	host = strings.TrimPrefix(host, "www.")
	return host
}

func hostKey(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "default"
	}
	return normalizeHost(u.Hostname())
}

func shouldBackoff(status int) bool {
	if status == http.StatusTooManyRequests {
		return true
	}
	if status >= 500 && status <= 599 {
		return true
	}
	return false
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *hostPolicy) waitBackoff(ctx context.Context) error {
	for {
		p.mu.Lock()
		next := p.nextAllowed
		p.mu.Unlock()
		now := time.Now()
		if !now.Before(next) {
			return nil
		}
		if err := sleepWithContext(ctx, next.Sub(now)); err != nil {
			return err
		}
	}
}

// NewFetcher returns the PoliteClient for kind "http" and a CollyFetcher otherwise.
func NewFetcher(kind string, opts Options) Fetcher {
	if kind == "http" {
		return NewPoliteClient(opts)
	}
	return NewCollyFetcher(opts)
}
