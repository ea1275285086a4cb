package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/vizlab/pkg/errors"
	"github.com/matzehuels/vizlab/pkg/observability"
)

// DefaultTimeout bounds a single request attempt.
const DefaultTimeout = 30 * time.Second

// MaxBodySize caps how much of a response body is read.
const MaxBodySize = 64 << 20

// Fetcher downloads remote data files with caching and retries.
type Fetcher struct {
	http    *http.Client
	cache   *Cache
	headers map[string]string
	backoff Backoff
}

// NewFetcher creates a Fetcher. A nil cache disables caching. Headers are
// sent with every request.
func NewFetcher(cache *Cache, headers map[string]string) *Fetcher {
	return &Fetcher{
		http:    &http.Client{Timeout: DefaultTimeout},
		cache:   cache,
		headers: headers,
		backoff: DefaultBackoff,
	}
}

// WithBackoff replaces the retry policy.
func (f *Fetcher) WithBackoff(b Backoff) *Fetcher {
	f.backoff = b
	return f
}

// WithClient replaces the HTTP client, mainly for tests.
func (f *Fetcher) WithClient(c *http.Client) *Fetcher {
	f.http = c
	return f
}

// Fetch returns the body at url. Unless refresh is set, a fresh cache entry
// is returned without touching the network. Network failures and 5xx
// responses are retried with backoff; a successful body is cached.
func (f *Fetcher) Fetch(ctx context.Context, url string, refresh bool) ([]byte, error) {
	if f.cache != nil && !refresh {
		var body []byte
		if ok, _ := f.cache.Get(url, &body); ok {
			return body, nil
		}
	}
	var body []byte
	err := f.backoff.Do(ctx, func() error {
		b, err := f.get(ctx, url)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	if f.cache != nil {
		_ = f.cache.Set(url, body)
	}
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid URL %s", url)
	}
	for k, v := range f.headers {
		req.Header.Set(k, v)
	}
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)
	start := time.Now()
	resp, err := f.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, Transient(errors.Wrap(errors.ErrCodeNetwork, err, "fetch %s", url))
	}
	defer resp.Body.Close()
	hooks.OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	if err := checkStatus(url, resp); err != nil {
		return nil, err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, Transient(errors.Wrap(errors.ErrCodeNetwork, err, "read %s", url))
	}
	return body, nil
}

func checkStatus(url string, resp *http.Response) error {
	code := resp.StatusCode
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return errors.New(errors.ErrCodeFileNotFound, "%s not found", url)
	case code == http.StatusTooManyRequests || code >= 500:
		return &TransientError{
			Err:   errors.New(errors.ErrCodeNetwork, "fetch %s: status %d", url, code),
			After: retryAfter(resp.Header),
		}
	default:
		return errors.Wrap(errors.ErrCodeNetwork, fmt.Errorf("status %d", code), "fetch %s", url)
	}
}
