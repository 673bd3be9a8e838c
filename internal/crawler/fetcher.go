package crawler

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"webseek/pkg/config"
	werrors "webseek/pkg/errors"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 10 << 20

// FetchResult is a successfully retrieved page body plus the URL it finally
// resolved to after redirects.
type FetchResult struct {
	CanonicalURL string
	Body         []byte
}

// Fetcher retrieves pages over HTTP with a bounded timeout, a fixed user
// agent, and a politeness rate limit between requests. Redirects are
// followed; the canonical URL is the one that actually answered.
type Fetcher struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
}

// NewFetcher builds a Fetcher from crawler configuration.
func NewFetcher(cfg config.CrawlerConfig) *Fetcher {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 1
	}
	return &Fetcher{
		client:    &http.Client{Timeout: cfg.FetchTimeout},
		userAgent: cfg.UserAgent,
		limiter:   rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Fetch retrieves one URL. Transport failures, timeouts, and non-2xx
// responses all wrap ErrFetchFailed.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*FetchResult, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", werrors.ErrFetchFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request for %s: %v", werrors.ErrFetchFailed, url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", werrors.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s returned status %d", werrors.ErrFetchFailed, url, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body of %s: %v", werrors.ErrFetchFailed, url, err)
	}

	return &FetchResult{
		CanonicalURL: resp.Request.URL.String(),
		Body:         body,
	}, nil
}
