package fetcher

import (
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/brotli"
)

const (
	defaultMaxAttempts = 3
	minRetryDelay      = 500 * time.Millisecond
	maxRetryDelay      = 2 * time.Second
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/93.0.4577.82 Safari/537.36",
	"Mozilla/5.0 (iPhone; CPU iPhone OS 14_4_2 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/14.0.3 Mobile/15E148 Safari/604.1",
	"Mozilla/4.0 (compatible; MSIE 9.0; Windows NT 6.1)",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/87.0.4280.141 Safari/537.36 Edg/87.0.664.75",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/70.0.3538.102 Safari/537.36 Edge/18.18363",
}

// headerSets is the fixed pool the Fetcher rotates through; one set is
// picked pseudo-randomly per request to vary the fingerprint.
var headerSets = []map[string]string{
	{
		"Accept-Language":           "en-US,en;q=0.9",
		"Accept-Encoding":           "gzip, deflate, br",
		"Connection":                "keep-alive",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "same-origin",
		"Sec-Fetch-User":            "?1",
	},
	{
		"Upgrade-Insecure-Requests": "1",
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.9",
		"Sec-Ch-Ua":                 `".Not/A)Brand";v="99", "Google Chrome";v="103", "Chromium";v="103"`,
		"Sec-Ch-Ua-Mobile":          "?0",
		"Sec-Ch-Ua-Platform":        `"Linux"`,
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
		"Accept-Encoding":           "gzip, deflate, br",
		"Accept-Language":           "fr-CH,fr;q=0.9,en-US;q=0.8,en;q=0.7",
	},
}

// Fetcher issues polite, fingerprint-rotating GETs against the target site.
type Fetcher struct {
	client      *http.Client
	maxAttempts int
	delayFn     func(attempt int) time.Duration
}

func New() *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxAttempts: defaultMaxAttempts,
	}
}

// Get fetches a page and returns the parsed document. Non-200 responses and
// transport errors are retried with uniform jitter that grows with the
// attempt number; exhausted retries surface as a single wrapped error and
// the caller decides whether that kills the whole run or only one ad.
func (f *Fetcher) Get(ctx context.Context, url string) (*goquery.Document, error) {
	var lastErr error

	for attempt := 1; attempt <= f.maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-time.After(f.retryDelay(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		doc, err := f.fetchOnce(ctx, url)
		if err == nil {
			return doc, nil
		}
		lastErr = err
		log.Printf("fetch %s: attempt %d/%d: %v", url, attempt, f.maxAttempts, err)
	}

	return nil, fmt.Errorf("fetch %s: %w", url, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	applyHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body := io.Reader(resp.Body)
	// net/http undoes gzip transparently but never brotli.
	if resp.Header.Get("Content-Encoding") == "br" {
		body = brotli.NewReader(resp.Body)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse body: %w", err)
	}
	return doc, nil
}

func (f *Fetcher) retryDelay(attempt int) time.Duration {
	if f.delayFn != nil {
		return f.delayFn(attempt)
	}
	jitter := minRetryDelay + time.Duration(rand.Int63n(int64(maxRetryDelay-minRetryDelay)))
	return jitter * time.Duration(attempt-1)
}

// Pause sleeps a jittered politeness delay between ad fetches. This is rate
// limiting toward the remote site, not local resource protection.
func (f *Fetcher) Pause(ctx context.Context) {
	delay := 500*time.Millisecond + time.Duration(rand.Int63n(int64(time.Second)))
	select {
	case <-time.After(delay):
	case <-ctx.Done():
	}
}

func applyHeaders(req *http.Request) {
	set := headerSets[rand.Intn(len(headerSets))]
	for k, v := range set {
		req.Header.Set(k, v)
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
}
