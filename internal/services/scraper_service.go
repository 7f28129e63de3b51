package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/markusmobius/go-trafilatura"
	cache "github.com/patrickmn/go-cache"
)

const (
	scraperUserAgent   = "Dayflow-Bot/1.0 (+https://dayflow.app/bot)"
	scraperMaxBodySize = 5 * 1024 * 1024
	scraperConcurrency = 8
	scraperGlobalRate  = 10.0
)

// PagePreview is the extracted summary of a web page, used to enrich
// resource candidates before the model decides what to save.
type PagePreview struct {
	Title   string
	Excerpt string
}

// ScraperService fetches pages politely and extracts readable content.
// Every fetch passes robots.txt, three-tier rate limiting, and a
// concurrency semaphore before touching the network.
type ScraperService struct {
	client        *http.Client
	rateLimiter   *RateLimiter
	robotsChecker *RobotsChecker
	previews      *cache.Cache
	semaphore     chan struct{}
}

// NewScraperService builds the scraper with its own pooled transport.
func NewScraperService() *ScraperService {
	transport := &http.Transport{
		MaxIdleConns:        50,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     20,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   15 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	}
	s := &ScraperService{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		rateLimiter:   NewRateLimiter(scraperGlobalRate),
		robotsChecker: NewRobotsChecker(scraperUserAgent),
		previews:      cache.New(1*time.Hour, 10*time.Minute),
		semaphore:     make(chan struct{}, scraperConcurrency),
	}
	log.Printf("✅ [SCRAPER] initialized: concurrency=%d, global_rate=%.0f req/s", scraperConcurrency, scraperGlobalRate)
	return s
}

// ExtractPreview fetches urlStr and returns its title and a short excerpt
// of the main content. Results are cached for an hour.
func (s *ScraperService) ExtractPreview(ctx context.Context, userID, urlStr string) (*PagePreview, error) {
	if err := validateScrapeURL(urlStr); err != nil {
		return nil, err
	}
	if cached, found := s.previews.Get(urlStr); found {
		return cached.(*PagePreview), nil
	}

	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}

	allowed, crawlDelay, err := s.robotsChecker.CanFetch(ctx, urlStr)
	if err != nil {
		crawlDelay = time.Second
	}
	if !allowed {
		return nil, fmt.Errorf("blocked by robots.txt: %s", urlStr)
	}
	if err := s.rateLimiter.Wait(ctx, userID, parsed.Host, crawlDelay); err != nil {
		return nil, err
	}

	select {
	case s.semaphore <- struct{}{}:
		defer func() { <-s.semaphore }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	body, err := s.fetch(ctx, urlStr)
	if err != nil {
		return nil, err
	}

	result, err := trafilatura.Extract(bytes.NewReader(body), trafilatura.Options{OriginalURL: parsed})
	if err != nil || result == nil || result.ContentText == "" {
		return nil, fmt.Errorf("no readable content at %s", urlStr)
	}

	excerpt := result.ContentText
	if len(excerpt) > 400 {
		excerpt = excerpt[:400]
	}
	preview := &PagePreview{
		Title:   result.Metadata.Title,
		Excerpt: strings.TrimSpace(excerpt),
	}
	s.previews.Set(urlStr, preview, cache.DefaultExpiration)
	return preview, nil
}

func (s *ScraperService) fetch(ctx context.Context, urlStr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", scraperUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, urlStr)
	}
	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if !strings.Contains(contentType, "text/html") && !strings.Contains(contentType, "text/plain") &&
		!strings.Contains(contentType, "application/xhtml+xml") {
		return nil, fmt.Errorf("unsupported content type %s", contentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, scraperMaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) >= scraperMaxBodySize {
		return nil, fmt.Errorf("page too large (over %d bytes)", scraperMaxBodySize)
	}
	return body, nil
}

// validateScrapeURL blocks non-HTTP schemes, localhost and private ranges.
func validateScrapeURL(urlStr string) error {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("only HTTP/HTTPS URLs are supported, got %q", parsed.Scheme)
	}

	hostname := strings.ToLower(parsed.Hostname())
	if hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1" {
		return fmt.Errorf("localhost URLs are not allowed")
	}
	privateRanges := []string{
		"192.168.", "10.", "172.16.", "172.17.", "172.18.", "172.19.",
		"172.20.", "172.21.", "172.22.", "172.23.", "172.24.", "172.25.",
		"172.26.", "172.27.", "172.28.", "172.29.", "172.30.", "172.31.",
		"169.254.", "fd",
	}
	for _, prefix := range privateRanges {
		if strings.HasPrefix(hostname, prefix) {
			return fmt.Errorf("private addresses are not allowed")
		}
	}
	return nil
}
