package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	cache "github.com/patrickmn/go-cache"

	"dayflow/internal/models"
)

// SearchService turns web searches into resource candidates. It queries
// SearXNG instances round-robin, scores and categorizes the hits, and
// optionally enriches the top hit's description through the scraper.
type SearchService struct {
	urls    []string
	counter uint64
	client  *http.Client
	scraper *ScraperService
	results *cache.Cache
}

// NewSearchService builds the service. urls are SearXNG base URLs; an empty
// list disables search (callers should then gate the tool off). scraper may
// be nil to skip description enrichment.
func NewSearchService(urls []string, scraper *ScraperService) *SearchService {
	cleaned := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSuffix(strings.TrimSpace(u), "/")
		if u != "" {
			cleaned = append(cleaned, u)
		}
	}
	if len(cleaned) > 0 {
		log.Printf("🔍 [SEARCH] %d SearXNG instance(s) configured", len(cleaned))
	}
	return &SearchService{
		urls:    cleaned,
		client:  &http.Client{Timeout: 30 * time.Second},
		scraper: scraper,
		results: cache.New(5*time.Minute, time.Minute),
	}
}

// Enabled reports whether any search backend is configured.
func (s *SearchService) Enabled() bool {
	return len(s.urls) > 0
}

type searxResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}

// SearchResources runs the query and returns at most maxResults scored
// candidates. Results are cached per query for five minutes.
func (s *SearchService) SearchResources(ctx context.Context, query string, maxResults int) ([]models.ResourceCandidate, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("no search backend configured")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}

	cacheKey := fmt.Sprintf("%s:%d", strings.ToLower(query), maxResults)
	if cached, found := s.results.Get(cacheKey); found {
		return cached.([]models.ResourceCandidate), nil
	}

	raw, err := s.queryInstances(ctx, query)
	if err != nil {
		if m := GetMetrics(); m != nil {
			m.RecordSearchRequest("error")
		}
		return nil, err
	}
	if m := GetMetrics(); m != nil {
		m.RecordSearchRequest("ok")
	}

	candidates := make([]models.ResourceCandidate, 0, maxResults)
	for i, hit := range raw.Results {
		if len(candidates) >= maxResults {
			break
		}
		if hit.URL == "" || hit.Title == "" {
			continue
		}
		candidates = append(candidates, models.ResourceCandidate{
			Title:          hit.Title,
			URL:            hit.URL,
			Description:    hit.Content,
			Category:       categorizeURL(hit.URL, hit.Title),
			RelevanceScore: scoreHit(i, query, hit.Title, hit.Content),
		})
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no results for %q", query)
	}

	// Best hit gets a real excerpt when its snippet is thin.
	if s.scraper != nil && len(candidates) > 0 && len(candidates[0].Description) < 60 {
		previewCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if preview, err := s.scraper.ExtractPreview(previewCtx, "search", candidates[0].URL); err == nil && preview.Excerpt != "" {
			candidates[0].Description = preview.Excerpt
		}
		cancel()
	}

	s.results.Set(cacheKey, candidates, cache.DefaultExpiration)
	return candidates, nil
}

// queryInstances tries each configured instance round-robin until one
// answers.
func (s *SearchService) queryInstances(ctx context.Context, query string) (*searxResponse, error) {
	start := atomic.AddUint64(&s.counter, 1) - 1
	var lastErr error
	for attempt := 0; attempt < len(s.urls); attempt++ {
		base := s.urls[(start+uint64(attempt))%uint64(len(s.urls))]
		result, err := s.queryOne(ctx, base, query)
		if err == nil {
			return result, nil
		}
		log.Printf("⚠️ [SEARCH] instance %s failed: %v", base, err)
		lastErr = err
	}
	return nil, fmt.Errorf("all %d search instances failed: %w", len(s.urls), lastErr)
}

func (s *SearchService) queryOne(ctx context.Context, base, query string) (*searxResponse, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s&format=json&safesearch=1", base, url.QueryEscape(query))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", scraperUserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, err
	}
	var result searxResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("parse results: %w", err)
	}
	return &result, nil
}

// categorizeURL guesses the resource category from the hit's host and title.
func categorizeURL(rawURL, title string) string {
	host := ""
	if parsed, err := url.Parse(rawURL); err == nil {
		host = strings.ToLower(parsed.Host)
	}
	lowerTitle := strings.ToLower(title)

	switch {
	case strings.Contains(host, "youtube.") || strings.Contains(host, "youtu.be") ||
		strings.Contains(host, "vimeo."):
		return models.ResourceCategoryVideo
	case strings.Contains(host, "coursera.") || strings.Contains(host, "udemy.") ||
		strings.Contains(host, "edx.") || strings.Contains(lowerTitle, "course"):
		return models.ResourceCategoryCourse
	case strings.Contains(host, "github.") || strings.Contains(host, "gitlab.") ||
		strings.Contains(lowerTitle, "tool") || strings.Contains(lowerTitle, "app"):
		return models.ResourceCategoryTool
	default:
		return models.ResourceCategoryArticle
	}
}

// scoreHit ranks a result by position and term overlap with the query.
func scoreHit(position int, query, title, snippet string) int {
	score := 80 - position*8
	if score < 20 {
		score = 20
	}
	haystack := strings.ToLower(title + " " + snippet)
	for _, term := range strings.Fields(strings.ToLower(query)) {
		if len(term) > 2 && strings.Contains(haystack, term) {
			score += 3
		}
	}
	if score > 100 {
		score = 100
	}
	return score
}
