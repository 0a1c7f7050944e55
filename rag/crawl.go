package rag

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/time/rate"
)

// excludedLinkSuffixes are media and office formats the crawler never
// fetches; they carry no extractable support content.
var excludedLinkSuffixes = []string{
	".ico", ".svg", ".jpg", ".png", ".jpeg", ".docx", ".xls", ".xlsx",
}

// maxFetchBody caps how much of a response body is read per page.
const maxFetchBody = 8 << 20

// CrawlerConfig controls link filtering and fetch behavior.
type CrawlerConfig struct {
	MaxSites       int           // cap on pages fetched per crawl
	MaxConcurrency int           // parallel fetch workers
	RequestsPerSec float64       // polite-crawl rate limit across workers
	Timeout        time.Duration // per-request timeout
	ExcludedLinks  []string      // links never fetched (netloc+path containment)
	FetchPDF       bool          // whether .pdf links are fetched and parsed
	UserAgent      string
	ParserLogger   Logger        // logger for document parsing, defaults to the crawler's
}

// DefaultCrawlerConfig mirrors the web-crawling defaults of the service
// configuration.
func DefaultCrawlerConfig() CrawlerConfig {
	return CrawlerConfig{
		MaxSites:       20,
		MaxConcurrency: 4,
		RequestsPerSec: 4,
		Timeout:        30 * time.Second,
		FetchPDF:       true,
		UserAgent:      "techie-assistant/1.0",
	}
}

// Crawler fetches search-result pages concurrently and turns them into
// Documents. Fetches across workers share one rate limiter.
type Crawler struct {
	config  CrawlerConfig
	client  *http.Client
	limiter *rate.Limiter
	parsers *ParserManager
	logger  Logger
}

// NewCrawler creates a Crawler from the given config, filling zero values
// with defaults.
func NewCrawler(cfg CrawlerConfig, logger Logger) *Crawler {
	def := DefaultCrawlerConfig()
	if cfg.MaxSites <= 0 {
		cfg.MaxSites = def.MaxSites
	}
	if cfg.MaxConcurrency <= 0 {
		cfg.MaxConcurrency = def.MaxConcurrency
	}
	if cfg.RequestsPerSec <= 0 {
		cfg.RequestsPerSec = def.RequestsPerSec
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if logger == nil {
		logger = GlobalLogger
	}
	if cfg.ParserLogger == nil {
		cfg.ParserLogger = logger
	}
	return &Crawler{
		config:  cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSec), 1),
		parsers: NewParserManager(cfg.ParserLogger),
		logger:  logger,
	}
}

// FilterLinks drops links matching the excluded suffixes or the configured
// excluded-link list, preserves the incoming order, and caps the result at
// MaxSites. Zero survivors is an error so the caller can tell the user to
// loosen exclusions or raise the search result cap.
func (c *Crawler) FilterLinks(links []string) ([]string, error) {
	cleanExcluded := make([]string, 0, len(c.config.ExcludedLinks))
	for _, excluded := range c.config.ExcludedLinks {
		if parsed, err := url.Parse(excluded); err == nil && parsed.Host != "" {
			cleanExcluded = append(cleanExcluded, parsed.Host+parsed.Path)
		} else {
			cleanExcluded = append(cleanExcluded, excluded)
		}
	}

	seen := make(map[string]bool)
	filtered := make([]string, 0, len(links))
	for _, link := range links {
		if seen[link] {
			continue
		}
		seen[link] = true
		if hasExcludedSuffix(link) {
			continue
		}
		if !c.config.FetchPDF && strings.HasSuffix(link, ".pdf") {
			continue
		}
		excluded := false
		for _, ex := range cleanExcluded {
			if ex != "" && strings.Contains(link, ex) {
				excluded = true
				break
			}
		}
		if !excluded {
			filtered = append(filtered, link)
		}
	}

	if len(filtered) == 0 {
		return nil, fmt.Errorf("no sites to scrape after filtering links: check the excluded_links config or increase the maximum number of search results")
	}
	if len(filtered) > c.config.MaxSites {
		filtered = filtered[:c.config.MaxSites]
	}
	return filtered, nil
}

func hasExcludedSuffix(link string) bool {
	for _, suffix := range excludedLinkSuffixes {
		if strings.HasSuffix(link, suffix) {
			return true
		}
	}
	return false
}

// Crawl filters the links, fetches the survivors concurrently and returns
// the parsed documents together with the URLs that yielded content.
// Individual fetch or parse failures are logged and skipped; only a fully
// empty crawl is an error.
func (c *Crawler) Crawl(ctx context.Context, links []string) ([]Document, []string, error) {
	targets, err := c.FilterLinks(links)
	if err != nil {
		return nil, nil, err
	}
	c.logger.Info("starting crawl", "targets", len(targets))

	type crawlResult struct {
		index int
		doc   Document
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		results []crawlResult
	)
	sem := make(chan struct{}, c.config.MaxConcurrency)

	for i, link := range targets {
		wg.Add(1)
		go func(index int, link string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			doc, err := c.fetch(ctx, link)
			if err != nil {
				c.logger.Warn("failed to fetch page", "url", link, "error", err)
				return
			}
			mu.Lock()
			results = append(results, crawlResult{index: index, doc: doc})
			mu.Unlock()
		}(i, link)
	}
	wg.Wait()

	if len(results) == 0 {
		return nil, nil, fmt.Errorf("crawl produced no documents from %d links", len(targets))
	}

	// Keep search rank order so reference numbers stay stable.
	sort.Slice(results, func(i, j int) bool { return results[i].index < results[j].index })

	docs := make([]Document, 0, len(results))
	scraped := make([]string, 0, len(results))
	for _, r := range results {
		docs = append(docs, r.doc)
		scraped = append(scraped, r.doc.Source)
	}
	c.logger.Info("crawl complete", "documents", len(docs))
	return docs, scraped, nil
}

func (c *Crawler) fetch(ctx context.Context, link string) (Document, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return Document{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return Document{}, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("error fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Document{}, fmt.Errorf("fetch failed with status code %d: %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBody))
	if err != nil {
		return Document{}, fmt.Errorf("error reading body: %w", err)
	}

	kind, err := c.detectKind(body)
	if err != nil {
		return Document{}, err
	}
	if kind == "pdf" && !c.config.FetchPDF {
		return Document{}, fmt.Errorf("pdf fetching disabled")
	}
	return c.parsers.Parse(kind, link, body)
}

// detectKind sniffs the body rather than trusting Content-Type headers,
// which support sites frequently get wrong for PDF downloads.
func (c *Crawler) detectKind(body []byte) (string, error) {
	mtype := mimetype.Detect(body)
	switch {
	case mtype.Is("application/pdf"):
		return "pdf", nil
	case mtype.Is("text/html"), mtype.Is("text/plain"), strings.HasPrefix(mtype.String(), "text/"):
		return "html", nil
	default:
		return "", fmt.Errorf("unsupported content type: %s", mtype.String())
	}
}
