// Package assistant answers tech support questions about gadgets and
// software using web search grounded generation. It can answer
// directly from search result snippets, or scrape the result pages
// into a vector store and run retrieval augmented generation over
// them, with conversation memory and source citations in both modes.
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Dhanyavarthini/Techie-S-Assistant/rag"
	"github.com/Dhanyavarthini/Techie-S-Assistant/rag/providers"
)

// Answer is a generated answer plus the URLs it cites.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// Config holds all the knobs for a SearchAssistant. Zero values fall
// back to the defaults set in New.
type Config struct {
	// Search
	SearchMethod  string // "serpapi", "serper" or "openserp"
	SearchEngine  string // "google" or "bing"
	SearchAPIKey  string
	SearchBaseURL string // openserp instance URL
	MaxResults    int
	OfficialSites []string

	// Generation
	LLM LLMConfig

	// Embeddings
	EmbeddingProvider string
	EmbeddingModel    string
	EmbeddingAPIKey   string

	// Vector store
	DBType     string
	DBAddress  string
	Collection string

	// Crawling and chunking
	Crawler      rag.CrawlerConfig
	ChunkSize    int
	ChunkOverlap int

	// Retrieval
	TopK     int
	MinScore float64
	Hybrid   bool

	// Conversation
	MemoryTokenLimit int
	RelatedCount     int

	// Logging maps component names ("search", "crawler", "parser",
	// "retriever") to levels. Unlisted components use the "default"
	// entry, then the global logger.
	LogLevels map[string]rag.LogLevel

	// Timeout bounds LLM calls and vector store connections.
	Timeout time.Duration
}

// Option configures a SearchAssistant.
type Option func(*Config)

func WithSearch(method, engine, apiKey string) Option {
	return func(c *Config) {
		c.SearchMethod = method
		c.SearchEngine = engine
		c.SearchAPIKey = apiKey
	}
}

func WithLLM(cfg LLMConfig) Option {
	return func(c *Config) {
		c.LLM = cfg
	}
}

func WithEmbedding(provider, model, apiKey string) Option {
	return func(c *Config) {
		c.EmbeddingProvider = provider
		c.EmbeddingModel = model
		c.EmbeddingAPIKey = apiKey
	}
}

func WithVectorDB(dbType, address string) Option {
	return func(c *Config) {
		c.DBType = dbType
		c.DBAddress = address
	}
}

func WithCollection(name string) Option {
	return func(c *Config) {
		c.Collection = name
	}
}

func WithMaxResults(n int) Option {
	return func(c *Config) {
		c.MaxResults = n
	}
}

func WithOfficialSites(sites []string) Option {
	return func(c *Config) {
		c.OfficialSites = sites
	}
}

func WithConfig(cfg Config) Option {
	return func(c *Config) {
		*c = cfg
	}
}

// SearchAssistant ties search, crawling, indexing and generation
// together. Methods are safe for use from multiple request handlers;
// the indexed URL list and memory are guarded internally.
type SearchAssistant struct {
	config   Config
	searcher rag.Searcher
	llm      providers.LLM
	embedder *rag.EmbeddingService
	db       rag.VectorDB
	sparse   *rag.BM25Index
	crawler  *rag.Crawler
	chunker  rag.Chunker
	memory   *ConversationMemory
	logger   rag.Logger

	mu   sync.Mutex // guards urls and retriever rebuilds
	urls []string
	ret  *Retriever
}

// New builds a SearchAssistant and connects its vector store.
func New(ctx context.Context, opts ...Option) (*SearchAssistant, error) {
	config := Config{
		SearchMethod:      "serpapi",
		SearchEngine:      "google",
		MaxResults:        5,
		OfficialSites:     OfficialSites,
		EmbeddingProvider: "sambanova",
		DBType:            "chromem",
		DBAddress:         "data/chromem",
		Collection:        "techie_docs",
		Crawler:           rag.DefaultCrawlerConfig(),
		ChunkSize:         1000,
		ChunkOverlap:      200,
		TopK:              3,
		MinScore:          0.3,
		Hybrid:            true,
		MemoryTokenLimit:  defaultMemoryTokenLimit,
		RelatedCount:      4,
		Timeout:           2 * time.Minute,
	}
	for _, opt := range opts {
		opt(&config)
	}
	if config.MaxResults <= 0 {
		config.MaxResults = 5
	}
	if config.RelatedCount <= 0 {
		config.RelatedCount = 4
	}
	if config.TopK <= 0 {
		config.TopK = 3
	}
	if config.Collection == "" {
		config.Collection = "techie_docs"
	}
	if config.Timeout <= 0 {
		config.Timeout = 2 * time.Minute
	}
	logger := componentLogger(config.LogLevels, "assistant")

	searcher, err := rag.NewSearcher(rag.SearcherConfig{
		Type:    config.SearchMethod,
		APIKey:  config.SearchAPIKey,
		Engine:  config.SearchEngine,
		BaseURL: config.SearchBaseURL,
		Logger:  componentLogger(config.LogLevels, "search"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create searcher: %w", err)
	}

	if config.LLM.Timeout <= 0 {
		config.LLM.Timeout = config.Timeout
	}
	llm, err := NewLLM(config.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm: %w", err)
	}

	embedder, err := rag.NewEmbedder(
		rag.SetProvider(config.EmbeddingProvider),
		rag.SetModel(config.EmbeddingModel),
		rag.SetAPIKey(config.EmbeddingAPIKey),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}
	embedService := rag.NewEmbeddingService(embedder, logger)

	dimension, err := embedder.GetDimension()
	if err != nil {
		return nil, fmt.Errorf("failed to determine embedding dimension: %w", err)
	}
	db, err := rag.NewVectorDB(&rag.StoreConfig{
		Type:          config.DBType,
		Address:       config.DBAddress,
		Dimension:     dimension,
		Timeout:       config.Timeout,
		EmbeddingFunc: embedService.EmbeddingFunc(),
		Logger:        logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create vector store: %w", err)
	}
	if err := db.Connect(ctx); err != nil {
		return nil, err
	}
	if err := db.EnsureCollection(ctx, config.Collection, dimension); err != nil {
		return nil, err
	}

	chunkerOpts := []rag.TextChunkerOption{
		rag.WithSentenceSplitter(rag.SmartSentenceSplitter),
	}
	if config.ChunkSize > 0 {
		chunkerOpts = append(chunkerOpts, rag.WithChunkSize(config.ChunkSize))
	}
	if config.ChunkOverlap > 0 {
		chunkerOpts = append(chunkerOpts, rag.WithChunkOverlap(config.ChunkOverlap))
	}
	counter, err := rag.NewTikTokenCounter("cl100k_base")
	if err != nil {
		logger.Warn("tiktoken unavailable, counting words instead", "error", err)
	} else {
		chunkerOpts = append(chunkerOpts, rag.WithTokenCounter(counter))
	}
	chunker, err := rag.NewTextChunker(chunkerOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create chunker: %w", err)
	}

	crawlerCfg := config.Crawler
	crawlerCfg.MaxSites = maxIntOr(crawlerCfg.MaxSites, config.MaxResults*4)
	if crawlerCfg.ParserLogger == nil {
		crawlerCfg.ParserLogger = componentLogger(config.LogLevels, "parser")
	}
	sparse := rag.NewBM25Index()

	var memCounter rag.TokenCounter
	if counter != nil {
		memCounter = counter
	}
	a := &SearchAssistant{
		config:   config,
		searcher: searcher,
		llm:      llm,
		embedder: embedService,
		db:       db,
		sparse:   sparse,
		crawler:  rag.NewCrawler(crawlerCfg, componentLogger(config.LogLevels, "crawler")),
		chunker:  chunker,
		memory:   NewConversationMemory(llm, memCounter, config.MemoryTokenLimit),
		logger:   logger,
	}
	a.ret = NewRetriever(db, embedService, sparse,
		WithRetrieveCollection(config.Collection),
		WithTopK(config.TopK),
		WithMinScore(config.MinScore),
		WithHybrid(config.Hybrid),
		WithRetrieveLogger(componentLogger(config.LogLevels, "retriever")),
	)
	return a, nil
}

// componentLogger returns a named logger at the level configured for
// the component, falling back to the "default" entry and then to the
// global logger.
func componentLogger(levels map[string]rag.LogLevel, name string) rag.Logger {
	if level, ok := levels[name]; ok {
		return rag.NewLogger(name, level)
	}
	if level, ok := levels["default"]; ok {
		return rag.NewLogger(name, level)
	}
	return rag.GlobalLogger
}

func maxIntOr(v, fallback int) int {
	if v > 0 {
		return v
	}
	return fallback
}

// search runs the configured engine over the official-site restricted
// query.
func (a *SearchAssistant) search(ctx context.Context, query string) (*rag.SearchResponse, error) {
	restricted := RestrictToOfficialSites(query, a.config.OfficialSites)
	return a.searcher.Search(ctx, restricted, a.config.MaxResults)
}

// AnswerFromSnippets answers a question directly from search result
// snippets, without crawling the pages. Citations link to the search
// results. The exchange is recorded in conversation memory.
//
// reformulated is the conversation-condensed form of the query; pass
// "" to have it computed here. Callers that also need the condensed
// query, such as the HTTP handler feeding it to RelatedQueries, run
// ReformulateQuery themselves and pass the result in.
func (a *SearchAssistant) AnswerFromSnippets(ctx context.Context, query, reformulated string) (*Answer, error) {
	condensed := reformulated
	if condensed == "" {
		var err error
		condensed, err = a.ReformulateQuery(ctx, query)
		if err != nil {
			a.logger.Warn("query reformulation failed, using raw query", "error", err)
			condensed = query
		}
	}

	var links []string
	resp, err := a.search(ctx, condensed)
	snippetContext := rag.SnippetContext(nil)
	if err != nil {
		a.logger.Error("search failed", "query", condensed, "error", err)
	} else {
		snippetContext = rag.SnippetContext(resp.Hits)
		links = resp.Links()
	}

	raw, err := a.llm.Generate(ctx, rag.SerpAnalysisPrompt(snippetContext, query))
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	answer := ReplaceReferences(raw, links)

	if err := a.memory.SaveContext(ctx, query, answer); err != nil {
		a.logger.Warn("failed to save conversation turn", "error", err)
	}
	return &Answer{Answer: answer, Sources: links}, nil
}

// SearchAndIndex searches for the query, scrapes the result pages and
// indexes their content for Ask. It replaces any previously indexed
// sources.
func (a *SearchAssistant) SearchAndIndex(ctx context.Context, query string) ([]string, error) {
	resp, err := a.search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	links := resp.Links()
	if len(links) == 0 {
		return nil, fmt.Errorf("no links found for %q", query)
	}

	docs, scraped, err := a.crawler.Crawl(ctx, links)
	if err != nil {
		return nil, fmt.Errorf("crawl failed: %w", err)
	}

	chunks := rag.ChunkDocuments(a.chunker, docs, rag.SourceIndex(scraped))
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no text extracted from %d scraped pages", len(scraped))
	}
	embedded, err := a.embedder.EmbedChunks(ctx, chunks)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.db.DropCollection(ctx, a.config.Collection); err != nil {
		a.logger.Warn("failed to drop previous collection", "error", err)
	}
	if err := a.db.EnsureCollection(ctx, a.config.Collection, len(embedded[0].Embedding)); err != nil {
		return nil, err
	}
	if err := a.db.Insert(ctx, a.config.Collection, embedded); err != nil {
		return nil, fmt.Errorf("indexing failed: %w", err)
	}

	a.sparse = rag.NewBM25Index()
	for i, chunk := range chunks {
		if err := a.sparse.Add(ctx, fmt.Sprintf("chunk-%d", i), chunk.Text, chunk.Source); err != nil {
			return nil, err
		}
	}
	a.ret = NewRetriever(a.db, a.embedder, a.sparse,
		WithRetrieveCollection(a.config.Collection),
		WithTopK(a.config.TopK),
		WithMinScore(a.config.MinScore),
		WithHybrid(a.config.Hybrid),
		WithRetrieveLogger(componentLogger(a.config.LogLevels, "retriever")),
	)
	a.urls = scraped
	a.memory.Reset()
	a.logger.Info("indexed sources", "query", query, "sources", len(scraped), "chunks", len(chunks))
	return scraped, nil
}

// Ask answers a question from the indexed pages using retrieval
// augmented generation. SearchAndIndex must have run first. Citations
// are renumbered to count over the sources this answer used.
func (a *SearchAssistant) Ask(ctx context.Context, query string) (*Answer, error) {
	a.mu.Lock()
	urls := a.urls
	ret := a.ret
	a.mu.Unlock()
	if len(urls) == 0 {
		return nil, fmt.Errorf("no sources indexed, call SearchAndIndex first")
	}

	condensed, err := a.ReformulateQuery(ctx, query)
	if err != nil {
		a.logger.Warn("query reformulation failed, using raw query", "error", err)
		condensed = query
	}

	results, err := ret.Retrieve(ctx, condensed)
	if err != nil {
		return nil, err
	}

	passages := make([]string, 0, len(results))
	usedSources := make([]string, 0, len(results))
	seen := make(map[string]bool)
	for _, result := range results {
		passages = append(passages, result.Text)
		if result.Source != "" && !seen[result.Source] {
			seen[result.Source] = true
			usedSources = append(usedSources, result.Source)
		}
	}

	raw, err := a.llm.Generate(ctx, rag.RetrievalQAPrompt(strings.Join(passages, "\n\n"), condensed))
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}
	answer := ReplaceReferences(raw, urls)
	answer = RenumberCitations(answer, urls, usedSources)

	if err := a.memory.SaveContext(ctx, query, answer); err != nil {
		a.logger.Warn("failed to save conversation turn", "error", err)
	}
	return &Answer{Answer: answer, Sources: usedSources}, nil
}

// ReformulateQuery folds the conversation history into the query so a
// follow-up like "what about the battery" becomes self-contained. On
// an empty conversation the query is returned as-is.
func (a *SearchAssistant) ReformulateQuery(ctx context.Context, query string) (string, error) {
	history := a.memory.History()
	if history == initialMemorySummary {
		return query, nil
	}
	reformulated, err := a.llm.Generate(ctx, rag.CondensedQuestionPrompt(history, query))
	if err != nil {
		return "", err
	}
	reformulated = strings.TrimSpace(reformulated)
	if reformulated == "" {
		return query, nil
	}
	a.logger.Info("reformulated query", "original", query, "reformulated", reformulated)
	return reformulated, nil
}

// RelatedQueries suggests follow-up questions for the given query.
func (a *SearchAssistant) RelatedQueries(ctx context.Context, query string) ([]string, error) {
	raw, err := a.llm.Generate(ctx, rag.RelatedQuestionsPrompt(query, a.config.RelatedCount))
	if err != nil {
		return nil, fmt.Errorf("failed to generate related queries: %w", err)
	}
	return parseRelatedQueries(raw)
}

// parseRelatedQueries extracts the JSON object from an LLM reply that
// may be wrapped in prose or a markdown code fence.
func parseRelatedQueries(raw string) ([]string, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON object in response: %q", raw)
	}
	var parsed struct {
		RelatedQueries []string `json:"related_queries"`
	}
	if err := json.Unmarshal([]byte(raw[start:end+1]), &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse related queries: %w", err)
	}
	return parsed.RelatedQueries, nil
}

// Sources returns the URLs indexed by the last SearchAndIndex call.
func (a *SearchAssistant) Sources() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, len(a.urls))
	copy(out, a.urls)
	return out
}

// ResetConversation clears the conversation memory.
func (a *SearchAssistant) ResetConversation() {
	a.memory.Reset()
}

// Close releases the vector store connection.
func (a *SearchAssistant) Close() error {
	return a.db.Close()
}
