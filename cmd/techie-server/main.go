// Command techie-server runs the Techie's Assistant HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Dhanyavarthini/Techie-S-Assistant"
	"github.com/Dhanyavarthini/Techie-S-Assistant/config"
	"github.com/Dhanyavarthini/Techie-S-Assistant/rag"
	"github.com/Dhanyavarthini/Techie-S-Assistant/server"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "techie-server: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	addr := flag.String("addr", "", "listen address, overrides the config file")
	usageStats := flag.Bool("usage-stats", true, "collect request metrics and expose /metrics")
	flag.Parse()

	// Missing .env is fine, keys may come from the real environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to load .env: %w", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	rag.SetGlobalLogLevel(cfg.LogLevel("default"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := assistant.New(ctx,
		assistant.WithConfig(assistant.Config{
			SearchMethod:  cfg.Search.Method,
			SearchEngine:  cfg.Search.Engine,
			SearchAPIKey:  cfg.SearchAPIKey(),
			SearchBaseURL: cfg.Search.BaseURL,
			MaxResults:    cfg.Search.MaxResults,
			OfficialSites: assistant.OfficialSites,
			LLM: assistant.LLMConfig{
				Provider:    cfg.LLM.Provider,
				Model:       cfg.LLM.Model,
				APIKey:      cfg.LLMAPIKey(),
				MaxTokens:   cfg.LLM.MaxTokens,
				Temperature: cfg.LLM.Temperature,
				Timeout:     cfg.LLM.Timeout,
			},
			EmbeddingProvider: cfg.Embedding.Provider,
			EmbeddingModel:    cfg.Embedding.Model,
			EmbeddingAPIKey:   cfg.SambaNovaKey,
			DBType:            cfg.Retrieval.DBType,
			DBAddress:         cfg.Retrieval.DBAddress,
			Collection:        cfg.Retrieval.Collection,
			Crawler: rag.CrawlerConfig{
				MaxSites:       cfg.WebCrawling.MaxScrapedWebsites,
				MaxConcurrency: cfg.WebCrawling.MaxConcurrency,
				RequestsPerSec: cfg.WebCrawling.RequestsPerSecond,
				Timeout:        cfg.WebCrawling.Timeout,
				ExcludedLinks:  cfg.WebCrawling.ExcludedLinks,
				FetchPDF:       cfg.WebCrawling.FetchPDF,
			},
			ChunkSize:    cfg.Retrieval.ChunkSize,
			ChunkOverlap: cfg.Retrieval.ChunkOverlap,
			TopK:         cfg.Retrieval.TopK,
			MinScore:     cfg.Retrieval.ScoreThreshold,
			Hybrid:       cfg.Retrieval.Hybrid,
			LogLevels:    cfg.LogLevels(),
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize assistant: %w", err)
	}
	defer a.Close()

	opts := server.Options{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		Logger:       rag.NewLogger("server", cfg.LogLevel("server")),
	}
	if *usageStats && cfg.Server.UsageStats {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		opts.Registry = registry
		opts.Metrics = server.NewMetrics(registry)
	}

	return server.New(a, opts).ListenAndServe(ctx)
}
