package rag

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/google/uuid"
	"github.com/philippgille/chromem-go"
)

// ChromemDB persists embedded chunks with chromem-go. When Address is
// set the database is written under that directory, otherwise it lives
// in memory for the life of the process.
type ChromemDB struct {
	db      *chromem.DB
	cfg     *StoreConfig
	logger  Logger
	mu      sync.Mutex
	columns map[string]*chromem.Collection
}

func newChromemDB(cfg *StoreConfig) (*ChromemDB, error) {
	if cfg.EmbeddingFunc == nil {
		return nil, fmt.Errorf("chromem backend requires an embedding function")
	}
	return &ChromemDB{
		cfg:     cfg,
		logger:  cfg.Logger,
		columns: make(map[string]*chromem.Collection),
	}, nil
}

func (c *ChromemDB) Connect(ctx context.Context) error {
	var err error
	if c.cfg.Address != "" {
		c.db, err = chromem.NewPersistentDB(c.cfg.Address, false)
	} else {
		c.db = chromem.NewDB()
	}
	if err != nil {
		return fmt.Errorf("failed to open chromem database: %w", err)
	}
	c.logger.Debug("connected to chromem", "persist_dir", c.cfg.Address)
	return nil
}

func (c *ChromemDB) Close() error {
	return nil
}

func (c *ChromemDB) embeddingFunc() chromem.EmbeddingFunc {
	return chromem.EmbeddingFunc(c.cfg.EmbeddingFunc)
}

func (c *ChromemDB) HasCollection(ctx context.Context, name string) (bool, error) {
	col := c.db.GetCollection(name, c.embeddingFunc())
	return col != nil, nil
}

func (c *ChromemDB) DropCollection(ctx context.Context, name string) error {
	c.mu.Lock()
	delete(c.columns, name)
	c.mu.Unlock()
	return c.db.DeleteCollection(name)
}

func (c *ChromemDB) EnsureCollection(ctx context.Context, name string, dimension int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.columns[name]; ok {
		return nil
	}
	col := c.db.GetCollection(name, c.embeddingFunc())
	if col == nil {
		var err error
		col, err = c.db.CreateCollection(name, map[string]string{}, c.embeddingFunc())
		if err != nil {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
	}
	c.columns[name] = col
	return nil
}

func (c *ChromemDB) collection(name string) (*chromem.Collection, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if col, ok := c.columns[name]; ok {
		return col, nil
	}
	col := c.db.GetCollection(name, c.embeddingFunc())
	if col == nil {
		return nil, fmt.Errorf("collection %s does not exist", name)
	}
	c.columns[name] = col
	return col, nil
}

func (c *ChromemDB) Insert(ctx context.Context, collection string, chunks []EmbeddedChunk) error {
	col, err := c.collection(collection)
	if err != nil {
		return err
	}
	for _, chunk := range chunks {
		meta := map[string]string{}
		for k, v := range chunk.Metadata {
			meta[k] = fmt.Sprint(v)
		}
		doc := chromem.Document{
			ID:        uuid.NewString(),
			Content:   chunk.Text,
			Metadata:  meta,
			Embedding: toFloat32Slice(chunk.Embedding),
		}
		if err := col.AddDocument(ctx, doc); err != nil {
			return fmt.Errorf("failed to add document: %w", err)
		}
	}
	c.logger.Debug("inserted chunks", "collection", collection, "count", strconv.Itoa(len(chunks)))
	return nil
}

func (c *ChromemDB) Search(ctx context.Context, collection string, query []float64, topK int) ([]SearchResult, error) {
	col, err := c.collection(collection)
	if err != nil {
		return nil, err
	}
	// chromem rejects queries for more results than the collection
	// holds.
	if count := col.Count(); topK > count {
		topK = count
	}
	if topK == 0 {
		return nil, nil
	}
	results, err := col.QueryEmbedding(ctx, toFloat32Slice(query), topK, map[string]string{}, map[string]string{})
	if err != nil {
		return nil, fmt.Errorf("chromem query failed: %w", err)
	}
	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		out = append(out, SearchResult{
			ID:     r.ID,
			Score:  float64(r.Similarity),
			Text:   r.Content,
			Source: r.Metadata["source"],
		})
	}
	return out, nil
}
