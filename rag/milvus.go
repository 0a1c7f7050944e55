package rag

import (
	"context"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	milvusTextMaxLength   = 65535
	milvusSourceMaxLength = 2048
	milvusHNSWM           = 16
	milvusHNSWEfBuild     = 256
	milvusHNSWEfSearch    = 64
)

// MilvusDB stores chunks in a Milvus collection with a fixed schema:
// an auto-id primary key, the embedding vector, the chunk text and its
// source URL. Vectors are compared with inner product so scores rank
// the same way as the other backends.
type MilvusDB struct {
	client client.Client
	cfg    *StoreConfig
	logger Logger
}

func newMilvusDB(cfg *StoreConfig) (*MilvusDB, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("milvus backend requires an address")
	}
	return &MilvusDB{cfg: cfg, logger: cfg.Logger}, nil
}

func (m *MilvusDB) Connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, m.cfg.Timeout)
	defer cancel()
	c, err := client.NewClient(ctx, client.Config{
		Address: m.cfg.Address,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to milvus at %s: %w", m.cfg.Address, err)
	}
	m.client = c
	m.logger.Debug("connected to milvus", "address", m.cfg.Address)
	return nil
}

func (m *MilvusDB) Close() error {
	if m.client == nil {
		return nil
	}
	return m.client.Close()
}

func (m *MilvusDB) HasCollection(ctx context.Context, name string) (bool, error) {
	return m.client.HasCollection(ctx, name)
}

func (m *MilvusDB) DropCollection(ctx context.Context, name string) error {
	return m.client.DropCollection(ctx, name)
}

func (m *MilvusDB) EnsureCollection(ctx context.Context, name string, dimension int) error {
	has, err := m.client.HasCollection(ctx, name)
	if err != nil {
		return err
	}
	if !has {
		schema := entity.NewSchema().WithName(name).WithDescription("indexed support pages").
			WithField(entity.NewField().WithName("id").WithDataType(entity.FieldTypeInt64).
				WithIsPrimaryKey(true).WithIsAutoID(true)).
			WithField(entity.NewField().WithName("embedding").WithDataType(entity.FieldTypeFloatVector).
				WithDim(int64(dimension))).
			WithField(entity.NewField().WithName("text").WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(milvusTextMaxLength)).
			WithField(entity.NewField().WithName("source").WithDataType(entity.FieldTypeVarChar).
				WithMaxLength(milvusSourceMaxLength))
		if err := m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection %s: %w", name, err)
		}
		idx, err := entity.NewIndexHNSW(entity.IP, milvusHNSWM, milvusHNSWEfBuild)
		if err != nil {
			return err
		}
		if err := m.client.CreateIndex(ctx, name, "embedding", idx, false); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", name, err)
		}
	}
	if err := m.client.LoadCollection(ctx, name, false); err != nil {
		return fmt.Errorf("failed to load collection %s: %w", name, err)
	}
	return nil
}

func (m *MilvusDB) Insert(ctx context.Context, collection string, chunks []EmbeddedChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	dim := len(chunks[0].Embedding)
	vectors := make([][]float32, 0, len(chunks))
	texts := make([]string, 0, len(chunks))
	sources := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		vectors = append(vectors, toFloat32Slice(chunk.Embedding))
		texts = append(texts, chunk.Text)
		source, _ := chunk.Metadata["source"].(string)
		sources = append(sources, source)
	}
	_, err := m.client.Insert(ctx, collection, "",
		entity.NewColumnFloatVector("embedding", dim, vectors),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnVarChar("source", sources),
	)
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", collection, err)
	}
	if err := m.client.Flush(ctx, collection, false); err != nil {
		return fmt.Errorf("failed to flush %s: %w", collection, err)
	}
	m.logger.Debug("inserted chunks", "collection", collection, "count", strconv.Itoa(len(chunks)))
	return nil
}

func (m *MilvusDB) Search(ctx context.Context, collection string, query []float64, topK int) ([]SearchResult, error) {
	sp, err := entity.NewIndexHNSWSearchParam(milvusHNSWEfSearch)
	if err != nil {
		return nil, err
	}
	results, err := m.client.Search(ctx, collection, nil, "", []string{"text", "source"},
		[]entity.Vector{entity.FloatVector(toFloat32Slice(query))},
		"embedding", entity.IP, topK, sp)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}

	var out []SearchResult
	for _, rs := range results {
		for i := 0; i < rs.ResultCount; i++ {
			id, _ := rs.IDs.GetAsInt64(i)
			r := SearchResult{
				ID:    strconv.FormatInt(id, 10),
				Score: float64(rs.Scores[i]),
			}
			if col := rs.Fields.GetColumn("text"); col != nil {
				if v, err := col.Get(i); err == nil {
					r.Text, _ = v.(string)
				}
			}
			if col := rs.Fields.GetColumn("source"); col != nil {
				if v, err := col.Get(i); err == nil {
					r.Source, _ = v.(string)
				}
			}
			out = append(out, r)
		}
	}
	return out, nil
}
