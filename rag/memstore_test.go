package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemoryDB(t *testing.T) VectorDB {
	t.Helper()
	db, err := NewVectorDB(&StoreConfig{
		Type:   "memory",
		Logger: NewLogger("store-test", LogLevelOff),
	})
	require.NoError(t, err)
	require.NoError(t, db.Connect(context.Background()))
	return db
}

func embeddedChunk(text, source string, embedding []float64) EmbeddedChunk {
	return EmbeddedChunk{
		Text:      text,
		Embedding: embedding,
		Metadata:  map[string]interface{}{"source": source},
	}
}

func TestMemoryDBSearchOrdersBySimilarity(t *testing.T) {
	ctx := context.Background()
	db := newTestMemoryDB(t)
	require.NoError(t, db.EnsureCollection(ctx, "docs", 3))

	require.NoError(t, db.Insert(ctx, "docs", []EmbeddedChunk{
		embeddedChunk("exact match", "https://a", []float64{1, 0, 0}),
		embeddedChunk("orthogonal", "https://b", []float64{0, 1, 0}),
		embeddedChunk("close match", "https://c", []float64{0.9, 0.1, 0}),
	}))

	results, err := db.Search(ctx, "docs", []float64{1, 0, 0}, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "exact match", results[0].Text)
	assert.Equal(t, "close match", results[1].Text)
	assert.Equal(t, "https://a", results[0].Source)
	assert.InDelta(t, 1.0, results[0].Score, 1e-9)
}

func TestMemoryDBUnknownCollection(t *testing.T) {
	ctx := context.Background()
	db := newTestMemoryDB(t)

	_, err := db.Search(ctx, "missing", []float64{1}, 1)
	assert.Error(t, err)

	err = db.Insert(ctx, "missing", []EmbeddedChunk{embeddedChunk("x", "s", []float64{1})})
	assert.Error(t, err)
}

func TestMemoryDBDropCollection(t *testing.T) {
	ctx := context.Background()
	db := newTestMemoryDB(t)
	require.NoError(t, db.EnsureCollection(ctx, "docs", 2))

	has, err := db.HasCollection(ctx, "docs")
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, db.DropCollection(ctx, "docs"))
	has, err = db.HasCollection(ctx, "docs")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestNewVectorDBUnknownType(t *testing.T) {
	_, err := NewVectorDB(&StoreConfig{Type: "postgres"})
	assert.ErrorContains(t, err, "unsupported database type")
}
