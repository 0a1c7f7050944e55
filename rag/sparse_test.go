package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBM25SearchRanksByRelevance(t *testing.T) {
	ctx := context.Background()
	idx := NewBM25Index()
	require.NoError(t, idx.Add(ctx, "a", "replace the laptop battery when it no longer holds charge", "https://a"))
	require.NoError(t, idx.Add(ctx, "b", "update the graphics driver from the vendor site", "https://b"))
	require.NoError(t, idx.Add(ctx, "c", "battery calibration steps for the laptop", "https://c"))

	results, err := idx.Search(ctx, "laptop battery", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)

	for _, r := range results {
		assert.NotEqual(t, "b", r.ID, "driver chunk shares no query terms")
	}
	assert.Greater(t, results[0].Score, 0.0)
}

func TestBM25SearchNoMatches(t *testing.T) {
	ctx := context.Background()
	idx := NewBM25Index()
	require.NoError(t, idx.Add(ctx, "a", "reinstall the operating system", "https://a"))

	results, err := idx.Search(ctx, "quantum flux capacitor", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBM25Remove(t *testing.T) {
	ctx := context.Background()
	idx := NewBM25Index()
	require.NoError(t, idx.Add(ctx, "a", "noisy fan bearing", "https://a"))
	require.Equal(t, 1, idx.Len())

	require.NoError(t, idx.Remove(ctx, "a"))
	assert.Equal(t, 0, idx.Len())

	results, err := idx.Search(ctx, "fan", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestBM25ReAddReplaces(t *testing.T) {
	ctx := context.Background()
	idx := NewBM25Index()
	require.NoError(t, idx.Add(ctx, "a", "old text", "https://a"))
	require.NoError(t, idx.Add(ctx, "a", "new text entirely", "https://a"))
	assert.Equal(t, 1, idx.Len())

	results, err := idx.Search(ctx, "old", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}
