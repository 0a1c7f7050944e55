package rag

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRRFRerankerFusesSharedResults(t *testing.T) {
	dense := []SearchResult{
		{ID: "d1", Text: "chunk shared", Score: 0.9},
		{ID: "d2", Text: "chunk dense only", Score: 0.8},
	}
	sparse := []SearchResult{
		{ID: "s1", Text: "chunk shared", Score: 4.2},
		{ID: "s2", Text: "chunk sparse only", Score: 2.1},
	}

	fused, err := NewRRFReranker(0).Rerank(context.Background(), "q", dense, sparse, 0.5, 0.5)
	require.NoError(t, err)
	require.Len(t, fused, 3)

	// The chunk present in both lists accumulates both scores and
	// must rank first.
	assert.Equal(t, "chunk shared", fused[0].Text)
	assert.Greater(t, fused[0].Score, fused[1].Score)
}

func TestRRFRerankerWeightNormalization(t *testing.T) {
	dense := []SearchResult{{Text: "a"}}
	sparse := []SearchResult{{Text: "b"}}

	fused, err := NewRRFReranker(0).Rerank(context.Background(), "q", dense, sparse, 0, 0)
	require.NoError(t, err)
	require.Len(t, fused, 2)
	assert.InDelta(t, fused[0].Score, fused[1].Score, 1e-9,
		"zero weights fall back to an even split")
}

func TestRRFRerankerEmptyLists(t *testing.T) {
	fused, err := NewRRFReranker(60).Rerank(context.Background(), "q", nil, nil, 0.7, 0.3)
	require.NoError(t, err)
	assert.Empty(t, fused)
}
