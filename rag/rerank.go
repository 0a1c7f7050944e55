package rag

import (
	"context"
	"sort"
)

// RRFReranker fuses dense and sparse result lists with Reciprocal
// Rank Fusion. Results are matched by chunk text, since the vector
// store and the keyword index assign unrelated IDs to the same chunk.
type RRFReranker struct {
	k float64
}

// NewRRFReranker creates a reranker with the given k constant. Values
// at or below zero fall back to 60, the constant from the RRF paper.
func NewRRFReranker(k float64) *RRFReranker {
	if k <= 0 {
		k = 60
	}
	return &RRFReranker{k: k}
}

func (r *RRFReranker) Rerank(
	ctx context.Context,
	query string,
	denseResults, sparseResults []SearchResult,
	denseWeight, sparseWeight float64,
) ([]SearchResult, error) {
	totalWeight := denseWeight + sparseWeight
	if totalWeight > 0 {
		denseWeight /= totalWeight
		sparseWeight /= totalWeight
	} else {
		denseWeight = 0.5
		sparseWeight = 0.5
	}

	scores := make(map[string]float64)
	docMap := make(map[string]SearchResult)

	for rank, result := range denseResults {
		rrf := 1.0 / (float64(rank+1) + r.k)
		scores[result.Text] = rrf * denseWeight
		docMap[result.Text] = result
	}
	for rank, result := range sparseResults {
		rrf := 1.0 / (float64(rank+1) + r.k)
		if score, exists := scores[result.Text]; exists {
			scores[result.Text] = score + rrf*sparseWeight
		} else {
			scores[result.Text] = rrf * sparseWeight
			docMap[result.Text] = result
		}
	}

	results := make([]SearchResult, 0, len(scores))
	for key, score := range scores {
		result := docMap[key]
		result.Score = score
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	return results, nil
}
