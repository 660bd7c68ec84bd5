package service

import (
	"context"
	"fmt"

	"codexplain/internal/models"
)

// maxQueryLen caps the text sent to the embedding model; long snippets keep
// their head, which carries the declarations the index was built around.
const maxQueryLen = 2000

// ChunkSearcher exposes vector search over the ingested documentation chunks.
type ChunkSearcher interface {
	VectorSearch(ctx context.Context, queryVec []float32, k int) ([]models.RetrievedChunk, error)
}

// Retriever returns the top-k reference chunks for a query. Whether to call
// it at all is the orchestrator's decision: with RAG disabled the retriever
// is never contacted.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]models.RetrievedChunk, error)
}

type ragRetriever struct {
	searcher ChunkSearcher
	embedder Embedder
}

// NewRetriever wires the chunk searcher and the query embedder.
func NewRetriever(searcher ChunkSearcher, embedder Embedder) Retriever {
	return &ragRetriever{searcher: searcher, embedder: embedder}
}

// Retrieve embeds the query and runs a K-NN search, preserving the store's
// descending-score order. k <= 0 short-circuits to an empty result.
func (r *ragRetriever) Retrieve(ctx context.Context, query string, k int) ([]models.RetrievedChunk, error) {
	if k <= 0 {
		return nil, nil
	}

	if len(query) > maxQueryLen {
		query = query[:maxQueryLen]
	}

	vec, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	chunks, err := r.searcher.VectorSearch(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return chunks, nil
}
