package repository

import (
	"context"

	"codexplain/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ChunkMongo exposes K-NN search over the ingested documentation chunks.
// The ingestion job that fills the collection lives outside this service.
type ChunkMongo struct {
	chunkCol  *mongo.Collection // one doc per chunk, with its embedding
	vectorIdx string            // name of the Atlas Vector Search index
}

// NewChunkRepository wires the chunk collection.
//
// Expected schema:
//
//	doc_chunks
//	  { _id: ObjectId, source: string, text: string, vector: []float32 }
func NewChunkRepository(db *mongo.Database, collection, vectorIdx string) *ChunkMongo {
	return &ChunkMongo{
		chunkCol:  db.Collection(collection),
		vectorIdx: vectorIdx,
	}
}

// VectorSearch returns the top-k chunks whose stored embedding is most
// similar to queryVec. Results arrive in the store's descending-score order
// and are passed through unchanged; ties keep the store's native ordering.
func (r *ChunkMongo) VectorSearch(ctx context.Context, queryVec []float32, k int) ([]models.RetrievedChunk, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$vectorSearch", Value: bson.D{
			{Key: "index", Value: r.vectorIdx},
			{Key: "queryVector", Value: queryVec},
			{Key: "path", Value: "vector"},
			{Key: "numCandidates", Value: k * 10},
			{Key: "limit", Value: k},
		}}},
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 1},
			{Key: "source", Value: 1},
			{Key: "text", Value: 1},
			{Key: "score", Value: bson.D{{Key: "$meta", Value: "vectorSearchScore"}}},
		}}},
	}

	cur, err := r.chunkCol.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var chunks []models.RetrievedChunk
	if err := cur.All(ctx, &chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}
